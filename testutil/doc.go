// Package testutil provides testing utilities for lexgo.
//
// This package is intended for use in tests and benchmarks only.
// It provides seeded generators for field payloads, posting-list-like
// integer sequences and documents, so tests stay deterministic while
// exercising realistic data shapes.
//
// # Random Payload Generation
//
//	rng := testutil.NewRNG(seed)
//	noise := rng.Bytes(64 << 10)      // incompressible
//	text := rng.Text(64 << 10)        // Zipfian word stream, compresses well
//
// # Posting Lists
//
//	docIDs := rng.SortedU64s(1000, 32) // ascending, small gaps
//
// # Documents
//
//	docs := testutil.Documents(rng, 100)
package testutil
