package lexgo

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreClosed is returned by operations on a closed store.
	ErrStoreClosed = errors.New("store closed")

	// ErrSegmentNotFound is returned when the requested segment is not
	// part of the current manifest.
	ErrSegmentNotFound = errors.New("segment not found")

	// ErrWriterDone is returned when a segment writer is used after
	// Commit or Abort.
	ErrWriterDone = errors.New("segment writer already finished")
)

// CorruptSegmentError reports a segment whose store file failed a
// structural or checksum validation.
//
// The underlying cause satisfies errors.Is(err, codec.ErrCorrupted) and
// can be accessed via errors.Unwrap.
type CorruptSegmentError struct {
	Ord   uint64
	File  string
	cause error
}

func (e *CorruptSegmentError) Error() string {
	return fmt.Sprintf("segment %d: corrupt store file %s: %v", e.Ord, e.File, e.cause)
}

func (e *CorruptSegmentError) Unwrap() error { return e.cause }
