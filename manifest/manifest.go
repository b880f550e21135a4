// Package manifest tracks the committed state of a store: which
// segments exist, which files belong to them and how far the opstamp
// has advanced.
//
// Each save writes a fresh checksummed manifest file and then flips the
// CURRENT pointer to it, so readers always observe a complete manifest.
package manifest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/hupe1980/lexgo/codec"
	"github.com/hupe1980/lexgo/directory"
	"github.com/hupe1980/lexgo/internal/hash"
)

const (
	ManifestFilePrefix = "MANIFEST"
	CurrentFileName    = "CURRENT"
	CurrentVersion     = 1
)

// Manifest describes the state of a store at one commit point.
type Manifest struct {
	Version int    `json:"version"`
	ID      uint64 `json:"id"`

	// Opstamp is the stamp of the last committed operation.
	Opstamp uint64 `json:"opstamp"`

	// NextSegmentOrd is the ordinal handed to the next segment.
	NextSegmentOrd uint64 `json:"next_segment_ord"`

	Segments []SegmentInfo `json:"segments"`
}

// SegmentInfo describes a single committed segment.
type SegmentInfo struct {
	Ord     uint64   `json:"ord"`
	NumDocs uint32   `json:"num_docs"`
	Files   []string `json:"files"`
}

// Clone returns a deep copy, so a pending manifest can be edited
// without touching the loaded one.
func (m *Manifest) Clone() *Manifest {
	clone := *m
	clone.Segments = make([]SegmentInfo, len(m.Segments))

	for i, seg := range m.Segments {
		seg.Files = append([]string(nil), seg.Files...)
		clone.Segments[i] = seg
	}

	return &clone
}

// Store reads and atomically replaces the manifest of a directory.
type Store struct {
	dir   directory.Directory
	codec codec.Codec
	mu    sync.Mutex
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithCodec sets the codec used for newly written manifests. Existing
// manifests are self-describing and decode with the codec named in
// their header.
func WithCodec(c codec.Codec) StoreOption {
	return func(s *Store) {
		s.codec = c
	}
}

// NewStore creates a manifest store on top of a directory.
func NewStore(dir directory.Directory, opts ...StoreOption) *Store {
	s := &Store{
		dir:   dir,
		codec: codec.Default,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Load returns the current manifest. A directory without one yields a
// fresh empty manifest.
func (s *Store) Load(ctx context.Context) (*Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.dir.AtomicRead(ctx, CurrentFileName)
	if errors.Is(err, directory.ErrFileNotFound) {
		return &Manifest{Version: CurrentVersion}, nil
	}

	if err != nil {
		return nil, err
	}

	data, err := s.dir.AtomicRead(ctx, string(current))
	if err != nil {
		return nil, err
	}

	m, err := decodeManifest(data)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", current, err)
	}

	return m, nil
}

// Save persists the manifest and flips the CURRENT pointer to it. The
// manifest id is bumped on every save.
func (s *Store) Save(ctx context.Context, m *Manifest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m.Version = CurrentVersion
	m.ID++

	data, err := encodeManifest(s.codec, m)
	if err != nil {
		return err
	}

	filename := fmt.Sprintf("%s-%06d", ManifestFilePrefix, m.ID)

	if err := s.dir.AtomicWrite(ctx, filename, data); err != nil {
		return err
	}

	return s.dir.AtomicWrite(ctx, CurrentFileName, []byte(filename))
}

// Prune deletes all manifest files except the one CURRENT points to.
func (s *Store) Prune(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.dir.AtomicRead(ctx, CurrentFileName)
	if errors.Is(err, directory.ErrFileNotFound) {
		return nil
	}

	if err != nil {
		return err
	}

	names, err := s.dir.List(ctx, ManifestFilePrefix+"-")
	if err != nil {
		return err
	}

	for _, name := range names {
		if name == string(current) {
			continue
		}

		if err := s.dir.Delete(ctx, name); err != nil {
			return err
		}
	}

	return nil
}

// Manifest files are framed as
//
//	codec name (VInt length + bytes)
//	payload length (u32)
//	payload
//	crc32c of the payload (u32)
//
// so a manifest written with one codec can be read back by a store
// configured with another.

func encodeManifest(c codec.Codec, m *Manifest) ([]byte, error) {
	payload, err := c.Marshal(m)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := codec.WriteString(&buf, c.Name()); err != nil {
		return nil, err
	}
	if err := codec.WriteUint32(&buf, uint32(len(payload))); err != nil {
		return nil, err
	}

	buf.Write(payload)

	if err := codec.WriteUint32(&buf, hash.CRC32C(payload)); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func decodeManifest(data []byte) (*Manifest, error) {
	r := bytes.NewReader(data)

	name, err := codec.ReadString(r)
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable header", codec.ErrCorrupted)
	}

	c, ok := codec.ByName(name)
	if !ok {
		return nil, fmt.Errorf("unknown manifest codec %q", name)
	}

	payloadLen, err := codec.ReadUint32(r)
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable header", codec.ErrCorrupted)
	}

	if uint64(payloadLen) > uint64(r.Len()) {
		return nil, fmt.Errorf("%w: payload length %d exceeds file size", codec.ErrCorrupted, payloadLen)
	}

	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("%w: short payload", codec.ErrCorrupted)
	}

	want, err := codec.ReadUint32(r)
	if err != nil {
		return nil, fmt.Errorf("%w: missing checksum", codec.ErrCorrupted)
	}

	if got := hash.CRC32C(payload); got != want {
		return nil, fmt.Errorf("%w: checksum mismatch (got %08x, want %08x)", codec.ErrCorrupted, got, want)
	}

	var m Manifest
	if err := c.Unmarshal(payload, &m); err != nil {
		return nil, err
	}

	if m.Version != CurrentVersion {
		return nil, fmt.Errorf("unsupported manifest version %d (expected %d)", m.Version, CurrentVersion)
	}

	return &m, nil
}
