package directory

import (
	"context"

	"github.com/hupe1980/lexgo/resource"
)

// RateLimitedDirectory throttles the write paths of an inner directory
// through a resource controller, so background segment builds do not
// starve foreground traffic. Reads are memory-mapped or in-memory and
// pass through untouched.
type RateLimitedDirectory struct {
	Directory
	rc *resource.Controller
}

// NewRateLimitedDirectory wraps inner. A nil controller disables
// throttling.
func NewRateLimitedDirectory(inner Directory, rc *resource.Controller) *RateLimitedDirectory {
	return &RateLimitedDirectory{
		Directory: inner,
		rc:        rc,
	}
}

// OpenWrite starts a new entry whose writes are charged against the IO
// budget.
func (d *RateLimitedDirectory) OpenWrite(ctx context.Context, name string) (TerminatingWriter, error) {
	w, err := d.Directory.OpenWrite(ctx, name)
	if err != nil {
		return nil, err
	}

	return &rateLimitedTerminatingWriter{
		w:     resource.NewRateLimitedWriter(ctx, w, d.rc),
		inner: w,
	}, nil
}

// AtomicWrite charges the IO budget before delegating.
func (d *RateLimitedDirectory) AtomicWrite(ctx context.Context, name string, data []byte) error {
	if err := d.rc.AcquireIO(ctx, len(data)); err != nil {
		return err
	}

	return d.Directory.AtomicWrite(ctx, name, data)
}

type rateLimitedTerminatingWriter struct {
	w     *resource.RateLimitedWriter
	inner TerminatingWriter
}

func (w *rateLimitedTerminatingWriter) Write(p []byte) (int, error) {
	return w.w.Write(p)
}

func (w *rateLimitedTerminatingWriter) Terminate() error {
	return w.inner.Terminate()
}
