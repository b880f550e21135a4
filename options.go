package lexgo

import (
	"io"
	"log/slog"

	"github.com/hupe1980/lexgo/codec"
	"github.com/hupe1980/lexgo/internal/block"
	"github.com/hupe1980/lexgo/resource"
)

// Compression selects the per-block compression of segment field
// streams. Whatever the setting, streams are framed into checksummed
// blocks; incompressible blocks are stored raw.
type Compression uint8

const (
	// CompressionNone stores blocks raw.
	CompressionNone Compression = iota
	// CompressionLZ4 trades ratio for speed.
	CompressionLZ4
	// CompressionZstd trades speed for ratio. The default.
	CompressionZstd
)

func (c Compression) String() string {
	return c.block().String()
}

func (c Compression) block() block.Compression {
	switch c {
	case CompressionLZ4:
		return block.CompressionLZ4
	case CompressionZstd:
		return block.CompressionZstd
	default:
		return block.CompressionNone
	}
}

// DefaultCacheSize bounds the block cache of remote stores when
// WithCacheSize is not given.
const DefaultCacheSize = 256 << 20

type options struct {
	codec       codec.Codec
	logger      *Logger
	metrics     MetricsCollector
	rc          *resource.Controller
	compression Compression
	blockSize   int
	cacheDir    string
	cacheSize   int64

	// closers collects resources created while opening a location,
	// released again by Store.Close.
	closers []io.Closer
}

// Option configures Store open behavior.
type Option func(*options)

// WithCodec configures the codec used for manifest payloads.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithResourceConfig enables resource budgeting. Arena pages of segment
// writers are reserved against the memory limit, and segment writes are
// throttled through the IO limit.
func WithResourceConfig(cfg resource.Config) Option {
	return func(o *options) {
		o.rc = resource.NewController(cfg)
	}
}

// WithCompression selects the compression of segment field streams.
// Default: CompressionZstd.
//
// The setting applies per segment writer; previously committed segments
// decode with whatever their blocks were written with.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithBlockSize sets the amount of raw field data buffered before a
// compressed frame is cut. Zero selects the built-in default.
func WithBlockSize(n int) Option {
	return func(o *options) {
		o.blockSize = n
	}
}

// WithCacheDir spills the block cache of a remote store to local disk,
// so repeated opens survive process restarts without refetching.
// Only meaningful with Remote locations.
func WithCacheDir(dir string) Option {
	return func(o *options) {
		o.cacheDir = dir
	}
}

// WithCacheSize bounds the block cache of a remote store in bytes.
// Default: DefaultCacheSize.
func WithCacheSize(bytes int64) Option {
	return func(o *options) {
		o.cacheSize = bytes
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &lexgo.BasicMetricsCollector{}
//	store, _ := lexgo.Open(ctx, lexgo.Local(dir), lexgo.WithMetricsCollector(metrics))
//	// ... use store ...
//	stats := metrics.GetStats()
//	fmt.Printf("Commits: %d, Avg latency: %dns\n", stats.CommitCount, stats.CommitAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metrics = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := lexgo.NewJSONLogger(slog.LevelInfo)
//	store, _ := lexgo.Open(ctx, lexgo.Local(dir), lexgo.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		codec:       codec.Default,
		logger:      NoopLogger(),
		metrics:     NoopMetricsCollector{},
		compression: CompressionZstd,
		cacheSize:   DefaultCacheSize,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
