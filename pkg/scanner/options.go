package scanner

import (
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/stackvity/datescan/pkg/collect"
	"github.com/stackvity/datescan/pkg/dates"
	"github.com/stackvity/datescan/pkg/encoding"
)

// Options holds all configuration for a Scanner.
type Options struct {
	// --- Pool ---
	Concurrency int `mapstructure:"concurrency"` // Number of workers (0=auto)
	QueueDepth  int `mapstructure:"queueDepth"`  // Inbound queue capacity per worker

	// --- Walking & Filtering ---
	IgnorePatterns []string `mapstructure:"ignore"` // gitignore syntax, aggregated with .datescanignore
	FollowSymlinks bool     `mapstructure:"followSymlinks"`
	SkipVendored   bool     `mapstructure:"skipVendored"`

	// --- Extraction ---
	KeepDuplicates  bool   `mapstructure:"keepDuplicates"`
	DefaultEncoding string `mapstructure:"defaultEncoding"`
	Pattern         string `mapstructure:"pattern"` // Date pattern; empty means dates.DefaultPattern

	CollectTimeout time.Duration `mapstructure:"-"` // Bound for a single blocking wait; 0 means DefaultCollectTimeout

	// --- Injected Dependencies ---
	Hooks      Hooks               `mapstructure:"-"` // Optional: progress callbacks
	Logger     slog.Handler        `mapstructure:"-"` // Required: logging backend
	FileSystem collect.FileSystem  `mapstructure:"-"` // Optional: defaults to the host filesystem
	Extractor  dates.DateExtractor `mapstructure:"-"` // Optional: overrides Pattern
	Decoder    encoding.Decoder    `mapstructure:"-"` // Optional: overrides DefaultEncoding
}

// Validate checks the options and resolves injected defaults. It builds the
// recognizer for Pattern and the decoder for DefaultEncoding when none are injected.
func (o *Options) Validate() error {
	if o.Logger == nil {
		return fmt.Errorf("%w: Logger implementation (slog.Handler) cannot be nil", ErrConfigValidation)
	}
	if o.Concurrency < 0 {
		return fmt.Errorf("%w: concurrency must not be negative (got %d)", ErrConfigValidation, o.Concurrency)
	}
	if o.QueueDepth < 0 {
		return fmt.Errorf("%w: queueDepth must not be negative (got %d)", ErrConfigValidation, o.QueueDepth)
	}
	if o.Hooks == nil {
		o.Hooks = NoOpHooks{}
	}
	if o.FileSystem == nil {
		o.FileSystem = collect.OSFileSystem{}
	}
	if o.Extractor == nil {
		if o.Pattern == "" {
			o.Extractor = dates.DefaultRecognizer()
		} else {
			recognizer, err := dates.NewRecognizer(o.Pattern)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrConfigValidation, err)
			}
			o.Extractor = recognizer
		}
	}
	if o.Decoder == nil {
		if err := encoding.ValidateEncodingName(o.DefaultEncoding); err != nil {
			return fmt.Errorf("%w: %w", ErrConfigValidation, err)
		}
		o.Decoder = encoding.NewCharsetHandler(o.DefaultEncoding)
	}
	if o.CollectTimeout <= 0 {
		o.CollectTimeout = DefaultCollectTimeout
	}
	return nil
}

// Workers resolves Concurrency, where 0 means runtime.NumCPU().
func (o *Options) Workers() int {
	if o.Concurrency <= 0 {
		return runtime.NumCPU()
	}
	return o.Concurrency
}

// poolOptions translates the options into PoolOptions.
func (o *Options) poolOptions() []PoolOption {
	depth := o.QueueDepth
	if depth == 0 {
		depth = DefaultQueueDepth
	}
	return []PoolOption{
		WithFileSystem(o.FileSystem),
		WithExtractor(o.Extractor),
		WithDecoder(o.Decoder),
		WithKeepDuplicates(o.KeepDuplicates),
		WithQueueDepth(depth),
		WithLogger(o.Logger),
	}
}
