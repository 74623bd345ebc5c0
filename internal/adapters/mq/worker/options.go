package worker

import (
	"github.com/okian/brc/internal/domain/record"
	"github.com/okian/brc/pkg/logger"
)

// Option applies a configuration option to a Folder.
type Option func(*Folder)

// WithName sets the folder name for identification and logging.
func WithName(name string) Option {
	return func(f *Folder) {
		if name != "" {
			f.name = name
		}
	}
}

// WithLogger sets a custom logger for the folder.
func WithLogger(l logger.Logger) Option {
	return func(f *Folder) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithMode selects relaxed or strict line parsing.
func WithMode(mode record.Mode) Option {
	return func(f *Folder) {
		f.mode = mode
	}
}

// WithSizeHint presizes each folder's map for the expected station count.
func WithSizeHint(n int) Option {
	return func(f *Folder) {
		if n > 0 {
			f.sizeHint = n
		}
	}
}

func withCounters(c *counters) Option {
	return func(f *Folder) {
		if c != nil {
			f.progress = c
		}
	}
}
