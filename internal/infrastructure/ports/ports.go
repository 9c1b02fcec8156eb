package ports

import (
	"context"
	"time"
)

// Clock provides the current time (for testing).
type Clock interface {
	Now() time.Time
}

// Logger provides structured logging.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Debug(msg string, args ...any)
	// With returns a logger whose lines all carry the given attributes.
	With(args ...any) Logger
}

// FileStore is the file access port the audit engine depends on. Every
// operation takes a context so synchronous and deferred implementations sit
// behind the same contract; the engine awaits each call before issuing the
// next, so no two writes to the same artifact race.
type FileStore interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFile(ctx context.Context, path string, data []byte) error
	MkdirAll(ctx context.Context, path string) error
	// Glob returns the paths matching pattern, sorted.
	Glob(ctx context.Context, pattern string) ([]string, error)
	// Remove deletes a file. A missing file reports an error satisfying
	// errors.Is(err, fs.ErrNotExist).
	Remove(ctx context.Context, path string) error
}
