package driven

import (
	"context"
	"io"

	"github.com/mirrorpool/mirrorpool/internal/core/domain"
)

// SourceStore resolves metadata and opens byte streams for files held in the
// authenticated source store. Implementations wrap every remote call in the
// shared retry executor; the byte-streaming phase itself is never retried.
type SourceStore interface {
	// Stat resolves name, size and MIME type for a file handle.
	// Implementations fall back to an unauthenticated probe when the
	// authenticated path is exhausted; the fallback returns a best-effort,
	// possibly zero-size FileInfo rather than an error.
	Stat(ctx context.Context, handle domain.FileHandle) (*domain.FileInfo, error)

	// Open returns a readable stream of the file's bytes. The stream is
	// pass-through: bytes are relayed as they arrive, never buffered whole.
	// The caller owns the returned reader and must close it.
	Open(ctx context.Context, handle domain.FileHandle) (io.ReadCloser, error)

	// Validate performs a lightweight check that the store credential is
	// loadable and usable.
	Validate(ctx context.Context) error
}
