package driven

import (
	"context"
	"io"

	"github.com/mirrorpool/mirrorpool/internal/core/domain"
)

// UploadReceipt identifies a file accepted by the destination.
type UploadReceipt struct {
	// ID is the destination's identifier for the new file.
	ID string

	// URL is the public URL of the new file.
	URL string
}

// DestinationStore lists and receives files at the mirror destination.
type DestinationStore interface {
	// ListFiles fetches the complete listing of files currently present at
	// the destination via one authenticated request.
	ListFiles(ctx context.Context) ([]domain.DestinationEntry, error)

	// Upload relays the stream as a multipart upload. The stream's length is
	// unknown ahead of time and must not be required. The upload is subject
	// to an overall wall-clock timeout; on expiry the in-flight connection is
	// aborted and domain.ErrUploadTimeout is returned.
	Upload(ctx context.Context, r io.Reader, name, mimeType string) (*UploadReceipt, error)

	// FileURL builds the public URL for a destination file identifier.
	FileURL(id string) string
}
