package driving

import (
	"context"
	"time"

	"github.com/mirrorpool/mirrorpool/internal/core/domain"
)

// MirrorRequest describes one relay invocation.
type MirrorRequest struct {
	// Handle is the opaque source file identifier.
	Handle domain.FileHandle

	// ForceFresh skips the duplicate check and always transfers bytes.
	ForceFresh bool
}

// Relayer mirrors source files into the destination.
type Relayer interface {
	// Mirror runs the full relay pipeline for one handle. It never returns
	// an error; all terminal failures are represented in the outcome.
	Mirror(ctx context.Context, req MirrorRequest) domain.MirrorOutcome

	// InvalidateIndex discards the cached destination listing so the next
	// duplicate check refreshes from the remote listing.
	InvalidateIndex()
}

// HealthReport describes the relay's readiness. Informational only.
type HealthReport struct {
	// CredentialLoaded reports whether the source-store credential is loadable.
	CredentialLoaded bool

	// IndexEntries is the number of entries in the current destination snapshot.
	IndexEntries int

	// IndexAge is how long ago the snapshot was fetched. Zero when no
	// snapshot has been fetched yet.
	IndexAge time.Duration
}

// HealthChecker reports relay readiness without side effects.
type HealthChecker interface {
	Check(ctx context.Context) HealthReport
}
