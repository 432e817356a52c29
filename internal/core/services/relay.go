package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/mirrorpool/mirrorpool/internal/core/domain"
	"github.com/mirrorpool/mirrorpool/internal/core/ports/driven"
	"github.com/mirrorpool/mirrorpool/internal/core/ports/driving"
	"github.com/mirrorpool/mirrorpool/internal/dedupe"
	"github.com/mirrorpool/mirrorpool/internal/logger"
)

// Ensure Relay implements the interface.
var _ driving.Relayer = (*Relay)(nil)

// Relay coordinates the end-to-end mirror pipeline: resolve metadata, check
// the duplicate index, then stream the download directly into the upload.
//
// Each invocation runs independently; there is no per-handle single-flight,
// so two concurrent requests for the same handle both run the full pipeline.
type Relay struct {
	source driven.SourceStore
	dest   driven.DestinationStore
	index  *dedupe.Index
}

// NewRelay creates a relay orchestrator.
func NewRelay(source driven.SourceStore, dest driven.DestinationStore, index *dedupe.Index) *Relay {
	return &Relay{
		source: source,
		dest:   dest,
		index:  index,
	}
}

// Mirror runs the full relay pipeline for one handle. It never returns an
// error; every terminal failure is represented in the outcome.
func (r *Relay) Mirror(ctx context.Context, req driving.MirrorRequest) domain.MirrorOutcome {
	run := uuid.NewString()[:8]
	logger.Info("relay %s: mirroring handle %s (force=%t)", run, req.Handle, req.ForceFresh)

	// Resolving metadata is the only step whose failure is terminal before
	// any bytes move.
	info, err := r.source.Stat(ctx, req.Handle)
	if err != nil {
		logger.Error("relay %s: metadata resolution failed: %v", run, err)
		return failed(err)
	}
	logger.Debug("relay %s: resolved %q (%d bytes, %s)", run, info.Name, info.SizeBytes, info.MimeType)

	if !req.ForceFresh {
		if entry, kind, ok := r.index.FindMatch(ctx, *info); ok {
			logger.Info("relay %s: %q already at destination as %s (%s match)", run, info.Name, entry.ID, kind)
			return domain.MirrorOutcome{
				Status:         domain.StatusAlreadyExists,
				DestinationID:  entry.ID,
				DestinationURL: r.dest.FileURL(entry.ID),
				FileName:       info.Name,
				SizeBytes:      info.SizeBytes,
				MatchKind:      kind,
			}
		}
	}

	stream, err := r.source.Open(ctx, req.Handle)
	if err != nil {
		logger.Error("relay %s: opening download stream failed: %v", run, err)
		return failed(err)
	}
	defer stream.Close()

	// The download is piped straight into the upload; the destination's
	// consumption rate backpressures the source read. Neither side is
	// restarted if the other fails.
	receipt, err := r.dest.Upload(ctx, stream, info.Name, info.MimeType)
	if err != nil {
		logger.Error("relay %s: upload failed: %v", run, err)
		return failed(err)
	}

	// The new file must show up in the next duplicate check.
	r.index.Invalidate()

	logger.Info("relay %s: mirrored %q to %s", run, info.Name, receipt.URL)
	return domain.MirrorOutcome{
		Status:         domain.StatusSuccess,
		DestinationID:  receipt.ID,
		DestinationURL: receipt.URL,
		FileName:       info.Name,
		SizeBytes:      info.SizeBytes,
	}
}

// InvalidateIndex discards the cached destination listing.
func (r *Relay) InvalidateIndex() {
	r.index.Invalidate()
}

func failed(err error) domain.MirrorOutcome {
	return domain.MirrorOutcome{
		Status:       domain.StatusFailed,
		ErrorMessage: err.Error(),
	}
}
