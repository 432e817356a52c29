package services

import (
	"context"

	"github.com/mirrorpool/mirrorpool/internal/core/ports/driven"
	"github.com/mirrorpool/mirrorpool/internal/core/ports/driving"
	"github.com/mirrorpool/mirrorpool/internal/dedupe"
	"github.com/mirrorpool/mirrorpool/internal/logger"
)

// Ensure Health implements the interface.
var _ driving.HealthChecker = (*Health)(nil)

// Health reports relay readiness: whether the source credential is usable
// and how fresh the destination snapshot is. Informational only.
type Health struct {
	source driven.SourceStore
	index  *dedupe.Index
}

// NewHealth creates a health checker.
func NewHealth(source driven.SourceStore, index *dedupe.Index) *Health {
	return &Health{source: source, index: index}
}

// Check reports relay readiness without side effects.
func (h *Health) Check(ctx context.Context) driving.HealthReport {
	var report driving.HealthReport

	if err := h.source.Validate(ctx); err != nil {
		logger.Warn("health: source credential check failed: %v", err)
	} else {
		report.CredentialLoaded = true
	}

	report.IndexEntries, report.IndexAge = h.index.Stats()
	return report
}
