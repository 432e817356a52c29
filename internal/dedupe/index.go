// Package dedupe answers "does a file named X of size S already exist at the
// destination?" using a time-boxed cache of the remote listing and a
// name-normalization scheme tolerant of release-style file names.
package dedupe

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/mirrorpool/mirrorpool/internal/core/domain"
	"github.com/mirrorpool/mirrorpool/internal/logger"
)

// DefaultTTL is how long a snapshot stays fresh before a read forces a refresh.
const DefaultTTL = 300 * time.Second

// sizeTolerance is the relative size difference accepted when tie-breaking
// normalized-name matches.
const sizeTolerance = 0.10

// Heuristic matching thresholds.
const (
	heuristicMinNameLen       = 10
	heuristicMinNormalizedLen = 5
)

var yearPattern = regexp.MustCompile(`(19|20)\d{2}`)

// Lister fetches the complete file listing from the destination.
type Lister interface {
	ListFiles(ctx context.Context) ([]domain.DestinationEntry, error)
}

// Snapshot is an immutable view of the destination listing. It is replaced
// wholesale on refresh, never mutated in place.
type Snapshot struct {
	Entries   []domain.DestinationEntry
	FetchedAt time.Time
}

// Age returns how long ago the snapshot was fetched, or zero for the empty
// snapshot created at process start.
func (s *Snapshot) Age() time.Duration {
	if s.FetchedAt.IsZero() {
		return 0
	}
	return time.Since(s.FetchedAt)
}

func (s *Snapshot) stale(ttl time.Duration) bool {
	return s.FetchedAt.IsZero() || time.Since(s.FetchedAt) >= ttl
}

// Index is the shared, read-mostly duplicate-detection cache.
type Index struct {
	lister Lister
	ttl    time.Duration

	mu         sync.Mutex
	snapshot   *Snapshot
	refreshing bool

	// now is injectable for TTL tests.
	now func() time.Time
}

// Option configures an Index.
type Option func(*Index)

// WithTTL overrides the snapshot time-to-live.
func WithTTL(ttl time.Duration) Option {
	return func(i *Index) { i.ttl = ttl }
}

// NewIndex creates an index over the given destination lister. The index
// starts with an empty snapshot; the first read forces a refresh.
func NewIndex(lister Lister, opts ...Option) *Index {
	idx := &Index{
		lister:   lister,
		ttl:      DefaultTTL,
		snapshot: &Snapshot{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Refresh returns the current snapshot, fetching a fresh listing first when
// forced or when the snapshot has outlived its TTL. A failed fetch degrades
// gracefully: the previous (possibly empty) snapshot is returned and the
// failure is only logged — callers treat it as "no known duplicates".
//
// Refresh is single-flight: while one fetch is in flight, concurrent readers
// reuse the prior snapshot instead of blocking.
func (i *Index) Refresh(ctx context.Context, force bool) *Snapshot {
	i.mu.Lock()
	snap := i.snapshot
	if (!force && !snap.stale(i.ttl)) || i.refreshing {
		i.mu.Unlock()
		return snap
	}
	i.refreshing = true
	i.mu.Unlock()

	entries, err := i.lister.ListFiles(ctx)

	i.mu.Lock()
	defer i.mu.Unlock()
	i.refreshing = false
	if err != nil {
		logger.Warn("destination listing refresh failed, keeping previous snapshot: %v", err)
		return i.snapshot
	}

	for n := range entries {
		entries[n].NormalizedName = Normalize(entries[n].Name)
	}
	i.snapshot = &Snapshot{Entries: entries, FetchedAt: i.now()}
	logger.Debug("destination index refreshed: %d entries", len(entries))
	return i.snapshot
}

// Invalidate discards the current snapshot so the next read refreshes from
// the remote listing. Called after every successful upload.
func (i *Index) Invalidate() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.snapshot = &Snapshot{}
}

// Stats reports the current snapshot's entry count and age. Informational.
func (i *Index) Stats() (entries int, age time.Duration) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.snapshot.Entries), i.snapshot.Age()
}

// FindMatch looks for an existing destination file matching the given source
// file. Tiers are evaluated in strict priority order; the first tier that
// produces a match wins. FindMatch is a pure read over the most recently
// refreshed snapshot.
func (i *Index) FindMatch(ctx context.Context, info domain.FileInfo) (*domain.DestinationEntry, domain.MatchKind, bool) {
	snap := i.Refresh(ctx, false)
	return matchSnapshot(snap, info)
}

func matchSnapshot(snap *Snapshot, info domain.FileInfo) (*domain.DestinationEntry, domain.MatchKind, bool) {
	// Tier 1: case-insensitive raw name equality.
	for n := range snap.Entries {
		if strings.EqualFold(snap.Entries[n].Name, info.Name) {
			return &snap.Entries[n], domain.MatchExact, true
		}
	}

	// Tier 2: normalized name equality, size tie-break among ties.
	if norm := Normalize(info.Name); norm != "" {
		var first *domain.DestinationEntry
		for n := range snap.Entries {
			if snap.Entries[n].NormalizedName != norm {
				continue
			}
			if first == nil {
				first = &snap.Entries[n]
			}
			if info.SizeBytes > 0 && withinSizeTolerance(snap.Entries[n].SizeBytes, info.SizeBytes) {
				return &snap.Entries[n], domain.MatchNormalized, true
			}
		}
		if first != nil {
			return first, domain.MatchNormalized, true
		}
	}

	// Tier 3: year-anchored core-title containment.
	if entry, ok := matchHeuristicMovie(snap, info); ok {
		return entry, domain.MatchHeuristicMovie, true
	}

	return nil, "", false
}

// matchHeuristicMovie matches release-style movie names: the candidate's
// normalized name is cut at its 4-digit year token and the remaining core
// title must contain (or be contained in) the query's normalized name.
func matchHeuristicMovie(snap *Snapshot, info domain.FileInfo) (*domain.DestinationEntry, bool) {
	norm := Normalize(info.Name)
	if len(info.Name) <= heuristicMinNameLen || len(norm) < heuristicMinNormalizedLen {
		return nil, false
	}

	for n := range snap.Entries {
		entry := &snap.Entries[n]
		if !yearPattern.MatchString(entry.Name) {
			continue
		}
		loc := yearPattern.FindStringIndex(entry.NormalizedName)
		if loc == nil || loc[0] == 0 {
			continue
		}
		core := entry.NormalizedName[:loc[0]]
		if strings.Contains(norm, core) || strings.Contains(core, norm) {
			return entry, true
		}
	}
	return nil, false
}

func withinSizeTolerance(candidate, reference int64) bool {
	diff := candidate - reference
	if diff < 0 {
		diff = -diff
	}
	return float64(diff)/float64(reference) <= sizeTolerance
}
