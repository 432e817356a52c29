package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirrorpool/mirrorpool/internal/core/domain"
	"github.com/mirrorpool/mirrorpool/internal/core/ports/driven"
	"github.com/mirrorpool/mirrorpool/internal/core/ports/driving"
	"github.com/mirrorpool/mirrorpool/internal/dedupe"
)

// --- Mock implementations for relay testing ---

// relayMockSource implements driven.SourceStore.
type relayMockSource struct {
	infos       map[string]*domain.FileInfo
	statErr     error
	openErr     error
	content     string
	validateErr error
	openCalls   int
}

func (m *relayMockSource) Stat(_ context.Context, handle domain.FileHandle) (*domain.FileInfo, error) {
	if m.statErr != nil {
		return nil, m.statErr
	}
	info, ok := m.infos[handle]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return info, nil
}

func (m *relayMockSource) Open(context.Context, domain.FileHandle) (io.ReadCloser, error) {
	m.openCalls++
	if m.openErr != nil {
		return nil, m.openErr
	}
	return io.NopCloser(strings.NewReader(m.content)), nil
}

func (m *relayMockSource) Validate(context.Context) error { return m.validateErr }

// relayMockDest implements driven.DestinationStore.
type relayMockDest struct {
	mu        sync.Mutex
	entries   []domain.DestinationEntry
	listErr   error
	uploadErr error
	nextID    string
	uploads   int
	received  string
	listCalls int
}

func (m *relayMockDest) ListFiles(context.Context) ([]domain.DestinationEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]domain.DestinationEntry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

func (m *relayMockDest) Upload(_ context.Context, r io.Reader, name, _ string) (*driven.UploadReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploads++
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m.received = string(body)
	// The destination now holds the new file; later listings reflect it.
	m.entries = append(m.entries, domain.DestinationEntry{
		ID:        m.nextID,
		Name:      name,
		SizeBytes: int64(len(body)),
	})
	return &driven.UploadReceipt{ID: m.nextID, URL: m.fileURL(m.nextID)}, nil
}

func (m *relayMockDest) FileURL(id string) string { return m.fileURL(id) }

func (m *relayMockDest) fileURL(id string) string {
	return fmt.Sprintf("https://host.example/f/%s", id)
}

func newTestRelay(source *relayMockSource, dest *relayMockDest) *Relay {
	return NewRelay(source, dest, dedupe.NewIndex(dest))
}

func TestMirrorShortCircuitsOnDuplicate(t *testing.T) {
	// Handle X1 resolves to Report.pdf (2048 bytes); the destination already
	// holds report.pdf at 2000 bytes, within the 10% size tolerance.
	source := &relayMockSource{
		infos: map[string]*domain.FileInfo{
			"X1": {Name: "Report.pdf", SizeBytes: 2048, MimeType: "application/pdf"},
		},
	}
	dest := &relayMockDest{
		entries: []domain.DestinationEntry{{ID: "f1", Name: "report.pdf", SizeBytes: 2000}},
	}
	relay := newTestRelay(source, dest)

	outcome := relay.Mirror(context.Background(), driving.MirrorRequest{Handle: "X1"})

	assert.Equal(t, domain.StatusAlreadyExists, outcome.Status)
	assert.Equal(t, "f1", outcome.DestinationID)
	assert.NotEmpty(t, outcome.DestinationURL)
	assert.Equal(t, domain.MatchExact, outcome.MatchKind, "raw names are case-insensitively equal")
	assert.Zero(t, dest.uploads, "no bytes are transferred for a duplicate")
	assert.Zero(t, source.openCalls)
}

func TestMirrorDuplicateByNormalizedName(t *testing.T) {
	source := &relayMockSource{
		infos: map[string]*domain.FileInfo{
			"X1": {Name: "Report Final 2023.pdf", SizeBytes: 2048},
		},
	}
	dest := &relayMockDest{
		entries: []domain.DestinationEntry{
			{ID: "f1", Name: "Report.Final.2023.pdf", SizeBytes: 2000},
		},
	}
	relay := newTestRelay(source, dest)

	outcome := relay.Mirror(context.Background(), driving.MirrorRequest{Handle: "X1"})

	assert.Equal(t, domain.StatusAlreadyExists, outcome.Status)
	assert.Equal(t, domain.MatchNormalized, outcome.MatchKind)
	assert.Zero(t, dest.uploads)
}

func TestMirrorStreamsNewFile(t *testing.T) {
	content := "file bytes relayed end to end"
	source := &relayMockSource{
		infos: map[string]*domain.FileInfo{
			"X2": {Name: "fresh.bin", SizeBytes: int64(len(content)), MimeType: "application/octet-stream"},
		},
		content: content,
	}
	dest := &relayMockDest{nextID: "abc123"}
	relay := newTestRelay(source, dest)

	outcome := relay.Mirror(context.Background(), driving.MirrorRequest{Handle: "X2"})

	require.Equal(t, domain.StatusSuccess, outcome.Status)
	assert.Contains(t, outcome.DestinationURL, "abc123")
	assert.Equal(t, "abc123", outcome.DestinationID)
	assert.Equal(t, "fresh.bin", outcome.FileName)
	assert.Equal(t, content, dest.received, "bytes flow download to upload unchanged")

	// The upload invalidated the snapshot: the next run sees the new file
	// at the destination and does not upload again.
	second := relay.Mirror(context.Background(), driving.MirrorRequest{Handle: "X2"})
	assert.Equal(t, domain.StatusAlreadyExists, second.Status)
	assert.Equal(t, 1, dest.uploads)
}

func TestMirrorForceFreshSkipsDuplicateCheck(t *testing.T) {
	source := &relayMockSource{
		infos: map[string]*domain.FileInfo{
			"X1": {Name: "Report.pdf", SizeBytes: 2048},
		},
		content: "fresh copy",
	}
	dest := &relayMockDest{
		entries: []domain.DestinationEntry{{ID: "f1", Name: "report.pdf", SizeBytes: 2000}},
		nextID:  "f2",
	}
	relay := newTestRelay(source, dest)

	outcome := relay.Mirror(context.Background(), driving.MirrorRequest{Handle: "X1", ForceFresh: true})

	assert.Equal(t, domain.StatusSuccess, outcome.Status)
	assert.Equal(t, 1, dest.uploads)
	assert.Zero(t, dest.listCalls, "forced runs never consult the listing")
}

func TestMirrorMetadataFailureIsTerminal(t *testing.T) {
	source := &relayMockSource{statErr: errors.New("metadata unavailable")}
	dest := &relayMockDest{}
	relay := newTestRelay(source, dest)

	outcome := relay.Mirror(context.Background(), driving.MirrorRequest{Handle: "X9"})

	assert.Equal(t, domain.StatusFailed, outcome.Status)
	assert.Contains(t, outcome.ErrorMessage, "metadata unavailable")
	assert.Zero(t, source.openCalls)
	assert.Zero(t, dest.uploads)
}

func TestMirrorIndexFailureDegradesToUpload(t *testing.T) {
	// A failed listing refresh means "no known duplicates", never a hard
	// failure of the run.
	source := &relayMockSource{
		infos:   map[string]*domain.FileInfo{"X3": {Name: "lonely.bin", SizeBytes: 10}},
		content: "0123456789",
	}
	dest := &relayMockDest{listErr: errors.New("listing down"), nextID: "n1"}
	relay := newTestRelay(source, dest)

	outcome := relay.Mirror(context.Background(), driving.MirrorRequest{Handle: "X3"})

	assert.Equal(t, domain.StatusSuccess, outcome.Status)
	assert.Equal(t, 1, dest.uploads)
}

func TestMirrorDownloadFailure(t *testing.T) {
	source := &relayMockSource{
		infos:   map[string]*domain.FileInfo{"X4": {Name: "gone.bin"}},
		openErr: domain.ErrObstaclePage,
	}
	dest := &relayMockDest{}
	relay := newTestRelay(source, dest)

	outcome := relay.Mirror(context.Background(), driving.MirrorRequest{Handle: "X4"})

	assert.Equal(t, domain.StatusFailed, outcome.Status)
	assert.Contains(t, outcome.ErrorMessage, "obstacle page")
	assert.Zero(t, dest.uploads)
}

func TestMirrorUploadFailureNotRetried(t *testing.T) {
	source := &relayMockSource{
		infos:   map[string]*domain.FileInfo{"X5": {Name: "doomed.bin"}},
		content: "payload",
	}
	dest := &relayMockDest{uploadErr: domain.ErrDestinationRejected}
	relay := newTestRelay(source, dest)

	outcome := relay.Mirror(context.Background(), driving.MirrorRequest{Handle: "X5"})

	assert.Equal(t, domain.StatusFailed, outcome.Status)
	assert.Equal(t, 1, dest.uploads, "the upload phase runs once per orchestration")
}

func TestMirrorUploadTimeoutMessage(t *testing.T) {
	source := &relayMockSource{
		infos:   map[string]*domain.FileInfo{"X6": {Name: "huge.bin"}},
		content: "payload",
	}
	dest := &relayMockDest{
		uploadErr: fmt.Errorf("%w after 10m0s", domain.ErrUploadTimeout),
	}
	relay := newTestRelay(source, dest)

	outcome := relay.Mirror(context.Background(), driving.MirrorRequest{Handle: "X6"})

	assert.Equal(t, domain.StatusFailed, outcome.Status)
	assert.Contains(t, outcome.ErrorMessage, "timeout")
}

func TestInvalidateIndex(t *testing.T) {
	source := &relayMockSource{
		infos: map[string]*domain.FileInfo{"X1": {Name: "Report.pdf", SizeBytes: 2048}},
	}
	dest := &relayMockDest{
		entries: []domain.DestinationEntry{{ID: "f1", Name: "Report.pdf", SizeBytes: 2048}},
	}
	relay := newTestRelay(source, dest)

	relay.Mirror(context.Background(), driving.MirrorRequest{Handle: "X1"})
	before := dest.listCalls

	relay.InvalidateIndex()
	relay.Mirror(context.Background(), driving.MirrorRequest{Handle: "X1"})

	assert.Equal(t, before+1, dest.listCalls, "invalidation forces the next check to refresh")
}
