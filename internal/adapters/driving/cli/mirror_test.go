package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mirrorpool/mirrorpool/internal/core/domain"
	"github.com/mirrorpool/mirrorpool/internal/core/ports/driving"
)

// mockRelayer implements driving.Relayer for testing.
type mockRelayer struct {
	outcome     domain.MirrorOutcome
	lastReq     driving.MirrorRequest
	invalidated int
}

func (m *mockRelayer) Mirror(_ context.Context, req driving.MirrorRequest) domain.MirrorOutcome {
	m.lastReq = req
	return m.outcome
}

func (m *mockRelayer) InvalidateIndex() { m.invalidated++ }

func setupRelayerTest(mock *mockRelayer) func() {
	oldRelayer := relayer
	relayer = mock
	return func() {
		relayer = oldRelayer
		mirrorForceFresh = false
	}
}

func TestMirrorCmd_Use(t *testing.T) {
	assert.Equal(t, "mirror <handle>", mirrorCmd.Use)
}

func TestMirrorCmd_Success(t *testing.T) {
	mock := &mockRelayer{
		outcome: domain.MirrorOutcome{
			Status:         domain.StatusSuccess,
			DestinationURL: "https://host.example/f/abc123",
			FileName:       "report.pdf",
			SizeBytes:      2048,
		},
	}
	cleanup := setupRelayerTest(mock)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"mirror", "X2"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Equal(t, domain.FileHandle("X2"), mock.lastReq.Handle)
	assert.False(t, mock.lastReq.ForceFresh)
	assert.Contains(t, buf.String(), "https://host.example/f/abc123")
	assert.Contains(t, buf.String(), "report.pdf")
}

func TestMirrorCmd_AlreadyExists(t *testing.T) {
	mock := &mockRelayer{
		outcome: domain.MirrorOutcome{
			Status:         domain.StatusAlreadyExists,
			DestinationURL: "https://host.example/f/f1",
			MatchKind:      domain.MatchNormalized,
		},
	}
	cleanup := setupRelayerTest(mock)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"mirror", "X1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Already at destination")
	assert.Contains(t, buf.String(), "normalized match")
}

func TestMirrorCmd_FreshFlag(t *testing.T) {
	mock := &mockRelayer{
		outcome: domain.MirrorOutcome{Status: domain.StatusSuccess},
	}
	cleanup := setupRelayerTest(mock)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"mirror", "X1", "--fresh"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.True(t, mock.lastReq.ForceFresh)
}

func TestMirrorCmd_Failed(t *testing.T) {
	mock := &mockRelayer{
		outcome: domain.MirrorOutcome{
			Status:       domain.StatusFailed,
			ErrorMessage: "destination rejected upload",
		},
	}
	cleanup := setupRelayerTest(mock)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"mirror", "X5"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "destination rejected upload")
}

func TestMirrorCmd_NotConfigured(t *testing.T) {
	oldRelayer := relayer
	relayer = nil
	defer func() { relayer = oldRelayer }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"mirror", "X1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
