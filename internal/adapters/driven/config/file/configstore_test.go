package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot determine home directory")
	}

	store, err := NewConfigStore("")

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(home, ".mirrorpool", "config.toml"), store.Path())

	// Cleanup
	_ = os.Remove(store.Path())
}

func TestConfigStore_SetAndGet(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	err = store.Set("test_key", "test_value")
	require.NoError(t, err)

	val, ok := store.Get("test_key")
	assert.True(t, ok)
	assert.Equal(t, "test_value", val)
}

func TestConfigStore_GetString(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	err = store.Set("string_key", "hello world")
	require.NoError(t, err)

	val := store.GetString("string_key")
	assert.Equal(t, "hello world", val)

	// Non-existent key
	val = store.GetString("nonexistent")
	assert.Equal(t, "", val)

	// Wrong type
	err = store.Set("int_key", 42)
	require.NoError(t, err)
	val = store.GetString("int_key")
	assert.Equal(t, "", val)
}

func TestConfigStore_GetInt(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	err = store.Set("int_key", 42)
	require.NoError(t, err)

	val := store.GetInt("int_key")
	assert.Equal(t, 42, val)

	// Non-existent key
	val = store.GetInt("nonexistent")
	assert.Equal(t, 0, val)

	// Wrong type
	err = store.Set("string_key", "not an int")
	require.NoError(t, err)
	val = store.GetInt("string_key")
	assert.Equal(t, 0, val)
}

func TestConfigStore_GetBool(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	err = store.Set("bool_key", true)
	require.NoError(t, err)
	assert.True(t, store.GetBool("bool_key"))

	err = store.Set("bool_key_false", false)
	require.NoError(t, err)
	assert.False(t, store.GetBool("bool_key_false"))

	// Non-existent key
	assert.False(t, store.GetBool("nonexistent"))

	// Wrong type
	err = store.Set("string_key", "true")
	require.NoError(t, err)
	assert.False(t, store.GetBool("string_key"))
}

func TestConfigStore_PersistsAcrossInstances(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store.Set(KeyFilehostBaseURL, "https://host.example"))
	require.NoError(t, store.Set(KeyIndexTTLSeconds, 120))

	// A second store over the same directory sees the persisted values.
	reopened, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "https://host.example", reopened.GetString(KeyFilehostBaseURL))
	assert.Equal(t, 120, reopened.GetInt(KeyIndexTTLSeconds))
}

func TestConfigStore_DottedKeysRoundTripAsTables(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("filehost.api_key", "secret"))
	require.NoError(t, store.Set("filehost.base_url", "https://host.example"))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[filehost]")

	require.NoError(t, store.Load())
	assert.Equal(t, "secret", store.GetString("filehost.api_key"))
}

func TestLoadSettings_Defaults(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	settings := LoadSettings(store)

	assert.Equal(t, 300*time.Second, settings.IndexTTL)
	assert.Equal(t, 600*time.Second, settings.UploadTimeout)
	assert.Equal(t, DefaultListenAddr, settings.ListenAddr)
	assert.Empty(t, settings.FilehostAPIKey)
}

func TestLoadSettings_FromStore(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set(KeyDriveAPIKey, "drive-key"))
	require.NoError(t, store.Set(KeyFilehostAPIKey, "host-key"))
	require.NoError(t, store.Set(KeyFilehostURLTemplate, "https://host.example/f/%s"))
	require.NoError(t, store.Set(KeyIndexTTLSeconds, 60))
	require.NoError(t, store.Set(KeyUploadTimeoutSeconds, 30))
	require.NoError(t, store.Set(KeyServerListenAddr, ":9000"))

	settings := LoadSettings(store)

	assert.Equal(t, "drive-key", settings.DriveAPIKey)
	assert.Equal(t, "host-key", settings.FilehostAPIKey)
	assert.Equal(t, "https://host.example/f/%s", settings.FilehostURLTemplate)
	assert.Equal(t, 60*time.Second, settings.IndexTTL)
	assert.Equal(t, 30*time.Second, settings.UploadTimeout)
	assert.Equal(t, ":9000", settings.ListenAddr)
}

func TestWatchReloadsOnWrite(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store.Set(KeyFilehostAPIKey, "before"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, store.Watch(ctx))

	// Simulate an out-of-band edit of the config file.
	err = os.WriteFile(store.Path(), []byte("[filehost]\napi_key = \"after\"\n"), 0600)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return store.GetString(KeyFilehostAPIKey) == "after"
	}, 5*time.Second, 10*time.Millisecond, "config reload was not observed")
}

func TestHandleFsEventIgnoresOtherFiles(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store.Set(KeyFilehostAPIKey, "keep"))

	// Change the file out-of-band; an event for a different file must not
	// trigger a reload that would pick the change up.
	err = os.WriteFile(store.Path(), []byte("[filehost]\napi_key = \"changed\"\n"), 0600)
	require.NoError(t, err)

	store.handleFsEvent(fsnotify.Event{
		Name: filepath.Join(tmpDir, "other.toml"),
		Op:   fsnotify.Write,
	})

	assert.Equal(t, "keep", store.GetString(KeyFilehostAPIKey))
}
