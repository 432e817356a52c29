package file

import (
	"time"

	"github.com/mirrorpool/mirrorpool/internal/core/ports/driven"
)

// Configuration keys. The TOML file groups them into tables:
//
//	[drive]
//	api_key = "..."
//	oauth_token = "..."
//
//	[filehost]
//	base_url = "https://host.example"
//	api_key = "..."
//	url_template = "https://host.example/f/%s"
const (
	KeyDriveAPIKey     = "drive.api_key"
	KeyDriveOAuthToken = "drive.oauth_token"

	// OAuth refresh state written by `auth login` and consumed by the
	// refreshing token provider.
	KeyDriveRefreshToken = "drive.refresh_token"
	KeyDriveTokenExpiry  = "drive.token_expiry"
	KeyDriveClientID     = "drive.client_id"
	KeyDriveClientSecret = "drive.client_secret"

	KeyFilehostBaseURL     = "filehost.base_url"
	KeyFilehostAPIKey      = "filehost.api_key"
	KeyFilehostURLTemplate = "filehost.url_template"

	KeyIndexTTLSeconds      = "index.ttl_seconds"
	KeyUploadTimeoutSeconds = "upload.timeout_seconds"
	KeyServerListenAddr     = "server.listen_addr"
)

// Defaults applied when a key is absent.
const (
	DefaultIndexTTLSeconds      = 300
	DefaultUploadTimeoutSeconds = 600
	DefaultListenAddr           = "127.0.0.1:8940"
)

// Settings is the typed view of the relay configuration, with defaults
// applied. Build one with LoadSettings each time current values are needed;
// the underlying store may have been hot-reloaded since the last call.
type Settings struct {
	DriveAPIKey       string
	DriveOAuthToken   string
	DriveRefreshToken string

	FilehostBaseURL     string
	FilehostAPIKey      string
	FilehostURLTemplate string

	IndexTTL      time.Duration
	UploadTimeout time.Duration
	ListenAddr    string
}

// LoadSettings reads the relay configuration out of the store.
func LoadSettings(store driven.ConfigStore) Settings {
	s := Settings{
		DriveAPIKey:       store.GetString(KeyDriveAPIKey),
		DriveOAuthToken:   store.GetString(KeyDriveOAuthToken),
		DriveRefreshToken: store.GetString(KeyDriveRefreshToken),

		FilehostBaseURL:     store.GetString(KeyFilehostBaseURL),
		FilehostAPIKey:      store.GetString(KeyFilehostAPIKey),
		FilehostURLTemplate: store.GetString(KeyFilehostURLTemplate),

		IndexTTL:      secondsOrDefault(store, KeyIndexTTLSeconds, DefaultIndexTTLSeconds),
		UploadTimeout: secondsOrDefault(store, KeyUploadTimeoutSeconds, DefaultUploadTimeoutSeconds),
		ListenAddr:    store.GetString(KeyServerListenAddr),
	}
	if s.ListenAddr == "" {
		s.ListenAddr = DefaultListenAddr
	}
	return s
}

func secondsOrDefault(store driven.ConfigStore, key string, fallback int) time.Duration {
	secs := store.GetInt(key)
	if secs <= 0 {
		secs = fallback
	}
	return time.Duration(secs) * time.Second
}
