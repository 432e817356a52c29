// mirrorpool relays files from an authenticated source store into a public
// file host.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mirrorpool/mirrorpool/internal/adapters/driven/auth"
	configfile "github.com/mirrorpool/mirrorpool/internal/adapters/driven/config/file"
	"github.com/mirrorpool/mirrorpool/internal/adapters/driven/oauth"
	"github.com/mirrorpool/mirrorpool/internal/adapters/driving/cli"
	"github.com/mirrorpool/mirrorpool/internal/connectors/google"
	gdrive "github.com/mirrorpool/mirrorpool/internal/connectors/google/drive"
	"github.com/mirrorpool/mirrorpool/internal/core/services"
	"github.com/mirrorpool/mirrorpool/internal/dedupe"
	"github.com/mirrorpool/mirrorpool/internal/destinations/filehost"
	"github.com/mirrorpool/mirrorpool/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	store, err := configfile.NewConfigStore(os.Getenv("MIRRORPOOL_CONFIG_DIR"))
	if err != nil {
		return fmt.Errorf("failed to open config: %w", err)
	}
	if err := store.Watch(ctx); err != nil {
		// Hot reload is a convenience; a missing watcher is not fatal.
		logger.Warn("config watcher unavailable: %v", err)
	}

	settings := configfile.LoadSettings(store)

	source, err := buildSource(ctx, store, settings)
	if err != nil {
		return err
	}

	dest := filehost.New(filehost.Config{
		BaseURL:           settings.FilehostBaseURL,
		APIKey:            settings.FilehostAPIKey,
		PublicURLTemplate: settings.FilehostURLTemplate,
		UploadTimeout:     settings.UploadTimeout,
	}, filehost.WithAPIKeySource(func() string {
		// Re-read per request so a hot-reloaded credential takes effect.
		return store.GetString(configfile.KeyFilehostAPIKey)
	}))

	index := dedupe.NewIndex(dest, dedupe.WithTTL(settings.IndexTTL))

	cli.SetServices(
		services.NewRelay(source, dest, index),
		services.NewHealth(source, index),
		store,
	)

	return cli.Execute()
}

// buildSource creates the Drive-backed source store. An OAuth credential
// (access or refresh token — the provider renews the access token as needed)
// takes precedence over a server API key; with neither, the authenticated API is
// still constructed (requests will fail Validate) and the unauthenticated
// fallback carries downloads of public files.
func buildSource(ctx context.Context, store *configfile.ConfigStore, settings configfile.Settings) (*gdrive.Connector, error) {
	switch {
	case settings.DriveOAuthToken != "" || settings.DriveRefreshToken != "":
		provider := auth.NewRefreshingTokenProvider(store, oauth.GoogleTokenURL)
		service, err := google.NewDriveService(ctx, google.NewTokenSource(ctx, provider))
		if err != nil {
			return nil, fmt.Errorf("failed to build drive client: %w", err)
		}
		return gdrive.New(service), nil
	case settings.DriveAPIKey != "":
		service, err := google.NewDriveServiceWithAPIKey(ctx, settings.DriveAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to build drive client: %w", err)
		}
		return gdrive.New(service), nil
	default:
		service, err := google.NewDriveServiceUnauthenticated(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to build drive client: %w", err)
		}
		return gdrive.New(service), nil
	}
}
