package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/mirrorpool/mirrorpool/internal/adapters/driven/config/file"
	drivenoauth "github.com/mirrorpool/mirrorpool/internal/adapters/driven/oauth"
	"github.com/mirrorpool/mirrorpool/internal/adapters/driving/oauth"
)

// Google OAuth endpoints for the Drive credential.
const (
	googleAuthURL = "https://accounts.google.com/o/oauth2/v2/auth"
	driveScope    = "https://www.googleapis.com/auth/drive.readonly"
)

var (
	authClientID     string
	authClientSecret string
	authNoBrowser    bool
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the source-store credential",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Obtain an OAuth token for the source store",
	Long: `Runs the OAuth authorization flow for the source store.

A browser window opens for consent; the resulting token is stored in the
config file and picked up by subsequent mirror runs.

Example:
  mirrorpool auth login --client-id "xxx" --client-secret "yyy"`,
	RunE: runAuthLogin,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which credentials are configured",
	RunE:  runAuthStatus,
}

func init() {
	authLoginCmd.Flags().StringVar(&authClientID, "client-id", "", "OAuth client ID (required)")
	authLoginCmd.Flags().StringVar(&authClientSecret, "client-secret", "", "OAuth client secret (required)")
	authLoginCmd.Flags().BoolVar(&authNoBrowser, "no-browser", false, "print the authorization URL instead of opening a browser")
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}
	if authClientID == "" || authClientSecret == "" {
		return errors.New("--client-id and --client-secret are required")
	}

	state := oauth.GenerateState()
	verifier := oauth.GenerateCodeVerifier()

	server := oauth.NewCallbackServer(0, state)
	if err := server.Start(); err != nil {
		return fmt.Errorf("failed to start callback server: %w", err)
	}
	defer func() { _ = server.Stop() }()

	authURL := buildAuthURL(server.RedirectURI(), state, verifier)
	if authNoBrowser {
		cmd.Printf("Open this URL to authorize:\n\n  %s\n\n", authURL)
	} else {
		cmd.Println("Opening browser for authorization...")
		if err := oauth.OpenBrowser(authURL); err != nil {
			cmd.Printf("Could not open browser; visit:\n\n  %s\n\n", authURL)
		}
	}

	cmd.Println("Waiting for authorization...")
	code, err := server.WaitForCode(5 * time.Minute)
	if err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	tokens, err := drivenoauth.ExchangeCodeForTokens(ctx,
		drivenoauth.GoogleTokenURL, authClientID, authClientSecret, code, server.RedirectURI(), verifier)
	if err != nil {
		return fmt.Errorf("token exchange failed: %w", err)
	}

	if err := configStore.Set(file.KeyDriveOAuthToken, tokens.AccessToken); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	if !tokens.Expiry.IsZero() {
		if err := configStore.Set(file.KeyDriveTokenExpiry, tokens.Expiry.Format(time.RFC3339)); err != nil {
			return fmt.Errorf("failed to store token expiry: %w", err)
		}
	}
	if tokens.RefreshToken != "" {
		// The client credentials are kept alongside the refresh token so the
		// relay can renew the access token unattended.
		if err := configStore.Set(file.KeyDriveRefreshToken, tokens.RefreshToken); err != nil {
			return fmt.Errorf("failed to store refresh token: %w", err)
		}
		if err := configStore.Set(file.KeyDriveClientID, authClientID); err != nil {
			return fmt.Errorf("failed to store client id: %w", err)
		}
		if err := configStore.Set(file.KeyDriveClientSecret, authClientSecret); err != nil {
			return fmt.Errorf("failed to store client secret: %w", err)
		}
	}

	cmd.Println("Authorization successful. Credential stored.")
	return nil
}

func buildAuthURL(redirectURI, state, verifier string) string {
	params := url.Values{}
	params.Set("client_id", authClientID)
	params.Set("redirect_uri", redirectURI)
	params.Set("response_type", "code")
	params.Set("scope", driveScope)
	params.Set("state", state)
	params.Set("code_challenge", oauth.GenerateCodeChallenge(verifier))
	params.Set("code_challenge_method", "S256")
	params.Set("access_type", "offline")
	return googleAuthURL + "?" + params.Encode()
}

func runAuthStatus(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	settings := file.LoadSettings(configStore)

	cmd.Printf("Drive OAuth token: %s\n", setOrNot(settings.DriveOAuthToken != ""))
	cmd.Printf("Drive refresh token: %s\n", setOrNot(settings.DriveRefreshToken != ""))
	cmd.Printf("Drive API key: %s\n", setOrNot(settings.DriveAPIKey != ""))
	cmd.Printf("Filehost API key: %s\n", setOrNot(settings.FilehostAPIKey != ""))
	return nil
}

func setOrNot(set bool) string {
	if set {
		return "configured"
	}
	return "(not set)"
}
