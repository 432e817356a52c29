// Package auth provides the token provider for authenticated source stores.
package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mirrorpool/mirrorpool/internal/adapters/driven/config/file"
	"github.com/mirrorpool/mirrorpool/internal/adapters/driven/oauth"
	"github.com/mirrorpool/mirrorpool/internal/connectors/google"
	"github.com/mirrorpool/mirrorpool/internal/core/domain"
	"github.com/mirrorpool/mirrorpool/internal/core/ports/driven"
	"github.com/mirrorpool/mirrorpool/internal/logger"
)

var _ google.TokenProvider = (*RefreshingTokenProvider)(nil)

// refreshMargin renews the access token this long before its recorded expiry
// so an in-flight request never carries a token about to lapse.
const refreshMargin = time.Minute

// RefreshingTokenProvider serves the stored OAuth access token and, when the
// token has expired and a refresh token is on record, trades it for a fresh
// one at the token endpoint. Renewed credentials are written back to the
// config store so future processes start from the rotated state.
type RefreshingTokenProvider struct {
	store    driven.ConfigStore
	tokenURL string

	mu  sync.Mutex
	now func() time.Time
}

// NewRefreshingTokenProvider creates a provider around the config store's
// OAuth state. tokenURL is the provider's token endpoint, typically
// oauth.GoogleTokenURL.
func NewRefreshingTokenProvider(store driven.ConfigStore, tokenURL string) *RefreshingTokenProvider {
	return &RefreshingTokenProvider{
		store:    store,
		tokenURL: tokenURL,
		now:      time.Now,
	}
}

// GetToken returns a currently valid access token, refreshing first when the
// stored one has expired. A failed refresh falls back to the stored token if
// one exists; with neither, the credential is reported invalid.
func (p *RefreshingTokenProvider) GetToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	token := p.store.GetString(file.KeyDriveOAuthToken)
	if token != "" && !p.expired() {
		return token, nil
	}

	refreshToken := p.store.GetString(file.KeyDriveRefreshToken)
	if refreshToken == "" {
		if token == "" {
			return "", fmt.Errorf("no oauth token configured: %w", domain.ErrAuthInvalid)
		}
		// Expired with no refresh path; let the API decide.
		return token, nil
	}

	resp, err := oauth.RefreshAccessToken(ctx, p.tokenURL,
		p.store.GetString(file.KeyDriveClientID),
		p.store.GetString(file.KeyDriveClientSecret),
		refreshToken)
	if err != nil {
		if token != "" {
			logger.Warn("token refresh failed, reusing stored token: %v", err)
			return token, nil
		}
		return "", fmt.Errorf("token refresh failed: %w", err)
	}

	p.persist(resp)
	return resp.AccessToken, nil
}

// IsAuthenticated reports whether any OAuth state is on record.
func (p *RefreshingTokenProvider) IsAuthenticated() bool {
	return p.store.GetString(file.KeyDriveOAuthToken) != "" ||
		p.store.GetString(file.KeyDriveRefreshToken) != ""
}

// expired treats a missing or unparsable expiry as still valid; old config
// files written before expiries were recorded keep working until the API
// rejects the token.
func (p *RefreshingTokenProvider) expired() bool {
	raw := p.store.GetString(file.KeyDriveTokenExpiry)
	if raw == "" {
		return false
	}
	expiry, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return false
	}
	return p.now().Add(refreshMargin).After(expiry)
}

func (p *RefreshingTokenProvider) persist(resp *oauth.TokenResponse) {
	set := func(key, value string) {
		if err := p.store.Set(key, value); err != nil {
			logger.Warn("failed to persist %s: %v", key, err)
		}
	}
	set(file.KeyDriveOAuthToken, resp.AccessToken)
	if !resp.Expiry.IsZero() {
		set(file.KeyDriveTokenExpiry, resp.Expiry.Format(time.RFC3339))
	}
	// Some providers rotate the refresh token on use.
	if resp.RefreshToken != "" {
		set(file.KeyDriveRefreshToken, resp.RefreshToken)
	}
}
