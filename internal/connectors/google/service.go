package google

import (
	"context"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// NewDriveService creates a Google Drive API service using the provided TokenSource.
func NewDriveService(ctx context.Context, ts oauth2.TokenSource) (*drive.Service, error) {
	return drive.NewService(ctx, option.WithTokenSource(ts))
}

// NewDriveServiceWithAPIKey creates a Drive API service authenticated with a
// server API key instead of a user OAuth token. Sufficient for reading files
// shared "anyone with the link".
func NewDriveServiceWithAPIKey(ctx context.Context, apiKey string) (*drive.Service, error) {
	return drive.NewService(ctx, option.WithAPIKey(apiKey))
}

// NewDriveServiceUnauthenticated creates a Drive API service with no
// credential. Metadata requests fail with 401, which pushes the connector
// onto its unauthenticated public fallback.
func NewDriveServiceUnauthenticated(ctx context.Context) (*drive.Service, error) {
	return drive.NewService(ctx, option.WithoutAuthentication())
}

// NewDriveServiceForTest creates a Drive API service pointed at a test server.
// Used by connector tests to stub the Drive API with httptest.
func NewDriveServiceForTest(ctx context.Context, endpoint string, client ...option.ClientOption) (*drive.Service, error) {
	opts := append([]option.ClientOption{
		option.WithEndpoint(endpoint),
		option.WithoutAuthentication(),
	}, client...)
	return drive.NewService(ctx, opts...)
}
