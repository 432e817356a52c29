// Package google provides shared infrastructure for the Google Drive connector.
//
// This package contains:
//   - TokenSource adapter to bridge mirrorpool's TokenProvider to oauth2.TokenSource
//   - Service factory for creating the Drive API client
//   - Error handling for common Google API errors (401, 403, 404, 429)
//   - Rate limiting to respect Google API quotas
//
// # Usage
//
// The drive connector uses this package to create an authenticated API client:
//
//	ts := google.NewTokenSource(ctx, tokenProvider)
//	svc, err := google.NewDriveService(ctx, ts)
//
// # OAuth2 Scopes
//
// The connector uses the https://www.googleapis.com/auth/drive.readonly scope.
// For user-created internal apps, restricted scopes don't require verification.
package google
