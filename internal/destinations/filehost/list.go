package filehost

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mirrorpool/mirrorpool/internal/core/domain"
)

// listResponse is the destination's file-listing payload.
type listResponse struct {
	Status string       `json:"status"`
	Files  []listedFile `json:"files"`
}

type listedFile struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Size       int64  `json:"size"`
	UploadedAt string `json:"uploaded_at"`
}

// ListFiles fetches the complete listing of files currently present at the
// destination via one authenticated request. Entries without an identifier
// are dropped; normalized names are computed by the caller on refresh.
func (c *Client) ListFiles(ctx context.Context) ([]domain.DestinationEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/api/files", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create listing request: %w", err)
	}
	req.Header.Set("Authorization", c.authHeader())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch listing: unexpected status %d", resp.StatusCode)
	}

	var parsed listResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}
	if parsed.Status != "ok" {
		return nil, fmt.Errorf("fetch listing: destination status %q", parsed.Status)
	}

	entries := make([]domain.DestinationEntry, 0, len(parsed.Files))
	for _, f := range parsed.Files {
		if f.ID == "" {
			continue
		}
		uploadedAt, _ := time.Parse(time.RFC3339, f.UploadedAt)
		entries = append(entries, domain.DestinationEntry{
			ID:         f.ID,
			Name:       f.Name,
			SizeBytes:  f.Size,
			UploadedAt: uploadedAt,
		})
	}
	return entries, nil
}
