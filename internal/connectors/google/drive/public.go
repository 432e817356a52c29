package drive

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/mirrorpool/mirrorpool/internal/core/domain"
	"github.com/mirrorpool/mirrorpool/internal/logger"
)

// defaultPublicBaseURL is Drive's unauthenticated download endpoint.
const defaultPublicBaseURL = "https://drive.google.com/uc"

// interstitialBodyLimit bounds how much of an obstacle page is read while
// scanning for the confirmation token.
const interstitialBodyLimit = 2 << 20

const defaultMimeType = "application/octet-stream"

// publicClient retrieves file bytes through the unauthenticated endpoint,
// defeating the interstitial page Drive serves for files it will not scan.
type publicClient struct {
	baseURL string
	client  *http.Client

	// noRedirect is the same transport with redirect-following disabled,
	// used for the first hop only.
	noRedirect *http.Client
}

func newPublicClient(baseURL string, client *http.Client) *publicClient {
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}
	noRedirect := *client
	noRedirect.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &publicClient{
		baseURL:    baseURL,
		client:     client,
		noRedirect: &noRedirect,
	}
}

func (p *publicClient) downloadURL(handle domain.FileHandle) string {
	return fmt.Sprintf("%s?export=download&id=%s", p.baseURL, handle)
}

// Probe resolves best-effort metadata from the public endpoint's response
// headers. Missing headers degrade to synthesized values; Probe only fails
// when the request itself cannot be made.
func (p *publicClient) Probe(ctx context.Context, handle domain.FileHandle) (*domain.FileInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.downloadURL(handle), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create probe request: %w", err)
	}

	resp, err := p.noRedirect.Do(req)
	if err != nil {
		return nil, fmt.Errorf("probe public endpoint: %w", err)
	}
	defer resp.Body.Close()

	info := &domain.FileInfo{
		Name:     fileNameFromDisposition(resp.Header.Get("Content-Disposition")),
		MimeType: resp.Header.Get("Content-Type"),
	}
	if info.Name == "" {
		info.Name = "file-" + handle
	}
	if info.MimeType == "" || strings.HasPrefix(info.MimeType, "text/html") {
		info.MimeType = defaultMimeType
	}
	if resp.ContentLength > 0 {
		info.SizeBytes = resp.ContentLength
	}
	return info, nil
}

// fileNameFromDisposition extracts a filename= parameter, possibly quoted.
func fileNameFromDisposition(header string) string {
	if header == "" {
		return ""
	}
	if _, params, err := mime.ParseMediaType(header); err == nil {
		if name := params["filename"]; name != "" {
			return name
		}
	}
	// Loose fallback for headers mime.ParseMediaType rejects.
	const marker = "filename="
	idx := strings.Index(strings.ToLower(header), marker)
	if idx < 0 {
		return ""
	}
	name := header[idx+len(marker):]
	if semi := strings.IndexByte(name, ';'); semi >= 0 {
		name = name[:semi]
	}
	return strings.Trim(strings.TrimSpace(name), `"`)
}

// Fetch retrieves the file bytes, bypassing the interstitial page when one is
// served. The returned stream has already had its first bytes sniffed: if
// they look like another HTML page the fetch fails with domain.ErrObstaclePage.
func (p *publicClient) Fetch(ctx context.Context, handle domain.FileHandle) (io.ReadCloser, error) {
	url := p.downloadURL(handle)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create download request: %w", err)
	}

	// First hop with redirect-following disabled so the interstitial (or a
	// redirect to the real payload) is observed directly.
	resp, err := p.noRedirect.Do(req)
	if err != nil {
		return nil, fmt.Errorf("public download: %w", err)
	}

	switch {
	// Redirect wins over content-type sniffing: redirect bodies are HTML too.
	case resp.StatusCode >= 300 && resp.StatusCode < 400:
		location := resp.Header.Get("Location")
		resp.Body.Close()
		if location == "" {
			return nil, fmt.Errorf("public download: redirect without location (status %d)", resp.StatusCode)
		}
		return p.stream(ctx, location, "")

	case isHTML(resp):
		return p.bypassInterstitial(ctx, url, resp)

	case resp.StatusCode != http.StatusOK:
		resp.Body.Close()
		return nil, fmt.Errorf("public download: unexpected status %d", resp.StatusCode)

	default:
		return sniffHTML(resp.Body)
	}
}

// bypassInterstitial works around the "file too large to scan" page: capture
// the response cookies, scan the page for the confirmation token, and re-issue
// the download with the token and cookies attached.
func (p *publicClient) bypassInterstitial(ctx context.Context, url string, resp *http.Response) (io.ReadCloser, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, interstitialBodyLimit))
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("read interstitial page: %w", err)
	}

	token := ParseConfirmToken(body)
	cookies := serializeCookies(resp.Cookies())
	logger.Debug("drive: interstitial detected, confirm token %q", token)

	return p.stream(ctx, fmt.Sprintf("%s&confirm=%s", url, token), cookies)
}

// stream issues the final GET and sniffs the first bytes for an HTML marker.
func (p *publicClient) stream(ctx context.Context, url, cookies string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create streaming request: %w", err)
	}
	if cookies != "" {
		req.Header.Set("Cookie", cookies)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("streaming download: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("streaming download: unexpected status %d", resp.StatusCode)
	}
	if isHTML(resp) {
		resp.Body.Close()
		return nil, domain.ErrObstaclePage
	}
	return sniffHTML(resp.Body)
}

func isHTML(resp *http.Response) bool {
	return strings.Contains(resp.Header.Get("Content-Type"), "text/html")
}

// serializeCookies re-serializes Set-Cookie values as one Cookie header value.
func serializeCookies(cookies []*http.Cookie) string {
	parts := make([]string, 0, len(cookies))
	for _, c := range cookies {
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}
