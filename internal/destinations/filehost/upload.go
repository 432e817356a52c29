package filehost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"sync/atomic"

	"github.com/mirrorpool/mirrorpool/internal/core/domain"
	"github.com/mirrorpool/mirrorpool/internal/core/ports/driven"
	"github.com/mirrorpool/mirrorpool/internal/logger"
)

// uploadDiagnosticLimit bounds how much of a rejection body is kept for the
// error message.
const uploadDiagnosticLimit = 4 << 10

// uploadResponse is the destination's upload result payload.
type uploadResponse struct {
	Status  string `json:"status"`
	ID      string `json:"id"`
	URL     string `json:"url"`
	Message string `json:"message"`
}

// Upload relays the stream as a multipart upload. The multipart body is
// written through a pipe so the input's length is never required and the
// destination's consumption rate backpressures the source read.
//
// The whole upload runs under a wall-clock ceiling; on expiry the in-flight
// connection is aborted and domain.ErrUploadTimeout is returned. Success
// requires HTTP 200 or 201 plus an "ok" status and a non-empty identifier;
// any other combination is domain.ErrDestinationRejected with the raw body
// attached for diagnostics.
func (c *Client) Upload(ctx context.Context, r io.Reader, name, mimeType string) (*driven.UploadReceipt, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.UploadTimeout)
	defer cancel()

	counted := &countingReader{r: r}

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	go func() {
		part, err := createFilePart(writer, name, mimeType)
		if err == nil {
			_, err = io.Copy(part, counted)
		}
		if err == nil {
			err = writer.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/upload", pr)
	if err != nil {
		return nil, fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", c.authHeader())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w after %s (%d bytes relayed)",
				domain.ErrUploadTimeout, c.cfg.UploadTimeout, counted.total())
		}
		return nil, fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()

	c.report(counted.total())
	logger.Debug("filehost: upload of %q finished, %d bytes relayed, status %d",
		name, counted.total(), resp.StatusCode)

	body, err := io.ReadAll(io.LimitReader(resp.Body, uploadDiagnosticLimit))
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w after %s (%d bytes relayed)",
				domain.ErrUploadTimeout, c.cfg.UploadTimeout, counted.total())
		}
		return nil, fmt.Errorf("read upload response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%w: status %d, body: %s",
			domain.ErrDestinationRejected, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed uploadResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %s",
			domain.ErrDestinationRejected, strings.TrimSpace(string(body)))
	}
	if parsed.Status != "ok" || parsed.ID == "" {
		return nil, fmt.Errorf("%w: status %q, body: %s",
			domain.ErrDestinationRejected, parsed.Status, strings.TrimSpace(string(body)))
	}

	url := parsed.URL
	if url == "" {
		url = c.FileURL(parsed.ID)
	}
	return &driven.UploadReceipt{ID: parsed.ID, URL: url}, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// createFilePart adds the file part with its real MIME type.
// multipart.Writer.CreateFormFile would hard-code octet-stream.
func createFilePart(w *multipart.Writer, name, mimeType string) (io.Writer, error) {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(name)))
	h.Set("Content-Type", mimeType)
	return w.CreatePart(h)
}

// countingReader tracks cumulative bytes relayed. Observability only.
type countingReader struct {
	r io.Reader
	n atomic.Int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n.Add(int64(n))
	return n, err
}

func (c *countingReader) total() int64 {
	return c.n.Load()
}

func (c *Client) report(total int64) {
	if c.progress != nil {
		c.progress(total)
	}
}
