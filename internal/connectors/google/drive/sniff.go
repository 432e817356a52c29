package drive

import (
	"bytes"
	"io"
	"strings"
	"time"

	"github.com/mirrorpool/mirrorpool/internal/core/domain"
)

// sniffWindow is how many leading bytes are inspected for an HTML marker.
const sniffWindow = 100

// sniffTimeout bounds how long the sniff may wait for the first bytes.
// A stream that produces no HTML marker within the window (or stays silent
// past the timeout) is treated as genuine content.
const sniffTimeout = time.Second

var htmlMarkers = []string{"<html", "<!doctype"}

type sniffResult struct {
	buf []byte
	err error
}

// sniffHTML peeks at the first bytes of the stream. If they contain an HTML
// document marker the store served another obstacle page instead of content:
// the stream is closed and domain.ErrObstaclePage returned. Otherwise the
// consumed prefix is replayed in front of the remaining stream.
func sniffHTML(rc io.ReadCloser) (io.ReadCloser, error) {
	results := make(chan sniffResult, 1)
	go func() {
		buf := make([]byte, sniffWindow)
		n, err := io.ReadFull(rc, buf)
		results <- sniffResult{buf: buf[:n], err: err}
	}()

	select {
	case res := <-results:
		if res.err != nil && res.err != io.EOF && res.err != io.ErrUnexpectedEOF {
			rc.Close()
			return nil, res.err
		}
		if containsHTMLMarker(res.buf) {
			rc.Close()
			return nil, domain.ErrObstaclePage
		}
		return &replayReader{prefix: bytes.NewReader(res.buf), rest: rc}, nil

	case <-time.After(sniffTimeout):
		// No bytes observed within the window; hand the stream back and let
		// the pending read surface through the replay reader.
		return &pendingReader{results: results, rest: rc}, nil
	}
}

func containsHTMLMarker(buf []byte) bool {
	head := strings.ToLower(string(buf))
	for _, marker := range htmlMarkers {
		if strings.Contains(head, marker) {
			return true
		}
	}
	return false
}

// replayReader re-exposes the sniffed prefix before the remaining stream.
type replayReader struct {
	prefix *bytes.Reader
	rest   io.ReadCloser
}

func (r *replayReader) Read(p []byte) (int, error) {
	if r.prefix.Len() > 0 {
		return r.prefix.Read(p)
	}
	return r.rest.Read(p)
}

func (r *replayReader) Close() error {
	return r.rest.Close()
}

// pendingReader defers to the sniff goroutine's outstanding read before
// exposing the rest of the stream. Created only when the sniff timed out.
type pendingReader struct {
	results  <-chan sniffResult
	rest     io.ReadCloser
	resolved io.Reader
}

func (r *pendingReader) Read(p []byte) (int, error) {
	if r.resolved == nil {
		res := <-r.results
		if res.err != nil && res.err != io.EOF && res.err != io.ErrUnexpectedEOF {
			return 0, res.err
		}
		r.resolved = io.MultiReader(bytes.NewReader(res.buf), r.rest)
	}
	return r.resolved.Read(p)
}

func (r *pendingReader) Close() error {
	return r.rest.Close()
}
