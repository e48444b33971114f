package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"syllabuscal/internal/bootstrap/logging"
	"syllabuscal/internal/domain/syllabus"
	"syllabuscal/internal/errs"
	"syllabuscal/internal/ports"
)

const (
	DefaultTimeout  = 30 * time.Second
	DefaultMaxBytes = 32 << 20
)

// HTTPFetcher downloads documents over http(s). file:// references are only
// read when the fetcher was built with WithLocalFiles.
type HTTPFetcher struct {
	client     *http.Client
	maxBytes   int64
	localFiles bool
}

var _ ports.DocumentFetcher = (*HTTPFetcher)(nil)

type Option func(*HTTPFetcher)

// WithLocalFiles enables file:// references. Only local entry points such as
// the process command should set it.
func WithLocalFiles() Option {
	return func(f *HTTPFetcher) {
		f.localFiles = true
	}
}

func NewHTTPFetcher(timeout time.Duration, maxBytes int64, opts ...Option) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	f := &HTTPFetcher{
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Fetch returns the document body. Every failure, including an empty body,
// wraps syllabus.ErrDocumentUnavailable.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}

	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, errs.Wrap(syllabus.ErrDocumentUnavailable, "parse document url")
	}

	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "infrastructure.fetch"),
		slog.String("url", RedactURL(parsed)),
	)

	var body []byte
	switch parsed.Scheme {
	case "http", "https":
		body, err = f.fetchHTTP(ctx, parsed.String())
	case "file":
		if !f.localFiles {
			return nil, fmt.Errorf("%w: local files are disabled", syllabus.ErrDocumentUnavailable)
		}
		body, err = f.readFile(parsed.Path)
	default:
		return nil, fmt.Errorf("%w: unsupported url scheme %q", syllabus.ErrDocumentUnavailable, parsed.Scheme)
	}
	if err != nil {
		logging.Warn(logCtx, "document fetch failed", slog.Any("err", errs.Loggable(err)))
		return nil, fmt.Errorf("%w: %w", syllabus.ErrDocumentUnavailable, err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty document", syllabus.ErrDocumentUnavailable)
	}

	logging.Debug(logCtx, "document fetched", slog.Int("bytes", len(body)))
	return body, nil
}

func (f *HTTPFetcher) fetchHTTP(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, errs.Wrap(err, "build request")
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errs.WithStack(errs.Wrap(err, "do request"))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return f.readLimited(resp.Body)
}

func (f *HTTPFetcher) readFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(err, "open file")
	}
	defer file.Close()
	return f.readLimited(file)
}

func (f *HTTPFetcher) readLimited(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, f.maxBytes+1))
	if err != nil {
		return nil, errs.Wrap(err, "read body")
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("document exceeds %d bytes", f.maxBytes)
	}
	return body, nil
}

// RedactURL keeps scheme and host so signed storage links do not leak into logs.
func RedactURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	if u.Scheme == "file" {
		return "file://...(redacted)"
	}
	if u.Host == "" {
		return "...(redacted)"
	}
	return u.Scheme + "://" + u.Host + "/...(redacted)"
}
