// Package resource fetches stylesheets and images for the renderer.
package resource

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"vellum/pkg/logging"
)

var (
	// ErrUnsupportedScheme is returned for URLs no fetcher handles.
	ErrUnsupportedScheme = errors.New("unsupported URL scheme")
	// ErrNotFound is returned when a resource does not exist.
	ErrNotFound = errors.New("resource not found")
)

// DefaultUserAgent is sent with HTTP requests unless overridden.
const DefaultUserAgent = "vellum/1.0 (compatible; Go)"

// Resource is a fetched body.
type Resource struct {
	URL         string
	ContentType string
	Body        []byte
}

// Fetcher retrieves resources by URL. Implementations must be safe for
// concurrent use.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) (*Resource, error)
}

// DefaultFetcher fetches http(s), file, bundle and data URLs. Plain paths
// are read from the file system.
type DefaultFetcher struct {
	client    *http.Client
	userAgent string
	logger    *zap.Logger
}

// Option configures a DefaultFetcher.
type Option func(*DefaultFetcher)

// WithTimeout bounds each HTTP request.
func WithTimeout(d time.Duration) Option {
	return func(f *DefaultFetcher) { f.client = &http.Client{Timeout: d} }
}

// WithClient replaces the HTTP client.
func WithClient(c *http.Client) Option {
	return func(f *DefaultFetcher) { f.client = c }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *DefaultFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(f *DefaultFetcher) { f.logger = l }
}

// NewFetcher creates a DefaultFetcher with a 30s HTTP timeout.
func NewFetcher(opts ...Option) *DefaultFetcher {
	f := &DefaultFetcher{
		client:    &http.Client{Timeout: 30 * time.Second},
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = logging.Or(f.logger).Named("resource")
	return f
}

// Fetch retrieves the resource at uri.
func (f *DefaultFetcher) Fetch(ctx context.Context, uri string) (*Resource, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", uri, err)
	}
	start := time.Now()
	var res *Resource
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		res, err = f.fetchHTTP(ctx, uri)
	case "file":
		res, err = readFile(uri, u.Path)
	case "":
		res, err = readFile(uri, uri)
	case "bundle":
		res, err = readBundle(uri, u)
	case "data":
		res, err = decodeData(uri)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}
	if err != nil {
		return nil, err
	}
	f.logger.Debug("Fetched resource",
		zap.String("url", uri),
		zap.Int("bytes", len(res.Body)),
		zap.Duration("duration", time.Since(start)))
	return res, nil
}

func (f *DefaultFetcher) fetchHTTP(ctx context.Context, uri string) (*Resource, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", uri, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, uri)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d fetching %s", resp.StatusCode, uri)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return &Resource{URL: uri, ContentType: resp.Header.Get("Content-Type"), Body: body}, nil
}

func readFile(uri, path string) (*Resource, error) {
	body, err := os.ReadFile(filepath.FromSlash(path))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, uri)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return &Resource{URL: uri, ContentType: contentTypeByExt(path), Body: body}, nil
}

// decodeData decodes an RFC 2397 data URL.
func decodeData(uri string) (*Resource, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("malformed data URL: missing comma")
	}
	contentType := "text/plain"
	encoded := false
	for i, part := range strings.Split(meta, ";") {
		switch {
		case i == 0 && part != "":
			contentType = part
		case part == "base64":
			encoded = true
		}
	}
	var body []byte
	if encoded {
		b, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("decoding data URL: %w", err)
		}
		body = b
	} else {
		s, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("decoding data URL: %w", err)
		}
		body = []byte(s)
	}
	return &Resource{URL: uri, ContentType: contentType, Body: body}, nil
}

func contentTypeByExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".css":
		return "text/css"
	case ".html", ".htm":
		return "text/html"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".bmp":
		return "image/bmp"
	case ".webp":
		return "image/webp"
	}
	return ""
}

// FetchCSS fetches a stylesheet and returns its text. Bodies whose content
// type is neither text nor CSS are rejected.
func FetchCSS(ctx context.Context, f Fetcher, uri string) (string, error) {
	res, err := f.Fetch(ctx, uri)
	if err != nil {
		return "", err
	}
	ct := strings.ToLower(res.ContentType)
	if ct != "" && !strings.HasPrefix(ct, "text/") && !strings.Contains(ct, "css") {
		return "", fmt.Errorf("unexpected content type for CSS: %s", res.ContentType)
	}
	return string(res.Body), nil
}

// ResolveURL resolves a possibly relative reference against base. If ref
// is already absolute, or base is empty or unparsable, ref is returned.
func ResolveURL(base, ref string) string {
	if base == "" {
		return ref
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}

// IsNetworkURL reports whether s is an http or https URL.
func IsNetworkURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
