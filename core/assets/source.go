package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Source gives access to assets by slash separated path relative to the
// asset root.
type Source interface {
	Exists(ctx context.Context, name string) bool
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// NewSource picks an HTTP source for http(s) roots and a directory source
// otherwise.
func NewSource(root string) (Source, error) {
	if strings.HasPrefix(root, "http://") || strings.HasPrefix(root, "https://") {
		return NewHTTP(root)
	}

	return NewDir(root), nil
}

type Dir struct {
	root string
}

func NewDir(root string) *Dir {
	return &Dir{root: root}
}

func (d *Dir) Root() string {
	return d.root
}

func (d *Dir) Exists(ctx context.Context, name string) bool {
	_, span := tracer.Start(ctx, "probe asset", trace.WithAttributes(attribute.String("asset.name", name)))
	defer span.End()

	localPath, ok := d.localPath(name)
	if !ok {
		return false
	}

	info, err := os.Stat(localPath)
	found := err == nil && !info.IsDir()
	span.SetAttributes(attribute.Bool("asset.found", found))
	return found
}

func (d *Dir) Open(_ context.Context, name string) (io.ReadCloser, error) {
	localPath, ok := d.localPath(name)
	if !ok {
		return nil, fmt.Errorf("invalid asset path %q: %w", name, ErrNotFound)
	}

	file, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open asset %q: %w", name, err)
	}

	return file, nil
}

// localPath maps name below root, rejecting paths that escape it.
func (d *Dir) localPath(name string) (string, bool) {
	cleaned := path.Clean("/" + name)
	if cleaned == "/" {
		return "", false
	}

	return filepath.Join(d.root, filepath.FromSlash(cleaned)), true
}

// DefaultRequestTimeout bounds every asset request, body included.
const DefaultRequestTimeout = 5 * time.Second

// HTTP serves assets from a static web root, the same place browser overlays
// load them from.
type HTTP struct {
	base    *url.URL
	client  *http.Client
	timeout time.Duration
}

type HTTPOption func(*HTTP)

func WithHTTPClient(client *http.Client) HTTPOption {
	return func(h *HTTP) {
		if client != nil {
			h.client = client
		}
	}
}

func WithRequestTimeout(timeout time.Duration) HTTPOption {
	return func(h *HTTP) {
		if timeout > 0 {
			h.timeout = timeout
		}
	}
}

// NewHTTP creates a source rooted at base, with an instrumented client unless
// one is given.
func NewHTTP(base string, opts ...HTTPOption) (*HTTP, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid asset base url: %w", err)
	}
	if !strings.HasSuffix(baseURL.Path, "/") {
		baseURL.Path += "/"
	}

	h := &HTTP{
		base: baseURL,
		client: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return "asset " + r.Method
			}),
		)},
		timeout: DefaultRequestTimeout,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h, nil
}

func (h *HTTP) url(name string) string {
	return h.base.ResolveReference(&url.URL{Path: strings.TrimPrefix(path.Clean("/"+name), "/")}).String()
}

func (h *HTTP) Exists(ctx context.Context, name string) bool {
	ctx, span := tracer.Start(ctx, "probe asset", trace.WithAttributes(attribute.String("asset.name", name)))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, h.url(name), nil)
	if err != nil {
		span.RecordError(err)
		return false
	}

	resp, err := h.client.Do(req)
	if err != nil {
		logger.DebugContext(ctx, "Asset probe failed", "asset", name, "error", err)
		return false
	}
	_ = resp.Body.Close()

	found := resp.StatusCode >= 200 && resp.StatusCode < 300
	span.SetAttributes(attribute.Bool("asset.found", found))
	return found
}

// Open fetches name. The request timeout keeps running while the body is
// read.
func (h *HTTP) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url(name), nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to build asset request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to fetch asset %q: %w", name, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("failed to fetch asset %q: status %d: %w", name, resp.StatusCode, ErrNotFound)
	}

	return &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
