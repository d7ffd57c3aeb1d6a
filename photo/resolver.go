package photo

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lvillar/carteira"
	"github.com/lvillar/carteira/member"
)

const (
	DefaultFetchTimeout = 10 * time.Second
	DefaultMaxBytes     = 10 << 20
	DefaultCacheTTL     = 24 * time.Hour
)

// Resolver turns a member's photo reference into an embeddable data URI.
// Remote photos are fetched once and cached; when the direct fetch fails the
// configured proxy is tried.
//
// By default only public addresses are fetched. WithAllowedHosts narrows
// that further to a list of photo hosts.
type Resolver struct {
	client       *http.Client
	timeout      time.Duration
	allowPrivate bool
	allowedHosts []string
	base         *url.URL
	proxyURL     string
	cache        Cache
	ttl          time.Duration
	maxBytes     int64
	maxPixels    int64
	logger       *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHTTPClient sets the client used for photo fetches. It replaces the
// default client and with it the public address check.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) { r.client = c }
}

// WithFetchTimeout bounds each photo fetch of the default client.
func WithFetchTimeout(d time.Duration) Option {
	return func(r *Resolver) { r.timeout = d }
}

// WithPrivateNetworks lets the default client reach loopback, private and
// link-local addresses, e.g. a storage emulator during development.
func WithPrivateNetworks(allow bool) Option {
	return func(r *Resolver) { r.allowPrivate = allow }
}

// WithAllowedHosts restricts fetches to the given hosts and their
// subdomains. The configured proxy is exempt.
func WithAllowedHosts(hosts ...string) Option {
	return func(r *Resolver) { r.allowedHosts = hosts }
}

// WithBaseURL resolves root-relative photo paths against base.
func WithBaseURL(base string) Option {
	return func(r *Resolver) {
		if u, err := url.Parse(base); err == nil && u.Host != "" {
			r.base = u
		}
	}
}

// WithProxy sets the fallback proxy. The escaped source URL is appended to
// proxyURL, e.g. "https://host/api/photo-proxy?url=".
func WithProxy(proxyURL string) Option {
	return func(r *Resolver) { r.proxyURL = proxyURL }
}

// WithCache stores normalised photos in c for ttl.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(r *Resolver) {
		r.cache = c
		r.ttl = ttl
	}
}

// WithMaxBytes caps the size of a fetched photo.
func WithMaxBytes(n int64) Option {
	return func(r *Resolver) { r.maxBytes = n }
}

// WithMaxPixels caps the decoded size of a photo.
func WithMaxPixels(n int64) Option {
	return func(r *Resolver) { r.maxPixels = n }
}

// WithLogger sets the resolver's logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// NewResolver returns a Resolver with a bounded, public-only HTTP client and
// no cache.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		timeout:   DefaultFetchTimeout,
		ttl:       DefaultCacheTTL,
		maxBytes:  DefaultMaxBytes,
		maxPixels: DefaultMaxPixels,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.client == nil {
		r.client = NewHTTPClient(r.timeout, r.allowPrivate)
	}
	return r
}

// Resolve returns a JPEG data URI for ref. Unsafe references fail with
// carteira.ErrUnsafeSource and failed downloads with carteira.ErrFetch.
func (r *Resolver) Resolve(ctx context.Context, ref string) (string, error) {
	const op = "photo.Resolve"

	src, ok := member.PhotoSource(ref)
	if !ok {
		return "", carteira.NewError(op, carteira.ErrUnsafeSource)
	}
	if strings.HasPrefix(strings.ToLower(src), "data:") {
		raw, err := DecodeDataURI(src)
		if err != nil {
			return "", carteira.NewError(op, err)
		}
		out, err := NormalizeLimit(raw, r.maxPixels)
		if err != nil {
			return "", carteira.NewError(op, err)
		}
		return DataURI(out), nil
	}

	abs, err := r.absolute(src)
	if err != nil {
		return "", carteira.NewError(op, err)
	}

	key := cacheKey(abs)
	if r.cache != nil {
		if data, hit, err := r.cache.Get(ctx, key); err != nil {
			r.logger.WarnContext(ctx, "photo cache read failed", "error", err)
		} else if hit {
			return DataURI(data), nil
		}
	}

	raw, _, err := r.Fetch(ctx, abs)
	// A refused source is not retried through the proxy.
	if err != nil && r.proxyURL != "" && !errors.Is(err, carteira.ErrUnsafeSource) {
		r.logger.DebugContext(ctx, "direct photo fetch failed, trying proxy", "url", abs, "error", err)
		raw, _, err = r.fetch(ctx, r.proxyURL+url.QueryEscape(abs), false)
	}
	if err != nil {
		return "", carteira.NewError(op, err)
	}

	out, err := NormalizeLimit(raw, r.maxPixels)
	if err != nil {
		return "", carteira.NewError(op, err)
	}
	if r.cache != nil {
		if err := r.cache.Set(ctx, key, out, r.ttl); err != nil {
			r.logger.WarnContext(ctx, "photo cache write failed", "error", err)
		}
	}
	return DataURI(out), nil
}

// Prepare replaces rec.Foto with its resolved data URI. Failures are logged
// and leave the reference untouched so the browser can still try it.
func (r *Resolver) Prepare(ctx context.Context, rec *member.Record) {
	if rec.Foto == "" {
		return
	}
	uri, err := r.Resolve(ctx, string(rec.Foto))
	if err != nil {
		r.logger.WarnContext(ctx, "photo not embedded",
			"member", rec.Identifier(),
			"error", err,
		)
		return
	}
	rec.Foto = member.Text(uri)
}

// Fetch downloads an image and returns its bytes and media type. Hosts
// outside the allow list and non-public addresses fail with
// carteira.ErrUnsafeSource; responses that are not 200 or not image/* fail
// with carteira.ErrFetch.
func (r *Resolver) Fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	return r.fetch(ctx, rawURL, true)
}

func (r *Resolver) fetch(ctx context.Context, rawURL string, checkHost bool) ([]byte, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, "", fmt.Errorf("%w: %q", carteira.ErrUnsafeSource, rawURL)
	}
	if checkHost && !hostAllowed(r.allowedHosts, u.Hostname()) {
		return nil, "", fmt.Errorf("%w: host %q is not allowed", carteira.ErrUnsafeSource, u.Hostname())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", carteira.ErrFetch, err)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := r.client.Do(req)
	if err != nil {
		if errors.Is(err, carteira.ErrUnsafeSource) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("%w: %v", carteira.ErrFetch, err)
	}
	defer resp.Body.Close()

	// Redirects may leave the allowed hosts.
	if checkHost && resp.Request != nil && !hostAllowed(r.allowedHosts, resp.Request.URL.Hostname()) {
		return nil, "", fmt.Errorf("%w: redirected to %q", carteira.ErrUnsafeSource, resp.Request.URL.Hostname())
	}

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%w: %s returned %d", carteira.ErrFetch, u.Host, resp.StatusCode)
	}
	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if !strings.HasPrefix(mediaType, "image/") {
		return nil, "", fmt.Errorf("%w: unexpected content type %q", carteira.ErrFetch, mediaType)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, r.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", carteira.ErrFetch, err)
	}
	if int64(len(data)) > r.maxBytes {
		return nil, "", fmt.Errorf("%w: photo exceeds %d bytes", carteira.ErrFetch, r.maxBytes)
	}
	return data, mediaType, nil
}

func (r *Resolver) absolute(src string) (string, error) {
	if !strings.HasPrefix(src, "/") {
		return src, nil
	}
	if r.base == nil {
		return "", fmt.Errorf("%w: relative photo path %q without base URL", carteira.ErrFetch, src)
	}
	ref, err := url.Parse(src)
	if err != nil {
		return "", fmt.Errorf("%w: %v", carteira.ErrUnsafeSource, err)
	}
	return r.base.ResolveReference(ref).String(), nil
}

func cacheKey(u string) string {
	sum := sha256.Sum256([]byte(u))
	return hex.EncodeToString(sum[:])
}
