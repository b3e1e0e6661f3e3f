package rdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/pquerna/cachecontrol"
)

// Loader dereferences a locator (http, https or file IRI) to raw bytes.
type Loader interface {
	Load(ctx context.Context, locator string) ([]byte, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, locator string) ([]byte, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, locator string) ([]byte, error) {
	return f(ctx, locator)
}

const acceptRDF = "text/turtle, application/ld+json;q=0.9, application/rdf+xml;q=0.9, application/n-triples;q=0.8, text/n3;q=0.8, */*;q=0.1"

// DefaultMaxDocumentBytes bounds the size of a fetched document.
const DefaultMaxDocumentBytes = 64 << 20

// ErrSchemeNotAllowed is wrapped by the FetchError of a locator whose scheme
// the loader was configured to refuse.
var ErrSchemeNotAllowed = errors.New("rdf: locator scheme not allowed")

type cachedDocument struct {
	body    []byte
	expires time.Time
}

// HTTPLoader fetches documents over HTTP(S) and from the local file system.
// HTTP responses are cached in memory for as long as their Cache-Control
// headers allow.
type HTTPLoader struct {
	client   *http.Client
	maxBytes int64
	schemes  map[string]bool
	now      func() time.Time

	mu    sync.Mutex
	cache map[string]cachedDocument
}

// LoaderOption configures an HTTPLoader.
type LoaderOption func(*HTTPLoader)

// WithHTTPClient sets the client used for HTTP(S) requests.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(l *HTTPLoader) {
		if client != nil {
			l.client = client
		}
	}
}

// WithMaxDocumentBytes bounds the size of a fetched document. Zero or less
// disables the limit.
func WithMaxDocumentBytes(n int64) LoaderOption {
	return func(l *HTTPLoader) { l.maxBytes = n }
}

// WithSchemes restricts the locator schemes the loader dereferences. The
// default is "http", "https" and "file". Loaders exposed to untrusted
// requesters should drop "file".
func WithSchemes(schemes ...string) LoaderOption {
	return func(l *HTTPLoader) {
		l.schemes = make(map[string]bool, len(schemes))
		for _, scheme := range schemes {
			l.schemes[strings.ToLower(scheme)] = true
		}
	}
}

// NewHTTPLoader returns a loader with a 30 second client timeout.
func NewHTTPLoader(opts ...LoaderOption) *HTTPLoader {
	l := &HTTPLoader{
		client:   &http.Client{Timeout: 30 * time.Second},
		maxBytes: DefaultMaxDocumentBytes,
		schemes:  map[string]bool{"http": true, "https": true, "file": true},
		now:      time.Now,
		cache:    map[string]cachedDocument{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load implements Loader.
func (l *HTTPLoader) Load(ctx context.Context, locator string) ([]byte, error) {
	u, err := url.Parse(locator)
	if err != nil {
		return nil, &FetchError{Locator: locator, Err: err}
	}
	switch {
	case u.Scheme != "file" && u.Scheme != "http" && u.Scheme != "https":
		return nil, &FetchError{Locator: locator, Err: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	case !l.schemes[u.Scheme]:
		return nil, &FetchError{Locator: locator, Err: fmt.Errorf("%w: %q", ErrSchemeNotAllowed, u.Scheme)}
	case u.Scheme == "file":
		return l.loadFile(locator, u)
	default:
		return l.loadHTTP(ctx, locator)
	}
}

func (l *HTTPLoader) loadFile(locator string, u *url.URL) ([]byte, error) {
	path := u.Path
	if path == "" {
		path = u.Opaque
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &FetchError{Locator: locator, Err: err}
	}
	defer f.Close()
	body, err := l.readLimited(f)
	if err != nil {
		return nil, &FetchError{Locator: locator, Err: err}
	}
	return body, nil
}

func (l *HTTPLoader) loadHTTP(ctx context.Context, locator string) ([]byte, error) {
	if body, ok := l.cached(locator); ok {
		return body, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, &FetchError{Locator: locator, Err: err}
	}
	req.Header.Set("Accept", acceptRDF)
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, &FetchError{Locator: locator, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Locator: locator, StatusCode: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}
	body, err := l.readLimited(resp.Body)
	if err != nil {
		return nil, &FetchError{Locator: locator, StatusCode: resp.StatusCode, Err: err}
	}
	l.store(locator, req, resp, body)
	return body, nil
}

func (l *HTTPLoader) readLimited(r io.Reader) ([]byte, error) {
	if l.maxBytes <= 0 {
		return io.ReadAll(r)
	}
	body, err := io.ReadAll(io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > l.maxBytes {
		return nil, ErrInputTooLarge
	}
	return body, nil
}

func (l *HTTPLoader) cached(locator string) ([]byte, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	doc, ok := l.cache[locator]
	if !ok {
		return nil, false
	}
	if !l.now().Before(doc.expires) {
		delete(l.cache, locator)
		return nil, false
	}
	return doc.body, true
}

func (l *HTTPLoader) store(locator string, req *http.Request, resp *http.Response, body []byte) {
	reasons, expires, err := cachecontrol.CachableResponse(req, resp, cachecontrol.Options{PrivateCache: true})
	if err != nil || len(reasons) > 0 || !expires.After(l.now()) {
		return
	}
	l.mu.Lock()
	l.cache[locator] = cachedDocument{body: body, expires: expires}
	l.mu.Unlock()
}
