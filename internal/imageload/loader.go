package imageload

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	_ "github.com/gen2brain/avif"
	_ "golang.org/x/image/webp"
)

const (
	defaultMaxBytes   = 32 << 20
	maxRedirects      = 5
	acceptedImageMIME = "image/avif,image/webp,image/png,image/jpeg,image/gif,image/*;q=0.8"
)

var (
	ErrInvalidURL  = errors.New("invalid image url")
	ErrFetch       = errors.New("fetch image")
	ErrTooLarge    = errors.New("image exceeds size limit")
	ErrDecode      = errors.New("decode image")
	ErrEmptyBitmap = errors.New("image has no pixels")
)

type Options struct {
	// Timeout bounds one fetch including the body read. Zero disables it.
	Timeout time.Duration
	// LocalRoot is the directory that file URLs and bare paths must stay in.
	// Empty disables local sources.
	LocalRoot string
	MaxBytes  int64
	Client    *http.Client
}

// Loader fetches and decodes thumbnails. Remote requests are anonymous: the
// client has no cookie jar and URL credentials are stripped, so the server
// sees the same request a cross-origin anonymous image fetch would send.
type Loader struct {
	client    *http.Client
	timeout   time.Duration
	localRoot string
	maxBytes  int64
}

func NewLoader(options Options) *Loader {
	client := options.Client
	if client == nil {
		client = &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				req.URL.User = nil
				req.Header.Del("Authorization")
				req.Header.Del("Cookie")
				return nil
			},
		}
	}

	maxBytes := options.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}

	return &Loader{
		client:    client,
		timeout:   options.Timeout,
		localRoot: strings.TrimSpace(options.LocalRoot),
		maxBytes:  maxBytes,
	}
}

// ValidateURL reports whether rawURL names a source this loader can read,
// without fetching or decoding it.
func (l *Loader) ValidateURL(rawURL string) error {
	_, err := l.classify(rawURL)
	return err
}

type sourceKind int

const (
	sourceRemote sourceKind = iota
	sourceLocal
)

type source struct {
	kind sourceKind
	url  *url.URL
	path string
}

func (l *Loader) classify(rawURL string) (source, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return source{}, fmt.Errorf("%w: empty", ErrInvalidURL)
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return source{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
		if parsed.Host == "" {
			return source{}, fmt.Errorf("%w: missing host in %q", ErrInvalidURL, trimmed)
		}
		anonymous := *parsed
		anonymous.User = nil
		anonymous.Fragment = ""
		return source{kind: sourceRemote, url: &anonymous}, nil
	case "file", "":
		return l.localSource(parsed.Path)
	default:
		return source{}, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, parsed.Scheme)
	}
}

func (l *Loader) localSource(path string) (source, error) {
	if l.localRoot == "" {
		return source{}, fmt.Errorf("%w: local sources are disabled", ErrInvalidURL)
	}
	resolved, err := resolveLocalPath(l.localRoot, path)
	if err != nil {
		return source{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	return source{kind: sourceLocal, path: resolved}, nil
}

// Load fetches rawURL and decodes it. It returns exactly once, with either a
// bitmap that has pixels or an error.
func (l *Loader) Load(ctx context.Context, rawURL string) (image.Image, error) {
	src, err := l.classify(rawURL)
	if err != nil {
		return nil, err
	}

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	var body io.ReadCloser
	switch src.kind {
	case sourceLocal:
		body, err = os.Open(src.path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFetch, err)
		}
	default:
		body, err = l.fetch(ctx, src.url)
		if err != nil {
			return nil, err
		}
	}
	defer body.Close()

	return l.decode(body)
}

func (l *Loader) fetch(ctx context.Context, target *url.URL) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	req.Header.Set("Accept", acceptedImageMIME)
	req.Header.Set("Sec-Fetch-Mode", "cors")
	req.Header.Set("Sec-Fetch-Dest", "image")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrFetch, resp.Status)
	}

	if resp.ContentLength > l.maxBytes {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, resp.ContentLength)
	}

	return resp.Body, nil
}

func (l *Loader) decode(body io.Reader) (image.Image, error) {
	limited := &limitedReader{reader: io.LimitReader(body, l.maxBytes+1), limit: l.maxBytes}
	decoded, _, err := image.Decode(bufio.NewReader(limited))
	if limited.exceeded {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, l.maxBytes)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	if decoded.Bounds().Empty() {
		return nil, ErrEmptyBitmap
	}

	return decoded, nil
}

type limitedReader struct {
	reader   io.Reader
	limit    int64
	read     int64
	exceeded bool
}

func (r *limitedReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.read += int64(n)
	if r.read > r.limit {
		r.exceeded = true
		return n, errors.New("size limit exceeded")
	}
	return n, err
}
