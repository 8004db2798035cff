package spider

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/dreamerjackson/ducrawler/extensions"
	"github.com/dreamerjackson/ducrawler/proxy"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

type FetchType int

const (
	BaseFetchType FetchType = iota
	BrowserFetchType
)

// ParseFetchType maps a config value to a FetchType, defaulting to the
// browser fetcher.
func ParseFetchType(s string) FetchType {
	if s == "base" {
		return BaseFetchType
	}

	return BrowserFetchType
}

type Fetcher interface {
	Get(ctx context.Context, req *Request) ([]byte, error)
}

type FetchOption func(f *fetchOptions)

type fetchOptions struct {
	timeout time.Duration
	proxy   proxy.Func
}

func WithFetchTimeout(timeout time.Duration) FetchOption {
	return func(f *fetchOptions) {
		f.timeout = timeout
	}
}

func WithFetchProxy(p proxy.Func) FetchOption {
	return func(f *fetchOptions) {
		f.proxy = p
	}
}

func NewFetchService(typ FetchType, opts ...FetchOption) Fetcher {
	o := fetchOptions{timeout: 10 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}

	switch typ {
	case BaseFetchType:
		return &baseFetch{client: &http.Client{Timeout: o.timeout}}
	default:
		return newBrowserFetch(o)
	}
}

type baseFetch struct {
	client *http.Client
}

func (b *baseFetch) Get(ctx context.Context, req *Request) ([]byte, error) {
	r, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, &FetchError{URL: req.URL, Err: err}
	}

	resp, err := b.client.Do(r)
	if err != nil {
		return nil, &FetchError{URL: req.URL, Err: err}
	}

	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: req.URL, StatusCode: resp.StatusCode}
	}

	body, err := decodeBody(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, &FetchError{URL: req.URL, Err: err}
	}

	return body, nil
}

// 模拟浏览器访问
type browserFetch struct {
	client *resty.Client
}

func newBrowserFetch(o fetchOptions) *browserFetch {
	client := resty.New()
	client.SetTimeout(o.timeout)

	if o.proxy != nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = o.proxy
		client.SetTransport(transport)
	}

	return &browserFetch{client: client}
}

func (b *browserFetch) Get(ctx context.Context, req *Request) ([]byte, error) {
	resp, err := b.client.R().
		SetContext(ctx).
		SetHeader("User-Agent", extensions.GenerateRandomUA()).
		SetDoNotParseResponse(true).
		Get(req.URL)
	if err != nil {
		return nil, &FetchError{URL: req.URL, Err: err}
	}

	raw := resp.RawBody()
	defer raw.Close()

	if !resp.IsSuccess() {
		return nil, &FetchError{URL: req.URL, StatusCode: resp.StatusCode()}
	}

	body, err := decodeBody(raw, resp.Header().Get("Content-Type"))
	if err != nil {
		return nil, &FetchError{URL: req.URL, Err: err}
	}

	return body, nil
}

func decodeBody(r io.Reader, contentType string) ([]byte, error) {
	bodyReader := bufio.NewReader(r)
	e := DeterminEncoding(bodyReader, contentType)
	utf8Reader := transform.NewReader(bodyReader, e.NewDecoder())

	return io.ReadAll(utf8Reader)
}

// DeterminEncoding sniffs at most 1KB of r without consuming it.
func DeterminEncoding(r *bufio.Reader, contentType string) encoding.Encoding {
	b, _ := r.Peek(1024)
	if len(b) == 0 {
		return unicode.UTF8
	}

	e, _, _ := charset.DetermineEncoding(b, contentType)

	return e
}
