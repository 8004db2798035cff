package proxy

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
)

var ErrEmptyProxyList = errors.New("proxy URL list is empty")

// Func has the signature of http.Transport.Proxy.
type Func func(*http.Request) (*url.URL, error)

type roundRobinSwitcher struct {
	proxyURLs []*url.URL
	index     uint32
}

func (r *roundRobinSwitcher) GetProxy(pr *http.Request) (*url.URL, error) {
	if len(r.proxyURLs) == 0 {
		return nil, ErrEmptyProxyList
	}

	index := atomic.AddUint32(&r.index, 1) - 1
	u := r.proxyURLs[index%uint32(len(r.proxyURLs))]

	return u, nil
}

// RoundRobinProxySwitcher creates a proxy switcher function which rotates
// proxyURLs on every request.
// The proxy type is determined by the URL scheme. "http", "https"
// and "socks5" are supported. If the scheme is empty,
// "http" is assumed.
func RoundRobinProxySwitcher(proxyURLs ...string) (Func, error) {
	if len(proxyURLs) < 1 {
		return nil, ErrEmptyProxyList
	}

	urls := make([]*url.URL, len(proxyURLs))
	for i, u := range proxyURLs {
		if !strings.Contains(u, "://") {
			u = "http://" + u
		}

		parsedU, err := url.Parse(u)
		if err != nil {
			return nil, err
		}

		switch parsedU.Scheme {
		case "http", "https", "socks5":
		default:
			return nil, fmt.Errorf("unsupported proxy scheme %q", parsedU.Scheme)
		}

		urls[i] = parsedU
	}

	return (&roundRobinSwitcher{urls, 0}).GetProxy, nil
}
