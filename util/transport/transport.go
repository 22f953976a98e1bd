package transport

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

// Default returns an http.Transport with default settings.
// http.DefaultTransport is not shared to keep per-client transport decoration safe.
func Default() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// Insecure returns the default transport with disabled TLS certificate validation
func Insecure() *http.Transport {
	t := Default()
	t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	return t
}

// Decorator executes the decorator function on the request before delegating to the base transport
type Decorator struct {
	Decorator func(*http.Request) error
	Base      http.RoundTripper
}

func (t *Decorator) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	if err := t.Decorator(req); err != nil {
		return nil, err
	}

	return base.RoundTrip(req)
}

// DecorateHeaders returns a decorator that adds the given headers to each request
func DecorateHeaders(headers map[string]string) func(*http.Request) error {
	return func(req *http.Request) error {
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		return nil
	}
}
