package collector

import (
	"net/http"
	"net/url"
	"time"
)

const defaultTimeout = 30 * time.Second

// newHTTPClient returns a client with a fixed timeout and optional proxy.
func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   defaultTimeout,
		Transport: transport,
	}
}
