package util

import (
	"net/http"
	"net/url"

	"golang.org/x/net/http/httpproxy"
)

// NewProxyFunc routes requests through the configured proxies. With no
// proxy configured it defers to HTTP_PROXY/HTTPS_PROXY/NO_PROXY. An empty
// httpsProxy reuses httpProxy; an empty noProxy falls back to NO_PROXY.
// Loopback hosts are never proxied.
func NewProxyFunc(httpProxy, httpsProxy, noProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}
	if httpsProxy == "" {
		httpsProxy = httpProxy
	}
	if noProxy == "" {
		noProxy = httpproxy.FromEnvironment().NoProxy
	}

	proxy := (&httpproxy.Config{
		HTTPProxy:  httpProxy,
		HTTPSProxy: httpsProxy,
		NoProxy:    noProxy,
	}).ProxyFunc()

	return func(req *http.Request) (*url.URL, error) {
		return proxy(req.URL)
	}
}
