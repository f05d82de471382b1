package app

import (
	"net"
	"net/http"
	"time"
)

// newHTTPClient returns the client shared by feed, page and robots.txt
// requests. Pages of one site tend to be fetched together, so idle
// connections per host follow the worker count. fetch.Client sets the
// per-request deadline; Timeout only catches a stuck body read.
func newHTTPClient(workers int) *http.Client {
	dialer := &net.Dialer{Timeout: 10 * time.Second, KeepAlive: time.Minute}
	return &http.Client{
		Timeout: time.Minute,
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dialer.DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          32,
			MaxIdleConnsPerHost:   max(2, workers),
			IdleConnTimeout:       time.Minute,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 20 * time.Second,
		},
	}
}
