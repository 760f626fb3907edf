// Package syncrepo layers the remote gateway over the local store. Reads and
// writes go to the server first; when the network is down the local store
// answers alone, and successful remote responses are mirrored back into it.
package syncrepo

import (
	"context"
	"net/http"
	"time"

	"arifmusic/core/apperr"
)

// Connectivity reports whether the backend is reachable. The syncing
// repositories consult it before spending a timeout on a doomed request.
type Connectivity interface {
	Online(ctx context.Context) bool
}

// HTTPProbe checks reachability with a cheap request against the API base URL.
type HTTPProbe struct {
	url    string
	client *http.Client
}

// NewHTTPProbe builds a probe against the given base URL.
func NewHTTPProbe(baseURL string) *HTTPProbe {
	return &HTTPProbe{
		url:    baseURL,
		client: &http.Client{Timeout: 3 * time.Second},
	}
}

// Online reports whether the base URL answers at all. Any HTTP status counts
// as reachable.
func (p *HTTPProbe) Online(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.url, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}

// StaticConnectivity is a fixed answer, used in tests and by the offline
// command flag.
type StaticConnectivity bool

func (c StaticConnectivity) Online(context.Context) bool { return bool(c) }

// offline reports whether err means the server could not be reached, as
// opposed to the server rejecting the request.
func offline(err error) bool {
	return apperr.Is(err, apperr.Network)
}
