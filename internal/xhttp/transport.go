package xhttp

import (
	"fmt"
	"net/http"

	"github.com/kestrelhq/nfeed/internal/version"
)

type nfeedTransport struct {
	base http.RoundTripper
}

var _ http.RoundTripper = (*nfeedTransport)(nil)

func (t *nfeedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", "nfeed/"+version.Get())
	req.Header.Set(version.Header, version.Get())
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform round trip: %w", err)
	}
	return resp, nil
}

// NewTransport returns an http.RoundTripper with standard nfeed headers.
func NewTransport() http.RoundTripper {
	return &nfeedTransport{base: http.DefaultTransport}
}
