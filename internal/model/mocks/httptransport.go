package mocks

import (
	"net/http"

	"github.com/lbprobe/lbprobe/internal/model"
)

// HTTPTransport mocks model.HTTPTransport.
type HTTPTransport struct {
	MockRoundTrip func(req *http.Request) (*http.Response, error)

	MockCloseIdleConnections func()
}

var _ model.HTTPTransport = &HTTPTransport{}

// RoundTrip calls MockRoundTrip.
func (txp *HTTPTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return txp.MockRoundTrip(req)
}

// CloseIdleConnections calls MockCloseIdleConnections.
func (txp *HTTPTransport) CloseIdleConnections() {
	txp.MockCloseIdleConnections()
}
