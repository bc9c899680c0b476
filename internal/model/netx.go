package model

//
// Network interfaces used by the probers
//

import (
	"context"
	"net/http"

	"github.com/miekg/dns"
)

// DNSTransport sends a DNS query and returns the raw reply.
type DNSTransport interface {
	// RoundTrip sends the query and waits for the reply.
	RoundTrip(ctx context.Context, query *dns.Msg) (*dns.Msg, error)

	// Network is the network used by the transport (e.g., "udp").
	Network() string

	// Address is the address of the upstream server.
	Address() string
}

// HTTPTransport is an http.RoundTripper with explicit idle connection cleanup.
type HTTPTransport interface {
	// An HTTPTransport is an http.RoundTripper.
	http.RoundTripper

	// CloseIdleConnections closes idle connections, if any.
	CloseIdleConnections()
}
