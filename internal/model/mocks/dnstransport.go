package mocks

import (
	"context"

	"github.com/lbprobe/lbprobe/internal/model"
	"github.com/miekg/dns"
)

// DNSTransport allows mocking model.DNSTransport.
type DNSTransport struct {
	MockRoundTrip func(ctx context.Context, query *dns.Msg) (*dns.Msg, error)

	MockNetwork func() string

	MockAddress func() string
}

var _ model.DNSTransport = &DNSTransport{}

// RoundTrip calls MockRoundTrip.
func (txp *DNSTransport) RoundTrip(ctx context.Context, query *dns.Msg) (*dns.Msg, error) {
	return txp.MockRoundTrip(ctx, query)
}

// Network calls MockNetwork.
func (txp *DNSTransport) Network() string {
	return txp.MockNetwork()
}

// Address calls MockAddress.
func (txp *DNSTransport) Address() string {
	return txp.MockAddress()
}
