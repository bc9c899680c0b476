package dnsprobe

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/lbprobe/lbprobe/internal/model"
	"github.com/miekg/dns"
)

// DefaultTimeout is the default timeout of a single DNS exchange. We use
// five seconds like Bionic and dnspython do.
const DefaultTimeout = 5 * time.Second

// ExchangeTransport is a DNS-over-UDP [model.DNSTransport] that retries
// using TCP when the reply is truncated.
type ExchangeTransport struct {
	// Endpoint is the server endpoint (e.g., "8.8.8.8:53").
	Endpoint string

	// Timeout is the timeout of each exchange. Zero means DefaultTimeout.
	Timeout time.Duration

	// exchange is the function performing the exchange (for testing).
	exchange func(ctx context.Context, network string, query *dns.Msg) (*dns.Msg, error)
}

// NewExchangeTransport creates a new [*ExchangeTransport].
func NewExchangeTransport(endpoint string, timeout time.Duration) *ExchangeTransport {
	return &ExchangeTransport{Endpoint: endpoint, Timeout: timeout}
}

var _ model.DNSTransport = &ExchangeTransport{}

// RoundTrip implements model.DNSTransport.
func (txp *ExchangeTransport) RoundTrip(ctx context.Context, query *dns.Msg) (*dns.Msg, error) {
	reply, err := txp.doExchange(ctx, "udp", query)
	if err != nil {
		return nil, err
	}
	if reply.Truncated {
		return txp.doExchange(ctx, "tcp", query)
	}
	return reply, nil
}

func (txp *ExchangeTransport) doExchange(ctx context.Context, network string, query *dns.Msg) (*dns.Msg, error) {
	if txp.exchange != nil {
		return txp.exchange(ctx, network, query)
	}
	timeout := txp.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	clnt := &dns.Client{Net: network, Timeout: timeout}
	reply, _, err := clnt.ExchangeContext(ctx, query, txp.Endpoint)
	return reply, err
}

// Network implements model.DNSTransport.
func (txp *ExchangeTransport) Network() string {
	return "udp"
}

// Address implements model.DNSTransport.
func (txp *ExchangeTransport) Address() string {
	return txp.Endpoint
}

// ErrNoServers indicates that a [SerialTransport] has no transports.
var ErrNoServers = errors.New("dnsprobe: no configured name servers")

// SerialTransport tries each transport in order and returns the
// first reply, like a stub resolver walking its list of servers.
type SerialTransport struct {
	Transports []model.DNSTransport
}

var _ model.DNSTransport = &SerialTransport{}

// RoundTrip implements model.DNSTransport.
func (txp *SerialTransport) RoundTrip(ctx context.Context, query *dns.Msg) (*dns.Msg, error) {
	err := ErrNoServers
	for _, child := range txp.Transports {
		var reply *dns.Msg
		reply, err = child.RoundTrip(ctx, query)
		if err == nil {
			return reply, nil
		}
		if ctx.Err() != nil {
			break
		}
	}
	return nil, err
}

// Network implements model.DNSTransport.
func (txp *SerialTransport) Network() string {
	return "udp"
}

// Address implements model.DNSTransport.
func (txp *SerialTransport) Address() string {
	if len(txp.Transports) <= 0 {
		return ""
	}
	return txp.Transports[0].Address()
}

// DefaultResolvConf is the system resolver configuration file.
const DefaultResolvConf = "/etc/resolv.conf"

// FallbackEndpoint is the server we use when we cannot read the
// system configuration, like the libc stub resolver does.
const FallbackEndpoint = "127.0.0.1:53"

// NewSystemTransport creates a transport using the name servers
// listed in the given resolv.conf file. When the file cannot be read
// or lists no servers, we fall back to FallbackEndpoint.
func NewSystemTransport(resolvConf string, timeout time.Duration) *SerialTransport {
	config, err := dns.ClientConfigFromFile(resolvConf)
	if err != nil || len(config.Servers) <= 0 {
		return &SerialTransport{Transports: []model.DNSTransport{
			NewExchangeTransport(FallbackEndpoint, timeout),
		}}
	}
	if timeout <= 0 && config.Timeout > 0 {
		timeout = time.Duration(config.Timeout) * time.Second
	}
	txp := &SerialTransport{}
	for _, server := range config.Servers {
		endpoint := net.JoinHostPort(server, config.Port)
		txp.Transports = append(txp.Transports, NewExchangeTransport(endpoint, timeout))
	}
	return txp
}

// NewTransport creates the transport for the given resolver address. An
// empty address means the system resolver. The port defaults to 53.
func NewTransport(address string, timeout time.Duration) model.DNSTransport {
	if address == "" {
		return NewSystemTransport(DefaultResolvConf, timeout)
	}
	return NewExchangeTransport(endpointWithDefaultPort(address), timeout)
}

func endpointWithDefaultPort(address string) string {
	if _, _, err := net.SplitHostPort(address); err == nil {
		return address
	}
	// handle bracketed IPv6 addresses without port, e.g. "[::1]"
	if len(address) > 2 && address[0] == '[' && address[len(address)-1] == ']' {
		address = address[1 : len(address)-1]
	}
	return net.JoinHostPort(address, "53")
}
