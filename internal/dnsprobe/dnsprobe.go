// Package dnsprobe detects DNS-based load balancing by resolving the
// same hostname many times and collecting the distinct A records.
package dnsprobe

import (
	"context"
	"errors"
	"time"

	"github.com/lbprobe/lbprobe/internal/model"
	"github.com/lbprobe/lbprobe/internal/pacer"
	"github.com/miekg/dns"
)

// DefaultCount is the default number of lookups.
const DefaultCount = 20

// Prober performs sequential lookups using a single transport. The
// zero value is invalid; use [NewProber].
type Prober struct {
	// Count is the number of lookups to perform.
	Count int

	// Delay is the minimum interval between the starts of two lookups.
	Delay time.Duration

	// Logger is the logger to use.
	Logger model.Logger

	// Transport is the transport to use.
	Transport model.DNSTransport
}

// NewProber creates a new [*Prober] with default settings.
func NewProber(txp model.DNSTransport, logger model.Logger) *Prober {
	return &Prober{
		Count:     DefaultCount,
		Delay:     pacer.DefaultDelay,
		Logger:    model.ValidLoggerOrDefault(logger),
		Transport: txp,
	}
}

// Probe resolves hostname Count times and returns the distinct
// addresses. Failed lookups are logged and do not stop the run; only
// the cancellation of ctx stops the run early.
func (p *Prober) Probe(ctx context.Context, hostname string) *model.DNSResult {
	logger := model.ValidLoggerOrDefault(p.Logger)
	result := &model.DNSResult{
		Hostname: hostname,
		Resolver: p.Transport.Address(),
	}
	pc := pacer.New(p.Delay)
	for idx := 0; idx < p.Count; idx++ {
		if err := pc.Wait(ctx); err != nil {
			logger.Warnf("dnsprobe: interrupted: %s", err.Error())
			break
		}
		result.Lookups++
		addrs, err := p.lookupA(ctx, hostname)
		logger.Debugf("dnsprobe: lookup %d of %s via %s... %s",
			idx+1, hostname, result.Resolver, model.ErrorToStringOrOK(err))
		if err != nil {
			result.Failures = append(result.Failures, err.Error())
			logFailure(logger, err)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		for _, addr := range addrs {
			result.Addresses.Add(addr)
			logger.Infof("DNS Lookup %d: %s", idx+1, addr)
		}
	}
	return result
}

func (p *Prober) lookupA(ctx context.Context, hostname string) ([]string, error) {
	query := NewQuery(hostname, dns.TypeA)
	reply, err := p.Transport.RoundTrip(ctx, query)
	if err != nil {
		return nil, err
	}
	return DecodeLookupA(reply, query.Id)
}

func logFailure(logger model.Logger, err error) {
	switch {
	case errors.Is(err, ErrNoAnswer):
		logger.Warn("No DNS record found.")
	case errors.Is(err, ErrNameNotFound):
		logger.Warn("Domain does not exist.")
	default:
		logger.Warnf("DNS Lookup error: %s", err.Error())
	}
}
