// Package engine runs a complete probe: it parses the input, runs the
// DNS prober and then the HTTP prober, and collects their results.
package engine

import (
	"context"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"
	"github.com/lbprobe/lbprobe/internal/config"
	"github.com/lbprobe/lbprobe/internal/dnsprobe"
	"github.com/lbprobe/lbprobe/internal/httpprobe"
	"github.com/lbprobe/lbprobe/internal/inputparser"
	"github.com/lbprobe/lbprobe/internal/model"
)

// Measurement contains the results of a probe run.
type Measurement struct {
	// ID uniquely identifies this run.
	ID string

	// Input is the input typed by the user.
	Input string

	// URL is the parsed URL.
	URL string

	// Hostname is the hostname we resolved.
	Hostname string

	// StartTime is when the run started.
	StartTime time.Time

	// Runtime is how long the run took.
	Runtime time.Duration

	// DNS is the result of the DNS prober.
	DNS *model.DNSResult

	// HTTP is the result of the HTTP prober.
	HTTP *model.HTTPResult
}

// Session runs probes. The zero value is invalid; use [NewSession].
type Session struct {
	// Settings contains the settings.
	Settings config.Settings

	// Logger is the logger.
	Logger model.Logger

	// DNSTransport OPTIONALLY overrides the transport
	// derived from Settings.Resolver.
	DNSTransport model.DNSTransport

	// HTTPTransport OPTIONALLY overrides the default transport.
	HTTPTransport model.HTTPTransport
}

// NewSession creates a new [*Session].
func NewSession(settings config.Settings, logger model.Logger) *Session {
	return &Session{
		Settings: settings,
		Logger:   model.ValidLoggerOrDefault(logger),
	}
}

// fieldLogger is a logger supporting fields, like the apex/log logger.
type fieldLogger interface {
	WithField(key string, value interface{}) *log.Entry
}

// Run runs the probe for input and returns the measurement. It fails
// when the settings or the input are not valid. Network errors are
// recorded inside the measurement. When ctx is done, Run returns the
// partial measurement along with the context error.
func (s *Session) Run(ctx context.Context, input string) (*Measurement, error) {
	if err := s.Settings.Validate(); err != nil {
		return nil, err
	}
	URL, err := inputparser.Parse(nil, input)
	if err != nil {
		return nil, err
	}

	m := &Measurement{
		ID:        uuid.New().String(),
		Input:     input,
		URL:       URL.String(),
		Hostname:  inputparser.Hostname(URL),
		StartTime: time.Now(),
	}
	logger := model.ValidLoggerOrDefault(s.Logger)
	if fl, ok := logger.(fieldLogger); ok {
		logger = fl.WithField("run_id", m.ID)
	}
	logger.Debugf("engine: settings: %+v", s.Settings)

	logger.Infof("Checking DNS-based load balancing for %s...", m.Hostname)
	dnsTxp := s.DNSTransport
	if dnsTxp == nil {
		dnsTxp = dnsprobe.NewTransport(s.Settings.Resolver, 0)
	}
	dnsProber := dnsprobe.NewProber(dnsTxp, logger)
	dnsProber.Count = s.Settings.Count
	dnsProber.Delay = s.Settings.Delay
	m.DNS = dnsProber.Probe(ctx, m.Hostname)

	logger.Infof("Checking HTTP-based load balancing for %s...", m.URL)
	httpTxp := s.HTTPTransport
	if httpTxp == nil {
		httpTxp = httpprobe.NewTransport()
	}
	httpProber := httpprobe.NewProber(httpTxp, logger)
	httpProber.Count = s.Settings.Count
	httpProber.Delay = s.Settings.Delay
	httpProber.Timeout = s.Settings.Timeout
	httpProber.UserAgent = s.Settings.UserAgent
	if s.Settings.SkipFailed {
		httpProber.Policy = httpprobe.SkipOnFailure
	}
	m.HTTP = httpProber.Probe(ctx, m.URL)

	m.Runtime = time.Since(m.StartTime)
	logger.Debugf("engine: run completed in %s", m.Runtime)
	return m, ctx.Err()
}
