// Package httpprobe detects HTTP load balancing by fetching the same
// URL many times and recording headers and latencies of each response.
package httpprobe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/lbprobe/lbprobe/internal/model"
	"github.com/lbprobe/lbprobe/internal/pacer"
	"github.com/lbprobe/lbprobe/internal/version"
)

const (
	// DefaultCount is the default number of requests.
	DefaultCount = 20

	// DefaultTimeout is the default timeout of a single request.
	DefaultTimeout = 10 * time.Second

	// DefaultUserAgent is the default User-Agent header.
	DefaultUserAgent = "lbprobe/" + version.Version

	// maxBodySize is the maximum number of body bytes we read.
	maxBodySize = 1 << 24
)

// FailurePolicy tells the [*Prober] what to do when a request fails.
type FailurePolicy int

const (
	// AbortOnFailure discards all the samples collected so far
	// and stops the run at the first failed request.
	AbortOnFailure = FailurePolicy(iota)

	// SkipOnFailure skips the failed request and continues.
	SkipOnFailure
)

// String implements fmt.Stringer.
func (fp FailurePolicy) String() string {
	switch fp {
	case AbortOnFailure:
		return "abort"
	case SkipOnFailure:
		return "skip"
	default:
		return fmt.Sprintf("FailurePolicy(%d)", int(fp))
	}
}

// Prober performs sequential GET requests. The zero value is
// invalid; use [NewProber].
type Prober struct {
	// Count is the number of requests to send.
	Count int

	// Delay is the minimum interval between the starts of two requests.
	Delay time.Duration

	// Logger is the logger to use.
	Logger model.Logger

	// Policy is the failure policy.
	Policy FailurePolicy

	// Timeout is the per-request timeout. Zero means no timeout.
	Timeout time.Duration

	// Transport is the HTTP transport.
	Transport model.HTTPTransport

	// UserAgent is the User-Agent header to send.
	UserAgent string

	// timeNow allows mocking time.Now in tests.
	timeNow func() time.Time
}

// NewTransport returns a transport that does not reuse connections,
// so that each request has the chance to reach a different backend.
func NewTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   DefaultTimeout,
			KeepAlive: -1,
		}).DialContext,
		DisableKeepAlives:   true,
		ForceAttemptHTTP2:   false,
		TLSHandshakeTimeout: DefaultTimeout,
	}
}

// NewProber creates a new [*Prober] with default settings.
func NewProber(txp model.HTTPTransport, logger model.Logger) *Prober {
	return &Prober{
		Count:     DefaultCount,
		Delay:     pacer.DefaultDelay,
		Logger:    model.ValidLoggerOrDefault(logger),
		Policy:    AbortOnFailure,
		Timeout:   DefaultTimeout,
		Transport: txp,
		UserAgent: DefaultUserAgent,
	}
}

// Probe fetches URL Count times. With AbortOnFailure, the first failed
// request empties the result and sets its Failure field. With
// SkipOnFailure, failed requests are counted in the Skipped field.
func (p *Prober) Probe(ctx context.Context, URL string) *model.HTTPResult {
	logger := model.ValidLoggerOrDefault(p.Logger)
	clnt := &http.Client{Transport: p.Transport, Timeout: p.Timeout}
	defer p.Transport.CloseIdleConnections()
	result := model.NewHTTPResult(URL)
	pc := pacer.New(p.Delay)
	for idx := 0; idx < p.Count; idx++ {
		if err := pc.Wait(ctx); err != nil {
			logger.Warnf("httpprobe: interrupted: %s", err.Error())
			break
		}
		sample, err := p.fetch(ctx, clnt, idx, URL)
		if err != nil {
			logger.Warnf("Error connecting to the URL: %s", err.Error())
			if p.Policy == AbortOnFailure || ctx.Err() != nil {
				failed := model.NewHTTPResult(URL)
				failed.Failure = err
				return failed
			}
			result.Skipped++
			continue
		}
		logSample(logger, sample)
		result.Append(sample)
	}
	return result
}

// ErrNilResponse indicates that the transport returned neither a response nor an error.
var ErrNilResponse = errors.New("httpprobe: nil response")

func (p *Prober) fetch(ctx context.Context, clnt *http.Client, idx int, URL string) (*model.ProbeSample, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", URL, nil)
	if err != nil {
		return nil, err
	}
	if p.UserAgent != "" {
		req.Header.Set("User-Agent", p.UserAgent)
	}
	now := p.timeNow
	if now == nil {
		now = time.Now
	}
	started := now()
	resp, err := clnt.Do(req)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, ErrNilResponse
	}
	defer resp.Body.Close()
	if _, err := io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize)); err != nil {
		return nil, err
	}
	sample := &model.ProbeSample{
		Index:      idx,
		Server:     model.DefaultServerLabel,
		Latency:    now().Sub(started),
		StatusCode: resp.StatusCode,
		Headers:    map[string]*string{},
	}
	if server := headerOrNil(resp.Header, model.ServerHeader); server != nil {
		sample.Server = *server
	}
	if sample.Latency < 0 {
		sample.Latency = 0
	}
	for _, name := range model.AuxiliaryHeaders {
		sample.Headers[name] = headerOrNil(resp.Header, name)
	}
	return sample, nil
}

// headerOrNil returns nil when the header is missing and otherwise
// joins repeated header lines using a comma, like RFC 9110 does.
func headerOrNil(header http.Header, name string) *string {
	values, found := header[http.CanonicalHeaderKey(name)]
	if !found || len(values) <= 0 {
		return nil
	}
	value := strings.Join(values, ", ")
	return &value
}

func logSample(logger model.Logger, sample *model.ProbeSample) {
	logger.Infof(
		"Request %d: Server: %s, X-Forwarded-For: %s, Via: %s, X-Cache: %s, Set-Cookie: %s, Response Time: %.4f sec, Status Code: %d",
		sample.Index+1,
		sample.Server,
		sample.HeaderValue("X-Forwarded-For"),
		sample.HeaderValue("Via"),
		sample.HeaderValue("X-Cache"),
		sample.HeaderValue("Set-Cookie"),
		sample.Latency.Seconds(),
		sample.StatusCode,
	)
}
