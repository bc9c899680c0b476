// Package report turns the results of the probers into verdicts and
// renders them as human readable text.
package report

import (
	"time"

	"github.com/lbprobe/lbprobe/internal/model"
	"github.com/montanaflynn/stats"
)

// DefaultThreshold is the default latency spread above which we
// consider the variation of the response times significant.
const DefaultThreshold = 500 * time.Millisecond

// Options contains options for Analyze and for rendering.
type Options struct {
	// Color enables colored output.
	Color bool

	// Threshold is the latency spread threshold. Zero or negative
	// means DefaultThreshold.
	Threshold time.Duration
}

// LatencyStats contains the latency statistics in seconds.
type LatencyStats struct {
	Mean float64
	Max  float64
	Min  float64

	// Significant is true when Max - Min exceeds the threshold.
	Significant bool
}

// HeaderVerdict is the verdict for an auxiliary header.
type HeaderVerdict struct {
	// Name is the header name.
	Name string

	// Variation is true when we observed more than one value.
	Variation bool

	// Values contains the observed values and their counts.
	Values []model.ValueCount
}

// Report contains the verdicts. Build it using [Analyze].
type Report struct {
	// Hostname is the hostname we resolved.
	Hostname string

	// Resolver is the resolver we used.
	Resolver string

	// DNSLookups is the number of lookups we performed.
	DNSLookups int

	// DNSFailures is the number of failed lookups.
	DNSFailures int

	// Addresses contains the distinct addresses.
	Addresses []string

	// DNSDetected is true when we saw more than one address.
	DNSDetected bool

	// URL is the URL we fetched.
	URL string

	// HTTPFailure is the error that aborted the HTTP run, if any.
	HTTPFailure string

	// Skipped is the number of skipped requests.
	Skipped int

	// DistinctServers contains the distinct Server labels.
	DistinctServers []string

	// ServerDetected is true when we saw more than one Server label.
	ServerDetected bool

	// ServerCounts contains the Server tally.
	ServerCounts []model.ValueCount

	// Latency contains the latency stats or nil without samples.
	Latency *LatencyStats

	// Threshold is the latency spread threshold we used.
	Threshold time.Duration

	// Headers contains the verdicts for the auxiliary headers.
	Headers []HeaderVerdict

	options Options
}

// Analyze computes the verdicts. It does not mutate its arguments and
// tolerates nil results, which it treats as empty.
func Analyze(dnsResult *model.DNSResult, httpResult *model.HTTPResult, opts Options) *Report {
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if dnsResult == nil {
		dnsResult = &model.DNSResult{}
	}
	if httpResult == nil {
		httpResult = model.NewHTTPResult("")
	}
	r := &Report{
		Hostname:        dnsResult.Hostname,
		Resolver:        dnsResult.Resolver,
		DNSLookups:      dnsResult.Lookups,
		DNSFailures:     len(dnsResult.Failures),
		Addresses:       dnsResult.Addresses.Addresses(),
		DNSDetected:     dnsResult.Addresses.Len() > 1,
		URL:             httpResult.URL,
		Skipped:         httpResult.Skipped,
		DistinctServers: httpResult.DistinctServers(),
		ServerCounts:    httpResult.Headers.Get(model.ServerHeader).Entries(),
		Latency:         analyzeLatency(httpResult.Latencies, opts.Threshold),
		Threshold:       opts.Threshold,
		options:         opts,
	}
	if httpResult.Failure != nil {
		r.HTTPFailure = httpResult.Failure.Error()
	}
	r.ServerDetected = len(r.DistinctServers) > 1
	for _, name := range model.AuxiliaryHeaders {
		tally := httpResult.Headers.Get(name)
		r.Headers = append(r.Headers, HeaderVerdict{
			Name:      name,
			Variation: tally.Len() > 1,
			Values:    tally.Entries(),
		})
	}
	return r
}

// analyzeLatency returns nil when the series is empty.
func analyzeLatency(series model.LatencySeries, threshold time.Duration) *LatencyStats {
	data := stats.Float64Data(series.Seconds())
	mean, err := stats.Mean(data)
	if err != nil {
		return nil
	}
	maximum, err := stats.Max(data)
	if err != nil {
		return nil
	}
	minimum, err := stats.Min(data)
	if err != nil {
		return nil
	}
	return &LatencyStats{
		Mean:        mean,
		Max:         maximum,
		Min:         minimum,
		Significant: maximum-minimum > threshold.Seconds(),
	}
}
