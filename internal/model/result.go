package model

//
// Results emitted by the probers
//

import "time"

const (
	// ServerHeader is the header identifying the serving software.
	ServerHeader = "Server"

	// DefaultServerLabel is the server label used when Server is missing.
	DefaultServerLabel = "Unknown"

	// AbsentHeaderValue is how we print a missing header.
	AbsentHeaderValue = "None"
)

// AuxiliaryHeaders are the headers we tally in addition to Server, in
// the order in which we report them.
var AuxiliaryHeaders = []string{
	"X-Forwarded-For",
	"Via",
	"X-Cache",
	"Set-Cookie",
}

// HeaderTally maps a header name to the tally of its observed values.
type HeaderTally map[string]*Tally

// NewHeaderTally returns a HeaderTally with an empty tally for Server
// and for each of the AuxiliaryHeaders.
func NewHeaderTally() HeaderTally {
	ht := HeaderTally{ServerHeader: &Tally{}}
	for _, name := range AuxiliaryHeaders {
		ht[name] = &Tally{}
	}
	return ht
}

// Get returns the tally for name or an empty tally.
func (ht HeaderTally) Get(name string) *Tally {
	if t := ht[name]; t != nil {
		return t
	}
	return &Tally{}
}

func (ht HeaderTally) tally(name string) *Tally {
	if ht[name] == nil {
		ht[name] = &Tally{}
	}
	return ht[name]
}

// LatencySeries contains one latency per successful request.
type LatencySeries []time.Duration

// Seconds returns the latencies as seconds.
func (ls LatencySeries) Seconds() []float64 {
	out := make([]float64, 0, len(ls))
	for _, d := range ls {
		out = append(out, d.Seconds())
	}
	return out
}

// ProbeSample is the outcome of a single successful HTTP request.
type ProbeSample struct {
	// Index is the zero-based index of the request within the run.
	Index int

	// Server is the Server header or DefaultServerLabel.
	Server string

	// Latency is the time elapsed between sending the request
	// and finishing to read the response body.
	Latency time.Duration

	// StatusCode is the HTTP status code.
	StatusCode int

	// Headers contains the AuxiliaryHeaders values. A nil
	// value means that the header was absent.
	Headers map[string]*string
}

// HeaderValue returns the value of the given auxiliary header for
// printing, using AbsentHeaderValue when the header is missing.
func (ps *ProbeSample) HeaderValue(name string) string {
	if v := ps.Headers[name]; v != nil {
		return *v
	}
	return AbsentHeaderValue
}

// DNSResult is the result of a DNS probe run.
type DNSResult struct {
	// Hostname is the hostname we resolved.
	Hostname string

	// Resolver is the address of the resolver we used.
	Resolver string

	// Lookups is the number of lookups we attempted.
	Lookups int

	// Addresses contains the distinct addresses.
	Addresses AddressSet

	// Failures contains the errors of the failed lookups.
	Failures []string
}

// HTTPResult is the result of an HTTP probe run.
type HTTPResult struct {
	// URL is the URL we fetched.
	URL string

	// ServerLabels contains the server label of each successful request.
	ServerLabels []string

	// Latencies contains the latency of each successful request.
	Latencies LatencySeries

	// Samples contains the successful requests.
	Samples []*ProbeSample

	// Headers tallies Server and the AuxiliaryHeaders.
	Headers HeaderTally

	// Failure is the error that aborted the run, if any.
	Failure error

	// Skipped is the number of failed requests we skipped.
	Skipped int
}

// NewHTTPResult returns an empty HTTPResult for URL.
func NewHTTPResult(URL string) *HTTPResult {
	return &HTTPResult{
		URL:          URL,
		ServerLabels: []string{},
		Latencies:    LatencySeries{},
		Samples:      []*ProbeSample{},
		Headers:      NewHeaderTally(),
	}
}

// Append records a successful sample.
func (hr *HTTPResult) Append(sample *ProbeSample) {
	hr.ServerLabels = append(hr.ServerLabels, sample.Server)
	hr.Latencies = append(hr.Latencies, sample.Latency)
	hr.Samples = append(hr.Samples, sample)
	if hr.Headers == nil {
		hr.Headers = NewHeaderTally()
	}
	hr.Headers.tally(ServerHeader).Add(sample.Server)
	for _, name := range AuxiliaryHeaders {
		if value := sample.Headers[name]; value != nil {
			hr.Headers.tally(name).Add(*value)
			continue
		}
		hr.Headers.tally(name).AddAbsent()
	}
}

// DistinctServers returns the distinct server labels in first-seen order.
func (hr *HTTPResult) DistinctServers() []string {
	var set AddressSet
	for _, label := range hr.ServerLabels {
		set.Add(label)
	}
	return set.Addresses()
}
