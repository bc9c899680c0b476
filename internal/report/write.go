package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// writer accumulates the first error and the number of bytes written.
type writer struct {
	w     io.Writer
	count int64
	err   error
}

func (w *writer) printf(format string, v ...interface{}) {
	if w.err != nil {
		return
	}
	n, err := fmt.Fprintf(w.w, format, v...)
	w.count += int64(n)
	w.err = err
}

// palette contains the colors we use for verdicts.
type palette struct {
	detected *color.Color
	neutral  *color.Color
	failure  *color.Color
	title    *color.Color
}

func newPalette(enabled bool) *palette {
	p := &palette{
		detected: color.New(color.FgYellow, color.Bold),
		neutral:  color.New(color.FgGreen),
		failure:  color.New(color.FgRed),
		title:    color.New(color.Bold),
	}
	for _, c := range []*color.Color{p.detected, p.neutral, p.failure, p.title} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// WriteTo implements io.WriterTo.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	out := &writer{w: w}
	pal := newPalette(r.options.Color)
	r.writeDNS(out, pal)
	r.writeHTTP(out, pal)
	return out.count, out.err
}

func (r *Report) writeDNS(out *writer, pal *palette) {
	out.printf("%s\n", pal.title.Sprintf("DNS-based load balancing (%s, %d lookups via %s)",
		r.Hostname, r.DNSLookups, r.Resolver))
	if r.DNSFailures > 0 {
		out.printf("%s\n", pal.failure.Sprintf("%d of %d DNS lookups failed.", r.DNSFailures, r.DNSLookups))
	}
	if !r.DNSDetected {
		out.printf("%s\n", pal.neutral.Sprint("No DNS-based load balancer detected based on DNS lookups."))
		return
	}
	out.printf("%s\n", pal.detected.Sprint("DNS-based load balancer detected! Multiple IP addresses were found:"))
	for _, addr := range r.Addresses {
		out.printf("%s\n", addr)
	}
}

func (r *Report) writeHTTP(out *writer, pal *palette) {
	out.printf("\n%s\n", pal.title.Sprintf("HTTP-based load balancing (%s)", r.URL))
	if r.HTTPFailure != "" {
		out.printf("%s\n", pal.failure.Sprintf("Error connecting to the URL: %s (all samples discarded)", r.HTTPFailure))
	}
	if r.Skipped > 0 {
		out.printf("%s\n", pal.failure.Sprintf("Skipped %d failed requests.", r.Skipped))
	}

	if r.ServerDetected {
		out.printf("%s\n", pal.detected.Sprint("HTTP-based load balancer detected! Different Server headers were returned:"))
		for _, server := range r.DistinctServers {
			out.printf("%s\n", server)
		}
	} else {
		out.printf("%s\n", pal.neutral.Sprint("No HTTP-based load balancer detected based on Server headers."))
	}

	if len(r.ServerCounts) > 0 {
		out.printf("\n%s\n", pal.title.Sprint("Server Header Analysis:"))
		for _, entry := range r.ServerCounts {
			out.printf("%s: %d times\n", entry.Label(), entry.Count)
		}
	}

	if r.Latency != nil {
		out.printf("\n%s Average: %.4f sec, Max: %.4f sec, Min: %.4f sec\n",
			pal.title.Sprint("Response Time Analysis:"), r.Latency.Mean, r.Latency.Max, r.Latency.Min)
		if r.Latency.Significant {
			out.printf("%s\n", pal.detected.Sprint(
				"Significant variation in response times detected, which may indicate load balancing."))
		} else {
			out.printf("%s\n", pal.neutral.Sprintf(
				"No significant variation in response times detected (spread within %.4f sec).", r.Threshold.Seconds()))
		}
	}

	out.printf("\n%s\n", pal.title.Sprint("Additional Header Analysis:"))
	for _, header := range r.Headers {
		if !header.Variation {
			out.printf("\n%s\n", pal.neutral.Sprintf("No significant variations detected in %s header.", header.Name))
			continue
		}
		out.printf("\n%s\n", pal.detected.Sprintf("%s Header Variations:", header.Name))
		for _, entry := range header.Values {
			out.printf("  %s: %d times\n", entry.Label(), entry.Count)
		}
	}
}
