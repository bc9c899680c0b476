package testingx

import (
	"context"
	"net"
	"sync"

	"github.com/miekg/dns"
)

// DNSResponder is a [DNSRoundTripper] answering A queries from a static
// table. Names missing from the table get NXDOMAIN and names mapped to
// an empty list get an empty successful reply. The zero value is invalid;
// use [NewDNSResponder].
type DNSResponder struct {
	// RoundRobin OPTIONALLY answers with a single address per query,
	// rotating through the configured addresses.
	RoundRobin bool

	mu      sync.Mutex
	next    map[string]int
	queries int
	records map[string][]string
}

var _ DNSRoundTripper = &DNSResponder{}

// NewDNSResponder creates a new [*DNSResponder].
func NewDNSResponder() *DNSResponder {
	return &DNSResponder{
		next:    map[string]int{},
		records: map[string][]string{},
	}
}

// AddRecords maps domain to the given IPv4 addresses.
func (r *DNSResponder) AddRecords(domain string, addrs ...string) {
	defer r.mu.Unlock()
	r.mu.Lock()
	name := dns.CanonicalName(domain)
	r.records[name] = append(r.records[name], addrs...)
}

// Queries returns the number of queries we answered.
func (r *DNSResponder) Queries() int {
	defer r.mu.Unlock()
	r.mu.Lock()
	return r.queries
}

// RoundTrip implements DNSRoundTripper.
func (r *DNSResponder) RoundTrip(ctx context.Context, rawQuery []byte) ([]byte, error) {
	query := new(dns.Msg)
	if err := query.Unpack(rawQuery); err != nil {
		return nil, err
	}
	return r.Reply(query).Pack()
}

// Reply builds the reply to query.
func (r *DNSResponder) Reply(query *dns.Msg) *dns.Msg {
	defer r.mu.Unlock()
	r.mu.Lock()
	r.queries++
	reply := new(dns.Msg)
	reply.SetReply(query)
	reply.RecursionAvailable = true
	if len(query.Question) != 1 {
		reply.Rcode = dns.RcodeFormatError
		return reply
	}
	question := query.Question[0]
	name := dns.CanonicalName(question.Name)
	addrs, found := r.records[name]
	if !found {
		reply.Rcode = dns.RcodeNameError
		return reply
	}
	if question.Qtype != dns.TypeA || len(addrs) <= 0 {
		return reply
	}
	if r.RoundRobin {
		idx := r.next[name] % len(addrs)
		r.next[name]++
		addrs = addrs[idx : idx+1]
	}
	for _, addr := range addrs {
		reply.Answer = append(reply.Answer, &dns.A{
			Hdr: dns.RR_Header{
				Name:   question.Name,
				Rrtype: dns.TypeA,
				Class:  dns.ClassINET,
				Ttl:    0,
			},
			A: net.ParseIP(addr),
		})
	}
	return reply
}
