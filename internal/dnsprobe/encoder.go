package dnsprobe

//
// Encode DNS queries
//

import "github.com/miekg/dns"

// NewQuery creates a recursive query for domain and qtype with a random ID.
func NewQuery(domain string, qtype uint16) *dns.Msg {
	query := new(dns.Msg)
	query.Id = dns.Id()
	query.RecursionDesired = true
	query.Question = []dns.Question{{
		Name:   dns.Fqdn(domain),
		Qtype:  qtype,
		Qclass: dns.ClassINET,
	}}
	return query
}
