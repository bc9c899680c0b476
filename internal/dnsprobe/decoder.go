package dnsprobe

//
// Decode DNS replies
//

import (
	"errors"

	"github.com/miekg/dns"
)

var (
	// ErrNoAnswer means that the name exists but has no A record.
	ErrNoAnswer = errors.New("dns_no_answer")

	// ErrNameNotFound means that the domain does not exist (NXDOMAIN).
	ErrNameNotFound = errors.New("dns_nxdomain_error")

	// ErrRefused means that the server refused to answer.
	ErrRefused = errors.New("dns_refused_error")

	// ErrServfail means that the server failed to resolve the name.
	ErrServfail = errors.New("dns_server_failure")

	// ErrMisbehaving means that the server returned an unexpected rcode.
	ErrMisbehaving = errors.New("dns_server_misbehaving")

	// ErrWrongQueryID means the reply ID does not match the query ID.
	ErrWrongQueryID = errors.New("dns_reply_with_wrong_query_id")
)

// DecodeLookupA extracts the IPv4 addresses from the reply to
// the query with the given ID, or maps the rcode to an error.
func DecodeLookupA(reply *dns.Msg, queryID uint16) ([]string, error) {
	if reply.Id != queryID {
		return nil, ErrWrongQueryID
	}
	switch reply.Rcode {
	case dns.RcodeSuccess:
		// fallthrough
	case dns.RcodeNameError:
		return nil, ErrNameNotFound
	case dns.RcodeRefused:
		return nil, ErrRefused
	case dns.RcodeServerFailure:
		return nil, ErrServfail
	default:
		return nil, ErrMisbehaving
	}
	var addrs []string
	for _, answer := range reply.Answer {
		if rra, ok := answer.(*dns.A); ok {
			addrs = append(addrs, rra.A.String())
		}
	}
	if len(addrs) <= 0 {
		return nil, ErrNoAnswer
	}
	return addrs, nil
}
