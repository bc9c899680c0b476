package dnsprobe

import (
	"errors"
	"net"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/miekg/dns"
)

func newReply(query *dns.Msg, rcode int, addrs ...string) *dns.Msg {
	reply := new(dns.Msg)
	reply.SetReply(query)
	reply.Rcode = rcode
	for _, addr := range addrs {
		reply.Answer = append(reply.Answer, &dns.A{
			Hdr: dns.RR_Header{Name: query.Question[0].Name, Rrtype: dns.TypeA, Class: dns.ClassINET},
			A:   net.ParseIP(addr),
		})
	}
	return reply
}

func TestNewQuery(t *testing.T) {
	query := NewQuery("example.com", dns.TypeA)
	if !query.RecursionDesired {
		t.Fatal("expected recursion desired")
	}
	expect := []dns.Question{{Name: "example.com.", Qtype: dns.TypeA, Qclass: dns.ClassINET}}
	if diff := cmp.Diff(expect, query.Question); diff != "" {
		t.Fatal(diff)
	}
	if _, err := query.Pack(); err != nil {
		t.Fatal(err)
	}
}

func TestDecodeLookupA(t *testing.T) {
	query := NewQuery("example.com", dns.TypeA)

	type testcase struct {
		name      string
		reply     *dns.Msg
		queryID   uint16
		expectErr error
		expect    []string
	}

	wrongID := newReply(query, dns.RcodeSuccess, "10.0.0.1")
	wrongID.Id = query.Id + 1

	withCNAME := newReply(query, dns.RcodeSuccess, "10.0.0.1")
	withCNAME.Answer = append([]dns.RR{&dns.CNAME{
		Hdr:    dns.RR_Header{Name: "example.com.", Rrtype: dns.TypeCNAME, Class: dns.ClassINET},
		Target: "cdn.example.net.",
	}}, withCNAME.Answer...)

	cases := []testcase{{
		name:    "success",
		reply:   newReply(query, dns.RcodeSuccess, "10.0.0.1", "10.0.0.2"),
		queryID: query.Id,
		expect:  []string{"10.0.0.1", "10.0.0.2"},
	}, {
		name:    "CNAME records are ignored",
		reply:   withCNAME,
		queryID: query.Id,
		expect:  []string{"10.0.0.1"},
	}, {
		name:      "no answer",
		reply:     newReply(query, dns.RcodeSuccess),
		queryID:   query.Id,
		expectErr: ErrNoAnswer,
	}, {
		name:      "nxdomain",
		reply:     newReply(query, dns.RcodeNameError),
		queryID:   query.Id,
		expectErr: ErrNameNotFound,
	}, {
		name:      "refused",
		reply:     newReply(query, dns.RcodeRefused),
		queryID:   query.Id,
		expectErr: ErrRefused,
	}, {
		name:      "servfail",
		reply:     newReply(query, dns.RcodeServerFailure),
		queryID:   query.Id,
		expectErr: ErrServfail,
	}, {
		name:      "other rcode",
		reply:     newReply(query, dns.RcodeNotImplemented),
		queryID:   query.Id,
		expectErr: ErrMisbehaving,
	}, {
		name:      "wrong query ID",
		reply:     wrongID,
		queryID:   query.Id,
		expectErr: ErrWrongQueryID,
	}}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			addrs, err := DecodeLookupA(tc.reply, tc.queryID)
			if !errors.Is(err, tc.expectErr) {
				t.Fatal("expected", tc.expectErr, "got", err)
			}
			if diff := cmp.Diff(tc.expect, addrs); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}
