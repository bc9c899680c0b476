package dnsprobe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/apex/log"
	"github.com/apex/log/handlers/memory"
	"github.com/google/go-cmp/cmp"
	"github.com/lbprobe/lbprobe/internal/model"
	"github.com/lbprobe/lbprobe/internal/model/mocks"
	"github.com/lbprobe/lbprobe/internal/testingx"
	"github.com/miekg/dns"
)

// newScriptedTransport returns a transport emitting the i-th script
// entry for the i-th query. Each entry is either an error or a
// list of addresses for a successful reply.
func newScriptedTransport(script ...interface{}) (*mocks.DNSTransport, *int) {
	var count int
	txp := &mocks.DNSTransport{
		MockRoundTrip: func(ctx context.Context, query *dns.Msg) (*dns.Msg, error) {
			entry := script[count%len(script)]
			count++
			if err, ok := entry.(error); ok {
				return nil, err
			}
			return newReply(query, dns.RcodeSuccess, entry.([]string)...), nil
		},
		MockAddress: func() string {
			return "10.0.0.53:53"
		},
	}
	return txp, &count
}

func newTestProber(txp model.DNSTransport, count int) (*Prober, *memory.Handler) {
	handler := memory.New()
	logger := &log.Logger{Handler: handler, Level: log.InfoLevel}
	prober := NewProber(txp, logger)
	prober.Count = count
	prober.Delay = 0
	return prober, handler
}

func messages(handler *memory.Handler) (out []string) {
	for _, entry := range handler.Entries {
		out = append(out, entry.Message)
	}
	return
}

func TestNewProber(t *testing.T) {
	prober := NewProber(&mocks.DNSTransport{}, nil)
	if prober.Count != DefaultCount {
		t.Fatal("unexpected count", prober.Count)
	}
	if prober.Logger != model.DiscardLogger {
		t.Fatal("expected the discard logger")
	}
}

func TestProberProbe(t *testing.T) {
	t.Run("distinct addresses across lookups", func(t *testing.T) {
		for k := 1; k <= 5; k++ {
			t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
				var script []interface{}
				for i := 0; i < k; i++ {
					script = append(script, []string{fmt.Sprintf("10.0.0.%d", i+1)})
				}
				txp, count := newScriptedTransport(script...)
				prober, _ := newTestProber(txp, 10)
				result := prober.Probe(context.Background(), "www.example.com")
				if result.Addresses.Len() != k {
					t.Fatal("expected", k, "addresses, got", result.Addresses.Len())
				}
				if *count != 10 || result.Lookups != 10 {
					t.Fatal("unexpected number of lookups", *count, result.Lookups)
				}
			})
		}
	})

	t.Run("failures are logged and the run continues", func(t *testing.T) {
		txp, count := newScriptedTransport(
			ErrNoAnswer,
			[]string{"10.0.0.1", "10.0.0.2"},
			ErrNameNotFound,
			errors.New("i/o timeout"),
			[]string{"10.0.0.2", "10.0.0.3"},
		)
		prober, handler := newTestProber(txp, 5)
		result := prober.Probe(context.Background(), "www.example.com")
		if *count != 5 {
			t.Fatal("expected five lookups, got", *count)
		}
		if diff := cmp.Diff([]string{"10.0.0.1", "10.0.0.2", "10.0.0.3"}, result.Addresses.Addresses()); diff != "" {
			t.Fatal(diff)
		}
		expectMessages := []string{
			"No DNS record found.",
			"DNS Lookup 2: 10.0.0.1",
			"DNS Lookup 2: 10.0.0.2",
			"Domain does not exist.",
			"DNS Lookup error: i/o timeout",
			"DNS Lookup 5: 10.0.0.2",
			"DNS Lookup 5: 10.0.0.3",
		}
		if diff := cmp.Diff(expectMessages, messages(handler)); diff != "" {
			t.Fatal(diff)
		}
		expectFailures := []string{ErrNoAnswer.Error(), ErrNameNotFound.Error(), "i/o timeout"}
		if diff := cmp.Diff(expectFailures, result.Failures); diff != "" {
			t.Fatal(diff)
		}
		if result.Resolver != "10.0.0.53:53" {
			t.Fatal("unexpected resolver", result.Resolver)
		}
	})

	t.Run("a canceled context stops the run", func(t *testing.T) {
		txp, count := newScriptedTransport([]string{"10.0.0.1"})
		prober, _ := newTestProber(txp, 20)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		result := prober.Probe(ctx, "www.example.com")
		if *count != 0 || result.Lookups != 0 {
			t.Fatal("expected no lookups", *count, result.Lookups)
		}
	})

	t.Run("with the UDP transport and a round robin server", func(t *testing.T) {
		responder := testingx.NewDNSResponder()
		responder.RoundRobin = true
		responder.AddRecords("www.example.com", "10.0.0.1", "10.0.0.2", "10.0.0.3")
		listener := testingx.MustNewDNSOverUDPListener(&net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)}, responder)
		defer listener.Close()

		prober, _ := newTestProber(NewTransport(listener.LocalAddr().String(), 0), 6)
		result := prober.Probe(context.Background(), "www.example.com")
		if diff := cmp.Diff([]string{"10.0.0.1", "10.0.0.2", "10.0.0.3"}, result.Addresses.Addresses()); diff != "" {
			t.Fatal(diff)
		}
		if responder.Queries() != 6 {
			t.Fatal("unexpected number of queries", responder.Queries())
		}
	})
}

func TestProberDebugLogging(t *testing.T) {
	txp, _ := newScriptedTransport([]string{"10.0.0.1"}, ErrNameNotFound)
	var lines []string
	logger := &mocks.Logger{
		MockDebugf: func(format string, v ...interface{}) {
			lines = append(lines, fmt.Sprintf(format, v...))
		},
		MockInfof: func(format string, v ...interface{}) {},
		MockWarn:  func(message string) {},
	}
	prober := NewProber(txp, logger)
	prober.Count = 2
	prober.Delay = 0
	prober.Probe(context.Background(), "www.example.com")
	expect := []string{
		"dnsprobe: lookup 1 of www.example.com via 10.0.0.53:53... ok",
		"dnsprobe: lookup 2 of www.example.com via 10.0.0.53:53... " + ErrNameNotFound.Error(),
	}
	if diff := cmp.Diff(expect, lines); diff != "" {
		t.Fatal(diff)
	}
}
