package testingx

import (
	"context"
	"errors"
	"net"
	"sync"

	"github.com/lbprobe/lbprobe/internal/runtimex"
)

// DNSRoundTripper answers raw DNS queries with raw DNS replies.
type DNSRoundTripper interface {
	RoundTrip(ctx context.Context, rawQuery []byte) ([]byte, error)
}

// DNSOverUDPListener is a DNS-over-UDP listener. The zero value of this
// struct is invalid, please use [MustNewDNSOverUDPListener].
type DNSOverUDPListener struct {
	cancel    context.CancelFunc
	closeOnce sync.Once
	pconn     net.PacketConn
	rtx       DNSRoundTripper
	wg        sync.WaitGroup
}

// MustNewDNSOverUDPListener creates a new [DNSOverUDPListener] listening
// on the given [*net.UDPAddr] and answering using the [DNSRoundTripper].
func MustNewDNSOverUDPListener(addr *net.UDPAddr, rtx DNSRoundTripper) *DNSOverUDPListener {
	pconn := runtimex.Try1(net.ListenUDP("udp", addr))
	ctx, cancel := context.WithCancel(context.Background())
	dl := &DNSOverUDPListener{
		cancel:    cancel,
		closeOnce: sync.Once{},
		pconn:     pconn,
		rtx:       rtx,
		wg:        sync.WaitGroup{},
	}
	dl.wg.Add(1)
	go dl.mainloop(ctx)
	return dl
}

// LocalAddr returns the connection address.
func (dl *DNSOverUDPListener) LocalAddr() net.Addr {
	return dl.pconn.LocalAddr()
}

// Close implements io.Closer.
func (dl *DNSOverUDPListener) Close() (err error) {
	dl.closeOnce.Do(func() {
		// close the connection to interrupt ReadFrom or WriteTo
		err = dl.pconn.Close()

		// cancel the context to interrupt the round tripper
		dl.cancel()

		dl.wg.Wait()
	})
	return err
}

func (dl *DNSOverUDPListener) mainloop(ctx context.Context) {
	defer dl.wg.Done()
	for {
		buffer := make([]byte, 1<<17)
		count, addr, err := dl.pconn.ReadFrom(buffer)
		if errors.Is(err, net.ErrClosed) {
			return
		}
		if err != nil {
			continue
		}
		rawResp, err := dl.rtx.RoundTrip(ctx, buffer[:count])
		if err != nil {
			continue // just ignore the message
		}
		// we'll notice ErrClosed in the next ReadFrom call
		_, _ = dl.pconn.WriteTo(rawResp, addr)
	}
}
