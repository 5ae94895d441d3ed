package quic

import (
	"context"
	"net"
	"time"

	q "github.com/quic-go/quic-go"
)

// DefaultConfig returns QUIC settings tuned for peer exchanges: one short
// control-stream conversation per connection, so a single bidirectional
// stream, no unidirectional streams, no keep-alives, and an idle timeout
// that reaps peers which dial and stall.
func DefaultConfig() *q.Config {
	return &q.Config{
		MaxIdleTimeout:        30 * time.Second,
		MaxIncomingStreams:    1,
		MaxIncomingUniStreams: -1,
		KeepAlivePeriod:       0,
	}
}

type Listener struct {
	inner *q.Listener
}

// Listen starts a listener with DefaultConfig and a fresh self-signed
// TLS config (see NewServerTLSConfig).
func Listen(addr string) (*Listener, error) {
	return ListenConfig(addr, DefaultConfig())
}

// ListenConfig is Listen with an explicit QUIC config, for callers that
// need different stream or timeout budgets.
func ListenConfig(addr string, conf *q.Config) (*Listener, error) {
	tlsConf, err := NewServerTLSConfig()
	if err != nil {
		return nil, err
	}
	ln, err := q.ListenAddr(addr, tlsConf, conf)
	if err != nil {
		return nil, err
	}
	return &Listener{inner: ln}, nil
}

func (l *Listener) Accept(ctx context.Context) (*q.Conn, error) {
	return l.inner.Accept(ctx)
}

func (l *Listener) Addr() net.Addr { return l.inner.Addr() }

func (l *Listener) AddrString() string {
	if l.inner == nil {
		return ""
	}
	return l.inner.Addr().String()
}

func (l *Listener) Close() error { return l.inner.Close() }

// Dial connects with DefaultConfig.
func Dial(ctx context.Context, addr string) (*q.Conn, error) {
	return DialConfig(ctx, addr, DefaultConfig())
}

// DialConfig is Dial with an explicit QUIC config.
func DialConfig(ctx context.Context, addr string, conf *q.Config) (*q.Conn, error) {
	tlsConf, err := NewClientTLSConfig()
	if err != nil {
		return nil, err
	}
	return q.DialAddr(ctx, addr, tlsConf, conf)
}
