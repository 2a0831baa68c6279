// Package quictransport adapts a QUIC stream to gdbstub.TransportAdapter,
// the way an embedded target might expose its RSP stub over a QUIC
// connection instead of plain TCP. TLS defaults follow the same
// TLS-1.3-minimum convention the donor's HTTP/3 server wrapper enforces.
package quictransport

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/quic-go/quic-go"
)

// defaultTLSConfig mirrors the donor's HTTP3Server default: TLS 1.3 is
// mandatory for QUIC, and a NextProtos entry is always set so ALPN
// negotiation has something to agree on.
func defaultTLSConfig(tlsCfg *tls.Config, alpn string) *tls.Config {
	if tlsCfg == nil {
		return &tls.Config{MinVersion: tls.VersionTLS13, NextProtos: []string{alpn}}
	}

	if tlsCfg.MinVersion != 0 && tlsCfg.MinVersion >= tls.VersionTLS13 && len(tlsCfg.NextProtos) > 0 {
		return tlsCfg
	}

	c := tlsCfg.Clone()
	c.MinVersion = tls.VersionTLS13

	if len(c.NextProtos) == 0 {
		c.NextProtos = []string{alpn}
	}

	return c
}

// ALPN is the protocol identifier this package negotiates, analogous to
// "h3" for HTTP/3.
const ALPN = "gdbstub-rsp"

// Options configures quic-go beyond its zero-value defaults, mirroring the
// donor's HTTP3Options shape.
type Options struct {
	MaxIdleTimeout  time.Duration
	KeepAlivePeriod time.Duration
}

func (o Options) quicConfig() *quic.Config {
	qc := &quic.Config{}

	if o.MaxIdleTimeout > 0 {
		qc.MaxIdleTimeout = o.MaxIdleTimeout
	}

	if o.KeepAlivePeriod > 0 {
		qc.KeepAlivePeriod = o.KeepAlivePeriod
	}

	return qc
}

// Listener accepts incoming QUIC connections and hands back the first
// bidirectional stream on each as a Transport — one RSP session per
// connection, matching how a debug stub expects exactly one GDB client at
// a time.
type Listener struct {
	ln *quic.Listener
}

// Listen binds addr (host:port) for QUIC connections.
func Listen(addr string, tlsCfg *tls.Config, opts Options) (*Listener, error) {
	ln, err := quic.ListenAddr(addr, defaultTLSConfig(tlsCfg, ALPN), opts.quicConfig())
	if err != nil {
		return nil, fmt.Errorf("quictransport: listen %s: %w", addr, err)
	}

	return &Listener{ln: ln}, nil
}

// Addr reports the bound local address.
func (l *Listener) Addr() string { return l.ln.Addr().String() }

// Close stops accepting new connections.
func (l *Listener) Close() error { return l.ln.Close() }

// Accept blocks for the next connection and returns its first bidirectional
// stream wrapped as a Transport.
func (l *Listener) Accept(ctx context.Context) (*Transport, error) {
	conn, err := l.ln.Accept(ctx)
	if err != nil {
		return nil, fmt.Errorf("quictransport: accept: %w", err)
	}

	stream, err := conn.AcceptStream(ctx)
	if err != nil {
		return nil, fmt.Errorf("quictransport: accept stream: %w", err)
	}

	return &Transport{conn: conn, stream: stream}, nil
}

// Dial opens a client-side QUIC connection and its first bidirectional
// stream, for a GDB-side or test-side peer driving a Transport from the
// other end.
func Dial(ctx context.Context, addr string, tlsCfg *tls.Config, opts Options) (*Transport, error) {
	conn, err := quic.DialAddr(ctx, addr, defaultTLSConfig(tlsCfg, ALPN), opts.quicConfig())
	if err != nil {
		return nil, fmt.Errorf("quictransport: dial %s: %w", addr, err)
	}

	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		return nil, fmt.Errorf("quictransport: open stream: %w", err)
	}

	return &Transport{conn: conn, stream: stream}, nil
}

// Transport is a gdbstub.TransportAdapter backed by a single QUIC stream.
// quic-go streams have no OS-level socket buffer to inspect, so Peek only
// reports the byte (if any) that Poll has already stashed; callers rely on
// Poll to block-wait and Read to deliver the data Poll found.
type Transport struct {
	conn   *quic.Conn
	stream *quic.Stream

	// lookahead holds a byte Poll has already pulled off the stream so
	// Read can hand it back before reading any more.
	lookahead []byte
}

func (t *Transport) Peek(ctx context.Context) (int, error) { return len(t.lookahead), nil }

func (t *Transport) Read(ctx context.Context, buf []byte) (int, error) {
	if len(t.lookahead) > 0 {
		n := copy(buf, t.lookahead)
		t.lookahead = t.lookahead[n:]

		return n, nil
	}

	return t.stream.Read(buf)
}

func (t *Transport) Write(ctx context.Context, buf []byte) error {
	_, err := t.stream.Write(buf)

	return err
}

// Poll reads exactly one byte to learn whether data is available, then
// stashes it in lookahead so the next Read sees it first. quic-go streams
// offer no peek primitive, so this is the narrowest possible
// block-and-stash: Poll never consumes more than the one byte it needs to
// confirm readiness.
func (t *Transport) Poll(ctx context.Context) error {
	if len(t.lookahead) > 0 {
		return nil
	}

	b := make([]byte, 1)

	n, err := t.stream.Read(b)
	if err != nil {
		return err
	}

	t.lookahead = b[:n]

	return nil
}
