// Package tcp adapts a net.Conn (normally a TCP connection accepted from a
// net.Listener) to gdbstub.TransportAdapter, the same way the donor's
// gdbserver.Server drove its RSP loop over net.Conn via bufio.Reader.
package tcp

import (
	"bufio"
	"context"
	"errors"
	"net"
	"time"
)

// Transport is a gdbstub.TransportAdapter backed by a net.Conn. Peek never
// blocks — it only reports what bufio has already buffered — and Poll
// block-waits for at least one more byte using a read deadline derived
// from ctx, so a caller driving Session.Run gets real blocking behavior
// without the adapter needing its own goroutine.
type Transport struct {
	conn net.Conn
	r    *bufio.Reader
}

// New wraps conn. The caller remains responsible for closing conn once the
// Session is done with it.
func New(conn net.Conn) *Transport {
	return &Transport{conn: conn, r: bufio.NewReader(conn)}
}

func (t *Transport) Peek(ctx context.Context) (int, error) {
	return t.r.Buffered(), nil
}

func (t *Transport) Read(ctx context.Context, buf []byte) (int, error) {
	return t.r.Read(buf)
}

func (t *Transport) Write(ctx context.Context, buf []byte) error {
	_, err := t.conn.Write(buf)

	return err
}

// pollHeartbeat bounds how long a single Poll call blocks before giving Run
// a chance to re-check ctx.Done(), since a plain net.Conn has no way to
// select on a context directly.
const pollHeartbeat = 500 * time.Millisecond

// Poll blocks until at least one byte is available or ctx is done. A mere
// read-deadline timeout is not reported as an error — it is the heartbeat
// that lets Run's loop notice ctx cancellation — only a genuine I/O error
// (including EOF on disconnect) is returned.
func (t *Transport) Poll(ctx context.Context) error {
	if t.r.Buffered() > 0 {
		return nil
	}

	deadline := time.Now().Add(pollHeartbeat)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := t.conn.SetReadDeadline(deadline); err != nil {
		return err
	}

	_, err := t.r.Peek(1)
	_ = t.conn.SetReadDeadline(time.Time{})

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return nil
	}

	return err
}
