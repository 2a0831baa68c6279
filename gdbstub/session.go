package gdbstub

import (
	"context"
	"errors"
	"io"
)

// FeatureSet is the Session's negotiated Feature Bitset (spec §3). Only
// TargetDescriptionRead exists today; the type stays a struct rather than
// a single bool so a later feature can be added without breaking
// WithFeatureDefaults callers.
type FeatureSet struct {
	TargetDescriptionRead bool
}

// Option configures a Session at construction time.
type Option func(*Session)

// WithFeatureDefaults overrides the Feature Bitset a Session starts with.
// By default every known feature is enabled.
func WithFeatureDefaults(fs FeatureSet) Option {
	return func(s *Session) { s.features = fs }
}

// WithMonitorCommands adds session-level monitor commands consulted by
// qRcmd ahead of the Target Adapter's own CustomCommands table, letting an
// embedder extend or shadow a target's monitor commands without touching
// the adapter.
func WithMonitorCommands(cmds []CustomCommand) Option {
	return func(s *Session) { s.extraMonitor = append(s.extraMonitor, cmds...) }
}

// WithBufferPool sources the Session's reply buffer from pool instead of
// allocating its own, letting an embedder serving many short-lived
// connections (e.g. cmd/gdbstub-tcp-server's one-Session-per-conn loop)
// amortize growBuffer's backing-array growth across Sessions instead of
// regrowing from zero on every connection. Close returns the buffer to
// pool.
func WithBufferPool(pool *BufferPool) Option {
	return func(s *Session) { s.bufPool = pool }
}

// readChunkSize bounds a single Transport Read call inside Run.
const readChunkSize = 4096

// Session is the Session Context of spec §3: it owns the Packet Framer,
// the negotiated Feature Bitset, the extended-mode flag, the cached
// target-description document, the Register Index Vector and Register
// Scratch Buffer, and the Monitor Output Context, and drives a Transport
// Adapter and a Target Adapter through the receive loop in Run.
//
// A Session is not safe for concurrent use: Run must only ever be called
// from one goroutine at a time, matching the single-threaded collaborator
// contract spec §5 assumes of both adapters.
type Session struct {
	transport TransportAdapter
	target    TargetAdapter

	fr framer

	regs        []RegisterDescriptor
	regIndexAll []int
	regScratch  [][]byte

	features     FeatureSet
	extendedMode bool
	extraMonitor []CustomCommand
	monitor      MonitorWriter

	targetXML []byte

	lastState     RunState
	haveLastState bool

	bufPool  *BufferPool
	replyBuf *growBuffer
	readBuf  [readChunkSize]byte

	closed bool
}

// NewSession builds a Session over the given collaborators. It reads the
// Target Adapter's register table and architecture exactly once; both
// must stay stable for the Session's lifetime, per TargetAdapter's
// contract.
func NewSession(transport TransportAdapter, target TargetAdapter, opts ...Option) (*Session, error) {
	if transport == nil || target == nil {
		return nil, wrapStatus(StatusInvalidParameter, errors.New("gdbstub: transport and target are required"))
	}

	regs := target.Registers()

	regIndexAll := make([]int, len(regs))
	regScratch := make([][]byte, len(regs))

	for i, r := range regs {
		regIndexAll[i] = i
		regScratch[i] = make([]byte, r.ByteSize())
	}

	s := &Session{
		transport:   transport,
		target:      target,
		regs:        regs,
		regIndexAll: regIndexAll,
		regScratch:  regScratch,
		features:    FeatureSet{TargetDescriptionRead: true},
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.bufPool != nil {
		s.replyBuf = s.bufPool.Get()
	} else {
		s.replyBuf = &growBuffer{}
	}

	s.targetXML = buildTargetXML(regs, target.Architecture())

	return s, nil
}

// Close releases the Session's buffers, returning the reply buffer to its
// BufferPool if one was supplied via WithBufferPool. A closed Session's
// Run always returns StatusInvalidParameter; Close itself never fails,
// matching spec §6's Session Destroy operation on a freestanding target
// where there is nothing else to release.
func (s *Session) Close() error {
	s.closed = true
	s.fr.reset()
	s.regScratch = nil
	s.targetXML = nil

	if s.bufPool != nil {
		s.bufPool.Put(s.replyBuf)
	}

	s.replyBuf = nil

	return nil
}

// Reset returns the Packet Framer to WaitForStart without discarding
// negotiated features, extended-mode state, or buffer capacity, per spec
// §6's Session Reset operation.
func (s *Session) Reset() {
	s.fr.reset()
}

// Run drives the receive loop until the Transport Adapter is exhausted,
// an unrecoverable error occurs, or the peer sends "k". It returns nil on
// a clean kill, StatusTryAgain if the transport has no data and no way to
// block-wait, StatusPeerDisconnected on EOF, and ctx.Err() if ctx is
// canceled.
func (s *Session) Run(ctx context.Context) error {
	if s.closed {
		return wrapStatus(StatusInvalidParameter, errors.New("gdbstub: session is closed"))
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		state, err := s.target.GetState(ctx)
		if err != nil {
			return wrapStatus(StatusInternal, err)
		}

		if s.haveLastState && s.lastState == StateRunning && state != StateRunning {
			if err := s.writeReply(ctx, stopReply(false, 0, 0)); err != nil {
				return err
			}
		}

		s.lastState = state
		s.haveLastState = true

		avail, err := s.transport.Peek(ctx)
		if err != nil {
			return s.transportErr(err)
		}

		if avail == 0 {
			if err := s.transport.Poll(ctx); err != nil {
				if errors.Is(err, ErrPollUnsupported) {
					return StatusTryAgain
				}

				return s.transportErr(err)
			}

			continue
		}

		n := avail
		if n > len(s.readBuf) {
			n = len(s.readBuf)
		}

		read, err := s.transport.Read(ctx, s.readBuf[:n])
		if err != nil {
			return s.transportErr(err)
		}

		if err := s.consume(ctx, s.readBuf[:read]); err != nil {
			if errors.Is(err, errTerminate) {
				return nil
			}

			return err
		}
	}
}

// consume feeds each byte of chunk through the Packet Framer, acting on
// every event it reports before moving to the next byte.
func (s *Session) consume(ctx context.Context, chunk []byte) error {
	for _, b := range chunk {
		switch s.fr.feedByte(b) {
		case eventInterrupt:
			if err := s.target.Stop(ctx); err != nil {
				return wrapStatus(StatusInternal, err)
			}

			if err := s.writeReply(ctx, stopReply(false, 0, 0)); err != nil {
				return err
			}

		case eventBadChecksum:
			if err := s.transport.Write(ctx, []byte{'-'}); err != nil {
				return s.transportErr(err)
			}

		case eventPacketGood:
			if err := s.transport.Write(ctx, []byte{'+'}); err != nil {
				return s.transportErr(err)
			}

			body := s.fr.body.String()
			res := s.dispatch(ctx, body)

			if res.terminate {
				return errTerminate
			}

			if res.hasReply {
				if err := s.writeReply(ctx, res.reply); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// errTerminate is a private sentinel threaded back up through consume and
// Run to end the loop cleanly after "k"; it is never returned from Run
// itself.
var errTerminate = errors.New("gdbstub: session terminated")

func (s *Session) writeReply(ctx context.Context, body string) error {
	s.replyBuf.reset()
	frame(s.replyBuf, []byte(body))

	if err := s.transport.Write(ctx, s.replyBuf.Bytes()); err != nil {
		return s.transportErr(err)
	}

	return nil
}

func (s *Session) transportErr(err error) error {
	if errors.Is(err, io.EOF) {
		return StatusPeerDisconnected
	}

	return wrapStatus(StatusInternal, err)
}
