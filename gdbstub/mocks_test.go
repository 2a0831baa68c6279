package gdbstub

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/mock/gomock"
)

// mockTarget is a hand-written TargetAdapter test double (mockgen is not
// run, per the no-toolchain constraint). It wires a real gomock.Controller
// so ctrl.Finish runs via t.Cleanup like a generated mock would, and
// records every call's method name to calls for sequencing assertions,
// while behavior itself is driven by the plain fields and *Fn hooks below.
type mockTarget struct {
	ctrl  *gomock.Controller
	calls []string

	arch Architecture
	regs []RegisterDescriptor

	stateMu  sync.Mutex
	state    RunState
	stateErr error

	readMemFn  func(ctx context.Context, addr uint64, buf []byte) (int, error)
	writeMemFn func(ctx context.Context, addr uint64, data []byte) error

	readRegsFn  func(ctx context.Context, indices []int, out [][]byte) error
	writeRegsFn func(ctx context.Context, indices []int, in [][]byte) error

	continueErr error
	stepErr     error
	stopErr     error
	restartErr  error
	killErr     error

	setTraceErr   error
	clearTraceErr error

	// lastSetTrace/lastClearTrace capture the arguments of the most recent
	// SetTracepoint/ClearTracepoint call, so tests can assert the
	// dispatcher parsed the wire-format kind digit and address correctly
	// instead of only checking the reply shape.
	lastSetTraceKind   TracepointKind
	lastSetTraceAddr   uint64
	lastSetTraceLength int
	lastClearTraceKind TracepointKind
	lastClearTraceAddr uint64

	customCommands []CustomCommand
	supportRestart bool
	supportKill    bool
}

func newMockTarget(t *testing.T) *mockTarget {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	return &mockTarget{ctrl: ctrl}
}

func (m *mockTarget) record(method string) { m.calls = append(m.calls, method) }

func (m *mockTarget) Architecture() Architecture     { return m.arch }
func (m *mockTarget) Registers() []RegisterDescriptor { return m.regs }
func (m *mockTarget) SupportsRestart() bool          { return m.supportRestart }
func (m *mockTarget) SupportsKill() bool             { return m.supportKill }
func (m *mockTarget) CustomCommands() []CustomCommand { return m.customCommands }

func (m *mockTarget) GetState(ctx context.Context) (RunState, error) {
	m.record("GetState")

	m.stateMu.Lock()
	defer m.stateMu.Unlock()

	return m.state, m.stateErr
}

// setState is the race-safe way for a test to change state concurrently
// with a running Session.Run goroutine observing it via GetState.
func (m *mockTarget) setState(s RunState) {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()

	m.state = s
}

func (m *mockTarget) Stop(ctx context.Context) error {
	m.record("Stop")

	return m.stopErr
}

func (m *mockTarget) Continue(ctx context.Context) error {
	m.record("Continue")

	return m.continueErr
}

func (m *mockTarget) Step(ctx context.Context) error {
	m.record("Step")

	return m.stepErr
}

func (m *mockTarget) Restart(ctx context.Context) error {
	m.record("Restart")

	return m.restartErr
}

func (m *mockTarget) Kill(ctx context.Context) error {
	m.record("Kill")

	return m.killErr
}

func (m *mockTarget) ReadMemory(ctx context.Context, addr uint64, buf []byte) (int, error) {
	m.record("ReadMemory")

	if m.readMemFn != nil {
		return m.readMemFn(ctx, addr, buf)
	}

	return 0, StatusNotSupported
}

func (m *mockTarget) WriteMemory(ctx context.Context, addr uint64, data []byte) error {
	m.record("WriteMemory")

	if m.writeMemFn != nil {
		return m.writeMemFn(ctx, addr, data)
	}

	return StatusNotSupported
}

func (m *mockTarget) ReadRegisters(ctx context.Context, indices []int, out [][]byte) error {
	m.record("ReadRegisters")

	if m.readRegsFn != nil {
		return m.readRegsFn(ctx, indices, out)
	}

	return StatusNotSupported
}

func (m *mockTarget) WriteRegisters(ctx context.Context, indices []int, in [][]byte) error {
	m.record("WriteRegisters")

	if m.writeRegsFn != nil {
		return m.writeRegsFn(ctx, indices, in)
	}

	return StatusNotSupported
}

func (m *mockTarget) SetTracepoint(ctx context.Context, kind TracepointKind, addr uint64, length int) error {
	m.record("SetTracepoint")

	m.lastSetTraceKind = kind
	m.lastSetTraceAddr = addr
	m.lastSetTraceLength = length

	return m.setTraceErr
}

func (m *mockTarget) ClearTracepoint(ctx context.Context, kind TracepointKind, addr uint64) error {
	m.record("ClearTracepoint")

	m.lastClearTraceKind = kind
	m.lastClearTraceAddr = addr

	return m.clearTraceErr
}

// mockTransport is an in-memory TransportAdapter backed by plain byte
// slices, used where a test wants to drive Session.Run without a real
// net.Pipe.
type mockTransport struct {
	in      []byte
	out     []byte
	pollErr error
	pollFn  func(ctx context.Context) error
}

func (t *mockTransport) Peek(ctx context.Context) (int, error) {
	return len(t.in), nil
}

func (t *mockTransport) Read(ctx context.Context, buf []byte) (int, error) {
	n := copy(buf, t.in)
	t.in = t.in[n:]

	return n, nil
}

func (t *mockTransport) Write(ctx context.Context, buf []byte) error {
	t.out = append(t.out, buf...)

	return nil
}

func (t *mockTransport) Poll(ctx context.Context) error {
	if t.pollFn != nil {
		return t.pollFn(ctx)
	}

	if t.pollErr != nil {
		return t.pollErr
	}

	return ErrPollUnsupported
}
