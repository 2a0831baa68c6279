package gdbstub

import "context"

// Architecture tags a target's instruction set, used by the Target
// Description Builder to pick the GDB feature-name namespace.
type Architecture int

const (
	ArchUnknown Architecture = iota
	ArchARM
	ArchX86
	ArchAMD64
)

// RegisterClass is the semantic role of a register, used by the Target
// Description Builder to decide whether to emit a "type" attribute.
type RegisterClass int

const (
	RegClassGeneral RegisterClass = iota
	RegClassProgramCounter
	RegClassStackPointer
	RegClassCodePointer
	RegClassStatus
)

// RegisterDescriptor is one entry of the ordered, static register table a
// Target Adapter publishes. The Session builds its Register Index Vector
// and Register Scratch Buffer from this table once at construction.
type RegisterDescriptor struct {
	Name    string
	BitSize int
	Class   RegisterClass
}

// ByteSize is the register's width in bytes, rounded up.
func (r RegisterDescriptor) ByteSize() int {
	return (r.BitSize + 7) / 8
}

// RunState is the target's current execution state, sampled by the Session
// on every receive-loop iteration to detect a running-to-stopped edge.
type RunState int

const (
	StateStopped RunState = iota
	StateRunning
	StateExited
)

// TracepointKind mirrors RSP's Z/z "type" field.
type TracepointKind int

const (
	TracepointSoftwareBreak TracepointKind = iota
	TracepointHardwareBreak
	TracepointWriteWatch
	TracepointReadWatch
	TracepointAccessWatch
)

// CustomCommand is one entry of a Target Adapter's monitor-command table,
// invoked by qRcmd. Output written to w is hex-encoded and returned to GDB;
// a nil error with no output produces a bare "OK".
type CustomCommand struct {
	Name string
	Run  func(w *MonitorWriter, args []string) error
}

// TargetAdapter is the debug-capability surface the Session drives. Every
// method may be called from the single receive-loop goroutine only; the
// Session holds no lock around these calls, so an adapter serving multiple
// sessions must do its own locking.
//
// Optional capabilities (Restart, Kill, SetTracepoint, ClearTracepoint)
// return StatusNotSupported when absent instead of being nil-checked by
// the dispatcher.
type TargetAdapter interface {
	// Architecture and Registers describe the static register file; both
	// must return the same answer for the lifetime of a Session.
	Architecture() Architecture
	Registers() []RegisterDescriptor

	// GetState returns the target's current run state without blocking.
	GetState(ctx context.Context) (RunState, error)
	Stop(ctx context.Context) error
	Continue(ctx context.Context) error
	Step(ctx context.Context) error
	Restart(ctx context.Context) error
	Kill(ctx context.Context) error

	ReadMemory(ctx context.Context, addr uint64, buf []byte) (int, error)
	WriteMemory(ctx context.Context, addr uint64, data []byte) error

	// ReadRegisters and WriteRegisters are driven with a single call each
	// for a full 'g'/'G' packet; indices lets the Session reuse the same
	// calls for single-register 'p'/'P' access.
	ReadRegisters(ctx context.Context, indices []int, out [][]byte) error
	WriteRegisters(ctx context.Context, indices []int, in [][]byte) error

	SetTracepoint(ctx context.Context, kind TracepointKind, addr uint64, length int) error
	ClearTracepoint(ctx context.Context, kind TracepointKind, addr uint64) error

	// CustomCommands returns the monitor-command table consulted by qRcmd.
	// May return nil. Implementations backed by config.Watcher return the
	// latest hot-reloaded snapshot.
	CustomCommands() []CustomCommand

	// SupportsRestart and SupportsKill report whether Restart/Kill are
	// meaningful for this target, independent of whether they might also
	// return StatusNotSupported dynamically.
	SupportsRestart() bool
	SupportsKill() bool
}
