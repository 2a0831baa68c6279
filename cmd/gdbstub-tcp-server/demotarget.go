package main

import (
	"context"
	"sync"

	"github.com/orizon-lang/gdbstub/gdbstub"
)

// demoTarget is a trivial in-memory TargetAdapter standing in for a real
// debuggee: a flat byte-addressable memory space and a small AMD64-shaped
// register file, both mutable only through RSP commands. It replaces the
// donor's ProgramDebugInfo-backed target entirely — there is no JSON debug
// info format in this generic library, only the Target Adapter interface.
type demoTarget struct {
	mu    sync.Mutex
	mem   map[uint64]byte
	regs  [][]byte
	state gdbstub.RunState
}

func newDemoTarget() *demoTarget {
	regs := make([][]byte, len(demoRegisters))
	for i, r := range demoRegisters {
		regs[i] = make([]byte, r.ByteSize())
	}

	return &demoTarget{mem: make(map[uint64]byte), regs: regs, state: gdbstub.StateStopped}
}

var demoRegisters = []gdbstub.RegisterDescriptor{
	{Name: "rax", BitSize: 64, Class: gdbstub.RegClassGeneral},
	{Name: "rbx", BitSize: 64, Class: gdbstub.RegClassGeneral},
	{Name: "rcx", BitSize: 64, Class: gdbstub.RegClassGeneral},
	{Name: "rdx", BitSize: 64, Class: gdbstub.RegClassGeneral},
	{Name: "rsp", BitSize: 64, Class: gdbstub.RegClassStackPointer},
	{Name: "rip", BitSize: 64, Class: gdbstub.RegClassProgramCounter},
	{Name: "eflags", BitSize: 32, Class: gdbstub.RegClassStatus},
}

func (d *demoTarget) Architecture() gdbstub.Architecture { return gdbstub.ArchAMD64 }

func (d *demoTarget) Registers() []gdbstub.RegisterDescriptor { return demoRegisters }

func (d *demoTarget) GetState(ctx context.Context) (gdbstub.RunState, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.state, nil
}

func (d *demoTarget) Stop(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = gdbstub.StateStopped

	return nil
}

func (d *demoTarget) Continue(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = gdbstub.StateRunning

	return nil
}

func (d *demoTarget) Step(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = gdbstub.StateStopped

	return nil
}

func (d *demoTarget) Restart(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.mem = make(map[uint64]byte)
	for _, r := range d.regs {
		for i := range r {
			r[i] = 0
		}
	}

	d.state = gdbstub.StateStopped

	return nil
}

func (d *demoTarget) Kill(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = gdbstub.StateExited

	return nil
}

func (d *demoTarget) ReadMemory(ctx context.Context, addr uint64, buf []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := range buf {
		buf[i] = d.mem[addr+uint64(i)]
	}

	return len(buf), nil
}

func (d *demoTarget) WriteMemory(ctx context.Context, addr uint64, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, b := range data {
		d.mem[addr+uint64(i)] = b
	}

	return nil
}

func (d *demoTarget) ReadRegisters(ctx context.Context, indices []int, out [][]byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, idx := range indices {
		copy(out[i], d.regs[idx])
	}

	return nil
}

func (d *demoTarget) WriteRegisters(ctx context.Context, indices []int, in [][]byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, idx := range indices {
		copy(d.regs[idx], in[i])
	}

	return nil
}

func (d *demoTarget) SetTracepoint(ctx context.Context, kind gdbstub.TracepointKind, addr uint64, length int) error {
	return gdbstub.StatusNotSupported
}

func (d *demoTarget) ClearTracepoint(ctx context.Context, kind gdbstub.TracepointKind, addr uint64) error {
	return gdbstub.StatusNotSupported
}

func (d *demoTarget) SupportsRestart() bool { return true }
func (d *demoTarget) SupportsKill() bool    { return true }

// CustomCommands returns nil: this demo target keeps no monitor commands of
// its own, relying entirely on config.Watcher's table wired in by main via
// gdbstub.WithMonitorCommands.
func (d *demoTarget) CustomCommands() []gdbstub.CustomCommand { return nil }
