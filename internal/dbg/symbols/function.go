package symbols

import (
	"fmt"

	"gni.dev/dbg/internal/dbg/proc"
)

// Frame is the function context of an execution address.
type Frame struct {
	Module *Module
	Func   *proc.Func
	// Address is the execution address debased into the module's symbol
	// table space.
	Address uint64
}

// Start returns the function's first instruction in raw target space.
func (f Frame) Start() uint64 {
	return f.Module.Rebase(f.Func.LowPC())
}

// Offset returns the distance of the execution address from the start of
// the function.
func (f Frame) Offset() uint64 {
	return f.Address - f.Func.LowPC()
}

// CurrentFunction resolves the function containing the instruction pointer.
func (c *Context) CurrentFunction(ip uint64) (Frame, bool) {
	if c.frames != nil {
		if f, ok := c.frames.Get(ip); ok {
			return f, true
		}
	}

	m, addr, ok := c.FindModuleByAddress(ip)
	if !ok {
		return Frame{}, false
	}
	fn, ok := m.Symbols().FuncForPC(addr)
	if !ok {
		return Frame{}, false
	}

	f := Frame{Module: m, Func: fn, Address: addr}
	if c.frames != nil {
		c.frames.Add(ip, f)
	}
	return f, true
}

// FunctionStartAddress returns the raw address of the first instruction of
// the function containing addr.
func (c *Context) FunctionStartAddress(addr uint64) (uint64, bool) {
	f, ok := c.CurrentFunction(addr)
	if !ok {
		return 0, false
	}
	return f.Start(), true
}

// Describe formats addr as module!function+offset, falling back to
// module+offset and finally to the bare address.
func (c *Context) Describe(addr uint64) string {
	if f, ok := c.CurrentFunction(addr); ok {
		if off := f.Offset(); off != 0 {
			return fmt.Sprintf("%s!%s+%#x", f.Module.Name(), f.Func.Name(), off)
		}
		return fmt.Sprintf("%s!%s", f.Module.Name(), f.Func.Name())
	}
	if m, _, ok := c.FindModuleByAddress(addr); ok {
		return fmt.Sprintf("%s+%#x", m.Name(), addr-m.LoadBase())
	}
	return fmt.Sprintf("%#x", addr)
}
