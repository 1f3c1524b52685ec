package symbols

import "gni.dev/dbg/internal/dbg/proc"

// GetLocal returns the version of the named local or parameter that is live
// at addr: among the symbols with that exact name, the one whose minimum
// address is the greatest not exceeding addr. addr is in the function's
// (debased) address space. Names are case sensitive.
func GetLocal(fn *proc.Func, name string, addr uint64) (*proc.Var, bool) {
	var best *proc.Var
	for _, v := range fn.Locals() {
		if v.Name() != name || v.MinPC() > addr {
			continue
		}
		if best == nil || v.MinPC() > best.MinPC() {
			best = v
		}
	}
	return best, best != nil
}

// FindLocal resolves a local variable or parameter in the function executing
// at the frame's instruction pointer.
func (c *Context) FindLocal(name string, ip uint64) (*proc.Var, bool) {
	f, ok := c.CurrentFunction(ip)
	if !ok {
		return nil, false
	}
	return GetLocal(f.Func, name, f.Address)
}
