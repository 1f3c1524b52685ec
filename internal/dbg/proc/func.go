package proc

import "debug/dwarf"

// Func is a function symbol. Addresses are in the image's preferred-base
// space.
type Func struct {
	name          string
	lowpc, highpc uint64
	locals        []*Var
}

// NewFunc returns a function covering [lowpc, highpc) with the given locals
// and parameters in declaration order.
func NewFunc(name string, lowpc, highpc uint64, locals ...*Var) *Func {
	return &Func{
		name:   name,
		lowpc:  lowpc,
		highpc: highpc,
		locals: locals,
	}
}

func newFunc(d *dwarf.Data, e *dwarf.Entry) *Func {
	name, ok := e.Val(dwarf.AttrName).(string)
	ranges, _ := d.Ranges(e)
	if ok && len(ranges) > 0 {
		return &Func{
			name:   name,
			lowpc:  ranges[0][0],
			highpc: ranges[0][1],
		}
	}
	return nil
}

func (f *Func) Name() string {
	return f.name
}

func (f *Func) LowPC() uint64 {
	return f.lowpc
}

func (f *Func) HighPC() uint64 {
	return f.highpc
}

// Contains reports whether pc lies in [LowPC, HighPC).
func (f *Func) Contains(pc uint64) bool {
	return pc >= f.lowpc && pc < f.highpc
}

// Locals returns the local variables and parameters of the function. A name
// may appear more than once, one entry per live range.
func (f *Func) Locals() []*Var {
	return f.locals
}
