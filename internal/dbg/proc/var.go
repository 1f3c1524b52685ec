package proc

import "debug/dwarf"

// Var is a data symbol: a global, a local variable or a parameter.
type Var struct {
	name  string
	minPC uint64
	loc   any
	param bool
}

// NewVar returns a local variable that becomes valid at minPC. The location
// is carried along untouched.
func NewVar(name string, minPC uint64, loc any) *Var {
	return &Var{name: name, minPC: minPC, loc: loc}
}

// NewParam is like NewVar for a function parameter.
func NewParam(name string, minPC uint64, loc any) *Var {
	return &Var{name: name, minPC: minPC, loc: loc, param: true}
}

func newVar(name string, e *dwarf.Entry, scope uint64) *Var {
	minPC := scope
	if off, ok := e.Val(dwarf.AttrStartScope).(int64); ok && off > 0 {
		minPC += uint64(off)
	}
	return &Var{
		name:  name,
		minPC: minPC,
		loc:   e.Val(dwarf.AttrLocation),
		param: e.Tag == dwarf.TagFormalParameter,
	}
}

// entryName returns the name of e. A defining entry that completes an
// earlier declaration carries no name itself; the declaration's is used.
func entryName(d *dwarf.Data, e *dwarf.Entry) (string, bool) {
	if name, ok := e.Val(dwarf.AttrName).(string); ok {
		return name, true
	}
	off, ok := e.Val(dwarf.AttrSpecification).(dwarf.Offset)
	if !ok {
		return "", false
	}
	r := d.Reader()
	r.Seek(off)
	decl, err := r.Next()
	if err != nil || decl == nil {
		return "", false
	}
	name, ok := decl.Val(dwarf.AttrName).(string)
	return name, ok
}

func (v *Var) Name() string {
	return v.name
}

// MinPC is the lowest execution address at which this version of the
// variable is valid.
func (v *Var) MinPC() uint64 {
	return v.minPC
}

// Location returns the raw location description. For DWARF images this is the
// DW_AT_location value: an expression ([]byte) or a location list offset.
func (v *Var) Location() any {
	return v.loc
}

func (v *Var) IsParam() bool {
	return v.param
}
