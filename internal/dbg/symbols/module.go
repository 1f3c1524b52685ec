package symbols

import (
	"fmt"

	"gni.dev/dbg/internal/dbg/proc"
)

// LoadedModuleEntry is the target's description of a loaded module. It is
// only used to find or create a Module.
type LoadedModuleEntry struct {
	Name string
	Base uint64
	Size uint64
}

func (e LoadedModuleEntry) String() string {
	return fmt.Sprintf("%s [%#x, %#x)", e.Name, e.Base, e.Base+e.Size)
}

// Module is an image loaded into the target. Its symbol table is addressed in
// preferred-base space; the module translates between that space and the
// target's addresses.
type Module struct {
	path          string
	name          string
	loadBase      uint64
	preferredBase uint64
	size          uint64
	syms          *proc.SymTable
}

func newModule(entry LoadedModuleEntry, preferredBase uint64, syms *proc.SymTable) *Module {
	if syms == nil {
		syms = proc.NewSymTable(nil, nil, nil)
	}
	return &Module{
		path:          entry.Name,
		name:          Friendly(entry.Name),
		loadBase:      entry.Base,
		preferredBase: preferredBase,
		size:          entry.Size,
		syms:          syms,
	}
}

// Name returns the friendly name used in module-qualified lookups.
func (m *Module) Name() string {
	return m.name
}

// Path returns the full name the target reported for the module.
func (m *Module) Path() string {
	return m.path
}

func (m *Module) LoadBase() uint64 {
	return m.loadBase
}

func (m *Module) PreferredBase() uint64 {
	return m.preferredBase
}

func (m *Module) Size() uint64 {
	return m.size
}

// End returns the first address past the module. It is 0 for a module that
// ends at the top of the address space.
func (m *Module) End() uint64 {
	return m.loadBase + m.size
}

func (m *Module) Symbols() *proc.SymTable {
	return m.syms
}

// Contains reports whether the raw target address lies in [LoadBase, End).
func (m *Module) Contains(addr uint64) bool {
	return addr >= m.loadBase && addr-m.loadBase < m.size
}

// bias is load base minus preferred base, in modular arithmetic so a module
// loaded below its preferred base works too.
func (m *Module) bias() uint64 {
	return m.loadBase - m.preferredBase
}

// Debase translates a raw target address into symbol table space.
func (m *Module) Debase(addr uint64) uint64 {
	return addr - m.bias()
}

// Rebase translates a symbol table address into raw target space.
func (m *Module) Rebase(addr uint64) uint64 {
	return addr + m.bias()
}

// overlaps compares offsets rather than end addresses, which wrap to 0 at the
// top of the address space.
func (m *Module) overlaps(base, size uint64) bool {
	return base-m.loadBase < m.size || m.loadBase-base < size
}

func (m *Module) String() string {
	return fmt.Sprintf("%s [%#x, %#x)", m.name, m.loadBase, m.End())
}
