package dbg

import (
	"gni.dev/dbg/internal/dbg/proc"
	"gni.dev/dbg/internal/dbg/symbols"
)

// Image is the parsed symbol information of a binary.
type Image struct {
	Symbols *proc.SymTable
	// PreferredBase is the address the image was linked to run at.
	PreferredBase uint64
}

type Target interface {
	// Run the program with the given arguments.
	Run(program string, args []string) error
	// Detach from the running program.
	Detach() error
	// LoadedModules lists the modules currently mapped in the program.
	LoadedModules() ([]symbols.LoadedModuleEntry, error)
	// ReadImage reads the symbols of the binary at path on the target.
	ReadImage(path string) (*Image, error)
}
