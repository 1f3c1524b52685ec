package symbols

import "errors"

var (
	ErrModuleNotFound = errors.New("module not found")
	ErrModuleOverlap  = errors.New("module overlaps a loaded module")
	ErrEmptyModule    = errors.New("module has no address range")
	ErrModuleRange    = errors.New("module extends past the end of the address space")
	ErrInvalidPattern = errors.New("invalid search pattern")
)
