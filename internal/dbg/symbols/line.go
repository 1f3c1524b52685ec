package symbols

import (
	"errors"
	"fmt"

	"gni.dev/dbg/internal/dbg/proc"
)

// LineAddress returns the raw address of the first instruction generated for
// file:line together with the module holding it. file may be any trailing
// part of the path recorded in the debug information. A location found in
// more than one file or module yields a *proc.ErrAmbiguous.
func (c *Context) LineAddress(file string, line int) (uint64, *Module, error) {
	var (
		found      *Module
		pc         uint64
		candidates []string
	)
	for _, m := range c.modules {
		addr, name, err := m.Symbols().LineToPC(file, line)
		if errors.Is(err, proc.ErrNoLine) {
			continue
		}
		if err != nil {
			return 0, nil, fmt.Errorf("%s: %w", m.Name(), err)
		}
		candidates = append(candidates, m.Name()+"!"+name)
		if found == nil {
			found, pc = m, addr
		}
	}

	location := fmt.Sprintf("%s:%d", file, line)
	switch len(candidates) {
	case 0:
		return 0, nil, fmt.Errorf("%s: %w", location, proc.ErrNoLine)
	case 1:
		return found.Rebase(pc), found, nil
	default:
		return 0, nil, &proc.ErrAmbiguous{Location: location, Candidates: candidates}
	}
}
