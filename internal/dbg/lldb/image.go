package lldb

import (
	"debug/elf"
	"fmt"
)

const pageSize = 0x1000

// layout is the address range an ELF image asks to be mapped at.
type layout struct {
	preferred uint64
	size      uint64
	entry     uint64
}

func layoutOf(f *elf.File) (layout, error) {
	lo, hi := ^uint64(0), uint64(0)
	for _, p := range f.Progs {
		if p.Type != elf.PT_LOAD {
			continue
		}
		lo = min(lo, p.Vaddr&^(pageSize-1))
		hi = max(hi, (p.Vaddr+p.Memsz+pageSize-1)&^(pageSize-1))
	}
	if hi == 0 {
		return layout{}, fmt.Errorf("no loadable segments")
	}
	return layout{preferred: lo, size: hi - lo, entry: f.Entry}, nil
}
