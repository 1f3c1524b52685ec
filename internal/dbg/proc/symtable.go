package proc

import (
	"debug/dwarf"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// SymTable is the symbol table of one image. It is immutable once loaded.
type SymTable struct {
	funcs []*Func
	vars  []*Var
	types []string

	cus     []*compileUnit
	fileIdx map[string][]*fileInfo
}

// ErrNoLine reports a file or line without code in the table.
var ErrNoLine = errors.New("no code at location")

type ErrAmbiguous struct {
	Location   string
	Candidates []string
}

func (a *ErrAmbiguous) Error() string {
	return fmt.Sprintf("Location %q ambiguous: %s", a.Location, strings.Join(a.Candidates, ", "))
}

// LineEntry maps a source line to the address of its first instruction.
type LineEntry struct {
	File string
	Line int
	PC   uint64
}

// NewSymTable builds a table from already parsed symbols. Functions are
// ordered by start address; the input slice is not modified. Duplicate type
// names are dropped and only the first address of a line is kept.
func NewSymTable(funcs []*Func, vars []*Var, types []string, lines ...LineEntry) *SymTable {
	s := &SymTable{
		funcs: append([]*Func(nil), funcs...),
		vars:  vars,
		types: uniqueNames(types),
	}
	s.sortFuncs()

	var files []*fileInfo
	byName := make(map[string]*fileInfo)
	for _, l := range lines {
		f, ok := byName[l.File]
		if !ok {
			f = &fileInfo{name: l.File, lines: make(map[int]uint64)}
			byName[l.File] = f
			files = append(files, f)
		}
		if _, seen := f.lines[l.Line]; !seen {
			f.lines[l.Line] = l.PC
		}
	}
	s.fileIdx = make(map[string][]*fileInfo)
	indexFiles(s.fileIdx, files)
	return s
}

// LoadImage loads the debug information from the given DWARF data.
func (s *SymTable) LoadImage(d *dwarf.Data) error {
	r := d.Reader()
	for {
		e, err := r.Next()
		if err != nil {
			return err
		}
		if e == nil {
			break
		}
		switch e.Tag {
		case dwarf.TagCompileUnit:
			cu := newCompileUnit()
			cu.name, _ = e.Val(dwarf.AttrName).(string)
			s.cus = append(s.cus, cu)

			if err := cu.loadLines(d, e); err != nil {
				return err
			}

			if e.Children {
				if err := cu.loadDebugInfo(d, r); err != nil {
					return err
				}
			}
		default:
			r.SkipChildren()
		}
	}
	s.fileIdx = make(map[string][]*fileInfo)
	for _, cu := range s.cus {
		indexFiles(s.fileIdx, cu.files)
		s.funcs = append(s.funcs, cu.funcs...)
		s.vars = append(s.vars, cu.vars...)
		s.types = append(s.types, cu.types...)
	}
	s.types = uniqueNames(s.types)
	s.sortFuncs()
	return nil
}

func (s *SymTable) sortFuncs() {
	sort.SliceStable(s.funcs, func(i, j int) bool {
		return s.funcs[i].lowpc < s.funcs[j].lowpc
	})
}

// Funcs returns the functions ordered by start address.
func (s *SymTable) Funcs() []*Func {
	return s.funcs
}

// Vars returns the global variables.
func (s *SymTable) Vars() []*Var {
	return s.vars
}

// uniqueNames drops repeated names, keeping the first occurrence. Each
// compile unit describes the types it uses, so the same name recurs.
func uniqueNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := names[:0:0]
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

// Types returns the names of the types defined in the image.
func (s *SymTable) Types() []string {
	return s.types
}

// FuncForPC returns the function with the greatest start address not above
// pc, provided pc is also below that function's end. An address that falls
// between two functions resolves to nothing.
func (s *SymTable) FuncForPC(pc uint64) (*Func, bool) {
	i := sort.Search(len(s.funcs), func(i int) bool {
		return s.funcs[i].lowpc > pc
	})
	if i == 0 {
		return nil, false
	}
	f := s.funcs[i-1]
	if pc >= f.highpc {
		return nil, false
	}
	return f, true
}

// LineToPC returns the PC for the given file and line.
func (s *SymTable) LineToPC(file string, line int) (uint64, string, error) {
	normalized := filepath.Join(string(filepath.Separator), file)
	files, ok := s.fileIdx[normalized]
	if !ok {
		return 0, "", fmt.Errorf("file %s: %w", file, ErrNoLine)
	}

	if len(files) > 1 {
		var candidates []string
		for _, f := range files {
			candidates = append(candidates, f.name)
		}
		return 0, "", &ErrAmbiguous{
			Location:   file,
			Candidates: candidates,
		}
	}

	if pc, ok := files[0].lines[line]; ok {
		return pc, files[0].name, nil
	}
	return 0, "", fmt.Errorf("%s:%d: %w", file, line, ErrNoLine)
}
