package proc

import (
	"debug/dwarf"
	"io"
	"path/filepath"
	"strings"
)

type compileUnit struct {
	name string

	files []*fileInfo
	funcs []*Func
	vars  []*Var
	types []string
}

type fileInfo struct {
	name  string
	lines map[int]uint64
}

func newCompileUnit() *compileUnit {
	return &compileUnit{}
}

func (cu *compileUnit) loadLines(d *dwarf.Data, e *dwarf.Entry) error {
	r, err := d.LineReader(e)
	if err != nil {
		return err
	}
	if r == nil {
		return nil
	}

	files := make(map[string]*fileInfo)

	for {
		var l dwarf.LineEntry
		err := r.Next(&l)
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if l.File == nil {
			continue
		}

		f, ok := files[l.File.Name]
		if ok {
			if _, seen := f.lines[l.Line]; !seen {
				f.lines[l.Line] = l.Address
			}
		} else {
			files[l.File.Name] = &fileInfo{
				name: l.File.Name,
				lines: map[int]uint64{
					l.Line: l.Address,
				},
			}
		}
	}
	for _, f := range files {
		cu.files = append(cu.files, f)
	}
	return nil
}

// indexFiles registers every path suffix of each file, so that "main.c",
// "src/main.c" and "/home/u/src/main.c" all find /home/u/src/main.c.
func indexFiles(m map[string][]*fileInfo, files []*fileInfo) {
	sep := string(filepath.Separator)
	for _, f := range files {
		name := filepath.Join(sep, f.name)
		pos := len(name)
		for {
			pos = strings.LastIndex(name[:pos], sep)
			if pos == -1 {
				break
			}
			key := name[pos:]
			m[key] = append(m[key], f)
		}
	}
}

func (cu *compileUnit) loadDebugInfo(d *dwarf.Data, r *dwarf.Reader) error {
	depth := 0

	for {
		e, err := r.Next()
		if err != nil {
			return err
		}
		if e == nil {
			break
		}

		switch e.Tag {
		case 0:
			if depth == 0 {
				return nil
			}
			depth--
		case dwarf.TagSubprogram:
			f := newFunc(d, e)
			if f != nil {
				cu.funcs = append(cu.funcs, f)
			}
			if !e.Children {
				continue
			}
			if f == nil {
				r.SkipChildren()
				continue
			}
			if err := loadLocals(d, r, f); err != nil {
				return err
			}
		case dwarf.TagVariable:
			if name, ok := entryName(d, e); ok && !isDeclaration(e) {
				cu.vars = append(cu.vars, newVar(name, e, 0))
			}
			if e.Children {
				r.SkipChildren()
			}
		case dwarf.TagBaseType, dwarf.TagTypedef, dwarf.TagStructType,
			dwarf.TagUnionType, dwarf.TagEnumerationType, dwarf.TagClassType:
			if name, ok := e.Val(dwarf.AttrName).(string); ok && !isDeclaration(e) {
				cu.types = append(cu.types, name)
			}
			if e.Children {
				r.SkipChildren()
			}
		default:
			if e.Children {
				depth++
			}
		}
	}
	return nil
}

// loadLocals reads the children of a subprogram entry. Variables declared in
// a lexical block become valid at the block's low pc.
func loadLocals(d *dwarf.Data, r *dwarf.Reader, f *Func) error {
	scopes := []uint64{f.lowpc}
	for len(scopes) > 0 {
		e, err := r.Next()
		if err != nil {
			return err
		}
		if e == nil {
			return nil
		}

		switch e.Tag {
		case 0:
			scopes = scopes[:len(scopes)-1]
		case dwarf.TagFormalParameter, dwarf.TagVariable:
			if name, ok := entryName(d, e); ok {
				f.locals = append(f.locals, newVar(name, e, scopes[len(scopes)-1]))
			}
			if e.Children {
				r.SkipChildren()
			}
		case dwarf.TagLexDwarfBlock:
			if !e.Children {
				continue
			}
			low := scopes[len(scopes)-1]
			if ranges, _ := d.Ranges(e); len(ranges) > 0 {
				low = ranges[0][0]
			}
			scopes = append(scopes, low)
		default:
			// inlined subroutines and nested declarations
			if e.Children {
				r.SkipChildren()
			}
		}
	}
	return nil
}

// isDeclaration reports whether e only declares an entity defined elsewhere,
// such as an extern variable or a forward declared struct.
func isDeclaration(e *dwarf.Entry) bool {
	decl, _ := e.Val(dwarf.AttrDeclaration).(bool)
	return decl
}
