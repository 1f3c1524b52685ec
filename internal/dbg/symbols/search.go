package symbols

import (
	"fmt"

	"github.com/ianlancetaylor/demangle"

	"gni.dev/dbg/internal/dbg/proc"
)

type SymbolKind int

const (
	KindFunction SymbolKind = iota
	KindVariable
	KindType
)

func (k SymbolKind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindVariable:
		return "variable"
	case KindType:
		return "type"
	default:
		return "unknown"
	}
}

// Match is one symbol found by FindSymbol.
type Match struct {
	Module *Module
	Kind   SymbolKind
	Name   string
	// Func is set for KindFunction, Var for KindVariable.
	Func *proc.Func
	Var  *proc.Var
}

// Address returns the raw target address of a function match.
func (m Match) Address() (uint64, bool) {
	if m.Func == nil {
		return 0, false
	}
	return m.Module.Rebase(m.Func.LowPC()), true
}

// DisplayName returns the demangled name, or the name itself when it is not
// a mangled C++ or Rust symbol.
func (m Match) DisplayName() string {
	return demangle.Filter(m.Name, demangle.NoClones)
}

func (m Match) String() string {
	return m.Module.Name() + "!" + m.Name
}

// SearchResult accumulates every symbol matching a search.
type SearchResult struct {
	Matches []Match
}

func (r *SearchResult) Empty() bool {
	return len(r.Matches) == 0
}

// Ambiguous reports whether more than one symbol matched.
func (r *SearchResult) Ambiguous() bool {
	return len(r.Matches) > 1
}

// Unique returns the match when exactly one symbol matched.
func (r *SearchResult) Unique() (Match, bool) {
	if len(r.Matches) != 1 {
		return Match{}, false
	}
	return r.Matches[0], true
}

// FindSymbol searches function, variable and type names for the pattern
// "[module!]glob". Finding nothing is not an error; a malformed pattern
// (ErrInvalidPattern) or an unknown module (ErrModuleNotFound) is.
func (c *Context) FindSymbol(pattern string) (*SearchResult, error) {
	p, err := ParsePattern(pattern)
	if err != nil {
		return nil, err
	}

	modules := c.modules
	if p.Module != "" {
		m, ok := c.FindModuleByName(p.Module, 0)
		if !ok {
			return nil, fmt.Errorf("%q: %w", p.Module, ErrModuleNotFound)
		}
		modules = []*Module{m}
	}

	res := &SearchResult{}
	for _, m := range modules {
		res.Matches = appendMatches(res.Matches, m, p)
	}

	c.logger.Debug().
		Str("pattern", p.String()).
		Int("modules", len(modules)).
		Int("matches", len(res.Matches)).
		Msg("Symbol search")
	return res, nil
}

func appendMatches(matches []Match, m *Module, p Pattern) []Match {
	syms := m.Symbols()
	for _, f := range syms.Funcs() {
		if p.Match(f.Name()) {
			matches = append(matches, Match{Module: m, Kind: KindFunction, Name: f.Name(), Func: f})
		}
	}
	for _, v := range syms.Vars() {
		if p.Match(v.Name()) {
			matches = append(matches, Match{Module: m, Kind: KindVariable, Name: v.Name(), Var: v})
		}
	}
	for _, t := range syms.Types() {
		if p.Match(t) {
			matches = append(matches, Match{Module: m, Kind: KindType, Name: t})
		}
	}
	return matches
}
