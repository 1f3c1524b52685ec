package symbols

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// Pattern is a parsed symbol search string of the form [module!]glob.
type Pattern struct {
	// Module restricts the search to one module. Empty means all modules.
	Module string
	// Glob is the symbol name pattern: * and ? wildcards, [a-z] classes and
	// {a,b} alternatives. Wildcards match across '.' and '/'.
	Glob string

	g glob.Glob
}

// ParsePattern splits s into an optional module qualifier and a glob, and
// compiles the glob. A '!' outside a character class separates the module,
// so at most one may appear; "[!a]*" is a plain glob. Module names are
// literal and may not contain glob metacharacters.
func ParsePattern(s string) (Pattern, error) {
	if s == "" {
		return Pattern{}, fmt.Errorf("%w: empty pattern", ErrInvalidPattern)
	}

	var p Pattern
	rest := s
	if i := separator(s); i != -1 {
		p.Module, rest = s[:i], s[i+1:]
		if p.Module == "" {
			return Pattern{}, fmt.Errorf("%w: %q: missing module name before '!'", ErrInvalidPattern, s)
		}
		if strings.ContainsAny(p.Module, globChars) {
			return Pattern{}, fmt.Errorf("%w: %q: wildcard in module name", ErrInvalidPattern, s)
		}
		if separator(rest) != -1 {
			return Pattern{}, fmt.Errorf("%w: %q: more than one '!'", ErrInvalidPattern, s)
		}
	}
	if rest == "" {
		return Pattern{}, fmt.Errorf("%w: %q: missing symbol name", ErrInvalidPattern, s)
	}
	if !balanced(rest) {
		return Pattern{}, fmt.Errorf("%w: %q: unbalanced brackets", ErrInvalidPattern, s)
	}

	g, err := glob.Compile(rest)
	if err != nil {
		return Pattern{}, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, s, err)
	}
	p.Glob = rest
	p.g = g
	return p, nil
}

const globChars = "*?[]{}\\"

// separator returns the index of the first '!' outside a character class.
func separator(s string) int {
	class := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '[':
			class = true
		case ']':
			class = false
		case '!':
			if !class {
				return i
			}
		}
	}
	return -1
}

// balanced reports whether every '[' and '{' in the glob is closed.
func balanced(s string) bool {
	braces, class := 0, false
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\\':
			i++
		case class:
			class = c != ']'
		case c == '[':
			class = true
		case c == '{':
			braces++
		case c == '}':
			if braces == 0 {
				return false
			}
			braces--
		}
	}
	return braces == 0 && !class
}

// Match reports whether name matches the glob. Matching is case sensitive.
func (p Pattern) Match(name string) bool {
	return p.g != nil && p.g.Match(name)
}

func (p Pattern) String() string {
	if p.Module == "" {
		return p.Glob
	}
	return p.Module + "!" + p.Glob
}
