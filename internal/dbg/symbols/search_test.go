package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gni.dev/dbg/internal/dbg/proc"
)

func newSearchContext(t *testing.T) *Context {
	c, _, _ := newTestContext(t)
	_, err := c.LoadModule(LoadedModuleEntry{Name: "/lib/mod.so.1", Base: 0x8000, Size: 0x1000}, 0, proc.NewSymTable(
		[]*proc.Func{
			proc.NewFunc("github.com/x/pkg.Get", 0x100, 0x110),
			proc.NewFunc("_ZN3foo3barEv", 0x200, 0x210),
		}, nil, nil))
	require.NoError(t, err)
	return c
}

func matchNames(res *SearchResult) []string {
	var names []string
	for _, m := range res.Matches {
		names = append(names, m.String())
	}
	return names
}

var findSymbolTests = []struct {
	pattern string
	want    []string
}{
	{pattern: "modb!get_*", want: []string{"modb!get_b"}},
	{pattern: "liba!get_*", want: []string{"liba!get_a"}},
	{pattern: "get_*", want: []string{"liba!get_a", "modb!get_b"}},
	{pattern: "mod!get_*"},
	{pattern: "mod!*pkg.G?t", want: []string{"mod!github.com/x/pkg.Get"}},
	{pattern: "GET_*"},
	{pattern: "*_t", want: []string{"liba!a_t", "modb!b_t"}},
	{pattern: "a_count", want: []string{"liba!a_count"}},
	{pattern: "liba![!g]et_*", want: []string{"liba!set_a"}},
	{pattern: "[!gs]*", want: []string{"liba!a_count", "liba!a_t", "modb!foo", "modb!b_t", "mod!_ZN3foo3barEv"}},
	{pattern: "{foo,set_a}", want: []string{"liba!set_a", "modb!foo"}},
	{pattern: "liba!*", want: []string{"liba!get_a", "liba!set_a", "liba!a_count", "liba!a_t"}},
}

func TestFindSymbol(t *testing.T) {
	c := newSearchContext(t)

	for i, test := range findSymbolTests {
		res, err := c.FindSymbol(test.pattern)
		require.NoError(t, err, "test #%d", i)
		assert.Equal(t, test.want, matchNames(res), "test #%d", i)
		assert.Equal(t, len(test.want) == 0, res.Empty(), "test #%d", i)
		assert.Equal(t, len(test.want) > 1, res.Ambiguous(), "test #%d", i)
	}
}

func TestFindSymbolModuleRestricted(t *testing.T) {
	c := newSearchContext(t)

	res, err := c.FindSymbol("modb!*")
	require.NoError(t, err)
	require.NotEmpty(t, res.Matches)
	for _, m := range res.Matches {
		assert.Equal(t, "modb", m.Module.Name())
	}
}

func TestFindSymbolKinds(t *testing.T) {
	c := newSearchContext(t)

	res, err := c.FindSymbol("modb!foo")
	require.NoError(t, err)
	m, ok := res.Unique()
	require.True(t, ok)
	assert.Equal(t, KindFunction, m.Kind)
	assert.Equal(t, "function", m.Kind.String())
	require.NotNil(t, m.Func)
	addr, ok := m.Address()
	require.True(t, ok)
	assert.Equal(t, uint64(0x5100), addr)

	res, err = c.FindSymbol("a_count")
	require.NoError(t, err)
	m, ok = res.Unique()
	require.True(t, ok)
	assert.Equal(t, KindVariable, m.Kind)
	assert.NotNil(t, m.Var)
	_, ok = m.Address()
	assert.False(t, ok)

	res, err = c.FindSymbol("b_t")
	require.NoError(t, err)
	m, ok = res.Unique()
	require.True(t, ok)
	assert.Equal(t, KindType, m.Kind)
	assert.Equal(t, "type", m.Kind.String())

	res, err = c.FindSymbol("get_*")
	require.NoError(t, err)
	_, ok = res.Unique()
	assert.False(t, ok)
}

func TestFindSymbolDemangled(t *testing.T) {
	c := newSearchContext(t)

	res, err := c.FindSymbol("mod!_ZN3foo*")
	require.NoError(t, err)
	m, ok := res.Unique()
	require.True(t, ok)
	assert.Equal(t, "foo::bar()", m.DisplayName())

	res, err = c.FindSymbol("liba!get_a")
	require.NoError(t, err)
	m, ok = res.Unique()
	require.True(t, ok)
	assert.Equal(t, "get_a", m.DisplayName())
}

func TestFindSymbolErrors(t *testing.T) {
	c := newSearchContext(t)

	_, err := c.FindSymbol("nosuch!foo")
	assert.ErrorIs(t, err, ErrModuleNotFound)

	// a module qualifier is compared in full
	_, err = c.FindSymbol("mo!foo")
	assert.ErrorIs(t, err, ErrModuleNotFound)

	for _, pattern := range []string{"", "!foo", "modb!", "a!b!c", "foo[", "a{b", "m?!x"} {
		_, err := c.FindSymbol(pattern)
		assert.ErrorIs(t, err, ErrInvalidPattern, "pattern %q", pattern)
	}
}

var parsePatternTests = []struct {
	input  string
	module string
	glob   string
	fail   bool
}{
	{input: "main", glob: "main"},
	{input: "kernel!Ke*", module: "kernel", glob: "Ke*"},
	{input: "a.out!main.*", module: "a.out", glob: "main.*"},
	{input: "", fail: true},
	{input: "!", fail: true},
	{input: "!x", fail: true},
	{input: "m!", fail: true},
	{input: "m!x!y", fail: true},
	{input: "m![ab", fail: true},
	{input: "[!a]*", glob: "[!a]*"},
	{input: "moda![!g]et_*", module: "moda", glob: "[!g]et_*"},
	{input: `m!a\!b`, module: "m", glob: `a\!b`},
	{input: "a{b", fail: true},
	{input: "a}b", fail: true},
	{input: "m!{x,y", fail: true},
	{input: "mod*!foo", fail: true},
	{input: "[ab]!foo", fail: true},
	{input: "m{a,b}!foo", fail: true},
}

func TestParsePattern(t *testing.T) {
	for i, test := range parsePatternTests {
		p, err := ParsePattern(test.input)
		if test.fail {
			assert.ErrorIs(t, err, ErrInvalidPattern, "test #%d", i)
			continue
		}
		require.NoError(t, err, "test #%d", i)
		assert.Equal(t, test.module, p.Module, "test #%d", i)
		assert.Equal(t, test.glob, p.Glob, "test #%d", i)
		assert.Equal(t, test.input, p.String(), "test #%d", i)
	}
}

var kindTests = []struct {
	kind SymbolKind
	want string
}{
	{kind: KindFunction, want: "function"},
	{kind: KindVariable, want: "variable"},
	{kind: KindType, want: "type"},
	{kind: SymbolKind(3), want: "unknown"},
	{kind: SymbolKind(-1), want: "unknown"},
}

func TestSymbolKindString(t *testing.T) {
	for i, test := range kindTests {
		assert.Equal(t, test.want, test.kind.String(), "test #%d", i)
	}
}

func TestPatternZeroValue(t *testing.T) {
	var p Pattern
	assert.False(t, p.Match("anything"))
}
