package term

import (
	"bytes"
	"fmt"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gni.dev/dbg/internal/dbg/debugger"
	"gni.dev/dbg/internal/dbg/proc"
	"gni.dev/dbg/internal/dbg/symbols"
)

func newTestCommands(t *testing.T) (*Commands, *bytes.Buffer) {
	d := debugger.New(zerolog.Nop())
	table := proc.NewSymTable([]*proc.Func{
		proc.NewFunc("main.handle", 0x10100, 0x10200,
			proc.NewParam("req", 0x10100, nil),
			proc.NewVar("n", 0x10120, nil),
			proc.NewVar("n", 0x10180, nil),
		),
		proc.NewFunc("_ZN3foo3barEv", 0x10300, 0x10340),
	}, []*proc.Var{
		proc.NewVar("main.count", 0, nil),
	}, []string{"main.Config"},
		proc.LineEntry{File: "/src/server/handle.go", Line: 12, PC: 0x10110},
		proc.LineEntry{File: "/src/server/handle.go", Line: 20, PC: 0x10300},
		proc.LineEntry{File: "/src/client/handle.go", Line: 5, PC: 0x10320},
	)

	entry := symbols.LoadedModuleEntry{Name: "/opt/app/server", Base: 0x400000, Size: 0x2000}
	_, err := d.Symbols().LoadModule(entry, 0x10000, table)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	return DebuggerCommands(d, out), out
}

var commandTests = []struct {
	line     string
	want     string
	hasError bool
}{
	{line: "ln 0x400110", want: "server!main.handle+0x10\n"},
	{line: "ln 0x400100", want: "server!main.handle\n"},
	{line: "ln 0x400500", want: "server+0x500\n"},
	{line: "ln 16", want: "0x10\n"},
	{line: "ln zz", hasError: true},
	{line: "ln", hasError: true},
	{line: "uf 0x400150", want: "server!main.handle:\n0x0000000000400100\n"},
	{line: "uf 0x400250", hasError: true},
	{line: "ln server/handle.go:12", want: "server!main.handle+0x10\n"},
	{line: "ln server/handle.go:20", want: "server!_ZN3foo3barEv\n"},
	{line: "ln /src/client/handle.go:5", want: "server!_ZN3foo3barEv+0x20\n"},
	{line: "uf server/handle.go:12", want: "server!main.handle:\n0x0000000000400100\n"},
	{line: "ln server/handle.go:13", hasError: true},
	{line: "ln handle.go:5", hasError: true}, // two files named handle.go
	{line: "ln other.go:12", hasError: true},
	{line: "ln handle.go:x", hasError: true},
	{
		line: "x main.*",
		want: "0x0000000000400100 server!main.handle\n" +
			fmt.Sprintf("%-18s server!main.count\n", "<variable>") +
			fmt.Sprintf("%-18s server!main.Config\n", "<type>"),
	},
	{line: "x server!_ZN*", want: "0x0000000000400300 server!_ZN3foo3barEv\n"},
	{line: "x nothing*", want: "no matches\n"},
	{line: "x other!*", hasError: true},
	{line: "x server!", hasError: true},
	{line: "x", hasError: true},
	{line: "dv n 0x400150", want: "local n (live from 0x0000000000400120)\n"},
	{line: "dv n 0x400190", want: "local n (live from 0x0000000000400180)\n"},
	{line: "dv req 0x400110", want: "param req (live from 0x0000000000400100)\n"},
	{line: "dv n 0x400110", hasError: true},
	{line: "dv N 0x400150", hasError: true},
	{line: "dv n 0x500000", hasError: true},
	{line: "dv n", hasError: true},
	{line: "run", hasError: true},
	{line: "nope", hasError: true},
	{line: "   ", hasError: true},
}

func TestCommands(t *testing.T) {
	for i, test := range commandTests {
		c, out := newTestCommands(t)
		err := c.Process(test.line)
		if test.hasError {
			assert.Error(t, err, "test #%d", i)
			continue
		}
		assert.NoError(t, err, "test #%d", i)
		assert.Equal(t, test.want, out.String(), "test #%d", i)
	}
}

func TestCommandsDemangle(t *testing.T) {
	c, out := newTestCommands(t)
	c.demangle = true
	require.NoError(t, c.Process("x *bar*"))
	assert.Equal(t, "0x0000000000400300 server!foo::bar()\n", out.String())
}

func TestCommandsListModules(t *testing.T) {
	c, out := newTestCommands(t)
	require.NoError(t, c.Process("lm"))
	want := fmt.Sprintf("%-18s %-18s %s\n", "start", "end", "module name") +
		"0x0000000000400000 0x0000000000402000 server           /opt/app/server\n"
	assert.Equal(t, want, out.String())
}

func TestCommandsExit(t *testing.T) {
	c, _ := newTestCommands(t)
	for _, line := range []string{"q", "quit", "exit"} {
		assert.Equal(t, io.EOF, c.Process(line))
	}
	assert.NoError(t, c.Close())
}

func TestCommandsHelp(t *testing.T) {
	c, out := newTestCommands(t)
	require.NoError(t, c.Process("help"))
	assert.Contains(t, out.String(), "dv <name> <ip>")
	assert.Contains(t, out.String(), "run, r")
	assert.Contains(t, out.String(), "uf <address|file:line>")
}

var sourceLineTests = []struct {
	input string
	file  string
	line  int
	ok    bool
}{
	{input: "main.c:12", file: "main.c", line: 12, ok: true},
	{input: "src/a:b.c:7", file: "src/a:b.c", line: 7, ok: true},
	{input: "0x401000"},
	{input: ":12"},
	{input: "main.c:0"},
	{input: "main.c:"},
	{input: `C:\src\main.c`},
}

func TestSourceLine(t *testing.T) {
	for i, test := range sourceLineTests {
		file, line, ok := sourceLine(test.input)
		assert.Equal(t, test.ok, ok, "test #%d", i)
		assert.Equal(t, test.file, file, "test #%d", i)
		assert.Equal(t, test.line, line, "test #%d", i)
	}
}
