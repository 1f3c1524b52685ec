package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gni.dev/dbg/internal/dbg/proc"
)

func newLineContext(t *testing.T) *Context {
	c := NewContext()
	_, err := c.LoadModule(LoadedModuleEntry{Name: "/bin/app", Base: 0x400000, Size: 0x10000}, 0x10000,
		proc.NewSymTable(nil, nil, nil,
			proc.LineEntry{File: "/src/app/main.c", Line: 10, PC: 0x11000},
			proc.LineEntry{File: "/src/app/util.c", Line: 5, PC: 0x11200},
			proc.LineEntry{File: "/src/lib/util.c", Line: 5, PC: 0x11400},
		))
	require.NoError(t, err)
	_, err = c.LoadModule(LoadedModuleEntry{Name: "/lib/libz.so", Base: 0x7f0000, Size: 0x1000}, 0,
		proc.NewSymTable(nil, nil, nil,
			proc.LineEntry{File: "/build/zlib/inflate.c", Line: 40, PC: 0x200},
			proc.LineEntry{File: "/build/zlib/main.c", Line: 10, PC: 0x300},
		))
	require.NoError(t, err)
	return c
}

var lineAddressTests = []struct {
	file   string
	line   int
	want   uint64
	module string
	err    error
}{
	{file: "app/main.c", line: 10, want: 0x401000, module: "app"},
	{file: "/src/app/main.c", line: 10, want: 0x401000, module: "app"},
	{file: "inflate.c", line: 40, want: 0x7f0200, module: "libz"},
	{file: "lib/util.c", line: 5, want: 0x401400, module: "app"},
	{file: "inflate.c", line: 41, err: proc.ErrNoLine},
	{file: "deflate.c", line: 1, err: proc.ErrNoLine},
}

func TestLineAddress(t *testing.T) {
	c := newLineContext(t)

	for i, test := range lineAddressTests {
		addr, m, err := c.LineAddress(test.file, test.line)
		if test.err != nil {
			assert.ErrorIs(t, err, test.err, "test #%d", i)
			continue
		}
		require.NoError(t, err, "test #%d", i)
		assert.Equal(t, test.want, addr, "test #%d", i)
		assert.Equal(t, test.module, m.Name(), "test #%d", i)
	}
}

func TestLineAddressAmbiguous(t *testing.T) {
	c := newLineContext(t)

	// two files in one module
	_, _, err := c.LineAddress("util.c", 5)
	var amb *proc.ErrAmbiguous
	require.ErrorAs(t, err, &amb)
	assert.Len(t, amb.Candidates, 2)

	// one file in each of two modules
	_, _, err = c.LineAddress("main.c", 10)
	require.ErrorAs(t, err, &amb)
	assert.Equal(t, "main.c:10", amb.Location)
	assert.Equal(t, []string{"app!/src/app/main.c", "libz!/build/zlib/main.c"}, amb.Candidates)
}
