package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var friendlyTests = []struct {
	path string
	want string
}{
	{path: "", want: ""},
	{path: "kernel", want: "kernel"},
	{path: "/usr/lib/libc.so.6", want: "libc"},
	{path: "/usr/lib/libssl.so.1.1", want: "libssl"},
	{path: "/usr/lib/libfoo.so", want: "libfoo"},
	{path: `C:\Windows\System32\NTDLL.DLL`, want: "NTDLL"},
	{path: `mixed/dir\name.exe`, want: "name"},
	{path: "/bin/a.out", want: "a.out"},
	{path: "/opt/app/python3.11", want: "python3.11"},
	{path: "/lib/x.so.so", want: "x"},
	{path: "/boot/kernel.elf", want: "kernel"},
	{path: "/home/u/.so", want: ".so"},
	{path: "/usr/lib/", want: "lib"},
	{path: "/", want: "/"},
	{path: "libc.so.6.", want: "libc.so.6."},
	{path: "archive.tar.gz", want: "archive.tar.gz"},
}

func TestFriendlyName(t *testing.T) {
	for i, test := range friendlyTests {
		begin, length := FriendlyName(test.path)
		assert.GreaterOrEqual(t, begin, 0, "test #%d", i)
		assert.LessOrEqual(t, begin+length, len(test.path), "test #%d", i)
		assert.Equal(t, test.want, test.path[begin:begin+length], "test #%d", i)
	}
}

func TestFriendlyNameIdempotent(t *testing.T) {
	for i, test := range friendlyTests {
		once := Friendly(test.path)
		begin, length := FriendlyName(once)
		assert.Equal(t, 0, begin, "test #%d", i)
		assert.Equal(t, len(once), length, "test #%d", i)
	}
}
