package term

import (
	"fmt"
	"io"
	"os"

	xterm "golang.org/x/term"

	"gni.dev/dbg/internal/dbg/debugger"
)

// Run drives an interactive session on the process's terminal, which is put
// into raw mode for the duration.
func Run(d *debugger.Debugger, prompt, initCmd string, demangle bool) error {
	in, out := int(os.Stdin.Fd()), int(os.Stdout.Fd())
	if !xterm.IsTerminal(in) || !xterm.IsTerminal(out) {
		return fmt.Errorf("stdin and stdout must be terminals")
	}
	st, err := xterm.MakeRaw(in)
	if err != nil {
		return fmt.Errorf("failed to set terminal to raw mode: %w", err)
	}
	defer xterm.Restore(in, st)

	screen := struct {
		io.Reader
		io.Writer
	}{os.Stdin, &crlfWriter{w: os.Stdout}}
	t := New(screen, prompt, d)
	t.SetDemangle(demangle)
	return t.Run(initCmd)
}

// crlfWriter turns bare line feeds into CR LF, which a raw terminal no
// longer does on output.
type crlfWriter struct {
	w      io.Writer
	lastCR bool
}

func (c *crlfWriter) Write(p []byte) (int, error) {
	buf := make([]byte, 0, len(p)+8)
	for _, b := range p {
		if b == '\n' && !c.lastCR {
			buf = append(buf, '\r')
		}
		buf = append(buf, b)
		c.lastCR = b == '\r'
	}
	if _, err := c.w.Write(buf); err != nil {
		return 0, err
	}
	return len(p), nil
}
