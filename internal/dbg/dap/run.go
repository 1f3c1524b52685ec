package dap

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"gni.dev/dbg/internal/dbg/debugger"
)

// Run serves DAP on localhost:port, or on stdin and stdout when port is
// zero. A client disconnect is not an error.
func Run(port int, newDebugger func() *debugger.Debugger, logger zerolog.Logger) error {
	var err error
	if port > 0 {
		s := NewServer(port, newDebugger, logger)
		err = s.Run()
	} else {
		pipe := struct {
			io.Reader
			io.Writer
		}{os.Stdin, os.Stdout}
		s := NewSession(pipe, newDebugger(), logger)
		err = s.Serve()
	}
	if err != nil && err != io.EOF {
		return err
	}
	return nil
}
