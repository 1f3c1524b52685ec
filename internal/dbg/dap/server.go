package dap

import (
	"fmt"
	"io"
	"net"

	"github.com/rs/zerolog"

	"gni.dev/dbg/internal/dbg/debugger"
)

type Server struct {
	port        int
	newDebugger func() *debugger.Debugger
	logger      zerolog.Logger
}

// NewServer returns a server that runs one session per connection, each
// with its own debugger.
func NewServer(port int, newDebugger func() *debugger.Debugger, logger zerolog.Logger) *Server {
	return &Server{port: port, newDebugger: newDebugger, logger: logger}
}

func (s *Server) Run() error {
	listen, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", s.port))
	if err != nil {
		return err
	}
	defer listen.Close()
	s.logger.Info().Str("addr", listen.Addr().String()).Msg("DAP server listening")
	for {
		conn, err := listen.Accept()
		if err != nil {
			return err
		}
		sess := NewSession(conn, s.newDebugger(), s.logger)
		err = sess.Serve()
		conn.Close()
		if err == io.EOF {
			return err
		}
		if err != nil {
			s.logger.Error().Err(err).Msg("Session failed")
		}
	}
}
