package dap

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"gni.dev/dbg/internal/dbg/debugger"
	"gni.dev/dbg/internal/dbg/symbols"
)

type Session struct {
	rw       io.ReadWriter
	out      msgWriter
	d        *debugger.Debugger
	logger   zerolog.Logger
	handlers map[string]func(*request)
}

type launchArgs struct {
	Program string   `json:"program"`
	Args    []string `json:"args"`
}

type modulesArgs struct {
	StartModule int `json:"startModule"`
	ModuleCount int `json:"moduleCount"`
}

func NewSession(rw io.ReadWriter, d *debugger.Debugger, logger zerolog.Logger) *Session {
	s := &Session{
		rw:     rw,
		out:    msgWriter{w: rw},
		d:      d,
		logger: logger.With().Str("component", "dap").Logger(),
	}
	s.handlers = map[string]func(*request){
		"initialize": s.onInitialize,
		"launch":     s.onLaunch,
		"modules":    s.onModules,
		"disconnect": s.onDisconnect,
	}
	return s
}

func (s *Session) Serve() error {
	r := bufio.NewReader(s.rw)
	for {
		m, err := readMessage(r)
		if err != nil {
			return err
		}
		r, ok := m.(*request)
		if !ok {
			s.replyErr(m, processingErr, "only requests are allowed", false)
			return io.EOF
		}

		fn, ok := s.handlers[r.Command]
		if !ok {
			s.replyErr(m, processingErr, "unknown command", false)
			continue
		}
		s.logger.Debug().Int("seq", r.Seq).Str("command", r.Command).Msg("Request")
		fn(r)
		if r.Command == "disconnect" {
			return io.EOF
		}
	}
}

func (s *Session) onInitialize(req *request) {
	resp := map[string]interface{}{
		"supportsModulesRequest": true,
	}
	s.reply(newResponse(req, resp))
	s.reply(newEvent("initialized", nil))
}

func (s *Session) onLaunch(req *request) {
	var args launchArgs
	if err := json.Unmarshal(req.Arguments, &args); err != nil {
		s.replyErr(req, parseErr, err.Error(), true)
		return
	}
	if args.Program == "" {
		s.replyErr(req, launchErr, "no program specified", true)
		return
	}
	if err := s.d.Launch(args.Program, args.Args); err != nil {
		s.replyErr(req, launchErr, err.Error(), true)
		return
	}
	s.reply(newResponse(req, nil))
	for _, m := range s.d.Symbols().Modules() {
		s.reply(newEvent("module", map[string]interface{}{
			"reason": "new",
			"module": moduleInfo(m),
		}))
	}
}

func (s *Session) onModules(req *request) {
	var args modulesArgs
	if len(req.Arguments) > 0 {
		if err := json.Unmarshal(req.Arguments, &args); err != nil {
			s.replyErr(req, parseErr, err.Error(), true)
			return
		}
	}
	if args.StartModule < 0 || args.ModuleCount < 0 {
		s.replyErr(req, modulesErr, "negative module range", false)
		return
	}

	all := s.d.Symbols().Modules()
	start := min(args.StartModule, len(all))
	end := len(all)
	if args.ModuleCount > 0 {
		end = min(start+args.ModuleCount, end)
	}

	modules := make([]map[string]interface{}, 0, end-start)
	for _, m := range all[start:end] {
		modules = append(modules, moduleInfo(m))
	}
	s.reply(newResponse(req, map[string]interface{}{
		"modules":      modules,
		"totalModules": len(all),
	}))
}

func (s *Session) onDisconnect(req *request) {
	if err := s.d.Detach(); err != nil {
		s.logger.Warn().Err(err).Msg("Detach failed")
	}
	s.reply(newResponse(req, nil))
}

func (s *Session) reply(m message) {
	if err := s.out.write(m); err != nil {
		s.logger.Error().Err(err).Msg("Failed to write message")
	}
}

func (s *Session) replyErr(incoming message, e gniDAPError, details string, show bool) {
	cmd := "unknown"
	req, ok := incoming.(*request)
	if ok {
		cmd = req.Command
	}

	resp := newErrResponse(incoming, int(e), cmd, e.String(), details, show)
	s.reply(resp)
}

// moduleInfo converts a module to a DAP Module object.
func moduleInfo(m *symbols.Module) map[string]interface{} {
	return map[string]interface{}{
		"id":           fmt.Sprintf("%#x", m.LoadBase()),
		"name":         m.Name(),
		"path":         m.Path(),
		"addressRange": fmt.Sprintf("%#x-%#x", m.LoadBase(), m.End()),
	}
}
