package lldb

import (
	"debug/elf"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"gni.dev/dbg/internal/dbg"
	"gni.dev/dbg/internal/dbg/proc"
	"gni.dev/dbg/internal/dbg/symbols"
	"gni.dev/dbg/internal/dbg/sys"
)

var ErrNotRunning = errors.New("program is not running")

type LLDB struct {
	server     *os.Process
	tmpDir     string
	c          *conn
	connCloser io.Closer
	logger     zerolog.Logger

	program string
	bias    uint64
	layouts map[string]layout
}

func LaunchServer(logger zerolog.Logger) (*LLDB, error) {
	path, err := exec.LookPath("lldb-server")
	if err != nil {
		return nil, fmt.Errorf("lldb-server unavailable: %v", err)
	}

	tmp, err := os.MkdirTemp("", "gni-*")
	if err != nil {
		return nil, err
	}
	sock := filepath.Join(tmp, "dbg.socket")

	c := exec.Command(path, "gdbserver", "unix://"+sock)
	c.SysProcAttr = &syscall.SysProcAttr{
		Pdeathsig: syscall.SIGTERM,
	}
	if err := c.Start(); err != nil {
		os.RemoveAll(tmp)
		return nil, err
	}

	conn, err := tryConnect("unix", sock)
	if err != nil {
		c.Process.Kill()
		os.RemoveAll(tmp)
		return nil, err
	}

	lldbConn := newConn(conn)
	if err := lldbConn.handshake(); err != nil {
		conn.Close()
		c.Process.Kill()
		os.RemoveAll(tmp)
		return nil, err
	}

	logger = logger.With().Str("component", "lldb").Logger()
	logger.Debug().Str("socket", sock).Int("pid", c.Process.Pid).Msg("lldb-server started")

	return &LLDB{
		server:     c.Process,
		tmpDir:     tmp,
		c:          lldbConn,
		connCloser: conn,
		logger:     logger,
		layouts:    make(map[string]layout),
	}, nil
}

func (l *LLDB) Run(program string, args []string) error {
	if err := l.c.run(program, args); err != nil {
		return err
	}
	pi, err := l.c.getProcessInfo()
	if err != nil {
		return err
	}
	pi, err = l.c.getProcessInfoPID(pi.pid)
	if err != nil {
		return err
	}

	lay, err := l.layout(pi.name)
	if err != nil {
		return err
	}
	auxv, err := l.c.xferRead("auxv", "")
	if err != nil {
		return err
	}
	if a := sys.ParseAuxV(auxv); a.Entry != 0 {
		l.bias = a.Entry - lay.entry
	}
	l.program = pi.name

	l.logger.Info().Int("pid", pi.pid).Str("program", pi.name).Msg("Program launched")
	return nil
}

func (l *LLDB) Detach() error {
	if l.program != "" {
		if err := l.c.detach(); err != nil {
			l.logger.Warn().Err(err).Msg("Detach request failed")
		}
		l.program = ""
	}
	err := l.connCloser.Close()
	if l.server != nil {
		l.server.Kill()
		l.server.Wait()
	}
	os.RemoveAll(l.tmpDir)
	return err
}

// LoadedModules reports the main executable followed by the shared
// libraries the dynamic linker has mapped.
func (l *LLDB) LoadedModules() ([]symbols.LoadedModuleEntry, error) {
	if l.program == "" {
		return nil, ErrNotRunning
	}
	lay, err := l.layout(l.program)
	if err != nil {
		return nil, err
	}
	entries := []symbols.LoadedModuleEntry{{
		Name: l.program,
		Base: lay.preferred + l.bias,
		Size: lay.size,
	}}

	data, err := l.c.xferRead("libraries-svr4", "")
	if err != nil {
		l.logger.Debug().Err(err).Msg("Library list unavailable")
		return entries, nil
	}
	libs, err := parseLibraries(data)
	if err != nil {
		return nil, err
	}
	for _, lib := range libs {
		lay, err := l.layout(lib.name)
		if err != nil {
			l.logger.Debug().Err(err).Str("library", lib.name).Msg("Skipping library")
			continue
		}
		entries = append(entries, symbols.LoadedModuleEntry{
			Name: lib.name,
			Base: lib.bias + lay.preferred,
			Size: lay.size,
		})
	}
	return entries, nil
}

// ReadImage reads the DWARF of the binary at path. Binaries without debug
// information yield an empty symbol table.
func (l *LLDB) ReadImage(path string) (*dbg.Image, error) {
	f, err := openFile(l.c, path)
	if err != nil {
		return nil, err
	}
	defer f.close()

	elfFile, err := elf.NewFile(f)
	if err != nil {
		return nil, err
	}
	lay, err := layoutOf(elfFile)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	l.layouts[path] = lay

	img := &dbg.Image{PreferredBase: lay.preferred}
	dwarf, err := elfFile.DWARF()
	if err != nil {
		l.logger.Debug().Err(err).Str("path", path).Msg("No debug information")
		return img, nil
	}

	var sym proc.SymTable
	if err := sym.LoadImage(dwarf); err != nil {
		return nil, err
	}
	img.Symbols = &sym
	return img, nil
}

func (l *LLDB) layout(path string) (layout, error) {
	if lay, ok := l.layouts[path]; ok {
		return lay, nil
	}
	f, err := openFile(l.c, path)
	if err != nil {
		return layout{}, err
	}
	defer f.close()

	elfFile, err := elf.NewFile(f)
	if err != nil {
		return layout{}, err
	}
	lay, err := layoutOf(elfFile)
	if err != nil {
		return layout{}, fmt.Errorf("%s: %w", path, err)
	}
	l.layouts[path] = lay
	return lay, nil
}

func tryConnect(network, address string) (conn net.Conn, err error) {
	for i := time.Duration(100); i < 5000; i += 100 {
		conn, err = net.Dial(network, address)
		if err == nil {
			return
		}
		time.Sleep(i * time.Millisecond)
	}
	return
}
