package debugger

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"gni.dev/dbg/internal/dbg"
	"gni.dev/dbg/internal/dbg/lldb"
	"gni.dev/dbg/internal/dbg/symbols"
)

var ErrNoProcess = errors.New("no process")

// Debugger is a debugging session: the target being debugged and the modules
// it has loaded.
type Debugger struct {
	target dbg.Target
	launch func() (dbg.Target, error)
	syms   *symbols.Context
	logger zerolog.Logger
}

func New(logger zerolog.Logger, opts ...symbols.Option) *Debugger {
	opts = append([]symbols.Option{symbols.WithLogger(logger)}, opts...)
	return &Debugger{
		launch: func() (dbg.Target, error) { return lldb.LaunchServer(logger) },
		syms:   symbols.NewContext(opts...),
		logger: logger.With().Str("component", "debugger").Logger(),
	}
}

// Symbols returns the session's symbol context.
func (d *Debugger) Symbols() *symbols.Context {
	return d.syms
}

// Launch starts a debug server, runs the program under it and loads the
// modules it reports.
func (d *Debugger) Launch(program string, args []string) error {
	if d.target != nil {
		if err := d.Detach(); err != nil {
			return err
		}
	}
	t, err := d.launch()
	if err != nil {
		return err
	}
	if err := t.Run(program, args); err != nil {
		t.Detach()
		return err
	}
	return d.Attach(t)
}

// Attach makes t the session's target and loads its modules.
func (d *Debugger) Attach(t dbg.Target) error {
	d.target = t
	d.syms.Reset()
	return d.SyncModules()
}

// SyncModules brings the module list in line with the target: modules the
// target no longer reports are unloaded, new ones are loaded.
func (d *Debugger) SyncModules() error {
	if d.target == nil {
		return ErrNoProcess
	}
	entries, err := d.target.LoadedModules()
	if err != nil {
		return fmt.Errorf("failed to list modules: %w", err)
	}

	live := make(map[symbols.LoadedModuleEntry]bool, len(entries))
	for _, e := range entries {
		live[symbols.LoadedModuleEntry{Name: e.Name, Base: e.Base}] = true
	}
	var gone []symbols.LoadedModuleEntry
	for _, m := range d.syms.Modules() {
		if !live[symbols.LoadedModuleEntry{Name: m.Path(), Base: m.LoadBase()}] {
			gone = append(gone, symbols.LoadedModuleEntry{Name: m.Path(), Base: m.LoadBase(), Size: m.Size()})
		}
	}
	for _, e := range gone {
		d.syms.UnloadModule(e)
	}

	for _, e := range entries {
		if _, ok := d.syms.FindModuleByEntry(e); ok {
			continue
		}
		if err := d.loadModule(e); err != nil {
			d.logger.Warn().Err(err).Str("module", e.Name).Msg("Failed to load module")
		}
	}
	return nil
}

func (d *Debugger) loadModule(e symbols.LoadedModuleEntry) error {
	img, err := d.target.ReadImage(e.Name)
	if err != nil {
		d.logger.Warn().Err(err).Str("module", e.Name).Msg("No symbols for module")
		img = &dbg.Image{PreferredBase: e.Base}
	}
	_, err = d.syms.LoadModule(e, img.PreferredBase, img.Symbols)
	return err
}

// Detach releases the target and forgets its modules.
func (d *Debugger) Detach() error {
	d.syms.Reset()
	if d.target == nil {
		return nil
	}
	t := d.target
	d.target = nil
	return t.Detach()
}
