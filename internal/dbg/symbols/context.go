// Package symbols correlates target addresses and names with the modules,
// functions and variables loaded into a debugging session.
//
// A Context belongs to one session and is driven from a single goroutine.
package symbols

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"gni.dev/dbg/internal/dbg/proc"
)

// Context holds the modules currently loaded in a debugging session.
type Context struct {
	modules []*Module
	frames  *lru.Cache[uint64, Frame]
	logger  zerolog.Logger
}

// Option configures a Context.
type Option func(*Context)

// WithLogger sets the logger used for module load and unload events.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Context) {
		c.logger = logger.With().Str("component", "symbols").Logger()
	}
}

// WithFrameCache caches up to size resolved frames keyed by instruction
// pointer. A size of zero disables the cache.
func WithFrameCache(size int) Option {
	return func(c *Context) {
		if size <= 0 {
			c.frames = nil
			return
		}
		c.frames, _ = lru.New[uint64, Frame](size)
	}
}

// NewContext returns an empty session context.
func NewContext(opts ...Option) *Context {
	c := &Context{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadModule records a module reported by the target. A repeated
// notification for a module that is already known returns that module.
// The table may be nil for images without symbols.
func (c *Context) LoadModule(entry LoadedModuleEntry, preferredBase uint64, table *proc.SymTable) (*Module, error) {
	if m, ok := c.FindModuleByEntry(entry); ok {
		return m, nil
	}
	if entry.Size == 0 {
		return nil, fmt.Errorf("%s: %w", entry.Name, ErrEmptyModule)
	}
	if entry.Size-1 > ^uint64(0)-entry.Base {
		return nil, fmt.Errorf("%s: %w", entry.Name, ErrModuleRange)
	}
	for _, m := range c.modules {
		if m.overlaps(entry.Base, entry.Size) {
			c.logger.Warn().
				Str("module", entry.Name).
				Str("loaded", m.Path()).
				Msg("Rejected overlapping module")
			return nil, fmt.Errorf("%s overlaps %s: %w", entry, m, ErrModuleOverlap)
		}
	}

	m := newModule(entry, preferredBase, table)
	c.modules = append(c.modules, m)
	c.purgeFrames()

	c.logger.Info().
		Str("module", m.Name()).
		Str("path", m.Path()).
		Uint64("load_base", m.LoadBase()).
		Uint64("preferred_base", m.PreferredBase()).
		Uint64("size", m.Size()).
		Int("functions", len(m.Symbols().Funcs())).
		Msg("Module loaded")
	return m, nil
}

// UnloadModule forgets the module matching the entry. It reports whether a
// module was removed.
func (c *Context) UnloadModule(entry LoadedModuleEntry) bool {
	for i, m := range c.modules {
		if !m.matches(entry) {
			continue
		}
		c.modules = append(c.modules[:i], c.modules[i+1:]...)
		c.purgeFrames()
		c.logger.Info().Str("module", m.Name()).Msg("Module unloaded")
		return true
	}
	return false
}

// Modules returns a copy of the loaded modules in load order.
func (c *Context) Modules() []*Module {
	return append([]*Module(nil), c.modules...)
}

// Reset drops every module, as on detach.
func (c *Context) Reset() {
	c.modules = nil
	c.purgeFrames()
}

// FindModuleByAddress returns the module whose range contains the raw
// address, together with the address translated into the module's
// preferred-base space.
func (c *Context) FindModuleByAddress(addr uint64) (*Module, uint64, bool) {
	for _, m := range c.modules {
		if m.Contains(addr) {
			return m, m.Debase(addr), true
		}
	}
	return nil, 0, false
}

// FindModuleByName looks a module up by its friendly name. At most maxLength
// characters of either name are compared, so a truncated name still matches;
// a maxLength of zero or less compares the whole names.
func (c *Context) FindModuleByName(name string, maxLength int) (*Module, bool) {
	for _, m := range c.modules {
		if nameEqual(m.Name(), name, maxLength) {
			return m, true
		}
	}
	return nil, false
}

// FindModuleByEntry returns the module already created for a target entry.
func (c *Context) FindModuleByEntry(entry LoadedModuleEntry) (*Module, bool) {
	for _, m := range c.modules {
		if m.matches(entry) {
			return m, true
		}
	}
	return nil, false
}

func (m *Module) matches(entry LoadedModuleEntry) bool {
	return m.path == entry.Name && m.loadBase == entry.Base
}

func (c *Context) purgeFrames() {
	if c.frames != nil {
		c.frames.Purge()
	}
}

func nameEqual(a, b string, n int) bool {
	if n > 0 {
		if len(a) > n {
			a = a[:n]
		}
		if len(b) > n {
			b = b[:n]
		}
	}
	return a == b
}
