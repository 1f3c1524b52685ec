package term

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gni.dev/dbg/internal/dbg/debugger"
)

type command struct {
	aliases []string
	usage   string
	fn      func(args []string) error
}

type Commands struct {
	cmds     []command
	d        *debugger.Debugger
	out      io.Writer
	demangle bool
}

func DebuggerCommands(d *debugger.Debugger, out io.Writer) *Commands {
	c := &Commands{d: d, out: out}
	c.cmds = append(c.cmds,
		command{
			aliases: []string{"exit", "quit", "q"},
			fn:      c.exit,
		},
		command{
			aliases: []string{"help", "h"},
			fn:      c.help,
		},
		command{
			aliases: []string{"run", "r"},
			usage:   "run <program> [args...]",
			fn:      c.run,
		},
		command{
			aliases: []string{"lm"},
			fn:      c.listModules,
		},
		command{
			aliases: []string{"ln"},
			usage:   "ln <address|file:line>",
			fn:      c.nearestSymbol,
		},
		command{
			aliases: []string{"x"},
			usage:   "x [module!]pattern",
			fn:      c.examineSymbols,
		},
		command{
			aliases: []string{"dv"},
			usage:   "dv <name> <ip>",
			fn:      c.displayLocal,
		},
		command{
			aliases: []string{"uf"},
			usage:   "uf <address|file:line>",
			fn:      c.functionStart,
		},
	)
	return c
}

func (c *Commands) Process(line string) error {
	args := strings.Fields(line)
	if len(args) == 0 {
		return fmt.Errorf("empty command")
	}

	for _, cmd := range c.cmds {
		for _, alias := range cmd.aliases {
			if args[0] == alias {
				return cmd.fn(args[1:])
			}
		}
	}
	return fmt.Errorf("unknown command '%s'", args[0])
}

// complete returns the command names starting with prefix.
func (c *Commands) complete(prefix string) []string {
	var names []string
	for _, cmd := range c.cmds {
		for _, alias := range cmd.aliases {
			if strings.HasPrefix(alias, prefix) {
				names = append(names, alias)
			}
		}
	}
	return names
}

func (c *Commands) Close() error {
	return c.d.Detach()
}

func (c *Commands) exit(args []string) error {
	return io.EOF
}

func (c *Commands) help(args []string) error {
	for _, cmd := range c.cmds {
		usage := cmd.usage
		if usage == "" {
			usage = cmd.aliases[0]
		}
		c.printf("%-26s %s\n", usage, strings.Join(cmd.aliases, ", "))
	}
	return nil
}

func (c *Commands) run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no executable specified")
	}
	if err := c.d.Launch(args[0], args[1:]); err != nil {
		return err
	}
	c.printf("%d modules loaded\n", len(c.d.Symbols().Modules()))
	return nil
}

func (c *Commands) listModules(args []string) error {
	if err := c.d.SyncModules(); err != nil && !errors.Is(err, debugger.ErrNoProcess) {
		return err
	}
	c.printf("%-18s %-18s %s\n", "start", "end", "module name")
	for _, m := range c.d.Symbols().Modules() {
		c.printf("0x%016x 0x%016x %-16s %s\n", m.LoadBase(), m.End(), m.Name(), m.Path())
	}
	return nil
}

func (c *Commands) nearestSymbol(args []string) error {
	addr, err := c.location(args, 0, "ln <address|file:line>")
	if err != nil {
		return err
	}
	c.printf("%s\n", c.d.Symbols().Describe(addr))
	return nil
}

func (c *Commands) examineSymbols(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: x [module!]pattern")
	}
	res, err := c.d.Symbols().FindSymbol(args[0])
	if err != nil {
		return err
	}
	if res.Empty() {
		c.printf("no matches\n")
		return nil
	}
	for _, m := range res.Matches {
		name := m.Name
		if c.demangle {
			name = m.DisplayName()
		}
		if addr, ok := m.Address(); ok {
			c.printf("0x%016x %s!%s\n", addr, m.Module.Name(), name)
		} else {
			c.printf("%-18s %s!%s\n", "<"+m.Kind.String()+">", m.Module.Name(), name)
		}
	}
	return nil
}

func (c *Commands) displayLocal(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: dv <name> <ip>")
	}
	ip, err := c.address(args, 1, "dv <name> <ip>")
	if err != nil {
		return err
	}
	f, ok := c.d.Symbols().CurrentFunction(ip)
	if !ok {
		return fmt.Errorf("no function at %#x", ip)
	}
	v, ok := c.d.Symbols().FindLocal(args[0], ip)
	if !ok {
		return fmt.Errorf("no local '%s' in %s at %#x", args[0], f.Func.Name(), ip)
	}
	kind := "local"
	if v.IsParam() {
		kind = "param"
	}
	c.printf("%s %s (live from 0x%016x)\n", kind, v.Name(), f.Module.Rebase(v.MinPC()))
	return nil
}

func (c *Commands) functionStart(args []string) error {
	addr, err := c.location(args, 0, "uf <address|file:line>")
	if err != nil {
		return err
	}
	start, ok := c.d.Symbols().FunctionStartAddress(addr)
	if !ok {
		return fmt.Errorf("no function at %#x", addr)
	}
	c.printf("%s:\n0x%016x\n", c.d.Symbols().Describe(start), start)
	return nil
}

func (c *Commands) address(args []string, i int, usage string) (uint64, error) {
	if len(args) <= i {
		return 0, fmt.Errorf("usage: %s", usage)
	}
	addr, err := strconv.ParseUint(args[i], 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid address '%s'", args[i])
	}
	return addr, nil
}

// location accepts an address or a source location written file:line.
func (c *Commands) location(args []string, i int, usage string) (uint64, error) {
	if len(args) > i {
		if file, line, ok := sourceLine(args[i]); ok {
			addr, _, err := c.d.Symbols().LineAddress(file, line)
			return addr, err
		}
	}
	return c.address(args, i, usage)
}

func sourceLine(s string) (string, int, bool) {
	i := strings.LastIndexByte(s, ':')
	if i <= 0 {
		return "", 0, false
	}
	line, err := strconv.Atoi(s[i+1:])
	if err != nil || line <= 0 {
		return "", 0, false
	}
	return s[:i], line, true
}

func (c *Commands) printf(format string, a ...any) {
	fmt.Fprintf(c.out, format, a...)
}
