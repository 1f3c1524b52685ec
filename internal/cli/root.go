// Package cli implements the gni command tree.
package cli

import (
	"fmt"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"gni.dev/dbg/internal/config"
	"gni.dev/dbg/internal/dbg/debugger"
	"gni.dev/dbg/internal/dbg/symbols"
	"gni.dev/dbg/internal/logging"
)

// Version is set at build time with -ldflags.
var Version = "dev"

type globalFlags struct {
	configPath string
	logLevel   string
}

// NewRootCmd builds the gni command and its subcommands.
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}
	cmd := &cobra.Command{
		Use:           "gni",
		Short:         "gni - a debugger for native programs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "configuration file (default ~/.gni/dbg.yaml)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override the configured log level")

	cmd.AddCommand(newDebugCmd(flags))
	cmd.AddCommand(newDAPCmd(flags))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("gni version %s\n", Version)
			cmd.Printf("Go version: %s\n", runtime.Version())
		},
	}
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// load reads the configuration and builds the logger for a command.
func (f *globalFlags) load() (*config.Config, zerolog.Logger, error) {
	path := f.configPath
	if path == "" {
		var err error
		if path, err = config.Path(); err != nil {
			return nil, zerolog.Nop(), err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
		if err := cfg.Validate(); err != nil {
			return nil, zerolog.Nop(), fmt.Errorf("--log-level: %w", err)
		}
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Log.Level
	logCfg.Pretty = cfg.Log.Pretty
	return cfg, logging.New(logCfg), nil
}

func newDebugger(cfg *config.Config, logger zerolog.Logger) *debugger.Debugger {
	return debugger.New(logger, symbols.WithFrameCache(cfg.Symbols.FunctionCacheSize))
}
