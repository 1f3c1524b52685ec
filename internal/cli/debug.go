package cli

import (
	"github.com/spf13/cobra"

	"gni.dev/dbg/internal/dbg/term"
)

func newDebugCmd(flags *globalFlags) *cobra.Command {
	var initCmd string
	cmd := &cobra.Command{
		Use:   "debug",
		Short: "Start an interactive debugging session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := flags.load()
			if err != nil {
				return err
			}
			d := newDebugger(cfg, logger)
			return term.Run(d, cfg.Prompt, initCmd, cfg.Symbols.Demangle)
		},
	}
	cmd.Flags().StringVar(&initCmd, "init", "", "initial command to run")
	return cmd
}
