package cli

import (
	"github.com/spf13/cobra"

	"gni.dev/dbg/internal/dbg/dap"
	"gni.dev/dbg/internal/dbg/debugger"
)

func newDAPCmd(flags *globalFlags) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "dap",
		Short: "Serve the Debug Adapter Protocol",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := flags.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.DAP.Port = port
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			return dap.Run(cfg.DAP.Port, func() *debugger.Debugger {
				return newDebugger(cfg, logger)
			}, logger)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "port to listen on (default: stdin/stdout)")
	return cmd
}
