package main

import (
	"github.com/spf13/cobra"
)

// rootFlags holds the persistent CLI flags cobra/pflag expose across
// every subcommand. Flags override TOML values field-by-field after
// Load, matching cobra's usual PersistentFlags + manual-merge idiom
// (no viper appears anywhere in the pack, so we hand-merge).
type rootFlags struct {
	configPath  string
	controlPath string
	debug       bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "inkterm",
		Short: "A terminal emulator for reflective e-paper displays",
		Long: "inkterm reconciles a logical character matrix with an e-paper " +
			"frame buffer, hiding e-paper's refresh latency behind a " +
			"two-pass draft/promote rendering pipeline.",
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "path to inkterm.toml (optional)")
	pf.StringVar(&flags.controlPath, "control-path", "", "session registry directory (overrides config)")
	pf.BoolVar(&flags.debug, "debug", false, "enable debug logging")

	root.AddCommand(newRunCmd(flags))
	root.AddCommand(newSessionsCmd(flags))

	return root
}
