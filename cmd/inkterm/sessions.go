package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/inkterm/inkterm/internal/config"
	"github.com/inkterm/inkterm/internal/logging"
	"github.com/inkterm/inkterm/internal/session"
)

func newSessionsCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List sessions recorded in the session registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessionsList(flags)
		},
	}
	return cmd
}

func resolveControlPath(flags *rootFlags, cfg config.Config) string {
	if flags.controlPath != "" {
		return flags.controlPath
	}
	if cfg.ControlPath != "" {
		path := cfg.ControlPath
		if path[:1] == "~" {
			home, err := os.UserHomeDir()
			if err == nil {
				path = filepath.Join(home, path[1:])
			}
		}
		return path
	}
	return ".inkterm"
}

func runSessionsList(flags *rootFlags) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	log, err := logging.New(flags.debug)
	if err != nil {
		return err
	}
	defer log.Sync()

	reg, err := session.NewRegistry(log, resolveControlPath(flags, cfg))
	if err != nil {
		return err
	}
	records, err := reg.List()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("no sessions")
		return nil
	}
	fmt.Printf("%-10s %-24s %-8s %s\n", "ID", "STARTED", "SIZE", "COMMAND")
	for _, r := range records {
		fmt.Printf("%-10s %-24s %dx%-5d %s\n", r.Short(), r.StartedAt.Format("2006-01-02 15:04:05"), r.Cols, r.Rows, r.Command)
	}
	return nil
}
