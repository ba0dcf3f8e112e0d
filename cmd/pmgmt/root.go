// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the pmgmt host program.
//
// The root command does not parse flags: every argument is handed to the
// command dispatcher, which owns help, completion and the project's commands.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/pmgmt/pmgmt/internal/config"
)

// versionFlag is answered by the host before dispatch.
const versionFlag = "--version"

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

func newRootCommand() *cobra.Command {
	return &cobra.Command{
		Use:   config.AppName + " <command> [options]",
		Short: "Project automation commands",
		Long: `pmgmt runs the project's automation commands.

Commands are declared in CUE or TOML files in the scripts directory
(PMGMT_SCRIPTS_DIR, default ./libproject). Run without arguments to list them.`,
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && args[0] == versionFlag {
				fmt.Fprintln(cmd.OutOrStdout(), cmd.Root().Version)
				return nil
			}
			return run(cmd.Context(), args)
		},
	}
}

// Execute runs the host program. It is called by main.main().
func Execute() {
	if err := fang.Execute(
		context.Background(),
		newRootCommand(),
		fang.WithVersion(getVersionString()),
		fang.WithoutCompletions(),
		fang.WithoutManpage(),
	); err != nil {
		os.Exit(1)
	}
}
