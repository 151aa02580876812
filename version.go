package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version string

func getCurrentVersion() (string, string) {
	if Version != "" {
		return Version, ""
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" && len(setting.Value) >= 7 {
				return setting.Value[:7], setting.Value
			}
		}
	}

	return "unknown", ""
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			version, commitHash := getCurrentVersion()
			fmt.Fprintf(cmd.OutOrStdout(), "depot-sync %s\n", version)
			if commitHash != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "commit %s\n", commitHash)
			}
		},
	}
}
