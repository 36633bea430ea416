// Package main provides the entry point for the gitvars CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/gitvars/cmd/gitvars/commands"
	"github.com/Sumatoshi-tech/gitvars/pkg/version"
)

func main() {
	rootCmd := commands.NewRootCommand()
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "gitvars %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
