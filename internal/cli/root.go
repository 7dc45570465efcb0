// Package cli provides the command-line interface for uelocate.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/uelocate/internal/cli/commands"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		// Print error to stderr (SilenceErrors prevents Cobra from doing this)
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2 // Configuration or runtime error
	}
	return commands.ExitCode
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "uelocate",
		Short: "Locate 5G subscribers from AMF logs",
		Long: `uelocate is a batch tool that reconstructs UE location and movement from
the operational log of a 5G AMF.

It reports:
  - The current cell, gNB and tracking area of a subscriber (by IMSI or IMEI)
  - Movement history from registration, handover, tracking area update,
    initial UE message, UE context release, path switch and RAN UE NGAP ID
    events
  - A snapshot of every subscriber in the AMF UE table

Logs are read from the AMF container (docker logs), from files, or from stdin.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewLocateCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
