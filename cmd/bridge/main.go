// Package main is the entry point for the Channel.io bridge host.
//
// The host runs the UI loop, attaches the platform bridge to a method channel
// and exposes that channel to application clients over WebSocket and HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "0.1.0"
	buildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:           "channelio-bridge",
	Short:         "Channel.io SDK bridge host",
	Long:          "Hosts the Channel.io SDK bridge and serves its method channel to application clients.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "channelio-bridge v%s (built %s)\n", version, buildTime)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
