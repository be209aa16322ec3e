package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "arbor",
	Short: "Arbor is a declarative command contract interpreter",
	Long: `Arbor loads a YAML manifest describing commands, their parameters and
side effects, and interprets invocations against it: interactively,
one-shot, over HTTP, or as an MCP server.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("manifest", "m", "contract.yaml", "Path to the command manifest")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging to stderr")
}
