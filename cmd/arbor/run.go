package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/arbor/internal/cli"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <invocation>",
	Short: "Dispatch a single invocation and exit",
	Long: `Parses, validates and executes one invocation, prints the result, and
exits non-zero if the command failed. Useful for scripting.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		jsonOut, _ := cmd.Flags().GetBool("json")

		interp, err := buildInterpreter(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		line := strings.Join(args, " ")
		return cli.RunOnce(ctx, interp, os.Stdout, sessionID, line, jsonOut)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("session", "default", "Session ID to load and persist state under")
	runCmd.Flags().Bool("json", false, "Print the full result as JSON")
	addStoreFlags(runCmd)
}
