package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/internal/presentation/tui"
)

// replCmd represents the repl command
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive session",
	Long:  `Reads invocations line by line, dispatches them against the manifest, and prints each result.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		headless, _ := cmd.Flags().GetBool("headless")
		watch, _ := cmd.Flags().GetBool("watch")

		// Piped input implies headless, no matter the flag.
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			headless = true
		}

		interp, err := buildInterpreter(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if watch {
			go watchManifest(ctx, interp)
		}

		repl := &cli.REPL{
			Input:     os.Stdin,
			Output:    os.Stdout,
			SessionID: sessionID,
			Headless:  headless,
		}
		if !headless {
			tui.PrintBanner(arbor.Version)
			repl.Renderer = tui.NewRenderer()
		}
		return repl.Run(ctx, interp)
	},
}

// watchManifest hot-reloads the contract when the file changes on disk.
func watchManifest(ctx context.Context, interp *arbor.Interpreter) {
	events, err := interp.Watch(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, ">>> watch unavailable: %v\n", err)
		return
	}
	for range events {
		if err := interp.Reload(); err != nil {
			fmt.Fprintf(os.Stderr, ">>> reload failed: %v\n", err)
			continue
		}
		fmt.Fprintln(os.Stderr, ">>> manifest reloaded")
	}
}

func init() {
	rootCmd.AddCommand(replCmd)

	replCmd.Flags().String("session", "default", "Session ID to load and persist state under")
	replCmd.Flags().Bool("headless", false, "No banner, prompt or markdown rendering (strict IO)")
	replCmd.Flags().BoolP("watch", "w", false, "Hot-reload the manifest on change")
	addStoreFlags(replCmd)
}
