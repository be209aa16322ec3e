package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/arbor/internal/validator"
	"github.com/aretw0/arbor/pkg/manifest"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the manifest for errors and suspicious constructs",
	Long: `Loads the manifest, reports structural errors, and lints for problems
that are legal but almost certainly unintended (placeholder typos, state
keys nothing writes, unused sources). With --strict, warnings also fail.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("manifest")
		strict, _ := cmd.Flags().GetBool("strict")

		m, err := manifest.Load(path)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		warnings := validator.Lint(m)
		for _, w := range warnings {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w)
		}
		if strict && len(warnings) > 0 {
			return fmt.Errorf("%d warnings (strict mode)", len(warnings))
		}

		fmt.Printf("%s: %d commands, OK\n", path, len(m.Commands))
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("strict", false, "Treat lint warnings as errors")
}
