// Package cli hosts the interactive and one-shot command line frontends
// over an Interpreter.
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/arbor"
)

// REPL handles the interactive loop using provided IO. This allows for
// easy testing and integration with different frontends.
type REPL struct {
	Input     io.Reader
	Output    io.Writer
	SessionID string
	Headless  bool
	Renderer  func(string) (string, error)
}

// Run executes the read-dispatch-print loop until EOF, context
// cancellation, or a command with the exit flag.
func (r *REPL) Run(ctx context.Context, interp *arbor.Interpreter) error {
	if r.Input == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}

	reader := bufio.NewReader(r.Input)
	prompt := interp.Prompt()

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		if !r.Headless {
			fmt.Fprint(r.Output, prompt)
		}

		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				if !r.Headless {
					fmt.Fprintln(r.Output)
				}
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Bare exit/quit always works, unless the manifest claims the
		// name for a command of its own.
		if line == "exit" || line == "quit" {
			if _, claimed := interp.Contract().Command(line); !claimed {
				return nil
			}
		}

		sanitized, err := SanitizeInput(line)
		if err != nil {
			fmt.Fprintf(r.Output, ">>> %v\n", err)
			continue
		}

		result, err := interp.Dispatch(ctx, r.SessionID, sanitized)
		if err != nil {
			return err
		}

		r.printResult(result.Error, result.Output)
		if result.Exit {
			return nil
		}
	}
}

func (r *REPL) printResult(errMsg string, output any) {
	if errMsg != "" {
		fmt.Fprintf(r.Output, ">>> %s\n", errMsg)
		return
	}
	if output == nil {
		return
	}

	if text, ok := output.(string); ok {
		if r.Renderer != nil {
			if rendered, err := r.Renderer(text); err == nil {
				text = rendered
			}
		}
		fmt.Fprintln(r.Output, strings.TrimSpace(text))
		return
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		fmt.Fprintf(r.Output, "%v\n", output)
		return
	}
	fmt.Fprintln(r.Output, string(data))
}
