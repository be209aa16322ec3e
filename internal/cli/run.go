package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/domain"
)

// RunOnce dispatches a single invocation and writes the outcome. When
// jsonOut is set the full Result is emitted as JSON for scripting;
// otherwise only the output (or error) is printed. A command-level
// error becomes the process exit status via the returned error.
func RunOnce(ctx context.Context, interp *arbor.Interpreter, w io.Writer, sessionID, line string, jsonOut bool) error {
	sanitized, err := SanitizeInput(line)
	if err != nil {
		return err
	}

	result, err := interp.Dispatch(ctx, sessionID, sanitized)
	if err != nil {
		return err
	}

	if jsonOut {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
	} else {
		printPlain(w, result)
	}

	if result.Error != "" {
		return fmt.Errorf("command failed: %s", result.Error)
	}
	return nil
}

func printPlain(w io.Writer, result *domain.Result) {
	if result.Error != "" {
		fmt.Fprintf(w, "error: %s\n", result.Error)
		return
	}
	if result.Output == nil {
		return
	}
	if text, ok := result.Output.(string); ok {
		fmt.Fprintln(w, text)
		return
	}
	data, err := json.MarshalIndent(result.Output, "", "  ")
	if err != nil {
		fmt.Fprintf(w, "%v\n", result.Output)
		return
	}
	fmt.Fprintln(w, string(data))
}
