package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/registry"
)

// registerBuiltins binds the source modules shipped with the binary.
// Manifests opt in by mapping a logical source to one of these locators.
func registerBuiltins(interp *arbor.Interpreter) {
	interp.BindModule("builtin/text", registry.Module{
		"Upper": func(ctx context.Context, args map[string]any) (any, error) {
			return strings.ToUpper(argString(args, "text")), nil
		},
		"Lower": func(ctx context.Context, args map[string]any) (any, error) {
			return strings.ToLower(argString(args, "text")), nil
		},
		"Fields": func(ctx context.Context, args map[string]any) (any, error) {
			return strings.Fields(argString(args, "text")), nil
		},
	})

	interp.BindModule("builtin/sys", registry.Module{
		"Now": func(ctx context.Context, args map[string]any) (any, error) {
			return time.Now().Format(time.RFC3339), nil
		},
		"Env": func(ctx context.Context, args map[string]any) (any, error) {
			name := argString(args, "name")
			value, ok := os.LookupEnv(name)
			if !ok {
				return nil, fmt.Errorf("environment variable %q is not set", name)
			}
			return value, nil
		},
		"ReadFile": func(ctx context.Context, args map[string]any) (any, error) {
			data, err := os.ReadFile(argString(args, "path"))
			if err != nil {
				return nil, err
			}
			return string(data), nil
		},
	})
}

func argString(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}
