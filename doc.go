/*
Package arbor is a declarative command interpreter: commands, their
parameters, validation rules, execution bindings and side effects are
all declared in a YAML manifest, and the engine turns raw text
invocations into validated calls against pluggable code modules.

It separates the command contract (the manifest), the execution state
(per-session key/value context) and the side effects (declarative state
mutations applied only on success). The engine is embeddable in any
host: REPL, HTTP server, or MCP agent infrastructure.

# Key Features

  - Declarative Contracts: commands, types, constraints and side
    effects live in data, not code.
  - Four Input Grammars: function-call, object-call, CLI-style and
    bare-identifier forms all normalize to one canonical command.
  - Strict Validation: every argument is coerced and checked against
    the declared parameter types before any handler runs.
  - Session Persistence: state survives across invocations via
    pluggable stores (memory, file, redis).

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/arbor"
		"github.com/aretw0/arbor/pkg/registry"
	)

	func main() {
		interp, err := arbor.New("./contract.yaml")
		if err != nil {
			log.Fatal(err)
		}

		// Bind the code modules the manifest's sources point at.
		interp.BindModule("builtin/textgen", registry.Module{
			"Generate": func(ctx context.Context, args map[string]any) (any, error) {
				return "some generated text", nil
			},
		})

		result, err := interp.Dispatch(context.Background(), "session-1", `generate(model="alice.mdl")`)
		if err != nil {
			log.Fatal(err)
		}
		if result.Error != "" {
			fmt.Println("error:", result.Error)
			return
		}
		fmt.Println(result.Output)
	}
*/
package arbor
