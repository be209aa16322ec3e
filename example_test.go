package arbor_test

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/dsl"
	"github.com/aretw0/arbor/pkg/registry"
)

// ExampleNewFromManifest demonstrates building a contract in code and
// dispatching against it. This is useful for testing, embedded scenarios,
// or when you don't want to ship a YAML file.
func ExampleNewFromManifest() {
	b := dsl.New("demo")
	b.Command("greet").
		Param("name", dsl.String().Required()).
		Output("Hello, {{name}}!")

	// The default store is in-memory; pass arbor.WithStore to persist.
	interp, err := arbor.NewFromManifest(b.MustBuild())
	if err != nil {
		log.Fatal(err)
	}

	result, err := interp.Dispatch(context.Background(), "session-1", `greet("Ada")`)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(result.Output)
	// Output: Hello, Ada!
}

// ExampleInterpreter_Dispatch shows the full session flow: a side effect
// written by one command feeds a runtime fallback in the next.
func ExampleInterpreter_Dispatch() {
	b := dsl.New("demo").
		StateDefault("model", nil).
		Source("tools", "builtin/tools")

	b.Command("use").
		Param("model", dsl.String().Required()).
		Output("Now using {{model}}.").
		SetStateFrom("model", "model")

	b.Command("generate").
		External("tools", "Generate").
		Param("model", dsl.String().Required().Fallback("model"))

	interp, err := arbor.NewFromManifest(b.MustBuild())
	if err != nil {
		log.Fatal(err)
	}

	interp.BindModule("builtin/tools", registry.Module{
		"Generate": func(ctx context.Context, args map[string]any) (any, error) {
			return fmt.Sprintf("%s says hello", strings.ToUpper(fmt.Sprint(args["model"]))), nil
		},
	})

	ctx := context.Background()
	r1, _ := interp.Dispatch(ctx, "session-1", `use gpt2`)
	fmt.Println(r1.Output)

	// No argument needed: the fallback reads the stored model.
	r2, _ := interp.Dispatch(ctx, "session-1", `generate`)
	fmt.Println(r2.Output)

	// Output:
	// Now using gpt2.
	// GPT2 says hello
}
