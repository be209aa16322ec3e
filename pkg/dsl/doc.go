/*
Package dsl provides a fluent Go API for constructing command manifests
programmatically instead of loading them from YAML.

It is useful for embedding a contract in a binary, generating catalogs
dynamically, and writing tests with IDE autocompletion and type checking.

Example usage:

	b := dsl.New("textgen-cli").
		Prompt("{{model}}> ").
		StateDefault("model", nil).
		Source("textgen", "builtin/textgen")

	b.Command("use").
		Param("model", dsl.String().Required()).
		Output("Now using {{model}}.").
		SetStateFrom("model", "model")

	b.Command("generate").
		External("textgen", "Sample").
		Param("model", dsl.String().Required().Fallback("model")).
		Param("words", dsl.Integer().Default(50).Min(1).Max(500))

	b.Command("quit").Exit().Output("Bye.")

	contract, err := b.Build()
	// ... pass contract to arbor.NewFromManifest(...)
*/
package dsl
