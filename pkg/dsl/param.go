package dsl

import "github.com/aretw0/arbor/pkg/manifest"

// ParamBuilder provides a fluent API for one parameter's contract.
type ParamBuilder struct {
	spec manifest.ParamSpec
}

// Typed starts a parameter with an explicit type expression, including
// "|"-delimited unions such as "string|integer".
func Typed(typeExpr string) *ParamBuilder {
	return &ParamBuilder{spec: manifest.ParamSpec{Type: typeExpr}}
}

// String starts a string parameter.
func String() *ParamBuilder { return Typed("string") }

// Integer starts an integer parameter.
func Integer() *ParamBuilder { return Typed("integer") }

// Number starts a floating point parameter.
func Number() *ParamBuilder { return Typed("number") }

// Boolean starts a boolean parameter.
func Boolean() *ParamBuilder { return Typed("boolean") }

// Array starts an array parameter.
func Array() *ParamBuilder { return Typed("array") }

// Object starts an object parameter.
func Object() *ParamBuilder { return Typed("object") }

// Any starts an untyped parameter.
func Any() *ParamBuilder { return &ParamBuilder{} }

// Required marks the parameter as required.
func (p *ParamBuilder) Required() *ParamBuilder {
	p.spec.Required = true
	return p
}

// Default sets the value used when the argument is absent. Defaults are
// passed through to handlers as written, without coercion.
func (p *ParamBuilder) Default(value any) *ParamBuilder {
	p.spec.Default = value
	return p
}

// Fallback names the state key substituted when the argument is absent.
// It takes precedence over Default.
func (p *ParamBuilder) Fallback(stateKey string) *ParamBuilder {
	p.spec.RuntimeFallback = stateKey
	return p
}

// Min sets the numeric lower bound, inclusive.
func (p *ParamBuilder) Min(v float64) *ParamBuilder {
	p.spec.Min = &v
	return p
}

// Max sets the numeric upper bound, inclusive.
func (p *ParamBuilder) Max(v float64) *ParamBuilder {
	p.spec.Max = &v
	return p
}

// MinLength sets the minimum string length in bytes.
func (p *ParamBuilder) MinLength(n int) *ParamBuilder {
	p.spec.MinLength = &n
	return p
}

// MaxLength sets the maximum string length in bytes.
func (p *ParamBuilder) MaxLength(n int) *ParamBuilder {
	p.spec.MaxLength = &n
	return p
}

// Pattern sets a regular expression the string value must match.
func (p *ParamBuilder) Pattern(re string) *ParamBuilder {
	p.spec.Pattern = re
	return p
}

// Enum restricts the value to a literal set.
func (p *ParamBuilder) Enum(values ...any) *ParamBuilder {
	p.spec.Enum = values
	return p
}

// Describe sets the parameter description, surfaced in catalogs and the
// generated API document.
func (p *ParamBuilder) Describe(text string) *ParamBuilder {
	p.spec.Description = text
	return p
}
