// Package params applies a command's parameter contracts to raw arguments:
// fallback substitution, type coercion, and constraint checks. Every
// violation found is collected before reporting, so a caller can surface all
// problems at once.
package params

import (
	"fmt"
	"reflect"
	"regexp"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/manifest"
	"github.com/aretw0/arbor/pkg/schema"
)

// Resolve canonicalizes args against the command's parameter specs.
//
// For each declared parameter: an absent value is substituted from
// state[runtimeFallback], then from the declared default; a still-absent
// required parameter is an error. Present values are coerced through the
// schema type system, then checked against the constraints that apply to
// their coerced type. An explicit null argument counts as absent.
//
// Arguments not declared by the spec pass through untouched; trusted
// handlers may accept extras.
func Resolve(spec *manifest.CommandSpec, args map[string]any, state domain.State) (map[string]any, error) {
	resolved := make(map[string]any, len(args))
	for k, v := range args {
		if _, declared := spec.Parameters[k]; !declared {
			resolved[k] = v
		}
	}

	var errs []error

	for _, name := range spec.ParamOrder() {
		pspec := spec.Parameters[name]

		value, present := args[name]
		if value == nil {
			present = false
		}

		if !present {
			if pspec.RuntimeFallback != "" {
				if fallback, ok := state[pspec.RuntimeFallback]; ok && fallback != nil {
					resolved[name] = fallback
					continue
				}
			}
			if pspec.Default != nil {
				resolved[name] = pspec.Default
				continue
			}
			if pspec.Required {
				errs = append(errs, &schema.ValidationError{
					Param:  name,
					Reason: "missing required parameter",
				})
			}
			continue
		}

		typ, err := schema.ParseType(pspec.Type)
		if err != nil {
			// Unreachable for manifests that passed structural validation.
			errs = append(errs, &schema.ValidationError{Param: name, Reason: err.Error()})
			continue
		}

		coerced, err := typ.Coerce(value)
		if err != nil {
			errs = append(errs, &schema.ValidationError{
				Param:  name,
				Reason: err.Error(),
				Value:  value,
			})
			continue
		}

		errs = append(errs, checkConstraints(name, coerced, pspec)...)
		resolved[name] = coerced
	}

	if len(errs) > 0 {
		return nil, &schema.AggregateError{Errors: errs}
	}
	return resolved, nil
}

// checkConstraints applies the constraints matching the coerced value's
// type. All violations are returned, not just the first.
func checkConstraints(name string, value any, spec manifest.ParamSpec) []error {
	var errs []error

	if n, ok := asFloat(value); ok {
		if spec.Min != nil && n < *spec.Min {
			errs = append(errs, &schema.ValidationError{
				Param: name, Reason: fmt.Sprintf("must be >= %v", *spec.Min), Value: value,
			})
		}
		if spec.Max != nil && n > *spec.Max {
			errs = append(errs, &schema.ValidationError{
				Param: name, Reason: fmt.Sprintf("must be <= %v", *spec.Max), Value: value,
			})
		}
	}

	if s, ok := value.(string); ok {
		if spec.MinLength != nil && len(s) < *spec.MinLength {
			errs = append(errs, &schema.ValidationError{
				Param: name, Reason: fmt.Sprintf("must be at least %d characters", *spec.MinLength), Value: value,
			})
		}
		if spec.MaxLength != nil && len(s) > *spec.MaxLength {
			errs = append(errs, &schema.ValidationError{
				Param: name, Reason: fmt.Sprintf("must be at most %d characters", *spec.MaxLength), Value: value,
			})
		}
		if spec.Pattern != "" {
			// Pattern validity is checked at manifest load.
			if re, err := regexp.Compile(spec.Pattern); err == nil && !re.MatchString(s) {
				errs = append(errs, &schema.ValidationError{
					Param: name, Reason: fmt.Sprintf("must match pattern %s", spec.Pattern), Value: value,
				})
			}
		}
	}

	if len(spec.Enum) > 0 && !enumContains(spec.Enum, value) {
		errs = append(errs, &schema.ValidationError{
			Param: name, Reason: fmt.Sprintf("must be one of %v", spec.Enum), Value: value,
		})
	}

	return errs
}

func enumContains(allowed []any, value any) bool {
	for _, candidate := range allowed {
		if looseEqual(candidate, value) {
			return true
		}
	}
	return false
}

// looseEqual compares values, treating all numeric types as equal when their
// float64 representations match. Manifest literals decode as int while
// coerced values may be int64 or float64.
func looseEqual(a, b any) bool {
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if aok && bok {
		return af == bf
	}
	return reflect.DeepEqual(a, b)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
