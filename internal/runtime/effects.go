package runtime

import (
	"reflect"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/manifest"
)

// ApplyEffects reconciles session state with a command's declared side
// effects. It is a pure function: the input state is never mutated, and the
// returned state is independent of it. Callers invoke it only after a
// successful execution.
//
// Rule semantics:
//
//	setState      assign state[key] from the argument named by fromParam,
//	              else from the rendered template (evaluated against the
//	              args plus "result"); rules producing no value are skipped
//	clearState    unconditionally delete each listed key
//	clearStateIf  delete key only when the argument named by fromParam
//	              equals the key's current stored value
func ApplyEffects(state domain.State, cmd *domain.Command, result *domain.Result, spec *manifest.CommandSpec) domain.State {
	next := state.Clone()
	if spec == nil || spec.SideEffects == nil {
		return next
	}
	effects := spec.SideEffects

	for _, rule := range effects.SetState {
		if value, ok := computeSetValue(rule, cmd, result); ok {
			next[rule.Key] = value
		}
	}

	for _, key := range effects.ClearState {
		delete(next, key)
	}

	for _, rule := range effects.ClearStateIf {
		supplied, ok := cmd.Args[rule.FromParam]
		if !ok {
			continue
		}
		current, exists := next[rule.Key]
		if exists && looseValueEqual(supplied, current) {
			delete(next, rule.Key)
		}
	}

	return next
}

func computeSetValue(rule manifest.SetStateRule, cmd *domain.Command, result *domain.Result) (any, bool) {
	if rule.FromParam != "" {
		value, ok := cmd.Args[rule.FromParam]
		if !ok || value == nil {
			return nil, false
		}
		return value, true
	}

	if rule.Template != "" {
		bag := make(map[string]any, len(cmd.Args)+1)
		for k, v := range cmd.Args {
			bag[k] = v
		}
		if result != nil {
			bag["result"] = result.Output
		}
		return Interpolate(rule.Template, bag), true
	}

	// fromResult extraction is an open extension point; manifest
	// validation rejects it before it can reach here.
	return nil, false
}

// looseValueEqual compares a supplied argument with a stored value. State
// round-trips through JSON, so an int64 argument must match the float64 the
// snapshot gave back.
func looseValueEqual(a, b any) bool {
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return af == bf
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
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
