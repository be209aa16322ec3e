package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Type defines the contract for parameter value coercion.
// Implementations decide whether a raw value (often still a string from the
// parser) matches the type, and return its canonical representation.
type Type interface {
	// Name returns the manifest-facing name of the type (e.g. "integer").
	Name() string
	// Coerce checks value against this type and returns the canonical value.
	Coerce(value any) (any, error)
}

// --- Built-in Type Implementations ---

// StringType accepts string values.
type StringType struct{}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Coerce(value any) (any, error) {
	if s, ok := value.(string); ok {
		return s, nil
	}
	return nil, fmt.Errorf("expected string, got %T", value)
}

// IntegerType accepts integers, whole floats and numeric strings.
type IntegerType struct{}

func (t *IntegerType) Name() string { return "integer" }

func (t *IntegerType) Coerce(value any) (any, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		// JSON unmarshaling produces float64 for every number.
		if v == float64(int64(v)) {
			return int64(v), nil
		}
		return nil, fmt.Errorf("expected integer, got float %v", v)
	case float32:
		if float64(v) == float64(int64(v)) {
			return int64(v), nil
		}
		return nil, fmt.Errorf("expected integer, got float %v", v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, nil
		}
		return nil, fmt.Errorf("expected integer, got %q", v.String())
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return n, nil
		}
		return nil, fmt.Errorf("expected integer, got %q", v)
	default:
		return nil, fmt.Errorf("expected integer, got %T", value)
	}
}

// NumberType accepts any numeric value or numeric string.
type NumberType struct{}

func (t *NumberType) Name() string { return "number" }

func (t *NumberType) Coerce(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int8:
		return float64(v), nil
	case int16:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f, nil
		}
		return nil, fmt.Errorf("expected number, got %q", v.String())
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f, nil
		}
		return nil, fmt.Errorf("expected number, got %q", v)
	default:
		return nil, fmt.Errorf("expected number, got %T", value)
	}
}

// BooleanType accepts bools and the literal strings "true"/"false".
type BooleanType struct{}

func (t *BooleanType) Name() string { return "boolean" }

func (t *BooleanType) Coerce(value any) (any, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		switch v {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, fmt.Errorf("expected boolean, got %q", v)
	default:
		return nil, fmt.Errorf("expected boolean, got %T", value)
	}
}

// ArrayType accepts slices, arrays, and JSON strings encoding an array.
type ArrayType struct{}

func (t *ArrayType) Name() string { return "array" }

func (t *ArrayType) Coerce(value any) (any, error) {
	if s, ok := value.(string); ok {
		var parsed []any
		if err := json.Unmarshal([]byte(s), &parsed); err != nil {
			return nil, fmt.Errorf("expected array, got unparseable string %q", s)
		}
		return parsed, nil
	}

	rv := reflect.ValueOf(value)
	if value == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, fmt.Errorf("expected array, got %T", value)
	}
	return value, nil
}

// BufferType accepts byte slices; strings are converted to their bytes.
type BufferType struct{}

func (t *BufferType) Name() string { return "buffer" }

func (t *BufferType) Coerce(value any) (any, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("expected buffer, got %T", value)
	}
}

// EnumType accepts any value; membership in the allowed literal set is a
// constraint check, not a type check, so it composes with unions.
type EnumType struct{}

func (t *EnumType) Name() string { return "enum" }

func (t *EnumType) Coerce(value any) (any, error) {
	return value, nil
}

// ObjectType accepts maps and JSON strings encoding an object.
type ObjectType struct{}

func (t *ObjectType) Name() string { return "object" }

func (t *ObjectType) Coerce(value any) (any, error) {
	if s, ok := value.(string); ok {
		var parsed map[string]any
		if err := json.Unmarshal([]byte(s), &parsed); err != nil {
			return nil, fmt.Errorf("expected object, got unparseable string %q", s)
		}
		return parsed, nil
	}
	if value == nil || reflect.ValueOf(value).Kind() != reflect.Map {
		return nil, fmt.Errorf("expected object, got %T", value)
	}
	return value, nil
}

// AnyType accepts every value unchanged.
type AnyType struct{}

func (t *AnyType) Name() string { return "any" }

func (t *AnyType) Coerce(value any) (any, error) {
	return value, nil
}

// UnionType accepts a value matching any alternative, left to right.
// The first successful coercion wins.
type UnionType struct {
	alternatives []Type
}

func (t *UnionType) Name() string {
	names := make([]string, len(t.alternatives))
	for i, alt := range t.alternatives {
		names[i] = alt.Name()
	}
	return strings.Join(names, "|")
}

func (t *UnionType) Coerce(value any) (any, error) {
	for _, alt := range t.alternatives {
		if v, err := alt.Coerce(value); err == nil {
			return v, nil
		}
	}
	return nil, fmt.Errorf("expected %s, got %T", t.Name(), value)
}

// --- Factory Functions ---

// String creates a string type.
func String() Type { return &StringType{} }

// Integer creates an integer type.
func Integer() Type { return &IntegerType{} }

// Number creates a floating-point type.
func Number() Type { return &NumberType{} }

// Boolean creates a boolean type.
func Boolean() Type { return &BooleanType{} }

// Array creates an array type.
func Array() Type { return &ArrayType{} }

// Buffer creates a byte-buffer type.
func Buffer() Type { return &BufferType{} }

// Enum creates an enum type. The allowed set lives on the ParamSpec.
func Enum() Type { return &EnumType{} }

// Object creates an object (map) type.
func Object() Type { return &ObjectType{} }

// Any creates a type that accepts everything.
func Any() Type { return &AnyType{} }

// Union combines alternatives; the first match wins.
func Union(alternatives ...Type) Type {
	return &UnionType{alternatives: alternatives}
}

// ParseType converts a manifest type string to a Type.
// Supports the primitive set and "|"-delimited unions of it, e.g.
// "string", "integer", "string|integer", "array|string".
func ParseType(typeStr string) (Type, error) {
	if strings.Contains(typeStr, "|") {
		parts := strings.Split(typeStr, "|")
		alternatives := make([]Type, 0, len(parts))
		for _, part := range parts {
			alt, err := ParseType(strings.TrimSpace(part))
			if err != nil {
				return nil, err
			}
			alternatives = append(alternatives, alt)
		}
		return Union(alternatives...), nil
	}

	switch strings.TrimSpace(typeStr) {
	case "", "any":
		return Any(), nil
	case "string":
		return String(), nil
	case "integer":
		return Integer(), nil
	case "number":
		return Number(), nil
	case "boolean":
		return Boolean(), nil
	case "array":
		return Array(), nil
	case "buffer":
		return Buffer(), nil
	case "enum":
		return Enum(), nil
	case "object":
		return Object(), nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", typeStr)
	}
}
