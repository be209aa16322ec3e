package runtime

import (
	"fmt"
	"regexp"
	"strings"
)

var placeholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*(?:\|\s*([A-Za-z]+)\s*)?\}\}`)

// Interpolate resolves {{name}} and {{name|filter}} placeholders against a
// data bag. An unresolved identifier renders as an empty string; evaluation
// never fails. This is the single rendering mechanism shared by
// successOutput and setState templates.
//
// Supported filters:
//
//	basename  drop everything from the last "." onward
//	dirname   drop the last "/"-delimited segment
func Interpolate(template string, bag map[string]any) string {
	return placeholderRe.ReplaceAllStringFunc(template, func(match string) string {
		parts := placeholderRe.FindStringSubmatch(match)
		name, filter := parts[1], parts[2]

		value, ok := bag[name]
		if !ok || value == nil {
			return ""
		}

		return applyFilter(stringify(value), filter)
	})
}

func applyFilter(s, filter string) string {
	switch filter {
	case "":
		return s
	case "basename":
		if idx := strings.LastIndex(s, "."); idx >= 0 {
			return s[:idx]
		}
		return s
	case "dirname":
		if idx := strings.LastIndex(s, "/"); idx >= 0 {
			return s[:idx]
		}
		return s
	default:
		// Unknown filters render the bare value rather than failing a
		// whole response over a manifest typo.
		return s
	}
}

func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprintf("%v", v)
	}
}
