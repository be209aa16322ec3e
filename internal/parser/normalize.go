package parser

import (
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"
)

var (
	integerLitRe = regexp.MustCompile(`^-?\d+$`)
	decimalLitRe = regexp.MustCompile(`^-?\d+\.\d+$`)
	bareKeyRe    = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
)

// normalizeValue applies grammar-level value normalization, before any
// ParamSpec-driven coercion: surrounding quotes are stripped, bare literals
// converted, numeric literals parsed. Everything else stays a string.
func normalizeValue(token string) any {
	token = strings.TrimSpace(token)

	// Quoted tokens are always strings; strip the quotes and stop.
	if len(token) >= 2 {
		first, last := token[0], token[len(token)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return token[1 : len(token)-1]
		}
	}

	switch token {
	case "true":
		return true
	case "false":
		return false
	case "null", "undefined":
		return nil
	}

	if integerLitRe.MatchString(token) {
		if n, err := strconv.ParseInt(token, 10, 64); err == nil {
			return n
		}
	}
	if decimalLitRe.MatchString(token) {
		if f, err := strconv.ParseFloat(token, 64); err == nil {
			return f
		}
	}

	return token
}

// parseLenientObject parses a brace body. Strict JSON is attempted first;
// on failure, bare (unquoted) object keys are auto-quoted and the parse
// retried, so "({name: "Ada"})" works without ceremony.
func parseLenientObject(body string) (map[string]any, error) {
	var args map[string]any
	if err := json.Unmarshal([]byte(body), &args); err == nil {
		return args, nil
	}

	quoted := bareKeyRe.ReplaceAllString(body, `$1"$2":`)
	if err := json.Unmarshal([]byte(quoted), &args); err != nil {
		return nil, err
	}
	return args, nil
}

// splitTokens splits a CLI-style tail on whitespace, honoring quotes.
func splitTokens(s string) ([]string, error) {
	return splitOn(s, func(r rune) bool { return r == ' ' || r == '\t' }, true)
}

// splitArgs splits a function-call body on commas outside quotes. Commas
// inside nested array/object literals are not understood; that is a
// documented grammar limitation.
func splitArgs(s string) ([]string, error) {
	return splitOn(s, func(r rune) bool { return r == ',' }, false)
}

func splitOn(s string, isSep func(rune) bool, dropEmpty bool) ([]string, error) {
	var (
		tokens  []string
		current strings.Builder
		quote   rune
	)

	flush := func() {
		tok := current.String()
		current.Reset()
		if dropEmpty && strings.TrimSpace(tok) == "" {
			return
		}
		tokens = append(tokens, tok)
	}

	for _, r := range s {
		switch {
		case quote != 0:
			current.WriteRune(r)
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
			current.WriteRune(r)
		case isSep(r):
			flush()
		default:
			current.WriteRune(r)
		}
	}
	if quote != 0 {
		return nil, errors.New("unterminated quote")
	}
	flush()

	return tokens, nil
}
