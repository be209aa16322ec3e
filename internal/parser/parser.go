// Package parser converts one line of text (or a structured object) into a
// canonical command. Four grammar forms are recognized, in this precedence:
//
//  1. CLI-style: "name arg1 arg2 key=value". Attempted only when the text
//     after the command name is not wrapped in parentheses or braces, and
//     either the name is unknown to the manifest (the dispatcher reports
//     unknown commands, not the parser) or the command declares at least one
//     required parameter. A known command whose parameters are all optional
//     never consumes a positional tail; "cmd optionalText" stays a syntax
//     error rather than being misread as a positional argument.
//  2. Object-call: "name({ ... })". The brace body is parsed leniently: a
//     strict JSON parse is attempted first, then bare object keys are
//     auto-quoted and the parse retried.
//  3. Function-call: "name(arg1, arg2, key=value)". The body is split on
//     commas outside quotes; commas inside nested array or object literals
//     are not supported (known limitation — use the object-call form).
//     Positional tokens bind, in declaration order, to the command's
//     required parameters only.
//  4. Simple: a bare identifier, equivalent to "name()".
//
// Malformed grammar yields a *ParseError, never a panic.
package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/manifest"
)

// ParseError describes malformed input grammar.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s", e.Reason)
}

var (
	identRe      = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)
	objectCallRe = regexp.MustCompile(`(?s)^([A-Za-z_][A-Za-z0-9_-]*)\s*\(\s*(\{.*\})\s*\)$`)
	funcCallRe   = regexp.MustCompile(`(?s)^([A-Za-z_][A-Za-z0-9_-]*)\s*\((.*)\)$`)
	namedArgRe   = regexp.MustCompile(`(?s)^([A-Za-z_][A-Za-z0-9_]*)=(.*)$`)
)

// Parser turns raw invocations into canonical commands. It consults the
// manifest only to disambiguate the CLI-style form; name resolution and
// validation remain the dispatcher's job.
type Parser struct {
	contract *manifest.Manifest
}

// New creates a parser bound to a manifest.
func New(contract *manifest.Manifest) *Parser {
	return &Parser{contract: contract}
}

// Parse converts one line of input into a canonical command.
func (p *Parser) Parse(input string) (*domain.Command, error) {
	line := strings.TrimSpace(input)
	if line == "" {
		return nil, &ParseError{Input: input, Reason: "empty input"}
	}

	// Form 1: CLI-style.
	if name, rest, ok := splitFirstToken(line); ok && identRe.MatchString(name) {
		wrapped := strings.HasPrefix(rest, "(") || strings.HasPrefix(rest, "{")
		if !wrapped {
			spec, known := p.contract.Command(name)
			if !known || len(spec.RequiredParams()) > 0 {
				return p.parseCLI(name, rest, line)
			}
		}
	}

	// Form 2: Object-call.
	if m := objectCallRe.FindStringSubmatch(line); m != nil {
		return parseObjectCall(m[1], m[2], line)
	}

	// Form 3: Function-call.
	if m := funcCallRe.FindStringSubmatch(line); m != nil {
		return p.parseFuncCall(m[1], m[2], line)
	}

	// Form 4: Simple identifier, rewritten to "name()".
	if identRe.MatchString(line) {
		return p.parseFuncCall(line, "", line)
	}

	return nil, &ParseError{Input: input, Reason: fmt.Sprintf("unrecognized command syntax: %s", line)}
}

// parseCLI handles "name arg1 arg2 key=value".
func (p *Parser) parseCLI(name, rest, input string) (*domain.Command, error) {
	tokens, err := splitTokens(rest)
	if err != nil {
		return nil, &ParseError{Input: input, Reason: err.Error()}
	}

	cmd := domain.NewCommand(name)
	var positional []any
	for _, tok := range tokens {
		if m := namedArgRe.FindStringSubmatch(tok); m != nil {
			cmd.Args[m[1]] = normalizeValue(m[2])
			continue
		}
		positional = append(positional, normalizeValue(tok))
	}

	if err := p.bindPositional(cmd, positional, input); err != nil {
		return nil, err
	}
	return cmd, nil
}

// parseObjectCall handles "name({ ... })" with a lenient JSON body.
func parseObjectCall(name, body, input string) (*domain.Command, error) {
	args, err := parseLenientObject(body)
	if err != nil {
		return nil, &ParseError{Input: input, Reason: fmt.Sprintf("invalid object body: %v", err)}
	}
	cmd := domain.NewCommand(name)
	cmd.Args = args
	return cmd, nil
}

// parseFuncCall handles "name(arg1, arg2, key=value)" and the bare form.
func (p *Parser) parseFuncCall(name, body, input string) (*domain.Command, error) {
	cmd := domain.NewCommand(name)

	body = strings.TrimSpace(body)
	if body == "" {
		return cmd, nil
	}

	tokens, err := splitArgs(body)
	if err != nil {
		return nil, &ParseError{Input: input, Reason: err.Error()}
	}

	var positional []any
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if m := namedArgRe.FindStringSubmatch(tok); m != nil {
			cmd.Args[m[1]] = normalizeValue(strings.TrimSpace(m[2]))
			continue
		}
		positional = append(positional, normalizeValue(tok))
	}

	if err := p.bindPositional(cmd, positional, input); err != nil {
		return nil, err
	}
	return cmd, nil
}

// bindPositional assigns positional values, in order, to the command's
// required parameters. Unknown commands get synthetic argument names; the
// dispatcher rejects them by name before the arguments matter.
func (p *Parser) bindPositional(cmd *domain.Command, positional []any, input string) error {
	if len(positional) == 0 {
		return nil
	}

	spec, known := p.contract.Command(cmd.Name)
	if !known {
		for i, v := range positional {
			cmd.Args[fmt.Sprintf("arg%d", i+1)] = v
		}
		return nil
	}

	required := spec.RequiredParams()
	if len(positional) > len(required) {
		return &ParseError{Input: input, Reason: fmt.Sprintf(
			"too many positional parameters for %q: got %d, at most %d required parameters accept them",
			cmd.Name, len(positional), len(required))}
	}
	for i, v := range positional {
		cmd.Args[required[i]] = v
	}
	return nil
}

// FromObject accepts the structured invocation form: a native value shaped
// like {name, args}, e.g. a decoded JSON request body.
func FromObject(v any) (*domain.Command, error) {
	var cmd domain.Command
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &cmd,
		TagName: "json",
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(v); err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("invalid structured command: %v", err)}
	}
	if cmd.Name == "" {
		return nil, &ParseError{Reason: "structured command requires a name"}
	}
	if cmd.Args == nil {
		cmd.Args = make(map[string]any)
	}
	return &cmd, nil
}

// splitFirstToken splits off the first whitespace-delimited token.
// ok is false when there is no remainder.
func splitFirstToken(line string) (name, rest string, ok bool) {
	idx := strings.IndexAny(line, " \t")
	if idx < 0 {
		return line, "", false
	}
	return line[:idx], strings.TrimSpace(line[idx+1:]), true
}
