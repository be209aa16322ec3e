// Package validator lints a manifest for problems that are legal but almost
// certainly unintended: typos in template placeholders, state keys nothing
// ever writes, sources nothing ever calls. Load-time validation rejects
// broken manifests; the linter flags suspicious ones.
package validator

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/aretw0/arbor/pkg/manifest"
	"github.com/aretw0/arbor/pkg/schema"
)

var placeholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*(?:\|\s*([A-Za-z]+)\s*)?\}\}`)

// knownFilters mirrors the filters the renderer implements. Unknown ones
// render the bare value at runtime, so a typo degrades silently.
var knownFilters = map[string]bool{"basename": true, "dirname": true}

// Lint inspects a loaded manifest and returns human-readable warnings in a
// stable order. An empty slice means the manifest is clean.
func Lint(m *manifest.Manifest) []string {
	var warnings []string

	warnings = append(warnings, lintSources(m)...)
	warnings = append(warnings, lintStateKeys(m)...)

	for i := range m.Commands {
		cmd := &m.Commands[i]
		warnings = append(warnings, lintTemplates(cmd)...)
		warnings = append(warnings, lintDefaults(cmd)...)
	}

	return warnings
}

// lintSources reports declared sources no command references.
func lintSources(m *manifest.Manifest) []string {
	used := make(map[string]bool)
	for i := range m.Commands {
		if src := m.Commands[i].Source; src != "" {
			used[src] = true
		}
	}

	names := make([]string, 0, len(m.Sources))
	for name := range m.Sources {
		names = append(names, name)
	}
	sort.Strings(names)

	var warnings []string
	for _, name := range names {
		if !used[name] {
			warnings = append(warnings, fmt.Sprintf("source %q is declared but no command uses it", name))
		}
	}
	return warnings
}

// lintStateKeys reports runtimeFallback keys that nothing can ever populate:
// not seeded by stateDefaults and not written by any setState rule. Such a
// fallback always misses, so a required parameter stays effectively required.
func lintStateKeys(m *manifest.Manifest) []string {
	written := make(map[string]bool)
	for key := range m.StateDefaults {
		written[key] = true
	}
	for i := range m.Commands {
		se := m.Commands[i].SideEffects
		if se == nil {
			continue
		}
		for _, rule := range se.SetState {
			written[rule.Key] = true
		}
	}

	var warnings []string
	for i := range m.Commands {
		cmd := &m.Commands[i]
		for _, pname := range cmd.ParamOrder() {
			key := cmd.Parameters[pname].RuntimeFallback
			if key != "" && !written[key] {
				warnings = append(warnings, fmt.Sprintf(
					"command %q, parameter %q: runtimeFallback %q is never seeded or set by any command",
					cmd.Name, pname, key))
			}
		}
	}
	return warnings
}

// lintTemplates checks every template a command renders for placeholders
// that cannot resolve and filters the renderer does not know.
func lintTemplates(cmd *manifest.CommandSpec) []string {
	bag := make(map[string]bool)
	for _, name := range cmd.ParamOrder() {
		bag[name] = true
	}
	if cmd.Kind() == manifest.CommandExternalMethod {
		// The handler return value joins the bag after execution.
		bag["result"] = true
	}

	var warnings []string
	check := func(where, tmpl string) {
		for _, match := range placeholderRe.FindAllStringSubmatch(tmpl, -1) {
			name, filter := match[1], match[2]
			if !bag[name] {
				warnings = append(warnings, fmt.Sprintf(
					"command %q: %s references %q, which is not a parameter and renders empty",
					cmd.Name, where, name))
			}
			if filter != "" && !knownFilters[filter] {
				warnings = append(warnings, fmt.Sprintf(
					"command %q: %s uses unknown filter %q, which is ignored",
					cmd.Name, where, filter))
			}
		}
	}

	check("successOutput", cmd.SuccessOutput)
	if cmd.SideEffects != nil {
		for _, rule := range cmd.SideEffects.SetState {
			if rule.Template != "" {
				check(fmt.Sprintf("setState %q template", rule.Key), rule.Template)
			}
		}
	}
	return warnings
}

// lintDefaults flags default values a parameter's own type would reject.
// Defaults bypass coercion at dispatch time, so a bad one surfaces as a
// confusing handler error instead of a validation message.
func lintDefaults(cmd *manifest.CommandSpec) []string {
	var warnings []string
	for _, pname := range cmd.ParamOrder() {
		spec := cmd.Parameters[pname]
		if spec.Default != nil && spec.Type != "" {
			typ, err := schema.ParseType(spec.Type)
			if err == nil {
				if _, cerr := typ.Coerce(spec.Default); cerr != nil {
					warnings = append(warnings, fmt.Sprintf(
						"command %q, parameter %q: default %v does not satisfy type %s",
						cmd.Name, pname, spec.Default, typ.Name()))
				}
			}
		}
		if spec.Required && spec.Default != nil {
			warnings = append(warnings, fmt.Sprintf(
				"command %q, parameter %q: required with a default, so it can never be reported missing",
				cmd.Name, pname))
		}
	}
	return warnings
}
