package goadn

import (
	"fmt"
	"sort"
	"strings"

	j "github.com/goccy/go-json"
)

// infoKeyOrder fixes the rendering order of package metadata keys so dumps
// are stable across runs.
var infoKeyOrder = []string{
	"package", "version", "title", "description", "license",
	"namespaces", "roots", "exports", "config",
}

// Dumps renders a schema document as canonical, human-diffable JSON: one
// metadata key per line, one type tuple per line with its fields nested, a
// blank line between top-level entries. Round-tripping the output through
// DecodeSchema yields an equivalent document.
func Dumps(s *Schema) (string, error) {
	v, err := Instance(s)
	if err != nil {
		return "", err
	}
	b := &strings.Builder{}
	b.WriteString("{\n")

	var sections []string
	if info, ok := v["info"].(map[string]any); ok {
		sec, err := dumpInfo(info)
		if err != nil {
			return "", err
		}
		sections = append(sections, sec)
	}
	types, _ := v["types"].([]any)
	sec, err := dumpTypes(types)
	if err != nil {
		return "", err
	}
	sections = append(sections, sec)

	b.WriteString(strings.Join(sections, ",\n\n"))
	b.WriteString("\n}\n")
	return b.String(), nil
}

func dumpInfo(info map[string]any) (string, error) {
	keys := make([]string, 0, len(info))
	for _, k := range infoKeyOrder {
		if _, ok := info[k]; ok {
			keys = append(keys, k)
		}
	}
	rest := make([]string, 0)
	for k := range info {
		known := false
		for _, o := range infoKeyOrder {
			if k == o {
				known = true
				break
			}
		}
		if !known {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	keys = append(keys, rest...)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		val, err := inlineJSON(info[k])
		if err != nil {
			return "", err
		}
		lines = append(lines, fmt.Sprintf("  %q: %s", k, val))
	}
	return " \"info\": {\n" + strings.Join(lines, ",\n") + "\n }", nil
}

func dumpTypes(types []any) (string, error) {
	tuples := make([]string, 0, len(types))
	for _, t := range types {
		tuple, err := dumpTypeTuple(t)
		if err != nil {
			return "", err
		}
		tuples = append(tuples, "  "+tuple)
	}
	return " \"types\": [\n" + strings.Join(tuples, ",\n\n") + "\n ]", nil
}

// dumpTypeTuple renders one type tuple, nesting a non-empty field list one
// field per line.
func dumpTypeTuple(v any) (string, error) {
	td, ok := v.([]any)
	if !ok || len(td) != 5 {
		return inlineJSON(v)
	}
	head := make([]string, 0, 4)
	for _, el := range td[:4] {
		s, err := inlineJSON(el)
		if err != nil {
			return "", err
		}
		head = append(head, s)
	}
	fields, ok := td[4].([]any)
	if !ok || len(fields) == 0 {
		return "[" + strings.Join(head, ", ") + ", []]", nil
	}
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		s, err := inlineJSON(f)
		if err != nil {
			return "", err
		}
		lines = append(lines, "    "+s)
	}
	return "[" + strings.Join(head, ", ") + ", [\n" + strings.Join(lines, ",\n") + "\n  ]]", nil
}

// inlineJSON renders a value on one line with a space after commas, matching
// the canonical dump style.
func inlineJSON(v any) (string, error) {
	switch t := v.(type) {
	case []any:
		parts := make([]string, 0, len(t))
		for _, el := range t {
			s, err := inlineJSON(el)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			s, err := inlineJSON(t[k])
			if err != nil {
				return "", err
			}
			parts = append(parts, fmt.Sprintf("%q: %s", k, s))
		}
		return "{" + strings.Join(parts, ", ") + "}", nil
	default:
		b, err := j.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}
