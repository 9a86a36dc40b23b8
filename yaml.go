package goadn

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	j "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// LoadYAML decodes a YAML package document and compiles it. The YAML stream
// must contain exactly one document; trailing documents are rejected rather
// than silently dropped.
func LoadYAML(data []byte) (*Package, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var node any
	if err := dec.Decode(&node); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("goadn: empty YAML document")
		}
		return nil, fmt.Errorf("goadn: decode YAML: %w", err)
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, errors.New("goadn: multi-document YAML is not a package document")
	}

	m := yamlAnyToStringMap(node)
	if m == nil {
		return nil, errors.New("goadn: YAML root must be a mapping")
	}
	// Route through the JSON tuple decoder so YAML and JSON documents share
	// one canonical parse.
	data, err := j.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("goadn: reshape YAML: %w", err)
	}
	return Loads(data)
}

// yamlAnyToStringMap converts YAML-decoded values (which may contain
// map[any]any) into JSON-like map[string]any recursively. Non-map roots
// return nil.
func yamlAnyToStringMap(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = yamlNormalizeValue(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			out[ks] = yamlNormalizeValue(vv)
		}
		return out
	default:
		return nil
	}
}

func yamlNormalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any, map[any]any:
		return yamlAnyToStringMap(t)
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = yamlNormalizeValue(t[i])
		}
		return arr
	default:
		return v
	}
}
