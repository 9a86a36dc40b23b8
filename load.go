package goadn

import (
	"fmt"
	"io"

	j "github.com/goccy/go-json"
)

// DecodeSchema parses a JSON package document into its raw tuple form
// without compiling it.
func DecodeSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := j.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("goadn: decode schema: %w", err)
	}
	return &s, nil
}

// Loads decodes a JSON package document and compiles it into a Package.
// Compile errors come back as Issues.
func Loads(data []byte) (*Package, error) {
	s, err := DecodeSchema(data)
	if err != nil {
		return nil, err
	}
	return Compile(s)
}

// Load reads a JSON package document from r and compiles it.
func Load(r io.Reader) (*Package, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("goadn: read schema: %w", err)
	}
	return Loads(data)
}

// Instance re-encodes a raw schema document as the plain JSON-like value
// shape the validator consumes (maps, slices, strings, numbers), so a schema
// can be validated against the metaschema as ordinary instance data.
func Instance(s *Schema) (map[string]any, error) {
	data, err := j.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("goadn: encode schema: %w", err)
	}
	var v map[string]any
	if err := j.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("goadn: reshape schema: %w", err)
	}
	return v, nil
}
