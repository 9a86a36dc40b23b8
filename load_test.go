package goadn_test

import (
	"strings"
	"testing"

	goadn "github.com/reoring/goadn"
)

const sampleDoc = `{
 "info": {"package": "https://example.com/sample/v1", "roots": ["Msg"]},
 "types": [["Msg", "Record", [], "", [[1, "subject", "String", [], ""]]]]
}`

func TestLoads(t *testing.T) {
	pkg, err := goadn.Loads([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Loads: %v", err)
	}
	if pkg.Name() != "https://example.com/sample/v1" {
		t.Fatalf("Name() = %q", pkg.Name())
	}
	if _, err := goadn.Loads([]byte(`{"types": `)); err == nil {
		t.Fatalf("truncated JSON accepted")
	}
}

func TestLoad_Reader(t *testing.T) {
	pkg, err := goadn.Load(strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if names := pkg.TypeNames(); len(names) != 1 || names[0] != "Msg" {
		t.Fatalf("TypeNames() = %v", names)
	}
}

func TestLoadYAML(t *testing.T) {
	doc := `
info:
  package: https://example.com/sample/v1
  roots: [Msg]
types:
  - [Msg, Record, [], "", [[1, subject, String, [], ""]]]
`
	pkg, err := goadn.LoadYAML([]byte(doc))
	if err != nil {
		t.Fatalf("LoadYAML: %v", err)
	}
	if iss := pkg.Validate("Msg", map[string]any{"subject": "hi"}); len(iss) != 0 {
		t.Fatalf("YAML-loaded package rejects valid instance: %v", iss)
	}
}

func TestLoadYAML_Rejections(t *testing.T) {
	if _, err := goadn.LoadYAML([]byte("")); err == nil {
		t.Fatalf("empty stream accepted")
	}
	if _, err := goadn.LoadYAML([]byte("types: []\n---\ntypes: []\n")); err == nil {
		t.Fatalf("multi-document stream accepted")
	}
	if _, err := goadn.LoadYAML([]byte("- just\n- a\n- list\n")); err == nil {
		t.Fatalf("non-mapping root accepted")
	}
}
