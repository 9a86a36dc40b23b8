package goadn_test

import (
	"strings"
	"testing"

	goadn "github.com/reoring/goadn"
)

func TestDecodeSchema_Tuples(t *testing.T) {
	doc := []byte(`{
	 "info": {"package": "https://example.com/a/v1", "roots": ["Message"]},
	 "types": [
	  ["Message", "Record", [], "A message", [
	    [1, "subject", "String", [], ""],
	    [2, "size", "Size", ["{0"], ""]
	  ]],
	  ["Size", "Integer", ["{0"], "", []],
	  ["Kind", "Enumerated", [], "", [
	    [1, "info", "informational"],
	    [2, "error", ""]
	  ]]
	 ]
	}`)
	s, err := goadn.DecodeSchema(doc)
	if err != nil {
		t.Fatalf("DecodeSchema: %v", err)
	}
	if s.Info == nil || s.Info.Package != "https://example.com/a/v1" {
		t.Fatalf("info not decoded: %+v", s.Info)
	}
	if len(s.Types) != 3 {
		t.Fatalf("expected 3 types, got %d", len(s.Types))
	}
	msg := s.Types[0]
	if msg.Name != "Message" || msg.Base != "Record" || len(msg.Fields) != 2 {
		t.Fatalf("message tuple decoded wrong: %+v", msg)
	}
	if f := msg.Fields[1]; f.ID != 2 || f.Name != "size" || f.TypeRef != "Size" || len(f.Options) != 1 {
		t.Fatalf("field tuple decoded wrong: %+v", f)
	}
	enum := s.Types[2]
	if len(enum.Items) != 2 || enum.Items[0].Value != "informational" {
		t.Fatalf("enumerated items decoded wrong: %+v", enum.Items)
	}
}

func TestDecodeSchema_ShortFormsNormalize(t *testing.T) {
	// Trailing description and fields may be omitted on input.
	doc := []byte(`{"types": [
	  ["Size", "Integer", ["{0"]],
	  ["Name", "String"],
	  ["Pair", "Array", [], "", [[1, "left", "Name"], [2, "right", "Name", ["{0"]]]]
	]}`)
	s, err := goadn.DecodeSchema(doc)
	if err != nil {
		t.Fatalf("DecodeSchema: %v", err)
	}
	if s.Types[1].Name != "Name" || len(s.Types[1].Options) != 0 {
		t.Fatalf("short type tuple decoded wrong: %+v", s.Types[1])
	}
	pair := s.Types[2]
	if len(pair.Fields) != 2 || pair.Fields[0].Options != nil || len(pair.Fields[1].Options) != 1 {
		t.Fatalf("short field tuples decoded wrong: %+v", pair.Fields)
	}
}

func TestDecodeSchema_BadTupleLength(t *testing.T) {
	if _, err := goadn.DecodeSchema([]byte(`{"types": [["OnlyName"]]}`)); err == nil {
		t.Fatalf("expected error for 1-element type tuple")
	}
	if _, err := goadn.DecodeSchema([]byte(`{"types": [["P", "Array", [], "", [[1, "x"]]]]}`)); err == nil {
		t.Fatalf("expected error for 2-element field tuple")
	}
}

func TestInstance_CanonicalShape(t *testing.T) {
	doc := []byte(`{"types": [["Size", "Integer", ["{0"]]]}`)
	s, err := goadn.DecodeSchema(doc)
	if err != nil {
		t.Fatalf("DecodeSchema: %v", err)
	}
	inst, err := goadn.Instance(s)
	if err != nil {
		t.Fatalf("Instance: %v", err)
	}
	types, ok := inst["types"].([]any)
	if !ok || len(types) != 1 {
		t.Fatalf("types not reshaped: %v", inst)
	}
	tuple, ok := types[0].([]any)
	if !ok || len(tuple) != 5 {
		t.Fatalf("short tuple should normalize to 5 elements, got %v", types[0])
	}
}

func TestDumps_RoundTrips(t *testing.T) {
	s, err := goadn.DecodeSchema(goadn.MetaschemaDocument())
	if err != nil {
		t.Fatalf("DecodeSchema: %v", err)
	}
	out, err := goadn.Dumps(s)
	if err != nil {
		t.Fatalf("Dumps: %v", err)
	}
	if !strings.Contains(out, `"types": [`) {
		t.Fatalf("missing types section:\n%s", out)
	}
	s2, err := goadn.DecodeSchema([]byte(out))
	if err != nil {
		t.Fatalf("re-decode dumped schema: %v\n%s", err, out)
	}
	if len(s2.Types) != len(s.Types) {
		t.Fatalf("type count changed across dump: %d != %d", len(s2.Types), len(s.Types))
	}
	if _, err := goadn.Compile(s2); err != nil {
		t.Fatalf("dumped schema no longer compiles: %v", err)
	}
}
