package goadn_test

import (
	"testing"

	goadn "github.com/reoring/goadn"
)

func TestDetectDuplicateKeys(t *testing.T) {
	if iss := goadn.DetectDuplicateKeys([]byte(`{"a": 1, "b": {"c": 2}}`)); len(iss) != 0 {
		t.Fatalf("clean document flagged: %v", iss)
	}

	iss := goadn.DetectDuplicateKeys([]byte(`{"a": 1, "a": 2}`))
	if len(iss) != 1 || iss[0].Code != goadn.CodeDuplicateKey || iss[0].Path != "/a" {
		t.Fatalf("want duplicate_key at /a, got %v", iss)
	}

	// Nesting: the path names the member inside its containers.
	iss = goadn.DetectDuplicateKeys([]byte(`{"items": [{"x": 1}, {"x": 1, "x": 2}]}`))
	if len(iss) != 1 || iss[0].Path != "/items/1/x" {
		t.Fatalf("want duplicate_key at /items/1/x, got %v", iss)
	}

	// A duplicate after other members reports only the duplicated key, not
	// the member the scan left behind.
	iss = goadn.DetectDuplicateKeys([]byte(`{"a": 1, "b": 2, "a": 9}`))
	if len(iss) != 1 || iss[0].Path != "/a" {
		t.Fatalf("want duplicate_key at /a, got %v", iss)
	}

	// The same key in sibling objects is not a duplicate.
	if iss := goadn.DetectDuplicateKeys([]byte(`[{"x": 1}, {"x": 2}]`)); len(iss) != 0 {
		t.Fatalf("sibling objects flagged: %v", iss)
	}
}

func TestDetectDuplicateKeys_ParseError(t *testing.T) {
	iss := goadn.DetectDuplicateKeys([]byte(`{"a": `))
	if len(iss) != 1 || iss[0].Code != goadn.CodeParseError {
		t.Fatalf("want parse_error, got %v", iss)
	}
}
