package goadn_test

import (
	"testing"

	goadn "github.com/reoring/goadn"
)

func mustIssues(t *testing.T, err error) goadn.Issues {
	t.Helper()
	iss, ok := goadn.AsIssues(err)
	if !ok {
		t.Fatalf("expected Issues error, got %v", err)
	}
	return iss
}

func hasCode(iss goadn.Issues, code string) bool {
	for _, it := range iss {
		if it.Code == code {
			return true
		}
	}
	return false
}

func countCode(iss goadn.Issues, code string) int {
	n := 0
	for _, it := range iss {
		if it.Code == code {
			n++
		}
	}
	return n
}

func TestCompile_Minimal(t *testing.T) {
	pkg, err := goadn.Compile(&goadn.Schema{
		Info: &goadn.Information{Package: "https://example.com/a/v1", Roots: []string{"Name"}},
		Types: []goadn.TypeDef{
			{Name: "Name", Base: "String", Options: []string{"{1", "}64"}},
		},
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if got := pkg.Roots(); len(got) != 1 || got[0] != "Name" {
		t.Fatalf("Roots() = %v", got)
	}
	if _, ok := pkg.Type("Name"); !ok {
		t.Fatalf("compiled type missing")
	}
}

func TestCompile_DuplicateType(t *testing.T) {
	_, err := goadn.Compile(&goadn.Schema{Types: []goadn.TypeDef{
		{Name: "Thing", Base: "String"},
		{Name: "Thing", Base: "Integer"},
	}})
	iss := mustIssues(t, err)
	if !hasCode(iss, goadn.CodeDuplicateType) {
		t.Fatalf("expected duplicate_type, got %v", iss)
	}
}

func TestCompile_MinExceedsMax(t *testing.T) {
	_, err := goadn.Compile(&goadn.Schema{Types: []goadn.TypeDef{
		{Name: "Bad", Base: "String", Options: []string{"{5", "}2"}},
	}})
	iss := mustIssues(t, err)
	if !hasCode(iss, goadn.CodeInvalidOption) {
		t.Fatalf("expected invalid_option for min>max, got %v", iss)
	}
}

func TestCompile_DuplicateEnumIDs(t *testing.T) {
	_, err := goadn.Compile(&goadn.Schema{Types: []goadn.TypeDef{
		{Name: "Kind", Base: "Enumerated", Items: []goadn.Item{
			{ID: 1, Value: "a"},
			{ID: 1, Value: "b"},
		}},
	}})
	iss := mustIssues(t, err)
	if !hasCode(iss, goadn.CodeDuplicateField) {
		t.Fatalf("expected duplicate_field for item ids, got %v", iss)
	}
}

func TestCompile_OptionLegalityPerKind(t *testing.T) {
	cases := []struct {
		name string
		td   goadn.TypeDef
		code string
	}{
		{"element type on Record", goadn.TypeDef{Name: "R", Base: "Record", Options: []string{"*Elem"},
			Fields: []goadn.Field{{ID: 1, Name: "a", TypeRef: "String"}}}, goadn.CodeInvalidOption},
		{"cardinality on Enumerated", goadn.TypeDef{Name: "E", Base: "Enumerated", Options: []string{"{1"},
			Items: []goadn.Item{{ID: 1, Value: "x"}}}, goadn.CodeInvalidOption},
		{"MapOf without key type", goadn.TypeDef{Name: "M", Base: "MapOf", Options: []string{"*String"}}, goadn.CodeInvalidOption},
		{"ArrayOf without element type", goadn.TypeDef{Name: "A", Base: "ArrayOf"}, goadn.CodeInvalidOption},
		{"pattern on Integer", goadn.TypeDef{Name: "I", Base: "Integer", Options: []string{"%$TypeName"}}, goadn.CodeInvalidOption},
		{"discriminator on type", goadn.TypeDef{Name: "T", Base: "String", Options: []string{"&1"}}, goadn.CodeInvalidOption},
		{"format for wrong kind", goadn.TypeDef{Name: "F", Base: "Integer", Options: []string{"/uri"}}, goadn.CodeInvalidFormat},
		{"unknown format", goadn.TypeDef{Name: "G", Base: "String", Options: []string{"/warp"}}, goadn.CodeInvalidFormat},
		{"unknown pattern name", goadn.TypeDef{Name: "P", Base: "String", Options: []string{"%$Nope"}}, goadn.CodeInvalidOption},
		{"unique off ArrayOf", goadn.TypeDef{Name: "Q", Base: "String", Options: []string{"q"}}, goadn.CodeInvalidOption},
		{"reserved type name", goadn.TypeDef{Name: "String", Base: "String"}, goadn.CodeInvalidTypeName},
		{"unknown base type", goadn.TypeDef{Name: "U", Base: "Struct"}, goadn.CodeInvalidBaseType},
	}
	for _, tc := range cases {
		_, err := goadn.Compile(&goadn.Schema{Types: []goadn.TypeDef{tc.td}})
		iss := mustIssues(t, err)
		if !hasCode(iss, tc.code) {
			t.Errorf("%s: expected %s, got %v", tc.name, tc.code, iss)
		}
	}
}

func TestCompile_FieldChecks(t *testing.T) {
	_, err := goadn.Compile(&goadn.Schema{Types: []goadn.TypeDef{
		{Name: "R", Base: "Record", Fields: []goadn.Field{
			{ID: 1, Name: "a", TypeRef: "String"},
			{ID: 1, Name: "b", TypeRef: "String"}, // duplicate id
			{ID: 2, Name: "a", TypeRef: "String"}, // duplicate name
			{ID: 3, Name: "BadName", TypeRef: "String"},
			{ID: 4, Name: "missing", TypeRef: "Nope"},
		}},
	}})
	iss := mustIssues(t, err)
	if countCode(iss, goadn.CodeDuplicateField) != 2 {
		t.Errorf("expected two duplicate_field issues, got %v", iss)
	}
	if !hasCode(iss, goadn.CodeInvalidFieldName) {
		t.Errorf("expected invalid_field_name, got %v", iss)
	}
	if !hasCode(iss, goadn.CodeUnresolvedType) {
		t.Errorf("expected unresolved_type, got %v", iss)
	}
}

func TestCompile_Discriminators(t *testing.T) {
	choice := goadn.TypeDef{Name: "Payload", Base: "Choice", Fields: []goadn.Field{
		{ID: 1, Name: "text", TypeRef: "String"},
		{ID: 2, Name: "count", TypeRef: "Integer"},
	}}

	// Well-formed: selector exists, is plain, and the field is a Choice.
	_, err := goadn.Compile(&goadn.Schema{Types: []goadn.TypeDef{choice,
		{Name: "Msg", Base: "Record", Fields: []goadn.Field{
			{ID: 1, Name: "kind", TypeRef: "String"},
			{ID: 2, Name: "body", TypeRef: "Payload", Options: []string{"&1"}},
		}},
	}})
	if err != nil {
		t.Fatalf("well-formed discriminator rejected: %v", err)
	}

	// Selector id does not exist.
	_, err = goadn.Compile(&goadn.Schema{Types: []goadn.TypeDef{choice,
		{Name: "Msg", Base: "Record", Fields: []goadn.Field{
			{ID: 1, Name: "kind", TypeRef: "String"},
			{ID: 2, Name: "body", TypeRef: "Payload", Options: []string{"&9"}},
		}},
	}})
	if !hasCode(mustIssues(t, err), goadn.CodeInvalidDiscriminator) {
		t.Fatalf("expected invalid_discriminator for missing selector")
	}

	// Discriminator chain: the selector is itself discriminated.
	_, err = goadn.Compile(&goadn.Schema{Types: []goadn.TypeDef{choice,
		{Name: "Msg", Base: "Record", Fields: []goadn.Field{
			{ID: 1, Name: "kind", TypeRef: "String"},
			{ID: 2, Name: "inner", TypeRef: "Payload", Options: []string{"&1"}},
			{ID: 3, Name: "outer", TypeRef: "Payload", Options: []string{"&2"}},
		}},
	}})
	if !hasCode(mustIssues(t, err), goadn.CodeInvalidDiscriminator) {
		t.Fatalf("expected invalid_discriminator for chain")
	}

	// Discriminated field must reference a Choice.
	_, err = goadn.Compile(&goadn.Schema{Types: []goadn.TypeDef{choice,
		{Name: "Msg", Base: "Record", Fields: []goadn.Field{
			{ID: 1, Name: "kind", TypeRef: "String"},
			{ID: 2, Name: "body", TypeRef: "Payload", Options: []string{"&1"}},
			{ID: 3, Name: "extra", TypeRef: "Integer", Options: []string{"&1"}},
		}},
	}})
	if !hasCode(mustIssues(t, err), goadn.CodeInvalidDiscriminator) {
		t.Fatalf("expected invalid_discriminator for non-Choice target")
	}
}

func TestCompile_ResolutionPathsSurviveSkippedTypes(t *testing.T) {
	// The duplicate at document index 1 is never registered; issues found
	// while resolving the type at index 2 must still point at /types/2.
	_, err := goadn.Compile(&goadn.Schema{Types: []goadn.TypeDef{
		{Name: "Dup", Base: "String"},
		{Name: "Dup", Base: "Integer"},
		{Name: "Wrap", Base: "Record", Fields: []goadn.Field{
			{ID: 1, Name: "thing", TypeRef: "Nope"},
		}},
	}})
	iss := mustIssues(t, err)
	found := false
	for _, it := range iss {
		if it.Code == goadn.CodeUnresolvedType {
			found = true
			if it.Path != "/types/2/fields/0" {
				t.Fatalf("unresolved_type path = %q, want /types/2/fields/0", it.Path)
			}
		}
	}
	if !found {
		t.Fatalf("expected unresolved_type, got %v", iss)
	}
}

func TestCompile_Namespaces(t *testing.T) {
	// Known prefix, unlinked package: the reference stays opaque and compiles.
	_, err := goadn.Compile(&goadn.Schema{
		Info: &goadn.Information{
			Package:    "https://example.com/a/v1",
			Namespaces: map[string]string{"th": "https://example.com/th/v1"},
		},
		Types: []goadn.TypeDef{
			{Name: "Wrap", Base: "Record", Fields: []goadn.Field{
				{ID: 1, Name: "thing", TypeRef: "th:Thing"},
			}},
		},
	})
	if err != nil {
		t.Fatalf("opaque cross-package reference rejected: %v", err)
	}

	// Unknown prefix fails.
	_, err = goadn.Compile(&goadn.Schema{
		Info: &goadn.Information{Package: "https://example.com/a/v1"},
		Types: []goadn.TypeDef{
			{Name: "Wrap", Base: "Record", Fields: []goadn.Field{
				{ID: 1, Name: "thing", TypeRef: "xx:Thing"},
			}},
		},
	})
	if !hasCode(mustIssues(t, err), goadn.CodeUnknownNamespace) {
		t.Fatalf("expected unknown_namespace")
	}
}

func TestCompile_InvalidRoot(t *testing.T) {
	_, err := goadn.Compile(&goadn.Schema{
		Info:  &goadn.Information{Package: "https://example.com/a/v1", Roots: []string{"Ghost"}},
		Types: []goadn.TypeDef{{Name: "Name", Base: "String"}},
	})
	if !hasCode(mustIssues(t, err), goadn.CodeInvalidRoot) {
		t.Fatalf("expected invalid_root")
	}
}

func TestCompile_ExportsFallback(t *testing.T) {
	pkg, err := goadn.Compile(&goadn.Schema{
		Info:  &goadn.Information{Package: "https://example.com/a/v1", Exports: []string{"Name"}},
		Types: []goadn.TypeDef{{Name: "Name", Base: "String"}},
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if got := pkg.Roots(); len(got) != 1 || got[0] != "Name" {
		t.Fatalf("deprecated exports not honored: %v", got)
	}

	// roots wins when both are present.
	pkg, err = goadn.Compile(&goadn.Schema{
		Info: &goadn.Information{
			Package: "https://example.com/a/v1",
			Roots:   []string{"Name"},
			Exports: []string{"Other"},
		},
		Types: []goadn.TypeDef{
			{Name: "Name", Base: "String"},
			{Name: "Other", Base: "String"},
		},
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if got := pkg.Roots(); len(got) != 1 || got[0] != "Name" {
		t.Fatalf("roots should shadow exports: %v", got)
	}
}

func TestCompile_AccumulatesAllErrors(t *testing.T) {
	_, err := goadn.Compile(&goadn.Schema{Types: []goadn.TypeDef{
		{Name: "Bad", Base: "String", Options: []string{"{5", "}2", "??"}},
		{Name: "Bad", Base: "Integer"},
		{Name: "lower", Base: "String"},
	}})
	iss := mustIssues(t, err)
	for _, code := range []string{
		goadn.CodeMalformedOption, goadn.CodeInvalidOption,
		goadn.CodeDuplicateType, goadn.CodeInvalidTypeName,
	} {
		if !hasCode(iss, code) {
			t.Errorf("expected %s among accumulated errors, got %v", code, iss)
		}
	}
}

func TestCompile_ConfigOverrides(t *testing.T) {
	// A package may loosen the type-name grammar for its own definitions.
	pkg, err := goadn.Compile(&goadn.Schema{
		Info: &goadn.Information{
			Package: "https://example.com/a/v1",
			Config:  &goadn.Config{TypeName: "^[A-Za-z][A-Za-z0-9]*$"},
		},
		Types: []goadn.TypeDef{{Name: "lower", Base: "String"}},
	})
	if err != nil {
		t.Fatalf("Compile with relaxed grammar: %v", err)
	}
	if _, ok := pkg.Type("lower"); !ok {
		t.Fatalf("type defined under relaxed grammar missing")
	}

	// A config pattern that is not a valid regular expression is a document
	// error reported at its config key.
	_, err = goadn.Compile(&goadn.Schema{
		Info: &goadn.Information{
			Package: "https://example.com/a/v1",
			Config:  &goadn.Config{TypeName: "(["},
		},
		Types: []goadn.TypeDef{{Name: "Name", Base: "String"}},
	})
	iss := mustIssues(t, err)
	if !hasCode(iss, goadn.CodeParseError) {
		t.Fatalf("expected parse_error for bad config regex, got %v", iss)
	}
}

func TestCompile_TooManyOptions(t *testing.T) {
	opts := make([]string, 11)
	for i := range opts {
		opts[i] = "/uri"
	}
	opts[0] = "{1"
	_, err := goadn.Compile(&goadn.Schema{Types: []goadn.TypeDef{
		{Name: "S", Base: "String", Options: opts},
	}})
	if !hasCode(mustIssues(t, err), goadn.CodeTooLong) {
		t.Fatalf("expected too_long for oversized option list")
	}
}
