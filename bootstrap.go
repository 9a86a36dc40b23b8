package goadn

import (
	_ "embed"
	"fmt"
	"regexp"
	"sync"

	j "github.com/goccy/go-json"
)

// MetaschemaPackage is the namespace identifier of the embedded metaschema.
const MetaschemaPackage = "https://goadn.dev/metaschema/v1"

//go:embed metaschema.jadn
var metaschemaDoc []byte

// MetaschemaDocument returns a copy of the embedded metaschema source.
func MetaschemaDocument() []byte { return append([]byte(nil), metaschemaDoc...) }

var (
	metaOnce sync.Once
	metaPkg  *Package
	metaErr  error
)

// Metaschema returns the compiled metaschema package, performing the
// bootstrap on first use: the embedded document is validated as an instance
// of type Schema against a hand-built registry, then compiled normally and
// self-validated again. Any failure here is an engine defect, not a caller
// mistake, and is reported as a fatal initialization error on every call.
func Metaschema() (*Package, error) {
	metaOnce.Do(func() { metaPkg, metaErr = bootstrap() })
	return metaPkg, metaErr
}

func bootstrap() (*Package, error) {
	seed := bootstrapPackage()

	var inst map[string]any
	if err := j.Unmarshal(metaschemaDoc, &inst); err != nil {
		return nil, fmt.Errorf("goadn: metaschema document does not parse: %w", err)
	}
	if iss := seed.Validate("Schema", inst); len(iss) > 0 {
		return nil, fmt.Errorf("goadn: metaschema fails self-validation against the bootstrap registry: %w", iss)
	}

	doc, err := DecodeSchema(metaschemaDoc)
	if err != nil {
		return nil, fmt.Errorf("goadn: metaschema document does not decode: %w", err)
	}
	pkg, err := Compile(doc)
	if err != nil {
		return nil, fmt.Errorf("goadn: metaschema does not compile: %w", err)
	}
	// The document-driven compilation must agree with the hand-built form.
	if iss := pkg.Validate("Schema", inst); len(iss) > 0 {
		return nil, fmt.Errorf("goadn: compiled metaschema disagrees with the bootstrap registry: %w", iss)
	}
	return pkg, nil
}

// CheckSchema validates a raw document against the metaschema and then
// compiles it, returning every defect found at either stage.
func CheckSchema(doc *Schema) (*Package, error) {
	meta, err := Metaschema()
	if err != nil {
		return nil, err
	}
	inst, err := Instance(doc)
	if err != nil {
		return nil, err
	}
	if iss := meta.Validate("Schema", inst); len(iss) > 0 {
		return nil, iss
	}
	return Compile(doc)
}

// bootstrapPackage hand-builds the compiled form of the metaschema. This is
// the one registry in the engine not derived from a document: it breaks the
// recursion of validating the document that defines the notation's grammar.
// Every node below mirrors metaschema.jadn and is verified against it during
// bootstrap; change them together.
func bootstrapPackage() *Package {
	cc := &compiledConfig{
		maxBinary:      DefaultMaxBinary,
		maxString:      DefaultMaxString,
		maxElements:    1000,
		maxDefinitions: DefaultMaxDefinitions,
		sys:            DefaultSys,
		typeName:       regexp.MustCompile(DefaultTypeNamePat),
		fieldName:      regexp.MustCompile(`^[$A-Za-z][_A-Za-z0-9]{0,63}$`),
		nsid:           regexp.MustCompile(DefaultNSIDPat),
	}
	p := &Package{
		name:  MetaschemaPackage,
		cfg:   cc,
		types: map[string]*Type{},
		roots: []string{"Schema"},
	}

	num := func(n int) *int { return &n }
	optional := Options{MinBound: num(0)}

	define := func(t *Type) {
		if len(t.Fields) > 0 {
			t.byName = make(map[string]*CompiledField, len(t.Fields))
			t.byID = make(map[int]*CompiledField, len(t.Fields))
			for i := range t.Fields {
				f := &t.Fields[i]
				t.byName[f.Name] = f
				t.byID[f.ID] = f
			}
		}
		p.types[t.Name] = t
		p.order = append(p.order, t.Name)
	}

	// Anonymous stand-ins for base-kind-typed fields.
	plainString := &Type{Name: "String", Kind: KindString}
	plainInteger := &Type{Name: "Integer", Kind: KindInteger}
	regexString := &Type{Name: "String", Kind: KindString, Opts: Options{Format: "regex"}}

	define(&Type{Name: "Schema", Kind: KindRecord, Fields: []CompiledField{
		{ID: 1, Name: "info", TypeRef: "Information", Opts: optional},
		{ID: 2, Name: "types", TypeRef: "Types"},
	}})

	define(&Type{Name: "Information", Kind: KindMap, Opts: Options{MinBound: num(1)}, Fields: []CompiledField{
		{ID: 1, Name: "package", TypeRef: "Namespace"},
		{ID: 2, Name: "version", TypeRef: "String", Opts: optional, anon: plainString},
		{ID: 3, Name: "title", TypeRef: "String", Opts: optional, anon: plainString},
		{ID: 4, Name: "description", TypeRef: "String", Opts: optional, anon: plainString},
		{ID: 5, Name: "license", TypeRef: "String", Opts: optional, anon: plainString},
		{ID: 6, Name: "namespaces", TypeRef: "NsMap", Opts: optional},
		{ID: 7, Name: "roots", TypeRef: "Roots", Opts: optional},
		{ID: 8, Name: "exports", TypeRef: "Roots", Opts: optional},
		{ID: 9, Name: "config", TypeRef: "Config", Opts: optional},
	}})

	define(&Type{Name: "Namespace", Kind: KindString, Opts: Options{Format: "uri"}})

	define(&Type{Name: "NsMap", Kind: KindMapOf, Opts: Options{
		KeyType: "NSID", ElementType: "Namespace", MinBound: num(1),
	}})

	define(&Type{Name: "NSID", Kind: KindString, Opts: Options{Pattern: "$NSID"}, patternRe: cc.nsid})

	define(&Type{Name: "Roots", Kind: KindArrayOf, Opts: Options{
		ElementType: "TypeName", MinBound: num(1),
	}})

	define(&Type{Name: "Config", Kind: KindMap, Opts: Options{MinBound: num(1)}, Fields: []CompiledField{
		{ID: 1, Name: "$MaxBinary", TypeRef: "Integer", Opts: optional, anon: plainInteger},
		{ID: 2, Name: "$MaxString", TypeRef: "Integer", Opts: optional, anon: plainInteger},
		{ID: 3, Name: "$MaxElements", TypeRef: "Integer", Opts: optional, anon: plainInteger},
		{ID: 4, Name: "$MaxDefinitions", TypeRef: "Integer", Opts: optional, anon: plainInteger},
		{ID: 5, Name: "$Sys", TypeRef: "String", Opts: optional, anon: plainString},
		{ID: 6, Name: "$TypeName", TypeRef: "String", Opts: Options{MinBound: num(0), Format: "regex"}, anon: regexString},
		{ID: 7, Name: "$FieldName", TypeRef: "String", Opts: Options{MinBound: num(0), Format: "regex"}, anon: regexString},
		{ID: 8, Name: "$NSID", TypeRef: "String", Opts: Options{MinBound: num(0), Format: "regex"}, anon: regexString},
	}})

	define(&Type{Name: "Types", Kind: KindArrayOf, Opts: Options{ElementType: "Type"}})

	define(&Type{Name: "Type", Kind: KindArray, Fields: []CompiledField{
		{ID: 1, Name: "type_name", TypeRef: "TypeName"},
		{ID: 2, Name: "base_type", TypeRef: "BaseType"},
		{ID: 3, Name: "type_options", TypeRef: "Options"},
		{ID: 4, Name: "type_description", TypeRef: "Description", Opts: optional},
		{ID: 5, Name: "fields", TypeRef: "TypeFields", Opts: Options{TagID: num(2), MinBound: num(0)}},
	}})

	define(&Type{Name: "TypeName", Kind: KindString, Opts: Options{Pattern: "$TypeName"}, patternRe: cc.typeName})

	define(&Type{Name: "BaseType", Kind: KindEnumerated, Items: []Item{
		{ID: 1, Value: "Binary"}, {ID: 2, Value: "Boolean"}, {ID: 3, Value: "Integer"},
		{ID: 4, Value: "Number"}, {ID: 5, Value: "String"}, {ID: 6, Value: "Enumerated"},
		{ID: 7, Value: "Choice"}, {ID: 8, Value: "Array"}, {ID: 9, Value: "ArrayOf"},
		{ID: 10, Value: "Map"}, {ID: 11, Value: "MapOf"}, {ID: 12, Value: "Record"},
	}})

	define(&Type{Name: "Options", Kind: KindArrayOf, Opts: Options{
		ElementType: "Option", MaxBound: num(maxOptions),
	}})

	define(&Type{Name: "Option", Kind: KindString, Opts: Options{MinBound: num(1)}})

	define(&Type{Name: "Description", Kind: KindString})

	define(&Type{Name: "TypeFields", Kind: KindChoice, Fields: []CompiledField{
		{ID: 1, Name: "Binary", TypeRef: "Empty"},
		{ID: 2, Name: "Boolean", TypeRef: "Empty"},
		{ID: 3, Name: "Integer", TypeRef: "Empty"},
		{ID: 4, Name: "Number", TypeRef: "Empty"},
		{ID: 5, Name: "String", TypeRef: "Empty"},
		{ID: 6, Name: "Enumerated", TypeRef: "Items"},
		{ID: 7, Name: "Choice", TypeRef: "Fields"},
		{ID: 8, Name: "Array", TypeRef: "Fields"},
		{ID: 9, Name: "ArrayOf", TypeRef: "Empty"},
		{ID: 10, Name: "Map", TypeRef: "Fields"},
		{ID: 11, Name: "MapOf", TypeRef: "Empty"},
		{ID: 12, Name: "Record", TypeRef: "Fields"},
	}})

	define(&Type{Name: "Empty", Kind: KindArrayOf, Opts: Options{
		ElementType: "String", MinBound: num(0), MaxBound: num(0),
	}})

	define(&Type{Name: "Items", Kind: KindArrayOf, Opts: Options{ElementType: "Item"}})

	define(&Type{Name: "Item", Kind: KindArray, Fields: []CompiledField{
		{ID: 1, Name: "item_id", TypeRef: "FieldID"},
		{ID: 2, Name: "item_value", TypeRef: "String", anon: plainString},
		{ID: 3, Name: "item_description", TypeRef: "Description", Opts: optional},
	}})

	define(&Type{Name: "Fields", Kind: KindArrayOf, Opts: Options{ElementType: "Field"}})

	define(&Type{Name: "Field", Kind: KindArray, Fields: []CompiledField{
		{ID: 1, Name: "field_id", TypeRef: "FieldID"},
		{ID: 2, Name: "field_name", TypeRef: "FieldName"},
		{ID: 3, Name: "field_type", TypeRef: "TypeRef"},
		{ID: 4, Name: "field_options", TypeRef: "Options", Opts: optional},
		{ID: 5, Name: "field_description", TypeRef: "Description", Opts: optional},
	}})

	define(&Type{Name: "FieldID", Kind: KindInteger, Opts: Options{MinBound: num(0)}})

	define(&Type{Name: "FieldName", Kind: KindString, Opts: Options{Pattern: "$FieldName"}, patternRe: cc.fieldName})

	define(&Type{Name: "TypeRef", Kind: KindString, Opts: Options{MinBound: num(1)}})

	return p
}
