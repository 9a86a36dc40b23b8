package goadn

import (
	"regexp"
	"strings"

	"github.com/reoring/goadn/i18n"
)

// Package is a compiled, immutable type registry for one namespace-qualified
// package. Construction happens once in Compile; afterwards every method only
// reads, so a Package is safe for concurrent use without locking. Reloading a
// schema produces a new Package; callers swap references.
type Package struct {
	name       string // namespace identifier from info.package
	info       *Information
	cfg        *compiledConfig
	types      map[string]*Type
	order      []string          // declaration order of type names
	namespaces map[string]string // prefix -> namespace identifier
	roots      []string
	linked     map[string]*Package // namespace identifier -> compiled package
}

// Type is one compiled type node: base kind, decoded options and compiled
// fields. It never exists independent of its owning Package.
type Type struct {
	Name        string
	Kind        BaseKind
	Opts        Options
	Description string
	Fields      []CompiledField // Choice, Array, Map, Record
	Items       []Item          // Enumerated

	patternRe *regexp.Regexp // resolved '%' reference, String kinds only
	byName    map[string]*CompiledField
	byID      map[int]*CompiledField
}

// CompiledField is a compiled field: decoded options plus its type reference.
type CompiledField struct {
	ID          int
	Name        string
	TypeRef     string
	Opts        Options
	Description string

	// anon holds a synthesized anonymous type when TypeRef names a base kind
	// directly (e.g. a field typed plain "String" or "ArrayOf" with "*Elem").
	anon *Type
}

// Name returns the package's namespace identifier.
func (p *Package) Name() string { return p.name }

// Info returns the package identity metadata the document carried.
func (p *Package) Info() *Information { return p.info }

// TypeNames returns the defined type names in declaration order.
func (p *Package) TypeNames() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// Type looks up a same-package type definition by name.
func (p *Package) Type(name string) (*Type, bool) {
	t, ok := p.types[name]
	return t, ok
}

// Roots returns the declared hierarchy entry points. Every entry resolved at
// compile time; an unresolved root fails compilation, not this accessor.
func (p *Package) Roots() []string {
	out := make([]string, len(p.roots))
	copy(out, p.roots)
	return out
}

// Link supplies another compiled package so cross-package references into its
// namespace stop being opaque. Linking is keyed by the other package's
// namespace identifier and replaces any previous link for it.
func (p *Package) Link(other *Package) {
	if other == nil || other.name == "" {
		return
	}
	if p.linked == nil {
		p.linked = map[string]*Package{}
	}
	p.linked[other.name] = other
}

// primitiveTypes are the anonymous stand-ins used when a reference names a
// base kind directly instead of a defined type.
var primitiveTypes = map[string]*Type{
	"Binary":  {Name: "Binary", Kind: KindBinary},
	"Boolean": {Name: "Boolean", Kind: KindBoolean},
	"Integer": {Name: "Integer", Kind: KindInteger},
	"Number":  {Name: "Number", Kind: KindNumber},
	"String":  {Name: "String", Kind: KindString},
}

// Resolve splits a possibly prefixed reference ("prefix:Name") and looks it
// up. Same-package and primitive references resolve directly. A reference
// through a known namespace whose package has not been linked resolves to
// (nil, nil): the type is opaque to this engine, by contract. Unknown
// prefixes and undefined names yield issues at the given path.
func (p *Package) Resolve(ref string, at PathRef) (*Type, Issues) {
	if i := strings.IndexByte(ref, ':'); i > 0 {
		prefix, name := ref[:i], ref[i+1:]
		nsid, ok := p.namespaces[prefix]
		if !ok {
			return nil, Issues{at.Issue(CodeUnknownNamespace, i18n.T(CodeUnknownNamespace, nil), "prefix", prefix)}
		}
		ext, ok := p.linked[nsid]
		if !ok {
			return nil, nil // opaque cross-package reference
		}
		t, ok := ext.types[name]
		if !ok {
			return nil, Issues{at.Issue(CodeUnresolvedType, i18n.T(CodeUnresolvedType, nil), "type", ref)}
		}
		return t, nil
	}
	if t, ok := primitiveTypes[ref]; ok {
		return t, nil
	}
	if t, ok := p.types[ref]; ok {
		return t, nil
	}
	return nil, Issues{at.Issue(CodeUnresolvedType, i18n.T(CodeUnresolvedType, nil), "type", ref)}
}

// resolveField resolves a compiled field's type, preferring the synthesized
// anonymous type when the field is typed by a base kind.
func (p *Package) resolveField(f *CompiledField, at PathRef) (*Type, Issues) {
	if f.anon != nil {
		return f.anon, nil
	}
	return p.Resolve(f.TypeRef, at)
}

// field lookups; built once at compile time.

func (t *Type) fieldByName(name string) (*CompiledField, bool) {
	f, ok := t.byName[name]
	return f, ok
}

func (t *Type) fieldByID(id int) (*CompiledField, bool) {
	f, ok := t.byID[id]
	return f, ok
}
