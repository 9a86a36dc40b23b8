package goadn

import (
	"sort"
	"strings"
)

// Analysis is the referenced-versus-defined accounting for a raw document.
type Analysis struct {
	// Unreferenced lists defined types that nothing references and that are
	// not declared roots.
	Unreferenced []string
	// Undefined lists same-package references with no definition. A compiled
	// Package can never contain these; Analyze works on raw documents so the
	// accounting is available before (or instead of) compilation.
	Undefined []string
}

// Analyze builds the document's type dependency graph and reports dangling
// and orphaned names. Base kinds and cross-package references are excluded:
// the former are always defined, the latter are not knowable from one
// document.
func Analyze(doc *Schema) Analysis {
	defined := map[string]bool{}
	for _, td := range doc.Types {
		defined[td.Name] = true
	}

	refs := map[string]bool{}
	addRef := func(name string) {
		if name == "" || IsBaseKind(name) || strings.ContainsRune(name, ':') {
			return
		}
		refs[name] = true
	}
	addOptionRefs := func(raw []string) {
		for _, s := range raw {
			o, err := DecodeOption(s)
			if err != nil {
				continue
			}
			if o.Facet == FacetElementType || o.Facet == FacetKeyType {
				addRef(o.Name)
			}
		}
	}

	for _, td := range doc.Types {
		addOptionRefs(td.Options)
		for _, f := range td.Fields {
			addRef(f.TypeRef)
			addOptionRefs(f.Options)
		}
	}

	rooted := map[string]bool{}
	if doc.Info != nil {
		for _, r := range doc.Info.roots() {
			rooted[r] = true
		}
	}

	var an Analysis
	for name := range defined {
		if !refs[name] && !rooted[name] {
			an.Unreferenced = append(an.Unreferenced, name)
		}
	}
	for name := range refs {
		if !defined[name] {
			an.Undefined = append(an.Undefined, name)
		}
	}
	sort.Strings(an.Unreferenced)
	sort.Strings(an.Undefined)
	return an
}
