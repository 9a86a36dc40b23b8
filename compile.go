package goadn

import (
	"github.com/reoring/goadn/i18n"
)

// Compile turns a raw Schema document into an immutable Package. All compile
// errors are accumulated and returned together as Issues so authoring
// mistakes are fixable in one pass; a non-nil error means the Package is nil.
// Compilation never touches instance data and performs no I/O.
func Compile(doc *Schema) (*Package, error) {
	var iss Issues
	infoAt := Root().Field("info")

	cc, cfgIss := compileConfig(configOf(doc), infoAt.Field("config"))
	iss = AppendIssues(iss, cfgIss...)

	p := &Package{
		cfg:   cc,
		types: map[string]*Type{},
	}
	if doc.Info != nil {
		p.name = doc.Info.Package
		p.info = doc.Info
		p.namespaces = doc.Info.Namespaces
		nsAt := infoAt.Field("namespaces")
		for prefix := range doc.Info.Namespaces {
			if !cc.nsid.MatchString(prefix) {
				iss = AppendIssues(iss, nsAt.Field(prefix).Issue(
					CodePattern, i18n.T(CodePattern, nil), "prefix", prefix))
			}
		}
	}

	typesAt := Root().Field("types")
	if len(doc.Types) > cc.maxDefinitions {
		iss = AppendIssues(iss, typesAt.Issue(CodeTooLong, i18n.T(CodeTooLong, nil),
			"max", cc.maxDefinitions, "got", len(doc.Types)))
	}

	// docIndex keeps each registered type's position in the document, which
	// diverges from registration order once a definition is skipped.
	var docIndex []int
	for i := range doc.Types {
		td := &doc.Types[i]
		at := typesAt.Index(i)
		t, tIss := compileType(cc, td, at)
		iss = AppendIssues(iss, tIss...)
		if t == nil {
			continue
		}
		if _, exists := p.types[t.Name]; exists {
			iss = AppendIssues(iss, at.Issue(CodeDuplicateType, i18n.T(CodeDuplicateType, nil), "type", t.Name))
			continue
		}
		p.types[t.Name] = t
		p.order = append(p.order, t.Name)
		docIndex = append(docIndex, i)
	}

	// Second pass: resolve same-package references eagerly and finish the
	// discriminator checks that need resolved kinds.
	for i, name := range p.order {
		t := p.types[name]
		at := typesAt.Index(docIndex[i])
		iss = AppendIssues(iss, p.resolveTypeRefs(t, at)...)
	}

	rootsAt := infoAt.Field("roots")
	for _, root := range p.info.roots() {
		if _, ok := p.types[root]; !ok {
			iss = AppendIssues(iss, rootsAt.Issue(CodeInvalidRoot, i18n.T(CodeInvalidRoot, nil), "root", root))
			continue
		}
		p.roots = append(p.roots, root)
	}

	if len(iss) > 0 {
		return nil, iss
	}
	return p, nil
}

func configOf(doc *Schema) *Config {
	if doc.Info == nil {
		return nil
	}
	return doc.Info.Config
}

// compileType compiles one raw type definition tuple into a Type node.
// A nil result means the definition was too broken to register; issues carry
// the details either way.
func compileType(cc *compiledConfig, td *TypeDef, at PathRef) (*Type, Issues) {
	var iss Issues

	if !cc.typeName.MatchString(td.Name) {
		iss = AppendIssues(iss, at.Issue(CodeInvalidTypeName, i18n.T(CodeInvalidTypeName, nil), "name", td.Name))
	}
	if IsBaseKind(td.Name) {
		iss = AppendIssues(iss, at.Issue(CodeInvalidTypeName, "reserved type name", "name", td.Name))
	}
	kind, ok := KindOf(td.Base)
	if !ok {
		iss = AppendIssues(iss, at.Issue(CodeInvalidBaseType, i18n.T(CodeInvalidBaseType, nil), "base", td.Base))
		return nil, iss
	}

	opts, optIss := decodeOptionList(td.Options, at.Field("options"))
	iss = AppendIssues(iss, optIss...)
	iss = AppendIssues(iss, checkTypeOptions(cc, kind, &opts, at.Field("options"))...)

	t := &Type{
		Name:        td.Name,
		Kind:        kind,
		Opts:        opts,
		Description: td.Description,
	}
	if opts.Pattern != "" {
		if re, ok := cc.pattern(opts.Pattern); ok {
			t.patternRe = re
		}
	}

	fieldsAt := at.Field("fields")
	switch {
	case kind.hasItems():
		if len(td.Fields) > 0 {
			iss = AppendIssues(iss, fieldsAt.Issue(CodeInvalidType, "enumerated takes items, not fields"))
		}
		if len(td.Items) == 0 {
			iss = AppendIssues(iss, fieldsAt.Issue(CodeInvalidType, "enumerated requires at least one item"))
		}
		iss = AppendIssues(iss, compileItems(t, td.Items, fieldsAt)...)
	case kind.HasFields():
		if len(td.Fields) == 0 {
			iss = AppendIssues(iss, fieldsAt.Issue(CodeInvalidType, kind.String()+" requires fields"))
		}
		iss = AppendIssues(iss, compileFields(cc, t, td.Fields, fieldsAt)...)
	default:
		if len(td.Fields) > 0 || len(td.Items) > 0 {
			iss = AppendIssues(iss, fieldsAt.Issue(CodeInvalidType, kind.String()+" takes no fields"))
		}
	}
	return t, iss
}

// decodeOptionList enforces the raw list length bound before decoding.
func decodeOptionList(raw []string, at PathRef) (Options, Issues) {
	var iss Issues
	if len(raw) > maxOptions {
		iss = AppendIssues(iss, at.Issue(CodeTooLong, i18n.T(CodeTooLong, nil),
			"max", maxOptions, "got", len(raw)))
		raw = raw[:maxOptions]
	}
	opts, decIss := DecodeOptions(raw, at)
	return opts, AppendIssues(iss, decIss...)
}

// checkTypeOptions rejects decoded facets that are illegal for the base kind
// and enforces facet consistency. It applies to type definitions and to the
// anonymous types synthesized for base-kind-typed fields.
func checkTypeOptions(cc *compiledConfig, kind BaseKind, opts *Options, at PathRef) Issues {
	var iss Issues
	illegal := func(facet string) {
		iss = AppendIssues(iss, at.Issue(CodeInvalidOption, i18n.T(CodeInvalidOption, nil),
			"facet", facet, "kind", kind.String()))
	}

	if (opts.MinBound != nil || opts.MaxBound != nil) && !kind.allowsBounds() {
		illegal("bounds")
	}
	if opts.MinBound != nil && opts.MaxBound != nil && *opts.MinBound > *opts.MaxBound {
		iss = AppendIssues(iss, at.Issue(CodeInvalidOption, "minimum exceeds maximum",
			"min", *opts.MinBound, "max", *opts.MaxBound))
	}

	if opts.ElementType != "" && !kind.allowsElementType() {
		illegal("element type")
	}
	if opts.ElementType == "" && kind.allowsElementType() {
		iss = AppendIssues(iss, at.Issue(CodeInvalidOption, kind.String()+" requires an element type"))
	}
	if opts.KeyType != "" && !kind.allowsKeyType() {
		illegal("key type")
	}
	if opts.KeyType == "" && kind.allowsKeyType() {
		iss = AppendIssues(iss, at.Issue(CodeInvalidOption, kind.String()+" requires a key type"))
	}

	if opts.Pattern != "" {
		if !kind.allowsPattern() {
			illegal("pattern")
		} else if _, ok := cc.pattern(opts.Pattern); !ok {
			iss = AppendIssues(iss, at.Issue(CodeInvalidOption, "unknown pattern reference", "pattern", opts.Pattern))
		}
	}
	if opts.Format != "" {
		f, ok := formatFor(opts.Format)
		if !ok || !f.appliesTo(kind) {
			iss = AppendIssues(iss, at.Issue(CodeInvalidFormat, i18n.T(CodeInvalidFormat, nil),
				"format", opts.Format, "kind", kind.String()))
		}
	}
	if opts.TagID != nil {
		illegal("discriminator")
	}
	if opts.Unique && !kind.allowsFlag(FlagUnique) {
		illegal(FlagUnique)
	}
	if opts.Unordered && !kind.allowsFlag(FlagUnordered) {
		illegal(FlagUnordered)
	}
	for _, fl := range opts.Flags {
		if !kind.allowsFlag(fl) {
			illegal(fl)
		}
	}
	return iss
}

func compileItems(t *Type, items []Item, at PathRef) Issues {
	var iss Issues
	seenID := map[int]bool{}
	seenVal := map[string]bool{}
	for i, it := range items {
		itemAt := at.Index(i)
		if it.ID < 0 {
			iss = AppendIssues(iss, itemAt.Issue(CodeInvalidType, "item id must be non-negative", "id", it.ID))
		}
		if seenID[it.ID] {
			iss = AppendIssues(iss, itemAt.Issue(CodeDuplicateField, i18n.T(CodeDuplicateField, nil), "id", it.ID))
		}
		if seenVal[it.Value] {
			iss = AppendIssues(iss, itemAt.Issue(CodeDuplicateField, i18n.T(CodeDuplicateField, nil), "value", it.Value))
		}
		seenID[it.ID] = true
		seenVal[it.Value] = true
		t.Items = append(t.Items, it)
	}
	return iss
}

func compileFields(cc *compiledConfig, t *Type, fields []Field, at PathRef) Issues {
	var iss Issues
	t.byName = map[string]*CompiledField{}
	t.byID = map[int]*CompiledField{}

	for i := range fields {
		fd := &fields[i]
		fieldAt := at.Index(i)

		if fd.ID < 0 {
			iss = AppendIssues(iss, fieldAt.Issue(CodeInvalidType, "field id must be non-negative", "id", fd.ID))
		}
		if !cc.fieldName.MatchString(fd.Name) {
			iss = AppendIssues(iss, fieldAt.Issue(CodeInvalidFieldName, i18n.T(CodeInvalidFieldName, nil), "name", fd.Name))
		}
		if _, dup := t.byID[fd.ID]; dup {
			iss = AppendIssues(iss, fieldAt.Issue(CodeDuplicateField, i18n.T(CodeDuplicateField, nil), "id", fd.ID))
			continue
		}
		if _, dup := t.byName[fd.Name]; dup {
			iss = AppendIssues(iss, fieldAt.Issue(CodeDuplicateField, i18n.T(CodeDuplicateField, nil), "name", fd.Name))
			continue
		}

		opts, optIss := decodeOptionList(fd.Options, fieldAt.Field("options"))
		iss = AppendIssues(iss, optIss...)

		cf := CompiledField{
			ID:          fd.ID,
			Name:        fd.Name,
			TypeRef:     fd.TypeRef,
			Opts:        opts,
			Description: fd.Description,
		}
		iss = AppendIssues(iss, compileFieldOptions(cc, t, &cf, fieldAt)...)

		t.Fields = append(t.Fields, cf)
		ptr := &t.Fields[len(t.Fields)-1]
		t.byID[cf.ID] = ptr
		t.byName[cf.Name] = ptr
	}

	// Discriminator sibling checks need the complete field list.
	for i := range t.Fields {
		f := &t.Fields[i]
		if f.Opts.TagID == nil {
			continue
		}
		fieldAt := at.Index(i)
		sel, ok := t.byID[*f.Opts.TagID]
		switch {
		case t.Kind != KindRecord && t.Kind != KindArray:
			iss = AppendIssues(iss, fieldAt.Issue(CodeInvalidDiscriminator,
				"discriminated fields require a Record or Array container"))
		case !ok:
			iss = AppendIssues(iss, fieldAt.Issue(CodeInvalidDiscriminator,
				i18n.T(CodeInvalidDiscriminator, nil), "tag", *f.Opts.TagID))
		case sel == f:
			iss = AppendIssues(iss, fieldAt.Issue(CodeInvalidDiscriminator,
				"field cannot discriminate itself", "tag", *f.Opts.TagID))
		case sel.Opts.TagID != nil:
			// Chained discriminators are ambiguous and always rejected.
			iss = AppendIssues(iss, fieldAt.Issue(CodeInvalidDiscriminator,
				"discriminator chain", "tag", *f.Opts.TagID))
		}
	}
	return iss
}

// compileFieldOptions splits a field's decoded options into cardinality
// (which stays on the field) and type facets (which either synthesize an
// anonymous type for base-kind references or are illegal on defined-type
// references).
func compileFieldOptions(cc *compiledConfig, t *Type, cf *CompiledField, at PathRef) Issues {
	var iss Issues
	optsAt := at.Field("options")

	if cf.Opts.MinBound != nil && cf.Opts.MaxBound != nil &&
		*cf.Opts.MaxBound != 0 && *cf.Opts.MinBound > *cf.Opts.MaxBound {
		iss = AppendIssues(iss, optsAt.Issue(CodeInvalidOption, "minimum cardinality exceeds maximum",
			"min", *cf.Opts.MinBound, "max", *cf.Opts.MaxBound))
	}

	if !IsBaseKind(cf.TypeRef) {
		// Defined-type reference: only cardinality, discriminator and the
		// unique qualifier (for repeated fields) are meaningful here.
		repeated := cf.Opts.MaxBound != nil && *cf.Opts.MaxBound != 1
		if cf.Opts.ElementType != "" || cf.Opts.KeyType != "" ||
			cf.Opts.Pattern != "" || cf.Opts.Format != "" ||
			cf.Opts.Unordered || len(cf.Opts.Flags) > 0 ||
			(cf.Opts.Unique && !repeated) {
			iss = AppendIssues(iss, optsAt.Issue(CodeInvalidOption,
				"type facets are not allowed on defined-type fields", "type", cf.TypeRef))
		}
		return iss
	}

	kind, _ := KindOf(cf.TypeRef)
	if kind.HasFields() {
		iss = AppendIssues(iss, at.Issue(CodeInvalidBaseType,
			"anonymous field type cannot take fields", "type", cf.TypeRef))
		return iss
	}
	// An anonymous type is never a Choice, so it cannot be discriminated.
	if cf.Opts.TagID != nil {
		iss = AppendIssues(iss, optsAt.Issue(CodeInvalidDiscriminator,
			"discriminated field must reference a Choice", "type", cf.TypeRef))
	}

	// On a repeated field the unique qualifier applies to the repetition
	// list itself, so it stays on the field instead of the anonymous type.
	repeated := cf.Opts.MaxBound != nil && *cf.Opts.MaxBound != 1
	anonOpts := Options{
		ElementType: cf.Opts.ElementType,
		KeyType:     cf.Opts.KeyType,
		Pattern:     cf.Opts.Pattern,
		Format:      cf.Opts.Format,
		Unique:      cf.Opts.Unique && !repeated,
		Unordered:   cf.Opts.Unordered,
		Flags:       cf.Opts.Flags,
	}
	iss = AppendIssues(iss, checkTypeOptions(cc, kind, &anonOpts, optsAt)...)
	anon := &Type{Name: cf.TypeRef, Kind: kind, Opts: anonOpts}
	if anonOpts.Pattern != "" {
		if re, ok := cc.pattern(anonOpts.Pattern); ok {
			anon.patternRe = re
		}
	}
	cf.anon = anon
	return iss
}

// resolveTypeRefs eagerly resolves every same-package reference a compiled
// type carries and finishes discriminator kind checks. Cross-package
// references through known prefixes stay lazy.
func (p *Package) resolveTypeRefs(t *Type, at PathRef) Issues {
	var iss Issues

	optsAt := at.Field("options")
	if t.Opts.ElementType != "" {
		_, rIss := p.Resolve(t.Opts.ElementType, optsAt)
		iss = AppendIssues(iss, rIss...)
	}
	if t.Opts.KeyType != "" {
		_, rIss := p.Resolve(t.Opts.KeyType, optsAt)
		iss = AppendIssues(iss, rIss...)
	}

	for i := range t.Fields {
		f := &t.Fields[i]
		fieldAt := at.Field("fields").Index(i)
		if f.anon != nil {
			anonAt := fieldAt.Field("options")
			if f.anon.Opts.ElementType != "" {
				_, rIss := p.Resolve(f.anon.Opts.ElementType, anonAt)
				iss = AppendIssues(iss, rIss...)
			}
			if f.anon.Opts.KeyType != "" {
				_, rIss := p.Resolve(f.anon.Opts.KeyType, anonAt)
				iss = AppendIssues(iss, rIss...)
			}
			continue
		}
		ft, rIss := p.Resolve(f.TypeRef, fieldAt)
		iss = AppendIssues(iss, rIss...)
		if f.Opts.TagID != nil && ft != nil && ft.Kind != KindChoice {
			iss = AppendIssues(iss, fieldAt.Issue(CodeInvalidDiscriminator,
				"discriminated field must reference a Choice", "type", f.TypeRef))
		}
	}
	return iss
}
