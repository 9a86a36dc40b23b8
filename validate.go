package goadn

import (
	"encoding/base64"
	"fmt"
	"unicode/utf8"

	j "github.com/goccy/go-json"

	"github.com/reoring/goadn/i18n"
)

// Validate walks the named compiled type and an instance value in lock-step
// and returns every violation found, each carrying a JSON Pointer path from
// the instance root. It never fails fast and never panics on data shape; an
// empty result means the instance conforms. The receiver is only read, so
// concurrent Validate calls against one Package are safe.
func (p *Package) Validate(typeName string, v any) Issues {
	t, ok := p.types[typeName]
	if !ok {
		return Issues{Root().Issue(CodeUnresolvedType, i18n.T(CodeUnresolvedType, nil), "type", typeName)}
	}
	return p.validateType(t, v, Root())
}

func (p *Package) validateType(t *Type, v any, at PathRef) Issues {
	switch t.Kind {
	case KindBinary:
		return p.validateBinary(t, v, at)
	case KindBoolean:
		if _, ok := v.(bool); !ok {
			return Issues{invalidType(at, t, v)}
		}
		return nil
	case KindInteger:
		return p.validateInteger(t, v, at)
	case KindNumber:
		return p.validateNumber(t, v, at)
	case KindString:
		return p.validateString(t, v, at)
	case KindEnumerated:
		return p.validateEnumerated(t, v, at)
	case KindChoice:
		return p.validateChoice(t, v, at)
	case KindArray:
		return p.validateArray(t, v, at)
	case KindArrayOf:
		return p.validateArrayOf(t, v, at)
	case KindMap:
		return p.validateMap(t, v, at)
	case KindMapOf:
		return p.validateMapOf(t, v, at)
	case KindRecord:
		return p.validateRecord(t, v, at)
	}
	return Issues{invalidType(at, t, v)}
}

func invalidType(at PathRef, t *Type, v any) Issue {
	return at.Issue(CodeInvalidType, i18n.T(CodeInvalidType, nil),
		"expected", t.Kind.String(), "got", fmt.Sprintf("%T", v))
}

// checkCount applies the `{`/`}` facets to a length or element count,
// falling back to defaultMax when no explicit maximum is set. defaultMax 0
// means unbounded.
func checkCount(opts Options, n, defaultMax int, at PathRef) Issues {
	var iss Issues
	min := 0
	if opts.MinBound != nil {
		min = *opts.MinBound
	}
	if n < min {
		iss = AppendIssues(iss, at.Issue(CodeTooShort, i18n.T(CodeTooShort, nil), "min", min, "got", n))
	}
	switch {
	case opts.MaxBound != nil:
		if n > *opts.MaxBound {
			iss = AppendIssues(iss, at.Issue(CodeTooLong, i18n.T(CodeTooLong, nil), "max", *opts.MaxBound, "got", n))
		}
	case defaultMax > 0 && n > defaultMax:
		iss = AppendIssues(iss, at.Issue(CodeTooLong, i18n.T(CodeTooLong, nil), "max", defaultMax, "got", n))
	}
	return iss
}

func (p *Package) checkFormat(t *Type, v any, at PathRef) Issues {
	if t.Opts.Format == "" {
		return nil
	}
	f, ok := formatFor(t.Opts.Format)
	if !ok {
		return nil
	}
	if !f.check(p.cfg, v) {
		return Issues{at.Issue(CodeInvalidFormat, i18n.T(CodeInvalidFormat, nil), "format", t.Opts.Format)}
	}
	return nil
}

func (p *Package) validateBinary(t *Type, v any, at PathRef) Issues {
	b, ok := asBytes(v)
	if !ok {
		return Issues{invalidType(at, t, v)}
	}
	iss := checkCount(t.Opts, len(b), p.cfg.maxBinary, at)
	return AppendIssues(iss, p.checkFormat(t, b, at)...)
}

func (p *Package) validateString(t *Type, v any, at PathRef) Issues {
	s, ok := v.(string)
	if !ok {
		return Issues{invalidType(at, t, v)}
	}
	iss := checkCount(t.Opts, utf8.RuneCountInString(s), p.cfg.maxString, at)
	if t.patternRe != nil && !t.patternRe.MatchString(s) {
		iss = AppendIssues(iss, at.Issue(CodePattern, i18n.T(CodePattern, nil),
			"pattern", t.patternRe.String(), "got", s))
	}
	return AppendIssues(iss, p.checkFormat(t, s, at)...)
}

func (p *Package) validateInteger(t *Type, v any, at PathRef) Issues {
	n, ok := asInt64(v)
	if !ok {
		return Issues{invalidType(at, t, v)}
	}
	var iss Issues
	if t.Opts.MinBound != nil && n < int64(*t.Opts.MinBound) {
		iss = AppendIssues(iss, at.Issue(CodeTooSmall, i18n.T(CodeTooSmall, nil), "min", *t.Opts.MinBound, "got", n))
	}
	if t.Opts.MaxBound != nil && n > int64(*t.Opts.MaxBound) {
		iss = AppendIssues(iss, at.Issue(CodeTooBig, i18n.T(CodeTooBig, nil), "max", *t.Opts.MaxBound, "got", n))
	}
	return AppendIssues(iss, p.checkFormat(t, v, at)...)
}

func (p *Package) validateNumber(t *Type, v any, at PathRef) Issues {
	f, ok := asFloat64(v)
	if !ok {
		return Issues{invalidType(at, t, v)}
	}
	var iss Issues
	if t.Opts.MinBound != nil && f < float64(*t.Opts.MinBound) {
		iss = AppendIssues(iss, at.Issue(CodeTooSmall, i18n.T(CodeTooSmall, nil), "min", *t.Opts.MinBound, "got", f))
	}
	if t.Opts.MaxBound != nil && f > float64(*t.Opts.MaxBound) {
		iss = AppendIssues(iss, at.Issue(CodeTooBig, i18n.T(CodeTooBig, nil), "max", *t.Opts.MaxBound, "got", f))
	}
	return iss
}

func (p *Package) validateEnumerated(t *Type, v any, at PathRef) Issues {
	if id, ok := asInt64(v); ok {
		for _, it := range t.Items {
			if int64(it.ID) == id {
				return nil
			}
		}
		return Issues{at.Issue(CodeInvalidEnum, i18n.T(CodeInvalidEnum, nil), "id", id)}
	}
	if s, ok := v.(string); ok {
		for _, it := range t.Items {
			if it.Value == s {
				return nil
			}
		}
		return Issues{at.Issue(CodeInvalidEnum, i18n.T(CodeInvalidEnum, nil), "value", s)}
	}
	return Issues{invalidType(at, t, v)}
}

func (p *Package) validateChoice(t *Type, v any, at PathRef) Issues {
	m, ok := v.(map[string]any)
	if !ok {
		return Issues{invalidType(at, t, v)}
	}
	if len(m) != 1 {
		return Issues{at.Issue(CodeUnknownChoiceTag, i18n.T(CodeUnknownChoiceTag, nil), "got", len(m))}
	}
	for tag, payload := range m {
		f, ok := t.fieldByName(tag)
		if !ok {
			return Issues{at.Issue(CodeUnknownChoiceTag, i18n.T(CodeUnknownChoiceTag, nil), "tag", tag)}
		}
		ft, _ := p.resolveField(f, at)
		if ft == nil {
			return nil // opaque cross-package variant
		}
		return p.validateType(ft, payload, at.Field(tag))
	}
	return nil
}

func (p *Package) validateRecord(t *Type, v any, at PathRef) Issues {
	m, ok := v.(map[string]any)
	if !ok {
		return Issues{invalidType(at, t, v)}
	}
	iss := checkCount(t.Opts, len(m), 0, at)
	for k := range m {
		if _, known := t.fieldByName(k); !known {
			iss = AppendIssues(iss, at.Field(k).Issue(CodeUnknownKey, i18n.T(CodeUnknownKey, nil), "key", k))
		}
	}
	sibling := func(sel *CompiledField) (any, bool) {
		val, ok := m[sel.Name]
		return val, ok
	}
	for i := range t.Fields {
		f := &t.Fields[i]
		childAt := at.Field(f.Name)
		val, present := m[f.Name]
		if !present {
			if !f.Opts.optional() {
				iss = AppendIssues(iss, childAt.Issue(CodeRequired, i18n.T(CodeRequired, nil), "field", f.Name))
			}
			continue
		}
		iss = AppendIssues(iss, p.validateFieldValue(t, f, sibling, val, childAt)...)
	}
	return iss
}

func (p *Package) validateMap(t *Type, v any, at PathRef) Issues {
	// Map shares Record's named-field shape; only ordering semantics differ,
	// and those do not affect validation of a parsed instance.
	return p.validateRecord(t, v, at)
}

func (p *Package) validateArray(t *Type, v any, at PathRef) Issues {
	arr, ok := v.([]any)
	if !ok {
		return Issues{invalidType(at, t, v)}
	}
	var iss Issues
	if len(arr) > len(t.Fields) {
		iss = AppendIssues(iss, at.Issue(CodeTooLong, i18n.T(CodeTooLong, nil),
			"max", len(t.Fields), "got", len(arr)))
	}
	sibling := func(sel *CompiledField) (any, bool) {
		for i := range t.Fields {
			if &t.Fields[i] == sel {
				if i < len(arr) && arr[i] != nil {
					return arr[i], true
				}
				return nil, false
			}
		}
		return nil, false
	}
	for i := range t.Fields {
		f := &t.Fields[i]
		childAt := at.Index(i)
		var val any
		if i < len(arr) {
			val = arr[i]
		}
		if val == nil {
			if !f.Opts.optional() {
				iss = AppendIssues(iss, childAt.Issue(CodeRequired, i18n.T(CodeRequired, nil), "field", f.Name))
			}
			continue
		}
		iss = AppendIssues(iss, p.validateFieldValue(t, f, sibling, val, childAt)...)
	}
	return iss
}

func (p *Package) validateArrayOf(t *Type, v any, at PathRef) Issues {
	arr, ok := v.([]any)
	if !ok {
		return Issues{invalidType(at, t, v)}
	}
	iss := checkCount(t.Opts, len(arr), p.cfg.maxElements, at)
	et, _ := p.Resolve(t.Opts.ElementType, at)
	seen := map[string]bool{}
	for i, el := range arr {
		if t.Opts.Unique {
			k := valueKey(el)
			if seen[k] {
				iss = AppendIssues(iss, at.Index(i).Issue(CodeDuplicateKey, i18n.T(CodeDuplicateKey, nil)))
			}
			seen[k] = true
		}
		if et != nil {
			iss = AppendIssues(iss, p.validateType(et, el, at.Index(i))...)
		}
	}
	return iss
}

func (p *Package) validateMapOf(t *Type, v any, at PathRef) Issues {
	kt, _ := p.Resolve(t.Opts.KeyType, at)
	et, _ := p.Resolve(t.Opts.ElementType, at)

	switch m := v.(type) {
	case map[string]any:
		iss := checkCount(t.Opts, len(m), p.cfg.maxElements, at)
		for k, val := range m {
			entryAt := at.Field(k)
			if kt != nil {
				iss = AppendIssues(iss, p.validateType(kt, k, entryAt)...)
			}
			if et != nil {
				iss = AppendIssues(iss, p.validateType(et, val, entryAt)...)
			}
		}
		return iss
	case []any:
		// Pair-list form for key types that JSON objects cannot carry.
		iss := checkCount(t.Opts, len(m), p.cfg.maxElements, at)
		seen := map[string]bool{}
		for i, el := range m {
			entryAt := at.Index(i)
			pair, ok := el.([]any)
			if !ok || len(pair) != 2 {
				iss = AppendIssues(iss, entryAt.Issue(CodeInvalidType, i18n.T(CodeInvalidType, nil),
					"expected", "key/value pair"))
				continue
			}
			k := valueKey(pair[0])
			if seen[k] {
				iss = AppendIssues(iss, entryAt.Issue(CodeDuplicateKey, i18n.T(CodeDuplicateKey, nil)))
			}
			seen[k] = true
			if kt != nil {
				iss = AppendIssues(iss, p.validateType(kt, pair[0], entryAt.Index(0))...)
			}
			if et != nil {
				iss = AppendIssues(iss, p.validateType(et, pair[1], entryAt.Index(1))...)
			}
		}
		return iss
	default:
		return Issues{invalidType(at, t, v)}
	}
}

// validateFieldValue validates one present field value, handling repeated
// cardinality and discriminated fields. sibling fetches a selector field's
// runtime value from the enclosing instance.
func (p *Package) validateFieldValue(t *Type, f *CompiledField, sibling func(*CompiledField) (any, bool), val any, at PathRef) Issues {
	repeated := (f.Opts.MaxBound != nil && *f.Opts.MaxBound != 1) || f.Opts.minCardinality() > 1
	if !repeated {
		return p.validateOne(t, f, sibling, val, at)
	}
	arr, ok := val.([]any)
	if !ok {
		return Issues{at.Issue(CodeInvalidType, i18n.T(CodeInvalidType, nil),
			"expected", "array", "got", fmt.Sprintf("%T", val))}
	}
	var iss Issues
	if n := len(arr); n < f.Opts.minCardinality() {
		iss = AppendIssues(iss, at.Issue(CodeTooShort, i18n.T(CodeTooShort, nil),
			"min", f.Opts.minCardinality(), "got", n))
	}
	if f.Opts.MaxBound != nil && *f.Opts.MaxBound > 0 && len(arr) > *f.Opts.MaxBound {
		iss = AppendIssues(iss, at.Issue(CodeTooLong, i18n.T(CodeTooLong, nil),
			"max", *f.Opts.MaxBound, "got", len(arr)))
	}
	seen := map[string]bool{}
	for i, el := range arr {
		if f.Opts.Unique {
			k := valueKey(el)
			if seen[k] {
				iss = AppendIssues(iss, at.Index(i).Issue(CodeDuplicateKey, i18n.T(CodeDuplicateKey, nil)))
			}
			seen[k] = true
		}
		iss = AppendIssues(iss, p.validateOne(t, f, sibling, el, at.Index(i))...)
	}
	return iss
}

func (p *Package) validateOne(t *Type, f *CompiledField, sibling func(*CompiledField) (any, bool), val any, at PathRef) Issues {
	if f.Opts.TagID == nil {
		ft, _ := p.resolveField(f, at)
		if ft == nil {
			return nil // opaque cross-package reference
		}
		return p.validateType(ft, val, at)
	}

	// Discriminated field: the selector sibling's runtime value picks which
	// variant of the referenced Choice applies, and the payload is validated
	// directly against that variant, untagged.
	sel, ok := t.fieldByID(*f.Opts.TagID)
	if !ok {
		return nil // rejected at compile time; unreachable for compiled packages
	}
	selVal, ok := sibling(sel)
	if !ok {
		// The selector's own absence is reported at its path; without it the
		// variant cannot be chosen, so stop here rather than guess.
		return nil
	}
	choice, _ := p.resolveField(f, at)
	if choice == nil || choice.Kind != KindChoice {
		return nil
	}
	variant := choiceVariant(choice, selVal)
	if variant == nil {
		return Issues{at.Issue(CodeUnknownChoiceTag, i18n.T(CodeUnknownChoiceTag, nil),
			"tag", fmt.Sprint(selVal))}
	}
	vt, _ := p.resolveField(variant, at)
	if vt == nil {
		return nil
	}
	return p.validateType(vt, val, at)
}

// choiceVariant matches a selector's runtime value against a Choice's
// declared fields: strings select by field name, integers by field id.
func choiceVariant(choice *Type, selVal any) *CompiledField {
	if s, ok := selVal.(string); ok {
		if f, ok := choice.fieldByName(s); ok {
			return f
		}
		return nil
	}
	if id, ok := asInt64(selVal); ok {
		if f, ok := choice.fieldByID(int(id)); ok {
			return f
		}
	}
	return nil
}

// ---- value coercion helpers ----

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
		return 0, false
	case j.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}

func asFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case j.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// asBytes accepts raw bytes or their base64url text encoding.
func asBytes(v any) ([]byte, bool) {
	switch b := v.(type) {
	case []byte:
		return b, true
	case string:
		if d, err := base64.RawURLEncoding.DecodeString(b); err == nil {
			return d, true
		}
		if d, err := base64.StdEncoding.DecodeString(b); err == nil {
			return d, true
		}
		return nil, false
	}
	return nil, false
}

// valueKey produces a comparable key for uniqueness checks over arbitrary
// JSON-like values.
func valueKey(v any) string {
	b, err := j.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%#v", v)
	}
	return string(b)
}
