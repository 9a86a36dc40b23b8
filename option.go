package goadn

import (
	"strconv"

	"github.com/reoring/goadn/i18n"
)

// Qualifier flags: bare alphabetic option strings with no payload.
const (
	FlagUnique         = "q"  // collection elements must be distinct
	FlagUnordered      = "b"  // element order carries no meaning
	FlagOrderedCompare = "CO" // compare collection entries in declared order
)

// OptionFacet identifies which constraint facet a single option string
// updates. The facet set is closed; decode rejects anything else.
type OptionFacet int

const (
	FacetMinBound    OptionFacet = iota // '{' minimum length/value/cardinality
	FacetMaxBound                       // '}' maximum length/value/cardinality
	FacetElementType                    // '*' element type reference
	FacetKeyType                        // '+' key type reference
	FacetPattern                        // '%' named pattern reference
	FacetFormat                         // '/' semantic format tag
	FacetTagID                          // '&' discriminator sibling field id
	FacetFlag                           // bare qualifier flag
)

// Option is the decoded form of one option string: a facet tag plus its
// payload. Exactly one of Num/Name is meaningful depending on the facet.
type Option struct {
	Facet OptionFacet
	Num   int    // FacetMinBound, FacetMaxBound, FacetTagID
	Name  string // FacetElementType, FacetKeyType, FacetPattern, FacetFormat, FacetFlag
}

var knownFlags = map[string]struct{}{
	FlagUnique:         {},
	FlagUnordered:      {},
	FlagOrderedCompare: {},
}

// DecodeOption parses one option string into its facet variant. The first
// character selects the facet; the remainder is the payload. Unknown prefix
// characters and unparsable payloads are errors, never ignored.
func DecodeOption(s string) (Option, error) {
	if s == "" {
		return Option{}, Issues{Root().Issue(CodeMalformedOption, i18n.T(CodeMalformedOption, nil), "option", s)}
	}
	malformed := func(hint string) (Option, error) {
		return Option{}, Issues{{
			Path:    Root().Pointer(),
			Code:    CodeMalformedOption,
			Message: i18n.T(CodeMalformedOption, nil),
			Hint:    hint,
			Params:  map[string]any{"option": s},
		}}
	}
	switch s[0] {
	case '{', '}', '&':
		n, err := strconv.Atoi(s[1:])
		if err != nil || n < 0 {
			return malformed("payload must be a non-negative integer")
		}
		switch s[0] {
		case '{':
			return Option{Facet: FacetMinBound, Num: n}, nil
		case '}':
			return Option{Facet: FacetMaxBound, Num: n}, nil
		default:
			return Option{Facet: FacetTagID, Num: n}, nil
		}
	case '*', '+', '%', '/':
		if len(s) == 1 {
			return malformed("payload must not be empty")
		}
		switch s[0] {
		case '*':
			return Option{Facet: FacetElementType, Name: s[1:]}, nil
		case '+':
			return Option{Facet: FacetKeyType, Name: s[1:]}, nil
		case '%':
			return Option{Facet: FacetPattern, Name: s[1:]}, nil
		default:
			return Option{Facet: FacetFormat, Name: s[1:]}, nil
		}
	}
	if _, ok := knownFlags[s]; ok {
		return Option{Facet: FacetFlag, Name: s}, nil
	}
	return malformed("unrecognized option prefix")
}

// Encode renders the option back to its string form. DecodeOption followed
// by Encode yields the original input for every legal option string.
func (o Option) Encode() string {
	switch o.Facet {
	case FacetMinBound:
		return "{" + strconv.Itoa(o.Num)
	case FacetMaxBound:
		return "}" + strconv.Itoa(o.Num)
	case FacetTagID:
		return "&" + strconv.Itoa(o.Num)
	case FacetElementType:
		return "*" + o.Name
	case FacetKeyType:
		return "+" + o.Name
	case FacetPattern:
		return "%" + o.Name
	case FacetFormat:
		return "/" + o.Name
	case FacetFlag:
		return o.Name
	}
	return ""
}

// Options is the structured form of a raw option list. Facets left unset
// keep their zero value; the pointer facets distinguish "absent" from 0.
type Options struct {
	MinBound    *int   // '{': minimum length, value or cardinality
	MaxBound    *int   // '}': maximum length, value or cardinality
	ElementType string // '*': element type reference (ArrayOf, MapOf)
	KeyType     string // '+': key type reference (MapOf)
	Pattern     string // '%': named pattern from the package config
	Format      string // '/': semantic format tag
	TagID       *int   // '&': discriminator sibling field id (fields only)
	Unique      bool   // 'q'
	Unordered   bool   // 'b'
	Flags       []string
}

// DecodeOptions decodes a raw option list. The same facet appearing twice is
// a duplicate_option issue; ambiguity surfaces instead of being resolved
// last-one-wins. Each issue's path names the failing entry under at.
func DecodeOptions(raw []string, at PathRef) (Options, Issues) {
	var opts Options
	var iss Issues
	seen := map[OptionFacet]bool{}
	seenFlags := map[string]bool{}
	for i, s := range raw {
		entryAt := at.Index(i)
		o, err := DecodeOption(s)
		if err != nil {
			if child, ok := AsIssues(err); ok {
				for _, it := range child {
					it.Path = entryAt.Pointer()
					iss = AppendIssues(iss, it)
				}
			}
			continue
		}
		if o.Facet == FacetFlag {
			if seenFlags[o.Name] {
				iss = AppendIssues(iss, entryAt.Issue(CodeDuplicateOption, i18n.T(CodeDuplicateOption, nil), "option", s))
				continue
			}
			seenFlags[o.Name] = true
		} else {
			if seen[o.Facet] {
				iss = AppendIssues(iss, entryAt.Issue(CodeDuplicateOption, i18n.T(CodeDuplicateOption, nil), "option", s))
				continue
			}
			seen[o.Facet] = true
		}
		opts.apply(o)
	}
	return opts, iss
}

func (opts *Options) apply(o Option) {
	switch o.Facet {
	case FacetMinBound:
		n := o.Num
		opts.MinBound = &n
	case FacetMaxBound:
		n := o.Num
		opts.MaxBound = &n
	case FacetElementType:
		opts.ElementType = o.Name
	case FacetKeyType:
		opts.KeyType = o.Name
	case FacetPattern:
		opts.Pattern = o.Name
	case FacetFormat:
		opts.Format = o.Name
	case FacetTagID:
		n := o.Num
		opts.TagID = &n
	case FacetFlag:
		switch o.Name {
		case FlagUnique:
			opts.Unique = true
		case FlagUnordered:
			opts.Unordered = true
		default:
			opts.Flags = append(opts.Flags, o.Name)
		}
	}
}

// Encode renders the decoded facets back into canonical option-string order:
// key type, element type, bounds, pattern, format, tag, flags.
func (opts Options) Encode() []string {
	var out []string
	if opts.KeyType != "" {
		out = append(out, Option{Facet: FacetKeyType, Name: opts.KeyType}.Encode())
	}
	if opts.ElementType != "" {
		out = append(out, Option{Facet: FacetElementType, Name: opts.ElementType}.Encode())
	}
	if opts.MinBound != nil {
		out = append(out, Option{Facet: FacetMinBound, Num: *opts.MinBound}.Encode())
	}
	if opts.MaxBound != nil {
		out = append(out, Option{Facet: FacetMaxBound, Num: *opts.MaxBound}.Encode())
	}
	if opts.Pattern != "" {
		out = append(out, Option{Facet: FacetPattern, Name: opts.Pattern}.Encode())
	}
	if opts.Format != "" {
		out = append(out, Option{Facet: FacetFormat, Name: opts.Format}.Encode())
	}
	if opts.TagID != nil {
		out = append(out, Option{Facet: FacetTagID, Num: *opts.TagID}.Encode())
	}
	if opts.Unique {
		out = append(out, FlagUnique)
	}
	if opts.Unordered {
		out = append(out, FlagUnordered)
	}
	out = append(out, opts.Flags...)
	return out
}

// minCardinality returns the effective minimum cardinality for a field:
// absent means required (1).
func (opts Options) minCardinality() int {
	if opts.MinBound != nil {
		return *opts.MinBound
	}
	return 1
}

// optional reports whether a field with these options may be absent.
func (opts Options) optional() bool { return opts.minCardinality() == 0 }
