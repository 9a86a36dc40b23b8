package goadn

// BaseKind is the closed set of structural categories a type may take.
// The zero value is invalid so an unset kind is never mistaken for Binary.
type BaseKind int

const (
	KindInvalid BaseKind = iota
	KindBinary
	KindBoolean
	KindInteger
	KindNumber
	KindString
	KindEnumerated
	KindChoice
	KindArray
	KindArrayOf
	KindMap
	KindMapOf
	KindRecord
)

var kindNames = map[BaseKind]string{
	KindBinary:     "Binary",
	KindBoolean:    "Boolean",
	KindInteger:    "Integer",
	KindNumber:     "Number",
	KindString:     "String",
	KindEnumerated: "Enumerated",
	KindChoice:     "Choice",
	KindArray:      "Array",
	KindArrayOf:    "ArrayOf",
	KindMap:        "Map",
	KindMapOf:      "MapOf",
	KindRecord:     "Record",
}

var kindByName = func() map[string]BaseKind {
	m := make(map[string]BaseKind, len(kindNames))
	for k, n := range kindNames {
		m[n] = k
	}
	return m
}()

func (k BaseKind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "Invalid"
}

// KindOf maps a base type enumerant from a document to its BaseKind.
// The second result is false for anything outside the closed set.
func KindOf(name string) (BaseKind, bool) {
	k, ok := kindByName[name]
	return k, ok
}

// IsBaseKind reports whether name is one of the twelve base type enumerants.
// Base type names are reserved and may not be used as defined type names.
func IsBaseKind(name string) bool {
	_, ok := kindByName[name]
	return ok
}

// HasFields reports whether definitions of this kind carry a field list:
// full fields for Choice/Array/Map/Record, items for Enumerated.
func (k BaseKind) HasFields() bool {
	switch k {
	case KindEnumerated, KindChoice, KindArray, KindMap, KindRecord:
		return true
	}
	return false
}

// hasItems reports whether the field list holds Enumerated items
// (id + value) rather than full fields.
func (k BaseKind) hasItems() bool { return k == KindEnumerated }

// allowsBounds reports whether the `{`/`}` facets are legal on this kind.
// They bound byte length (Binary), character length (String), value
// (Integer/Number) or element count (the collection kinds).
func (k BaseKind) allowsBounds() bool {
	switch k {
	case KindBinary, KindString, KindInteger, KindNumber,
		KindArray, KindArrayOf, KindMap, KindMapOf, KindRecord:
		return true
	}
	return false
}

// allowsElementType reports whether the `*` facet is legal on this kind.
func (k BaseKind) allowsElementType() bool {
	return k == KindArrayOf || k == KindMapOf
}

// allowsKeyType reports whether the `+` facet is legal on this kind.
func (k BaseKind) allowsKeyType() bool { return k == KindMapOf }

// allowsPattern reports whether the `%` facet is legal on this kind.
func (k BaseKind) allowsPattern() bool { return k == KindString }

// allowsFlag reports whether a bare qualifier flag is legal on this kind.
func (k BaseKind) allowsFlag(flag string) bool {
	switch flag {
	case FlagUnique, FlagUnordered:
		return k == KindArrayOf
	case FlagOrderedCompare:
		return k == KindMap || k == KindRecord
	}
	return false
}
