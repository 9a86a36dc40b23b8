package goadn

// Package goadn compiles and validates ADN packages: schemas written in a
// compact array-tuple notation whose grammar is itself defined by the
// embedded metaschema.
//
// The engine provides:
//
// - Compilation of raw documents into immutable type registries (Compile/Load/Loads/LoadYAML)
// - Prefix-coded option decoding into structured constraints (DecodeOption/DecodeOptions)
// - Instance validation with a stable error model via Issues (JSON Pointer, code, message)
// - A self-validating bootstrap: the metaschema validates its own document before use (Metaschema)
//
// Design policy:
// - A compiled Package is never mutated; concurrent validation needs no locking.
// - Validation accumulates every violation instead of failing fast.
// - Compile errors are returned together as Issues so a document is fixable in one pass.
//
// Typical usage:
//
//	pkg, err := goadn.Loads(doc)
//	iss := pkg.Validate("Message", instance)
//
//	meta, err := goadn.Metaschema()
//	iss = meta.Validate("Schema", rawSchemaValue)
