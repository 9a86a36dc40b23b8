package goadn

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	// Compile-time codes. A compilation attempt that produces any of these
	// fails as a whole; all detected issues are returned together.
	CodeMalformedOption      = "malformed_option"
	CodeDuplicateOption      = "duplicate_option"
	CodeDuplicateType        = "duplicate_type"
	CodeDuplicateField       = "duplicate_field"
	CodeUnresolvedType       = "unresolved_type"
	CodeUnknownNamespace     = "unknown_namespace"
	CodeInvalidRoot          = "invalid_root"
	CodeInvalidDiscriminator = "invalid_discriminator"
	CodeInvalidOption        = "invalid_option" // legal syntax, illegal for the base kind
	CodeInvalidBaseType      = "invalid_base_type"
	CodeInvalidTypeName      = "invalid_type_name"
	CodeInvalidFieldName     = "invalid_field_name"

	// Instance-level codes. Validation accumulates these and never fails
	// fatally for a well-formed compiled package.
	CodeInvalidType      = "invalid_type"
	CodeRequired         = "required"
	CodeUnknownKey       = "unknown_key"
	CodeDuplicateKey     = "duplicate_key"
	CodeTooSmall         = "too_small"
	CodeTooBig           = "too_big"
	CodeTooShort         = "too_short"
	CodeTooLong          = "too_long"
	CodePattern          = "pattern"
	CodeInvalidEnum      = "invalid_enum"
	CodeInvalidFormat    = "invalid_format"
	CodeUnknownChoiceTag = "unknown_choice_tag"
	CodeParseError       = "parse_error"
)

// Issue represents a single compile error or validation violation.
type Issue struct {
	Path    string // JSON Pointer (for example: /types/2/fields/0).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints, offending option text, etc.
	Cause   error  // Optional: underlying error.
	// Params carries structured parameters (e.g., {"min":1, "max":10, "got":42})
	// for i18n and observability.
	Params map[string]any
}

// Issues is a collection of issues that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. unresolved_type at /types/4
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// OrNil converts an accumulated Issues slice into an error, returning nil when
// no issue was recorded so callers can use the usual err == nil check.
func (iss Issues) OrNil() error {
	if len(iss) == 0 {
		return nil
	}
	return iss
}
