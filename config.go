package goadn

import (
	"regexp"

	"github.com/reoring/goadn/i18n"
)

// Default limits and identifier grammars, applied wherever a document's
// config omits an override.
const (
	DefaultMaxBinary      = 255
	DefaultMaxString      = 255
	DefaultMaxElements    = 100
	DefaultMaxDefinitions = 1000
	DefaultSys            = "$"
	DefaultTypeNamePat    = `^[A-Z][-$A-Za-z0-9]{0,63}$`
	DefaultFieldNamePat   = `^[a-z][_A-Za-z0-9]{0,63}$`
	DefaultNSIDPat        = `^[A-Za-z][A-Za-z0-9]{0,7}$`
)

// maxOptions bounds the raw option list on a type or field definition.
const maxOptions = 10

// Config carries a package's tunable limits and identifier grammars. Keys in
// the document are $-prefixed ("$MaxString"); zero values mean "use default".
type Config struct {
	MaxBinary      int    `json:"$MaxBinary,omitempty"`
	MaxString      int    `json:"$MaxString,omitempty"`
	MaxElements    int    `json:"$MaxElements,omitempty"`
	MaxDefinitions int    `json:"$MaxDefinitions,omitempty"`
	Sys            string `json:"$Sys,omitempty"`
	TypeName       string `json:"$TypeName,omitempty"`
	FieldName      string `json:"$FieldName,omitempty"`
	NSID           string `json:"$NSID,omitempty"`
}

// compiledConfig is a Config with defaults applied and its grammars compiled.
type compiledConfig struct {
	maxBinary      int
	maxString      int
	maxElements    int
	maxDefinitions int
	sys            string
	typeName       *regexp.Regexp
	fieldName      *regexp.Regexp
	nsid           *regexp.Regexp
}

// compileConfig applies defaults and compiles the three identifier grammars.
// A grammar that fails to compile is reported under /info/config and replaced
// by its default so later checks can still run.
func compileConfig(c *Config, at PathRef) (*compiledConfig, Issues) {
	cc := &compiledConfig{
		maxBinary:      DefaultMaxBinary,
		maxString:      DefaultMaxString,
		maxElements:    DefaultMaxElements,
		maxDefinitions: DefaultMaxDefinitions,
		sys:            DefaultSys,
	}
	var iss Issues
	patterns := map[string]string{
		"$TypeName":  DefaultTypeNamePat,
		"$FieldName": DefaultFieldNamePat,
		"$NSID":      DefaultNSIDPat,
	}
	if c != nil {
		if c.MaxBinary > 0 {
			cc.maxBinary = c.MaxBinary
		}
		if c.MaxString > 0 {
			cc.maxString = c.MaxString
		}
		if c.MaxElements > 0 {
			cc.maxElements = c.MaxElements
		}
		if c.MaxDefinitions > 0 {
			cc.maxDefinitions = c.MaxDefinitions
		}
		if c.Sys != "" {
			cc.sys = c.Sys
		}
		for key, pat := range map[string]string{
			"$TypeName":  c.TypeName,
			"$FieldName": c.FieldName,
			"$NSID":      c.NSID,
		} {
			if pat == "" {
				continue
			}
			if _, err := regexp.Compile(pat); err != nil {
				iss = AppendIssues(iss, Issue{
					Path:    at.Field(key).Pointer(),
					Code:    CodeParseError,
					Message: i18n.T(CodeParseError, nil),
					Cause:   err,
					Params:  map[string]any{"pattern": pat},
				})
				continue
			}
			patterns[key] = pat
		}
	}
	cc.typeName = regexp.MustCompile(patterns["$TypeName"])
	cc.fieldName = regexp.MustCompile(patterns["$FieldName"])
	cc.nsid = regexp.MustCompile(patterns["$NSID"])
	return cc, iss
}

// pattern resolves a `%name` reference against the named identifier grammars.
func (cc *compiledConfig) pattern(name string) (*regexp.Regexp, bool) {
	switch name {
	case "$TypeName":
		return cc.typeName, true
	case "$FieldName":
		return cc.fieldName, true
	case "$NSID":
		return cc.nsid, true
	}
	return nil, false
}
