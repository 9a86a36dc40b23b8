package goadn

import (
	"net"
	"net/mail"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// formatDef ties a semantic format tag to the base kinds it may annotate and
// the rule a value must satisfy. Formats are fixed, not user-extensible.
type formatDef struct {
	kinds []BaseKind
	check func(cc *compiledConfig, v any) bool
}

var hostnamePat = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9-]{0,61}[A-Za-z0-9])?(\.[A-Za-z0-9]([A-Za-z0-9-]{0,61}[A-Za-z0-9])?)*$`)

var formats = map[string]formatDef{
	"uri": {kinds: []BaseKind{KindString}, check: func(_ *compiledConfig, v any) bool {
		s, ok := v.(string)
		if !ok {
			return false
		}
		u, err := url.Parse(s)
		return err == nil && u.Scheme != ""
	}},
	// nsid checks a namespace identifier against the package's $NSID grammar.
	"nsid": {kinds: []BaseKind{KindString}, check: func(cc *compiledConfig, v any) bool {
		s, ok := v.(string)
		return ok && cc.nsid.MatchString(s)
	}},
	"regex": {kinds: []BaseKind{KindString}, check: func(_ *compiledConfig, v any) bool {
		s, ok := v.(string)
		if !ok {
			return false
		}
		_, err := regexp.Compile(s)
		return err == nil
	}},
	"email": {kinds: []BaseKind{KindString}, check: func(_ *compiledConfig, v any) bool {
		s, ok := v.(string)
		if !ok {
			return false
		}
		_, err := mail.ParseAddress(s)
		return err == nil
	}},
	"hostname": {kinds: []BaseKind{KindString}, check: func(_ *compiledConfig, v any) bool {
		s, ok := v.(string)
		return ok && len(s) <= 253 && hostnamePat.MatchString(s)
	}},
	"ipv4": {kinds: []BaseKind{KindString}, check: func(_ *compiledConfig, v any) bool {
		s, ok := v.(string)
		if !ok {
			return false
		}
		ip := net.ParseIP(s)
		return ip != nil && strings.Contains(s, ".")
	}},
	"ipv6": {kinds: []BaseKind{KindString}, check: func(_ *compiledConfig, v any) bool {
		s, ok := v.(string)
		if !ok {
			return false
		}
		ip := net.ParseIP(s)
		return ip != nil && strings.Contains(s, ":")
	}},
	"date-time": {kinds: []BaseKind{KindString}, check: timeFormat(time.RFC3339)},
	"date":      {kinds: []BaseKind{KindString}, check: timeFormat("2006-01-02")},
	"time":      {kinds: []BaseKind{KindString}, check: timeFormat("15:04:05Z07:00")},
	// eui accepts an EUI-48 or EUI-64 hardware address.
	"eui": {kinds: []BaseKind{KindBinary}, check: func(_ *compiledConfig, v any) bool {
		b, ok := v.([]byte)
		return ok && (len(b) == 6 || len(b) == 8)
	}},
	"i8":  intFormat(-1<<7, 1<<7-1),
	"i16": intFormat(-1<<15, 1<<15-1),
	"i32": intFormat(-1<<31, 1<<31-1),
}

func timeFormat(layout string) func(*compiledConfig, any) bool {
	return func(_ *compiledConfig, v any) bool {
		s, ok := v.(string)
		if !ok {
			return false
		}
		_, err := time.Parse(layout, s)
		return err == nil
	}
}

func intFormat(min, max int64) formatDef {
	return formatDef{kinds: []BaseKind{KindInteger}, check: func(_ *compiledConfig, v any) bool {
		n, ok := asInt64(v)
		return ok && n >= min && n <= max
	}}
}

// formatFor resolves a format tag, including the parameterized unsigned
// widths u1..u64.
func formatFor(name string) (formatDef, bool) {
	if f, ok := formats[name]; ok {
		return f, true
	}
	if strings.HasPrefix(name, "u") {
		if bits, err := strconv.Atoi(name[1:]); err == nil && bits >= 1 && bits <= 64 {
			return formatDef{kinds: []BaseKind{KindInteger}, check: func(_ *compiledConfig, v any) bool {
				n, ok := asInt64(v)
				if !ok || n < 0 {
					return false
				}
				if bits >= 64 {
					return true
				}
				return n < 1<<bits
			}}, true
		}
	}
	return formatDef{}, false
}

// appliesTo reports whether the format may annotate the given base kind.
func (f formatDef) appliesTo(k BaseKind) bool {
	for _, fk := range f.kinds {
		if fk == k {
			return true
		}
	}
	return false
}
