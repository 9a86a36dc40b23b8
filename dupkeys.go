package goadn

import (
	"bytes"
	"errors"
	"io"

	j "github.com/goccy/go-json"

	"github.com/reoring/goadn/i18n"
)

// DetectDuplicateKeys scans a JSON document for object members that repeat a
// key. Go's map decoding silently keeps the last value, so a validator that
// only sees the decoded form can never report the collision; this scan runs on
// the raw bytes instead. Each duplicate is one Issue at the member's path.
func DetectDuplicateKeys(data []byte) Issues {
	return detectDuplicateKeys(j.NewDecoder(bytes.NewReader(data)))
}

// DetectDuplicateKeysReader is DetectDuplicateKeys over a stream. The reader
// is consumed fully.
func DetectDuplicateKeysReader(r io.Reader) Issues {
	return detectDuplicateKeys(j.NewDecoder(r))
}

// dupFrame tracks one open container while walking the token stream: which
// member or element the walk is currently inside, and for objects, the keys
// already seen.
type dupFrame struct {
	object   bool
	keys     map[string]bool
	key      string
	awaitKey bool
	index    int
}

func detectDuplicateKeys(dec *j.Decoder) Issues {
	var iss Issues
	var stack []dupFrame

	// path renders the current position. A frame waiting for its next key is
	// not inside any member, so its stale key must not contribute a segment.
	path := func() PathRef {
		p := Root()
		for _, f := range stack {
			switch {
			case f.object && f.awaitKey:
			case f.object:
				p = p.Field(f.key)
			default:
				p = p.Index(f.index)
			}
		}
		return p
	}
	// completeValue advances the enclosing container past the value that just
	// finished: objects go back to expecting a key, arrays step their index.
	completeValue := func() {
		if len(stack) == 0 {
			return
		}
		top := &stack[len(stack)-1]
		if top.object {
			top.awaitKey = true
		} else {
			top.index++
		}
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			iss = AppendIssues(iss, Issue{
				Path:    path().Pointer(),
				Code:    CodeParseError,
				Message: i18n.T(CodeParseError, nil),
				Cause:   err,
			})
			break
		}

		switch v := tok.(type) {
		case j.Delim:
			switch v {
			case '{':
				stack = append(stack, dupFrame{object: true, keys: map[string]bool{}, awaitKey: true})
			case '[':
				stack = append(stack, dupFrame{})
			case '}', ']':
				if len(stack) > 0 {
					stack = stack[:len(stack)-1]
				}
				completeValue()
			}
		case string:
			if len(stack) > 0 {
				top := &stack[len(stack)-1]
				if top.object && top.awaitKey {
					if top.keys[v] {
						iss = AppendIssues(iss, path().Field(v).Issue(
							CodeDuplicateKey, i18n.T(CodeDuplicateKey, nil), "key", v))
					}
					top.keys[v] = true
					top.key = v
					top.awaitKey = false
					continue
				}
			}
			completeValue()
		default:
			completeValue()
		}
	}
	return iss
}
