// Package jsonx scans loosely structured JSON-ish documents: profiler
// exports that drift between schema versions, carry unrelated fields, or
// concatenate objects without a surrounding array. Extraction is
// best-effort; anything that does not parse is skipped, never fatal.
package jsonx

import (
	"encoding/json"
	"strings"
)

// Pair is one key→scalar occurrence. Value is a string, json.Number, bool,
// or nil, as produced by the token decoder.
type Pair struct {
	Key   string
	Value any
}

// Fragments splits text into balanced top-level {...} fragments, skipping
// anything between them. Braces inside string literals do not count toward
// the balance. An unterminated trailing fragment is dropped.
func Fragments(text string) []string {
	var out []string
	for i := 0; i < len(text); {
		start := strings.IndexByte(text[i:], '{')
		if start < 0 {
			break
		}
		start += i

		depth := 0
		inString := false
		escaped := false
		end := -1
	scan:
		for j := start; j < len(text); j++ {
			c := text[j]
			switch {
			case escaped:
				escaped = false
			case inString:
				if c == '\\' {
					escaped = true
				} else if c == '"' {
					inString = false
				}
			case c == '"':
				inString = true
			case c == '{':
				depth++
			case c == '}':
				depth--
				if depth == 0 {
					end = j + 1
					break scan
				}
			}
		}
		if end < 0 {
			break
		}
		out = append(out, text[start:end])
		i = end
	}
	return out
}

// Pairs returns every key→scalar pair in the fragment in document order,
// descending into nested objects and arrays. Parsing stops silently at the
// first malformed token; pairs found up to that point are returned.
func Pairs(fragment string) []Pair {
	type frame struct {
		isObject  bool
		key       string
		expectKey bool
	}

	dec := json.NewDecoder(strings.NewReader(fragment))
	dec.UseNumber()

	var stack []frame
	var out []Pair
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				if n := len(stack); n > 0 && stack[n-1].isObject {
					stack[n-1].expectKey = true // container filled the value slot
				}
				stack = append(stack, frame{isObject: d == '{', expectKey: d == '{'})
			case '}', ']':
				stack = stack[:len(stack)-1]
				if len(stack) == 0 && !dec.More() {
					return out
				}
			}
			continue
		}
		if n := len(stack); n > 0 && stack[n-1].isObject {
			top := &stack[n-1]
			if top.expectKey {
				top.key, _ = tok.(string)
				top.expectKey = false
			} else {
				out = append(out, Pair{Key: top.key, Value: tok})
				top.expectKey = true
			}
		}
	}
}

// Objects returns, for every object in the fragment, the object's direct
// scalar members in document order. Objects are reported in completion
// order, so leaf objects come before their parents. Malformed input yields
// the objects completed so far.
func Objects(fragment string) [][]Pair {
	type frame struct {
		isObject  bool
		key       string
		expectKey bool
		members   []Pair
	}

	dec := json.NewDecoder(strings.NewReader(fragment))
	dec.UseNumber()

	var stack []frame
	var out [][]Pair
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				if n := len(stack); n > 0 && stack[n-1].isObject {
					stack[n-1].expectKey = true
				}
				stack = append(stack, frame{isObject: d == '{', expectKey: d == '{'})
			case '}', ']':
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top.isObject {
					out = append(out, top.members)
				}
				if len(stack) == 0 && !dec.More() {
					return out
				}
			}
			continue
		}
		if n := len(stack); n > 0 && stack[n-1].isObject {
			top := &stack[n-1]
			if top.expectKey {
				top.key, _ = tok.(string)
				top.expectKey = false
			} else {
				top.members = append(top.members, Pair{Key: top.key, Value: tok})
				top.expectKey = true
			}
		}
	}
}

// FirstInt extracts the first run of decimal digits from s. Profiler
// exports wrap block ids in varying decoration ("Block 5", "5", 5); the
// digits are the identity.
func FirstInt(s string) (string, bool) {
	start := -1
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			if start < 0 {
				start = i
			}
		} else if start >= 0 {
			return s[start:i], true
		}
	}
	if start >= 0 {
		return s[start:], true
	}
	return "", false
}

// IsAllDigits reports whether s is a non-empty bare integer.
func IsAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// String renders a scalar value as text: strings as-is, numbers and bools
// in their literal form, null as "".
func (p Pair) String() string {
	switch v := p.Value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}
