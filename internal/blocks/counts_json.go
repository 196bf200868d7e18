package blocks

import (
	"encoding/json"
	"strconv"
	"strings"
)

// EncodeCounts renders the histogram as a minimal JSON object literal,
// keys in first-seen order.
func EncodeCounts(h *Histogram) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range h.Keys() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(quoteJSON(k))
		b.WriteByte(':')
		b.WriteString(strconv.FormatInt(h.Get(k), 10))
	}
	b.WriteByte('}')
	return b.String()
}

// DecodeCounts parses a source-counts object back into a histogram,
// preserving key order. Non-integer values and trailing garbage are
// tolerated; whatever parsed cleanly so far is returned.
func DecodeCounts(s string) *Histogram {
	h := NewHistogram()
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return h
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return h
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return h
		}
		key, ok := keyTok.(string)
		if !ok {
			return h
		}
		valTok, err := dec.Token()
		if err != nil {
			return h
		}
		num, ok := valTok.(json.Number)
		if !ok {
			continue
		}
		n, err := num.Int64()
		if err != nil {
			continue
		}
		h.Set(key, n)
	}
	return h
}

// quoteJSON returns the JSON string literal for s without HTML escaping,
// so sources like "Queens.<init>" stay readable in the table.
func quoteJSON(s string) string {
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return `""`
	}
	return strings.TrimRight(b.String(), "\n")
}
