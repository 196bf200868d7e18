package blocks

// NullSource is the histogram bucket for instructions the compiler could not
// attribute to any source location.
const NullSource = "null"

// Histogram is an insertion-ordered source→instruction-count map.
// Key order is first-seen order and survives encoding to and from the
// summary table, which the attribution policy depends on.
type Histogram struct {
	keys   []string
	counts map[string]int64
}

func NewHistogram() *Histogram {
	return &Histogram{counts: make(map[string]int64)}
}

// Add increments key by n, appending the key on first sight.
func (h *Histogram) Add(key string, n int64) {
	if _, ok := h.counts[key]; !ok {
		h.keys = append(h.keys, key)
	}
	h.counts[key] += n
}

// Set overwrites the count for an existing key, or inserts it.
func (h *Histogram) Set(key string, n int64) {
	if _, ok := h.counts[key]; !ok {
		h.keys = append(h.keys, key)
	}
	h.counts[key] = n
}

// Get returns the count for key, zero if absent.
func (h *Histogram) Get(key string) int64 {
	return h.counts[key]
}

// Keys returns the keys in first-seen order. The slice is shared; callers
// must not modify it.
func (h *Histogram) Keys() []string {
	return h.keys
}

func (h *Histogram) Len() int {
	return len(h.keys)
}

// Total sums all counts.
func (h *Histogram) Total() int64 {
	var t int64
	for _, k := range h.keys {
		t += h.counts[k]
	}
	return t
}

// Clone returns an independent copy preserving key order.
func (h *Histogram) Clone() *Histogram {
	c := &Histogram{
		keys:   append([]string(nil), h.keys...),
		counts: make(map[string]int64, len(h.counts)),
	}
	for k, v := range h.counts {
		c.counts[k] = v
	}
	return c
}
