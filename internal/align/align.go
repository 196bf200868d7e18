// Package align joins the profiler's timed per-block instruction listing
// with the compiler's per-block disassembly, bridging the two block-id
// spaces through a mapping document. The join is positional and
// best-effort: it exists for manual inspection, not for attribution.
package align

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/HumphreyHCB/BuboExperiments/internal/jsonx"
)

// Direction says which way the bridging document's pairs point.
type Direction int

const (
	// Forward: pair keys are external (profiler) ids, values internal
	// (compiler) ids. Ties in the heuristic default here.
	Forward Direction = iota
	// Inverted: the document's field order was reversed; swap sides.
	Inverted
)

func (d Direction) String() string {
	if d == Inverted {
		return "inverted"
	}
	return "forward"
}

// BridgePair is one candidate id association extracted from the bridging
// document, before the direction check.
type BridgePair struct {
	Key   string // external-side candidate
	Value string // internal-side candidate
}

// LoadBridge reads the bridging document and extracts candidate id pairs.
// A missing file is an empty mapping; every external block then aligns
// against nothing.
func LoadBridge(path string, log *zap.Logger) ([]BridgePair, error) {
	if log == nil {
		log = zap.NewNop()
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn("bridge file missing, aligning with empty mapping", zap.String("path", path))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ExtractPairs(string(data)), nil
}

// ExtractPairs scans each top-level object fragment for one external-side
// and one internal-side id candidate. Key names containing "vtune" are
// external; names containing "graal", "hotspot"+"block", or a bare
// "block" (but not "blocksize" and friends) are internal. The first
// candidate on each side wins; fragments missing a side contribute
// nothing.
func ExtractPairs(text string) []BridgePair {
	var out []BridgePair
	for _, frag := range jsonx.Fragments(text) {
		var external, internal string
		for _, p := range jsonx.Pairs(frag) {
			id, ok := jsonx.FirstInt(p.String())
			if !ok {
				continue
			}
			key := strings.ToLower(p.Key)
			switch {
			case strings.Contains(key, "vtune"):
				if external == "" {
					external = id
				}
			case strings.Contains(key, "graal"),
				strings.Contains(key, "hotspot") && strings.Contains(key, "block"),
				strings.Contains(key, "block") && !strings.Contains(key, "size"):
				if internal == "" {
					internal = id
				}
			}
		}
		if external != "" && internal != "" {
			out = append(out, BridgePair{Key: external, Value: internal})
		}
	}
	return out
}

// ChooseDirection decides whether the extracted pairs need swapping by
// counting which side looks more id-like (bare integers). Documented
// failure mode: a document whose decorated side still contains more bare
// integers keeps Forward; ties keep Forward.
func ChooseDirection(pairs []BridgePair) Direction {
	var keyLike, valueLike int
	for _, p := range pairs {
		if jsonx.IsAllDigits(p.Key) {
			keyLike++
		}
		if jsonx.IsAllDigits(p.Value) {
			valueLike++
		}
	}
	if keyLike < valueLike {
		return Inverted
	}
	return Forward
}

// BuildMap materializes the external→internal lookup, swapping sides when
// the direction check says the document was reversed. First pair wins on
// duplicate keys.
func BuildMap(pairs []BridgePair, dir Direction) map[string]string {
	m := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v := p.Key, p.Value
		if dir == Inverted {
			k, v = v, k
		}
		if _, seen := m[k]; !seen {
			m[k] = v
		}
	}
	return m
}

// NormalizeID reduces a block reference to its digits, falling back to the
// trimmed text when it carries none.
func NormalizeID(s string) string {
	if id, ok := jsonx.FirstInt(s); ok {
		return id
	}
	return strings.TrimSpace(s)
}

// fmtTime renders a per-line time at report precision.
func fmtTime(t float64) string {
	return fmt.Sprintf("%.3f", t)
}
