package lutlib

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/agext/levenshtein"
)

// fuzzyThreshold is the minimum normalized similarity for a fuzzy match to be
// accepted. Heuristic policy value; below it a near-miss is considered a miss.
const fuzzyThreshold = 0.6

// Resolve maps a caller-supplied LUT identifier to a concrete file path.
// Resolution tries, in order:
//
//  1. the identifier as a filesystem path, bypassing the index;
//  2. the identifier's lowercased base filename as an index key;
//  3. the closest indexed key by normalized edit-distance similarity,
//     accepted only at or above fuzzyThreshold.
//
// ok is false when all three miss. Resolution never returns an error: a miss
// is an expected outcome, not a failure.
func (l *Library) Resolve(id string) (path string, ok bool) {
	if id == "" {
		return "", false
	}
	if st, err := os.Stat(id); err == nil && !st.IsDir() {
		if abs, aerr := filepath.Abs(id); aerr == nil {
			return abs, true
		}
		return id, true
	}
	ix := l.Index()
	if path, ok = ix.Lookup(id); ok {
		return path, true
	}
	return ix.fuzzyLookup(strings.ToLower(filepath.Base(id)))
}

// fuzzyLookup returns the indexed path whose key is most similar to name.
func (ix *Index) fuzzyLookup(name string) (string, bool) {
	params := levenshtein.NewParams()
	best, bestScore := "", fuzzyThreshold
	for key := range ix.names {
		if score := levenshtein.Similarity(name, key, params); score >= bestScore {
			best, bestScore = key, score
		}
	}
	if best == "" {
		return "", false
	}
	return ix.names[best][0], true
}
