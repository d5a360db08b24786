package reconcile

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// minOverlap is the shortest common substring accepted as evidence that two
// product names refer to the same product. Anything shorter matches on
// coincidence ("al" in "almond" and "masala").
const minOverlap = 4

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldName normalizes a product name for matching: diacritics stripped,
// lowercased, punctuation dropped, whitespace collapsed.
func FoldName(name string) string {
	folded, _, err := transform.String(foldTransformer, name)
	if err != nil {
		folded = name
	}
	var sb strings.Builder
	for _, r := range strings.ToLower(folded) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '/':
			sb.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

// ProductResolver matches spreadsheet product names against the ledger's
// known products. Spreadsheets come from hand-maintained registers, so the
// same product appears as "Kesar Mango Pulp", "mango pulp (kesar)" or
// "MangoPulp"; the resolver maps all of them to one record.
type ProductResolver struct {
	known  []string          // canonical names in registration order
	folded map[string]string // folded form -> canonical name
}

// NewProductResolver creates a resolver over the given canonical names.
func NewProductResolver(names []string) *ProductResolver {
	r := &ProductResolver{folded: make(map[string]string, len(names))}
	for _, name := range names {
		r.Register(name)
	}
	return r
}

// Register adds a canonical product name to the candidate set.
func (r *ProductResolver) Register(name string) {
	key := FoldName(name)
	if key == "" {
		return
	}
	if _, exists := r.folded[key]; !exists {
		r.known = append(r.known, name)
		r.folded[key] = name
	}
}

// Resolve maps a raw spreadsheet name to a canonical product name.
//
// Match order: exact folded match, then containment in either direction
// (a raw "Kesar Mango Pulp" resolves to the known "Mango Pulp"), then the
// candidate sharing the longest common substring of at least minOverlap
// runes. Ties on overlap length go to the earlier-registered candidate so
// resolution is deterministic across runs.
func (r *ProductResolver) Resolve(raw string) (string, bool) {
	key := FoldName(raw)
	if key == "" {
		return "", false
	}
	if canonical, ok := r.folded[key]; ok {
		return canonical, true
	}

	var best string
	bestLen := minOverlap - 1
	for _, name := range r.known {
		candidate := FoldName(name)
		shorter := len([]rune(key))
		if l := len([]rune(candidate)); l < shorter {
			shorter = l
		}
		if shorter >= minOverlap && (strings.Contains(key, candidate) || strings.Contains(candidate, key)) {
			return name, true
		}
		if overlap := longestCommonSubstring(key, candidate); overlap > bestLen {
			best, bestLen = name, overlap
		}
	}
	if best != "" {
		return best, true
	}
	return "", false
}

// longestCommonSubstring returns the length in runes of the longest
// contiguous substring shared by a and b.
func longestCommonSubstring(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	best := 0
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > best {
					best = curr[j]
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
	}
	return best
}
