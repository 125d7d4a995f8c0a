package ledger

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Shape tags the wire shape of a balance payload. It is decided once when
// the response is decoded; nothing downstream sniffs structure again.
type Shape int

const (
	// ShapeFlat is a flat list where every record carries a full path.
	ShapeFlat Shape = iota
	// ShapeNested is a forest where records already carry children.
	ShapeNested
)

// Normalizer turns API records into canonical account trees. Sibling order
// is locale-collated, which is why the normalizer is built per locale.
type Normalizer struct {
	col *collate.Collator
}

// NewNormalizer builds a normalizer whose sibling sort follows the given
// locale, accent-insensitively.
func NewNormalizer(locale language.Tag) *Normalizer {
	return &Normalizer{col: collate.New(locale, collate.Loose)}
}

// Normalize produces one canonical forest from either payload shape. For
// flat input, missing intermediate parents are synthesized with zero
// amounts; an authoritative record at the same path always wins over a
// synthesized placeholder. Normalizing an already-nested forest is
// idempotent.
func (n *Normalizer) Normalize(records []Record, shape Shape) []*Account {
	var roots []*Account
	switch shape {
	case ShapeNested:
		roots = fromNested(records, "")
	default:
		roots = fromFlat(records)
	}
	n.sortSiblings(roots)
	return roots
}

func fromFlat(records []Record) []*Account {
	byPath := make(map[string]*Account, len(records)*2)
	order := make([]string, 0, len(records)*2)

	insert := func(a *Account) {
		existing, ok := byPath[a.FullPath]
		if !ok {
			byPath[a.FullPath] = a
			order = append(order, a.FullPath)
			return
		}
		// Placeholders never overwrite real data.
		if a.Authoritative && !existing.Authoritative {
			byPath[a.FullPath] = a
		}
	}

	for _, r := range records {
		segments := strings.Split(r.FullPath, PathSeparator)
		for i := 1; i < len(segments); i++ {
			prefix := strings.Join(segments[:i], PathSeparator)
			insert(&Account{
				Name:     segments[i-1],
				FullPath: prefix,
			})
		}
		insert(&Account{
			Name:            segmentName(r),
			FullPath:        r.FullPath,
			Amounts:         copyAmounts(r.Amounts),
			Cleared:         copyAmounts(r.Cleared),
			LastClearedDate: r.LastClearedDate,
			Authoritative:   true,
		})
	}

	var roots []*Account
	for _, path := range order {
		a := byPath[path]
		parent := parentPath(path)
		if parent == "" {
			roots = append(roots, a)
			continue
		}
		byPath[parent].Children = append(byPath[parent].Children, a)
	}
	return roots
}

func fromNested(records []Record, parent string) []*Account {
	out := make([]*Account, 0, len(records))
	for _, r := range records {
		path := r.FullPath
		if path == "" {
			path = r.Name
			if parent != "" {
				path = parent + PathSeparator + r.Name
			}
		}
		a := &Account{
			Name:            segmentName(r),
			FullPath:        path,
			Amounts:         copyAmounts(r.Amounts),
			Cleared:         copyAmounts(r.Cleared),
			LastClearedDate: r.LastClearedDate,
			Authoritative:   true,
		}
		a.Children = fromNested(r.Children, path)
		out = append(out, a)
	}
	return out
}

func segmentName(r Record) string {
	if r.Name != "" {
		return r.Name
	}
	return lastSegment(r.FullPath)
}

// sortSiblings orders every sibling list by display name, accent-insensitive
// ascending. One special case from the source ledgers: a segment matching
// "liquido" (accent-stripped) always sorts last among its siblings.
func (n *Normalizer) sortSiblings(accounts []*Account) {
	sort.SliceStable(accounts, func(i, j int) bool {
		li, lj := isLiquido(accounts[i].Name), isLiquido(accounts[j].Name)
		if li != lj {
			return lj
		}
		return n.col.CompareString(accounts[i].Name, accounts[j].Name) < 0
	})
	for _, a := range accounts {
		n.sortSiblings(a.Children)
	}
}

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldName lower-cases a display name and strips accents, the comparison
// used both by the "liquido" ordering rule and by initial collapse state.
func FoldName(s string) string {
	stripped, _, err := transform.String(accentStripper, s)
	if err != nil {
		stripped = s
	}
	return strings.ToLower(stripped)
}

func isLiquido(name string) bool {
	return FoldName(name) == "liquido"
}
