package lookup

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// Item is an inventory item as seen by the search index.
type Item struct {
	ID       uuid.UUID
	Code     string // SKU
	Name     string
	Category string
}

// Result is a scored hit.
type Result struct {
	Item  Item
	Score int
}

const (
	codeWeight     = 10
	nameWordWeight = 3
	nameSubWeight  = 2
	categoryWeight = 1
)

type indexedItem struct {
	item     Item
	code     string
	name     string
	words    map[string]bool
	category string
}

// Index ranks inventory items against free-text queries.
type Index struct {
	items []indexedItem
}

// New builds an Index with pre-normalized fields.
func New(items []Item) *Index {
	idx := &Index{items: make([]indexedItem, len(items))}
	for i, it := range items {
		name := normalize(it.Name)
		words := make(map[string]bool)
		for _, w := range tokenize(name) {
			words[w] = true
		}
		idx.items[i] = indexedItem{
			item:     it,
			code:     normalize(it.Code),
			name:     name,
			words:    words,
			category: normalize(it.Category),
		}
	}
	return idx
}

// Search returns items where every query token hits the code, name or
// category, best first. Quantity tokens such as "5kg" are ignored so a
// line typed as "tomato 5kg" still finds tomatoes. An empty query returns
// every item in name order.
func (x *Index) Search(query string) []Result {
	tokens := stripQuantities(tokenize(normalize(query)))
	full := strings.Join(tokens, " ")

	var results []Result
	for _, it := range x.items {
		score, ok := scoreItem(it, tokens)
		if !ok {
			continue
		}
		if full != "" && full == it.code {
			score += codeWeight
		}
		results = append(results, Result{Item: it.item, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Item.Name < results[j].Item.Name
	})
	return results
}

func scoreItem(it indexedItem, tokens []string) (int, bool) {
	score := 0
	for _, tok := range tokens {
		best := 0
		if it.words[tok] {
			best = nameWordWeight
		} else if strings.Contains(it.name, tok) {
			best = nameSubWeight
		}
		if best == 0 && strings.Contains(it.code, tok) {
			best = nameSubWeight
		}
		if best == 0 && strings.Contains(it.category, tok) {
			best = categoryWeight
		}
		if best == 0 {
			return 0, false
		}
		score += best
	}
	return score, true
}

// normalize converts a string to lowercase and replaces non-alphanumeric chars with spaces
func normalize(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))

	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' {
			sb.WriteRune(unicode.ToLower(r))
		} else {
			sb.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(sb.String()), " ")
}

func tokenize(s string) []string {
	return strings.Fields(s)
}

func stripQuantities(tokens []string) []string {
	rest := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, _, ok := ParseQtyUnit(tok); ok {
			continue
		}
		rest = append(rest, tok)
	}
	return rest
}

// ParseQtyUnit parses a token like "5kg" into (5, "kg", true).
func ParseQtyUnit(tok string) (float64, string, bool) {
	digitEnd := 0
	for i, r := range tok {
		if unicode.IsDigit(r) || r == '.' {
			digitEnd = i + 1
		} else {
			break
		}
	}
	if digitEnd == 0 || digitEnd == len(tok) {
		return 0, "", false
	}

	qty, err := strconv.ParseFloat(tok[:digitEnd], 64)
	if err != nil {
		return 0, "", false
	}

	unit := tok[digitEnd:]
	for _, r := range unit {
		if !unicode.IsLetter(r) {
			return 0, "", false
		}
	}
	return qty, unit, true
}
