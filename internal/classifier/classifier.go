// =============================================================================
// Bill Transformer - Keyword Classifier
// =============================================================================
//
// The classifier maps a sanitized merchant name to a category triple
// (broad / medium / fine-grained) by substring matching against a keyword
// table.
//
// MATCHING ORDER:
//   Keywords are sorted once, when the classifier is built:
//   1. Longer keywords first (length counted in characters, not bytes)
//   2. Equal lengths in ascending lexicographic order
//
//   The first keyword contained in the name wins and scanning stops. With
//   {"超市", "大型超市"} the name "大型超市购物" therefore resolves to
//   "大型超市", never to the shorter, more general key.
//
// =============================================================================

package classifier

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ginjaninja78/bill-transformer/internal/types"
)

// KeywordTable maps a keyword to the category triple it assigns.
type KeywordTable map[string]types.CategoryTriple

// Classifier assigns category triples to names. It is read-only after New
// and safe for concurrent use.
type Classifier struct {
	keywords []string
	table    KeywordTable
}

// New builds a Classifier from a keyword table. The table is copied; empty
// keywords are ignored because they would match every name.
func New(table KeywordTable) *Classifier {
	c := &Classifier{
		keywords: make([]string, 0, len(table)),
		table:    make(KeywordTable, len(table)),
	}

	for keyword, triple := range table {
		if keyword == "" {
			continue
		}
		c.table[keyword] = triple
		c.keywords = append(c.keywords, keyword)
	}

	sort.Slice(c.keywords, func(i, j int) bool {
		li := utf8.RuneCountInString(c.keywords[i])
		lj := utf8.RuneCountInString(c.keywords[j])
		if li != lj {
			return li > lj
		}
		return c.keywords[i] < c.keywords[j]
	})

	return c
}

// Classify returns the triple of the highest-priority keyword found in name.
// The boolean is false when nothing matched; that is not an error.
func (c *Classifier) Classify(name string) (types.CategoryTriple, bool) {
	_, triple, ok := c.Match(name)
	return triple, ok
}

// Match is Classify that also reports which keyword won.
func (c *Classifier) Match(name string) (string, types.CategoryTriple, bool) {
	if name == "" {
		return "", types.CategoryTriple{}, false
	}
	for _, keyword := range c.keywords {
		if strings.Contains(name, keyword) {
			return keyword, c.table[keyword], true
		}
	}
	return "", types.CategoryTriple{}, false
}

// Keywords returns the keywords in matching order.
func (c *Classifier) Keywords() []string {
	out := make([]string, len(c.keywords))
	copy(out, c.keywords)
	return out
}

// Len returns the number of usable keywords.
func (c *Classifier) Len() int {
	return len(c.keywords)
}
