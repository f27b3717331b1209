// Package report summarizes a converted bill table: how much each household
// member spent and how the money splits across broad categories.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/bill-transformer/internal/types"
)

// Unclassified is the category label used for rows without a keyword match.
const Unclassified = "未分类"

// Total is an amount aggregated under one label.
type Total struct {
	Label  string
	Rows   int
	Amount decimal.Decimal
}

// Summary aggregates the data rows of one output table.
type Summary struct {
	Rows         int
	Unparsed     int
	Unclassified int
	Amount       decimal.Decimal
	ByMember     []Total
	ByCategory   []Total
}

// Summarize computes totals over table. A leading title row is ignored.
// Amounts that cannot be parsed are counted in Unparsed and left out of
// every total.
func Summarize(table []types.OutputRow) Summary {
	var s Summary
	members := map[string]*Total{}
	categories := map[string]*Total{}

	for i, row := range table {
		if i == 0 && isTitle(row) {
			continue
		}
		if len(row) < types.OutputWidth {
			continue
		}
		s.Rows++

		category := row[types.ColCategoryBroad]
		if category == "" {
			category = Unclassified
			s.Unclassified++
		}

		amount, err := ParseAmount(row[types.ColAmount])
		if err != nil {
			s.Unparsed++
			continue
		}

		s.Amount = s.Amount.Add(amount)
		add(members, row[types.ColMember], amount)
		add(categories, category, amount)
	}

	s.ByMember = sorted(members)
	s.ByCategory = sorted(categories)
	return s
}

// ParseAmount parses an amount cell. Currency signs, thousands separators
// and surrounding whitespace are accepted.
func ParseAmount(cell string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer("¥", "", "￥", "", ",", "", " ", "").Replace(strings.TrimSpace(cell))
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", cell, err)
	}
	return amount, nil
}

// Lines renders the summary as human readable lines.
func (s Summary) Lines() []string {
	lines := []string{
		fmt.Sprintf("rows: %d, total: %s", s.Rows, s.Amount.StringFixed(2)),
	}
	if s.Unclassified > 0 {
		lines = append(lines, fmt.Sprintf("unclassified rows: %d", s.Unclassified))
	}
	if s.Unparsed > 0 {
		lines = append(lines, fmt.Sprintf("rows with unreadable amounts: %d", s.Unparsed))
	}
	for _, t := range s.ByMember {
		lines = append(lines, fmt.Sprintf("member %s: %s (%d rows)", t.Label, t.Amount.StringFixed(2), t.Rows))
	}
	for _, t := range s.ByCategory {
		lines = append(lines, fmt.Sprintf("category %s: %s (%d rows)", t.Label, t.Amount.StringFixed(2), t.Rows))
	}
	return lines
}

// Merge combines summaries of several tables.
func Merge(summaries ...Summary) Summary {
	var out Summary
	members := map[string]*Total{}
	categories := map[string]*Total{}

	for _, s := range summaries {
		out.Rows += s.Rows
		out.Unparsed += s.Unparsed
		out.Unclassified += s.Unclassified
		out.Amount = out.Amount.Add(s.Amount)
		for _, t := range s.ByMember {
			merge(members, t)
		}
		for _, t := range s.ByCategory {
			merge(categories, t)
		}
	}

	out.ByMember = sorted(members)
	out.ByCategory = sorted(categories)
	return out
}

func add(totals map[string]*Total, label string, amount decimal.Decimal) {
	merge(totals, Total{Label: label, Rows: 1, Amount: amount})
}

func merge(totals map[string]*Total, t Total) {
	cur, ok := totals[t.Label]
	if !ok {
		cur = &Total{Label: t.Label}
		totals[t.Label] = cur
	}
	cur.Rows += t.Rows
	cur.Amount = cur.Amount.Add(t.Amount)
}

// sorted orders totals by amount, largest first, then by label.
func sorted(totals map[string]*Total) []Total {
	out := make([]Total, 0, len(totals))
	for _, t := range totals {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Label < out[j].Label
	})
	return out
}

func isTitle(row types.OutputRow) bool {
	return len(row) > types.ColName && row[types.ColName] == types.TitleRow()[types.ColName]
}
