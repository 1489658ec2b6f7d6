package summary

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

const (
	// InStockList is the list whose cards count toward in-stock totals.
	InStockList = "Inventory (In-stock)"
	// InUseList is the list whose cards count toward in-use totals.
	InUseList = "In-operation"
	// PrepList holds locations still being prepared.
	PrepList = "Prep locations/المواقع قيد التجهيز"
)

// DefaultCategories returns the in-stock and in-use inclusion rules.
func DefaultCategories() []Category {
	return []Category{
		{Name: "in-stock", Fragment: "in-stock quantity", List: InStockList},
		{Name: "in-use", Fragment: "in-use quantity", List: InUseList},
	}
}

// DefaultMappings returns the production field mapping list.
func DefaultMappings() []Mapping {
	return []Mapping{
		{Source: "Geidea in-stock quantity", Summary: "Geidea (In-stock)"},
		{Source: "Geidea in-use quantity", Summary: "Geidea (In-use)"},
		{Source: "Surepay in-stock quantity", Summary: "Surepay (In-stock)"},
		{Source: "Black Box in-stock quantity", Summary: "Black Box (In-stock)"},
		{Source: "Malahi Device in-stock quantity", Summary: "Malahi Device (In-stock)"},
		{Source: "Arcade in-stock quantity", Summary: "Arcade games (In-stock)"},
		{Source: "Arcade in-use quantity", Summary: "Arcade games (In-use)"},
		{Source: "Surepay in-use quantity", Summary: "Surepay (In-use)"},
		{Source: "Black box in-use quantity", Summary: "Black box (In-use)"},
		{Source: "Malahi device in-use quantity", Summary: "Malahi device (In-use)"},
	}
}

// DefaultRules returns the production aggregation configuration.
func DefaultRules() Rules {
	return Rules{
		Mappings:   DefaultMappings(),
		Categories: DefaultCategories(),
		ListCounts: []ListCount{{List: PrepList, SummaryField: "Total new location"}},
	}
}

// Validate checks the rules for contradictions: every mapping names both
// fields, explicit categories exist, and no source field feeds two
// different summary fields.
func (r Rules) Validate() error {
	targets := make(map[string]string, len(r.Mappings))
	for i, m := range r.Mappings {
		if strings.TrimSpace(m.Source) == "" || strings.TrimSpace(m.Summary) == "" {
			return fmt.Errorf("%w: mapping %d needs source and summary", ErrInvalidRules, i)
		}
		if prev, ok := targets[m.Source]; ok && prev != m.Summary {
			return fmt.Errorf("%w: source %q maps to both %q and %q", ErrInvalidRules, m.Source, prev, m.Summary)
		}
		targets[m.Source] = m.Summary
		if m.Category != "" {
			if _, ok := r.categoryByName(m.Category); !ok {
				return fmt.Errorf("%w: mapping %q names unknown category %q", ErrInvalidRules, m.Source, m.Category)
			}
		}
	}
	for _, c := range r.Categories {
		if strings.TrimSpace(c.List) == "" {
			return fmt.Errorf("%w: category %q has no list", ErrInvalidRules, c.Name)
		}
	}
	for _, lc := range r.ListCounts {
		if lc.List == "" || lc.SummaryField == "" {
			return fmt.Errorf("%w: list count needs list and summary_field", ErrInvalidRules)
		}
	}
	for _, st := range r.ScopedTotals {
		if st.Source == "" || st.Summary == "" || st.List == "" {
			return fmt.Errorf("%w: scoped total needs source, summary and list", ErrInvalidRules)
		}
	}
	return nil
}

func (r Rules) categoryByName(name string) (Category, bool) {
	fold := cases.Fold()
	want := fold.String(name)
	for _, c := range r.Categories {
		if fold.String(c.Name) == want {
			return c, true
		}
	}
	return Category{}, false
}

// CategoryFor returns the inclusion rule that applies to m. An explicit
// category wins; otherwise the first category whose fragment appears in
// the source field name applies.
func (r Rules) CategoryFor(m Mapping) (Category, bool) {
	if m.Category != "" {
		return r.categoryByName(m.Category)
	}
	fold := cases.Fold()
	source := fold.String(m.Source)
	for _, c := range r.Categories {
		if c.Fragment == "" {
			continue
		}
		if strings.Contains(source, fold.String(c.Fragment)) {
			return c, true
		}
	}
	return Category{}, false
}

// Includes reports whether a card in listName counts toward a mapping
// with the given category. Uncategorised mappings count everywhere.
func Includes(category Category, categorised bool, listName string) bool {
	if !categorised {
		return true
	}
	return listName == category.List
}
