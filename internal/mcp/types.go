package mcp

import (
	"time"

	"github.com/rpggio/boardsum/internal/domain/board"
	"github.com/rpggio/boardsum/internal/domain/summary"
)

type emptyInput struct{}

type RecomputeOutput struct {
	RunID      string             `json:"run_id,omitempty"`
	StartedAt  string             `json:"started_at,omitempty"`
	DurationMS int64              `json:"duration_ms"`
	Totals     map[string]float64 `json:"totals,omitempty"`
	ListCounts map[string]int     `json:"list_counts,omitempty"`
	Scoped     map[string]float64 `json:"scoped_totals,omitempty"`
	Counted    int                `json:"counted"`
	Skipped    int                `json:"skipped"`
	// Coalesced is set when another recompute was already running and
	// will pick up this request.
	Coalesced bool `json:"coalesced"`
}

func toRecomputeOutput(res *summary.Result) RecomputeOutput {
	if res == nil {
		return RecomputeOutput{Coalesced: true}
	}
	return RecomputeOutput{
		RunID:      res.RunID,
		StartedAt:  res.StartedAt.UTC().Format(time.RFC3339),
		DurationMS: res.Duration.Milliseconds(),
		Totals:     res.Totals,
		ListCounts: res.ListCounts,
		Scoped:     res.ScopedTotals,
		Counted:    res.Counted,
		Skipped:    res.Skipped,
	}
}

type MappingView struct {
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	Category string `json:"category,omitempty"`
	// List is the list a card must sit in to count. Empty means any list.
	List string `json:"list,omitempty"`
}

type MappingsOutput struct {
	Mappings     []MappingView         `json:"mappings"`
	ListCounts   []summary.ListCount   `json:"list_counts"`
	ScopedTotals []summary.ScopedTotal `json:"scoped_totals"`
}

func toMappingsOutput(rules summary.Rules) MappingsOutput {
	out := MappingsOutput{
		Mappings:     make([]MappingView, 0, len(rules.Mappings)),
		ListCounts:   rules.ListCounts,
		ScopedTotals: rules.ScopedTotals,
	}
	for _, m := range rules.Mappings {
		view := MappingView{Source: m.Source, Summary: m.Summary}
		if cat, ok := rules.CategoryFor(m); ok {
			view.Category = cat.Name
			view.List = cat.List
		}
		out.Mappings = append(out.Mappings, view)
	}
	if out.ListCounts == nil {
		out.ListCounts = []summary.ListCount{}
	}
	if out.ScopedTotals == nil {
		out.ScopedTotals = []summary.ScopedTotal{}
	}
	return out
}

type ClearCacheOutput struct {
	Cleared       bool `json:"cleared"`
	ListsDropped  int  `json:"lists_dropped"`
	FieldsDropped int  `json:"fields_dropped"`
}

type ClearFieldParams struct {
	Field string `json:"field" jsonschema:"name of the summary field to clear on the summary card"`
}

type ClearFieldOutput struct {
	Field   string `json:"field"`
	Cleared bool   `json:"cleared"`
}

type ResolveFieldParams struct {
	Name string `json:"name" jsonschema:"exact custom field name"`
}

type ResolveFieldOutput struct {
	Name  string `json:"name"`
	ID    string `json:"id,omitempty"`
	Found bool   `json:"found"`
}

type BoardFieldsOutput struct {
	Fields []board.CustomField `json:"fields"`
}
