package summary

import "time"

// Category restricts which cards count toward a mapping: only cards sitting
// in List contribute. Fragment is matched case-insensitively against source
// field names when a mapping has no explicit category.
type Category struct {
	Name     string `yaml:"name" json:"name"`
	Fragment string `yaml:"fragment" json:"fragment"`
	List     string `yaml:"list" json:"list"`
}

// Mapping pairs a per-card source field with a field on the summary card.
type Mapping struct {
	Source   string `yaml:"source" json:"source"`
	Summary  string `yaml:"summary" json:"summary"`
	Category string `yaml:"category,omitempty" json:"category,omitempty"`
}

// ListCount writes the number of cards in List to SummaryField.
type ListCount struct {
	List         string `yaml:"list" json:"list"`
	SummaryField string `yaml:"summary_field" json:"summary_field"`
}

// ScopedTotal sums Source only over cards in List and writes it to Summary.
type ScopedTotal struct {
	Source  string `yaml:"source" json:"source"`
	Summary string `yaml:"summary" json:"summary"`
	List    string `yaml:"list" json:"list"`
}

// Rules is the fixed aggregation configuration.
type Rules struct {
	Mappings     []Mapping     `yaml:"mappings" json:"mappings"`
	Categories   []Category    `yaml:"categories" json:"categories"`
	ListCounts   []ListCount   `yaml:"list_counts" json:"list_counts"`
	ScopedTotals []ScopedTotal `yaml:"scoped_totals" json:"scoped_totals"`
}

// Result describes one recompute run.
type Result struct {
	RunID        string             `json:"run_id"`
	StartedAt    time.Time          `json:"started_at"`
	Duration     time.Duration      `json:"duration"`
	Totals       map[string]float64 `json:"totals"`
	ListCounts   map[string]int     `json:"list_counts,omitempty"`
	ScopedTotals map[string]float64 `json:"scoped_totals,omitempty"`
	Counted      int                `json:"counted"`
	Skipped      int                `json:"skipped"`
	Missing      []string           `json:"missing,omitempty"`
}
