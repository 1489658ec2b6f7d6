package summary

import "errors"

var (
	// ErrSummaryFieldNotFound indicates a summary field name has no
	// definition on the board, so its total could not be written.
	ErrSummaryFieldNotFound = errors.New("summary field not found")
	// ErrInvalidRules indicates an inconsistent aggregation configuration.
	ErrInvalidRules = errors.New("invalid summary rules")
)
