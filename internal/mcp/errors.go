package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/rpggio/boardsum/internal/domain/board"
	"github.com/rpggio/boardsum/internal/domain/summary"
	"github.com/rpggio/boardsum/internal/trello"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
	cause        error
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.RecoveryHint != "" {
		msg += " (" + e.RecoveryHint + ")"
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return e.cause
}

// MapError maps domain errors to MCP error codes. Unknown errors map to
// nil.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, summary.ErrSummaryFieldNotFound):
		return &APIError{Code: "SUMMARY_FIELD_NOT_FOUND", Message: err.Error(), RecoveryHint: "Check the field name with list_board_fields", cause: err}
	case errors.Is(err, board.ErrCardNotFound):
		return &APIError{Code: "CARD_NOT_FOUND", Message: err.Error(), RecoveryHint: "Check SUMMARY_CARD_ID and SUMMARY_CARD_ID_LONG", cause: err}
	case errors.Is(err, board.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error(), cause: err}
	case trello.IsRateLimited(err):
		return &APIError{Code: "RATE_LIMITED", Message: "board API rate limit reached", RecoveryHint: "Retry in a few seconds", cause: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &APIError{Code: "TIMEOUT", Message: "board call timed out", RecoveryHint: "Retry later", cause: err}
	default:
		return nil
	}
}

// toolError returns the mapped error when there is one.
func toolError(err error) error {
	if mapped := MapError(err); mapped != nil {
		return mapped
	}
	return err
}
