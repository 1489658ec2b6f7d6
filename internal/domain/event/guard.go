package event

import (
	"context"
	"fmt"
	"strings"
)

// DefaultRequiredField is the field a card needs before it may leave the
// guarded list.
const DefaultRequiredField = "Responsibility"

// DefaultGuardComment is posted on a card whose move was reverted. %s is
// the required field name.
const DefaultGuardComment = "This card was moved back because the %q field is empty. Please fill it in before moving the card out of this list."

// GuardConfig describes the move guard. The zero value disables it.
type GuardConfig struct {
	// TargetListID is the guarded list.
	TargetListID string `yaml:"target_list_id" json:"target_list_id"`
	// ReturnListID receives reverted cards. Empty returns the card to the
	// list it came from.
	ReturnListID string `yaml:"return_list_id" json:"return_list_id"`
	// RequiredField must hold a value for the move to stand.
	RequiredField string `yaml:"required_field" json:"required_field"`
	// Comment is a format string taking the field name.
	Comment string `yaml:"comment" json:"comment"`
}

// Enabled reports whether a guarded list is configured.
func (g GuardConfig) Enabled() bool {
	return strings.TrimSpace(g.TargetListID) != ""
}

func (g GuardConfig) requiredField() string {
	if g.RequiredField == "" {
		return DefaultRequiredField
	}
	return g.RequiredField
}

func (g GuardConfig) comment() string {
	format := g.Comment
	if format == "" {
		format = DefaultGuardComment
	}
	if !strings.Contains(format, "%") {
		return format
	}
	return fmt.Sprintf(format, g.requiredField())
}

// applies reports whether ev moves a card out of the guarded list.
func (g GuardConfig) applies(ev ChangeEvent) bool {
	return g.Enabled() && ev.IsMove() && ev.ListBefore == g.TargetListID
}

// enforceGuard reverts a move out of the guarded list when the card has no
// value for the required field. It reports whether the move was reverted.
// The compensating writes run once and are never retried.
func (s *Service) enforceGuard(ctx context.Context, ev ChangeEvent) (bool, error) {
	g := s.guard
	if !g.applies(ev) {
		return false, nil
	}

	name := g.requiredField()
	fieldID, ok, err := s.board.ResolveFieldID(ctx, name)
	if err != nil {
		return false, fmt.Errorf("resolving guard field: %w", err)
	}
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrGuardFieldNotFound, name)
	}

	card, err := s.board.GetCard(ctx, ev.Card.ID)
	if err != nil {
		return false, fmt.Errorf("fetching guarded card: %w", err)
	}
	if item, ok := card.FieldItem(fieldID); ok && !item.IsEmpty() {
		return false, nil
	}

	returnTo := g.ReturnListID
	if returnTo == "" {
		returnTo = ev.ListBefore
	}
	if err := s.board.MoveCard(ctx, ev.Card.ID, returnTo); err != nil {
		return false, fmt.Errorf("reverting move: %w", err)
	}
	s.logger.Info("move reverted", "card", ev.Card.ID, "field", name, "list", returnTo)

	if err := s.board.AddComment(ctx, ev.Card.ID, g.comment()); err != nil {
		return true, fmt.Errorf("commenting on reverted card: %w", err)
	}
	return true, nil
}
