package event

import (
	"time"

	"github.com/rpggio/boardsum/internal/domain/board"
)

// Kind is the board action type carried by a change event.
type Kind string

const (
	KindCreateCard            Kind = "createCard"
	KindUpdateCard            Kind = "updateCard"
	KindDeleteCard            Kind = "deleteCard"
	KindUpdateCustomFieldItem Kind = "updateCustomFieldItem"
)

// Relevant reports whether events of this kind can change a total.
func (k Kind) Relevant() bool {
	switch k {
	case KindCreateCard, KindUpdateCard, KindDeleteCard, KindUpdateCustomFieldItem:
		return true
	default:
		return false
	}
}

// ChangeEvent describes one mutation of a card.
type ChangeEvent struct {
	ActionID  string    `json:"action_id,omitempty"`
	Kind      Kind      `json:"kind"`
	Date      time.Time `json:"date,omitempty"`
	BoardID   string    `json:"board_id,omitempty"`
	BoardName string    `json:"board_name,omitempty"`
	Member    string    `json:"member,omitempty"`

	// Card.ListID is the list the payload reported, if any.
	Card board.Card `json:"card"`

	// ListBefore and ListAfter are set when the card moved between lists.
	ListBefore string `json:"list_before,omitempty"`
	ListAfter  string `json:"list_after,omitempty"`

	// Field is the custom field definition touched by the event.
	Field *board.CustomField `json:"field,omitempty"`
	Old   board.ItemValue    `json:"old,omitempty"`
	New   board.ItemValue    `json:"new,omitempty"`
}

// IsMove reports whether the event moved the card to another list.
func (e ChangeEvent) IsMove() bool {
	return e.ListBefore != "" && e.ListAfter != "" && e.ListBefore != e.ListAfter
}

// ListID returns the card's list at event time as far as the payload
// tells.
func (e ChangeEvent) ListID() string {
	if e.ListAfter != "" {
		return e.ListAfter
	}
	return e.Card.ListID
}

// StatusOK is the only acknowledgment status. Processing errors are
// reported to the error notifier instead.
const StatusOK = "ok"

// Acknowledgment messages.
const (
	MessageReceived       = "Webhook received"
	MessageIgnoredAction  = "Ignored action"
	MessageIgnoredSummary = "Ignored summary card update"
	MessageNoList         = "No list found for card"
	MessageReverted       = "Move reverted"
)

// Ack is returned for every handled event.
type Ack struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	Recomputed bool   `json:"recomputed"`
	Reverted   bool   `json:"reverted"`
}

func ack(message string) Ack {
	return Ack{Status: StatusOK, Message: message}
}
