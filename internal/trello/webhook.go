package trello

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/rpggio/boardsum/internal/domain/board"
	"github.com/rpggio/boardsum/internal/domain/event"
)

// SignatureHeader carries the webhook signature on inbound callbacks.
const SignatureHeader = "X-Trello-Webhook"

// WebhookPayload is the body Trello posts to a webhook callback.
type WebhookPayload struct {
	Action Action `json:"action"`
	Model  struct {
		ID   string `json:"id"`
		Name string `json:"name,omitempty"`
	} `json:"model"`
}

// Action is a single board action.
type Action struct {
	ID            string     `json:"id"`
	Type          string     `json:"type"`
	Date          time.Time  `json:"date"`
	Data          ActionData `json:"data"`
	MemberCreator *Member    `json:"memberCreator,omitempty"`
}

// Member identifies who performed an action.
type Member struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
}

// ActionData is the action-specific part of an Action.
type ActionData struct {
	Card            *actionCard         `json:"card,omitempty"`
	Board           *actionRef          `json:"board,omitempty"`
	List            *actionRef          `json:"list,omitempty"`
	ListBefore      *actionRef          `json:"listBefore,omitempty"`
	ListAfter       *actionRef          `json:"listAfter,omitempty"`
	CustomField     *apiCustomField     `json:"customField,omitempty"`
	CustomFieldItem *apiCustomFieldItem `json:"customFieldItem,omitempty"`
	Old             *actionOld          `json:"old,omitempty"`
}

type actionRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type actionCard struct {
	ID        string `json:"id"`
	IDShort   int    `json:"idShort,omitempty"`
	ShortLink string `json:"shortLink,omitempty"`
	Name      string `json:"name"`
	IDList    string `json:"idList,omitempty"`
}

// actionOld holds the previous values of whatever the action changed.
// Value is only an item value for custom field updates.
type actionOld struct {
	Value  json.RawMessage `json:"value,omitempty"`
	IDList string          `json:"idList,omitempty"`
}

func (o *actionOld) itemValue() board.ItemValue {
	if o == nil || len(o.Value) == 0 {
		return board.ItemValue{}
	}
	var v apiItemValue
	if err := json.Unmarshal(o.Value, &v); err != nil {
		return board.ItemValue{}
	}
	return v.toBoard()
}

// ChangeEvent translates the action into a router event.
func (a Action) ChangeEvent() event.ChangeEvent {
	ev := event.ChangeEvent{
		ActionID: a.ID,
		Kind:     event.Kind(a.Type),
		Date:     a.Date,
	}
	d := a.Data
	if d.Board != nil {
		ev.BoardID = d.Board.ID
		ev.BoardName = d.Board.Name
	}
	if a.MemberCreator != nil {
		ev.Member = a.MemberCreator.FullName
		if ev.Member == "" {
			ev.Member = a.MemberCreator.Username
		}
	}
	if d.Card != nil {
		ev.Card = board.Card{
			ID:        d.Card.ID,
			ShortLink: d.Card.ShortLink,
			Name:      d.Card.Name,
			ListID:    d.Card.IDList,
		}
	}
	if d.List != nil && d.List.ID != "" {
		ev.Card.ListID = d.List.ID
	}
	if d.ListBefore != nil {
		ev.ListBefore = d.ListBefore.ID
	} else if d.Old != nil && d.Old.IDList != "" {
		ev.ListBefore = d.Old.IDList
	}
	if d.ListAfter != nil {
		ev.ListAfter = d.ListAfter.ID
	}
	if d.CustomField != nil {
		field := d.CustomField.toBoard()
		ev.Field = &field
	}
	if d.CustomFieldItem != nil {
		ev.New = d.CustomFieldItem.Value.toBoard()
	}
	ev.Old = d.Old.itemValue()
	return ev
}

// Sign computes the signature Trello sends for body on callbackURL:
// base64(HMAC-SHA1(secret, body + callbackURL)).
func Sign(secret, callbackURL string, body []byte) string {
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write(body)
	mac.Write([]byte(callbackURL))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether signature matches body.
func VerifySignature(secret, callbackURL string, body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	expected := Sign(secret, callbackURL, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}
