package board

// List is a named column on the board. Every card sits in exactly one list.
type List struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CustomField is a board-scoped field definition.
type CustomField struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// ItemValue is the loosely typed value of a custom field item. The board
// reports numbers as strings, so both variants are kept as text.
type ItemValue struct {
	Text    string `json:"text,omitempty"`
	Number  string `json:"number,omitempty"`
	Date    string `json:"date,omitempty"`
	Checked string `json:"checked,omitempty"`
}

// IsEmpty reports whether the item carries no value of any kind.
func (v ItemValue) IsEmpty() bool {
	return v.Number == "" && v.Text == "" && v.Date == "" && v.Checked == ""
}

// Raw returns the number when present, otherwise the text.
func (v ItemValue) Raw() string {
	if v.Number != "" {
		return v.Number
	}
	return v.Text
}

// CustomFieldItem is the value of one custom field on one card.
type CustomFieldItem struct {
	ID      string    `json:"id,omitempty"`
	FieldID string    `json:"id_custom_field"`
	Value   ItemValue `json:"value"`
	// OptionID is set instead of Value for dropdown fields.
	OptionID string `json:"id_value,omitempty"`
}

// IsEmpty reports whether the item holds neither a value nor an option.
func (i CustomFieldItem) IsEmpty() bool {
	return i.Value.IsEmpty() && i.OptionID == ""
}

// Card is a record on the board.
type Card struct {
	ID         string            `json:"id"`
	ShortLink  string            `json:"short_link,omitempty"`
	Name       string            `json:"name"`
	ListID     string            `json:"id_list"`
	FieldItems []CustomFieldItem `json:"custom_field_items,omitempty"`
}

// FieldItem returns the card's item for a custom field.
func (c Card) FieldItem(fieldID string) (CustomFieldItem, bool) {
	for _, item := range c.FieldItems {
		if item.FieldID == fieldID {
			return item, true
		}
	}
	return CustomFieldItem{}, false
}

// CardRef identifies a card by its long id and, optionally, its short
// forms. Webhook payloads and configuration use either form.
type CardRef struct {
	ID        string `json:"id" yaml:"id"`
	ShortID   string `json:"short_id,omitempty" yaml:"short_id"`
	ShortLink string `json:"short_link,omitempty" yaml:"short_link"`
}

// Matches reports whether any known identifier of ref equals id.
func (ref CardRef) Matches(id string) bool {
	if id == "" {
		return false
	}
	return id == ref.ID || id == ref.ShortID || id == ref.ShortLink
}

// MatchesCard reports whether card is the card ref points at.
func (ref CardRef) MatchesCard(card Card) bool {
	return ref.Matches(card.ID) || ref.Matches(card.ShortLink)
}

// WriteID returns the identifier used when writing to the card.
func (ref CardRef) WriteID() string {
	if ref.ShortID != "" {
		return ref.ShortID
	}
	return ref.ID
}
