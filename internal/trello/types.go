package trello

import "github.com/rpggio/boardsum/internal/domain/board"

type apiList struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Closed bool   `json:"closed,omitempty"`
}

type apiCustomField struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	IDModel string `json:"idModel,omitempty"`
}

type apiItemValue struct {
	Text    string `json:"text,omitempty"`
	Number  string `json:"number,omitempty"`
	Date    string `json:"date,omitempty"`
	Checked string `json:"checked,omitempty"`
}

type apiCustomFieldItem struct {
	ID            string        `json:"id,omitempty"`
	IDCustomField string        `json:"idCustomField"`
	IDValue       string        `json:"idValue,omitempty"`
	Value         *apiItemValue `json:"value,omitempty"`
}

type apiCard struct {
	ID               string               `json:"id"`
	IDShort          int                  `json:"idShort,omitempty"`
	ShortLink        string               `json:"shortLink,omitempty"`
	Name             string               `json:"name"`
	IDList           string               `json:"idList"`
	CustomFieldItems []apiCustomFieldItem `json:"customFieldItems,omitempty"`
}

type fieldItemRequest struct {
	Value apiItemValue `json:"value"`
}

type moveRequest struct {
	IDList string `json:"idList"`
}

type commentRequest struct {
	Text string `json:"text"`
}

func (l apiList) toBoard() board.List {
	return board.List{ID: l.ID, Name: l.Name}
}

func (f apiCustomField) toBoard() board.CustomField {
	return board.CustomField{ID: f.ID, Name: f.Name, Type: f.Type}
}

func (v *apiItemValue) toBoard() board.ItemValue {
	if v == nil {
		return board.ItemValue{}
	}
	return board.ItemValue{Text: v.Text, Number: v.Number, Date: v.Date, Checked: v.Checked}
}

func (i apiCustomFieldItem) toBoard() board.CustomFieldItem {
	return board.CustomFieldItem{
		ID:       i.ID,
		FieldID:  i.IDCustomField,
		Value:    i.Value.toBoard(),
		OptionID: i.IDValue,
	}
}

func (c apiCard) toBoard() board.Card {
	card := board.Card{
		ID:        c.ID,
		ShortLink: c.ShortLink,
		Name:      c.Name,
		ListID:    c.IDList,
	}
	if len(c.CustomFieldItems) > 0 {
		card.FieldItems = make([]board.CustomFieldItem, 0, len(c.CustomFieldItems))
		for _, item := range c.CustomFieldItems {
			card.FieldItems = append(card.FieldItems, item.toBoard())
		}
	}
	return card
}
