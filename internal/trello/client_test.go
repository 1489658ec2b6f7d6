package trello_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rpggio/boardsum/internal/domain/board"
	"github.com/rpggio/boardsum/internal/repository"
	"github.com/rpggio/boardsum/internal/trello"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *trello.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := trello.NewClient(trello.Config{
		BaseURL:    server.URL,
		Key:        "k",
		Token:      "t",
		BoardID:    "board1",
		HTTPClient: server.Client(),
	})
	require.NoError(t, err)
	return client
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	_, err := trello.NewClient(trello.Config{BoardID: "b"})
	require.Error(t, err)

	_, err = trello.NewClient(trello.Config{Key: "k", Token: "t"})
	require.Error(t, err)
}

func TestClient_ListCardsDecodesFieldItems(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/boards/board1/cards", r.URL.Path)
		require.Equal(t, "true", r.URL.Query().Get("customFieldItems"))
		require.Equal(t, "k", r.URL.Query().Get("key"))
		require.Equal(t, "t", r.URL.Query().Get("token"))
		_, _ = io.WriteString(w, `[
			{"id":"c1","name":"Kiosk","idList":"L1","shortLink":"abc","customFieldItems":[
				{"id":"i1","idCustomField":"cf1","value":{"number":"5"}},
				{"id":"i2","idCustomField":"cf2","idValue":"opt1"}
			]},
			{"id":"c2","name":"Empty","idList":"L2"}
		]`)
	})

	cards, err := client.ListCards(context.Background())
	require.NoError(t, err)
	require.Len(t, cards, 2)
	require.Equal(t, "abc", cards[0].ShortLink)
	require.Equal(t, "L1", cards[0].ListID)
	require.Equal(t, board.ItemValue{Number: "5"}, cards[0].FieldItems[0].Value)
	require.Equal(t, "opt1", cards[0].FieldItems[1].OptionID)
	require.Empty(t, cards[1].FieldItems)
}

func TestClient_ListCustomFieldsAndLists(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/boards/board1/customFields":
			_, _ = io.WriteString(w, `[{"id":"cf1","name":"Geidea (In-stock)","type":"text"}]`)
		case "/boards/board1/lists":
			_, _ = io.WriteString(w, `[{"id":"L1","name":"In-operation"}]`)
		case "/lists/L1":
			_, _ = io.WriteString(w, `{"id":"L1","name":"In-operation"}`)
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	fields, err := client.ListCustomFields(ctx)
	require.NoError(t, err)
	require.Equal(t, []board.CustomField{{ID: "cf1", Name: "Geidea (In-stock)", Type: "text"}}, fields)

	lists, err := client.ListLists(ctx)
	require.NoError(t, err)
	require.Equal(t, []board.List{{ID: "L1", Name: "In-operation"}}, lists)

	list, err := client.GetList(ctx, "L1")
	require.NoError(t, err)
	require.Equal(t, "In-operation", list.Name)
}

func TestClient_SetCustomFieldItemSendsText(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/cards/SUM/customField/cf1/item", r.URL.Path)
		var body map[string]map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, map[string]string{"text": "12.5"}, body["value"])
		_, _ = io.WriteString(w, `{}`)
	})

	require.NoError(t, client.SetCustomFieldItem(context.Background(), "SUM", "cf1", "12.5"))
}

func TestClient_ClearMoveAndComment(t *testing.T) {
	var calls []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		if r.URL.Path == "/cards/c1" {
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "L-target", body["idList"])
		}
		if r.URL.Path == "/cards/c1/actions/comments" {
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "fill it in", body["text"])
		}
		w.WriteHeader(http.StatusOK)
	})
	ctx := context.Background()

	require.NoError(t, client.ClearCustomFieldItem(ctx, "SUM", "cf1"))
	require.NoError(t, client.MoveCard(ctx, "c1", "L-target"))
	require.NoError(t, client.AddComment(ctx, "c1", "fill it in"))
	require.Equal(t, []string{
		"DELETE /cards/SUM/customField/cf1/item",
		"PUT /cards/c1",
		"POST /cards/c1/actions/comments",
	}, calls)
}

func TestClient_NotFoundMapsToRepositoryError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "The requested resource was not found.", http.StatusNotFound)
	})

	_, err := client.GetCard(context.Background(), "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.True(t, trello.IsNotFound(err))
	require.False(t, trello.IsTransient(err))

	var apiErr *trello.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, "The requested resource was not found.", apiErr.Message)
}

func TestClient_ServerErrorsAreTransient(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"message":"API_TOKEN_LIMIT_EXCEEDED","error":"API_TOKEN_LIMIT_EXCEEDED"}`)
	})

	_, err := client.ListLists(context.Background())
	require.True(t, trello.IsRateLimited(err))
	require.True(t, trello.IsTransient(err))
	require.True(t, trello.IsTransient(errors.New("connection reset")))
	require.False(t, trello.IsTransient(nil))
}
