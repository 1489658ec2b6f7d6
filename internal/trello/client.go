// Package trello is the REST client for the Trello board that holds the
// summary card. It implements board.Store.
package trello

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rpggio/boardsum/internal/domain/board"
)

// DefaultBaseURL is the public Trello REST API root.
const DefaultBaseURL = "https://api.trello.com/1"

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 32 << 20

// Config holds configuration for creating a Trello Client.
type Config struct {
	// BaseURL defaults to DefaultBaseURL.
	BaseURL string

	// Key and Token authenticate every request as query parameters.
	Key   string
	Token string

	// BoardID scopes the board-wide listings.
	BoardID string

	// HTTPClient defaults to a client with a 20 second timeout.
	HTTPClient *http.Client

	Logger *slog.Logger
}

// Client is a typed Trello REST client. It does not retry; callers wrap
// calls in a retry policy.
type Client struct {
	baseURL    string
	key        string
	token      string
	boardID    string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ board.Store = (*Client)(nil)

// NewClient creates a Trello client from config.
func NewClient(config Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(config.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if config.Key == "" || config.Token == "" {
		return nil, errors.New("trello: key and token are required")
	}
	if config.BoardID == "" {
		return nil, errors.New("trello: board id is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		baseURL:    baseURL,
		key:        config.Key,
		token:      config.Token,
		boardID:    config.BoardID,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// ListCustomFields returns the board's custom field definitions.
func (c *Client) ListCustomFields(ctx context.Context) ([]board.CustomField, error) {
	var fields []apiCustomField
	if err := c.get(ctx, "/boards/"+url.PathEscape(c.boardID)+"/customFields", nil, &fields); err != nil {
		return nil, err
	}
	out := make([]board.CustomField, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.toBoard())
	}
	return out, nil
}

// GetList fetches one list.
func (c *Client) GetList(ctx context.Context, listID string) (*board.List, error) {
	var list apiList
	if err := c.get(ctx, "/lists/"+url.PathEscape(listID), nil, &list); err != nil {
		return nil, err
	}
	out := list.toBoard()
	return &out, nil
}

// ListLists returns every open list on the board.
func (c *Client) ListLists(ctx context.Context) ([]board.List, error) {
	var lists []apiList
	if err := c.get(ctx, "/boards/"+url.PathEscape(c.boardID)+"/lists", nil, &lists); err != nil {
		return nil, err
	}
	out := make([]board.List, 0, len(lists))
	for _, l := range lists {
		out = append(out, l.toBoard())
	}
	return out, nil
}

// ListCards returns every open card on the board with its custom field
// items. Trello returns the whole collection in one response.
func (c *Client) ListCards(ctx context.Context) ([]board.Card, error) {
	var cards []apiCard
	query := url.Values{"customFieldItems": {"true"}}
	if err := c.get(ctx, "/boards/"+url.PathEscape(c.boardID)+"/cards", query, &cards); err != nil {
		return nil, err
	}
	out := make([]board.Card, 0, len(cards))
	for _, card := range cards {
		out = append(out, card.toBoard())
	}
	return out, nil
}

// GetCard fetches one card with its custom field items.
func (c *Client) GetCard(ctx context.Context, cardID string) (*board.Card, error) {
	var card apiCard
	query := url.Values{"customFieldItems": {"true"}}
	if err := c.get(ctx, "/cards/"+url.PathEscape(cardID), query, &card); err != nil {
		return nil, err
	}
	out := card.toBoard()
	return &out, nil
}

// SetCustomFieldItem sets a card's custom field to text.
func (c *Client) SetCustomFieldItem(ctx context.Context, cardID, fieldID, text string) error {
	body := fieldItemRequest{Value: apiItemValue{Text: text}}
	return c.do(ctx, http.MethodPut, fieldItemPath(cardID, fieldID), nil, body, nil)
}

// ClearCustomFieldItem removes a card's value for a custom field.
func (c *Client) ClearCustomFieldItem(ctx context.Context, cardID, fieldID string) error {
	return c.do(ctx, http.MethodDelete, fieldItemPath(cardID, fieldID), nil, nil, nil)
}

// MoveCard moves a card to another list.
func (c *Client) MoveCard(ctx context.Context, cardID, listID string) error {
	return c.do(ctx, http.MethodPut, "/cards/"+url.PathEscape(cardID), nil, moveRequest{IDList: listID}, nil)
}

// AddComment posts a comment on a card.
func (c *Client) AddComment(ctx context.Context, cardID, text string) error {
	return c.do(ctx, http.MethodPost, "/cards/"+url.PathEscape(cardID)+"/actions/comments", nil, commentRequest{Text: text}, nil)
}

func fieldItemPath(cardID, fieldID string) string {
	return "/cards/" + url.PathEscape(cardID) + "/customField/" + url.PathEscape(fieldID) + "/item"
}

func (c *Client) get(ctx context.Context, path string, query url.Values, result any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, result)
}

// do executes an authenticated request. A non-nil requestBody is sent as
// JSON; a non-nil result receives the decoded response. Non-2xx responses
// return an *APIError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, requestBody, result any) error {
	values := url.Values{}
	for k, v := range query {
		values[k] = v
	}
	values.Set("key", c.key)
	values.Set("token", c.token)
	endpoint := c.baseURL + path + "?" + values.Encode()

	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return fmt.Errorf("trello: encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("trello: creating request: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("trello: %s %s: %w", method, path, err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("trello: reading response body: %w", err)
	}
	c.logger.Debug("trello request",
		"method", method,
		"path", path,
		"status", response.StatusCode,
		"duration", time.Since(start),
	)

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return parseAPIError(method, path, response.StatusCode, body)
	}
	if result == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("trello: decoding %s %s: %w", method, path, err)
	}
	return nil
}
