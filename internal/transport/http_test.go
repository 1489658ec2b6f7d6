package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rpggio/boardsum/internal/domain/event"
	"github.com/rpggio/boardsum/internal/domain/summary"
	"github.com/rpggio/boardsum/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const movePayload = `{
  "action": {
    "id": "a1",
    "type": "updateCard",
    "data": {
      "card": {"id": "c1", "name": "Kiosk 1", "shortLink": "k1"},
      "listBefore": {"id": "L1", "name": "Inventory (In-stock)"},
      "listAfter": {"id": "L2", "name": "In-operation"}
    },
    "memberCreator": {"id": "m1", "fullName": "Sara"}
  },
  "model": {"id": "b1"}
}`

func newTestServer(t *testing.T, events EventHandler, recomputer Recomputer, webhook WebhookOptions) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(NewServer(Options{
		Events:     events,
		Recomputer: recomputer,
		Webhook:    webhook,
	}))
	t.Cleanup(server.Close)
	return server
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func TestHTTPServer_Status(t *testing.T) {
	server := newTestServer(t, nil, nil, WebhookOptions{})

	resp, err := http.Get(server.URL + "/")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, StatusText, readBody(t, resp))
	require.NotEmpty(t, resp.Header.Get(RequestIDHeader))
}

func TestHTTPServer_Health(t *testing.T) {
	server := newTestServer(t, nil, nil, WebhookOptions{})

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTTPServer_WebhookHead(t *testing.T) {
	server := newTestServer(t, nil, nil, WebhookOptions{})

	resp, err := http.Head(server.URL + "/webhook")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTTPServer_WebhookRoutesEvent(t *testing.T) {
	events := &mocks.EventHandler{}
	events.On("Handle", mock.Anything, mock.MatchedBy(func(ev event.ChangeEvent) bool {
		return ev.Kind == event.KindUpdateCard &&
			ev.Card.ID == "c1" &&
			ev.ListBefore == "L1" &&
			ev.ListAfter == "L2" &&
			ev.Member == "Sara"
	})).Return(event.Ack{Status: event.StatusOK, Message: event.MessageReceived, Recomputed: true})

	server := newTestServer(t, events, nil, WebhookOptions{})

	resp, err := http.Post(server.URL+"/webhook", "application/json", bytes.NewBufferString(movePayload))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, event.MessageReceived, readBody(t, resp))
	events.AssertExpectations(t)
}

func TestHTTPServer_WebhookJSONAck(t *testing.T) {
	events := &mocks.EventHandler{}
	events.On("Handle", mock.Anything, mock.Anything).
		Return(event.Ack{Status: event.StatusOK, Message: event.MessageIgnoredAction})

	server := newTestServer(t, events, nil, WebhookOptions{})

	req, err := http.NewRequest(http.MethodPost, server.URL+"/webhook",
		bytes.NewBufferString(`{"action":{"id":"a2","type":"addLabelToCard"}}`))
	require.NoError(t, err)
	req.Header.Set("Accept", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var ack event.Ack
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &ack))
	require.Equal(t, event.StatusOK, ack.Status)
	require.Equal(t, event.MessageIgnoredAction, ack.Message)
}

func TestHTTPServer_WebhookInvalidJSON(t *testing.T) {
	events := &mocks.EventHandler{}
	server := newTestServer(t, events, nil, WebhookOptions{})

	resp, err := http.Post(server.URL+"/webhook", "application/json", bytes.NewBufferString(`{"action":`))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	events.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestHTTPServer_UpdateSummary(t *testing.T) {
	recomputer := &mocks.Recomputer{}
	recomputer.On("Recompute", mock.Anything).Return(&summary.Result{}, nil).Once()
	recomputer.On("Recompute", mock.Anything).Return(nil, errors.New("board unavailable")).Once()

	server := newTestServer(t, nil, recomputer, WebhookOptions{})

	resp, err := http.Get(server.URL + "/update-summary")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, SummaryUpdated, readBody(t, resp))

	resp, err = http.Get(server.URL + "/update-summary")
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, SummaryFailed, readBody(t, resp))
	recomputer.AssertExpectations(t)
}

func TestHTTPServer_MCPMount(t *testing.T) {
	var hit atomic.Bool
	server := httptest.NewServer(NewServer(Options{
		MCP: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hit.Store(true)
			w.WriteHeader(http.StatusAccepted)
		}),
	}))
	t.Cleanup(server.Close)

	resp, err := http.Post(server.URL+"/mcp", "application/json", bytes.NewBufferString(`{}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	require.True(t, hit.Load())
}

func TestRequestIDMiddleware_ReusesInboundID(t *testing.T) {
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "req-42", RequestIDFromContext(r.Context()))
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	require.Equal(t, "req-42", rec.Header().Get(RequestIDHeader))
}

// slowRecorder finishes after delay unless its context is cancelled first,
// and reports which happened.
type slowRecorder struct {
	delay time.Duration
	done  chan error
}

func (s *slowRecorder) wait(ctx context.Context) error {
	select {
	case <-time.After(s.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *slowRecorder) Handle(ctx context.Context, _ event.ChangeEvent) event.Ack {
	s.done <- s.wait(ctx)
	return event.Ack{Status: event.StatusOK, Message: event.MessageReceived, Recomputed: true}
}

func (s *slowRecorder) Recompute(ctx context.Context) (*summary.Result, error) {
	err := s.wait(ctx)
	s.done <- err
	return &summary.Result{}, err
}

func TestHTTPServer_WebhookOutlivesSender(t *testing.T) {
	slow := &slowRecorder{delay: 300 * time.Millisecond, done: make(chan error, 1)}
	server := newTestServer(t, slow, nil, WebhookOptions{})

	client := &http.Client{Timeout: 50 * time.Millisecond}
	_, err := client.Post(server.URL+"/webhook", "application/json", bytes.NewBufferString(movePayload))
	require.Error(t, err)

	select {
	case err := <-slow.done:
		require.NoError(t, err, "handling was cancelled with the request")
	case <-time.After(2 * time.Second):
		t.Fatal("event was never handled")
	}
}

func TestHTTPServer_UpdateSummaryOutlivesSender(t *testing.T) {
	slow := &slowRecorder{delay: 300 * time.Millisecond, done: make(chan error, 1)}
	server := newTestServer(t, nil, slow, WebhookOptions{})

	client := &http.Client{Timeout: 50 * time.Millisecond}
	_, err := client.Get(server.URL + "/update-summary")
	require.Error(t, err)

	select {
	case err := <-slow.done:
		require.NoError(t, err, "recompute was cancelled with the request")
	case <-time.After(2 * time.Second):
		t.Fatal("recompute never ran")
	}
}
