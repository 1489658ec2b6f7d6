package notify_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rpggio/boardsum/internal/domain/board"
	"github.com/rpggio/boardsum/internal/domain/event"
	"github.com/rpggio/boardsum/internal/notify"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

var fixedNow = func() time.Time { return time.Date(2025, 3, 4, 10, 11, 12, 0, time.UTC) }

type recordingMailer struct {
	mu   sync.Mutex
	sent []notify.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg notify.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.err
}

func render(msg notify.Message) []byte {
	return fmt.Appendf(nil, "Subject: %s\nTo: %s\n\n%s", msg.Subject, strings.Join(msg.To, ", "), msg.Body)
}

func assertGolden(t *testing.T, name string, msg notify.Message) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, render(msg))
}

func changeEvent() event.ChangeEvent {
	return event.ChangeEvent{
		Kind:  event.KindUpdateCustomFieldItem,
		Card:  board.Card{ID: "c1", Name: "Kiosk 4", ShortLink: "k4"},
		Field: &board.CustomField{ID: "cf1", Name: "Geidea in-stock quantity"},
		Old:   board.ItemValue{Number: "5"},
		New:   board.ItemValue{Number: "7"},
	}
}

func TestNotifyChange_Golden(t *testing.T) {
	mailer := &recordingMailer{}
	n := notify.New(mailer, notify.Config{
		From:   "bot@example.com",
		To:     []string{"ops@example.com"},
		ToName: "Operations",
	}, nil).WithClock(fixedNow)

	n.NotifyChange(context.Background(), changeEvent())
	require.Len(t, mailer.sent, 1)
	require.Equal(t, "bot@example.com", mailer.sent[0].From)
	assertGolden(t, "change_mail", mailer.sent[0])
}

func TestNotifyChange_ClearedValueShowsZero(t *testing.T) {
	n := notify.New(nil, notify.Config{To: []string{"ops@example.com"}}, nil).WithClock(fixedNow)

	msg, err := n.ChangeMessage(event.ChangeEvent{
		Card:  board.Card{ID: "c2", Name: "Branch 9", ShortLink: "b9"},
		Field: &board.CustomField{ID: "cf9", Name: "Responsibility"},
		Old:   board.ItemValue{Text: "Sara"},
	})
	require.NoError(t, err)
	assertGolden(t, "change_mail_cleared", msg)
}

func TestNotifyChange_SkipsEventsWithoutField(t *testing.T) {
	mailer := &recordingMailer{}
	n := notify.New(mailer, notify.Config{To: []string{"ops@example.com"}}, nil)

	ev := changeEvent()
	ev.Field = nil
	n.NotifyChange(context.Background(), ev)
	require.Empty(t, mailer.sent)
}

func TestNotifyError_Golden(t *testing.T) {
	mailer := &recordingMailer{}
	n := notify.New(mailer, notify.Config{ErrorTo: []string{"oncall@example.com"}}, nil).WithClock(fixedNow)

	cause := fmt.Errorf(`writing "Geidea (In-stock)": %w`, errors.New("503 service unavailable"))
	n.NotifyError(context.Background(), "recompute", cause)
	require.Len(t, mailer.sent, 1)
	assertGolden(t, "error_mail", mailer.sent[0])
}

func TestNotifyError_MailerFailureIsSwallowed(t *testing.T) {
	mailer := &recordingMailer{err: errors.New("smtp down")}
	n := notify.New(mailer, notify.Config{ErrorTo: []string{"oncall@example.com"}}, nil)

	require.NotPanics(t, func() {
		n.NotifyError(context.Background(), "recompute", errors.New("boom"))
	})
	require.Len(t, mailer.sent, 1)
}

func TestNotify_NoRecipientsSkipsSend(t *testing.T) {
	mailer := &recordingMailer{}
	n := notify.New(mailer, notify.Config{}, nil)

	n.NotifyError(context.Background(), "recompute", errors.New("boom"))
	n.NotifyChange(context.Background(), changeEvent())
	require.Empty(t, mailer.sent)
}

func TestFormatMessage(t *testing.T) {
	raw := string(notify.FormatMessage(notify.Message{
		From:    "bot@example.com",
		To:      []string{"a@example.com", "b@example.com"},
		Subject: "Trello Update",
		Body:    "line one\nline two",
	}, fixedNow()))

	require.Contains(t, raw, "From: bot@example.com\r\n")
	require.Contains(t, raw, "To: a@example.com, b@example.com\r\n")
	require.Contains(t, raw, "Subject: Trello Update\r\n")
	require.Contains(t, raw, "Date: Tue, 04 Mar 2025 10:11:12 +0000\r\n")
	require.True(t, strings.HasSuffix(raw, "\r\n\r\nline one\r\nline two\r\n"))
}
