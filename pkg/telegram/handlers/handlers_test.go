package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/require"

	"github.com/dskvich/yandexgpt-telegram-bot/pkg/domain"
)

// fakeTelegram records every sendMessage call made through the bot client.
type fakeTelegram struct {
	srv *httptest.Server

	mu   sync.Mutex
	sent []sentMessage
}

type sentMessage struct {
	ChatID string
	Text   string
}

func newFakeTelegram(t *testing.T) *fakeTelegram {
	t.Helper()

	f := &fakeTelegram{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch {
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			fields := parseRequestFields(t, r)
			f.mu.Lock()
			f.sent = append(f.sent, sentMessage{ChatID: fields["chat_id"], Text: fields["text"]})
			f.mu.Unlock()
			fmt.Fprint(w, `{"ok":true,"result":{"message_id":1,"date":1,"chat":{"id":100,"type":"private"}}}`)
		case strings.HasSuffix(r.URL.Path, "/sendChatAction"):
			fmt.Fprint(w, `{"ok":true,"result":true}`)
		default:
			fmt.Fprint(w, `{"ok":true,"result":{}}`)
		}
	}))
	t.Cleanup(f.srv.Close)

	return f
}

func (f *fakeTelegram) sentMessages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

// parseRequestFields flattens a Bot API request body regardless of whether the
// client encoded it as multipart form, urlencoded form, or JSON.
func parseRequestFields(t *testing.T, r *http.Request) map[string]string {
	t.Helper()

	fields := map[string]string{}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch {
	case strings.HasPrefix(mediaType, "multipart/"):
		require.NoError(t, r.ParseMultipartForm(1<<20))
		for k, v := range r.MultipartForm.Value {
			if len(v) > 0 {
				fields[k] = v[0]
			}
		}
	case mediaType == "application/json":
		var raw map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		for k, v := range raw {
			fields[k] = fmt.Sprint(v)
		}
	default:
		require.NoError(t, r.ParseForm())
		for k, v := range r.PostForm {
			if len(v) > 0 {
				fields[k] = v[0]
			}
		}
	}

	return fields
}

func newTestBot(t *testing.T, f *fakeTelegram) *bot.Bot {
	t.Helper()

	b, err := bot.New("test-token",
		bot.WithServerURL(f.srv.URL),
		bot.WithSkipGetMe(),
	)
	require.NoError(t, err)

	return b
}

func textUpdate(text string) *models.Update {
	return &models.Update{
		ID: 1,
		Message: &models.Message{
			ID:   1,
			Text: text,
			Chat: models.Chat{ID: 100, Type: "private"},
			From: &models.User{ID: 7},
		},
	}
}

type stubCompleter struct {
	completion string
	err        error

	mu      sync.Mutex
	prompts []string
}

func (s *stubCompleter) Complete(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	s.mu.Unlock()
	return s.completion, s.err
}

func TestStart_RepliesWithGreeting(t *testing.T) {
	f := newFakeTelegram(t)
	b := newTestBot(t, f)

	Start()(context.Background(), b, textUpdate("/start"))

	sent := f.sentMessages()
	require.Len(t, sent, 1)
	require.Equal(t, "100", sent[0].ChatID)
	require.Equal(t, domain.GreetingMessage, sent[0].Text)
}

func TestStart_GreetingIgnoresConversation(t *testing.T) {
	f := newFakeTelegram(t)
	b := newTestBot(t, f)

	first := textUpdate("/start")
	second := textUpdate("/start")
	second.Message.Chat.ID = 200
	second.Message.From.ID = 8

	Start()(context.Background(), b, first)
	Start()(context.Background(), b, second)

	sent := f.sentMessages()
	require.Len(t, sent, 2)
	require.Equal(t, domain.GreetingMessage, sent[0].Text)
	require.Equal(t, domain.GreetingMessage, sent[1].Text)
	require.Equal(t, "100", sent[0].ChatID)
	require.Equal(t, "200", sent[1].ChatID)
}

func TestHelp_RepliesWithHelpTwice(t *testing.T) {
	f := newFakeTelegram(t)
	b := newTestBot(t, f)

	Help()(context.Background(), b, textUpdate("/help"))
	Help()(context.Background(), b, textUpdate("/help"))

	sent := f.sentMessages()
	require.Len(t, sent, 2)
	require.Equal(t, domain.HelpMessage, sent[0].Text)
	require.Equal(t, domain.HelpMessage, sent[1].Text)
}

func TestGenerateResponse_RelaysCompletionVerbatim(t *testing.T) {
	f := newFakeTelegram(t)
	b := newTestBot(t, f)
	completer := &stubCompleter{completion: "4"}

	GenerateResponse(completer)(context.Background(), b, textUpdate("2+2=?"))

	require.Equal(t, []string{"2+2=?"}, completer.prompts)

	sent := f.sentMessages()
	require.Len(t, sent, 1)
	require.Equal(t, "100", sent[0].ChatID)
	require.Equal(t, "4", sent[0].Text)
}

func TestGenerateResponse_FailureSendsFixedNotice(t *testing.T) {
	f := newFakeTelegram(t)
	b := newTestBot(t, f)
	completer := &stubCompleter{err: errors.New("unexpected status code: 503")}

	GenerateResponse(completer)(context.Background(), b, textUpdate("hello"))

	sent := f.sentMessages()
	require.Len(t, sent, 1)
	require.Equal(t, domain.CompletionFailedMessage, sent[0].Text)
	require.NotContains(t, sent[0].Text, "503")
}

func TestGenerateResponse_BotKeepsServingAfterFailure(t *testing.T) {
	f := newFakeTelegram(t)
	b := newTestBot(t, f)
	completer := &stubCompleter{err: errors.New("unexpected status code: 503")}

	GenerateResponse(completer)(context.Background(), b, textUpdate("hello"))
	Start()(context.Background(), b, textUpdate("/start"))

	sent := f.sentMessages()
	require.Len(t, sent, 2)
	require.Equal(t, domain.CompletionFailedMessage, sent[0].Text)
	require.Equal(t, domain.GreetingMessage, sent[1].Text)
}

func TestGenerateResponse_NonTextMessage(t *testing.T) {
	f := newFakeTelegram(t)
	b := newTestBot(t, f)
	completer := &stubCompleter{completion: "unused"}

	GenerateResponse(completer)(context.Background(), b, textUpdate(""))

	require.Empty(t, completer.prompts)

	sent := f.sentMessages()
	require.Len(t, sent, 1)
	require.Equal(t, domain.TextOnlyMessage, sent[0].Text)
}

func TestGenerateResponse_IgnoresNonMessageUpdate(t *testing.T) {
	f := newFakeTelegram(t)
	b := newTestBot(t, f)
	completer := &stubCompleter{completion: "unused"}

	GenerateResponse(completer)(context.Background(), b, &models.Update{ID: 2})

	require.Empty(t, completer.prompts)
	require.Empty(t, f.sentMessages())
}
