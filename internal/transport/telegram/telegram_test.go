package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sandevgo/wishbot/internal/core"
	"github.com/sandevgo/wishbot/internal/service/command"
	"github.com/sandevgo/wishbot/internal/service/throttle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"
)

type apiCall struct {
	method string
	params map[string]any
}

// fakeAPI imitates the subset of the Bot API the transport uses.
type fakeAPI struct {
	mu     sync.Mutex
	calls  []apiCall
	nextID int
	fail   map[string]bool
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]

	params := map[string]any{}
	_ = json.NewDecoder(r.Body).Decode(&params)

	f.mu.Lock()
	f.calls = append(f.calls, apiCall{method: method, params: params})
	f.nextID++
	id := f.nextID
	failing := f.fail[method]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if failing {
		_, _ = fmt.Fprint(w, `{"ok":false,"error_code":400,"description":"Bad Request: message can't be deleted"}`)
		return
	}
	if method == "sendMessage" {
		_, _ = fmt.Fprintf(w, `{"ok":true,"result":{"message_id":%d,"date":0,"chat":{"id":%v,"type":"private"},"text":"ok"}}`, id, params["chat_id"])
		return
	}
	_, _ = fmt.Fprint(w, `{"ok":true,"result":true}`)
}

func (f *fakeAPI) byMethod(method string) []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []apiCall
	for _, c := range f.calls {
		if c.method == method {
			out = append(out, c)
		}
	}
	return out
}

func newTestBot(t *testing.T) (*tele.Bot, *fakeAPI) {
	t.Helper()

	api := &fakeAPI{fail: map[string]bool{}}
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	b, err := tele.NewBot(tele.Settings{
		Token:       "TEST",
		URL:         server.URL,
		Offline:     true,
		Synchronous: true,
	})
	require.NoError(t, err)
	return b, api
}

func TestSender_Send(t *testing.T) {
	b, api := newTestBot(t)
	s := NewSender(b)

	ref, err := s.Send(context.Background(), 5, "**hello**", core.SendOptions{Markdown: true, Silent: true})
	require.NoError(t, err)
	assert.Equal(t, int64(5), ref.ChatID)
	assert.Positive(t, ref.MessageID)

	calls := api.byMethod("sendMessage")
	require.Len(t, calls, 1)
	assert.Equal(t, "<strong>hello</strong>", calls[0].params["text"])
	assert.Equal(t, "HTML", calls[0].params["parse_mode"])
	assert.Equal(t, "true", fmt.Sprint(calls[0].params["disable_notification"]))
}

func TestSender_SendPlain(t *testing.T) {
	b, api := newTestBot(t)
	s := NewSender(b)

	_, err := s.Send(context.Background(), 5, "  **not bold**  ", core.SendOptions{})
	require.NoError(t, err)

	calls := api.byMethod("sendMessage")
	require.Len(t, calls, 1)
	assert.Equal(t, "**not bold**", calls[0].params["text"])
	assert.Nil(t, calls[0].params["parse_mode"])
}

func TestSender_SendEmpty(t *testing.T) {
	b, api := newTestBot(t)
	s := NewSender(b)

	_, err := s.Send(context.Background(), 5, "   ", core.SendOptions{})

	assert.Error(t, err)
	assert.Empty(t, api.byMethod("sendMessage"))
}

func TestSender_SendLongIsChunked(t *testing.T) {
	b, api := newTestBot(t)
	s := NewSender(b)

	long := strings.Repeat(strings.Repeat("x", 99)+"\n", 100)
	_, err := s.Send(context.Background(), 5, long, core.SendOptions{})
	require.NoError(t, err)

	calls := api.byMethod("sendMessage")
	require.Len(t, calls, 3)
	for _, c := range calls {
		assert.LessOrEqual(t, len(c.params["text"].(string)), maxTelegramMsgLen)
	}
}

func TestSender_DeleteAndTyping(t *testing.T) {
	b, api := newTestBot(t)
	s := NewSender(b)

	require.NoError(t, s.Delete(context.Background(), core.MessageRef{ChatID: 5, MessageID: 42}))
	require.NoError(t, s.Typing(context.Background(), 5))

	del := api.byMethod("deleteMessage")
	require.Len(t, del, 1)
	assert.Equal(t, "42", fmt.Sprint(del[0].params["message_id"]))
	assert.Equal(t, "5", fmt.Sprint(del[0].params["chat_id"]))

	typing := api.byMethod("sendChatAction")
	require.Len(t, typing, 1)
	assert.Equal(t, "typing", typing[0].params["action"])

	api.fail["deleteMessage"] = true
	assert.Error(t, s.Delete(context.Background(), core.MessageRef{ChatID: 5, MessageID: 43}))
}

func TestSplitHTML(t *testing.T) {
	assert.Equal(t, []string{"short"}, splitHTML("short", 10))

	chunks := splitHTML("aaaa\nbbbb\ncccc", 10)
	assert.Equal(t, []string{"aaaa\nbbbb", "cccc"}, chunks)

	// No newline to break on: cut on a rune boundary
	chunks = splitHTML(strings.Repeat("ж", 10), 5)
	for _, c := range chunks {
		assert.True(t, strings.HasPrefix(c, "ж"))
		assert.LessOrEqual(t, len(c), 5)
	}
	assert.Equal(t, strings.Repeat("ж", 10), strings.Join(chunks, ""))
}

type fakeConversation struct {
	mu    sync.Mutex
	turns []string
	reply string
}

func (f *fakeConversation) Converse(_ context.Context, identity int64, text string, includeHistory bool) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.turns = append(f.turns, text)
	return f.reply
}

func textUpdate(id int, from int64, text string) tele.Update {
	return tele.Update{
		ID: id,
		Message: &tele.Message{
			ID:     id,
			Sender: &tele.User{ID: from, Username: "alice"},
			Chat:   &tele.Chat{ID: from, Type: tele.ChatPrivate},
			Text:   text,
		},
	}
}

func newWiredBot(t *testing.T, limit int, reply string) (*Bot, *fakeAPI, *fakeConversation) {
	t.Helper()

	b, api := newTestBot(t)
	conv := &fakeConversation{reply: reply}
	router := command.New([]core.Command{command.NewMyIDCommand()})
	limiter := throttle.NewLimiter(throttle.Config{Window: time.Minute, Limit: limit})

	return NewBot(context.Background(), b, NewSender(b), router, conv, limiter, 0), api, conv
}

func TestBot_ConversationTurn(t *testing.T) {
	bot, api, conv := newWiredBot(t, 10, "Ideas:\n- a <cabin>\n- *more*")

	bot.bot.ProcessUpdate(textUpdate(1, 77, "I wish to travel"))

	assert.Equal(t, []string{"I wish to travel"}, conv.turns)
	calls := api.byMethod("sendMessage")
	require.Len(t, calls, 1)
	assert.Equal(t, "Ideas:\n- a <cabin>\n- *more*", calls[0].params["text"])
	assert.Nil(t, calls[0].params["parse_mode"])
}

func TestBot_EmptyReplyFallback(t *testing.T) {
	bot, api, _ := newWiredBot(t, 10, "")

	bot.bot.ProcessUpdate(textUpdate(1, 77, "hello"))

	calls := api.byMethod("sendMessage")
	require.Len(t, calls, 1)
	assert.Equal(t, emptyReplyText, calls[0].params["text"])
}

func TestBot_CommandBypassesConversation(t *testing.T) {
	bot, api, conv := newWiredBot(t, 10, "unused")

	bot.bot.ProcessUpdate(textUpdate(1, 77, "/myid"))

	assert.Empty(t, conv.turns)
	calls := api.byMethod("sendMessage")
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].params["text"], "77")
}

func TestBot_Throttle(t *testing.T) {
	bot, api, conv := newWiredBot(t, 2, "ok")

	for i := 1; i <= 3; i++ {
		bot.bot.ProcessUpdate(textUpdate(i, 77, "hi"))
	}
	// A different participant is unaffected
	bot.bot.ProcessUpdate(textUpdate(4, 88, "hi"))

	assert.Len(t, conv.turns, 3)
	calls := api.byMethod("sendMessage")
	require.Len(t, calls, 4)
	assert.Equal(t, throttledText, calls[2].params["text"])
}
