package chat

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sandevgo/wishbot/internal/core"
	"github.com/sandevgo/wishbot/internal/service/session"
	"github.com/sandevgo/wishbot/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMessage struct {
	to   int64
	text string
	opts core.SendOptions
}

type fakeTransport struct {
	mu      sync.Mutex
	sent    []sentMessage
	deleted []core.MessageRef
	typing  int

	sendErr   error
	deleteErr error
	typingErr error
}

func (f *fakeTransport) Send(ctx context.Context, to int64, text string, opts core.SendOptions) (core.MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return core.MessageRef{}, f.sendErr
	}
	f.sent = append(f.sent, sentMessage{to: to, text: text, opts: opts})
	return core.MessageRef{ChatID: to, MessageID: len(f.sent)}, nil
}

func (f *fakeTransport) Delete(ctx context.Context, ref core.MessageRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, ref)
	return f.deleteErr
}

func (f *fakeTransport) Typing(ctx context.Context, to int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.typing++
	return f.typingErr
}

// notifications returns everything sent except the thinking message.
func (f *fakeTransport) notifications() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentMessage
	for _, m := range f.sent {
		if m.text != thinkingText {
			out = append(out, m)
		}
	}
	return out
}

type fakeProvider struct {
	mu       sync.Mutex
	reply    func(history []core.Message) (string, error)
	calls    [][]core.Message
	system   string
	deadline bool
}

func (f *fakeProvider) Complete(ctx context.Context, history []core.Message, system string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]core.Message(nil), history...))
	f.system = system
	_, f.deadline = ctx.Deadline()
	reply := f.reply
	f.mu.Unlock()
	return reply(history)
}

func replyWith(text string) func([]core.Message) (string, error) {
	return func([]core.Message) (string, error) { return text, nil }
}

type memStore struct {
	mu      sync.Mutex
	data    map[int64]core.History
	saves   int
	onLoad  func()
	loadCnt int
}

func newMemStore() *memStore {
	return &memStore{data: make(map[int64]core.History)}
}

func (m *memStore) Load(ctx context.Context, identity int64) core.History {
	if m.onLoad != nil {
		m.onLoad()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadCnt++
	return append(core.History{}, m.data[identity]...)
}

func (m *memStore) Save(ctx context.Context, identity int64, history core.History) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.data[identity] = append(core.History{}, history...)
}

type fakeAudit struct {
	mu    sync.Mutex
	calls []int64
	err   error
}

func (f *fakeAudit) RecordMessage(ctx context.Context, identity int64, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, identity)
	return f.err
}

type harness struct {
	orch      *Orchestrator
	store     *memStore
	ai        *fakeProvider
	transport *fakeTransport
	audit     *fakeAudit
}

func newHarness(reply func([]core.Message) (string, error)) *harness {
	h := &harness{
		store:     newMemStore(),
		ai:        &fakeProvider{reply: reply},
		transport: &fakeTransport{},
		audit:     &fakeAudit{},
	}
	h.orch = NewOrchestrator(Config{
		Superwish:  "a cabin in the woods",
		InviteLink: "https://t.me/+invite",
		Timeout:    time.Second,
	}, h.store, h.ai, h.transport, h.audit)

	clock := time.UnixMilli(1_700_000_000_000)
	h.orch.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return h
}

func TestConverse_PlainReply(t *testing.T) {
	h := newHarness(replyWith("Hello, I am WishGranter."))
	ctx := context.Background()

	out := h.orch.Converse(ctx, 1, "hi", true)

	assert.Equal(t, "Hello, I am WishGranter.", out)
	assert.Equal(t, 1, h.transport.typing)
	assert.Empty(t, h.transport.notifications())

	// Thinking message was sent and removed
	require.Len(t, h.transport.sent, 1)
	assert.Equal(t, thinkingText, h.transport.sent[0].text)
	require.Len(t, h.transport.deleted, 1)
	assert.Equal(t, core.MessageRef{ChatID: 1, MessageID: 1}, h.transport.deleted[0])

	saved := h.store.data[1]
	require.Len(t, saved, 2)
	assert.Equal(t, core.RoleUser, saved[0].Role)
	assert.Equal(t, "hi", saved[0].Content)
	assert.Equal(t, core.RoleAssistant, saved[1].Role)
	assert.Less(t, saved[0].Timestamp, saved[1].Timestamp)

	assert.Equal(t, []int64{1}, h.audit.calls)
	assert.True(t, h.ai.deadline, "backend call must be bounded")
	assert.Contains(t, h.ai.system, "a cabin in the woods")
}

func TestConverse_HistoryIsReplayed(t *testing.T) {
	h := newHarness(func(history []core.Message) (string, error) {
		return fmt.Sprintf("reply %d", len(history)), nil
	})
	ctx := context.Background()

	assert.Equal(t, "reply 1", h.orch.Converse(ctx, 1, "first", true))
	assert.Equal(t, "reply 3", h.orch.Converse(ctx, 1, "second", true))

	last := h.ai.calls[1]
	require.Len(t, last, 3)
	assert.Equal(t, "first", last[0].Content)
	assert.Equal(t, "reply 1", last[1].Content)
	assert.Equal(t, "second", last[2].Content)
	assert.Len(t, h.store.data[1], 4)
}

func TestConverse_WithoutHistory(t *testing.T) {
	h := newHarness(replyWith("one shot"))
	h.store.data[1] = core.History{
		{Role: core.RoleUser, Content: "old"},
		{Role: core.RoleAssistant, Content: "old reply"},
	}

	out := h.orch.Converse(context.Background(), 1, "fresh", false)

	assert.Equal(t, "one shot", out)
	assert.Zero(t, h.store.loadCnt)
	require.Len(t, h.ai.calls[0], 1)
	assert.Equal(t, "fresh", h.ai.calls[0][0].Content)
}

func TestConverse_SuperwishSendsInvitation(t *testing.T) {
	raw := "[SUPERWISH_DETECTED]\nWish: cabin\nMatch Confidence: 95%\n[/SUPERWISH_DETECTED]\nWonderful, tell me more."
	h := newHarness(replyWith(raw))

	out := h.orch.Converse(context.Background(), 5, "I want a cabin", true)

	assert.Equal(t, "Wonderful, tell me more.", out)

	notes := h.transport.notifications()
	require.Len(t, notes, 2)
	assert.Contains(t, notes[0].text, "Поздравляем")
	assert.Contains(t, notes[1].text, "Congratulations")
	for _, n := range notes {
		assert.Equal(t, int64(5), n.to)
		assert.Contains(t, n.text, "https://t.me/+invite")
		assert.True(t, n.opts.Markdown)
	}

	// Persisted history keeps the markers
	saved := h.store.data[5]
	require.Len(t, saved, 2)
	assert.Equal(t, raw, saved[1].Content)
}

func TestConverse_SuperwishTakesPrecedenceOverWish(t *testing.T) {
	raw := "[WISH_DETECTED]w[/WISH_DETECTED]\n[SUPERWISH_DETECTED]s[/SUPERWISH_DETECTED]\nVisible"
	h := newHarness(replyWith(raw))

	out := h.orch.Converse(context.Background(), 1, "x", true)

	assert.Equal(t, "Visible", out)
	assert.Len(t, h.transport.notifications(), 2)
}

func TestConverse_PlainWishHasNoNotification(t *testing.T) {
	h := newHarness(replyWith("[WISH_DETECTED]\nWish: rich\n[/WISH_DETECTED]\nWhat does rich mean?"))

	out := h.orch.Converse(context.Background(), 1, "I wish to be rich", true)

	assert.Equal(t, "What does rich mean?", out)
	assert.Empty(t, h.transport.notifications())
}

func TestConverse_ReplyOnlyMarkersYieldsEmpty(t *testing.T) {
	h := newHarness(replyWith("[WISH_DETECTED]\nWish: x\n[/WISH_DETECTED]\n"))

	out := h.orch.Converse(context.Background(), 1, "x", true)

	assert.Equal(t, "", out)
	assert.Len(t, h.store.data[1], 2)
}

func TestConverse_BackendFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "unauthorized", err: fmt.Errorf("%w: http 401", core.ErrUnauthorized), want: unauthorizedText},
		{name: "generic", err: errors.New("http 500"), want: apologyText},
		{name: "timeout", err: context.DeadlineExceeded, want: apologyText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(func([]core.Message) (string, error) { return "", tt.err })

			out := h.orch.Converse(context.Background(), 1, "hi", true)

			assert.Equal(t, tt.want, out)
			assert.Zero(t, h.store.saves, "failed turns are not persisted")
			assert.Len(t, h.transport.deleted, 1, "thinking message removed on failure")
		})
	}
}

func TestConverse_BackendTimeout(t *testing.T) {
	h := newHarness(nil)
	h.orch.cfg.Timeout = 10 * time.Millisecond
	h.orch.ai = blockingProvider{}

	out := h.orch.Converse(context.Background(), 1, "hi", true)
	assert.Equal(t, apologyText, out)
}

type blockingProvider struct{}

func (blockingProvider) Complete(ctx context.Context, history []core.Message, system string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestConverse_TransportFailuresDoNotBlockReply(t *testing.T) {
	h := newHarness(replyWith("[SUPERWISH_DETECTED]s[/SUPERWISH_DETECTED]\nStill here"))
	h.transport.sendErr = errors.New("telegram down")
	h.transport.typingErr = errors.New("telegram down")

	out := h.orch.Converse(context.Background(), 1, "hi", true)

	assert.Equal(t, "Still here", out)
	assert.Empty(t, h.transport.deleted, "nothing to delete when thinking failed")
	assert.Len(t, h.store.data[1], 2)
}

func TestConverse_DeleteFailureIsSwallowed(t *testing.T) {
	h := newHarness(replyWith("ok"))
	h.transport.deleteErr = errors.New("message too old")

	assert.Equal(t, "ok", h.orch.Converse(context.Background(), 1, "hi", true))
}

func TestConverse_AuditFailureIsSwallowed(t *testing.T) {
	h := newHarness(replyWith("ok"))
	h.audit.err = errors.New("db locked")

	assert.Equal(t, "ok", h.orch.Converse(context.Background(), 1, "hi", true))
}

func TestConverse_PanicBecomesApology(t *testing.T) {
	h := newHarness(func([]core.Message) (string, error) { panic("boom") })

	out := h.orch.Converse(context.Background(), 1, "hi", true)

	assert.Equal(t, apologyText, out)
	assert.Len(t, h.transport.deleted, 1)

	// Lock for the identity was released
	assert.Equal(t, 0, h.orch.locks.Len())
}

func TestConverse_SameIdentityTurnsDoNotLoseUpdates(t *testing.T) {
	h := newHarness(replyWith("ok"))
	// Widen the race window between load and save
	h.store.onLoad = func() { time.Sleep(2 * time.Millisecond) }

	const turns = 10
	var wg sync.WaitGroup
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h.orch.Converse(context.Background(), 1, fmt.Sprintf("msg %d", i), true)
		}(i)
	}
	wg.Wait()

	assert.Len(t, h.store.data[1], turns*2)
}

func TestConverse_WithSessionStore(t *testing.T) {
	cipher, err := session.NewCipher()
	require.NoError(t, err)

	h := newHarness(replyWith("[WISH_DETECTED]w[/WISH_DETECTED]\nHi"))
	store := session.NewStore(&memBlobs{data: map[int64]string{}}, cipher, nil, 0)
	h.orch.store = store

	assert.Equal(t, "Hi", h.orch.Converse(context.Background(), 3, "hello", true))

	loaded := store.Load(context.Background(), 3)
	require.Len(t, loaded, 2)
	assert.Equal(t, "[WISH_DETECTED]w[/WISH_DETECTED]\nHi", loaded[1].Content)
}

func TestConverse_LogsTagIdentityOnce(t *testing.T) {
	cipher, err := session.NewCipher()
	require.NoError(t, err)

	h := newHarness(replyWith("[SUPERWISH_DETECTED]x[/SUPERWISH_DETECTED]\nHi"))
	h.orch.store = session.NewStore(&memBlobs{data: map[int64]string{}}, cipher, nil, 0)

	var buf bytes.Buffer
	ctx := log.WithIdentity(log.NewContextWithWriter(context.Background(), &buf), 3)
	h.orch.Converse(ctx, 3, "hello", true)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)
	for _, line := range lines {
		assert.Equal(t, 1, strings.Count(line, "identity="), line)
		assert.Equal(t, 1, strings.Count(line, "turn="), line)
	}
}

type memBlobs struct {
	mu   sync.Mutex
	data map[int64]string
}

func (m *memBlobs) Get(ctx context.Context, id int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[id]
	if !ok {
		return "", core.ErrNotFound
	}
	return b, nil
}

func (m *memBlobs) Put(ctx context.Context, id int64, blob string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[id] = blob
	return nil
}

func (m *memBlobs) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

func (m *memBlobs) List(ctx context.Context) ([]int64, error) {
	return nil, nil
}

func TestBuildSystemPrompt(t *testing.T) {
	p := BuildSystemPrompt("world peace")
	assert.Contains(t, p, `"world peace"`)
	assert.Contains(t, p, "[WISH_DETECTED]")
	assert.Contains(t, p, "[/SUPERWISH_DETECTED]")
	assert.NotContains(t, p, "{{")

	assert.Contains(t, BuildSystemPrompt("  "), `"financial freedom"`)
}
