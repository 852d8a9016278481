package session

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PixChat/chat"
	"PixChat/internal/config"
	"PixChat/internal/ws"
)

// greeterStep sends one text on entry and counts how often it runs.
type greeterStep struct {
	entered atomic.Int32
}

func (s *greeterStep) ID() chat.StepID { return "greet" }
func (s *greeterStep) Enter(ctx context.Context, m chat.Messenger, state *chat.SessionState) chat.StepResult {
	s.entered.Add(1)
	_ = m.SendText("olá")
	return chat.StepResult{}
}
func (s *greeterStep) HandleInput(ctx context.Context, m chat.Messenger, state *chat.SessionState, input chat.UserInput) chat.StepResult {
	if input.Text != "" {
		state.Set(chat.StateKeyUserName, input.Text)
		_ = m.SendText("eco: " + input.Text)
	}
	return chat.StepResult{}
}

type greeterWorkflow struct{ step *greeterStep }

func (w *greeterWorkflow) ID() chat.WorkflowID      { return "greeter" }
func (w *greeterWorkflow) InitialStep() chat.StepID { return "greet" }
func (w *greeterWorkflow) GetStep(id chat.StepID) (chat.Step, bool) {
	if id == "greet" {
		return w.step, true
	}
	return nil, false
}

type fakeGeo struct{ city string }

func (f *fakeGeo) CityByIP(ctx context.Context, ip string) string { return f.city }

func newTestManager(t *testing.T, geo CityResolver) (*Manager, *greeterStep) {
	t.Helper()

	lg := slog.New(slog.NewTextHandler(io.Discard, nil))
	step := &greeterStep{}

	engine := chat.NewEngine(lg)
	engine.RegisterWorkflow(&greeterWorkflow{step: step})

	conf := &config.Config{}
	conf.Session.TTLMinutes = 60

	hub := ws.NewHub(lg)
	go hub.Run()

	m := NewManager(conf, engine, hub, geo, "greeter", lg)
	hub.SetHandler(m)
	return m, step
}

func TestStartSessionSeedsCity(t *testing.T) {
	m, _ := newTestManager(t, &fakeGeo{city: "Recife"})

	sess := m.StartSession(context.Background(), "200.1.2.3")
	defer m.Close(sess.ID)

	assert.Equal(t, "Recife", sess.State.GetString(chat.StateKeyCity))
	assert.True(t, m.SessionExists(sess.ID))
}

func TestStartEventRunsWorkflowOnce(t *testing.T) {
	m, step := newTestManager(t, nil)

	sess := m.StartSession(context.Background(), "")
	defer m.Close(sess.ID)

	m.HandleStart(sess.ID)
	require.Eventually(t, func() bool {
		return step.entered.Load() == 1
	}, time.Second, 5*time.Millisecond)

	// A second start tap is a no-op.
	m.HandleStart(sess.ID)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), step.entered.Load())

	history, ok := m.History(sess.ID)
	require.True(t, ok)
	require.Len(t, history, 1)
	assert.Equal(t, "olá", history[0].Text)
	assert.Equal(t, int64(1), history[0].ID)
}

func TestTextEventAppendsUserAndBotMessages(t *testing.T) {
	m, step := newTestManager(t, nil)

	sess := m.StartSession(context.Background(), "")
	defer m.Close(sess.ID)

	m.HandleStart(sess.ID)
	require.Eventually(t, func() bool { return step.entered.Load() == 1 }, time.Second, 5*time.Millisecond)

	m.HandleText(sess.ID, "tudo bem?")
	require.Eventually(t, func() bool {
		history, _ := m.History(sess.ID)
		return len(history) == 3
	}, time.Second, 5*time.Millisecond)

	history, _ := m.History(sess.ID)
	assert.Equal(t, "tudo bem?", history[1].Text)
	assert.Equal(t, "user", history[1].Sender)
	assert.Equal(t, "eco: tudo bem?", history[2].Text)
	assert.Equal(t, "bot", history[2].Sender)

	// Message IDs are monotonic within the session.
	for i, msg := range history {
		assert.Equal(t, int64(i+1), msg.ID)
	}
}

func TestEventForUnknownSessionIgnored(t *testing.T) {
	m, _ := newTestManager(t, nil)

	m.HandleText("no-such-session", "oi")
	m.HandleButton("no-such-session", "b")
	m.HandleMediaEnded("no-such-session", 1)

	assert.Empty(t, m.Sessions())
}

func TestCloseDiscardsSessionAndFiresHook(t *testing.T) {
	m, _ := newTestManager(t, nil)

	var closed atomic.Value
	m.SetCloseListener(func(sessionID string) { closed.Store(sessionID) })

	sess := m.StartSession(context.Background(), "")
	m.Close(sess.ID)

	assert.False(t, m.SessionExists(sess.ID))
	assert.Equal(t, sess.ID, closed.Load())

	_, ok := m.History(sess.ID)
	assert.False(t, ok)

	// Closing again is safe and does not re-fire the hook.
	closed.Store("")
	m.Close(sess.ID)
	assert.Equal(t, "", closed.Load())
}

func TestInfoReflectsWorkerState(t *testing.T) {
	m, step := newTestManager(t, nil)

	sess := m.StartSession(context.Background(), "")
	defer m.Close(sess.ID)

	m.HandleStart(sess.ID)
	require.Eventually(t, func() bool { return step.entered.Load() == 1 }, time.Second, 5*time.Millisecond)

	m.HandleText(sess.ID, "Maria")
	require.Eventually(t, func() bool {
		infos := m.Sessions()
		return len(infos) == 1 && infos[0].UserName == "Maria"
	}, time.Second, 5*time.Millisecond)

	infos := m.Sessions()
	require.Len(t, infos, 1)
	assert.Equal(t, "greet", infos[0].CurrentStep)
}

// Summaries are read from the admin API while the worker mutates flow
// state; run with -race to verify the two never touch shared data.
func TestSessionsConcurrentWithWorker(t *testing.T) {
	m, _ := newTestManager(t, nil)

	sess := m.StartSession(context.Background(), "")
	defer m.Close(sess.ID)

	m.HandleStart(sess.ID)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			for _, info := range m.Sessions() {
				_ = info.UserName
				_ = info.CurrentStep
			}
		}
	}()

	// Events arriving while the worker is busy are dropped; the survivors
	// are enough to keep the worker writing state.
	for i := 0; i < 500; i++ {
		m.HandleText(sess.ID, "Maria")
	}
	<-done
}

func TestSessionsSummaries(t *testing.T) {
	m, _ := newTestManager(t, &fakeGeo{city: "Salvador"})

	sess := m.StartSession(context.Background(), "200.0.0.1")
	defer m.Close(sess.ID)

	infos := m.Sessions()
	require.Len(t, infos, 1)
	assert.Equal(t, sess.ID, infos[0].ID)
	assert.Equal(t, "Salvador", infos[0].City)
	assert.Zero(t, infos[0].MessageCount)
}
