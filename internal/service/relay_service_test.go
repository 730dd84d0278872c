package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"clinic-relay/internal/domain"
	"clinic-relay/internal/webhook"
)

type mockRelayMessageRepo struct {
	created []domain.ChatMessage
	calls   int
	failOn  int // índice 1-based del Create que falla; 0 = nunca
}

func (m *mockRelayMessageRepo) Create(_ context.Context, message domain.ChatMessage) error {
	m.calls++
	if m.failOn != 0 && m.calls == m.failOn {
		return errors.New("insert failed")
	}
	m.created = append(m.created, message)
	return nil
}

func (m *mockRelayMessageRepo) ListBySessionID(_ context.Context, sessionID string) ([]domain.ChatMessage, error) {
	var out []domain.ChatMessage
	for _, msg := range m.created {
		if msg.SessionID == sessionID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *mockRelayMessageRepo) ListSessions(_ context.Context) ([]domain.SessionSummary, error) {
	return nil, nil
}

// forwardFn permite interceptar el momento exacto del forward en los tests.
type forwardFn func(ev webhook.Event) (webhook.Reply, error)

type stubNotifier struct {
	forward forwardFn
	events  []webhook.Event
}

func (n *stubNotifier) Forward(_ context.Context, ev webhook.Event) (webhook.Reply, error) {
	n.events = append(n.events, ev)
	return n.forward(ev)
}

func (n *stubNotifier) Notify(_ context.Context, action string, fields map[string]interface{}) error {
	return nil
}

type fixedSequencer struct{ next int64 }

func (s *fixedSequencer) Next(_ context.Context, _ string) int64 {
	s.next++
	return s.next
}

func newRelayFixture(forward forwardFn) (*RelayService, *mockRelayMessageRepo, *stubNotifier) {
	repo := &mockRelayMessageRepo{}
	notifier := &stubNotifier{forward: forward}
	svc := NewRelayService(zap.NewNop(), repo, notifier, nil)
	return svc, repo, notifier
}

func TestRelay_PersistsInboundBeforeForward(t *testing.T) {
	repo := &mockRelayMessageRepo{}
	var persistedAtForward int
	notifier := &stubNotifier{forward: func(ev webhook.Event) (webhook.Reply, error) {
		persistedAtForward = len(repo.created)
		return webhook.Reply{}, nil
	}}
	svc := NewRelayService(zap.NewNop(), repo, notifier, nil)

	result, err := svc.Relay(context.Background(), RelayInput{SessionID: "s1", Message: "hola"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if persistedAtForward != 1 {
		t.Fatalf("expected inbound persisted before forward, got %d records", persistedAtForward)
	}
	if result.Inbound.SenderType != domain.SenderHuman {
		t.Fatalf("expected sender defaulted to human, got %q", result.Inbound.SenderType)
	}
	if result.Inbound.ID == "" || result.Inbound.CreatedAt.IsZero() {
		t.Fatalf("expected generated id and timestamp")
	}
}

func TestRelay_Validation(t *testing.T) {
	svc, repo, notifier := newRelayFixture(func(webhook.Event) (webhook.Reply, error) {
		return webhook.Reply{}, nil
	})

	cases := []RelayInput{
		{SessionID: "", Message: "hola"},
		{SessionID: "s1", Message: ""},
		{SessionID: "   ", Message: "hola"},
		{SessionID: "s1", Message: "   "},
	}
	for i, in := range cases {
		if _, err := svc.Relay(context.Background(), in); !errors.Is(err, ErrRelayInvalidInput) {
			t.Fatalf("case %d: expected ErrRelayInvalidInput, got %v", i, err)
		}
	}
	if len(repo.created) != 0 || repo.calls != 0 {
		t.Fatalf("expected zero store writes, got %d", repo.calls)
	}
	if len(notifier.events) != 0 {
		t.Fatalf("expected zero webhook calls, got %d", len(notifier.events))
	}
}

func TestRelay_InboundPersistFailureSkipsWebhook(t *testing.T) {
	svc, repo, notifier := newRelayFixture(func(webhook.Event) (webhook.Reply, error) {
		return webhook.Reply{}, nil
	})
	repo.failOn = 1

	_, err := svc.Relay(context.Background(), RelayInput{SessionID: "s1", Message: "hola"})
	if err == nil || errors.Is(err, ErrRelayInvalidInput) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if len(notifier.events) != 0 {
		t.Fatalf("expected webhook never called, got %d calls", len(notifier.events))
	}
	if len(repo.created) != 0 {
		t.Fatalf("expected no persisted records, got %d", len(repo.created))
	}
}

func TestRelay_ForwardFailureIsPartialSuccess(t *testing.T) {
	svc, repo, _ := newRelayFixture(func(webhook.Event) (webhook.Reply, error) {
		return webhook.Reply{}, errors.New("connection refused")
	})

	result, err := svc.Relay(context.Background(), RelayInput{SessionID: "s1", Message: "hola"})
	if err != nil {
		t.Fatalf("expected no error on forward failure, got %v", err)
	}
	if result.Forwarded {
		t.Fatalf("expected forwarded=false")
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected exactly the inbound record, got %d", len(repo.created))
	}
	if result.Reply != nil {
		t.Fatalf("expected no reply message")
	}
}

func TestRelay_ReplyPersistedAsAI(t *testing.T) {
	svc, repo, _ := newRelayFixture(func(webhook.Event) (webhook.Reply, error) {
		return webhook.Reply{Response: "X"}, nil
	})

	result, err := svc.Relay(context.Background(), RelayInput{SessionID: "s1", Message: "hola"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !result.Forwarded {
		t.Fatalf("expected forwarded=true")
	}
	if len(repo.created) != 2 {
		t.Fatalf("expected two records, got %d", len(repo.created))
	}
	reply := repo.created[1]
	if reply.SenderType != domain.SenderAI || reply.Content != "X" || reply.SessionID != "s1" {
		t.Fatalf("unexpected reply record: %+v", reply)
	}
	if result.Reply == nil || result.Reply.ID != reply.ID {
		t.Fatalf("expected reply message in result")
	}
}

func TestRelay_SuccessWithoutResponseField(t *testing.T) {
	svc, repo, _ := newRelayFixture(func(webhook.Event) (webhook.Reply, error) {
		return webhook.Reply{}, nil
	})

	result, err := svc.Relay(context.Background(), RelayInput{SessionID: "s1", Message: "hola"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !result.Forwarded {
		t.Fatalf("expected forwarded=true")
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected only the inbound record, got %d", len(repo.created))
	}
}

func TestRelay_ReplyPersistFailureIsSilent(t *testing.T) {
	svc, repo, _ := newRelayFixture(func(webhook.Event) (webhook.Reply, error) {
		return webhook.Reply{Response: "X"}, nil
	})
	repo.failOn = 2

	result, err := svc.Relay(context.Background(), RelayInput{SessionID: "s1", Message: "hola"})
	if err != nil {
		t.Fatalf("expected no error when reply persist fails, got %v", err)
	}
	if !result.Forwarded {
		t.Fatalf("expected forwarded=true")
	}
	if result.Reply != nil {
		t.Fatalf("expected no reply in result when its persist failed")
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected only the inbound record, got %d", len(repo.created))
	}
}

func TestRelay_ForwardPayload(t *testing.T) {
	svc, _, notifier := newRelayFixture(func(webhook.Event) (webhook.Reply, error) {
		return webhook.Reply{}, nil
	})

	_, err := svc.Relay(context.Background(), RelayInput{
		SessionID:  "5511999999999",
		Message:    "Quero remarcar",
		SenderType: domain.SenderSystem,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(notifier.events) != 1 {
		t.Fatalf("expected one forward, got %d", len(notifier.events))
	}
	ev := notifier.events[0]
	if ev.SessionID != "5511999999999" || ev.Message != "Quero remarcar" || ev.SenderType != domain.SenderSystem {
		t.Fatalf("unexpected forward payload: %+v", ev)
	}
	if ev.Timestamp.IsZero() {
		t.Fatalf("expected forward timestamp")
	}
}

func TestRelay_RescheduleScenario(t *testing.T) {
	svc, repo, _ := newRelayFixture(func(webhook.Event) (webhook.Reply, error) {
		return webhook.Reply{Response: "Qual data prefere?"}, nil
	})

	result, err := svc.Relay(context.Background(), RelayInput{
		SessionID: "5511999999999",
		Message:   "Quero remarcar",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !result.Forwarded {
		t.Fatalf("expected forwarded=true")
	}
	if len(repo.created) != 2 {
		t.Fatalf("expected two records, got %d", len(repo.created))
	}
	if repo.created[1].Content != "Qual data prefere?" {
		t.Fatalf("unexpected reply content %q", repo.created[1].Content)
	}
}

func TestRelay_TimeoutScenario(t *testing.T) {
	svc, repo, _ := newRelayFixture(func(webhook.Event) (webhook.Reply, error) {
		return webhook.Reply{}, context.DeadlineExceeded
	})

	result, err := svc.Relay(context.Background(), RelayInput{
		SessionID: "5511999999999",
		Message:   "Quero remarcar",
	})
	if err != nil {
		t.Fatalf("expected no error on timeout, got %v", err)
	}
	if result.Forwarded {
		t.Fatalf("expected forwarded=false on timeout")
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one record, got %d", len(repo.created))
	}
}

func TestRelay_SequencerStampsMessages(t *testing.T) {
	repo := &mockRelayMessageRepo{}
	notifier := &stubNotifier{forward: func(webhook.Event) (webhook.Reply, error) {
		return webhook.Reply{Response: "ok"}, nil
	}}
	svc := NewRelayService(zap.NewNop(), repo, notifier, &fixedSequencer{})

	if _, err := svc.Relay(context.Background(), RelayInput{SessionID: "s1", Message: "hola"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if repo.created[0].Seq != 1 || repo.created[1].Seq != 2 {
		t.Fatalf("expected seq 1 and 2, got %d and %d", repo.created[0].Seq, repo.created[1].Seq)
	}
}

func TestRelayHistory(t *testing.T) {
	svc, repo, _ := newRelayFixture(func(webhook.Event) (webhook.Reply, error) {
		return webhook.Reply{}, nil
	})
	repo.created = []domain.ChatMessage{
		{ID: "m1", SessionID: "s1"},
		{ID: "m2", SessionID: "s2"},
		{ID: "m3", SessionID: "s1"},
	}

	out, err := svc.History(context.Background(), " s1 ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(out))
	}

	empty, err := svc.History(context.Background(), "   ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty history, got %d", len(empty))
	}
}

func TestRelay_NotConfigured(t *testing.T) {
	var svc *RelayService
	if _, err := svc.Relay(context.Background(), RelayInput{}); !errors.Is(err, ErrRelayNotConfigured) {
		t.Fatalf("expected ErrRelayNotConfigured, got %v", err)
	}

	svc = NewRelayService(nil, nil, nil, nil)
	if _, err := svc.History(context.Background(), "s1"); !errors.Is(err, ErrRelayNotConfigured) {
		t.Fatalf("expected ErrRelayNotConfigured, got %v", err)
	}
}
