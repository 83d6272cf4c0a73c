package store

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/BTreeMap/CampaignPilot/internal/models"
)

func TestCreateSession_EmptyHistory(t *testing.T) {
	s := NewConversationStore()
	id, err := s.CreateSession()
	if err != nil {
		t.Fatalf("CreateSession returned error: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty session id")
	}
	if !s.HasSession(id) {
		t.Error("expected session to exist after creation")
	}
	if h := s.History(id, 0); len(h) != 0 {
		t.Errorf("expected empty history, got %d messages", len(h))
	}
}

func TestCreateSession_IDGeneratorFailure(t *testing.T) {
	s := NewConversationStore(WithIDGenerator(func() (string, error) {
		return "", errors.New("entropy exhausted")
	}))
	if _, err := s.CreateSession(); err == nil {
		t.Fatal("expected error when id generation fails")
	}
}

func TestCreateSession_DuplicateID(t *testing.T) {
	s := NewConversationStore(WithIDGenerator(func() (string, error) { return "same", nil }))
	if _, err := s.CreateSession(); err != nil {
		t.Fatalf("first CreateSession failed: %v", err)
	}
	if _, err := s.CreateSession(); err == nil {
		t.Fatal("expected error on duplicate id")
	}
}

func TestAppend_CreatesSessionImplicitly(t *testing.T) {
	s := NewConversationStore()
	msg, err := s.Append("unknown", "hello", models.MessageTypeUserInput, nil)
	if err != nil {
		t.Fatalf("Append returned error: %v", err)
	}
	if msg.Content != "hello" || msg.Type != models.MessageTypeUserInput {
		t.Errorf("unexpected message %+v", msg)
	}
	if _, ok := msg.Metadata[models.MetadataKeyMessageID]; !ok {
		t.Error("expected message id in metadata")
	}
	if got := s.History("unknown", 0); len(got) != 1 {
		t.Errorf("expected 1 message, got %d", len(got))
	}
}

func TestAppend_Validation(t *testing.T) {
	s := NewConversationStore()
	if _, err := s.Append("", "x", models.MessageTypeUserInput, nil); !errors.Is(err, ErrEmptySessionID) {
		t.Errorf("expected ErrEmptySessionID, got %v", err)
	}
	if _, err := s.Append("s", "x", "BOGUS", nil); !errors.Is(err, models.ErrInvalidMessageType) {
		t.Errorf("expected ErrInvalidMessageType, got %v", err)
	}
}

func TestHistory_OrderAndLimit(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	// The clock steps backwards once; stored timestamps must not.
	offsets := []time.Duration{0, time.Second, 500 * time.Millisecond, 3 * time.Second}
	s := NewConversationStore(WithClock(func() time.Time {
		at := base.Add(offsets[tick%len(offsets)])
		tick++
		return at
	}))
	id, _ := s.CreateSession()

	contents := []string{"one", "two", "three"}
	for _, c := range contents {
		if _, err := s.Append(id, c, models.MessageTypeUserInput, nil); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	all := s.History(id, 0)
	if len(all) != len(contents) {
		t.Fatalf("expected %d messages, got %d", len(contents), len(all))
	}
	for i, msg := range all {
		if msg.Content != contents[i] {
			t.Errorf("message %d: expected %q, got %q", i, contents[i], msg.Content)
		}
		if i > 0 && msg.Timestamp.Before(all[i-1].Timestamp) {
			t.Errorf("message %d timestamp %v before previous %v", i, msg.Timestamp, all[i-1].Timestamp)
		}
	}

	last := s.History(id, 2)
	if len(last) != 2 || last[0].Content != "two" || last[1].Content != "three" {
		t.Errorf("unexpected limited history: %+v", last)
	}
	if got := s.History(id, 10); len(got) != 3 {
		t.Errorf("limit larger than history should return all, got %d", len(got))
	}
}

func TestHistory_UnknownSession(t *testing.T) {
	s := NewConversationStore()
	h := s.History("nope", 5)
	if h == nil || len(h) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", h)
	}
}

func TestHistory_ReturnsCopy(t *testing.T) {
	s := NewConversationStore()
	_, _ = s.Append("s1", "original", models.MessageTypeUserInput, nil)
	h := s.History("s1", 0)
	h[0].Content = "mutated"
	if got := s.History("s1", 0)[0].Content; got != "original" {
		t.Errorf("history mutation leaked into store: %q", got)
	}
}

func TestContext_UpdateAndRead(t *testing.T) {
	s := NewConversationStore()
	if err := s.UpdateContext("s1", map[string]any{"campaign": "CAMPAIGN123"}); err != nil {
		t.Fatalf("UpdateContext failed: %v", err)
	}
	_ = s.UpdateContext("s1", map[string]any{"tone": "formal"})
	ctx := s.Context("s1")
	if ctx["campaign"] != "CAMPAIGN123" || ctx["tone"] != "formal" {
		t.Errorf("unexpected context %v", ctx)
	}
	ctx["campaign"] = "other"
	if s.Context("s1")["campaign"] != "CAMPAIGN123" {
		t.Error("context mutation leaked into store")
	}
	if len(s.Context("missing")) != 0 {
		t.Error("expected empty context for unknown session")
	}
}

func TestAppend_ConcurrentSessions(t *testing.T) {
	s := NewConversationStore()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := string(rune('a' + n))
			for j := 0; j < 50; j++ {
				_, _ = s.Append(id, "msg", models.MessageTypeUserInput, nil)
			}
		}(i)
	}
	wg.Wait()
	for i := 0; i < 8; i++ {
		if got := len(s.History(string(rune('a'+i)), 0)); got != 50 {
			t.Errorf("session %d: expected 50 messages, got %d", i, got)
		}
	}
}
