// Package store provides the conversation store for CampaignPilot.
//
// The store keeps, per session, an append-only transcript of typed messages plus a free-form
// context map. Sessions live for the lifetime of the process.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/BTreeMap/CampaignPilot/internal/models"
	"github.com/BTreeMap/CampaignPilot/internal/util"
	"github.com/google/uuid"
)

// ErrEmptySessionID is returned when an operation needs a session id and none was given.
var ErrEmptySessionID = errors.New("session id cannot be empty")

// Opts holds configuration options for the conversation store.
type Opts struct {
	Clock func() time.Time      // message timestamp source
	NewID func() (string, error) // session id generator
}

// Option defines a configuration option for the conversation store.
type Option func(*Opts)

// WithClock overrides the clock used to timestamp messages.
func WithClock(clock func() time.Time) Option {
	return func(o *Opts) {
		o.Clock = clock
	}
}

// WithIDGenerator overrides the session id generator.
func WithIDGenerator(gen func() (string, error)) Option {
	return func(o *Opts) {
		o.NewID = gen
	}
}

// ConversationStore is an in-memory, append-only store of conversation sessions.
//
// Appends are atomic, but turns for the same session must still be serialized by the
// caller: two concurrent turns interleave their messages in arrival order.
type ConversationStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.ConversationSession
	clock    func() time.Time
	newID    func() (string, error)
}

// NewConversationStore creates an empty conversation store.
func NewConversationStore(opts ...Option) *ConversationStore {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = newUUID
	}
	slog.Debug("ConversationStore.NewConversationStore: creating in-memory store")
	return &ConversationStore{
		sessions: make(map[string]*models.ConversationSession),
		clock:    cfg.Clock,
		newID:    cfg.NewID,
	}
}

func newUUID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// CreateSession allocates a fresh session with an empty history and returns its id.
func (s *ConversationStore) CreateSession() (string, error) {
	id, err := s.newID()
	if err != nil {
		slog.Error("ConversationStore.CreateSession: id generation failed", "error", err)
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[id]; exists {
		slog.Error("ConversationStore.CreateSession: generated id already in use", "sessionID", id)
		return "", fmt.Errorf("generated session id %s already in use", id)
	}
	s.sessions[id] = s.newSessionLocked(id)
	slog.Debug("ConversationStore.CreateSession: session created", "sessionID", id)
	return id, nil
}

func (s *ConversationStore) newSessionLocked(id string) *models.ConversationSession {
	return &models.ConversationSession{
		SessionID: id,
		StartTime: s.clock(),
		Messages:  []models.Message{},
		Context:   map[string]any{},
		Active:    true,
	}
}

// HasSession reports whether a session with the given id exists.
func (s *ConversationStore) HasSession(sessionID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[sessionID]
	return ok
}

// Append adds a message to the tail of the session transcript, creating the session if it
// does not exist yet, and returns the stored message.
func (s *ConversationStore) Append(sessionID, content string, msgType models.MessageType, metadata map[string]any) (models.Message, error) {
	if sessionID == "" {
		return models.Message{}, ErrEmptySessionID
	}
	if !models.IsValidMessageType(msgType) {
		return models.Message{}, fmt.Errorf("%w: %s", models.ErrInvalidMessageType, msgType)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		slog.Debug("ConversationStore.Append: creating session implicitly", "sessionID", sessionID)
		session = s.newSessionLocked(sessionID)
		s.sessions[sessionID] = session
	}

	md := models.CloneMap(metadata)
	if md == nil {
		md = map[string]any{}
	}
	md[models.MetadataKeyMessageID] = util.GenerateMessageID()

	at := s.clock()
	if n := len(session.Messages); n > 0 {
		// Keep timestamps non-decreasing even if the clock steps backwards.
		if last := session.Messages[n-1].Timestamp; at.Before(last) {
			at = last
		}
	}

	msg := models.NewMessage(content, msgType, md, at)
	session.Messages = append(session.Messages, msg)
	slog.Debug("ConversationStore.Append: message appended", "sessionID", sessionID, "type", msgType, "count", len(session.Messages))
	return msg, nil
}

// History returns the most recent limit messages of a session in chronological order, or
// all messages when limit <= 0. Unknown sessions yield an empty slice.
func (s *ConversationStore) History(sessionID string, limit int) []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return []models.Message{}
	}
	msgs := session.Messages
	if limit > 0 && limit < len(msgs) {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]models.Message, len(msgs))
	copy(out, msgs)
	return out
}

// Context returns a copy of the session's free-form context map.
func (s *ConversationStore) Context(sessionID string) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return map[string]any{}
	}
	return models.CloneMap(session.Context)
}

// UpdateContext merges values into the session's context map, creating the session if needed.
func (s *ConversationStore) UpdateContext(sessionID string, values map[string]any) error {
	if sessionID == "" {
		return ErrEmptySessionID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		session = s.newSessionLocked(sessionID)
		s.sessions[sessionID] = session
	}
	for k, v := range values {
		session.Context[k] = v
	}
	return nil
}
