// Package models defines the core data structures for CampaignPilot.
//
// It includes conversation messages, intent classifications and the response shapes
// shared between the workflow engine, the conversation store and host adapters.
package models

import (
	"errors"
	"time"
)

// MessageType identifies who produced a message and why.
type MessageType string

const (
	// MessageTypeUserInput is a regular user request.
	MessageTypeUserInput MessageType = "USER_INPUT"
	// MessageTypeSystemResponse is the system's answer to a user request.
	MessageTypeSystemResponse MessageType = "SYSTEM_RESPONSE"
	// MessageTypeUserFeedback is user feedback on a previous response.
	MessageTypeUserFeedback MessageType = "USER_FEEDBACK"
	// MessageTypeSystemRefinement is a response produced from user feedback.
	MessageTypeSystemRefinement MessageType = "SYSTEM_REFINEMENT"
)

// Metadata keys used on stored messages.
const (
	MetadataKeyUserInputType = "user_input_type"
	MetadataKeyContext       = "context"
	MetadataKeyError         = "error"
	MetadataKeyMessageID     = "message_id"
)

// ErrInvalidMessageType is returned when a message carries an unknown type.
var ErrInvalidMessageType = errors.New("invalid message type")

// IsValidMessageType checks if the given message type is supported.
func IsValidMessageType(mt MessageType) bool {
	switch mt {
	case MessageTypeUserInput, MessageTypeSystemResponse, MessageTypeUserFeedback, MessageTypeSystemRefinement:
		return true
	default:
		return false
	}
}

// Message is a single immutable entry in a conversation transcript.
type Message struct {
	Content   string         `json:"content"`
	Type      MessageType    `json:"type"`
	Timestamp time.Time      `json:"timestamp"`          // set once at creation
	Metadata  map[string]any `json:"metadata,omitempty"` // e.g. intent classification or error flags
}

// NewMessage creates a message stamped with the given time. The metadata map is copied
// so later changes by the caller do not leak into the transcript.
func NewMessage(content string, msgType MessageType, metadata map[string]any, at time.Time) Message {
	return Message{
		Content:   content,
		Type:      msgType,
		Timestamp: at,
		Metadata:  CloneMap(metadata),
	}
}

// ConversationSession is the transcript and free-form context of one client.
type ConversationSession struct {
	SessionID string         `json:"session_id"`
	StartTime time.Time      `json:"start_time"`
	Messages  []Message      `json:"messages"`
	Context   map[string]any `json:"context"`
	Active    bool           `json:"active"`
}

// HistoryEntry is the host-facing rendering of a stored message.
type HistoryEntry struct {
	Content   string         `json:"content"`
	Type      MessageType    `json:"type"`
	Timestamp string         `json:"timestamp"` // RFC3339Nano
	Metadata  map[string]any `json:"metadata"`
}

// ToHistoryEntry renders a message for hosts.
func (m Message) ToHistoryEntry() HistoryEntry {
	md := CloneMap(m.Metadata)
	if md == nil {
		md = map[string]any{}
	}
	return HistoryEntry{
		Content:   m.Content,
		Type:      m.Type,
		Timestamp: m.Timestamp.Format(time.RFC3339Nano),
		Metadata:  md,
	}
}

// CloneMap returns a shallow copy of m, or nil when m is nil.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
