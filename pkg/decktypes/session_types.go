// Package decktypes defines conversation and session types for promptdeck.
// This file contains the transcript message and per-conversation session state.
package decktypes

import (
	"maps"
	"slices"
	"time"
)

// Role identifies who produced a transcript message.
type Role string

const (
	// RoleUser marks messages typed or composed by the user.
	RoleUser Role = "user"
	// RoleAssistant marks replies, including fixed notices and error text.
	RoleAssistant Role = "assistant"
)

// Message is a single turn in a session transcript.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionState is the observable state of one conversation.
// It lives only as long as the user stays in the conversation view.
type SessionState struct {
	ID                 string            `json:"id"`
	TemplateID         string            `json:"template_id"`
	Transcript         []Message         `json:"transcript"`
	PendingInput       string            `json:"pending_input"`
	PendingFormValues  map[string]string `json:"pending_form_values,omitempty"`
	IsAwaitingResponse bool              `json:"is_awaiting_response"`
}

// Clone returns a deep copy of the state.
func (s SessionState) Clone() SessionState {
	c := s
	c.Transcript = slices.Clone(s.Transcript)
	c.PendingFormValues = maps.Clone(s.PendingFormValues)
	return c
}

// LastAssistantMessage returns the most recent assistant turn, if any.
func (s SessionState) LastAssistantMessage() (Message, bool) {
	for i := len(s.Transcript) - 1; i >= 0; i-- {
		if s.Transcript[i].Role == RoleAssistant {
			return s.Transcript[i], true
		}
	}
	return Message{}, false
}
