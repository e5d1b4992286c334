// Package session implements the per-conversation state machine.
//
// A session moves Idle -> Submitting -> Awaiting -> Idle. Transitions are
// computed by the pure Reduce function; the Controller applies them, performs
// the side effects they request and publishes snapshots to subscribers.
package session

import (
	"fmt"

	"promptdeck/internal/composer"
	"promptdeck/pkg/decktypes"
)

// Fixed assistant replies.
const (
	UnavailableMessage = "This template is coming soon! Please try another template or use the general chat."
	FailureMessage     = "Sorry, there was an error processing your request. Please try again."
	UploadNotice       = "File upload functionality is coming soon! For now, please paste your text directly."
)

// Phase is the position of a session in its submit cycle.
type Phase int

const (
	// PhaseIdle means no request is in flight.
	PhaseIdle Phase = iota
	// PhaseSubmitting means input was accepted and is being turned into a request.
	PhaseSubmitting
	// PhaseAwaiting means a completion request is outstanding.
	PhaseAwaiting
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmitting:
		return "submitting"
	case PhaseAwaiting:
		return "awaiting"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State is the full state of one session.
type State struct {
	Phase Phase `json:"phase"`
	decktypes.SessionState
}

// Clone returns a deep copy.
func (s State) Clone() State {
	return State{Phase: s.Phase, SessionState: s.SessionState.Clone()}
}

// Event is an input to Reduce.
type Event interface {
	eventName() string
}

// EventSubmit asks to submit input. It is validated against the bound template.
type EventSubmit struct {
	Input composer.Input
}

// EventValidated carries the composed request text into the Awaiting phase.
type EventValidated struct {
	RequestText string
}

// EventCompleted reports a successful completion.
type EventCompleted struct {
	Text string
}

// EventFailed reports a failed completion.
type EventFailed struct {
	Err error
}

// EventUnavailable answers a submit on a template that is not yet available.
type EventUnavailable struct{}

// EventAttachFile records a file picked in the upload widget.
type EventAttachFile struct {
	Name string
}

// EventSetDraft replaces the pending chat/upload text.
type EventSetDraft struct {
	Text string
}

// EventSetField sets one pending form value.
type EventSetField struct {
	Key   string
	Value string
}

func (EventSubmit) eventName() string      { return "submit" }
func (EventValidated) eventName() string   { return "validated" }
func (EventCompleted) eventName() string   { return "completed" }
func (EventFailed) eventName() string      { return "failed" }
func (EventUnavailable) eventName() string { return "unavailable" }
func (EventAttachFile) eventName() string  { return "attach_file" }
func (EventSetDraft) eventName() string    { return "set_draft" }
func (EventSetField) eventName() string    { return "set_field" }

// Effect is the side effect a transition asks the caller to perform.
type Effect interface {
	effectName() string
}

// EffectNone requests nothing.
type EffectNone struct{}

// EffectValidated asks the caller to feed EventValidated with RequestText.
type EffectValidated struct {
	RequestText string
}

// EffectCallCompletion asks the caller to issue exactly one completion request.
type EffectCallCompletion struct {
	RequestText  string
	SystemPrompt string
}

// EffectReplyUnavailable asks the caller to feed EventUnavailable instead of calling out.
type EffectReplyUnavailable struct{}

func (EffectNone) effectName() string             { return "none" }
func (EffectValidated) effectName() string        { return "validated" }
func (EffectCallCompletion) effectName() string   { return "call_completion" }
func (EffectReplyUnavailable) effectName() string { return "reply_unavailable" }

// NewState returns the empty state of a session bound to desc.
func NewState(id string, desc decktypes.TemplateDescriptor) State {
	s := State{
		Phase: PhaseIdle,
		SessionState: decktypes.SessionState{
			ID:         id,
			TemplateID: desc.ID,
			Transcript: []decktypes.Message{},
		},
	}
	if desc.InputFormat == decktypes.FormatForm {
		s.PendingFormValues = map[string]string{}
	}
	return s
}

// Reduce computes the transition for ev. It never mutates s. On error the
// returned state equals s and the effect is EffectNone.
//
// Messages appended by Reduce carry no ID or timestamp; the Controller stamps them.
func Reduce(s State, ev Event, desc decktypes.TemplateDescriptor) (State, Effect, error) {
	next := s.Clone()

	switch e := ev.(type) {
	case EventSetDraft:
		next.PendingInput = e.Text
		return next, EffectNone{}, nil

	case EventSetField:
		if desc.InputFormat != decktypes.FormatForm {
			return s, EffectNone{}, &decktypes.ValidationError{Field: e.Key, Reason: "template has no form"}
		}
		if !hasField(desc, e.Key) {
			return s, EffectNone{}, &decktypes.ValidationError{Field: e.Key, Reason: "unknown field"}
		}
		if next.PendingFormValues == nil {
			next.PendingFormValues = map[string]string{}
		}
		next.PendingFormValues[e.Key] = e.Value
		return next, EffectNone{}, nil

	case EventSubmit:
		if s.Phase != PhaseIdle {
			return s, EffectNone{}, decktypes.ErrAwaitingResponse
		}
		requestText, err := composer.Compose(desc, e.Input)
		if err != nil {
			return s, EffectNone{}, err
		}
		next.Phase = PhaseSubmitting
		return next, EffectValidated{RequestText: requestText}, nil

	case EventValidated:
		if s.Phase != PhaseSubmitting {
			return s, EffectNone{}, invalidTransition(s.Phase, ev)
		}
		next.Transcript = append(next.Transcript, decktypes.Message{Role: decktypes.RoleUser, Content: e.RequestText})
		next.PendingInput = ""
		if next.PendingFormValues != nil {
			next.PendingFormValues = map[string]string{}
		}
		if !desc.Available {
			return next, EffectReplyUnavailable{}, nil
		}
		next.Phase = PhaseAwaiting
		next.IsAwaitingResponse = true
		return next, EffectCallCompletion{RequestText: e.RequestText, SystemPrompt: desc.SystemPrompt}, nil

	case EventUnavailable:
		if s.Phase != PhaseSubmitting {
			return s, EffectNone{}, invalidTransition(s.Phase, ev)
		}
		next.Transcript = append(next.Transcript, decktypes.Message{Role: decktypes.RoleAssistant, Content: UnavailableMessage})
		next.Phase = PhaseIdle
		return next, EffectNone{}, nil

	case EventCompleted:
		if s.Phase != PhaseAwaiting {
			return s, EffectNone{}, invalidTransition(s.Phase, ev)
		}
		next.Transcript = append(next.Transcript, decktypes.Message{Role: decktypes.RoleAssistant, Content: e.Text})
		next.Phase = PhaseIdle
		next.IsAwaitingResponse = false
		return next, EffectNone{}, nil

	case EventFailed:
		if s.Phase != PhaseAwaiting {
			return s, EffectNone{}, invalidTransition(s.Phase, ev)
		}
		next.Transcript = append(next.Transcript, decktypes.Message{Role: decktypes.RoleAssistant, Content: FailureMessage})
		next.Phase = PhaseIdle
		next.IsAwaitingResponse = false
		return next, EffectNone{}, nil

	case EventAttachFile:
		if s.Phase != PhaseIdle {
			return s, EffectNone{}, decktypes.ErrAwaitingResponse
		}
		if desc.InputFormat != decktypes.FormatUpload {
			return s, EffectNone{}, &decktypes.ValidationError{Field: "file", Reason: "template does not accept uploads"}
		}
		if len(s.Transcript) > 0 {
			return s, EffectNone{}, &decktypes.ValidationError{Field: "file", Reason: "upload is only available before the first message"}
		}
		if e.Name == "" {
			return s, EffectNone{}, &decktypes.ValidationError{Field: "file", Reason: "no file selected"}
		}
		next.Transcript = append(next.Transcript, decktypes.Message{Role: decktypes.RoleAssistant, Content: UploadNotice})
		return next, EffectNone{}, nil
	}

	return s, EffectNone{}, fmt.Errorf("unknown event %T", ev)
}

func hasField(desc decktypes.TemplateDescriptor, key string) bool {
	for _, f := range desc.FormFields {
		if f.Key == key {
			return true
		}
	}
	return false
}

func invalidTransition(p Phase, ev Event) error {
	return fmt.Errorf("event %s not allowed in phase %s", ev.eventName(), p)
}
