package shell

import (
	"promptdeck/internal/session"
	"promptdeck/pkg/decktypes"
)

// Input placeholders.
const (
	PlaceholderChat        = "Type your message..."
	PlaceholderUnavailable = "This template is coming soon"
	PlaceholderPaste       = "Paste your text here..."
	GeneratingNotice       = "Generating response..."
)

// View lists which input widgets the conversation screen offers.
type View struct {
	ShowForm     bool
	ShowUpload   bool
	ShowChat     bool
	ChatDisabled bool
	Placeholder  string
}

// ViewFor derives the widgets for a session. Form and upload widgets exist
// only before the first message; the chat box appears for chat templates or
// once the transcript is non-empty.
func ViewFor(state session.State, desc decktypes.TemplateDescriptor) View {
	empty := len(state.Transcript) == 0

	v := View{
		ShowForm:     desc.InputFormat == decktypes.FormatForm && empty,
		ShowUpload:   desc.InputFormat == decktypes.FormatUpload && empty,
		ShowChat:     desc.InputFormat == decktypes.FormatChat || !empty,
		ChatDisabled: state.IsAwaitingResponse,
		Placeholder:  PlaceholderChat,
	}
	switch {
	case !desc.Available:
		v.Placeholder = PlaceholderUnavailable
	case v.ShowUpload:
		v.Placeholder = PlaceholderPaste
	}
	return v
}
