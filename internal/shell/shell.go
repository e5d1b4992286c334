// Package shell is the interactive terminal front end: a template gallery
// followed by one conversation per chosen template.
package shell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"promptdeck/internal/composer"
	"promptdeck/internal/logger"
	"promptdeck/internal/output"
	"promptdeck/internal/session"
	"promptdeck/internal/theme"
	"promptdeck/pkg/decktypes"
)

// Conversation commands.
const (
	CmdBack = "/back"
	CmdCopy = "/copy"
	CmdQuit = "/quit"
	CmdHelp = "/help"
)

const (
	quitOption       = "Quit"
	cardDescWidth    = 60
	attachPromptText = "File to attach (leave empty to paste text instead)"
)

// SessionFactory creates the controller for a freshly opened conversation.
type SessionFactory func(desc decktypes.TemplateDescriptor) *session.Controller

// Shell wires the gallery and conversation views to a PromptDriver.
type Shell struct {
	Registry   decktypes.TemplateLookup
	NewSession SessionFactory
	Driver     PromptDriver
	Printer    *output.Printer
	Theme      *theme.Theme

	// Clipboard overrides the system clipboard, mainly for tests.
	Clipboard func(text string) error
}

// Run shows the gallery until the user quits or ctx is cancelled.
func (s *Shell) Run(ctx context.Context) error {
	for {
		templates := s.Registry.List()
		options := make([]string, 0, len(templates)+1)
		for _, t := range templates {
			options = append(options, Card(t))
		}
		options = append(options, quitOption)

		idx, err := s.Driver.Select(ctx, SelectConfig{Message: "Choose a template", Options: options, PageSize: 12})
		if err != nil {
			if errors.Is(err, ErrAborted) || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("gallery: %w", err)
		}
		if idx < 0 || idx >= len(templates) {
			return nil
		}

		quit, err := s.Conversation(ctx, templates[idx])
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

// Card formats a template for the gallery list.
func Card(t decktypes.TemplateDescriptor) string {
	return fmt.Sprintf("%s %s [%s] %s", t.Icon(), t.Name, t.Badge(), ansi.Truncate(t.Description, cardDescWidth, "…"))
}

// Conversation runs one session for desc. It reports whether the user asked
// to quit the program rather than return to the gallery.
func (s *Shell) Conversation(ctx context.Context, desc decktypes.TemplateDescriptor) (bool, error) {
	ctrl := s.NewSession(desc)
	defer ctrl.Close()

	logger.Debug("Conversation opened", "session", ctrl.ID(), "template", desc.ID)
	s.printHeader(desc)

	printed := 0
	render := func(st session.State) {
		for _, m := range st.Transcript[min(printed, len(st.Transcript)):] {
			s.Printer.Message(m)
		}
		printed = max(printed, len(st.Transcript))
	}
	flush := func() { render(ctrl.State()) }

	for {
		if err := ctx.Err(); err != nil {
			return true, nil
		}

		view := ViewFor(ctrl.State(), desc)
		var (
			cmd command
			err error
		)
		switch {
		case view.ShowForm:
			cmd, err = s.fillForm(ctx, ctrl, desc)
		case view.ShowUpload:
			cmd, err = s.uploadOrPaste(ctx, ctrl)
		default:
			cmd, err = s.chatInput(ctx, ctrl, view)
		}
		if err != nil {
			if errors.Is(err, ErrAborted) || errors.Is(err, context.Canceled) {
				return true, nil
			}
			return false, err
		}

		switch cmd.name {
		case CmdQuit:
			return true, nil
		case CmdBack:
			return false, nil
		case CmdCopy:
			s.copyReply(ctrl, cmd.arg)
			continue
		case CmdHelp:
			s.printHelp()
			continue
		}

		flush()
		if !ctrl.CanSubmit() {
			continue
		}
		if err := s.submit(ctx, ctrl, render); err != nil {
			return false, err
		}
	}
}

// submit starts one cycle and renders every snapshot the session publishes
// until it is idle again.
func (s *Shell) submit(ctx context.Context, ctrl *session.Controller, render func(session.State)) error {
	updates, unsubscribe := ctrl.Subscribe()
	defer unsubscribe()
	<-updates

	done, err := ctrl.SubmitAsync(ctx)
	if err != nil {
		if decktypes.IsValidation(err) {
			s.Printer.Warning(err.Error())
			return nil
		}
		if errors.Is(err, decktypes.ErrAwaitingResponse) {
			s.Printer.Warning("Please wait for the current response.")
			return nil
		}
		return err
	}

	noticed := false
	for st := range updates {
		render(st)
		if st.IsAwaitingResponse && !noticed {
			s.Printer.Muted(GeneratingNotice)
			noticed = true
		}
		if st.Phase == session.PhaseIdle {
			break
		}
	}

	// ctx cancellation reaches the in-flight call through the controller.
	<-done
	render(ctrl.State())

	if lastErr := ctrl.LastError(); lastErr != nil {
		logger.Debug("Last completion error", "session", ctrl.ID(), "error", lastErr)
	}
	return nil
}

func (s *Shell) fillForm(ctx context.Context, ctrl *session.Controller, desc decktypes.TemplateDescriptor) (command, error) {
	for _, field := range desc.FormFields {
		if ctrl.State().PendingFormValues[field.Key] != "" {
			continue
		}
		value, err := s.Driver.Input(ctx, InputConfig{
			Message:   field.Label,
			Help:      "Required. Type /back to return to the gallery.",
			Validator: requireValue,
		})
		if err != nil {
			return command{}, err
		}
		if cmd, ok := parseCommand(value); ok {
			return cmd, nil
		}
		if err := ctrl.SetField(field.Key, value); err != nil {
			return command{}, err
		}
	}
	return command{}, nil
}

func (s *Shell) uploadOrPaste(ctx context.Context, ctrl *session.Controller) (command, error) {
	name, err := s.Driver.Input(ctx, InputConfig{Message: attachPromptText, Help: "PDF, TXT, DOC up to 10MB"})
	if err != nil {
		return command{}, err
	}
	if cmd, ok := parseCommand(name); ok {
		return cmd, nil
	}
	if name = strings.TrimSpace(name); name != "" {
		return command{}, ctrl.AttachFile(name)
	}

	text, err := s.Driver.TextArea(ctx, TextAreaConfig{Message: "Text to summarize", Help: PlaceholderPaste})
	if err != nil {
		return command{}, err
	}
	if cmd, ok := parseCommand(text); ok {
		return cmd, nil
	}
	return command{}, ctrl.SetDraft(text)
}

func (s *Shell) chatInput(ctx context.Context, ctrl *session.Controller, view View) (command, error) {
	if view.ChatDisabled {
		return command{}, nil
	}
	text, err := s.Driver.Input(ctx, InputConfig{Message: "You", Help: view.Placeholder})
	if err != nil {
		return command{}, err
	}
	if cmd, ok := parseCommand(text); ok {
		return cmd, nil
	}
	return command{}, ctrl.SetDraft(text)
}

func (s *Shell) copyReply(ctrl *session.Controller, arg string) {
	var replies []decktypes.Message
	for _, m := range ctrl.State().Transcript {
		if m.Role == decktypes.RoleAssistant {
			replies = append(replies, m)
		}
	}
	if len(replies) == 0 {
		s.Printer.Warning("Nothing to copy yet.")
		return
	}
	if arg == "" {
		arg = "1"
	}
	ref, err := ParseReplyIndex(arg, len(replies))
	if err != nil {
		s.Printer.Warning(err.Error())
		return
	}
	msg := replies[ref.Index]

	write := s.Clipboard
	if write == nil {
		if !clipboardAvailable {
			s.Printer.Warning("Clipboard not available on this platform; printing the reply instead.")
			s.Printer.Println(msg.Content)
			return
		}
		write = writeClipboard
	}
	if err := write(msg.Content); err != nil {
		s.Printer.Warning(fmt.Sprintf("Failed to copy to clipboard: %v", err))
		return
	}
	s.Printer.Success(fmt.Sprintf("Copied %s (%d characters) to clipboard", ref.Description, len(msg.Content)))
}

func (s *Shell) printHeader(desc decktypes.TemplateDescriptor) {
	s.Printer.Heading(desc.Icon() + " " + desc.Name)
	description := desc.Description
	if !desc.Available {
		description += " (Coming Soon)"
	}
	s.Printer.Muted(description)
	s.Printer.Muted("Commands: /back, /copy, /quit, /help")
}

func (s *Shell) printHelp() {
	s.Printer.Info(CmdBack + "  return to the gallery")
	s.Printer.Info(CmdCopy + " [n]  copy a reply: 1 is the latest, 2 the one before; .1 is the first")
	s.Printer.Info(CmdQuit + "  exit promptdeck")
}

type command struct {
	name string
	arg  string
}

// parseCommand recognises slash commands typed into any input.
func parseCommand(text string) (command, bool) {
	name, arg, _ := strings.Cut(strings.TrimSpace(text), " ")
	switch name = strings.ToLower(name); name {
	case CmdBack, CmdCopy, CmdQuit, CmdHelp:
		return command{name: name, arg: strings.TrimSpace(arg)}, true
	}
	return command{}, false
}

func requireValue(value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New("this field is required")
	}
	return nil
}

// PrintGallery writes the template list, grouped as cards, for the
// non-interactive templates command.
func PrintGallery(p *output.Printer, th *theme.Theme, templates []decktypes.TemplateDescriptor) {
	p.Heading("Templates")
	for _, t := range templates {
		p.Println(fmt.Sprintf("%s %s %s  %s", t.Icon(), t.Name, p.Styled(output.SemanticBadge, t.Badge()), p.Styled(output.SemanticMuted, t.ID)))
		p.Println("    " + t.Description)
		if len(t.FormFields) > 0 && th != nil {
			labels := make([]string, len(t.FormFields))
			for i, f := range t.FormFields {
				labels[i] = f.Label
			}
			p.Println(indent(th.List(labels...).String(), "    "))
		}
	}
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// Ask runs a single submit cycle without prompts and returns the reply.
func Ask(ctx context.Context, ctrl *session.Controller, input composer.Input) (decktypes.Message, error) {
	if err := ctrl.SubmitInput(ctx, input); err != nil {
		return decktypes.Message{}, err
	}
	msg, _ := ctrl.State().LastAssistantMessage()
	if err := ctrl.LastError(); err != nil {
		return msg, err
	}
	return msg, nil
}
