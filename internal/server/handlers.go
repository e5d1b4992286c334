package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"promptdeck/internal/composer"
	"promptdeck/internal/session"
	"promptdeck/internal/shell"
	"promptdeck/pkg/decktypes"
)

type templateResponse struct {
	decktypes.TemplateDescriptor
	Badge string `json:"badge"`
	Icon  string `json:"icon"`
}

type viewResponse struct {
	ShowForm     bool   `json:"show_form"`
	ShowUpload   bool   `json:"show_upload"`
	ShowChat     bool   `json:"show_chat"`
	ChatDisabled bool   `json:"chat_disabled"`
	Placeholder  string `json:"placeholder"`
}

type sessionResponse struct {
	decktypes.SessionState
	Phase string       `json:"phase"`
	View  viewResponse `json:"view"`
}

type createSessionRequest struct {
	TemplateID string `json:"template_id"`
}

type messageRequest struct {
	Input  string            `json:"input"`
	Fields map[string]string `json:"fields"`
}

type attachmentRequest struct {
	Name string `json:"name"`
}

type errorResponse struct {
	Error   string   `json:"error"`
	Missing []string `json:"missing,omitempty"`
}

func toTemplateResponse(t decktypes.TemplateDescriptor) templateResponse {
	return templateResponse{TemplateDescriptor: t, Badge: t.Badge(), Icon: t.Icon()}
}

func toSessionResponse(state session.State, desc decktypes.TemplateDescriptor) sessionResponse {
	v := shell.ViewFor(state, desc)
	return sessionResponse{
		SessionState: state.SessionState,
		Phase:        state.Phase.String(),
		View: viewResponse{
			ShowForm:     v.ShowForm,
			ShowUpload:   v.ShowUpload,
			ShowChat:     v.ShowChat,
			ChatDisabled: v.ChatDisabled,
			Placeholder:  v.Placeholder,
		},
	}
}

func (s *Server) listTemplates(c echo.Context) error {
	list := s.templates.List()
	out := make([]templateResponse, len(list))
	for i, t := range list {
		out[i] = toTemplateResponse(t)
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) getTemplate(c echo.Context) error {
	t, err := s.templates.Get(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, toTemplateResponse(t))
}

func (s *Server) createSession(c echo.Context) error {
	var req createSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
	}

	ctrl, err := s.sessions.Create(req.TemplateID)
	if err != nil {
		if decktypes.IsUnknownTemplate(err) {
			return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
		}
		return err
	}
	return c.JSON(http.StatusCreated, toSessionResponse(ctrl.State(), ctrl.Template()))
}

func (s *Server) listSessions(c echo.Context) error {
	states := s.sessions.List()
	out := make([]sessionResponse, 0, len(states))
	for _, st := range states {
		desc, err := s.templates.Get(st.TemplateID)
		if err != nil {
			continue
		}
		out = append(out, toSessionResponse(st, desc))
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) lookup(c echo.Context) (*session.Controller, error) {
	ctrl, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		return nil, c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	}
	return ctrl, nil
}

func (s *Server) getSession(c echo.Context) error {
	ctrl, err := s.lookup(c)
	if ctrl == nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResponse(ctrl.State(), ctrl.Template()))
}

func (s *Server) deleteSession(c echo.Context) error {
	if err := s.sessions.Delete(c.Param("id")); err != nil {
		return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) postMessage(c echo.Context) error {
	ctrl, err := s.lookup(c)
	if ctrl == nil {
		return err
	}

	var req messageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
	}

	desc := ctrl.Template()
	input := composer.Input{Text: req.Input, Fields: req.Fields}
	if err := ctrl.SubmitInput(c.Request().Context(), input); err != nil {
		return submitError(c, desc, input, err)
	}
	return c.JSON(http.StatusOK, toSessionResponse(ctrl.State(), desc))
}

func (s *Server) postAttachment(c echo.Context) error {
	ctrl, err := s.lookup(c)
	if ctrl == nil {
		return err
	}

	var req attachmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
	}
	if err := ctrl.AttachFile(req.Name); err != nil {
		return submitError(c, ctrl.Template(), composer.Input{}, err)
	}
	return c.JSON(http.StatusOK, toSessionResponse(ctrl.State(), ctrl.Template()))
}

func submitError(c echo.Context, desc decktypes.TemplateDescriptor, input composer.Input, err error) error {
	switch {
	case decktypes.IsValidation(err):
		resp := errorResponse{Error: err.Error()}
		if desc.InputFormat == decktypes.FormatForm {
			resp.Missing = composer.MissingFields(desc.FormFields, input.Fields)
		}
		return c.JSON(http.StatusUnprocessableEntity, resp)
	case errors.Is(err, decktypes.ErrAwaitingResponse):
		return c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, decktypes.ErrSessionClosed):
		return c.JSON(http.StatusGone, errorResponse{Error: err.Error()})
	default:
		return err
	}
}
