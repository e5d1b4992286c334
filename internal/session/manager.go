package session

import (
	"errors"
	"sync"

	"promptdeck/internal/logger"
	"promptdeck/internal/testutils"
	"promptdeck/pkg/decktypes"
)

// ErrSessionNotFound is returned for an unknown session id.
var ErrSessionNotFound = errors.New("session not found")

// Manager keeps the live sessions of a multi-session front end.
// Sessions are independent; the manager only indexes them.
type Manager struct {
	templates decktypes.TemplateLookup
	client    decktypes.CompletionClient
	gen       *testutils.Generator

	mu       sync.RWMutex
	sessions map[string]*Controller
	order    []string
}

// NewManager creates a Manager. A nil generator means random IDs and wall-clock time.
func NewManager(templates decktypes.TemplateLookup, client decktypes.CompletionClient, gen *testutils.Generator) *Manager {
	if gen == nil {
		gen = testutils.NewGenerator(false)
	}
	return &Manager{
		templates: templates,
		client:    client,
		gen:       gen,
		sessions:  make(map[string]*Controller),
	}
}

// Create starts a session bound to templateID. An unknown id yields an
// *decktypes.UnknownTemplateError and no session.
func (m *Manager) Create(templateID string) (*Controller, error) {
	desc, err := m.templates.Get(templateID)
	if err != nil {
		return nil, err
	}

	c := NewController("", desc, m.client, WithGenerator(m.gen))

	m.mu.Lock()
	m.sessions[c.ID()] = c
	m.order = append(m.order, c.ID())
	m.mu.Unlock()

	logger.Info("Session started", "session", c.ID(), "template", desc.ID)
	return c, nil
}

// Get returns the session with the given id.
func (m *Manager) Get(id string) (*Controller, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return c, nil
}

// Delete closes and forgets a session, cancelling any in-flight call.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	c, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
		for i, sid := range m.order {
			if sid == id {
				m.order = append(m.order[:i], m.order[i+1:]...)
				break
			}
		}
	}
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	c.Close()
	logger.Info("Session ended", "session", id)
	return nil
}

// List returns snapshots of all live sessions in creation order.
func (m *Manager) List() []State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]State, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.sessions[id].State())
	}
	return out
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CloseAll closes every session.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Controller)
	m.order = nil
	m.mu.Unlock()

	for _, c := range sessions {
		c.Close()
	}
}
