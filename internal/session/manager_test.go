package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptdeck/internal/composer"
	"promptdeck/internal/templates"
	"promptdeck/internal/testutils"
	"promptdeck/pkg/decktypes"
)

func newTestManager(t *testing.T, client decktypes.CompletionClient) *Manager {
	t.Helper()
	reg, err := templates.Load([]byte(testutils.SampleCatalog))
	require.NoError(t, err)
	return NewManager(reg, client, testutils.NewGenerator(true))
}

func TestManager_CreateGetDelete(t *testing.T) {
	m := newTestManager(t, testutils.NewFakeCompletionClient("ok"))

	c, err := m.Create("recipe")
	require.NoError(t, err)
	assert.Equal(t, "00000001-0000-4000-8000-000000000001", c.ID())
	assert.Equal(t, "recipe", c.State().TemplateID)

	got, err := m.Get(c.ID())
	require.NoError(t, err)
	assert.Same(t, c, got)
	assert.Equal(t, 1, m.Len())

	require.NoError(t, m.Delete(c.ID()))
	assert.True(t, c.Closed())
	_, err = m.Get(c.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.Delete(c.ID()), ErrSessionNotFound)
}

func TestManager_CreateUnknownTemplate(t *testing.T) {
	m := newTestManager(t, testutils.NewFakeCompletionClient("ok"))

	c, err := m.Create("does-not-exist")
	assert.Nil(t, c)
	assert.True(t, decktypes.IsUnknownTemplate(err))
	assert.Equal(t, 0, m.Len())
}

func TestManager_SessionsAreIndependent(t *testing.T) {
	m := newTestManager(t, testutils.NewFakeCompletionClient("reply"))

	a, err := m.Create("general-chat")
	require.NoError(t, err)
	b, err := m.Create("general-chat")
	require.NoError(t, err)
	require.NotEqual(t, a.ID(), b.ID())

	require.NoError(t, a.SubmitInput(context.Background(), composer.Input{Text: "hello"}))

	assert.Len(t, a.State().Transcript, 2)
	assert.Empty(t, b.State().Transcript)

	list := m.List()
	require.Len(t, list, 2)
	assert.Equal(t, a.ID(), list[0].ID)
	assert.Equal(t, b.ID(), list[1].ID)
}

func TestManager_CloseAll(t *testing.T) {
	m := newTestManager(t, testutils.NewFakeCompletionClient("reply"))
	a, err := m.Create("general-chat")
	require.NoError(t, err)
	b, err := m.Create("summarizer")
	require.NoError(t, err)

	m.CloseAll()
	assert.True(t, a.Closed())
	assert.True(t, b.Closed())
	assert.Empty(t, m.List())
}
