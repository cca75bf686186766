package api

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/threadspire/threadspire/internal/models"
)

func listReactions(t *testing.T, env *testEnv, threadID uuid.UUID) []models.Reaction {
	t.Helper()

	w := env.do(t, http.MethodGet, "/threads/"+threadID.String()+"/reactions", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Reactions []models.Reaction `json:"reactions"`
	}
	decodeData(t, w, &data)
	return data.Reactions
}

func TestReactionUpsert(t *testing.T) {
	env := newTestEnv(t)
	author := env.db.addUser("Ada", "ada@example.com")
	reader := env.db.addUser("Bob", "bob@example.com")
	thread := env.seedThread(t, author, "published thread", true)
	path := "/threads/" + thread.ID.String() + "/reactions"

	w := env.do(t, http.MethodPost, path, map[string]string{"emoji": "brain"}, env.bearer(t, reader.ID))
	require.Equal(t, http.StatusCreated, w.Code)

	// Same user, new emoji: the row is replaced, never duplicated.
	w = env.do(t, http.MethodPost, path, map[string]string{"emoji": "fire"}, env.bearer(t, reader.ID))
	require.Equal(t, http.StatusCreated, w.Code)

	reactions := listReactions(t, env, thread.ID)
	require.Len(t, reactions, 1)
	assert.Equal(t, "fire", reactions[0].Emoji)
	assert.Equal(t, reader.ID, reactions[0].UserID)

	// A second user adds a second row.
	w = env.do(t, http.MethodPost, path, map[string]string{"emoji": "clap"}, env.bearer(t, author.ID))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, listReactions(t, env, thread.ID), 2)
}

func TestReactionRejectsUnknownEmoji(t *testing.T) {
	env := newTestEnv(t)
	author := env.db.addUser("Ada", "ada@example.com")
	thread := env.seedThread(t, author, "published thread", true)

	w := env.do(t, http.MethodPost, "/threads/"+thread.ID.String()+"/reactions",
		map[string]string{"emoji": "thumbsup"}, env.bearer(t, author.ID))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "emoji must be one of brain, fire, clap, eyes, warning", failMessage(t, w))
}

func TestReactionRequiresPublishedThread(t *testing.T) {
	env := newTestEnv(t)
	author := env.db.addUser("Ada", "ada@example.com")
	draft := env.seedThread(t, author, "draft thread", false)

	w := env.do(t, http.MethodPost, "/threads/"+draft.ID.String()+"/reactions",
		map[string]string{"emoji": "fire"}, env.bearer(t, author.ID))
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "thread not found or not published", failMessage(t, w))

	w = env.do(t, http.MethodPost, "/threads/"+uuid.NewString()+"/reactions",
		map[string]string{"emoji": "fire"}, env.bearer(t, author.ID))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReactionClear(t *testing.T) {
	env := newTestEnv(t)
	author := env.db.addUser("Ada", "ada@example.com")
	reader := env.db.addUser("Bob", "bob@example.com")
	thread := env.seedThread(t, author, "published thread", true)
	path := "/threads/" + thread.ID.String() + "/reactions"

	w := env.do(t, http.MethodPost, path, map[string]string{"emoji": "eyes"}, env.bearer(t, reader.ID))
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodDelete, path, nil, env.bearer(t, reader.ID))
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, listReactions(t, env, thread.ID))

	// Clearing again is a 404, not a silent no-op.
	w = env.do(t, http.MethodDelete, path, nil, env.bearer(t, reader.ID))
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "reaction not found", failMessage(t, w))
}
