package handlers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildlight/questline/internal/services"
)

func postAction(t *testing.T, h *ActionHandler, sessionID string, req ActionRequest) (ActionResponse, int) {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+sessionID+"/actions", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	var resp ActionResponse
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return resp, w.Code
}

func newTestHandlers(t *testing.T) (*SessionHandler, *ActionHandler, *services.Manager) {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	manager := testManager()
	return NewSessionHandler(manager, logger), NewActionHandler(manager, logger), manager
}

func TestActionHandler_QuestFlow(t *testing.T) {
	sessions, actions, _ := newTestHandlers(t)
	view := createSession(t, sessions)

	resp, code := postAction(t, actions, view.ID, ActionRequest{Action: "accept-quest", QuestID: "meet_elder"})
	require.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Applied)
	require.Len(t, resp.Session.ActiveQuests, 1)
	assert.False(t, resp.Session.ActiveQuests[0].Steps[0].IsCompleted)

	// Setting the flag the step watches completes the quest.
	resp, code = postAction(t, actions, view.ID, ActionRequest{Action: "set-flag", ID: "met_elder", Value: true})
	require.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Applied)
	assert.Empty(t, resp.Session.ActiveQuests)
	assert.Equal(t, []string{"meet_elder"}, resp.Session.Completed)
}

func TestActionHandler_DialogueFlow(t *testing.T) {
	sessions, actions, _ := newTestHandlers(t)
	view := createSession(t, sessions)

	resp, code := postAction(t, actions, view.ID, ActionRequest{Action: "start-dialogue", DialogueID: "elder_intro"})
	require.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Applied)
	require.NotNil(t, resp.Session.Dialogue)
	assert.Equal(t, "You're new here.", resp.Session.Dialogue.Text)

	// Option with no next node ends the conversation and runs its action.
	resp, code = postAction(t, actions, view.ID, ActionRequest{Action: "select-option", Index: 1})
	require.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Applied)
	assert.Nil(t, resp.Session.Dialogue)
	assert.True(t, resp.Session.Flags["rude"])
}

func TestActionHandler_UnknownQuestIsNoOp(t *testing.T) {
	sessions, actions, _ := newTestHandlers(t)
	view := createSession(t, sessions)

	resp, code := postAction(t, actions, view.ID, ActionRequest{Action: "accept-quest", QuestID: "no_such_quest"})
	require.Equal(t, http.StatusOK, code)
	assert.False(t, resp.Applied)
}

func TestActionHandler_TrackProgress(t *testing.T) {
	sessions, actions, _ := newTestHandlers(t)
	view := createSession(t, sessions)

	resp, code := postAction(t, actions, view.ID, ActionRequest{Action: "track-progress", Category: "gather_wood", Amount: 4})
	require.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Applied)
	require.Len(t, resp.Session.Achievements, 1)
	assert.Equal(t, 4, resp.Session.Achievements[0].CurrentValue)
	assert.False(t, resp.Session.Achievements[0].Unlocked)
}

func TestActionHandler_TrackProgressRejectsNegativeAmount(t *testing.T) {
	sessions, actions, _ := newTestHandlers(t)
	view := createSession(t, sessions)

	_, code := postAction(t, actions, view.ID, ActionRequest{Action: "track-progress", Category: "gather_wood", Amount: -3})
	assert.Equal(t, http.StatusBadRequest, code)

	// Progress is untouched.
	resp, code := postAction(t, actions, view.ID, ActionRequest{Action: "track-progress", Category: "gather_wood", Amount: 1})
	require.Equal(t, http.StatusOK, code)
	require.Len(t, resp.Session.Achievements, 1)
	assert.Equal(t, 1, resp.Session.Achievements[0].CurrentValue)
}

func TestActionHandler_UnknownAction(t *testing.T) {
	sessions, actions, _ := newTestHandlers(t)
	view := createSession(t, sessions)

	_, code := postAction(t, actions, view.ID, ActionRequest{Action: "teleport"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestActionHandler_SessionNotFound(t *testing.T) {
	_, actions, _ := newTestHandlers(t)

	_, code := postAction(t, actions, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", ActionRequest{Action: "end-dialogue"})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestActionHandler_BadBody(t *testing.T) {
	sessions, actions, _ := newTestHandlers(t)
	view := createSession(t, sessions)

	r := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+view.ID+"/actions", bytes.NewReader([]byte("not json")))
	w := httptest.NewRecorder()
	actions.ServeHTTP(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
