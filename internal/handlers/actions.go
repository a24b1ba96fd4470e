package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/wildlight/questline/internal/services"
	"github.com/wildlight/questline/pkg/story"
)

// ActionRequest is one engine operation posted by gameplay code.
type ActionRequest struct {
	Action string `json:"action"`

	// set-flag, set-value
	ID    string `json:"id,omitempty"`
	Value any    `json:"value,omitempty"`

	// accept-quest, complete-quest
	QuestID string `json:"quest_id,omitempty"`

	// check-progress
	StepType string `json:"step_type,omitempty"`
	Target   string `json:"target,omitempty"`

	// start-dialogue
	DialogueID string `json:"dialogue_id,omitempty"`

	// select-option
	Index int `json:"index,omitempty"`

	// track-progress
	Category string `json:"category,omitempty"`
	Amount   int    `json:"amount,omitempty"`
}

// ActionResponse reports whether the operation mutated anything, plus
// the resulting session view. Missing narrative references are not
// errors; they surface as applied=false.
type ActionResponse struct {
	Applied bool        `json:"applied"`
	Session SessionView `json:"session"`
}

// ActionHandler serves POST /v1/sessions/{id}/actions.
type ActionHandler struct {
	manager *services.Manager
	logger  *slog.Logger
}

func NewActionHandler(manager *services.Manager, logger *slog.Logger) *ActionHandler {
	return &ActionHandler{manager: manager, logger: logger}
}

func (h *ActionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
		return
	}

	// Expected: /v1/sessions/{id}/actions
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 4 || parts[0] != "v1" || parts[1] != "sessions" || parts[3] != "actions" {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid path. Expected /v1/sessions/{id}/actions")
		return
	}
	id, err := uuid.Parse(parts[2])
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid session ID")
		return
	}

	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	applied := false
	game, err := h.manager.Do(r.Context(), id, func(game *services.Game) error {
		var applyErr error
		applied, applyErr = apply(game, &req)
		return applyErr
	})
	if err != nil {
		if game == nil {
			h.logger.Error("Failed to load session", "session_id", id, "error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to load session")
			return
		}
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}
	if game == nil {
		writeError(w, h.logger, http.StatusNotFound, "Session not found")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, ActionResponse{
		Applied: applied,
		Session: sessionView(game),
	})
}

// apply dispatches one action against a live game. Unknown action names
// are request errors; unknown narrative references inside a valid
// action are no-ops, matching the engine contract.
func apply(game *services.Game, req *ActionRequest) (bool, error) {
	switch req.Action {
	case "set-flag":
		value, ok := req.Value.(bool)
		if !ok {
			return false, fmt.Errorf("set-flag requires a boolean value")
		}
		return game.Engine.SetFlag(req.ID, value), nil
	case "set-value":
		value, ok := req.Value.(float64)
		if !ok {
			return false, fmt.Errorf("set-value requires a numeric value")
		}
		return game.Engine.SetValue(req.ID, int(value)), nil
	case "accept-quest":
		return game.Engine.AcceptQuest(req.QuestID), nil
	case "complete-quest":
		return game.Engine.CompleteQuest(req.QuestID), nil
	case "check-progress":
		n := game.Engine.CheckQuestProgress(story.StepType(req.StepType), req.Target)
		return n > 0, nil
	case "start-dialogue":
		return game.Engine.StartDialogue(req.DialogueID), nil
	case "select-option":
		return game.Engine.SelectOption(req.Index), nil
	case "end-dialogue":
		game.Engine.EndDialogue()
		return true, nil
	case "track-progress":
		if req.Amount < 0 {
			return false, fmt.Errorf("track-progress requires a non-negative amount")
		}
		amount := req.Amount
		if amount == 0 {
			amount = 1
		}
		return game.Tracker.TrackProgress(req.Category, amount), nil
	default:
		return false, fmt.Errorf("unknown action %q", req.Action)
	}
}
