package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/wildlight/questline/internal/services"
	"github.com/wildlight/questline/pkg/story"
)

// SessionHandler serves session lifecycle and state reads.
//
//	POST   /v1/sessions          create a session
//	GET    /v1/sessions/{id}     read session state
//	DELETE /v1/sessions/{id}     delete a session
type SessionHandler struct {
	manager *services.Manager
	logger  *slog.Logger
}

func NewSessionHandler(manager *services.Manager, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{manager: manager, logger: logger}
}

// StepView is one quest step with its completion state, joined from the
// template and the runtime instance.
type StepView struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Target      string `json:"target"`
	Count       int    `json:"count,omitempty"`
	IsCompleted bool   `json:"is_completed"`
}

// QuestView is one active quest for display.
type QuestView struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Steps       []StepView `json:"steps"`
}

// DialogueView is the current conversation node, nil when closed.
type DialogueView struct {
	Text    string                 `json:"text"`
	Speaker string                 `json:"speaker"`
	Options []story.DialogueOption `json:"options"`
}

// SessionView is the pull-based snapshot of a session. Observers that
// attach after events have fired read current state from here.
type SessionView struct {
	ID           string              `json:"id"`
	Flags        map[string]bool     `json:"flags"`
	Values       map[string]int      `json:"values"`
	ActiveQuests []QuestView         `json:"active_quests"`
	Completed    []string            `json:"completed_quests"`
	Dialogue     *DialogueView       `json:"dialogue,omitempty"`
	XP           int                 `json:"xp"`
	Items        map[string]int      `json:"items,omitempty"`
	Achievements []story.Achievement `json:"achievements"`
}

func sessionView(game *services.Game) SessionView {
	session := game.Engine.Session()
	view := SessionView{
		ID:           session.ID.String(),
		Flags:        session.Flags.Bools,
		Values:       session.Flags.Values,
		Completed:    game.Engine.CompletedQuests(),
		XP:           game.Rewards.Profile().XP,
		Items:        game.Rewards.Profile().Items,
		Achievements: game.Tracker.Achievements(),
		ActiveQuests: []QuestView{},
	}
	for _, qp := range game.Engine.ActiveQuests() {
		if qp.Quest == nil || qp.Instance == nil {
			continue
		}
		qv := QuestView{
			ID:          qp.Quest.ID,
			Title:       qp.Quest.Title,
			Description: qp.Quest.Description,
			Steps:       make([]StepView, 0, len(qp.Quest.Steps)),
		}
		done := make(map[string]bool, len(qp.Instance.Steps))
		for _, sp := range qp.Instance.Steps {
			done[sp.StepID] = sp.Done
		}
		for _, step := range qp.Quest.Steps {
			qv.Steps = append(qv.Steps, StepView{
				ID:          step.ID,
				Description: step.Description,
				Type:        string(step.Type),
				Target:      step.Target,
				Count:       step.Count,
				IsCompleted: done[step.ID],
			})
		}
		view.ActiveQuests = append(view.ActiveQuests, qv)
	}
	if node := game.Engine.CurrentNode(); node != nil {
		view.Dialogue = &DialogueView{
			Text:    node.Text,
			Speaker: node.Speaker,
			Options: node.Options,
		}
	}
	return view
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected: /v1/sessions or /v1/sessions/{id}
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/sessions"), "/")

	switch {
	case path == "" && r.Method == http.MethodPost:
		h.create(w, r)
	case path != "" && r.Method == http.MethodGet:
		h.get(w, r, path)
	case path != "" && r.Method == http.MethodDelete:
		h.delete(w, r, path)
	default:
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *SessionHandler) create(w http.ResponseWriter, r *http.Request) {
	game, err := h.manager.Create(r.Context())
	if err != nil {
		h.logger.Error("Failed to create session", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to create session")
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, sessionView(game))
}

func (h *SessionHandler) get(w http.ResponseWriter, r *http.Request, idStr string) {
	id, err := uuid.Parse(idStr)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid session ID")
		return
	}
	game, err := h.manager.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load session", "session_id", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load session")
		return
	}
	if game == nil {
		writeError(w, h.logger, http.StatusNotFound, "Session not found")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, sessionView(game))
}

func (h *SessionHandler) delete(w http.ResponseWriter, r *http.Request, idStr string) {
	id, err := uuid.Parse(idStr)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid session ID")
		return
	}
	if err := h.manager.Delete(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete session", "session_id", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
