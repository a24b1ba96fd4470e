package state

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SnapshotVersion is the schema version written into every serialized
// session. Bump it when the snapshot shape changes.
const SnapshotVersion = 1

// DialogueCursor is the serializable position of the single dialogue
// session: which dialogue is being walked and which node is current.
// A nil cursor means no conversation is open.
type DialogueCursor struct {
	DialogueID string `json:"dialogue_id"`
	NodeID     string `json:"node_id"`
}

// Session is the runtime narrative state of one game session: world
// flags, the quest log and the dialogue cursor, under a stable ID.
type Session struct {
	ID        uuid.UUID       `json:"id"`
	Flags     *Flags          `json:"flags"`
	Quests    *QuestLog       `json:"quests"`
	Dialogue  *DialogueCursor `json:"dialogue,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewSession returns an empty session with a fresh ID.
func NewSession() *Session {
	return &Session{
		ID:     uuid.New(),
		Flags:  NewFlags(),
		Quests: NewQuestLog(),
	}
}

// snapshot is the versioned envelope around a serialized session.
type snapshot struct {
	Version int      `json:"version"`
	Session *Session `json:"session"`
}

// Snapshot serializes the session inside a versioned envelope.
func (s *Session) Snapshot() ([]byte, error) {
	data, err := json.Marshal(snapshot{Version: SnapshotVersion, Session: s})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session snapshot: %w", err)
	}
	return data, nil
}

// RestoreSession deserializes a snapshot produced by Snapshot. Maps are
// never nil after restore.
func RestoreSession(data []byte) (*Session, error) {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session snapshot: %w", err)
	}
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported session snapshot version %d", snap.Version)
	}
	s := snap.Session
	if s == nil {
		return nil, fmt.Errorf("session snapshot has no session")
	}
	if s.Flags == nil {
		s.Flags = NewFlags()
	}
	if s.Flags.Bools == nil {
		s.Flags.Bools = make(map[string]bool)
	}
	if s.Flags.Values == nil {
		s.Flags.Values = make(map[string]int)
	}
	if s.Quests == nil {
		s.Quests = NewQuestLog()
	}
	if s.Quests.Active == nil {
		s.Quests.Active = make(map[string]*QuestInstance)
	}
	if s.Quests.Completed == nil {
		s.Quests.Completed = make(map[string]bool)
	}
	return s, nil
}
