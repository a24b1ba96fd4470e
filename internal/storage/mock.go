package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wildlight/questline/pkg/reward"
	"github.com/wildlight/questline/pkg/state"
	"github.com/wildlight/questline/pkg/story"
)

// MockSessionStore is an in-memory SessionStore for tests. Sessions are
// round-tripped through the snapshot codec so tests exercise the same
// serialization path as Redis.
type MockSessionStore struct {
	sessions map[uuid.UUID][]byte
}

var _ SessionStore = (*MockSessionStore)(nil)

func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{
		sessions: make(map[uuid.UUID][]byte),
	}
}

func (m *MockSessionStore) SaveSession(_ context.Context, s *state.Session) error {
	s.UpdatedAt = time.Now()
	data, err := s.Snapshot()
	if err != nil {
		return err
	}
	m.sessions[s.ID] = data
	return nil
}

func (m *MockSessionStore) LoadSession(_ context.Context, id uuid.UUID) (*state.Session, error) {
	data, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return state.RestoreSession(data)
}

func (m *MockSessionStore) DeleteSession(_ context.Context, id uuid.UUID) error {
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionStore) Ping(context.Context) error { return nil }
func (m *MockSessionStore) Close() error               { return nil }

// MockProfileStore is an in-memory profile store for tests.
type MockProfileStore struct {
	profiles map[uuid.UUID]*reward.Profile
}

func NewMockProfileStore() *MockProfileStore {
	return &MockProfileStore{profiles: make(map[uuid.UUID]*reward.Profile)}
}

func (m *MockProfileStore) SaveProfile(_ context.Context, id uuid.UUID, p *reward.Profile) error {
	clone := *p
	m.profiles[id] = &clone
	return nil
}

func (m *MockProfileStore) LoadProfile(_ context.Context, id uuid.UUID) (*reward.Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return nil, nil
	}
	clone := *p
	return &clone, nil
}

// MemoryAchievementStore is an in-memory achieve.Store for tests and
// throwaway sessions.
type MemoryAchievementStore struct {
	list []story.Achievement
}

func NewMemoryAchievementStore() *MemoryAchievementStore {
	return &MemoryAchievementStore{}
}

func (m *MemoryAchievementStore) Load() ([]story.Achievement, error) {
	if m.list == nil {
		return nil, nil
	}
	out := make([]story.Achievement, len(m.list))
	copy(out, m.list)
	return out, nil
}

func (m *MemoryAchievementStore) Save(list []story.Achievement) error {
	m.list = make([]story.Achievement, len(list))
	copy(m.list, list)
	return nil
}
