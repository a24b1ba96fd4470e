// Package services wires the narrative core to its hosting concerns:
// session lifecycle, persistence and event relaying for the HTTP API.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	relayevents "github.com/wildlight/questline/internal/services/events"
	"github.com/wildlight/questline/internal/storage"
	"github.com/wildlight/questline/pkg/achieve"
	"github.com/wildlight/questline/pkg/engine"
	enginevents "github.com/wildlight/questline/pkg/events"
	"github.com/wildlight/questline/pkg/reward"
	"github.com/wildlight/questline/pkg/state"
	"github.com/wildlight/questline/pkg/story"
)

// Content supplies the templates and achievement seeds a new engine is
// loaded with. The loader's Pack satisfies this.
type Content interface {
	Register(e *engine.Engine)
	AchievementSeeds() []story.Achievement
}

// AchievementStoreFunc creates a per-profile achievement store.
type AchievementStoreFunc func(profileKey string) achieve.Store

// ProfileStore persists reward profiles.
type ProfileStore interface {
	SaveProfile(ctx context.Context, id uuid.UUID, p *reward.Profile) error
	LoadProfile(ctx context.Context, id uuid.UUID) (*reward.Profile, error)
}

// Game is one live session: the engine plus its host-side collaborators.
type Game struct {
	Engine  *engine.Engine
	Tracker *achieve.Tracker
	Rewards *reward.Applier
}

// Manager owns live sessions for the API. The engine itself is
// single-threaded; the manager serializes all access behind one mutex,
// which is the explicit synchronization a multi-threaded host needs.
type Manager struct {
	mu       sync.Mutex
	sessions storage.SessionStore
	profiles ProfileStore
	achieves AchievementStoreFunc
	relay    *relayevents.Relay
	content  Content
	logger   *slog.Logger
	live     map[uuid.UUID]*Game
}

// NewManager creates a session manager. relay may be nil when no event
// fan-out is wanted (tests).
func NewManager(sessions storage.SessionStore, profiles ProfileStore, achieves AchievementStoreFunc,
	relay *relayevents.Relay, content Content, logger *slog.Logger) *Manager {
	return &Manager{
		sessions: sessions,
		profiles: profiles,
		achieves: achieves,
		relay:    relay,
		content:  content,
		logger:   logger,
		live:     make(map[uuid.UUID]*Game),
	}
}

// Create starts a new session, persists its first snapshot and returns
// the live game.
func (m *Manager) Create(ctx context.Context) (*Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session := state.NewSession()
	game, err := m.assemble(session, &reward.Profile{})
	if err != nil {
		return nil, err
	}
	if err := m.sessions.SaveSession(ctx, session); err != nil {
		return nil, err
	}
	m.live[session.ID] = game
	m.logger.Info("Session created", "session_id", session.ID)
	return game, nil
}

// Get returns the live game for a session, rehydrating it from the
// snapshot store if needed. Returns nil when the session is unknown.
func (m *Manager) Get(ctx context.Context, id uuid.UUID) (*Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.get(ctx, id)
}

func (m *Manager) get(ctx context.Context, id uuid.UUID) (*Game, error) {
	if game, ok := m.live[id]; ok {
		return game, nil
	}
	session, err := m.sessions.LoadSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}
	profile, err := m.profiles.LoadProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		profile = &reward.Profile{}
	}
	game, err := m.assemble(session, profile)
	if err != nil {
		return nil, err
	}
	m.live[id] = game
	return game, nil
}

// Do runs fn against a session's game under the manager lock, then
// persists the session and profile. fn returning an error skips the
// persist.
func (m *Manager) Do(ctx context.Context, id uuid.UUID, fn func(*Game) error) (*Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	game, err := m.get(ctx, id)
	if err != nil || game == nil {
		return game, err
	}
	if err := fn(game); err != nil {
		return game, err
	}
	if err := m.sessions.SaveSession(ctx, game.Engine.Session()); err != nil {
		return game, err
	}
	if err := m.profiles.SaveProfile(ctx, id, game.Rewards.Profile()); err != nil {
		return game, err
	}
	return game, nil
}

// Delete removes a session from memory and the snapshot store.
func (m *Manager) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.live, id)
	if err := m.sessions.DeleteSession(ctx, id); err != nil {
		return err
	}
	m.logger.Info("Session deleted", "session_id", id)
	return nil
}

func (m *Manager) assemble(session *state.Session, profile *reward.Profile) (*Game, error) {
	bus := enginevents.NewBus()
	eng := engine.New(session, bus, m.logger)
	m.content.Register(eng)

	applier := reward.NewApplier(profile, eng, m.logger)
	eng.SetRewardSink(applier)

	if m.relay != nil {
		m.relay.Attach(bus, session.ID)
	}

	tracker, err := achieve.NewTracker(
		m.achieves(session.ID.String()),
		bus, m.logger, m.content.AchievementSeeds())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize achievements: %w", err)
	}

	return &Game{Engine: eng, Tracker: tracker, Rewards: applier}, nil
}
