package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wildlight/questline/internal/config"
	"github.com/wildlight/questline/internal/loader"
	"github.com/wildlight/questline/internal/storage"
	"github.com/wildlight/questline/pkg/achieve"
	"github.com/wildlight/questline/pkg/engine"
	"github.com/wildlight/questline/pkg/events"
	"github.com/wildlight/questline/pkg/reward"
	"github.com/wildlight/questline/pkg/state"
)

// The console plays a content pack in-process: no API, no Redis, just
// the engine with a file-backed achievement store.
func main() {
	cfg := config.Load()

	contentDir := cfg.ContentDir
	if len(os.Args) > 1 {
		contentDir = os.Args[1]
	}

	pack, err := loader.LoadDir(contentDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load content packs: %v\n", err)
		os.Exit(1)
	}

	bus := events.NewBus()
	eng := engine.New(state.NewSession(), bus, nil)
	pack.Register(eng)

	applier := reward.NewApplier(&reward.Profile{}, eng, nil)
	eng.SetRewardSink(applier)

	achStore := storage.NewFileAchievementStore(cfg.AchievementsFile)
	tracker, err := achieve.NewTracker(achStore, bus, nil, pack.AchievementSeeds())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize achievements: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(NewConsoleUI(pack, eng, tracker, applier, bus),
		tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
