package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/wildlight/questline/internal/loader"
	"github.com/wildlight/questline/pkg/achieve"
	"github.com/wildlight/questline/pkg/engine"
	"github.com/wildlight/questline/pkg/events"
	"github.com/wildlight/questline/pkg/reward"
	"github.com/wildlight/questline/pkg/story"
)

const placeholderText = "talk <dialogue> | flag <id> <true|false> | accept <quest> | collect <item> | visit <zone> | help"

var (
	transcriptStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(2).
			PaddingRight(2)

	journalStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	systemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	optionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)

var titler = cases.Title(language.English)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	pack    *loader.Pack
	engine  *engine.Engine
	tracker *achieve.Tracker
	rewards *reward.Applier

	transcript     []string
	transcriptView viewport.Model
	journalView    viewport.Model
	input          textinput.Model
	ready          bool
	width          int
	height         int
	statusLine     string

	// Options of the open dialogue node, kept so number keys can
	// select without re-reading the engine.
	openOptions []story.DialogueOption
}

// NewConsoleUI subscribes to the bus before any command runs, so every
// event lands in the transcript.
func NewConsoleUI(pack *loader.Pack, eng *engine.Engine, tracker *achieve.Tracker,
	rewards *reward.Applier, bus *events.Bus) *ConsoleUI {
	input := textinput.New()
	input.Placeholder = placeholderText
	input.Focus()
	input.CharLimit = 200

	ui := &ConsoleUI{
		pack:    pack,
		engine:  eng,
		tracker: tracker,
		rewards: rewards,
	}
	ui.input = input
	bus.Subscribe(ui.onEvent)
	ui.appendSystem(fmt.Sprintf("Loaded pack %q: %d quests, %d dialogues. Type 'help' for commands.",
		pack.Name, len(pack.Quests), len(pack.Dialogues)))
	return ui
}

// onEvent renders each bus event into the transcript.
func (ui *ConsoleUI) onEvent(ev events.Event) {
	switch ev.Type {
	case events.TypeDialogueStart, events.TypeDialogueNext:
		payload, ok := ev.Payload.(events.DialogueEvent)
		if !ok {
			return
		}
		speaker := payload.Speaker
		if speaker == "" {
			speaker = "???"
		}
		ui.transcript = append(ui.transcript,
			speakerStyle.Render(titler.String(speaker)+":")+" "+payload.Text)
		for i, opt := range payload.Options {
			ui.transcript = append(ui.transcript,
				optionStyle.Render(fmt.Sprintf("  %d) %s", i+1, opt.Text)))
		}
		ui.openOptions = payload.Options
	case events.TypeDialogueEnd:
		ui.openOptions = nil
		ui.appendSystem("The conversation ends.")
	case events.TypeFlagChange:
		payload, ok := ev.Payload.(events.FlagChange)
		if !ok {
			return
		}
		ui.appendSystem(fmt.Sprintf("flag %s = %v", payload.ID, payload.Value))
	case events.TypeQuestAccepted:
		payload, _ := ev.Payload.(events.QuestEvent)
		ui.appendSystem("Quest accepted: " + ui.questTitle(payload.QuestID))
	case events.TypeQuestUpdated:
		payload, _ := ev.Payload.(events.QuestEvent)
		ui.appendSystem("Quest updated: " + ui.questTitle(payload.QuestID))
	case events.TypeQuestCompleted:
		payload, _ := ev.Payload.(events.QuestEvent)
		ui.appendSystem("Quest completed: " + ui.questTitle(payload.QuestID))
	case events.TypeAchievementUnlocked:
		payload, ok := ev.Payload.(events.AchievementUnlocked)
		if !ok {
			return
		}
		ui.appendSystem(fmt.Sprintf("%s %s — %s",
			payload.Achievement.Icon, payload.Achievement.Title, payload.Achievement.Description))
	case events.TypeNotification:
		payload, ok := ev.Payload.(events.Notification)
		if !ok {
			return
		}
		ui.appendSystem(payload.Message)
	}
}

func (ui *ConsoleUI) questTitle(questID string) string {
	if def := ui.engine.Quest(questID); def != nil {
		return def.Title
	}
	return questID
}

func (ui *ConsoleUI) appendSystem(line string) {
	ui.transcript = append(ui.transcript, systemStyle.Render(line))
}

func (ui *ConsoleUI) Init() tea.Cmd {
	return textinput.Blink
}

func (ui *ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		ui.width = msg.Width
		ui.height = msg.Height
		ui.layout()
		ui.ready = true
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return ui, tea.Quit
		case tea.KeyEnter:
			ui.runCommand(strings.TrimSpace(ui.input.Value()))
			ui.input.SetValue("")
			ui.refresh()
			return ui, nil
		}
		// Bare number keys select dialogue options.
		if len(ui.openOptions) > 0 && ui.input.Value() == "" {
			if n, err := strconv.Atoi(msg.String()); err == nil {
				ui.engine.SelectOption(n - 1)
				ui.refresh()
				return ui, nil
			}
		}
	}

	var cmd tea.Cmd
	ui.input, cmd = ui.input.Update(msg)
	return ui, cmd
}

// runCommand dispatches one typed command into the engine.
func (ui *ConsoleUI) runCommand(line string) {
	if line == "" {
		return
	}
	fields := strings.Fields(line)
	verb, args := fields[0], fields[1:]
	ui.statusLine = ""

	switch verb {
	case "help":
		ui.appendSystem("Commands: talk <dialogue>  flag <id> <true|false>  accept <quest>  collect <item>  visit <zone>  option <n>  copy  quit")
	case "talk":
		if len(args) != 1 {
			ui.statusLine = "usage: talk <dialogue_id>"
			return
		}
		if !ui.engine.StartDialogue(args[0]) {
			ui.appendSystem("Nothing happens. (unknown dialogue " + args[0] + ")")
			return
		}
		ui.tracker.TrackProgress("talk", 1)
	case "flag":
		if len(args) != 2 || (args[1] != "true" && args[1] != "false") {
			ui.statusLine = "usage: flag <id> <true|false>"
			return
		}
		ui.engine.SetFlag(args[0], args[1] == "true")
	case "accept":
		if len(args) != 1 {
			ui.statusLine = "usage: accept <quest_id>"
			return
		}
		if !ui.engine.AcceptQuest(args[0]) {
			ui.appendSystem("Nothing happens. (quest unknown, active or completed)")
		}
	case "collect":
		if len(args) != 1 {
			ui.statusLine = "usage: collect <item>"
			return
		}
		ui.appendSystem("You collect " + args[0] + ".")
		ui.engine.CheckQuestProgress(story.StepCollect, args[0])
		ui.tracker.TrackProgress("gather", 1)
	case "visit":
		if len(args) != 1 {
			ui.statusLine = "usage: visit <zone>"
			return
		}
		ui.appendSystem("You arrive at " + args[0] + ".")
		ui.engine.CheckQuestProgress(story.StepVisit, args[0])
		ui.tracker.TrackProgress("explore", 1)
	case "option":
		if len(args) != 1 {
			ui.statusLine = "usage: option <n>"
			return
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || !ui.engine.SelectOption(n-1) {
			ui.statusLine = "no such option"
		}
	case "copy":
		if err := clipboard.WriteAll(stripANSI(strings.Join(ui.transcript, "\n"))); err != nil {
			ui.statusLine = "copy failed: " + err.Error()
			return
		}
		ui.statusLine = "transcript copied"
	case "quit", "exit":
		ui.statusLine = "press ctrl+c or esc to quit"
	default:
		ui.statusLine = "unknown command (try 'help')"
	}
}

func (ui *ConsoleUI) layout() {
	journalWidth := ui.width / 3
	transcriptWidth := ui.width - journalWidth
	bodyHeight := ui.height - 3

	ui.transcriptView = viewport.New(transcriptWidth, bodyHeight)
	ui.journalView = viewport.New(journalWidth, bodyHeight)
	ui.input.Width = ui.width - 4
	ui.refresh()
}

func (ui *ConsoleUI) refresh() {
	if ui.transcriptView.Width == 0 {
		return
	}
	wrapped := wordwrap.String(strings.Join(ui.transcript, "\n"), ui.transcriptView.Width-4)
	ui.transcriptView.SetContent(transcriptStyle.Render(wrapped))
	ui.transcriptView.GotoBottom()
	ui.journalView.SetContent(journalStyle.Render(ui.journalContent()))
}

func (ui *ConsoleUI) journalContent() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Journal") + "\n\n")
	active := ui.engine.ActiveQuests()
	if len(active) == 0 {
		b.WriteString("No active quests.\n")
	}
	for _, qp := range active {
		b.WriteString(titler.String(qp.Quest.Title) + "\n")
		done := make(map[string]bool, len(qp.Instance.Steps))
		for _, sp := range qp.Instance.Steps {
			done[sp.StepID] = sp.Done
		}
		for _, step := range qp.Quest.Steps {
			mark := "[ ]"
			if done[step.ID] {
				mark = "[x]"
			}
			fmt.Fprintf(&b, "  %s %s\n", mark, step.Description)
		}
	}
	if completed := ui.engine.CompletedQuests(); len(completed) > 0 {
		b.WriteString("\n" + titleStyle.Render("Completed") + "\n")
		for _, id := range completed {
			b.WriteString("  " + ui.questTitle(id) + "\n")
		}
	}

	profile := ui.rewards.Profile()
	fmt.Fprintf(&b, "\n%s\n  %d xp\n", titleStyle.Render("Progress"), profile.XP)
	for _, item := range profile.ItemList() {
		fmt.Fprintf(&b, "  %s x%d\n", item, profile.Items[item])
	}

	b.WriteString("\n" + titleStyle.Render("Achievements") + "\n")
	for _, a := range ui.tracker.Achievements() {
		mark := " "
		if a.Unlocked {
			mark = "★"
		}
		fmt.Fprintf(&b, " %s %s %d/%d\n", mark, a.Title, a.CurrentValue, a.TargetValue)
	}
	return b.String()
}

func (ui *ConsoleUI) View() string {
	if !ui.ready {
		return "Loading..."
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		ui.transcriptView.View(),
		ui.journalView.View())
	return body + "\n" + ui.input.View() + "\n" + systemStyle.Render(ui.statusLine)
}

// stripANSI removes styling before the transcript hits the clipboard.
func stripANSI(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
		case r == '\x1b':
			inEscape = true
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
