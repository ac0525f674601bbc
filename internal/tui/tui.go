package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/tatianab/dice-battle/internal/bot"
	"github.com/tatianab/dice-battle/internal/config"
	"github.com/tatianab/dice-battle/internal/engine"
	"github.com/tatianab/dice-battle/internal/models"
)

type sessionState int

const (
	stateInputName sessionState = iota
	stateReady
	stateRolling
	stateDeciding
	stateFinished
	stateError
)

// Options configures an interactive game. Every seat except the human's is
// played by Bot.
type Options struct {
	Rules     config.Rules
	Opponents []string
	Bot       engine.DecisionProvider
	Logger    zerolog.Logger
	// Seed pins the dice when non-zero.
	Seed uint64
}

type model struct {
	state     sessionState
	opts      Options
	ctx       context.Context
	cancel    context.CancelFunc
	human     *humanProvider
	engine    *engine.Engine
	player    string
	textInput textinput.Model
	viewport  viewport.Model
	err       error
	gameLog   string
	width     int
	height    int
	players   []models.PlayerView
	maxHP     map[string]int
	seats     string
	standings []models.RankRecord
	pending   *prompt
	result    engine.Result
	savedAs   string
}

var (
	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true).
			PaddingLeft(1)

	gameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	roundStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true)

	defeatedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AF5F5F")).
			Strikethrough(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	stateStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)
)

func newModel(ctx context.Context, opts Options) model {
	ti := textinput.New()
	ti.Placeholder = "Enter your name..."
	ti.Focus()
	ti.CharLimit = 32
	ti.Width = 40

	ctx, cancel := context.WithCancel(ctx)
	return model{
		state:     stateInputName,
		opts:      opts,
		ctx:       ctx,
		cancel:    cancel,
		human:     newHumanProvider(),
		textInput: ti,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

type roundMsg struct {
	report engine.RoundReport
	err    error
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancel()
			return m, tea.Quit

		case tea.KeyEnter:
			input := strings.TrimSpace(m.textInput.Value())
			m.textInput.Reset()
			if input == "/quit" {
				m.cancel()
				return m, tea.Quit
			}

			switch m.state {
			case stateInputName:
				if input == "" {
					input = "You"
				}
				if err := m.startGame(input); err != nil {
					m.err = err
					m.state = stateError
					return m, nil
				}
				m.state = stateReady
				m.textInput.Placeholder = "Press Enter to roll"
				m.refreshLog()
				return m, waitForPrompt(m.human.prompts)

			case stateReady:
				m.state = stateRolling
				return m, m.playRound()

			case stateDeciding:
				answer, ok := parseAnswer(input, m.pending.options)
				if !ok {
					m.appendLog(helpStyle.Render(fmt.Sprintf("%q is not one of the options.", input)))
					return m, nil
				}
				m.pending.reply <- answer
				m.pending = nil
				m.state = stateRolling
				m.textInput.Placeholder = ""
				return m, waitForPrompt(m.human.prompts)

			case stateFinished:
				m.cancel()
				return m, tea.Quit
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = int(float64(msg.Width) * 0.70)
		m.viewport.Height = msg.Height - 8
		m.viewport.SetContent(m.renderLog())

	case promptMsg:
		p := prompt(msg)
		m.pending = &p
		m.state = stateDeciding
		m.textInput.Placeholder = "Type a number or a name"
		return m, nil

	case roundMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = stateError
			return m, nil
		}
		m.showRound(msg.report)
		if msg.report.Finished {
			m.finish()
			return m, nil
		}
		m.state = stateReady
		m.textInput.Placeholder = "Press Enter to roll"
		return m, nil
	}

	if m.state != stateError {
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) startGame(name string) error {
	names := []string{name}
	for _, o := range m.opts.Opponents {
		if len(names) == m.opts.Rules.TotalPlayers {
			break
		}
		if !strings.EqualFold(o, name) {
			names = append(names, o)
		}
	}

	provider := &bot.Mux{
		Seats:    map[string]engine.DecisionProvider{name: m.human},
		Fallback: m.opts.Bot,
	}
	engOpts := []engine.Option{engine.WithLogger(m.opts.Logger)}
	if m.opts.Seed != 0 {
		engOpts = append(engOpts, engine.WithRoller(engine.NewRandRoller(m.opts.Seed)))
	}
	eng, err := engine.NewEngine(m.opts.Rules, names, provider, engOpts...)
	if err != nil {
		return err
	}

	m.engine = eng
	m.player = name
	m.snapshot()

	session := eng.Session()
	m.maxHP = make(map[string]int, session.Size())
	for _, p := range session.Roster() {
		m.maxHP[p.Name()] = p.MaxHP()
	}
	m.seats = fmt.Sprintf("%d/%d seats", session.Size(), session.MaxPlayers())

	seating := make([]string, len(m.players))
	for i, p := range m.players {
		seating[i] = p.Name
	}
	logWidth := int(float64(m.width) * 0.70)
	m.gameLog = gameStyle.Bold(true).Render("Dice Battle") + "\n\n" +
		gameStyle.Width(logWidth).Render("Seating: "+strings.Join(seating, ", ")) + "\n"
	if m.viewport.Width == 0 {
		m.viewport = viewport.New(logWidth, m.height-8)
	}
	return nil
}

func (m *model) snapshot() {
	m.players = m.engine.Session().Views()
	m.standings = m.engine.Ranks().Standings()
}

func (m *model) showRound(report engine.RoundReport) {
	m.snapshot()
	logWidth := int(float64(m.width) * 0.70)
	var b strings.Builder
	b.WriteString("\n" + roundStyle.Render(fmt.Sprintf("Round %d", report.Round)) + "\n")
	lines := engine.Refine(report.Records)
	for i, line := range lines {
		if report.Records[i].RolledBy == m.player {
			b.WriteString(userStyle.Width(logWidth).Render("> "+line) + "\n")
		} else {
			b.WriteString(gameStyle.Width(logWidth).Render(line) + "\n")
		}
	}
	for _, name := range report.Defeated {
		b.WriteString(defeatedStyle.Render(name+" was defeated") + "\n")
	}
	m.gameLog += b.String()
	m.refreshLog()
}

func (m *model) finish() {
	m.state = stateFinished
	m.result = m.engine.Result()
	m.textInput.Placeholder = "Press Enter to exit"

	summary := fmt.Sprintf("Game over after %d rounds: %s. Winner: %s", m.result.Rounds, m.result.Reason, m.result.Winner)
	m.appendLog("\n" + roundStyle.Render(summary))

	name := m.engine.Session().ID
	if err := m.engine.Transcript().Save(name); err != nil {
		m.appendLog(helpStyle.Render("Could not save transcript: " + err.Error()))
		return
	}
	m.savedAs = name
	m.appendLog(helpStyle.Render("Transcript saved as " + name))
}

func (m *model) appendLog(line string) {
	m.gameLog += line + "\n"
	m.refreshLog()
}

func (m *model) refreshLog() {
	m.viewport.SetContent(m.renderLog())
	m.viewport.GotoBottom()
}

func (m model) View() string {
	var s string

	switch m.state {
	case stateInputName:
		s = fmt.Sprintf(
			"Welcome to Dice Battle!\n\n%s\n\n%s",
			"What should we call you?",
			m.textInput.View(),
		)

	case stateReady, stateRolling, stateDeciding, stateFinished:
		mainView := lipgloss.JoinHorizontal(lipgloss.Top,
			m.viewport.View(),
			m.renderState(),
		)

		var ask string
		if m.state == stateDeciding && m.pending != nil {
			ask = m.renderPrompt()
		}

		help := helpStyle.Render("Commands: /quit, or answer with a number or a name.")
		s = lipgloss.JoinVertical(lipgloss.Left,
			mainView,
			ask,
			"\n"+m.textInput.View(),
			"\n"+help,
		)

	case stateError:
		s = fmt.Sprintf("\n  Error: %v\n\nPress Esc to quit.", m.err)
	}

	return "\n" + s + "\n"
}

func (m model) renderPrompt() string {
	var b strings.Builder
	b.WriteString(roundStyle.Render(m.pending.title) + "\n")
	for i, o := range m.pending.options {
		fmt.Fprintf(&b, "  %d) %s\n", i+1, o)
	}
	return b.String()
}

func (m model) renderState() string {
	if m.engine == nil {
		return ""
	}

	round := titleStyle.Render("ROUND") + "\n" +
		fmt.Sprintf("%d / %d\n\n", m.engine.Session().Round(), m.opts.Rules.MaxRounds)
	if m.state == stateRolling || m.state == stateDeciding {
		// the round goroutine owns the session until it reports back
		round = titleStyle.Render("ROUND") + "\nin progress\n\n"
	}

	playersTitle := titleStyle.Render("PLAYERS") + " " + m.seats + "\n"
	players := ""
	for _, p := range m.players {
		line := fmt.Sprintf("%-10s %2d/%d HP %2d VP", p.Name, p.HP, m.maxHP[p.Name], p.VP)
		if p.Status == models.StatusDefeated {
			line = defeatedStyle.Render(line)
		}
		players += line + "\n"
	}
	players += "\n"

	standingsTitle := titleStyle.Render("STANDINGS") + "\n"
	standings := ""
	for _, r := range m.standings {
		standings += fmt.Sprintf("%d. %s\n", r.Rank, r.PlayerName)
	}

	content := round + playersTitle + players + standingsTitle + standings

	stateWidth := int(float64(m.width) * 0.28)
	return stateStyle.Width(stateWidth).Height(m.viewport.Height).Render(content)
}

func (m model) renderLog() string {
	return m.gameLog
}

func (m model) playRound() tea.Cmd {
	eng, ctx := m.engine, m.ctx
	return func() tea.Msg {
		report, err := eng.PlayRound(ctx)
		return roundMsg{report, err}
	}
}

// Run plays one interactive game in the terminal.
func Run(ctx context.Context, opts Options) error {
	if opts.Bot == nil {
		opts.Bot = &bot.Greedy{}
	}
	m := newModel(ctx, opts)
	defer m.cancel()
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
