// Package tui is a tiny bubbletea dashboard over an lsp.Registry: one row
// per known language showing its current state, plus a scrolling feed of
// incoming diagnostics. It polls the registry once per tick, the same way
// any editor integration would.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"polyglotls/config"
	"polyglotls/lsp"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(1, 2)

	feedStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#A550DF")).
			Padding(1, 2).
			Height(12)

	readyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#50FA7B"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F1FA8C"))
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555"))
	absentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6272A4"))
)

// watchedLanguages is the fixed set of languages the dashboard reports on.
// The registry itself tracks state for any tag a caller ever touches; this
// list just bounds what an idle dashboard displays before anything has
// been opened.
var watchedLanguages = []lsp.LanguageTag{
	lsp.LanguageRust, lsp.LanguageTypeScript, lsp.LanguageJavaScript,
	lsp.LanguagePython, lsp.LanguageGo, lsp.LanguageC, lsp.LanguageCpp,
	lsp.LanguageLua, lsp.LanguageZig, lsp.LanguageBash,
}

type tickMsg time.Time

// settingsMsg carries a freshly reloaded settings file in from
// config.Watch, via settingsCh.
type settingsMsg *config.Settings

type model struct {
	registry   *lsp.Registry
	settings   *config.Settings
	settingsCh <-chan *config.Settings
	spinner    spinner.Model

	width, height int
	feed          []string
	quitting      bool
}

func tick() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForSettings blocks on the next settings reload and delivers it as a
// tea.Msg; Update re-issues this after every reload to keep listening.
func waitForSettings(ch <-chan *config.Settings) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return settingsMsg(s)
	}
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{tick(), m.spinner.Tick}
	if m.settingsCh != nil {
		cmds = append(cmds, waitForSettings(m.settingsCh))
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tickMsg:
		m.registry.PollReady()
		for _, fd := range m.registry.DrainDiagnostics() {
			m.feed = append(m.feed, formatFeedLine(fd))
		}
		if len(m.feed) > 200 {
			m.feed = m.feed[len(m.feed)-200:]
		}
		return m, tick()
	case settingsMsg:
		m.settings = msg
		m.registry.ApplySettings(m.settings.LSPEnabled, watchedLanguages, m.settings)
		return m, waitForSettings(m.settingsCh)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func formatFeedLine(fd lsp.FileDiagnostics) string {
	if len(fd.Diagnostics) == 0 {
		return fmt.Sprintf("%s: clear", fd.Path)
	}
	d := fd.Diagnostics[0]
	more := ""
	if len(fd.Diagnostics) > 1 {
		more = fmt.Sprintf(" (+%d more)", len(fd.Diagnostics)-1)
	}
	return fmt.Sprintf("%s:%d: %s: %s%s", fd.Path, d.StartLine+1, d.Severity, d.Message, more)
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("polyglotls — registry status"))
	b.WriteString("\n\n")
	b.WriteString(panelStyle.Render(m.renderLanguages()))
	b.WriteString("\n")
	b.WriteString(feedStyle.Render(m.renderFeed()))
	b.WriteString("\nq to quit\n")
	return b.String()
}

func (m model) renderLanguages() string {
	active := map[lsp.LanguageTag]bool{}
	for _, t := range m.registry.ActiveLanguages() {
		active[t] = true
	}
	pending := map[lsp.LanguageTag]bool{}
	for _, t := range m.registry.PendingLanguages() {
		pending[t] = true
	}
	failed := m.registry.FailedLanguages()

	var lines []string
	for _, tag := range watchedLanguages {
		var state string
		switch {
		case active[tag]:
			state = readyStyle.Render("ready")
		case pending[tag]:
			state = pendingStyle.Render(m.spinner.View() + " spawning")
		default:
			if remaining, ok := failed[tag]; ok {
				state = failedStyle.Render(fmt.Sprintf("failed (retry in %s)", remaining.Round(time.Second)))
			} else {
				state = absentStyle.Render("absent")
			}
		}
		lines = append(lines, fmt.Sprintf("%-12s %s", tag.LanguageIDStr(), state))
	}
	return strings.Join(lines, "\n")
}

func (m model) renderFeed() string {
	if len(m.feed) == 0 {
		return "no diagnostics yet"
	}
	start := 0
	if len(m.feed) > 10 {
		start = len(m.feed) - 10
	}
	return strings.Join(m.feed[start:], "\n")
}

// StartDashboard runs the registry status dashboard until the user quits,
// then stops every running language server. While running, it watches
// workspacePath's local settings file and forwards reloads into the
// registry, so enabling LSP or a language on disk takes effect live.
func StartDashboard(workspacePath string, registry *lsp.Registry, settings *config.Settings) error {
	settingsCh := make(chan *config.Settings, 1)
	stopWatch, err := config.Watch(workspacePath, func(s *config.Settings) {
		settingsCh <- s
	})
	if err != nil {
		return err
	}
	defer stopWatch()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = pendingStyle

	m := model{registry: registry, settings: settings, settingsCh: settingsCh, spinner: sp}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, runErr := p.Run()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = registry.StopAll(ctx)

	return runErr
}
