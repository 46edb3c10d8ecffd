package sim

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"dronetactics/internal/config"
	"dronetactics/internal/telemetry"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// logMsg carries a role event line for the viewport.
type logMsg struct{ line string }

// agentMsg carries the latest state of one drone.
type agentMsg struct{ telemetry.AgentStateRow }

// teamMsg carries a team summary.
type teamMsg struct{ telemetry.TeamStateRow }

// adminMsg reports admin server status.
type adminMsg struct{ active bool }

const maxLogLines = 1000

// lipgloss equivalents of teamPalette.
var teamTermColors = map[string]lipgloss.Color{
	colorRed:     lipgloss.Color("9"),
	colorBlue:    lipgloss.Color("12"),
	colorGreen:   lipgloss.Color("10"),
	colorYellow:  lipgloss.Color("11"),
	colorMagenta: lipgloss.Color("13"),
	colorCyan:    lipgloss.Color("14"),
}

// TUIWriter renders the match using a bubbletea TUI.
type TUIWriter struct {
	program    teaProgram
	colors     *teamColors
	done       chan struct{}
	sendSignal atomic.Bool
}

// NewTUIWriter starts a bubbletea program and returns a TUIWriter.
func NewTUIWriter(cfg *config.MatchConfig) *TUIWriter {
	colors := &teamColors{}
	for _, t := range cfg.Teams {
		colors.get(t.Name)
	}
	w := &TUIWriter{colors: colors, done: make(chan struct{})}
	w.sendSignal.Store(true)
	p := tea.NewProgram(newTUIModel(cfg), tea.WithAltScreen())
	w.program = p
	go func() {
		_, _ = p.Run()
		close(w.done)
		// Quitting the TUI stops the match like Ctrl+C would.
		if w.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return w
}

// Write implements AgentStateWriter.
func (w *TUIWriter) Write(row telemetry.AgentStateRow) error {
	w.program.Send(agentMsg{row})
	return nil
}

// WriteBatch sends multiple agent rows.
func (w *TUIWriter) WriteBatch(rows []telemetry.AgentStateRow) error {
	for _, r := range rows {
		_ = w.Write(r)
	}
	return nil
}

// WriteRoleEvent implements RoleEventWriter.
func (w *TUIWriter) WriteRoleEvent(e telemetry.RoleEventRow) error {
	line := fmt.Sprintf("%s[%05d]%s %s%s#%d%s %s -> %s%s%s",
		colorGray, e.Step, colorReset,
		w.colors.get(e.Team), e.Team, e.Ordinal, colorReset,
		e.From, roleColor(e.To), e.To, colorReset)
	if e.Resume != "" {
		line += fmt.Sprintf(" %s(resume %s)%s", colorGray, e.Resume, colorReset)
	}
	w.program.Send(logMsg{line: line})
	return nil
}

// WriteTeamState implements TeamStateWriter.
func (w *TUIWriter) WriteTeamState(row telemetry.TeamStateRow) error {
	w.program.Send(teamMsg{row})
	return nil
}

// SetAdminStatus shows whether the admin server is listening.
func (w *TUIWriter) SetAdminStatus(active bool) {
	w.program.Send(adminMsg{active: active})
}

// Close stops the program and waits for it to restore the terminal.
func (w *TUIWriter) Close() error {
	w.sendSignal.Store(false)
	if w.program != nil {
		w.program.Send(tea.Quit())
	}
	if w.done != nil {
		<-w.done
	}
	return nil
}

type tuiModel struct {
	cfg        *config.MatchConfig
	colors     *teamColors
	table      table.Model
	vp         viewport.Model
	logs       []string
	teams      map[string]telemetry.TeamStateRow
	drones     map[string]telemetry.AgentStateRow
	step       int
	admin      bool
	wrap       bool
	autoscroll bool
	showMap    bool
	help       bool
	header     string
	height     int
}

// newTUIModel keeps its own palette, assigned in the same order as the writer's.
func newTUIModel(cfg *config.MatchConfig) tuiModel {
	cols := []table.Column{
		{Title: "Team", Width: 8},
		{Title: "Alive", Width: 5},
		{Title: "Col", Width: 4},
		{Title: "Def", Width: 4},
		{Title: "Fwd", Width: 4},
		{Title: "Scv", Width: 4},
		{Title: "Heal", Width: 4},
		{Title: "Base", Width: 6},
		{Title: "Payload", Width: 8},
		{Title: "Focus", Width: 12},
	}
	colors := &teamColors{}
	rows := make([]table.Row, 0, len(cfg.Teams))
	for _, t := range cfg.Teams {
		colors.get(t.Name)
		rows = append(rows, table.Row{t.Name, fmt.Sprint(t.Drones), "-", "-", "-", "-", "-", "1.00", "0", ""})
	}
	m := tuiModel{
		cfg:        cfg,
		colors:     colors,
		table:      table.New(table.WithColumns(cols), table.WithRows(rows), table.WithHeight(len(rows)+1)),
		vp:         viewport.New(0, 0),
		teams:      make(map[string]telemetry.TeamStateRow),
		drones:     make(map[string]telemetry.AgentStateRow),
		autoscroll: true,
	}
	m.header = m.renderHeader()
	return m
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetWidth(msg.Width)
		m.vp.Width = msg.Width
		m.height = msg.Height
		m.updateViewportHeight()
		m.refreshViewport()
	case tea.KeyMsg:
		if m.help {
			switch msg.String() {
			case "?", "h", "esc":
				m.help = false
			}
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "w":
			m.wrap = !m.wrap
			m.refreshViewport()
			return m, nil
		case "s":
			m.autoscroll = !m.autoscroll
			if m.autoscroll {
				m.vp.GotoBottom()
			}
			return m, nil
		case "m":
			m.showMap = !m.showMap
			return m, nil
		case "h", "?":
			m.help = true
			return m, nil
		}
		if !m.autoscroll {
			switch msg.String() {
			case "j", "down":
				m.vp.LineDown(1)
			case "k", "up":
				m.vp.LineUp(1)
			case "pgdown", "ctrl+n":
				m.vp.LineDown(10)
			case "pgup", "ctrl+p":
				m.vp.LineUp(10)
			default:
				var cmd tea.Cmd
				m.vp, cmd = m.vp.Update(msg)
				return m, cmd
			}
		}
		return m, nil
	case logMsg:
		m.logs = append(m.logs, msg.line)
		if len(m.logs) > maxLogLines {
			m.logs = m.logs[len(m.logs)-maxLogLines:]
		}
		m.refreshViewport()
	case agentMsg:
		m.drones[msg.DroneID] = msg.AgentStateRow
		if msg.Step > m.step {
			m.step = msg.Step
			m.header = m.renderHeader()
		}
	case teamMsg:
		m.teams[msg.Team] = msg.TeamStateRow
		m.table.SetRows(m.teamRows())
	case adminMsg:
		m.admin = msg.active
	}
	return m, nil
}

// teamRows orders rows like the configuration, unknown teams last.
func (m tuiModel) teamRows() []table.Row {
	var names []string
	seen := make(map[string]bool)
	for _, t := range m.cfg.Teams {
		names = append(names, t.Name)
		seen[t.Name] = true
	}
	var extra []string
	for name := range m.teams {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	names = append(names, extra...)

	rows := make([]table.Row, 0, len(names))
	for _, name := range names {
		r, ok := m.teams[name]
		if !ok {
			rows = append(rows, table.Row{name, "-", "-", "-", "-", "-", "-", "-", "-", ""})
			continue
		}
		base := fmt.Sprintf("%.2f", r.BaseHealth)
		if !r.BaseAlive {
			base = "down"
		}
		rows = append(rows, table.Row{
			r.Team,
			fmt.Sprint(r.Alive),
			fmt.Sprint(r.Collectors),
			fmt.Sprint(r.Defenders),
			fmt.Sprint(r.Forwards),
			fmt.Sprint(r.Scavengers),
			fmt.Sprint(r.Healing),
			base,
			fmt.Sprintf("%.0f", r.BasePayload),
			shortID(r.Focus),
		})
	}
	return rows
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (m *tuiModel) updateViewportHeight() {
	h := m.height - lipgloss.Height(m.header) - lipgloss.Height(m.table.View()) - lipgloss.Height(m.renderBottom()) - 3
	if h < 0 {
		h = 0
	}
	m.vp.Height = h
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m *tuiModel) refreshViewport() {
	var lines []string
	for _, l := range m.logs {
		if m.wrap && m.vp.Width > 0 {
			lines = append(lines, wordwrap.String(l, m.vp.Width))
		} else {
			lines = append(lines, l)
		}
	}
	m.vp.SetContent(strings.Join(lines, "\n"))
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m tuiModel) View() string {
	if m.help {
		return m.renderHelp()
	}
	divider := strings.Repeat("─", m.vp.Width)
	body := m.vp.View()
	if m.showMap {
		body = m.renderMap(m.vp.Width, m.vp.Height)
	}
	return strings.Join([]string{
		m.header,
		m.table.View(),
		divider,
		body,
		divider,
		m.renderBottom(),
	}, "\n")
}

func (m tuiModel) renderHeader() string {
	title := lipgloss.NewStyle().Bold(true).Render("dronetactics")
	return fmt.Sprintf("%s match=%s step=%d/%d field=%.0fx%.0f",
		title, m.cfg.MatchID, m.step, m.cfg.MaxSteps, m.cfg.Field.Width, m.cfg.Field.Height)
}

func (m tuiModel) renderBottom() string {
	indicator := func(on bool) string {
		c := lipgloss.Color("9")
		if on {
			c = lipgloss.Color("10")
		}
		return lipgloss.NewStyle().Foreground(c).Render("●")
	}
	return fmt.Sprintf("Admin %s | Wrap %s | Scroll %s | Map %s | h help",
		indicator(m.admin), indicator(m.wrap), indicator(m.autoscroll), indicator(m.showMap))
}

func (m tuiModel) renderHelp() string {
	lines := []string{
		"Key Bindings:",
		" q  quit",
		" w  toggle wrap for role events",
		" s  toggle auto-scroll",
		" m  toggle field map",
		" h/? toggle this help view",
		"",
		"When auto-scroll is disabled:",
		" j/k or up/down    scroll one line",
		" pgdown/pgup       scroll a page",
	}
	return strings.Join(lines, "\n")
}

// renderMap plots every drone on a width x height character grid. Live
// drones show their team initial, dead ones an x.
func (m tuiModel) renderMap(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	if len(m.drones) == 0 {
		return "No position data"
	}
	grid := make([][]string, height)
	for i := range grid {
		row := make([]string, width)
		for j := range row {
			row[j] = "."
		}
		grid[i] = row
	}
	ids := make([]string, 0, len(m.drones))
	for id := range m.drones {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		d := m.drones[id]
		x := int(math.Round(d.X / m.cfg.Field.Width * float64(width-1)))
		y := int(math.Round(d.Y / m.cfg.Field.Height * float64(height-1)))
		if x < 0 || x >= width || y < 0 || y >= height {
			continue
		}
		style := lipgloss.NewStyle().Foreground(teamTermColors[m.colors.get(d.Team)])
		mark := "x"
		if d.Status != telemetry.StatusDead && d.Team != "" {
			mark = strings.ToUpper(d.Team[:1])
		}
		grid[y][x] = style.Render(mark)
	}
	lines := make([]string, height)
	for i, row := range grid {
		lines[i] = strings.Join(row, "")
	}
	return strings.Join(lines, "\n")
}
