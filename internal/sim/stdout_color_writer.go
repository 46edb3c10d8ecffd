// ColorStdoutWriter prints human-friendly, colorized match rows to STDOUT.
package sim

import (
	"fmt"
	"io"
	"os"
	"sync"
	"text/tabwriter"

	"dronetactics/internal/config"
	"dronetactics/internal/telemetry"
)

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorGray    = "\x1b[90m"
)

var teamPalette = []string{colorRed, colorBlue, colorGreen, colorYellow, colorMagenta, colorCyan}

// teamColors hands out palette entries in first-seen order.
type teamColors struct {
	colors map[string]string
	next   int
}

func (tc *teamColors) get(team string) string {
	if tc.colors == nil {
		tc.colors = make(map[string]string)
	}
	if c, ok := tc.colors[team]; ok {
		return c
	}
	c := teamPalette[tc.next%len(teamPalette)]
	tc.colors[team] = c
	tc.next++
	return c
}

func roleColor(role string) string {
	switch role {
	case "collector":
		return colorGreen
	case "defender", "main_defender":
		return colorBlue
	case "forward":
		return colorRed
	case "scavenger":
		return colorYellow
	case "to_heal":
		return colorMagenta
	}
	return colorGray
}

// ColorStdoutWriter prints match rows using ANSI colors.
type ColorStdoutWriter struct {
	cfg    *config.MatchConfig
	out    io.Writer
	once   sync.Once
	colors teamColors
	mu     sync.Mutex
}

// NewColorStdoutWriter creates a ColorStdoutWriter writing to os.Stdout.
func NewColorStdoutWriter(cfg *config.MatchConfig) *ColorStdoutWriter {
	w := &ColorStdoutWriter{cfg: cfg, out: os.Stdout}
	if cfg != nil {
		for _, t := range cfg.Teams {
			w.colors.get(t.Name)
		}
	}
	return w
}

func (w *ColorStdoutWriter) printOverview() {
	if w.cfg == nil {
		return
	}

	fmt.Fprintln(w.out, "Match Configuration:")
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Match:\t%s\n", w.cfg.MatchID)
	fmt.Fprintf(tw, "Seed:\t%d\n", w.cfg.Seed)
	fmt.Fprintf(tw, "Field:\t%.0fx%.0f\n", w.cfg.Field.Width, w.cfg.Field.Height)
	fmt.Fprintf(tw, "Nodes:\t%d (payload %.0f-%.0f)\n", w.cfg.Nodes.Count, w.cfg.Nodes.MinPayload, w.cfg.Nodes.MaxPayload)
	fmt.Fprintf(tw, "Max Steps:\t%d\n", w.cfg.MaxSteps)
	fmt.Fprintf(tw, "Attack Range:\t%.0f\n", w.cfg.Drone.AttackRange)
	tw.Flush()

	fmt.Fprintln(w.out, "\nTeams:")
	tw = tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Team\tDrones\n")
	for _, t := range w.cfg.Teams {
		fmt.Fprintf(tw, "%s%s%s\t%d\n", w.colors.get(t.Name), t.Name, colorReset, t.Drones)
	}
	tw.Flush()
	fmt.Fprintln(w.out)
}

// Write outputs a single agent state row in colorized format.
func (w *ColorStdoutWriter) Write(row telemetry.AgentStateRow) error {
	w.once.Do(w.printOverview)
	w.mu.Lock()
	defer w.mu.Unlock()

	healthColor := colorGreen
	switch {
	case row.Status == telemetry.StatusDead:
		healthColor = colorGray
	case row.Health <= row.Threshold:
		healthColor = colorRed
	case row.Health < 1:
		healthColor = colorYellow
	}

	fmt.Fprintf(w.out, "%s[%05d]%s ", colorGray, row.Step, colorReset)
	fmt.Fprintf(w.out, "%s%s#%d%s ", w.colors.get(row.Team), row.Team, row.Ordinal, colorReset)
	fmt.Fprintf(w.out, "%srole=%s%s ", roleColor(row.Role), row.Role, colorReset)
	fmt.Fprintf(w.out, "%sstatus=%s%s ", colorCyan, row.Status, colorReset)
	fmt.Fprintf(w.out, "%spos=(%.0f,%.0f)%s ", colorGray, row.X, row.Y, colorReset)
	fmt.Fprintf(w.out, "%shp=%.2f%s ", healthColor, row.Health, colorReset)
	fmt.Fprintf(w.out, "%scargo=%.0f%s", colorYellow, row.Cargo, colorReset)
	if row.Target != "" {
		fmt.Fprintf(w.out, " %starget=%s%s", colorMagenta, row.Target, colorReset)
	}
	if row.Armed {
		fmt.Fprintf(w.out, " %sarmed%s", colorRed, colorReset)
	}
	fmt.Fprintln(w.out)
	return nil
}

// WriteBatch outputs multiple agent state rows.
func (w *ColorStdoutWriter) WriteBatch(rows []telemetry.AgentStateRow) error {
	for _, r := range rows {
		_ = w.Write(r)
	}
	return nil
}

// WriteRoleEvent prints a role transition.
func (w *ColorStdoutWriter) WriteRoleEvent(e telemetry.RoleEventRow) error {
	w.once.Do(w.printOverview)
	w.mu.Lock()
	defer w.mu.Unlock()

	fmt.Fprintf(w.out, "%s[%05d]%s %sROLE%s %s%s#%d%s %s -> %s%s%s",
		colorGray, e.Step, colorReset,
		colorMagenta, colorReset,
		w.colors.get(e.Team), e.Team, e.Ordinal, colorReset,
		e.From, roleColor(e.To), e.To, colorReset)
	if e.Resume != "" {
		fmt.Fprintf(w.out, " %s(resume %s)%s", colorGray, e.Resume, colorReset)
	}
	fmt.Fprintln(w.out)
	return nil
}

// WriteTeamState prints a team summary.
func (w *ColorStdoutWriter) WriteTeamState(row telemetry.TeamStateRow) error {
	w.once.Do(w.printOverview)
	w.mu.Lock()
	defer w.mu.Unlock()

	baseColor := colorGreen
	if !row.BaseAlive {
		baseColor = colorRed
	}
	fmt.Fprintf(w.out, "%s[%05d]%s %sTEAM%s %s%s%s alive=%d col=%d def=%d fwd=%d scv=%d heal=%d %sbase=%.2f payload=%.0f%s",
		colorGray, row.Step, colorReset,
		colorCyan, colorReset,
		w.colors.get(row.Team), row.Team, colorReset,
		row.Alive, row.Collectors, row.Defenders, row.Forwards, row.Scavengers, row.Healing,
		baseColor, row.BaseHealth, row.BasePayload, colorReset)
	if row.Focus != "" {
		fmt.Fprintf(w.out, " %sfocus=%s%s", colorRed, row.Focus, colorReset)
	}
	fmt.Fprintln(w.out)
	return nil
}
