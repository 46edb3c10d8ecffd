package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"dronetactics/internal/telemetry"
)

// JSONStdoutWriter prints match rows as JSON lines to STDOUT.
type JSONStdoutWriter struct {
	out io.Writer
}

// NewJSONStdoutWriter creates a JSONStdoutWriter writing to os.Stdout.
func NewJSONStdoutWriter() *JSONStdoutWriter {
	return &JSONStdoutWriter{out: os.Stdout}
}

func (w *JSONStdoutWriter) emit(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w.out, string(data))
	return err
}

// Write outputs an agent state row in JSON format.
func (w *JSONStdoutWriter) Write(row telemetry.AgentStateRow) error {
	return w.emit(row)
}

// WriteBatch outputs multiple agent state rows in JSON format.
func (w *JSONStdoutWriter) WriteBatch(rows []telemetry.AgentStateRow) error {
	for _, r := range rows {
		if err := w.emit(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteRoleEvent outputs a role transition in JSON format.
func (w *JSONStdoutWriter) WriteRoleEvent(e telemetry.RoleEventRow) error {
	return w.emit(e)
}

// WriteTeamState outputs a team summary in JSON format.
func (w *JSONStdoutWriter) WriteTeamState(row telemetry.TeamStateRow) error {
	return w.emit(row)
}
