package sim

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	"dronetactics/internal/telemetry"
)

// ZstdSuffix marks log paths that are written and read zstd-compressed.
const ZstdSuffix = ".zst"

// logFile is one JSONL output, optionally compressed.
type logFile struct {
	file *os.File
	zw   *zstd.Encoder
	enc  *json.Encoder
}

func createLog(path string) (*logFile, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	lf := &logFile{file: f}
	var w io.Writer = f
	if strings.HasSuffix(path, ZstdSuffix) {
		zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
		if err != nil {
			f.Close()
			return nil, err
		}
		lf.zw = zw
		w = zw
	}
	lf.enc = json.NewEncoder(w)
	return lf, nil
}

func (l *logFile) close() error {
	if l == nil {
		return nil
	}
	var err error
	if l.zw != nil {
		err = l.zw.Close()
	}
	if e := l.file.Close(); e != nil && err == nil {
		err = e
	}
	return err
}

// FileWriter writes match rows to JSONL files. Paths ending in .zst are
// zstd-compressed.
type FileWriter struct {
	agents *logFile
	roles  *logFile
	teams  *logFile
}

// NewFileWriter creates a FileWriter. rolePath or teamPath may be empty to skip those logs.
func NewFileWriter(agentPath, rolePath, teamPath string) (*FileWriter, error) {
	af, err := createLog(agentPath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{agents: af}
	if rolePath != "" {
		if fw.roles, err = createLog(rolePath); err != nil {
			fw.Close()
			return nil, err
		}
	}
	if teamPath != "" {
		if fw.teams, err = createLog(teamPath); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return fw, nil
}

// Write logs a single agent state row.
func (f *FileWriter) Write(row telemetry.AgentStateRow) error {
	return f.agents.enc.Encode(row)
}

// WriteBatch logs multiple agent state rows.
func (f *FileWriter) WriteBatch(rows []telemetry.AgentStateRow) error {
	for _, r := range rows {
		if err := f.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteRoleEvent logs a role transition, if enabled.
func (f *FileWriter) WriteRoleEvent(e telemetry.RoleEventRow) error {
	if f.roles == nil {
		return nil
	}
	return f.roles.enc.Encode(e)
}

// WriteRoleEvents logs multiple role transitions.
func (f *FileWriter) WriteRoleEvents(rows []telemetry.RoleEventRow) error {
	for _, r := range rows {
		if err := f.WriteRoleEvent(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteTeamState logs a team summary, if enabled.
func (f *FileWriter) WriteTeamState(row telemetry.TeamStateRow) error {
	if f.teams == nil {
		return nil
	}
	return f.teams.enc.Encode(row)
}

// WriteTeamStates logs multiple team summaries.
func (f *FileWriter) WriteTeamStates(rows []telemetry.TeamStateRow) error {
	for _, r := range rows {
		if err := f.WriteTeamState(r); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes compressed streams and closes any underlying files.
func (f *FileWriter) Close() error {
	var err error
	for _, l := range []*logFile{f.agents, f.roles, f.teams} {
		if e := l.close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
