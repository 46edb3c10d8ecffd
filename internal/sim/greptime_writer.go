package sim

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"dronetactics/internal/telemetry"
)

const (
	defaultGreptimePort = 4001
	greptimeTimeout     = 5 * time.Second
)

// greptimeClient is the subset of the ingester client the writer needs.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter writes match rows to GreptimeDB via the ingester client.
// Tables are created on first write.
type GreptimeDBWriter struct {
	client     greptimeClient
	agentTable string
	roleTable  string
	teamTable  string
}

// NewGreptimeDBWriter connects to endpoint ("host" or "host:port").
func NewGreptimeDBWriter(endpoint, database string) (*GreptimeDBWriter, error) {
	host, port, err := splitEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	cfg := greptime.NewConfig(host).WithPort(port).WithDatabase(database)
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("greptime client: %w", err)
	}
	return &GreptimeDBWriter{
		client:     client,
		agentTable: telemetry.AgentStateTableName,
		roleTable:  telemetry.RoleEventTableName,
		teamTable:  telemetry.TeamStateTableName,
	}, nil
}

func splitEndpoint(endpoint string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(endpoint)
	if err != nil {
		// No port given.
		return endpoint, defaultGreptimePort, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid greptime port %q: %w", portStr, err)
	}
	return host, port, nil
}

type column struct {
	name string
	typ  types.ColumnType
}

// newTable declares string tags, the given fields and a millisecond "ts" time index.
func newTable(name string, tags []string, fields []column) (*table.Table, error) {
	tbl, err := table.New(name)
	if err != nil {
		return nil, err
	}
	for _, t := range tags {
		if err := tbl.AddTagColumn(t, types.STRING); err != nil {
			return nil, err
		}
	}
	for _, f := range fields {
		if err := tbl.AddFieldColumn(f.name, f.typ); err != nil {
			return nil, err
		}
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return nil, err
	}
	return tbl, nil
}

func (w *GreptimeDBWriter) write(name string, tbl *table.Table) error {
	ctx, cancel := context.WithTimeout(context.Background(), greptimeTimeout)
	defer cancel()
	if _, err := w.client.Write(ctx, tbl); err != nil {
		return fmt.Errorf("greptime write %s: %w", name, err)
	}
	return nil
}

// Write inserts a single agent state row.
func (w *GreptimeDBWriter) Write(row telemetry.AgentStateRow) error {
	return w.WriteBatch([]telemetry.AgentStateRow{row})
}

// WriteBatch inserts multiple agent state rows.
func (w *GreptimeDBWriter) WriteBatch(rows []telemetry.AgentStateRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := newTable(w.agentTable,
		[]string{"match_id", "team", "drone_id"},
		[]column{
			{"ordinal", types.INT64},
			{"step", types.INT64},
			{"role", types.STRING},
			{"status", types.STRING},
			{"x", types.FLOAT64},
			{"y", types.FLOAT64},
			{"heading", types.FLOAT64},
			{"health", types.FLOAT64},
			{"threshold", types.FLOAT64},
			{"cargo", types.FLOAT64},
			{"armed", types.BOOLEAN},
			{"target", types.STRING},
		})
	if err != nil {
		return err
	}
	for _, r := range rows {
		if err := tbl.AddRow(
			r.MatchID, r.Team, r.DroneID,
			int64(r.Ordinal), int64(r.Step), r.Role, r.Status,
			r.X, r.Y, r.Heading, r.Health, r.Threshold, r.Cargo,
			r.Armed, r.Target,
			r.Timestamp,
		); err != nil {
			return err
		}
	}
	return w.write(w.agentTable, tbl)
}

// WriteRoleEvent inserts a single role transition.
func (w *GreptimeDBWriter) WriteRoleEvent(e telemetry.RoleEventRow) error {
	return w.WriteRoleEvents([]telemetry.RoleEventRow{e})
}

// WriteRoleEvents inserts multiple role transitions.
func (w *GreptimeDBWriter) WriteRoleEvents(rows []telemetry.RoleEventRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := newTable(w.roleTable,
		[]string{"match_id", "team", "drone_id"},
		[]column{
			{"ordinal", types.INT64},
			{"step", types.INT64},
			{"from_role", types.STRING},
			{"to_role", types.STRING},
			{"resume_role", types.STRING},
		})
	if err != nil {
		return err
	}
	for _, r := range rows {
		if err := tbl.AddRow(
			r.MatchID, r.Team, r.DroneID,
			int64(r.Ordinal), int64(r.Step), r.From, r.To, r.Resume,
			r.Timestamp,
		); err != nil {
			return err
		}
	}
	return w.write(w.roleTable, tbl)
}

// WriteTeamState inserts a single team summary.
func (w *GreptimeDBWriter) WriteTeamState(row telemetry.TeamStateRow) error {
	return w.WriteTeamStates([]telemetry.TeamStateRow{row})
}

// WriteTeamStates inserts multiple team summaries.
func (w *GreptimeDBWriter) WriteTeamStates(rows []telemetry.TeamStateRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := newTable(w.teamTable,
		[]string{"match_id", "team"},
		[]column{
			{"step", types.INT64},
			{"alive", types.INT64},
			{"collectors", types.INT64},
			{"defenders", types.INT64},
			{"forwards", types.INT64},
			{"scavengers", types.INT64},
			{"healing", types.INT64},
			{"base_health", types.FLOAT64},
			{"base_alive", types.BOOLEAN},
			{"base_payload", types.FLOAT64},
			{"focus", types.STRING},
			{"reassigned", types.BOOLEAN},
		})
	if err != nil {
		return err
	}
	for _, r := range rows {
		if err := tbl.AddRow(
			r.MatchID, r.Team,
			int64(r.Step), int64(r.Alive), int64(r.Collectors), int64(r.Defenders),
			int64(r.Forwards), int64(r.Scavengers), int64(r.Healing),
			r.BaseHealth, r.BaseAlive, r.BasePayload, r.Focus, r.Reassigned,
			r.Timestamp,
		); err != nil {
			return err
		}
	}
	return w.write(w.teamTable, tbl)
}
