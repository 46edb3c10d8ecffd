package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"dronetactics/internal/config"
	"dronetactics/internal/sim"
	"dronetactics/internal/telemetry"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.MatchID = "m1"
	cfg.Seed = 3
	cfg.Nodes.Count = 5
	cfg.Teams = []config.TeamConfig{{Name: "red", Drones: 2}, {Name: "blue", Drones: 3}}
	s, err := sim.NewSimulator(cfg.MatchID, cfg, nil, nil, 0, nil, nil)
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}
	s.RunSteps(context.Background(), 2)
	return NewServer(s, nil)
}

func TestHandleTeams(t *testing.T) {
	server := newTestServer(t)
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/teams", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var teams []telemetry.TeamStateRow
	if err := json.NewDecoder(w.Body).Decode(&teams); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(teams) != 2 || teams[1].Team != "blue" || teams[1].Alive != 3 {
		t.Fatalf("unexpected teams %+v", teams)
	}
}

func TestHandleRoster(t *testing.T) {
	server := newTestServer(t)
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/roster", nil))
	var rows []telemetry.AgentStateRow
	if err := json.NewDecoder(w.Body).Decode(&rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 5 || rows[0].Step != 2 {
		t.Fatalf("unexpected roster %+v", rows)
	}

	w = httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/roster?team=red", nil))
	rows = nil
	if err := json.NewDecoder(w.Body).Decode(&rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 red drones, got %d", len(rows))
	}
}

func TestHandleHealth(t *testing.T) {
	server := newTestServer(t)
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" || body["match_id"] != "m1" || body["step"] != float64(2) {
		t.Fatalf("unexpected health %v", body)
	}
}

func TestHandleIndex(t *testing.T) {
	server := newTestServer(t)
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if !strings.Contains(w.Body.String(), "Match m1") || !strings.Contains(w.Body.String(), "team-blue") {
		t.Fatalf("unexpected index page")
	}
	w = httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestWebsocketStreamsTeamStates(t *testing.T) {
	server := newTestServer(t)
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if server.Clients() != 1 {
		t.Fatalf("expected 1 client, got %d", server.Clients())
	}
	if err := server.WriteTeamStates([]telemetry.TeamStateRow{{Team: "red", Alive: 2}, {Team: "blue", Alive: 1}}); err != nil {
		t.Fatalf("WriteTeamStates: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for _, want := range []string{"red", "blue"} {
		var row telemetry.TeamStateRow
		if err := conn.ReadJSON(&row); err != nil {
			t.Fatalf("read: %v", err)
		}
		if row.Team != want {
			t.Fatalf("expected %s, got %+v", want, row)
		}
	}

	if err := server.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected close after shutdown")
	}
}

func TestWriteTeamStateWithoutClients(t *testing.T) {
	server := NewServer(nil, nil)
	if err := server.WriteTeamState(telemetry.TeamStateRow{Team: "red"}); err != nil {
		t.Fatalf("WriteTeamState: %v", err)
	}
}

func TestServerImplementsTeamStateWriter(t *testing.T) {
	var _ sim.TeamStateWriter = NewServer(nil, nil)
}
