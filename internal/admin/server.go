package admin

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"dronetactics/internal/sim"
	"dronetactics/internal/telemetry"
)

const (
	clientBuffer = 64
	writeTimeout = 5 * time.Second
)

// Server exposes read-only match state over HTTP and streams team
// summaries to websocket clients.
type Server struct {
	Sim *sim.Simulator
	tpl *template.Template
	log *slog.Logger

	upgrader websocket.Upgrader
	mu       sync.Mutex
	clients  map[chan []byte]struct{}
	srv      *http.Server
}

//go:embed templates/index.html
var content embed.FS

func NewServer(s *sim.Simulator, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	tpl := template.Must(template.New("index.html").ParseFS(content, "templates/index.html"))
	return &Server{
		Sim:     s,
		tpl:     tpl,
		log:     logger.With("component", "admin"),
		clients: make(map[chan []byte]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns the admin routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/roster", s.handleRoster)
	mux.HandleFunc("/teams", s.handleTeams)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.mu.Lock()
	s.srv = &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	srv := s.srv
	s.mu.Unlock()
	s.log.Info("admin server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the listener and disconnects websocket clients.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	for ch := range s.clients {
		close(ch)
		delete(s.clients, ch)
	}
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// WriteTeamState pushes a team summary to every websocket client. Slow
// clients drop rows rather than stall the match.
func (s *Server) WriteTeamState(row telemetry.TeamStateRow) error {
	b, err := json.Marshal(row)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.clients {
		select {
		case ch <- b:
		default:
		}
	}
	return nil
}

// WriteTeamStates pushes multiple team summaries.
func (s *Server) WriteTeamStates(rows []telemetry.TeamStateRow) error {
	for _, r := range rows {
		if err := s.WriteTeamState(r); err != nil {
			return err
		}
	}
	return nil
}

// Clients returns the number of connected websocket clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)
	s.mu.Lock()
	s.clients[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

func (s *Server) unsubscribe(ch chan []byte) {
	s.mu.Lock()
	if _, ok := s.clients[ch]; ok {
		delete(s.clients, ch)
		close(ch)
	}
	s.mu.Unlock()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	data := struct {
		MatchID  string
		Step     int
		Finished bool
		Winner   string
		Teams    []telemetry.TeamStateRow
	}{
		MatchID:  s.Sim.MatchID(),
		Step:     s.Sim.StepCount(),
		Finished: s.Sim.Finished(),
		Winner:   s.Sim.Winner(),
		Teams:    s.Sim.Teams(),
	}
	if err := s.tpl.Execute(w, data); err != nil {
		s.log.Error("render index", "err", err)
	}
}

func (s *Server) handleRoster(w http.ResponseWriter, r *http.Request) {
	rows := s.Sim.Roster()
	if team := r.URL.Query().Get("team"); team != "" {
		filtered := rows[:0]
		for _, row := range rows {
			if row.Team == team {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}
	writeJSON(w, rows)
}

func (s *Server) handleTeams(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Teams())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":   "ok",
		"match_id": s.Sim.MatchID(),
		"step":     s.Sim.StepCount(),
		"finished": s.Sim.Finished(),
		"winner":   s.Sim.Winner(),
		"clients":  s.Clients(),
	})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	// Subscribe before the handshake completes so rows written right after
	// the client connects are not lost.
	ch := s.subscribe()
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.unsubscribe(ch)
		return
	}
	defer conn.Close()
	defer s.unsubscribe(ch)
	s.log.Debug("websocket client connected", "remote", r.RemoteAddr)

	// The reader only notices the client going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case b, ok := <-ch:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutdown"),
					time.Now().Add(time.Second))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		}
	}
}
