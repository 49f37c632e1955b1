package stream

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"futsal-sim-service/internal/domain"
	"futsal-sim-service/internal/logging"
	"futsal-sim-service/internal/metrics"
)

const (
	writeWait = 5 * time.Second

	// finishedGrace keeps the stream open briefly after the match ends so
	// subscribers see the final snapshot before the close frame.
	finishedGrace = 2 * time.Second
)

// StateSource produces caught-up match snapshots. Every emission re-runs the
// driver's read path, so streamed worlds are never stale.
type StateSource interface {
	State(ctx context.Context, gameID string) (domain.Match, error)
}

// Streamer serves GET /games/{id}/ws: upgrade, send one snapshot
// immediately, then resend on a fixed interval until the session budget runs
// out or the match finishes. Clients are expected to re-subscribe when the
// budget closes the session.
type Streamer struct {
	source        StateSource
	logger        *slog.Logger
	metrics       *metrics.Recorder
	interval      time.Duration
	sessionBudget time.Duration
	upgrader      websocket.Upgrader
}

// New constructs a Streamer.
func New(source StateSource, logger *slog.Logger, recorder *metrics.Recorder, interval, sessionBudget time.Duration) *Streamer {
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	if sessionBudget <= 0 {
		sessionBudget = 30 * time.Second
	}
	return &Streamer{
		source:        source,
		logger:        logger,
		metrics:       recorder,
		interval:      interval,
		sessionBudget: sessionBudget,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (s *Streamer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	gameID := gameIDFromPath(r.URL.Path)
	if gameID == "" {
		http.Error(w, "missing game id", http.StatusBadRequest)
		return
	}

	// Resolve the first snapshot before upgrading so an unknown game gets a
	// plain HTTP error instead of an immediate close frame.
	first, err := s.source.State(r.Context(), gameID)
	if err != nil {
		status := http.StatusBadGateway
		if f, ok := domain.AsFailure(err); ok && f.Kind == domain.FailureNotFound {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn(s.logger, "websocket upgrade failed",
			slog.String(logging.FieldGameID, gameID),
			slog.String("error", err.Error()),
		)
		return
	}

	start := time.Now()
	defer func() {
		conn.Close()
		s.metrics.RecordStreamSession(time.Since(start))
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Drain reads so client close frames surface promptly.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	if !s.send(conn, first) {
		return
	}
	s.loop(ctx, conn, gameID, first.Status == domain.StatusFinished)
}

func (s *Streamer) loop(ctx context.Context, conn *websocket.Conn, gameID string, finished bool) {
	budget := time.NewTimer(s.sessionBudget)
	defer budget.Stop()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	var grace <-chan time.Time
	if finished {
		grace = time.After(finishedGrace)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-budget.C:
			s.close(conn, "session budget exhausted")
			return
		case <-grace:
			s.close(conn, "match finished")
			return
		case <-ticker.C:
			m, err := s.source.State(ctx, gameID)
			if err != nil {
				logging.Warn(s.logger, "stream snapshot failed",
					slog.String(logging.FieldGameID, gameID),
					slog.String("error", err.Error()),
				)
				s.close(conn, "snapshot unavailable")
				return
			}
			if !s.send(conn, m) {
				return
			}
			if grace == nil && m.Status == domain.StatusFinished {
				grace = time.After(finishedGrace)
			}
		}
	}
}

func (s *Streamer) send(conn *websocket.Conn, m domain.Match) bool {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(m); err != nil {
		logging.Debug(s.logger, "stream write failed",
			slog.String(logging.FieldGameID, m.ID),
			slog.String("error", err.Error()),
		)
		return false
	}
	return true
}

func (s *Streamer) close(conn *websocket.Conn, reason string) {
	message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.CloseMessage, message)
}

// gameIDFromPath extracts {id} from /games/{id}/ws.
func gameIDFromPath(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 || parts[0] != "games" || parts[2] != "ws" {
		return ""
	}
	return parts[1]
}
