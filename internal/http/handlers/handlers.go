package handlers

import (
	"encoding/json"
	"log/slog"
	nethttp "net/http"
	"strings"

	"futsal-sim-service/internal/app/match"
	"futsal-sim-service/internal/domain"
	"futsal-sim-service/internal/poller"
)

// Handler wires HTTP routes to the match service.
type Handler struct {
	svc      *match.Service
	stream   nethttp.Handler
	logger   *slog.Logger
	statusFn func() poller.Status
}

// NewHandler constructs a Handler. The stream handler serves the websocket
// subscribe endpoint and may be nil in tests that do not exercise it.
func NewHandler(svc *match.Service, stream nethttp.Handler, logger *slog.Logger, statusFn func() poller.Status) *Handler {
	return &Handler{
		svc:      svc,
		stream:   stream,
		logger:   logger,
		statusFn: statusFn,
	}
}

// ServeHTTP routes by path shape:
//
//	/health, /ready
//	/games                          POST create, GET list
//	/games/{id}                     GET snapshot
//	/games/{id}/join                POST
//	/games/{id}/ws                  GET websocket stream
//	/games/{id}/players/{pid}/{op}  POST move|pass|shoot|tackle
func (h *Handler) ServeHTTP(w nethttp.ResponseWriter, r *nethttp.Request) {
	switch r.URL.Path {
	case "/health":
		h.Health(w, r)
		return
	case "/ready":
		h.Ready(w, r)
		return
	case "/games":
		h.Games(w, r)
		return
	}

	if !strings.HasPrefix(r.URL.Path, "/games/") {
		writeError(w, r, nethttp.StatusNotFound, "not found", h.logger)
		return
	}

	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/games/"), "/"), "/")
	gameID := parts[0]
	if gameID == "" {
		writeError(w, r, nethttp.StatusBadRequest, "invalid game id", h.logger)
		return
	}

	switch {
	case len(parts) == 1:
		h.GameByID(w, r, gameID)
	case len(parts) == 2 && parts[1] == "join":
		h.Join(w, r, gameID)
	case len(parts) == 2 && parts[1] == "ws":
		h.Stream(w, r)
	case len(parts) == 4 && parts[1] == "players":
		h.playerAction(w, r, gameID, parts[2], parts[3])
	default:
		writeError(w, r, nethttp.StatusNotFound, "not found", h.logger)
	}
}

// Health reports the service health.
func (h *Handler) Health(w nethttp.ResponseWriter, r *nethttp.Request) {
	if r.Method != nethttp.MethodGet {
		writeError(w, r, nethttp.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}
	if err := r.Context().Err(); err != nil {
		writeError(w, r, nethttp.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Ready reports readiness for traffic (e.g., for Kubernetes probes).
func (h *Handler) Ready(w nethttp.ResponseWriter, r *nethttp.Request) {
	if r.Method != nethttp.MethodGet {
		writeError(w, r, nethttp.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}
	if h.statusFn == nil || h.statusFn().IsReady() {
		writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	msg := h.statusFn().LastError
	if msg == "" {
		msg = "not ready"
	}
	writeError(w, r, nethttp.StatusServiceUnavailable, msg, h.logger)
}

type createGameRequest struct {
	PlayerName     string `json:"playerName"`
	PlayersPerTeam int    `json:"playersPerTeam"`
	GoalsToWin     int    `json:"goalsToWin"`
}

// Games creates a match on POST and lists matches on GET.
func (h *Handler) Games(w nethttp.ResponseWriter, r *nethttp.Request) {
	switch r.Method {
	case nethttp.MethodPost:
		h.createGame(w, r)
	case nethttp.MethodGet:
		h.listGames(w, r)
	default:
		writeError(w, r, nethttp.StatusMethodNotAllowed, "method not allowed", h.logger)
	}
}

func (h *Handler) createGame(w nethttp.ResponseWriter, r *nethttp.Request) {
	var req createGameRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	res, err := h.svc.CreateGame(r.Context(), req.PlayerName, domain.MatchConfig{
		PlayersPerTeam: req.PlayersPerTeam,
		GoalsToWin:     req.GoalsToWin,
	})
	if err != nil {
		writeFailure(w, r, err, h.logger)
		return
	}

	logger := loggerFromContext(r, h.logger)
	if logger != nil {
		logger.Info("match created", "game_id", res.GameID)
	}
	writeJSON(w, nethttp.StatusCreated, res, h.logger)
}

type listResponse struct {
	Games []domain.Match `json:"games"`
}

func (h *Handler) listGames(w nethttp.ResponseWriter, r *nethttp.Request) {
	status, ok := parseStatus(r.URL.Query().Get("status"))
	if !ok {
		writeError(w, r, nethttp.StatusBadRequest, "unknown status filter", h.logger)
		return
	}
	limit := parseLimit(r.URL.Query().Get("limit"))

	games, err := h.svc.List(r.Context(), status, limit)
	if err != nil {
		writeFailure(w, r, err, h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, listResponse{Games: games}, h.logger)
}

// GameByID returns a caught-up snapshot of one match.
func (h *Handler) GameByID(w nethttp.ResponseWriter, r *nethttp.Request, gameID string) {
	if r.Method != nethttp.MethodGet {
		writeError(w, r, nethttp.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	m, err := h.svc.State(r.Context(), gameID)
	if err != nil {
		writeFailure(w, r, err, h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, m, h.logger)
}

type joinRequest struct {
	PlayerName string `json:"playerName"`
	Team       string `json:"team"`
	Role       string `json:"role"`
}

// Join adds a player to a Waiting match.
func (h *Handler) Join(w nethttp.ResponseWriter, r *nethttp.Request, gameID string) {
	if r.Method != nethttp.MethodPost {
		writeError(w, r, nethttp.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	var req joinRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	res, err := h.svc.JoinGame(r.Context(), gameID, req.PlayerName, domain.Team(req.Team), domain.Role(req.Role))
	if err != nil {
		writeFailure(w, r, err, h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, res, h.logger)
}

// Stream hands the request to the websocket subscribe handler.
func (h *Handler) Stream(w nethttp.ResponseWriter, r *nethttp.Request) {
	if h.stream == nil {
		writeError(w, r, nethttp.StatusNotFound, "streaming not enabled", h.logger)
		return
	}
	h.stream.ServeHTTP(w, r)
}

type moveRequest struct {
	TargetX float64  `json:"targetX"`
	TargetY float64  `json:"targetY"`
	Speed   *float64 `json:"speed"`
}

type passRequest struct {
	TargetPlayerID string   `json:"targetPlayerId"`
	Speed          *float64 `json:"speed"`
}

type shootRequest struct {
	Speed *float64 `json:"speed"`
}

type tackleRequest struct {
	TargetPlayerID string `json:"targetPlayerId"`
}

func (h *Handler) playerAction(w nethttp.ResponseWriter, r *nethttp.Request, gameID, playerID, op string) {
	if r.Method != nethttp.MethodPost {
		writeError(w, r, nethttp.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}
	if playerID == "" {
		writeError(w, r, nethttp.StatusBadRequest, "invalid player id", h.logger)
		return
	}

	var (
		res any
		err error
	)
	switch op {
	case "move":
		var req moveRequest
		if !decodeBody(w, r, &req, h.logger) {
			return
		}
		res, err = h.svc.MoveIntent(r.Context(), gameID, playerID, req.TargetX, req.TargetY, req.Speed)
	case "pass":
		var req passRequest
		if !decodeBody(w, r, &req, h.logger) {
			return
		}
		res, err = h.svc.Pass(r.Context(), gameID, playerID, req.TargetPlayerID, req.Speed)
	case "shoot":
		var req shootRequest
		if !decodeBody(w, r, &req, h.logger) {
			return
		}
		res, err = h.svc.Shoot(r.Context(), gameID, playerID, req.Speed)
	case "tackle":
		var req tackleRequest
		if !decodeBody(w, r, &req, h.logger) {
			return
		}
		res, err = h.svc.Tackle(r.Context(), gameID, playerID, req.TargetPlayerID)
	default:
		writeError(w, r, nethttp.StatusNotFound, "unknown action", h.logger)
		return
	}

	if err != nil {
		writeFailure(w, r, err, h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, res, h.logger)
}

func decodeBody(w nethttp.ResponseWriter, r *nethttp.Request, target any, logger *slog.Logger) bool {
	if r.Body == nil {
		writeError(w, r, nethttp.StatusBadRequest, "request body required", logger)
		return false
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		writeError(w, r, nethttp.StatusBadRequest, "invalid request body", logger)
		return false
	}
	return true
}

func parseStatus(raw string) (domain.Status, bool) {
	switch strings.ToUpper(raw) {
	case "":
		return "", true
	case string(domain.StatusWaiting):
		return domain.StatusWaiting, true
	case string(domain.StatusCountdown):
		return domain.StatusCountdown, true
	case string(domain.StatusPlaying):
		return domain.StatusPlaying, true
	case string(domain.StatusFinished):
		return domain.StatusFinished, true
	default:
		return "", false
	}
}

func parseLimit(raw string) int {
	if raw == "" {
		return 0
	}
	limit := 0
	for _, c := range raw {
		if c < '0' || c > '9' {
			return 0
		}
		limit = limit*10 + int(c-'0')
		if limit > 1000 {
			return 1000
		}
	}
	return limit
}
