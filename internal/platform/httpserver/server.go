package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	catalogservice "jornada/contexts/strategy-journey/catalog-service"
	catalogerrors "jornada/contexts/strategy-journey/catalog-service/domain/errors"
	rankingengine "jornada/contexts/strategy-journey/ranking-engine"
	rankingerrors "jornada/contexts/strategy-journey/ranking-engine/domain/errors"
	sessionservice "jornada/contexts/strategy-journey/session-service"
	sessionerrors "jornada/contexts/strategy-journey/session-service/domain/errors"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "jornada/internal/platform/httpserver/docs"
)

const maxRequestBody = 1 << 20

type Options struct {
	Addr              string
	CookieTTL         time.Duration
	CookieSecure      bool
	JoinRatePerMinute int
	TrustedProxies    []netip.Prefix
	DashboardToken    string
	Logger            *slog.Logger
}

type Server struct {
	mux       *http.ServeMux
	http      *http.Server
	logger    *slog.Logger
	addr      string
	sessions  sessionservice.Module
	catalog   catalogservice.Module
	rankings  rankingengine.Module
	cookies   cookiePolicy
	joins     *joinLimiter
	clientIPs clientIPResolver
	dashboard dashboardAccess
}

func New(
	sessions sessionservice.Module,
	catalog catalogservice.Module,
	rankings rankingengine.Module,
	opts Options,
) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	addr := opts.Addr
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:       http.NewServeMux(),
		logger:    logger,
		addr:      addr,
		sessions:  sessions,
		catalog:   catalog,
		rankings:  rankings,
		cookies:   newCookiePolicy(opts.CookieTTL, opts.CookieSecure),
		joins:     newJoinLimiter(opts.JoinRatePerMinute),
		clientIPs: clientIPResolver{trusted: opts.TrustedProxies},
		dashboard: dashboardAccess{token: opts.DashboardToken},
	}
	s.registerRoutes()
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler exposes the routed mux for embedding and tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server stopping",
		"event", "http_server_stopping",
		"module", "internal/platform/httpserver",
		"layer", "platform",
	)
	return s.http.Shutdown(ctx)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /v1/sessions", s.handleJoinSession)
	s.mux.HandleFunc("GET /v1/sessions/current", s.withSession(s.handleCurrentSession))
	s.mux.HandleFunc("DELETE /v1/sessions/current", s.handleLeaveSession)

	s.mux.HandleFunc("GET /v1/pillars", s.withSession(s.handleListPillars))
	s.mux.HandleFunc("GET /v1/pillars/{pillar_id}", s.withSession(s.handleGetPillar))
	s.mux.HandleFunc("GET /v1/pillars/{pillar_id}/actions", s.withSession(s.handleListActions))
	s.mux.HandleFunc("GET /v1/pillars/{pillar_id}/status", s.withSession(s.handlePillarStatus))
	s.mux.HandleFunc("POST /v1/pillars/{pillar_id}/confessional", s.withSession(s.handleSaveConfessional))

	s.mux.HandleFunc("GET /v1/rankings/{pillar_id}", s.withSession(s.handleGetRanking))
	s.mux.HandleFunc("POST /v1/rankings/{pillar_id}/operations", s.withSession(s.handleApplyOperation))
	s.mux.HandleFunc("POST /v1/rankings/{pillar_id}/gestures", s.withSession(s.handleApplyGesture))
	s.mux.HandleFunc("POST /v1/rankings/{pillar_id}/slot-picks", s.withSession(s.handleApplySlotPick))
	s.mux.HandleFunc("POST /v1/rankings/{pillar_id}/finalize", s.withSession(s.handleFinalizeRanking))

	s.mux.HandleFunc("GET /v1/achievement", s.withSession(s.handleGetAchievement))
	s.mux.HandleFunc("GET /v1/achievements/{share_code}", s.handleSharedAchievement)
	s.mux.HandleFunc("GET /v1/meetings/{meeting_id}/dashboard", s.withDashboardAccess(s.handleMeetingDashboard))
}

// decodeJSON reads a bounded JSON body and reports malformed input as 400.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, target any) bool {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return false
	}
	return true
}

func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classifyError(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			"event", "http_request_failed",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err.Error(),
		)
		writeError(w, status, code, "internal server error")
		return
	}
	writeError(w, status, code, err.Error())
}

func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, sessionerrors.ErrSessionNotFound):
		return http.StatusUnauthorized, "session_invalid"
	case errors.Is(err, sessionerrors.ErrInvalidMeetingCode):
		return http.StatusNotFound, "invalid_meeting_code"
	case errors.Is(err, sessionerrors.ErrInvalidSessionInput):
		return http.StatusBadRequest, "invalid_session_input"
	case errors.Is(err, sessionerrors.ErrMeetingNotFound),
		errors.Is(err, rankingerrors.ErrMeetingNotFound):
		return http.StatusNotFound, "meeting_not_found"
	case errors.Is(err, catalogerrors.ErrPillarNotFound),
		errors.Is(err, rankingerrors.ErrPillarNotFound):
		return http.StatusNotFound, "pillar_not_found"
	case errors.Is(err, rankingerrors.ErrActionNotFound):
		return http.StatusNotFound, "action_not_found"
	case errors.Is(err, rankingerrors.ErrAchievementNotFound):
		return http.StatusNotFound, "achievement_not_found"
	case errors.Is(err, rankingerrors.ErrSessionNotFound):
		return http.StatusNotFound, "session_not_found"
	case errors.Is(err, rankingerrors.ErrRankingFrozen):
		return http.StatusConflict, "ranking_frozen"
	case errors.Is(err, rankingerrors.ErrDraftConflict):
		return http.StatusConflict, "draft_conflict"
	case errors.Is(err, rankingerrors.ErrConflict),
		errors.Is(err, rankingerrors.ErrIdempotencyConflict),
		errors.Is(err, sessionerrors.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, rankingerrors.ErrRankingIncomplete):
		return http.StatusUnprocessableEntity, "ranking_incomplete"
	case errors.Is(err, rankingerrors.ErrPickerNotOpen):
		return http.StatusUnprocessableEntity, "picker_not_open"
	case errors.Is(err, rankingerrors.ErrNoTargetSelected):
		return http.StatusUnprocessableEntity, "no_target_selected"
	case errors.Is(err, rankingerrors.ErrPillarNotCompleted):
		return http.StatusUnprocessableEntity, "pillar_not_completed"
	case errors.Is(err, rankingerrors.ErrInvalidPosition),
		errors.Is(err, rankingerrors.ErrInvalidGesture),
		errors.Is(err, rankingerrors.ErrUnknownOperation),
		errors.Is(err, rankingerrors.ErrInvalidRankingInput),
		errors.Is(err, rankingerrors.ErrInvalidCatalog),
		errors.Is(err, catalogerrors.ErrInvalidCatalog),
		errors.Is(err, catalogerrors.ErrInvalidSessionID):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, rankingerrors.ErrInvalidConfessional):
		return http.StatusBadRequest, "invalid_confessional"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
