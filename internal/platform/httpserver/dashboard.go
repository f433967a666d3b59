package httpserver

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	sessionerrors "jornada/contexts/strategy-journey/session-service/domain/errors"
)

// dashboardAccess gates meeting dashboards, which expose every participant's
// confession text. Operators present the configured bearer token; participants
// may read the dashboard of the meeting their session belongs to.
type dashboardAccess struct {
	token string
}

func (d dashboardAccess) operator(r *http.Request) bool {
	if d.token == "" {
		return false
	}
	presented, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(presented)), []byte(d.token)) == 1
}

func (s *Server) withDashboardAccess(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.dashboard.operator(r) {
			next(w, r)
			return
		}
		session, err := s.sessions.Handler.ValidateSessionHandler(r.Context(), presentedSessionID(r))
		if err != nil {
			if errors.Is(err, sessionerrors.ErrSessionNotFound) {
				writeError(w, http.StatusUnauthorized, "session_invalid", "session or operator token required")
				return
			}
			s.writeDomainError(w, r, err)
			return
		}
		if session.MeetingID != strings.TrimSpace(r.PathValue("meeting_id")) {
			s.logger.Warn("dashboard access denied",
				"event", "dashboard_access_denied",
				"module", "internal/platform/httpserver",
				"layer", "platform",
				"session_id", session.SessionID,
				"meeting_id", r.PathValue("meeting_id"),
			)
			writeError(w, http.StatusForbidden, "dashboard_forbidden", "session belongs to another meeting")
			return
		}
		next(w, r)
	}
}
