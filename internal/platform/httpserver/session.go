package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	sessionerrors "jornada/contexts/strategy-journey/session-service/domain/errors"
	sessionhttp "jornada/contexts/strategy-journey/session-service/transport/http"
)

const (
	sessionCookieName   = "session_id"
	sessionHeaderName   = "X-Session-Id"
	defaultCookieMaxAge = 24 * time.Hour
)

type sessionContextKey struct{}

type cookiePolicy struct {
	ttl    time.Duration
	secure bool
}

func newCookiePolicy(ttl time.Duration, secure bool) cookiePolicy {
	if ttl <= 0 {
		ttl = defaultCookieMaxAge
	}
	return cookiePolicy{ttl: ttl, secure: secure}
}

func (p cookiePolicy) issue(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(p.ttl.Seconds()),
		HttpOnly: true,
		Secure:   p.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (p cookiePolicy) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   p.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// presentedSessionID prefers the cookie and falls back to the header.
func presentedSessionID(r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if value := strings.TrimSpace(cookie.Value); value != "" {
			return value
		}
	}
	return strings.TrimSpace(r.Header.Get(sessionHeaderName))
}

func sessionFromContext(ctx context.Context) sessionhttp.ValidateSessionResponse {
	session, _ := ctx.Value(sessionContextKey{}).(sessionhttp.ValidateSessionResponse)
	return session
}

// withSession resolves the caller's session before running next. Unknown or
// missing sessions get 401 and a cleared cookie.
func (s *Server) withSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := s.sessions.Handler.ValidateSessionHandler(r.Context(), presentedSessionID(r))
		if err != nil {
			if errors.Is(err, sessionerrors.ErrSessionNotFound) {
				s.cookies.clear(w)
				writeError(w, http.StatusUnauthorized, "session_invalid", "session is missing or expired")
				return
			}
			s.writeDomainError(w, r, err)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), sessionContextKey{}, session)))
	}
}

func (s *Server) handleJoinSession(w http.ResponseWriter, r *http.Request) {
	clientIP := s.clientIPs.resolve(r)
	if !s.joins.allow(clientIP) {
		s.logger.Warn("join rate limited",
			"event", "session_join_rate_limited",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"client_ip", clientIP,
		)
		w.Header().Set("Retry-After", "60")
		writeError(w, http.StatusTooManyRequests, "rate_limited", "too many join attempts")
		return
	}

	var req sessionhttp.JoinSessionRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.sessions.Handler.JoinSessionHandler(r.Context(), req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.cookies.issue(w, resp.SessionID)
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleCurrentSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionFromContext(r.Context()))
}

func (s *Server) handleLeaveSession(w http.ResponseWriter, _ *http.Request) {
	s.cookies.clear(w)
	w.WriteHeader(http.StatusNoContent)
}
