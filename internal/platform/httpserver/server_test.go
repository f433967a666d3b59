package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"testing"
	"time"

	catalogservice "jornada/contexts/strategy-journey/catalog-service"
	catalogentities "jornada/contexts/strategy-journey/catalog-service/domain/entities"
	rankingengine "jornada/contexts/strategy-journey/ranking-engine"
	rankingmemory "jornada/contexts/strategy-journey/ranking-engine/adapters/memory"
	rankingentities "jornada/contexts/strategy-journey/ranking-engine/domain/entities"
	rankingports "jornada/contexts/strategy-journey/ranking-engine/ports"
	sessionservice "jornada/contexts/strategy-journey/session-service"
	sessionentities "jornada/contexts/strategy-journey/session-service/domain/entities"
)

type mirrorSessions struct {
	store *rankingmemory.Store
}

func (m mirrorSessions) SessionJoined(_ context.Context, session sessionentities.Session) {
	m.store.SetSession(rankingports.SessionProjection{
		SessionID: session.SessionID,
		MeetingID: session.MeetingID,
		Nickname:  session.Nickname,
	})
}

func newTestServer(opts Options) *Server {
	rankings := rankingengine.NewInMemoryModule(rankingmemory.Seed{
		Pillars: []rankingports.PillarProjection{{PillarID: "pillar-1", Name: "Growth"}},
		Actions: []rankingentities.Action{
			{ActionID: "a1", PillarID: "pillar-1", Title: "Alpha"},
			{ActionID: "a2", PillarID: "pillar-1", Title: "Beta"},
		},
		Meetings: []rankingports.MeetingProjection{{MeetingID: "meeting-1", Title: "Kickoff"}},
	}, nil)
	catalog := catalogservice.NewInMemoryModule(
		[]catalogentities.Pillar{{PillarID: "pillar-1", Name: "Growth"}},
		[]catalogentities.Action{
			{ActionID: "a1", PillarID: "pillar-1", Title: "Alpha"},
			{ActionID: "a2", PillarID: "pillar-1", Title: "Beta"},
		},
		nil,
	)
	sessions := sessionservice.NewInMemoryModule(
		[]sessionentities.MeetingCode{{CodeID: "code-1", MeetingID: "meeting-1", Code: "ABC123", IsActive: true}},
		mirrorSessions{store: rankings.Store},
		nil,
	)
	return New(sessions, catalog, rankings, opts)
}

func doRequest(t *testing.T, server *Server, method string, path string, body string, sessionID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: sessionID})
	}
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)
	return rr
}

func joinSession(t *testing.T, server *Server) string {
	t.Helper()
	rr := doRequest(t, server, http.MethodPost, "/v1/sessions", `{"code":"abc123","nickname":"ana"}`, "")
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	var resp struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode join response: %v", err)
	}
	return resp.SessionID
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp errorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v body=%s", err, rr.Body.String())
	}
	return resp.Code
}

func TestJoinSessionIssuesCookie(t *testing.T) {
	server := newTestServer(Options{})

	rr := doRequest(t, server, http.MethodPost, "/v1/sessions", `{"code":"abc123","nickname":"ana"}`, "")
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != sessionCookieName || !cookies[0].HttpOnly {
		t.Fatalf("expected httpOnly session cookie, got %+v", cookies)
	}
	if cookies[0].MaxAge != int(defaultCookieMaxAge.Seconds()) {
		t.Fatalf("expected 24h cookie, got max-age %d", cookies[0].MaxAge)
	}

	current := doRequest(t, server, http.MethodGet, "/v1/sessions/current", "", cookies[0].Value)
	if current.Code != http.StatusOK || !strings.Contains(current.Body.String(), `"nickname":"ana"`) {
		t.Fatalf("expected current session, got %d body=%s", current.Code, current.Body.String())
	}
}

func TestSessionHeaderIsAccepted(t *testing.T) {
	server := newTestServer(Options{})
	sessionID := joinSession(t, server)

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/current", nil)
	req.Header.Set(sessionHeaderName, sessionID)
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestInvalidSessionIsRejectedAndCookieCleared(t *testing.T) {
	server := newTestServer(Options{})

	rr := doRequest(t, server, http.MethodGet, "/v1/rankings/pillar-1", "", "unknown-session")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
	if code := errorCode(t, rr); code != "session_invalid" {
		t.Fatalf("expected session_invalid, got %s", code)
	}
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Fatalf("expected cleared cookie, got %+v", cookies)
	}

	missing := doRequest(t, server, http.MethodGet, "/v1/achievement", "", "")
	if missing.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", missing.Code)
	}
}

func TestJoinSessionRejectsUnknownCode(t *testing.T) {
	server := newTestServer(Options{})

	rr := doRequest(t, server, http.MethodPost, "/v1/sessions", `{"code":"nope","nickname":"ana"}`, "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
	if code := errorCode(t, rr); code != "invalid_meeting_code" {
		t.Fatalf("expected invalid_meeting_code, got %s", code)
	}

	malformed := doRequest(t, server, http.MethodPost, "/v1/sessions", `{"code":`, "")
	if malformed.Code != http.StatusBadRequest || errorCode(t, malformed) != "invalid_json" {
		t.Fatalf("expected invalid_json, got %d body=%s", malformed.Code, malformed.Body.String())
	}
}

func TestJoinSessionIsRateLimitedPerClient(t *testing.T) {
	server := newTestServer(Options{
		JoinRatePerMinute: 2,
		TrustedProxies:    []netip.Prefix{netip.MustParsePrefix("192.0.2.0/24")},
	})

	for i := 0; i < 2; i++ {
		rr := doRequest(t, server, http.MethodPost, "/v1/sessions", `{"code":"ABC123","nickname":"ana"}`, "")
		if rr.Code != http.StatusCreated {
			t.Fatalf("expected 201 on attempt %d, got %d", i, rr.Code)
		}
	}
	limited := doRequest(t, server, http.MethodPost, "/v1/sessions", `{"code":"ABC123","nickname":"ana"}`, "")
	if limited.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", limited.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", strings.NewReader(`{"code":"ABC123","nickname":"bia"}`))
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected other client to pass, got %d", rr.Code)
	}
}

func TestJoinRateLimitIgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	server := newTestServer(Options{JoinRatePerMinute: 1})

	first := doRequest(t, server, http.MethodPost, "/v1/sessions", `{"code":"ABC123","nickname":"ana"}`, "")
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", first.Code)
	}
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", strings.NewReader(`{"code":"ABC123","nickname":"ana"}`))
	req.Header.Set("X-Forwarded-For", "198.51.100.77")
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected forged X-Forwarded-For to stay limited, got %d", rr.Code)
	}
}

func TestClientIPResolver(t *testing.T) {
	resolver := clientIPResolver{trusted: []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.0.2.1/32"),
	}}
	cases := []struct {
		name      string
		remote    string
		forwarded string
		want      string
	}{
		{name: "untrusted peer", remote: "198.51.100.5:4000", forwarded: "203.0.113.9", want: "198.51.100.5"},
		{name: "trusted peer", remote: "192.0.2.1:4000", forwarded: "203.0.113.9", want: "203.0.113.9"},
		{name: "client spoofs leftmost hop", remote: "192.0.2.1:4000", forwarded: "1.2.3.4, 203.0.113.9, 10.1.1.1", want: "203.0.113.9"},
		{name: "malformed hop", remote: "192.0.2.1:4000", forwarded: "garbage", want: "192.0.2.1"},
		{name: "no header", remote: "192.0.2.1:4000", want: "192.0.2.1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			if tc.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tc.forwarded)
			}
			if got := resolver.resolve(req); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestLeaveSessionClearsCookie(t *testing.T) {
	server := newTestServer(Options{CookieSecure: true})

	rr := doRequest(t, server, http.MethodDelete, "/v1/sessions/current", "", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 || !cookies[0].Secure {
		t.Fatalf("expected cleared secure cookie, got %+v", cookies)
	}
}

func TestRankingFlowOverHTTP(t *testing.T) {
	server := newTestServer(Options{})
	sessionID := joinSession(t, server)

	opened := doRequest(t, server, http.MethodGet, "/v1/rankings/pillar-1", "", sessionID)
	if opened.Code != http.StatusOK || !strings.Contains(opened.Body.String(), `"phase":"unranked"`) {
		t.Fatalf("expected unranked ranking, got %d body=%s", opened.Code, opened.Body.String())
	}

	added := doRequest(t, server, http.MethodPost, "/v1/rankings/pillar-1/operations", `{"kind":"add","action_id":"a2"}`, sessionID)
	if added.Code != http.StatusOK || !strings.Contains(added.Body.String(), `"changed":true`) {
		t.Fatalf("expected add to change ranking, got %d body=%s", added.Code, added.Body.String())
	}

	early := doRequest(t, server, http.MethodPost, "/v1/rankings/pillar-1/finalize", "", sessionID)
	if early.Code != http.StatusUnprocessableEntity || errorCode(t, early) != "ranking_incomplete" {
		t.Fatalf("expected 422 ranking_incomplete, got %d body=%s", early.Code, early.Body.String())
	}

	picked := doRequest(t, server, http.MethodPost, "/v1/rankings/pillar-1/slot-picks", `{"action_id":"a1","position":2}`, sessionID)
	if picked.Code != http.StatusOK {
		t.Fatalf("expected slot pick to apply, got %d body=%s", picked.Code, picked.Body.String())
	}

	finalized := doRequest(t, server, http.MethodPost, "/v1/rankings/pillar-1/finalize", "", sessionID)
	if finalized.Code != http.StatusOK {
		t.Fatalf("expected finalize 200, got %d body=%s", finalized.Code, finalized.Body.String())
	}
	var resp struct {
		Order []struct {
			ActionID string `json:"action_id"`
			Rank     int    `json:"rank"`
		} `json:"order"`
		JourneyCompleted bool `json:"journey_completed"`
	}
	if err := json.Unmarshal(finalized.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode finalize response: %v", err)
	}
	if len(resp.Order) != 2 || resp.Order[0].ActionID != "a2" || resp.Order[1].ActionID != "a1" || !resp.JourneyCompleted {
		t.Fatalf("unexpected finalize response %+v", resp)
	}

	frozen := doRequest(t, server, http.MethodPost, "/v1/rankings/pillar-1/operations", `{"kind":"clear"}`, sessionID)
	if frozen.Code != http.StatusConflict || errorCode(t, frozen) != "ranking_frozen" {
		t.Fatalf("expected 409 ranking_frozen, got %d body=%s", frozen.Code, frozen.Body.String())
	}

	confession := doRequest(t, server, http.MethodPost, "/v1/pillars/pillar-1/confessional", `{"confession":"ship it"}`, sessionID)
	if confession.Code != http.StatusOK || !strings.Contains(confession.Body.String(), `"top_action":"Beta"`) {
		t.Fatalf("expected confessional saved, got %d body=%s", confession.Code, confession.Body.String())
	}
}

func TestPublicRoutesMapNotFound(t *testing.T) {
	server := newTestServer(Options{DashboardToken: "operator-secret"})

	req := httptest.NewRequest(http.MethodGet, "/v1/meetings/missing/dashboard", nil)
	req.Header.Set("Authorization", "Bearer operator-secret")
	dashboard := httptest.NewRecorder()
	server.Handler().ServeHTTP(dashboard, req)
	if dashboard.Code != http.StatusNotFound || errorCode(t, dashboard) != "meeting_not_found" {
		t.Fatalf("expected 404 meeting_not_found, got %d body=%s", dashboard.Code, dashboard.Body.String())
	}

	shared := doRequest(t, server, http.MethodGet, "/v1/achievements/NOPE1234", "", "")
	if shared.Code != http.StatusNotFound || errorCode(t, shared) != "achievement_not_found" {
		t.Fatalf("expected 404 achievement_not_found, got %d body=%s", shared.Code, shared.Body.String())
	}

	sessionID := joinSession(t, server)
	pillar := doRequest(t, server, http.MethodGet, "/v1/pillars/missing", "", sessionID)
	if pillar.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing pillar, got %d", pillar.Code)
	}
	listed := doRequest(t, server, http.MethodGet, "/v1/pillars", "", sessionID)
	if listed.Code != http.StatusOK || !strings.Contains(listed.Body.String(), `"pillar_id":"pillar-1"`) {
		t.Fatalf("expected pillar list, got %d body=%s", listed.Code, listed.Body.String())
	}
}

func TestRateLimiterSweepsIdleVisitors(t *testing.T) {
	limiter := newJoinLimiter(1)
	clock := limiter.now()
	limiter.now = func() time.Time { return clock }

	if !limiter.allow("198.51.100.1") {
		t.Fatal("expected first request to pass")
	}
	if limiter.allow("198.51.100.1") {
		t.Fatal("expected second request to be limited")
	}

	clock = clock.Add(visitorIdleTTL + visitorSweepEvery)
	limiter.allow("198.51.100.2")
	if _, ok := limiter.visitors["198.51.100.1"]; ok {
		t.Fatal("expected idle visitor to be swept")
	}
}

func TestMeetingDashboardRequiresMeetingSessionOrOperatorToken(t *testing.T) {
	server := newTestServer(Options{DashboardToken: "operator-secret"})

	anonymous := doRequest(t, server, http.MethodGet, "/v1/meetings/meeting-1/dashboard", "", "")
	if anonymous.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without credentials, got %d body=%s", anonymous.Code, anonymous.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/meetings/meeting-1/dashboard", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	wrongToken := httptest.NewRecorder()
	server.Handler().ServeHTTP(wrongToken, req)
	if wrongToken.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong token, got %d", wrongToken.Code)
	}

	sessionID := joinSession(t, server)
	member := doRequest(t, server, http.MethodGet, "/v1/meetings/meeting-1/dashboard", "", sessionID)
	if member.Code != http.StatusOK || !strings.Contains(member.Body.String(), `"title":"Kickoff"`) {
		t.Fatalf("expected dashboard for meeting member, got %d body=%s", member.Code, member.Body.String())
	}

	outsider := doRequest(t, server, http.MethodGet, "/v1/meetings/meeting-2/dashboard", "", sessionID)
	if outsider.Code != http.StatusForbidden || errorCode(t, outsider) != "dashboard_forbidden" {
		t.Fatalf("expected 403 for other meeting, got %d body=%s", outsider.Code, outsider.Body.String())
	}
}
