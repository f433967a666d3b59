package httpserver

import (
	"net/http"

	rankinghttp "jornada/contexts/strategy-journey/ranking-engine/transport/http"
)

func (s *Server) handleListPillars(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())
	resp, err := s.catalog.Handler.ListPillarsHandler(r.Context(), session.SessionID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetPillar(w http.ResponseWriter, r *http.Request) {
	resp, err := s.catalog.Handler.GetPillarHandler(r.Context(), r.PathValue("pillar_id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListActions(w http.ResponseWriter, r *http.Request) {
	resp, err := s.catalog.Handler.ListActionsHandler(r.Context(), r.PathValue("pillar_id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePillarStatus(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())
	resp, err := s.catalog.Handler.PillarStatusHandler(r.Context(), session.SessionID, r.PathValue("pillar_id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetRanking(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())
	resp, err := s.rankings.Handler.GetRankingHandler(r.Context(), session.SessionID, r.PathValue("pillar_id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleApplyOperation(w http.ResponseWriter, r *http.Request) {
	var req rankinghttp.OperationRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	session := sessionFromContext(r.Context())
	resp, err := s.rankings.Handler.ApplyOperationHandler(r.Context(), session.SessionID, r.PathValue("pillar_id"), req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleApplyGesture(w http.ResponseWriter, r *http.Request) {
	var req rankinghttp.GestureRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	session := sessionFromContext(r.Context())
	resp, err := s.rankings.Handler.ApplyGestureHandler(r.Context(), session.SessionID, r.PathValue("pillar_id"), req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleApplySlotPick(w http.ResponseWriter, r *http.Request) {
	var req rankinghttp.SlotPickRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	session := sessionFromContext(r.Context())
	resp, err := s.rankings.Handler.ApplySlotPickHandler(r.Context(), session.SessionID, r.PathValue("pillar_id"), req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFinalizeRanking(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())
	resp, err := s.rankings.Handler.FinalizeRankingHandler(r.Context(), session.SessionID, r.PathValue("pillar_id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSaveConfessional(w http.ResponseWriter, r *http.Request) {
	var req rankinghttp.ConfessionalRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	session := sessionFromContext(r.Context())
	resp, err := s.rankings.Handler.SaveConfessionalHandler(r.Context(), session.SessionID, r.PathValue("pillar_id"), req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetAchievement(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())
	resp, err := s.rankings.Handler.GetAchievementHandler(r.Context(), session.SessionID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSharedAchievement(w http.ResponseWriter, r *http.Request) {
	resp, err := s.rankings.Handler.SharedAchievementHandler(r.Context(), r.PathValue("share_code"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMeetingDashboard(w http.ResponseWriter, r *http.Request) {
	resp, err := s.rankings.Handler.MeetingDashboardHandler(r.Context(), r.PathValue("meeting_id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
