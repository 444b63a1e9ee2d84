package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/autopneuma/pneuma/internal/contracts"
	"github.com/autopneuma/pneuma/internal/domain"
)

func (s *Server) moderate(w http.ResponseWriter, r *http.Request) {
	var req contracts.ModerationRequest
	if !decode(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	resp := s.svc.Moderation.Moderate(r.Context(), req)
	if resp.Flagged && req.ContentID != "" {
		s.logFlag(r, req, resp)
	}
	writeJSON(w, http.StatusOK, resp)
}

// logFlag queues flagged content for moderators. Failures never fail the request.
func (s *Server) logFlag(r *http.Request, req contracts.ModerationRequest, resp contracts.ModerationResponse) {
	if s.svc.ModerationLog == nil {
		return
	}
	entry := &domain.ModerationLogEntry{
		ContentType: string(req.ContentType),
		ContentID:   req.ContentID,
		FlaggedBy:   "ai_assistant",
		Reason:      string(resp.Recommendation),
		Details: map[string]any{
			"flags":         resp.Flags,
			"overall_score": resp.OverallScore,
			"reasoning":     resp.Reasoning,
		},
		Status: "pending",
	}
	if err := s.svc.ModerationLog.RecordModerationFlag(r.Context(), entry); err != nil {
		s.logger.Warn("failed to log moderation flag",
			zap.String("content_id", req.ContentID), zap.Error(err))
	}
}

func (s *Server) moderationHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, contracts.HealthResponse{
		Service: "moderation",
		Status:  "healthy",
		Enabled: s.svc.Moderation.Enabled(),
	})
}

// moderationLog lists queued flags for administrators
func (s *Server) moderationLog(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Community.RequireAdmin(r.Context(), userID(r)); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	status := r.URL.Query().Get("status")
	if status == "" {
		status = "pending"
	}
	entries, err := s.svc.ModerationLog.ListModerationFlags(r.Context(), status, intParam(r, "limit", 50))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (s *Server) scriptureContext(w http.ResponseWriter, r *http.Request) {
	var req contracts.ScriptureContextRequest
	if !decode(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Scripture.Context(r.Context(), req))
}

func (s *Server) scriptureHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, contracts.HealthResponse{
		Service: "scripture_assistant",
		Status:  "healthy",
		Enabled: s.svc.Scripture.Enabled(),
	})
}

func (s *Server) listTools(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := s.svc.Tools.List(r.Context(), contracts.ToolListParams{
		Category: q.Get("category"),
		Status:   q.Get("status"),
		Page:     intParam(r, "page", 1),
		PerPage:  intParam(r, "per_page", 20),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getTool(w http.ResponseWriter, r *http.Request) {
	tool, err := s.svc.Tools.Get(r.Context(), chi.URLParam(r, "toolID"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tool)
}

// registerTool takes the creator from the body. A signed-in caller overrides it.
// Schema failures answer 422 like the other wire contracts; a project the
// creator does not own answers 403.
func (s *Server) registerTool(w http.ResponseWriter, r *http.Request) {
	var req contracts.RegisterToolRequest
	if !decode(w, r, &req) {
		return
	}
	reg := req.ToolRegistration
	reg.ApplyDefaults()
	if err := reg.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	creator := req.CreatorID
	if id := userID(r); id != "" {
		creator = id
	}
	tool, err := s.svc.Tools.Register(r.Context(), reg, creator)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tool)
}

func (s *Server) executeTool(w http.ResponseWriter, r *http.Request) {
	var req contracts.ToolExecutionRequest
	if !decode(w, r, &req) {
		return
	}
	if id := userID(r); id != "" {
		req.UserID = id
	}
	if req.ToolID == "" || req.UserID == "" {
		writeError(w, http.StatusUnprocessableEntity, "tool_id and user_id are required")
		return
	}
	if !s.svc.Tools.Enabled() {
		writeError(w, http.StatusServiceUnavailable, "Community tools are currently disabled")
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Tools.Execute(r.Context(), req))
}

func (s *Server) approveTool(w http.ResponseWriter, r *http.Request) {
	approver := userID(r)
	if err := s.svc.Community.RequireAdmin(r.Context(), approver); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	tool, err := s.svc.Tools.Approve(r.Context(), chi.URLParam(r, "toolID"), approver)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tool)
}

func (s *Server) toolsHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, contracts.HealthResponse{
		Service: "community_tools",
		Status:  "healthy",
		Enabled: s.svc.Tools.Enabled(),
	})
}
