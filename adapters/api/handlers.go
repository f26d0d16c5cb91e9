package api

import (
	"net/http"
	"strconv"

	"gospc/adapters/urlsync"
	"gospc/app"
	"gospc/domain/core"
	"gospc/domain/drill"
	"gospc/internal/errors"
	"gospc/internal/report"

	"github.com/gin-gonic/gin"
)

// analysisResponse is returned by every endpoint that changes or reads the drill state
type analysisResponse struct {
	Depth    int           `json:"depth"`
	Query    string        `json:"query,omitempty"`
	Analysis *app.Snapshot `json:"analysis"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"outcome": s.analysis.Config().Outcome,
		"rows":    len(s.analysis.Table().Rows),
	})
}

func (s *Server) respondWithState(c *gin.Context, status int, state drill.State) {
	snap, err := s.analysis.Analyze(c.Request.Context(), state)
	if err != nil {
		s.respondError(c, err)
		return
	}
	resp := analysisResponse{Depth: len(state.Stack), Analysis: snap}
	if s.navigator.URLSyncEnabled() {
		resp.Query = s.navigator.Query()
	}
	c.JSON(status, resp)
}

// GET /api/analysis[?filters=...]
func (s *Server) handleAnalysis(c *gin.Context) {
	state := s.navigator.State()
	if raw, ok := c.GetQuery(urlsync.Param); ok && s.navigator.URLSyncEnabled() {
		if next, applied := s.navigator.ApplyQuery(raw); applied {
			state = next
		}
	}
	s.respondWithState(c, http.StatusOK, state)
}

func (s *Server) handleBreadcrumbs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"breadcrumbs": s.navigator.Breadcrumbs()})
}

// GET /api/report[?format=markdown&title=...]
func (s *Server) handleReport(c *gin.Context) {
	title := c.Query("title")
	state := s.navigator.State()

	if c.Query("format") == "markdown" {
		snap, err := s.analysis.Analyze(c.Request.Context(), state)
		if err != nil {
			s.respondError(c, err)
			return
		}
		md := report.Markdown(app.ReportInput(snap, title))
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(md))
		return
	}

	_, html, err := s.analysis.Report(c.Request.Context(), state, title)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

func (s *Server) handleDrillDown(c *gin.Context) {
	var req drillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	params, err := req.params(s.analysis.Config().Factors)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.respondWithState(c, http.StatusOK, s.navigator.DrillDown(params))
}

func (s *Server) handleDrillUp(c *gin.Context) {
	s.respondWithState(c, http.StatusOK, s.navigator.DrillUp())
}

func (s *Server) handleDrillTo(c *gin.Context) {
	id, err := core.ParseActionID(c.Param("id"))
	if err != nil {
		s.respondError(c, errors.InvalidInput(err.Error()))
		return
	}
	s.respondWithState(c, http.StatusOK, s.navigator.DrillTo(id))
}

func (s *Server) handleClear(c *gin.Context) {
	s.respondWithState(c, http.StatusOK, s.navigator.Clear())
}

func (s *Server) handleSetHighlight(c *gin.Context) {
	var req highlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := req.validate(); err != nil {
		s.respondError(c, err)
		return
	}
	state := s.navigator.SetHighlight(*req.RowIndex, *req.Value, req.OriginalIndex)
	c.JSON(http.StatusOK, gin.H{"highlight": state.Highlight})
}

func (s *Server) handleClearHighlight(c *gin.Context) {
	s.navigator.ClearHighlight()
	c.Status(http.StatusNoContent)
}

func (s *Server) handleListSessions(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			s.respondError(c, errors.InvalidInput("limit must be a non-negative integer"))
			return
		}
		limit = parsed
	}

	sessions, err := s.navigator.Sessions(c.Request.Context(), limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions, "count": len(sessions)})
}

func (s *Server) handleSaveSession(c *gin.Context) {
	session, err := s.navigator.Save(c.Request.Context(), core.SessionID(c.Param("id")))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":         session.ID,
		"outcome":    session.Outcome,
		"version":    session.Version,
		"depth":      len(session.State.Stack),
		"updated_at": session.UpdatedAt,
	})
}

// GET /api/sessions/:id restores the session into the live navigator
func (s *Server) handleLoadSession(c *gin.Context) {
	id, err := core.ParseSessionID(c.Param("id"))
	if err != nil {
		s.respondError(c, errors.InvalidInput(err.Error()))
		return
	}
	session, err := s.navigator.Load(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.respondWithState(c, http.StatusOK, session.State)
}

func (s *Server) handleDeleteSession(c *gin.Context) {
	id, err := core.ParseSessionID(c.Param("id"))
	if err != nil {
		s.respondError(c, errors.InvalidInput(err.Error()))
		return
	}
	if err := s.navigator.DeleteSession(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// respondError maps application error codes onto HTTP statuses
func (s *Server) respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}

func statusFor(code string) int {
	switch code {
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeInvalidInput:
		return http.StatusBadRequest
	case errors.CodeUnprocessable:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
