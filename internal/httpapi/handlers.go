package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"salescoach-platform/internal/audit"
	"salescoach-platform/internal/calllog"
	"salescoach-platform/internal/credits"
	"salescoach-platform/internal/logquery"
	"salescoach-platform/internal/reporting"
	"salescoach-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Logs    *calllog.Service
	Credits *credits.Service
	Reports *reporting.Service
	Audit   audit.Reader
}

const dateParamLayout = "2006-01-02"

// --- Call-log review view ---

// ListCallLogs serves the filtered, sorted call-log rows.
// Query params: team_id, member_id (required); q, from, to, min_score,
// max_score, sort (optional).
func (h Handlers) ListCallLogs(c *gin.Context) {
	teamID := c.Query("team_id")
	memberID := c.Query("member_id")
	if teamID == "" || memberID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "team_id and member_id are required"})
		return
	}

	filter, err := parseFilter(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	records, err := h.Logs.Records(c.Request.Context(), teamID, memberID)
	if err != nil {
		h.writeUpstreamError(c, err)
		return
	}

	rows := logquery.Apply(records, filter, logquery.SortKey(c.Query("sort")))
	c.JSON(http.StatusOK, gin.H{"logs": rows, "total": len(rows)})
}

type feedbackRequest struct {
	ManagerFeedback string `json:"manager_feedback"`
}

// SaveFeedback writes manager feedback for the record identified by the
// (member_id, session_id) pair.
func (h Handlers) SaveFeedback(c *gin.Context) {
	teamID := c.Query("team_id")
	memberID := c.Query("member_id")
	sessionID := c.Query("session_id")
	if teamID == "" || memberID == "" || sessionID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "team_id, member_id and session_id are required"})
		return
	}

	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	if err := h.Logs.SaveFeedback(c.Request.Context(), teamID, memberID, sessionID, req.ManagerFeedback); err != nil {
		h.writeUpstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

// ScoreSummary serves aggregated performance metrics for one member.
func (h Handlers) ScoreSummary(c *gin.Context) {
	req := reporting.ScoreSummaryRequest{
		TeamID:   c.Query("team_id"),
		MemberID: c.Query("member_id"),
	}
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(dateParamLayout, v)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "from must be YYYY-MM-DD"})
			return
		}
		req.Range.From = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(dateParamLayout, v)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "to must be YYYY-MM-DD"})
			return
		}
		// Make the end day inclusive for day-granular query params.
		req.Range.To = t.AddDate(0, 0, 1)
	}

	sum, err := h.Reports.ScoreSummary(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, reporting.ErrInvalidRequest) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.writeUpstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

// --- Credit-management view ---

func (h Handlers) CreditUsers(c *gin.Context) {
	teamID := c.Query("team_id")
	if teamID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "team_id is required"})
		return
	}

	users, err := h.Credits.Users(c.Request.Context(), teamID)
	if err != nil {
		h.writeUpstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h Handlers) CreditBalance(c *gin.Context) {
	teamID := c.Query("team_id")
	memberID := c.Query("member_id")
	if teamID == "" || memberID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "team_id and member_id are required"})
		return
	}

	bal, err := h.Credits.Balance(c.Request.Context(), teamID, memberID)
	if err != nil {
		h.writeUpstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"credits": bal})
}

type transferRequest struct {
	TeamID     string `json:"team_id"`
	FromMember string `json:"from_member_id"`
	ToMember   string `json:"to_member_id"`
	Amount     int64  `json:"amount"`
}

func (h Handlers) AddCredits(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	err := h.Credits.AddCredits(c.Request.Context(), req.TeamID, req.FromMember, req.ToMember, req.Amount)
	if err != nil {
		h.writeCreditsError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type withdrawRequest struct {
	TeamID        string `json:"team_id"`
	ActorMemberID string `json:"actor_member_id"`
	MemberID      string `json:"member_id"`
	Amount        int64  `json:"amount"`
}

func (h Handlers) RemoveCredits(c *gin.Context) {
	var req withdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	err := h.Credits.RemoveCredits(c.Request.Context(), req.TeamID, req.ActorMemberID, req.MemberID, req.Amount)
	if err != nil {
		h.writeCreditsError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type automationRequest struct {
	TeamID    string `json:"team_id"`
	ManagerID string `json:"manager_id"`
	MemberID  string `json:"member_id"`
	Amount    int64  `json:"amount"`
}

// SetAutomation sets or, with amount 0, cancels a monthly automation.
func (h Handlers) SetAutomation(c *gin.Context) {
	var req automationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	err := h.Credits.SetMonthlyAutomation(c.Request.Context(), req.TeamID, req.ManagerID, req.MemberID, req.Amount)
	if err != nil {
		h.writeCreditsError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type removeUserRequest struct {
	TeamID   string `json:"team_id"`
	MemberID string `json:"member_id"`
}

func (h Handlers) RemoveUser(c *gin.Context) {
	var req removeUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	if err := h.Credits.RemoveUser(c.Request.Context(), req.TeamID, req.MemberID); err != nil {
		h.writeCreditsError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

type bulkRequest struct {
	TeamID        string   `json:"team_id"`
	ActorMemberID string   `json:"actor_member_id"`
	MemberIDs     []string `json:"member_ids"`
	Amount        int64    `json:"amount"`
}

func (h Handlers) BulkAddCredits(c *gin.Context) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	err := h.Credits.BulkAddCredits(c.Request.Context(), req.TeamID, req.ActorMemberID, req.MemberIDs, req.Amount)
	if err != nil {
		h.writeCreditsError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "count": len(req.MemberIDs)})
}

func (h Handlers) BulkRemoveCredits(c *gin.Context) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	err := h.Credits.BulkRemoveCredits(c.Request.Context(), req.TeamID, req.ActorMemberID, req.MemberIDs, req.Amount)
	if err != nil {
		h.writeCreditsError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "count": len(req.MemberIDs)})
}

func (h Handlers) BulkSetAutomation(c *gin.Context) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	err := h.Credits.BulkSetAutomation(c.Request.Context(), req.TeamID, req.ActorMemberID, req.MemberIDs, req.Amount)
	if err != nil {
		h.writeCreditsError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "count": len(req.MemberIDs)})
}

// AuditTrail serves the internal ops view of recent credit mutations
// for one team, oldest first.
// Query params: team_id (required); limit (optional).
func (h Handlers) AuditTrail(c *gin.Context) {
	teamID := c.Query("team_id")
	if teamID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "team_id is required"})
		return
	}

	var limit int64
	if v := c.Query("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	events, err := h.Audit.Recent(c.Request.Context(), teamID, limit)
	if err != nil {
		logger.FromGin(c).Error("audit trail read failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "audit trail unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "total": len(events)})
}

// --- helpers ---

func parseFilter(c *gin.Context) (logquery.Filter, error) {
	f := logquery.DefaultFilter()
	f.Query = c.Query("q")

	if v := c.Query("from"); v != "" {
		t, err := time.Parse(dateParamLayout, v)
		if err != nil {
			return logquery.Filter{}, errors.New("from must be YYYY-MM-DD")
		}
		f.From = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(dateParamLayout, v)
		if err != nil {
			return logquery.Filter{}, errors.New("to must be YYYY-MM-DD")
		}
		f.To = t
	}
	if v := c.Query("min_score"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return logquery.Filter{}, errors.New("min_score must be a number")
		}
		f.MinScore = n
	}
	if v := c.Query("max_score"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return logquery.Filter{}, errors.New("max_score must be a number")
		}
		f.MaxScore = n
	}
	return f, nil
}

// writeCreditsError maps credit-service failures onto the response.
// Local pre-check rejections are client errors; everything upstream is
// surfaced as a transient failure the caller may re-trigger.
func (h Handlers) writeCreditsError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, credits.ErrInvalidArgument), errors.Is(err, credits.ErrNoSelection):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, credits.ErrInsufficientCredits):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "insufficient credits"})
	case errors.Is(err, credits.ErrBulkInProgress):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.writeUpstreamError(c, err)
	}
}

func (h Handlers) writeUpstreamError(c *gin.Context, err error) {
	log := logger.FromGin(c)

	var ledgerErr *credits.APIError
	if errors.As(err, &ledgerErr) {
		log.Warn("ledger api rejected request", "status", ledgerErr.StatusCode, "msg", ledgerErr.Message)
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": ledgerErr.Message})
		return
	}

	var logsErr *calllog.APIError
	if errors.As(err, &logsErr) {
		log.Warn("platform api rejected request", "status", logsErr.StatusCode, "msg", logsErr.Message)
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": logsErr.Message})
		return
	}

	if errors.Is(err, calllog.ErrInvalidArgument) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if errors.Is(err, calllog.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	log.Error("upstream request failed", "err", err)
	c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "upstream request failed"})
}
