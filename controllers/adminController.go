package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Aryanpatel8799/civic-track-odoo-sub000/services"
	"github.com/Aryanpatel8799/civic-track-odoo-sub000/store"
)

// AdminController exposes the moderation surface. Every route behind it
// is gated by RequireAdmin.
type AdminController struct {
	issues     *services.IssueService
	moderation *services.ModerationService
	stats      *store.StatsStore
}

func NewAdminController(issues *services.IssueService, moderation *services.ModerationService, stats *store.StatsStore) *AdminController {
	return &AdminController{issues: issues, moderation: moderation, stats: stats}
}

// ListIssues handles GET /api/admin/issues with the advanced filters:
// spam bucket, date range, priority and an explicit visibility override
// so hidden issues can be audited.
func (ac *AdminController) ListIssues(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	filter := store.IssueFilter{
		Category:      c.Query("category"),
		Status:        c.Query("status"),
		Search:        c.Query("search"),
		Priority:      c.Query("priority"),
		SpamBucket:    c.Query("spamVotes"),
		SpamThreshold: ac.moderation.SpamThreshold(),
	}

	// visible=true/false narrows; anything else audits everything.
	switch c.Query("visible") {
	case "true":
		visible := true
		filter.Visible = &visible
	case "false":
		visible := false
		filter.Visible = &visible
	}

	if from := c.Query("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			filter.CreatedAfter = &t
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			end := t.AddDate(0, 0, 1)
			filter.CreatedBefore = &end
		}
	}

	plan := store.NewPage(page, limit,
		c.DefaultQuery("sort", "createdAt"),
		c.DefaultQuery("order", "desc"),
		store.DefaultAdminLimit, store.AdminMaxLimit)

	issues, pagination, err := ac.issues.List(c.Request.Context(), filter, plan)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"issues":     issues,
		"pagination": pagination,
	})
}

// Hide handles PATCH /api/admin/issues/:id/hide
func (ac *AdminController) Hide(c *gin.Context) {
	id, ok := issueIDParam(c)
	if !ok {
		return
	}
	adminID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Reason string `json:"reason,omitempty"`
	}
	_ = c.ShouldBindJSON(&input)

	issue, err := ac.moderation.Hide(c.Request.Context(), id, adminID, input.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, issue)
}

// Restore handles PATCH /api/admin/issues/:id/restore. Clears all spam
// reports for the issue.
func (ac *AdminController) Restore(c *gin.Context) {
	id, ok := issueIDParam(c)
	if !ok {
		return
	}
	adminID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	issue, err := ac.moderation.Restore(c.Request.Context(), id, adminID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, issue)
}

// ListSpamReports handles GET /api/admin/spam-reports
func (ac *AdminController) ListSpamReports(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	filter := store.SpamReportFilter{Status: c.Query("status")}
	if issueHex := c.Query("issue"); issueHex != "" {
		if issueID, err := primitive.ObjectIDFromHex(issueHex); err == nil {
			filter.Issue = &issueID
		}
	}

	plan := store.NewPage(page, limit, "createdAt", "desc",
		store.DefaultAdminLimit, store.AdminMaxLimit)

	reports, pagination, err := ac.moderation.ListSpamReports(c.Request.Context(), filter, plan)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reports":    reports,
		"pagination": pagination,
	})
}

// ReviewSpamReport handles PATCH /api/admin/spam-reports/:id/review
func (ac *AdminController) ReviewSpamReport(c *gin.Context) {
	reportID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid report ID"})
		return
	}
	adminID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Status      string `json:"status" binding:"required"`
		ActionTaken string `json:"actionTaken,omitempty"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := ac.moderation.ReviewSpamReport(c.Request.Context(), reportID, adminID, input.Status, input.ActionTaken)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// BanUser handles PATCH /api/admin/users/:id/ban
func (ac *AdminController) BanUser(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var input struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ban reason is required"})
		return
	}

	if err := ac.moderation.Ban(c.Request.Context(), userID, input.Reason); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User banned successfully"})
}

// UnbanUser handles PATCH /api/admin/users/:id/unban
func (ac *AdminController) UnbanUser(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	if err := ac.moderation.Unban(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User unbanned successfully"})
}

// Stats handles GET /api/admin/stats
func (ac *AdminController) Stats(c *gin.Context) {
	stats, err := ac.stats.Collect(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to collect stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
