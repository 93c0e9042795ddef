package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Aryanpatel8799/civic-track-odoo-sub000/models"
	"github.com/Aryanpatel8799/civic-track-odoo-sub000/services"
	"github.com/Aryanpatel8799/civic-track-odoo-sub000/store"
)

// IssueController exposes the issue lifecycle over HTTP. All engine
// rules live in the services; handlers only parse, delegate and render.
type IssueController struct {
	issues     *services.IssueService
	engagement *services.EngagementService
	moderation *services.ModerationService
}

func NewIssueController(issues *services.IssueService, engagement *services.EngagementService, moderation *services.ModerationService) *IssueController {
	return &IssueController{issues: issues, engagement: engagement, moderation: moderation}
}

// currentUserID extracts the authenticated principal set by the auth
// middleware.
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		return primitive.NilObjectID, false
	}
	objectID, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return objectID, true
}

func issueIDParam(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return primitive.NilObjectID, false
	}
	return id, true
}

// Create handles POST /api/issues (multipart, zero or more images)
func (ic *IssueController) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	lat, latErr := strconv.ParseFloat(c.PostForm("latitude"), 64)
	lng, lngErr := strconv.ParseFloat(c.PostForm("longitude"), 64)
	if latErr != nil || lngErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "latitude and longitude are required"})
		return
	}

	title := c.PostForm("title")
	description := c.PostForm("description")
	if title == "" || description == "" || len(title) > 200 || len(description) > 1000 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and description are required"})
		return
	}

	input := services.CreateIssueInput{
		Title:       title,
		Description: description,
		Category:    c.PostForm("category"),
		Latitude:    lat,
		Longitude:   lng,
		Address:     c.PostForm("address"),
		IsAnonymous: c.PostForm("isAnonymous") == "true",
	}

	form, err := c.MultipartForm()
	if err == nil && form != nil {
		for _, header := range form.File["images"] {
			file, err := header.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded image"})
				return
			}
			defer file.Close()
			input.Images = append(input.Images, services.ImageUpload{
				Reader:      file,
				Size:        header.Size,
				ContentType: header.Header.Get("Content-Type"),
			})
		}
	}

	issue, err := ic.issues.Create(c.Request.Context(), input, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, issue)
}

// List handles GET /api/issues. Hidden issues never appear here.
func (ic *IssueController) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	visible := true
	filter := store.IssueFilter{
		Category: c.Query("category"),
		Status:   c.Query("status"),
		Search:   c.Query("search"),
		Visible:  &visible,
	}
	plan := store.NewPage(page, limit,
		c.DefaultQuery("sort", "createdAt"),
		c.DefaultQuery("order", "desc"),
		store.DefaultPublicLimit, store.PublicMaxLimit)

	issues, pagination, err := ic.issues.List(c.Request.Context(), filter, plan)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"issues":     issues,
		"pagination": pagination,
	})
}

// Nearby handles GET /api/issues/nearby?lat&lng&distance (meters)
func (ic *IssueController) Nearby(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	distance, distErr := strconv.ParseFloat(c.Query("distance"), 64)
	if latErr != nil || lngErr != nil || distErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat, lng and distance are required"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	plan := store.NewPage(page, limit,
		c.DefaultQuery("sort", "createdAt"),
		c.DefaultQuery("order", "desc"),
		store.DefaultPublicLimit, store.PublicMaxLimit)

	center := store.GeoCenter{Latitude: lat, Longitude: lng}
	issues, pagination, err := ic.issues.Nearby(c.Request.Context(), center, distance, plan)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"issues":     issues,
		"pagination": pagination,
	})
}

// Get handles GET /api/issues/:id. Every successful fetch counts a view.
func (ic *IssueController) Get(c *gin.Context) {
	id, ok := issueIDParam(c)
	if !ok {
		return
	}

	issue, err := ic.issues.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, issue)
}

// MyIssues handles GET /api/issues/mine
func (ic *IssueController) MyIssues(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	filter := store.IssueFilter{Reporter: &userID}
	plan := store.NewPage(page, limit, "createdAt", "desc",
		store.DefaultPublicLimit, store.PublicMaxLimit)

	issues, pagination, err := ic.issues.List(c.Request.Context(), filter, plan)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"issues":     issues,
		"pagination": pagination,
	})
}

// UpdateStatus handles PATCH /api/issues/:id/status (admin)
func (ic *IssueController) UpdateStatus(c *gin.Context) {
	id, ok := issueIDParam(c)
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Status                  string `json:"status" binding:"required"`
		Note                    string `json:"note,omitempty"`
		Priority                string `json:"priority,omitempty"`
		EstimatedResolutionTime string `json:"estimatedResolutionTime,omitempty"`
		AdminNotes              string `json:"adminNotes,omitempty"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	issue, err := ic.issues.UpdateStatus(c.Request.Context(), id, services.StatusUpdateInput{
		Status:                  input.Status,
		Note:                    input.Note,
		Priority:                input.Priority,
		EstimatedResolutionTime: input.EstimatedResolutionTime,
		AdminNotes:              input.AdminNotes,
	}, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, issue)
}

// Upvote handles POST /api/issues/:id/upvote
func (ic *IssueController) Upvote(c *gin.Context) {
	id, ok := issueIDParam(c)
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	result, err := ic.engagement.ToggleUpvote(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Vote removed successfully"
	if result.Upvoted {
		message = "Vote cast successfully"
	}
	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"upvoted": result.Upvoted,
		"upvotes": result.Upvotes,
	})
}

// ReportSpam handles POST /api/issues/:id/spam
func (ic *IssueController) ReportSpam(c *gin.Context) {
	id, ok := issueIDParam(c)
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Reason      string `json:"reason" binding:"required"`
		Description string `json:"description,omitempty"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := ic.moderation.RecordSpamReport(c.Request.Context(), id, userID, input.Reason, input.Description)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Spam report recorded",
		"spamCount": result.SpamCount,
		"hidden":    result.Hidden,
	})
}

// Activity handles GET /api/issues/:id/activity, newest-first.
func (ic *IssueController) Activity(c *gin.Context) {
	id, ok := issueIDParam(c)
	if !ok {
		return
	}

	activities, err := ic.issues.ActivityTimeline(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"activity": activities})
}

// Delete handles DELETE /api/issues/:id (owner or admin)
func (ic *IssueController) Delete(c *gin.Context) {
	id, ok := issueIDParam(c)
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	role, _ := c.Get("user_role")
	isAdmin := role == string(models.RoleAdmin)

	if err := ic.issues.Delete(c.Request.Context(), id, userID, isAdmin); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Issue deleted successfully"})
}
