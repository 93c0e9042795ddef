package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Aryanpatel8799/civic-track-odoo-sub000/config"
	"github.com/Aryanpatel8799/civic-track-odoo-sub000/controllers"
	"github.com/Aryanpatel8799/civic-track-odoo-sub000/middlewares"
)

// IssueRoutes sets up the issue routes
func IssueRoutes(r *gin.Engine, ic *controllers.IssueController, cfg config.Config) {
	issues := r.Group("/api/issues")
	{
		issues.GET("", ic.List)
		issues.GET("/nearby", ic.Nearby)
		issues.GET("/mine", middlewares.AuthMiddleware(), ic.MyIssues)
		issues.GET("/:id", ic.Get)
		issues.GET("/:id/activity", ic.Activity)

		issues.POST("",
			middlewares.AuthMiddleware(),
			middlewares.UserRateLimiter("issue_create", cfg.CreateIssueLimit),
			ic.Create)
		issues.PATCH("/:id/status",
			middlewares.AuthMiddleware(),
			middlewares.RequireAdmin(),
			ic.UpdateStatus)
		issues.POST("/:id/upvote", middlewares.AuthMiddleware(), ic.Upvote)
		issues.POST("/:id/spam",
			middlewares.AuthMiddleware(),
			middlewares.UserRateLimiter("spam_report", cfg.SpamReportLimit),
			ic.ReportSpam)
		issues.DELETE("/:id", middlewares.AuthMiddleware(), ic.Delete)
	}
}
