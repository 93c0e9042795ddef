package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Aryanpatel8799/civic-track-odoo-sub000/controllers"
	"github.com/Aryanpatel8799/civic-track-odoo-sub000/middlewares"
)

// AdminRoutes sets up the moderation routes
func AdminRoutes(r *gin.Engine, ac *controllers.AdminController) {
	admin := r.Group("/api/admin")
	admin.Use(middlewares.AuthMiddleware(), middlewares.RequireAdmin())
	{
		admin.GET("/issues", ac.ListIssues)
		admin.PATCH("/issues/:id/hide", ac.Hide)
		admin.PATCH("/issues/:id/restore", ac.Restore)
		admin.GET("/spam-reports", ac.ListSpamReports)
		admin.PATCH("/spam-reports/:id/review", ac.ReviewSpamReport)
		admin.PATCH("/users/:id/ban", ac.BanUser)
		admin.PATCH("/users/:id/unban", ac.UnbanUser)
		admin.GET("/stats", ac.Stats)
	}
}
