package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Aryanpatel8799/civic-track-odoo-sub000/controllers"
	"github.com/Aryanpatel8799/civic-track-odoo-sub000/middlewares"
)

// AuthRoutes sets up the authentication routes
func AuthRoutes(r *gin.Engine) {
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", controllers.RegisterUser)
		auth.POST("/login", controllers.LoginUser)
		auth.GET("/me", middlewares.AuthMiddleware(), controllers.GetMe)
		auth.POST("/logout", controllers.LogoutUser)
	}
}
