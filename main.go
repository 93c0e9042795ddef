package main

import (
	"net/http"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/Aryanpatel8799/civic-track-odoo-sub000/config"
	"github.com/Aryanpatel8799/civic-track-odoo-sub000/controllers"
	"github.com/Aryanpatel8799/civic-track-odoo-sub000/geocode"
	"github.com/Aryanpatel8799/civic-track-odoo-sub000/middlewares"
	"github.com/Aryanpatel8799/civic-track-odoo-sub000/models"
	"github.com/Aryanpatel8799/civic-track-odoo-sub000/routes"
	"github.com/Aryanpatel8799/civic-track-odoo-sub000/services"
	"github.com/Aryanpatel8799/civic-track-odoo-sub000/storage"
	"github.com/Aryanpatel8799/civic-track-odoo-sub000/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found")
	}

	logrus.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load()

	db := config.ConnectDB()
	if db == nil {
		logrus.Fatal("Failed to connect to MongoDB")
	}
	config.ConnectRedis()

	issueColl := config.GetCollection("issues")
	voteColl := config.GetCollection("votes")
	spamColl := config.GetCollection("spamreports")
	activityColl := config.GetCollection("activities")
	userColl := config.GetCollection("users")

	if err := models.EnsureVoteIndex(voteColl); err != nil {
		logrus.Fatalf("Failed to create vote index: %v", err)
	}
	if err := models.EnsureSpamReportIndex(spamColl); err != nil {
		logrus.Fatalf("Failed to create spam report index: %v", err)
	}
	if err := models.EnsureUserIndex(userColl); err != nil {
		logrus.Fatalf("Failed to create user index: %v", err)
	}
	if err := store.EnsureIssueIndexes(issueColl); err != nil {
		logrus.Fatalf("Failed to create issue indexes: %v", err)
	}

	media, err := storage.New(storage.Config{
		Endpoint:  cfg.MediaEndpoint,
		AccessKey: cfg.MediaAccessKey,
		SecretKey: cfg.MediaSecretKey,
		Bucket:    cfg.MediaBucket,
		PublicURL: cfg.MediaPublicURL,
		UseSSL:    cfg.MediaUseSSL,
	})
	if err != nil {
		logrus.Fatalf("Failed to initialize media store: %v", err)
	}
	if err := media.EnsureBucket(config.Ctx); err != nil {
		logrus.Fatalf("Failed to ensure media bucket: %v", err)
	}

	var geocoder services.Geocoder
	if cfg.GeocoderURL != "" {
		geocoder = geocode.New(cfg.GeocoderURL)
	}

	issueStore := store.NewIssueStore(issueColl)
	voteStore := store.NewVoteStore(voteColl)
	spamStore := store.NewSpamReportStore(spamColl)
	activityStore := store.NewActivityStore(activityColl)
	userStore := store.NewUserStore(userColl)
	statsStore := store.NewStatsStore(issueColl, voteColl)

	issueService := services.NewIssueService(issueStore, voteStore, spamStore, activityStore, userStore, media, geocoder)
	engagementService := services.NewEngagementService(issueStore, voteStore)
	moderationService := services.NewModerationService(issueStore, spamStore, activityStore, userStore, cfg.SpamThreshold)

	issueController := controllers.NewIssueController(issueService, engagementService, moderationService)
	adminController := controllers.NewAdminController(issueService, moderationService, statsStore)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{os.Getenv("FRONTEND_ORIGIN")},
		AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	routes.AuthRoutes(r)
	routes.IssueRoutes(r, issueController, cfg)
	routes.AdminRoutes(r, adminController)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		logrus.Fatalf("Failed to start server: %v", err)
	}
}
