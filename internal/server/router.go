package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"meme-gallery-backend/internal/handlers"
	"meme-gallery-backend/internal/middleware"
	"meme-gallery-backend/internal/services"
)

// Deps is everything the HTTP surface needs.
type Deps struct {
	Photos   *services.PhotoService
	Uploads  *services.UploadService
	Comments *services.CommentService
	Profiles *services.ProfileService
	Hosts    services.MediaHosts
	Verifier *middleware.TokenVerifier

	ProxyTimeout   time.Duration
	MaxUploadBytes int64
}

func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	photosHandler := handlers.NewPhotosHandler(d.Photos)
	uploadHandler := handlers.NewUploadHandler(d.Uploads, d.MaxUploadBytes)
	commentsHandler := handlers.NewCommentsHandler(d.Comments)
	proxyHandler := handlers.NewProxyHandler(d.Hosts, d.ProxyTimeout)
	statusHandler := handlers.NewStatusHandler(d.Photos)
	userHandler := handlers.NewUserHandler(d.Profiles)
	webhookHandler := handlers.NewWebhookHandler(d.Profiles)

	// Health check (no auth)
	router.GET("/health", handlers.HealthHandler)

	// Media proxy
	router.GET("/r2-proxy", proxyHandler.Proxy)

	// Webhook (no auth, uses svix signatures)
	router.POST("/api/webhooks/clerk", webhookHandler.HandleWebhook)
	router.GET("/api/webhooks/clerk", webhookHandler.Ping)

	public := router.Group("/api")
	public.GET("/r2-proxy", proxyHandler.Proxy)
	public.GET("/photos", photosHandler.ListPhotos)
	public.GET("/status", statusHandler.GetStatus)
	public.GET("/comments", commentsHandler.ListComments)
	public.POST("/comment-counts", commentsHandler.CommentCounts)

	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(d.Verifier))

	api.POST("/upload-to-r2", uploadHandler.Upload)
	api.DELETE("/delete-photo", photosHandler.DeletePhoto)
	api.POST("/add-comment", commentsHandler.AddComment)
	api.DELETE("/delete-comment", commentsHandler.DeleteComment)
	api.GET("/user", userHandler.GetUser)

	return router
}
