package handler

import (
	"net/http"

	"blog_backend/internal/auth"
	"blog_backend/internal/config"
	"blog_backend/internal/db"
	"blog_backend/internal/events"
	"blog_backend/internal/middleware"
	"blog_backend/internal/observability"
	"blog_backend/internal/post"
	"blog_backend/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SetupHandler initializes all dependencies and routes
func SetupHandler(gdb *gorm.DB, publisher events.Publisher, cfg *config.Config, metrics *observability.Metrics, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.Default()
	r.Use(middleware.PrometheusMiddleware(metrics))

	tokens := auth.NewTokenService(cfg.JWT.Secret, cfg.JWT.TTL)

	// Initialize repositories
	userRepo := user.NewUserRepository()
	postRepo := post.NewPostRepository()

	// Initialize services
	userService := user.NewUserService(userRepo, gdb, tokens)
	postService := post.NewPostService(postRepo, gdb, publisher)

	// Initialize controllers
	userController := user.NewUserController(userService, metrics)
	postController := post.NewPostController(postService, metrics)

	authMiddleware := middleware.AuthMiddleware(tokens, func(reason string) {
		metrics.AuthRejectionsTotal.WithLabelValues(reason).Inc()
	})

	setupRoutes(r, userController, postController, authMiddleware)
	setupOpsRoutes(r, gdb, gatherer)

	return r
}

// setupRoutes configures all application routes
func setupRoutes(r *gin.Engine, userCtrl *user.UserController, postCtrl *post.PostController, authMiddleware gin.HandlerFunc) {
	// Public routes
	userCtrl.SetupRoutes(r)

	// Protected routes
	postCtrl.SetupRoutes(r, authMiddleware)
}

func setupOpsRoutes(r *gin.Engine, gdb *gorm.DB, gatherer prometheus.Gatherer) {
	r.GET("/healthz", func(c *gin.Context) {
		if err := db.Ping(gdb); err != nil {
			logrus.WithError(err).Warn("Health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Expose /metrics endpoint for Prometheus to scrape
	metricsHandler := promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	r.GET("/metrics", gin.WrapH(metricsHandler))
}
