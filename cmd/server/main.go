// Package main runs the photography platform HTTP API with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fotofolio/backend/config"
	"github.com/fotofolio/backend/internal/access"
	"github.com/fotofolio/backend/internal/albums"
	"github.com/fotofolio/backend/internal/auth"
	"github.com/fotofolio/backend/internal/email"
	"github.com/fotofolio/backend/internal/invites"
	"github.com/fotofolio/backend/internal/middleware"
	"github.com/fotofolio/backend/internal/models"
	"github.com/fotofolio/backend/internal/photos"
	"github.com/fotofolio/backend/internal/projects"
	"github.com/fotofolio/backend/internal/worker"
	"github.com/fotofolio/backend/pkg/database"
	"github.com/fotofolio/backend/pkg/queue"
	"github.com/fotofolio/backend/pkg/redis"
	"github.com/fotofolio/backend/pkg/response"
	"github.com/fotofolio/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	s3Client, err := storage.NewS3(ctx, storage.S3Config{
		Region:               cfg.AWS.Region,
		AccessKeyID:          cfg.AWS.AccessKeyID,
		SecretAccessKey:      cfg.AWS.SecretAccessKey,
		PhotosBucket:         cfg.AWS.PhotosBucket,
		PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
	}, logger)
	if err != nil {
		logger.Fatal("s3", zap.Error(err))
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpireMin, cfg.JWT.RefreshExpireHours)
	emailQueue := queue.NewQueue(rdb.Client, logger)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, emailQueue, cfg.App.FrontendURL, logger)
	googleHandler := auth.NewGoogleHandler(authRepo, jwtService,
		cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL,
		cfg.App.FrontendURL, logger)

	// Access grants
	grantRepo := access.NewRepository(pool)
	evaluator := access.NewEvaluator(grantRepo)

	// Projects
	projectRepo := projects.NewRepository(pool, grantRepo)
	projectHandler := projects.NewHandler(projectRepo, evaluator, logger)

	// Albums
	albumRepo := albums.NewRepository(pool)
	albumHandler := albums.NewHandler(albumRepo, evaluator, logger)

	// Photos
	photoRepo := photos.NewRepository(pool)
	photoHandler := photos.NewHandler(photoRepo, evaluator, s3Client, logger)

	// Invites
	inviteRepo := invites.NewRepository(pool, grantRepo)
	inviteHandler := invites.NewHandler(inviteRepo, evaluator, authRepo, jwtService,
		emailQueue, cfg.App.FrontendURL, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(strings.Split(cfg.Server.CORSAllowedOrigins, ",")))
	router.Use(middleware.RequestLogger(logger))
	if cfg.Server.RateLimit != "" {
		rl, err := middleware.RateLimit(rdb.Client, cfg.Server.RateLimit, logger)
		if err != nil {
			logger.Fatal("rate limit", zap.Error(err))
		}
		router.Use(rl)
	}

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	v1 := router.Group("/api/v1")

	// Auth (public)
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/check-email", authHandler.CheckEmail)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/verify-email", authHandler.VerifyEmail)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.GET("/google", googleHandler.Redirect)
		authGroup.GET("/google/callback", googleHandler.Callback)
		authGroup.POST("/google/role-selection", googleHandler.RoleSelection)
	}

	// Invite redemption (public: the redeemer has no session yet)
	v1.GET("/invites/validate/:token", inviteHandler.Validate)
	v1.POST("/invites/add-project-customer-and-register", inviteHandler.AcceptAndRegister)

	// Protected API (JWT required)
	api := v1.Group("")
	api.Use(middleware.JWTAuth(jwtService, authRepo))
	{
		api.GET("/auth/profile", authHandler.Profile)
		api.POST("/invites/accept-project-invite", inviteHandler.Accept)

		// Tenant-scoped resources
		tenant := api.Group("")
		tenant.Use(access.RequireTenantMiddleware())
		{
			tenant.POST("/projects", middleware.RequireRole(models.RoleEnterprise), projectHandler.Create)
			tenant.GET("/projects", projectHandler.List)
			tenant.GET("/projects/:id", projectHandler.Get)
			tenant.PUT("/projects/:id", projectHandler.Update)
			tenant.DELETE("/projects/:id", projectHandler.Delete)
			tenant.POST("/projects/:id/collaborators", projectHandler.AddCollaborator)

			tenant.POST("/albums", albumHandler.Create)
			tenant.PUT("/albums/batch", albumHandler.Batch)
			tenant.GET("/albums/project/:projectId", albumHandler.List)
			tenant.GET("/albums/:id", albumHandler.Get)
			tenant.PUT("/albums/:id", albumHandler.Update)
			tenant.DELETE("/albums/:id", albumHandler.Delete)

			tenant.POST("/photos/upload/:albumId", photoHandler.Upload)
			tenant.POST("/photos/bulk-upload/:albumId", photoHandler.BulkUpload)
			tenant.GET("/photos/album/:albumId", photoHandler.List)
			tenant.GET("/photos/:id", photoHandler.Get)
			tenant.GET("/photos/:id/signed-url", photoHandler.SignedURL)
			tenant.DELETE("/photos/:id", photoHandler.Delete)

			tenant.POST("/invites/add-project-customer", inviteHandler.Issue)
			tenant.GET("/invites", inviteHandler.List)
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// In-process email worker; a dedicated deployment can run cmd/worker
	// instead and both drain the same queue.
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	sender := email.NewSender(cfg.Email, logger)
	processor := worker.NewEmailProcessor(emailQueue, sender, logger)
	go processor.Run(workerCtx)

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
