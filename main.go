package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/YashRana03/natours/config"
	"github.com/YashRana03/natours/controllers"
	"github.com/YashRana03/natours/middleware"
	"github.com/YashRana03/natours/models"
	"github.com/YashRana03/natours/store"
	"github.com/YashRana03/natours/utils"
)

func main() {
	// Load environment variables
	_ = godotenv.Load()

	cfg := config.Load()
	setupLogger(cfg)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to MongoDB
	db, err := config.ConnectDB(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	slog.Info("connected to MongoDB", "db", cfg.MongoDB)

	users := store.NewUsers(db)
	tours := store.NewTours(db)

	idxCtx, idxCancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = users.EnsureIndexes(idxCtx)
	idxCancel()
	if err != nil {
		slog.Error("index setup failed", "error", err)
		os.Exit(1)
	}

	mailer := utils.SMTPMailer{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.EmailFrom,
	}

	authController := controllers.NewAuth(users, mailer, cfg)
	tourController := controllers.NewTours(tours)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(), middleware.ErrorHandler())

	// Unknown paths get the same envelope as every other operational error.
	router.NoRoute(func(c *gin.Context) {
		_ = c.Error(utils.NewAppError(
			fmt.Sprintf("Can't find %s on this server", c.Request.URL.Path),
			http.StatusNotFound,
		))
	})

	protect := middleware.Protect(users, cfg.JWTSecret)

	api := router.Group("/api/v1")
	{
		auth := api.Group("/users")
		auth.Use(middleware.RateLimit(5, 10))
		{
			auth.POST("/signup", authController.Signup)
			auth.POST("/login", authController.Login)
			auth.POST("/forgotPassword", authController.ForgotPassword)
			auth.PATCH("/resetPassword/:token", authController.ResetPassword)
		}

		toursGroup := api.Group("/tours")
		{
			toursGroup.GET("", protect, tourController.GetAllTours)
			toursGroup.POST("", tourController.CreateTour)
			toursGroup.GET("/stats", tourController.GetTourStats)
			toursGroup.GET("/:id", tourController.GetTour)
			toursGroup.PATCH("/:id", tourController.UpdateTour)
			toursGroup.DELETE("/:id",
				protect,
				middleware.RestrictTo(models.RoleAdmin, models.RoleLeadGuide),
				tourController.DeleteTour,
			)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine for graceful shutdown
	go func() {
		slog.Info("server started", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}

func setupLogger(cfg config.Config) {
	var handler slog.Handler
	if cfg.Env == "production" {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	} else {
		handler = slog.NewTextHandler(os.Stdout, nil)
	}
	slog.SetDefault(slog.New(handler))
}
