// @title Planets API
// @version 1.0
// @description Backend API for Planets, a collaborative Kanban board
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"planets-be/config"
	"planets-be/internal/database"
	"planets-be/internal/handlers"
	"planets-be/internal/lock"
	"planets-be/internal/logger"
	"planets-be/internal/middleware"
	"planets-be/internal/repository"
	"planets-be/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "planets-be/docs"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger.Configure(cfg.LogLevel, cfg.IsProduction())
	if err := cfg.Validate(); err != nil {
		logger.Log.WithError(err).Fatal("Invalid configuration")
	}

	// Connect to MongoDB
	mongodb, err := database.NewMongoDB(cfg.MongoDBURI, cfg.MongoDBDatabase)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer mongodb.Disconnect()

	// Redis is optional: without it locks are per-process and the limiter is open
	rdb := database.NewRedis(cfg.RedisURL)
	var locker lock.Locker = lock.NewLocalLocker()
	if rdb != nil {
		defer rdb.Close()
		locker = lock.NewRedisLocker(rdb, "planets:lock:", cfg.LockTTL)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(mongodb.Database)
	planetRepo := repository.NewPlanetRepository(mongodb.Database)
	collaboratorRepo := repository.NewCollaboratorRepository(mongodb.Database)
	columnRepo := repository.NewColumnRepository(mongodb.Database)
	taskRepo := repository.NewTaskRepository(mongodb.Database)
	inviteRepo := repository.NewInviteRepository(mongodb.Database)
	statsRepo := repository.NewStatisticsRepository(mongodb.Database)

	// Initialize services
	gate := services.NewGate(collaboratorRepo)
	ordered := services.NewOrderedTasks(taskRepo, columnRepo, locker)
	authService := services.NewAuthService(cfg, userRepo)
	userService := services.NewUserService(userRepo)
	planetService := services.NewPlanetService(planetRepo, collaboratorRepo, columnRepo, inviteRepo, userRepo, gate, ordered)
	columnService := services.NewColumnService(columnRepo, taskRepo, planetRepo, gate, ordered)
	taskService := services.NewTaskService(taskRepo, columnRepo, planetRepo, userRepo, gate, ordered)
	inviteService := services.NewInviteService(inviteRepo, planetRepo, userRepo, collaboratorRepo, gate, cfg.ReservedInviteEmail)
	statsService := services.NewStatisticsService(statsRepo, planetRepo, columnRepo, gate)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService, planetService, inviteService)
	planetHandler := handlers.NewPlanetHandler(planetService, inviteService)
	kanbanHandler := handlers.NewKanbanHandler(columnService, taskService)
	searchHandler := handlers.NewSearchHandler(taskService)
	statsHandler := handlers.NewStatisticsHandler(statsService)

	limiter := &middleware.RateLimiter{
		Client:   rdb,
		Max:      cfg.RateLimitMax,
		Window:   cfg.RateLimitWindow,
		Disabled: cfg.IsTest(),
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg))
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.GET("/health", handlers.Health(mongodb))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public auth routes
	auth := r.Group("/auth")
	{
		auth.POST("/register", limiter.Middleware("register"), authHandler.Register)
		auth.POST("/login", limiter.Middleware("login"), authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)
	}

	// Protected routes
	protected := r.Group("/")
	protected.Use(middleware.Auth(cfg))
	{
		protected.POST("/auth/logout", authHandler.Logout)
		protected.GET("/auth/me", authHandler.GetMe)

		users := protected.Group("/users")
		users.GET("/:userId", userHandler.GetUser)
		users.GET("/:userId/planets", userHandler.GetUserPlanets)
		users.GET("/:userId/invites", userHandler.GetUserInvites)
		users.PUT("/:userId", limiter.Middleware("update-user"), userHandler.UpdateUser)
		users.POST("/invites/:inviteId/accept", limiter.Middleware("accept-invite"), userHandler.AcceptInvite)
		users.POST("/invites/:inviteId/decline", limiter.Middleware("decline-invite"), userHandler.DeclineInvite)

		planets := protected.Group("/planets")
		planets.GET("/:planetId", planetHandler.GetPlanet)
		planets.GET("/:planetId/columns", kanbanHandler.GetColumns)
		planets.GET("/:planetId/tasks/search", searchHandler.SearchTasks)
		planets.GET("/:planetId/statistics", statsHandler.GetStatistics)

		planets.POST("", limiter.Middleware("create-planet"), planetHandler.CreatePlanet)
		planets.POST("/:planetId/columns", limiter.Middleware("create-column"), kanbanHandler.CreateColumn)
		planets.POST("/columns/:columnId/task", limiter.Middleware("create-task"), kanbanHandler.CreateTask)
		planets.POST("/:planetId/invite", limiter.Middleware("send-invite"), planetHandler.SendInvite)

		planets.PUT("/tasks/:taskId", limiter.Middleware("update-task"), kanbanHandler.UpdateTask)
		planets.PUT("/:planetId", limiter.Middleware("update-planet"), planetHandler.UpdatePlanet)
		planets.PUT("/:planetId/users/:userId/promote", limiter.Middleware("promote-user"), planetHandler.PromoteUser)

		planets.DELETE("/:planetId", limiter.Middleware("delete-planet"), planetHandler.DeletePlanet)
		planets.DELETE("/columns/:columnId", limiter.Middleware("delete-column"), kanbanHandler.DeleteColumn)
		planets.DELETE("/tasks/:taskId", limiter.Middleware("delete-task"), kanbanHandler.DeleteTask)
		planets.DELETE("/:planetId/users/:userId", limiter.Middleware("remove-user"), planetHandler.RemoveUser)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A zero interval disables the repair worker
	if cfg.RankRepairInterval > 0 {
		services.StartRankRepairWorker(ctx, cfg.RankRepairInterval, cfg.RequestTimeout, taskRepo, ordered)
	}

	go func() {
		logger.Log.WithFields(logger.Fields{
			"port":     cfg.Port,
			"database": cfg.MongoDBDatabase,
			"redis":    rdb != nil,
		}).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Server shutdown error")
	}
}
