package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/mek0124/TrackMasterPro/internal/cache"
	"github.com/mek0124/TrackMasterPro/internal/config"
	"github.com/mek0124/TrackMasterPro/internal/delivery/http/v1"
	"github.com/mek0124/TrackMasterPro/internal/realtime"
	"github.com/mek0124/TrackMasterPro/internal/services"
	"github.com/mek0124/TrackMasterPro/internal/storage"
)

func MustListenAndServeHTTP() {
	cfg := config.Global()
	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	httpCfg := cfg.HTTP

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	registerRoutes(router)

	server := &http.Server{
		Addr:    net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler: router,
	}

	go func() {
		globalLogger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			globalLogger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			panic(err)
		}
	}()

	// Wait for the interrupt signal to gracefully
	// shut down the server with a timeout of 5 seconds.
	quit := make(chan os.Signal, 1)
	// kill (no params) by default sends syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	// kill -9 is syscall.SIGKILL but can't be caught, so don't need to add it
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	globalLogger.Info().
		Msg("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		panic(err)
	}
	globalLogger.Info().Msg("shut down http server")
}

func registerRoutes(router gin.IRouter) {
	cfg := config.Global()
	jwtCfg := cfg.JWT

	userStore := storage.NewUserStore(globalLogger, globalPostgresPool)
	taskStore := storage.NewTaskStore(globalLogger, globalPostgresPool)
	taskLists := cache.NewTaskLists(globalLogger, globalRedisClient, cfg.Redis.TaskListTTL)
	registry := realtime.NewRegistry(globalLogger)

	authService := services.NewAuthService(
		globalLogger,
		userStore,
		jwtCfg.Issuer,
		[]byte(jwtCfg.SigningKey),
		jwtCfg.AccessTokenTTL,
	)
	taskService := services.NewTaskService(globalLogger, taskStore, taskLists)

	v1Handler := v1.New(
		globalLogger,
		authService,
		taskService,
		registry,
		cfg.CORS.AllowedOrigins,
	)

	router.GET("/ws/:userId", v1Handler.HandleWebSocket)

	api := router.Group("/api/v1")

	authRouter := api.Group("/auth")
	loginLimiter := v1.RateLimiter(rate.Limit(cfg.HTTP.LoginRateLimit), cfg.HTTP.LoginRateBurst)
	authRouter.POST("/register", v1Handler.HandleRegister)
	authRouter.POST("/login", loginLimiter, v1Handler.HandleLogin)

	taskRouter := api.Group("/tasks", v1Handler.HandleAuthMiddleware)
	taskRouter.POST("", v1Handler.HandleCreateTask)
	taskRouter.POST("/:userId/all", v1Handler.HandleListTasks)
	taskRouter.PUT("/:taskId", v1Handler.HandleUpdateTask)
	taskRouter.DELETE("/:taskId", v1Handler.HandleDeleteTask)
}
