// cmd/server/main.go - ShopLink Push Backend Server
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shoplink-push/internal/config"
	"shoplink-push/internal/database"
	"shoplink-push/internal/gateway"
	"shoplink-push/internal/handlers"
	"shoplink-push/internal/middleware"
	"shoplink-push/internal/services"
	"shoplink-push/internal/store"
	"shoplink-push/internal/websocket"
	"shoplink-push/pkg/auth"
	"shoplink-push/pkg/validator"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var (
	serverStartTime = time.Now()

	appVersion = "1.0.0"
	buildTime  = "unknown"
	gitCommit  = "unknown"
)

func main() {
	// .env is used in development; real deployments set the environment
	if err := godotenv.Load(); err != nil {
		logrus.Info(".env file not found, using environment variables")
	}

	cfg := config.Load()
	setupLogging(cfg)
	printStartupInfo(cfg)

	logrus.Info("Connecting to MongoDB...")
	db, err := database.NewMongoDB(cfg)
	if err != nil {
		logrus.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logrus.Warnf("Error disconnecting from MongoDB: %v", err)
		}
	}()

	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.CreateIndexes(indexCtx); err != nil {
		logrus.Warnf("Failed to create some indexes: %v", err)
	}
	cancelIndexes()

	validator.Init()

	jwtManager := auth.NewJWTManager(
		cfg.JWTSecret,
		time.Duration(cfg.JWTExpiration)*time.Hour,
	)

	// Stores over MongoDB collections
	tokenStore := store.NewTokenStore(db.Database.Collection("device_tokens"))
	broadcastStore := store.NewBroadcastStore(db.Database.Collection("broadcasts"))
	alertStore := store.NewAlertStore(db.Database.Collection("admin_alerts"))
	ledgerStore := store.NewLedgerStore(db.Database.Collection("ledger_snapshots"))
	userDirectory := store.NewUserDirectory(db.Database.Collection("users"))

	// Outbound push gateway
	pushGateway := gateway.NewClient(cfg.PushGatewayURL, cfg.PushGatewayToken)

	// WebSocket hub for the live admin alert feed
	wsHub := websocket.NewHub()
	go wsHub.Run()
	defer wsHub.Shutdown()

	// Services
	broadcastService := services.NewBroadcastService(tokenStore, broadcastStore, pushGateway)
	alertService := services.NewAdminAlertService(tokenStore, alertStore, userDirectory, pushGateway, wsHub)
	diagnosticsService := services.NewDiagnosticsService(tokenStore, pushGateway)

	// Handlers
	notificationHandler := handlers.NewNotificationHandler(tokenStore, alertService)
	broadcastHandler := handlers.NewBroadcastHandler(broadcastService, diagnosticsService)
	diagnosticsHandler := handlers.NewDiagnosticsHandler(diagnosticsService)
	eventsHandler := handlers.NewEventsHandler(alertService)
	ledgerHandler := handlers.NewLedgerHandler(ledgerStore)
	wsHandler := handlers.NewWebSocketHandler(wsHub, jwtManager)

	router := setupRouter(cfg, jwtManager, wsHub, notificationHandler, broadcastHandler, diagnosticsHandler, eventsHandler, ledgerHandler, wsHandler)

	srv := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	go func() {
		logrus.Infof("ShopLink Push Backend v%s starting on http://%s:%s", appVersion, cfg.Host, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	wsHub.Publish(websocket.Event{
		Type: "system",
		Data: map[string]interface{}{"message": "Server is shutting down"},
	})

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Warnf("Server forced to shutdown: %v", err)
	} else {
		logrus.Info("Server gracefully stopped")
	}
}

// setupLogging configures logrus and gin for the environment
func setupLogging(cfg *config.Config) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
		logrus.SetFormatter(&logrus.JSONFormatter{})
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		gin.SetMode(gin.DebugMode)
		logrus.SetLevel(logrus.DebugLevel)
	}
}

// printStartupInfo logs the effective configuration at startup
func printStartupInfo(cfg *config.Config) {
	logrus.WithFields(logrus.Fields{
		"version":     appVersion,
		"build_time":  buildTime,
		"git_commit":  gitCommit,
		"environment": cfg.Env,
		"host":        cfg.Host,
		"port":        cfg.Port,
		"database":    cfg.DatabaseName,
		"gateway":     cfg.PushGatewayURL,
	}).Info("ShopLink Push Backend")
}

// setupRouter wires all routes
func setupRouter(
	cfg *config.Config,
	jwtManager *auth.JWTManager,
	wsHub *websocket.Hub,
	notificationHandler *handlers.NotificationHandler,
	broadcastHandler *handlers.BroadcastHandler,
	diagnosticsHandler *handlers.DiagnosticsHandler,
	eventsHandler *handlers.EventsHandler,
	ledgerHandler *handlers.LedgerHandler,
	wsHandler *handlers.WebSocketHandler,
) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())

	corsConfig := cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	if cfg.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimitRequests, time.Duration(cfg.RateLimitWindow)*time.Second)
		router.Use(limiter.RateLimit())
	}

	// WebSocket endpoint for the live admin alert feed
	router.GET("/ws", wsHandler.HandleWebSocket)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"uptime":    time.Since(serverStartTime).String(),
			"version":   appVersion,
			"stats": gin.H{
				"websocket_connections": wsHub.ConnectionsCount(),
			},
		})
	})

	v1 := router.Group("/api/v1")
	{
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(jwtManager))

		// Device enrollment and domain event relay
		protected.POST("/push/register-device", notificationHandler.RegisterDevice)
		protected.POST("/events/order-placed", eventsHandler.OrderPlaced)

		// Opaque per-user notification list backup
		protected.GET("/ledger", ledgerHandler.GetSnapshot)
		protected.PUT("/ledger", ledgerHandler.PutSnapshot)

		// Admin alert feed
		elevated := protected.Group("")
		elevated.Use(middleware.RequireElevated())
		elevated.GET("/alerts", notificationHandler.GetAlerts)
		elevated.PUT("/alerts/:id/read", notificationHandler.MarkAlertRead)

		// Admin operations
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(jwtManager))
		admin.Use(middleware.RequireElevated())

		admin.POST("/broadcasts", broadcastHandler.SendBroadcast)
		admin.GET("/broadcasts", broadcastHandler.ListBroadcasts)
		admin.POST("/alerts", eventsHandler.TriggerAlert)
		admin.GET("/diagnostics/reachability", diagnosticsHandler.Reachability)
		admin.GET("/diagnostics/token-health/:user_id", diagnosticsHandler.TokenHealth)
		admin.POST("/diagnostics/test-send", diagnosticsHandler.TestSend)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Endpoint not found",
			"path":  c.Request.URL.Path,
		})
	})

	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error":  "Method not allowed",
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		})
	})

	return router
}
