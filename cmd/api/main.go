package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"attendance/internal/aggregate"
	"attendance/internal/config"
	"attendance/internal/geo"
	"attendance/internal/handler"
	"attendance/internal/httpmiddleware"
	"attendance/internal/queue"
	"attendance/internal/roster"
	"attendance/internal/session"
	"attendance/internal/store"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	var (
		db           *store.DB
		sessionStore session.Store
		aggStore     aggregate.Store
		rosterStore  roster.Store
	)

	if cfg.StoreBackend == "memory" {
		log.Println("using in-memory stores (STORE_BACKEND=memory); data does not survive restarts")
		sessionStore = session.NewMemStore()
		aggStore = aggregate.NewMemStore()
		mem := roster.NewMemStore()
		mem.AddFaculty(roster.Faculty{EmpID: "FAC001", Name: "Dev Faculty", Password: "changeme", Role: "faculty"})
		rosterStore = mem
	} else {
		var err error
		db, err = store.NewDB(cfg.DatabaseURL)
		if err != nil {
			// Storage unreachable at startup is fatal; serving without a
			// store would answer every request with errors.
			return err
		}
		defer db.Close()
		sessionStore = session.NewRepository(db.Client)
		aggStore = aggregate.NewRepository(db.Client)
		rosterStore = roster.NewRepository(db.Client)
	}

	var redisClient *store.Redis
	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		redisClient = store.NewRedis(cfg.RedisAddr)
		defer redisClient.Close()
		q = queue.NewRedisQueue(redisClient.Client, redisClient.EventsKey)
	}

	maintainer := aggregate.NewMaintainer(aggStore)
	sessions := session.NewService(sessionStore, rosterStore, maintainer, cfg.SessionWindow, cfg.MarkRetries)

	var rooms geo.RoomTable
	if cfg.RoomsFile != "" {
		var err error
		rooms, err = geo.LoadRooms(cfg.RoomsFile)
		if err != nil {
			log.Printf("warning: room coordinates not loaded: %v", err)
		}
	}

	h := handler.New(sessions, maintainer, rosterStore, rooms, q, cfg.JWTIssuer, cfg.JWTSigningKey, cfg.AccessTTL)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewLimiter(cfg.RateLimitPerMin, cfg.RateLimitBurst).Middleware("/healthz", "/metrics"))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", healthHandler(cfg, db, redisClient))

	h.Routes(r)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}

// healthHandler reports readiness of the backends this process actually
// uses: Redis only matters when it backs the queue, and the database only
// when the store is not in-memory.
func healthHandler(cfg config.App, db *store.DB, redisClient *store.Redis) gin.HandlerFunc {
	return func(c *gin.Context) {
		redisHealthy := cfg.QueueBackend != "redis" || redisClient.Healthy(c.Request.Context())
		dbHealthy := db != nil || cfg.StoreBackend == "memory"

		status := http.StatusOK
		statusText := "ok"
		if !redisHealthy || !dbHealthy {
			status = http.StatusServiceUnavailable
			statusText = "degraded"
		}
		c.JSON(status, gin.H{"status": statusText, "redis": redisHealthy, "db": dbHealthy})
	}
}

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// Only add HSTS in production
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
