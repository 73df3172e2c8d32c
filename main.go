package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sarveshwaran777333/Water-buddy/cache"
	"github.com/sarveshwaran777333/Water-buddy/config"
	"github.com/sarveshwaran777333/Water-buddy/db"
	"github.com/sarveshwaran777333/Water-buddy/handlers"
	"github.com/sarveshwaran777333/Water-buddy/middleware"
	"github.com/sarveshwaran777333/Water-buddy/routes"
	"github.com/sarveshwaran777333/Water-buddy/services"
	"github.com/sarveshwaran777333/Water-buddy/session"
	"github.com/sarveshwaran777333/Water-buddy/store"
	"github.com/sarveshwaran777333/Water-buddy/utils"
)

func main() {
	utils.InitLogger()
	defer utils.Logger.Sync()
	utils.InitMetrics()

	cfg := config.Load()
	utils.Logger.Info("starting_application",
		zap.String("store_backend", cfg.StoreBackend),
	)

	adapter, err := openStore(cfg)
	if err != nil {
		utils.Logger.Fatal("store_init_failed", zap.Error(err))
	}

	// Redis is optional: without it the service runs with no response cache
	// and no rate limiting.
	if err := cache.InitRedis(cfg, utils.Logger); err != nil {
		utils.Logger.Warn("running_without_redis", zap.Error(err))
		cache.Client = nil
	}

	repo := services.NewRepository(adapter, utils.Logger)
	weather := services.NewOpenMeteoProvider(cfg, utils.Logger)
	accounts := services.NewAccountService(repo, utils.Logger)
	hydration := services.NewHydrationService(repo, weather, utils.Logger)
	sessions := session.NewManager()

	h := handlers.New(cfg, repo, accounts, hydration, weather, sessions, utils.Logger)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-Cache"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if cfg.CSRFEnabled {
		r.Use(middleware.CSRFProtection(cfg.CSRFAuthKey))
	}

	routes.Register(r, h, cfg)

	startServer(r, cfg)
}

// openStore picks the persistence backend from config.
func openStore(cfg *config.Config) (store.Adapter, error) {
	switch cfg.StoreBackend {
	case "memory":
		return store.NewMemStore(), nil
	case "file":
		return store.NewFileStore(cfg.StoreFile)
	case "rest":
		if cfg.StoreBaseURL == "" {
			return nil, fmt.Errorf("STORE_BASE_URL is required for the rest backend")
		}
		return store.NewRESTStore(cfg.StoreBaseURL, cfg.StoreTimeout), nil
	case "postgres":
		gormDB, err := db.Connect(cfg)
		if err != nil {
			return nil, err
		}
		return store.NewDBStore(gormDB)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func startServer(router *gin.Engine, cfg *config.Config) {
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	utils.Logger.Info("starting_http_server", zap.String("port", cfg.Port))
	fmt.Printf("WaterBuddy backend listening on http://localhost:%s\n", cfg.Port)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			utils.Logger.Fatal("http_server_failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	utils.Logger.Info("shutting_down_server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		utils.Logger.Fatal("server_forced_shutdown", zap.Error(err))
	}

	cache.Close()
	utils.Logger.Info("server_stopped")
}
