package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/otcheredev/call-panel-gateway/internal/adapters"
	"github.com/otcheredev/call-panel-gateway/internal/auth"
	"github.com/otcheredev/call-panel-gateway/internal/cache"
	"github.com/otcheredev/call-panel-gateway/internal/config"
	"github.com/otcheredev/call-panel-gateway/internal/database"
	"github.com/otcheredev/call-panel-gateway/internal/gateway"
	"github.com/otcheredev/call-panel-gateway/internal/handlers"
	"github.com/otcheredev/call-panel-gateway/internal/metrics"
	"github.com/otcheredev/call-panel-gateway/internal/middleware"
	"github.com/otcheredev/call-panel-gateway/internal/pairing"
	"github.com/otcheredev/call-panel-gateway/internal/repository"
	"github.com/otcheredev/call-panel-gateway/internal/services"
	"github.com/otcheredev/call-panel-gateway/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Initialize logger
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	log.Info().Msg("Starting call panel gateway")

	// Connect to database
	dbConfig := database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
		LogLevel: cfg.Database.LogLevel,
	}

	if err := database.Connect(dbConfig); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	// Pairing code store
	var codeStore cache.Cache
	var redisPing handlers.Pinger
	if cfg.Pairing.Store == "redis" {
		addr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
		redisCache, err := cache.NewRedisCache(addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		codeStore = redisCache
		redisPing = redisCache.Ping
		log.Info().Str("addr", addr).Msg("Pairing codes stored in Redis")
	} else {
		codeStore = cache.NewMemoryCache()
		log.Info().Msg("Pairing codes stored in memory")
	}
	defer codeStore.Close()

	// Initialize repositories
	tenantRepo := repository.NewTenantRepository(database.DB)
	channelRepo := repository.NewChannelRepository(database.DB)
	callRepo := repository.NewCallRepository(database.DB)
	auditRepo := repository.NewAuditRepository(database.DB)

	signer := auth.NewTokenSigner()

	// Realtime gateway and pairing registry reference each other
	hub := gateway.NewHub(channelRepo, signer, gateway.Options{
		AllowedOrigins: cfg.Gateway.AllowedOrigins,
		SendBuffer:     cfg.Gateway.SendBuffer,
		PingInterval:   cfg.Gateway.PingInterval,
		WriteWait:      cfg.Gateway.WriteWait,
		MaxMessageSize: cfg.Gateway.MaxMessageSize,
	})

	registry := pairing.NewRegistry(codeStore, signer, hub, pairing.Options{
		CodeTTL:  cfg.Pairing.CodeTTL,
		TokenTTL: cfg.Pairing.TokenTTL,
	})
	hub.SetCodeRegistrar(registry)

	// Initialize services
	normalizer := adapters.NewNormalizer()
	log.Info().Strs("sources", normalizer.Sources()).Msg("Call sources enabled")

	auditService := services.NewAuditService(auditRepo)
	ingestService := services.NewIngestService(normalizer, callRepo, hub)
	channelService := services.NewChannelService(channelRepo, callRepo, auditService, cfg.History.Limit)
	tenantService := services.NewTenantService(tenantRepo, auditService)

	// Initialize handlers
	validate := handlers.NewValidator()
	healthHandler := handlers.NewHealthHandler(database.Ping, redisPing, hub)
	ingestHandler := handlers.NewIngestHandler(ingestService, cfg.Server.MaxBodyBytes)
	historyHandler := handlers.NewHistoryHandler(channelService, signer)
	pairingHandler := handlers.NewPairingHandler(channelService, registry, auditService, validate)
	channelHandler := handlers.NewChannelHandler(channelService, validate)
	adminHandler := handlers.NewAdminHandler(tenantService, auditRepo, validate)

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(metrics.HTTPMiddleware)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   []string{"Content-Length", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health endpoints (no authentication required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	if cfg.Metrics.Enabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	// Display sockets; the upgrade needs the raw ResponseWriter, so no Compress here
	r.Get("/ws", hub.ServeWS)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.Compress(5))
		if cfg.RateLimit.Enabled {
			r.Use(middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst).Handler)
		}

		// Upstream queue systems
		r.With(middleware.ChannelAuth(channelService, auditService)).Post("/ingest", ingestHandler.Ingest)

		// Displays catching up after a reconnect
		r.Get("/channels/{slug}/history", historyHandler.History)

		// Tenant self-service
		r.Route("/tenant/channels", func(r chi.Router) {
			r.Use(middleware.TenantAuth(tenantService))

			r.Get("/", channelHandler.List)
			r.Post("/", channelHandler.Create)
			r.Patch("/{slug}", channelHandler.Update)
			r.Delete("/{slug}", channelHandler.Delete)
			r.Post("/{slug}/rotate-key", channelHandler.RotateKey)
		})

		// System administration
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.AdminKey(cfg.Auth.AdminKey))

			r.Post("/pairing/validate", pairingHandler.Validate)

			r.Post("/tenants", adminHandler.CreateTenant)
			r.Get("/tenants", adminHandler.ListTenants)
			r.Post("/tenants/{id}/rotate-key", adminHandler.RotateTenantKey)
			r.Patch("/tenants/{id}/status", adminHandler.SetTenantStatus)
			r.Get("/tenants/{id}/audit-logs", adminHandler.ListAuditLogs)
		})
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown; hijacked sockets are not tracked by Shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	hub.Close()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
