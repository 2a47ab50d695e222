package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/staybook/booking-api/internal/config"
	"github.com/staybook/booking-api/internal/domain/booking"
	"github.com/staybook/booking-api/internal/domain/coupon"
	"github.com/staybook/booking-api/internal/domain/wallet"
	"github.com/staybook/booking-api/internal/middleware"
	"github.com/staybook/booking-api/internal/pkg/database"
	"github.com/staybook/booking-api/internal/pkg/jwt"
	"github.com/staybook/booking-api/internal/pkg/logger"
	pkgresponse "github.com/staybook/booking-api/internal/pkg/response"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
		LogFile:     cfg.LogFile,
		MaxSizeMB:   cfg.LogMaxSizeMB,
		MaxBackups:  cfg.LogMaxBackups,
	})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting booking API")

	db, err := database.NewPostgres(cfg.DatabaseURL, database.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	// ---------- Services ----------
	walletService := wallet.NewService(wallet.NewRepository(db))
	couponService := coupon.NewService(coupon.NewRepository(db))
	bookingService := booking.NewService(
		database.NewTxRunner(db),
		booking.NewRepository(db),
		walletService,
		couponService,
		booking.WithIDAttempts(cfg.BookingIDAttempts),
	)
	bookingHandler := booking.NewHandler(bookingService)

	// ---------- Middleware ----------
	trustedProxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid TRUSTED_PROXIES")
	}
	limitStore, err := middleware.NewRateLimitStore(redis, "booking_create")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create rate limit store")
	}
	createLimiter, err := middleware.RateLimit(limitStore, cfg.BookingRateLimit)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid BOOKING_RATE_LIMIT")
	}

	var jwtService *jwt.Service
	if cfg.ServiceAuthEnabled() {
		jwtService = jwt.NewService(cfg.ServiceTokenSecret, cfg.ServiceTokenTTL)
	} else {
		log.Warn().Msg("SERVICE_TOKEN_SECRET not set, payment updates are unauthenticated")
	}
	serviceAuth := chain(
		middleware.ServiceAuth(jwtService),
		middleware.RequireRole(cfg.ServiceAuthEnabled(), jwt.RoleService, jwt.RoleAdmin),
	)

	r := newRouter(cfg.AllowedOrigins, trustedProxies, bookingHandler, createLimiter, serviceAuth)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

func newRouter(allowedOrigins []string, trustedProxies []*net.IPNet, bookingHandler *booking.Handler, createLimiter, serviceAuth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RealIP(trustedProxies))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(allowedOrigins))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.NotFound(w, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.MethodNotAllowed(w)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{"status": "ok"})
	})

	r.Mount("/api/v1", bookingHandler.Routes(createLimiter, serviceAuth))

	mountLegacyRoutes(r, createLimiter, serviceAuth, bookingHandler.Create, bookingHandler.UpdatePayment)

	return r
}

// mountLegacyRoutes keeps the unversioned paths older clients still call.
func mountLegacyRoutes(r chi.Router, createLimiter, serviceAuth func(http.Handler) http.Handler, create, updatePayment http.HandlerFunc) {
	r.With(createLimiter).Post("/booking", create)
	r.With(serviceAuth).Post("/updatePayment", updatePayment)
}

func chain(mws ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}
