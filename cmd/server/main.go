// @title SponsorHub API
// @version 1.0
// @description Typed procedure API for event hosting and sponsorship.
// @BasePath /
package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"

	"sponsorhub/config"
	_ "sponsorhub/docs"
	"sponsorhub/internal/adapters/email"
	"sponsorhub/internal/adapters/identity"
	"sponsorhub/internal/adapters/objectstore"
	deliveryhttp "sponsorhub/internal/delivery/http"
	"sponsorhub/internal/delivery/http/middleware"
	"sponsorhub/internal/domain"
	"sponsorhub/internal/metrics"
	"sponsorhub/internal/procedures"
	"sponsorhub/internal/repository/postgres"
	"sponsorhub/internal/rpc"
	"sponsorhub/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg)

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to reach database", "error", err)
		os.Exit(1)
	}

	store := &domain.Store{
		Users:             postgres.NewUserRepository(db),
		Organizations:     postgres.NewOrganizationRepository(db),
		Memberships:       postgres.NewMembershipRepository(db),
		Events:            postgres.NewEventRepository(db),
		Sponsorships:      postgres.NewSponsorshipRepository(db),
		Media:             postgres.NewMediaRepository(db),
		VerificationCodes: postgres.NewVerificationCodeRepository(db),
		Onboarding:        postgres.NewOnboardingRepository(db),
	}

	provider := identity.NewProvider(identity.Config{
		CookieName:    cfg.SessionCookieName,
		Secret:        cfg.SessionSecret,
		BaseURL:       cfg.IdentityProviderURL,
		APIKey:        cfg.IdentityProviderAPIKey,
		RefreshWindow: cfg.SessionRefreshWindow,
		SecureCookies: cfg.SecureCookies,
	}, nil, logger)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretAccessKey,
		},
	}, logger)
	if err != nil {
		logger.Error("failed to create mailer", "error", err)
		os.Exit(1)
	}
	emailSvc := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)
	onboardingSvc := services.NewOnboardingService(store, provider, emailSvc, cfg.VerificationCodeTTL, logger)

	signer := objectstore.NewS3Signer(objectstore.S3Config{
		Region:          cfg.S3Region,
		Bucket:          cfg.S3Bucket,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
	}, cfg.UploadURLTTL)

	router := rpc.NewRouter(logger)
	procedures.RegisterUserProcedures(router, provider)
	procedures.RegisterEventProcedures(router, cfg.SearchMaxPageSize)
	procedures.RegisterSponsorshipProcedures(router)
	procedures.RegisterMediaProcedures(router, signer, cfg.UploadMaxBytes)
	procedures.RegisterOnboardingProcedures(router, onboardingSvc)
	logger.Info("procedures registered", "count", len(router.ProcedureNames()))

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	rpcHandler := &rpc.Handler{
		Router:   router,
		Builder:  &rpc.Builder{Provider: provider, Store: store, Logger: logger},
		Recorder: collector,
	}

	limiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig(), logger)
	defer limiter.Stop()

	mux := deliveryhttp.NewRouter(rpcHandler, metrics.Handler(registry))
	var handler http.Handler = mux
	handler = limiter.Middleware(handler)
	handler = middleware.Logging(logger, handler)
	handler = middleware.RequestID(handler)
	handler = middleware.CORS(cfg.CORSAllowedOrigins, handler)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}
