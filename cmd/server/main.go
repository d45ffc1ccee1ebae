package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gatherly/config"
	authadapter "gatherly/internal/adapters/auth"
	"gatherly/internal/adapters/email"
	"gatherly/internal/adapters/mq"
	delivery "gatherly/internal/delivery/http"
	"gatherly/internal/delivery/http/controllers"
	"gatherly/internal/delivery/http/middleware"
	"gatherly/internal/domain"
	"gatherly/internal/repository/postgres"
	"gatherly/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := config.NewLogger()

	db, err := postgres.Connect(cfg.DBUrl)
	if err != nil {
		logger.Error("database connection failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.RunMigrations(db); err != nil {
		logger.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	// Repositories
	eventRepo := postgres.NewEventRepository(db)
	rsvpRepo := postgres.NewRSVPRepository(db)
	approvalRepo := postgres.NewApprovalRepository(db)
	attendeeRepo := postgres.NewAttendeeRepository(db)
	invitationRepo := postgres.NewInvitationRepository(db)
	userRepo := postgres.NewUserRepository(db)

	// Adapters
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.MailerProvider,
		FromAddress: cfg.MailerFromAddress,
		FromName:    cfg.MailerFromName,
		SES: email.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretAccessKey,
		},
	})
	if err != nil {
		logger.Error("mailer init failed", "err", err)
		os.Exit(1)
	}

	var publisher domain.MessagePublisher = mq.NoopPublisher{}
	if cfg.AMQPUrl != "" {
		conn, err := mq.Connect(cfg.AMQPUrl)
		if err != nil {
			logger.Error("rabbitmq connection failed", "err", err)
			os.Exit(1)
		}
		defer conn.Close()
		p, err := mq.NewPublisher(conn, logger)
		if err != nil {
			logger.Error("rabbitmq publisher init failed", "err", err)
			os.Exit(1)
		}
		defer p.Close()
		publisher = p
	} else {
		logger.Warn("AMQP_URL not set, registration messages will not be published")
	}

	verifier := authadapter.NewJWTVerifier(cfg.JWTSecret)

	// Services. One lock set serializes all registration-affecting writes
	// per event across RSVPs, approvals and check-ins.
	locks := services.NewEventLocks()
	rules := make(map[string]domain.RateLimitRule, len(cfg.RateLimits))
	for action, rule := range cfg.RateLimits {
		rules[action] = domain.RateLimitRule{Limit: rule.Limit, Window: rule.Window}
	}
	limiter := services.NewSlidingWindowLimiter(rules, nil)

	emailService := services.NewEmailService(mailer)
	access := services.NewAccessPolicy(invitationRepo, approvalRepo)
	capacity := services.NewCapacityAllocator(rsvpRepo, approvalRepo)
	roster := services.NewRosterService(eventRepo, attendeeRepo, userRepo, locks, publisher, logger)
	registration := services.NewRegistrationService(eventRepo, rsvpRepo, userRepo, roster, access, capacity, locks, emailService, publisher, logger)
	approval := services.NewApprovalService(eventRepo, approvalRepo, rsvpRepo, userRepo, roster, capacity, locks, emailService, publisher, logger)

	// Delivery
	mux := delivery.NewRouter(
		logger,
		verifier,
		limiter,
		controllers.NewRegistrationController(logger, registration),
		controllers.NewApprovalController(logger, approval),
		controllers.NewRosterController(logger, roster),
	)
	handler := middleware.CORS(cfg.CORSAllowedOrigins, middleware.LoggingMiddleware(logger, mux))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "err", err)
	}
	logger.Info("server stopped")
}
