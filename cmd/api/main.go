package main

import (
	"time"

	"go.uber.org/zap"

	"rfpflow/internal/ai"
	"rfpflow/internal/api"
	"rfpflow/internal/config"
	"rfpflow/internal/email"
	"rfpflow/internal/httpserver"
	"rfpflow/internal/mq"
	"rfpflow/internal/repository"
	"rfpflow/internal/service"
	"rfpflow/internal/util"
	"rfpflow/pkg/db"
	"rfpflow/pkg/logger"
	redisclient "rfpflow/pkg/redis"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	// Init DB
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	// Init Redis
	rdb := redisclient.NewClient(cfg.Redis)
	defer rdb.Close()

	// Init RabbitMQ Publisher
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("failed to init publisher", zap.Error(err))
	}
	defer publisher.Close()

	// Init Repositories
	userRepo := repository.NewUserRepository(dbConn)
	rfpRepo := repository.NewRFPRepository(dbConn)
	vendorRepo := repository.NewVendorRepository(dbConn)
	proposalRepo := repository.NewProposalRepository(dbConn)
	linkRepo := repository.NewRFPVendorRepository(dbConn)

	// Init AI client and SMTP sender
	aiClient := ai.NewClient(cfg.AI, log)
	mailer := email.NewSender(cfg.SMTP, log)
	lock := util.NewProcessLock(rdb, time.Duration(cfg.Worker.LockTTLSeconds)*time.Second)

	// Init Services
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret)
	vendorService := service.NewVendorService(vendorRepo)
	rfpService := service.NewRFPService(rfpRepo, linkRepo, vendorRepo, proposalRepo, aiClient, mailer, log)
	proposalService := service.NewProposalService(
		proposalRepo, rfpRepo, vendorRepo, aiClient, lock, publisher, cfg.Worker.PoolSize, log)
	comparisonService := service.NewComparisonService(rfpRepo, proposalRepo, aiClient, log)
	inboundService := service.NewInboundEmailService(proposalService, log)

	// Init Handlers
	authHandler := api.NewAuthHandler(authService)
	rfpHandler := api.NewRFPHandler(rfpService, comparisonService)
	vendorHandler := api.NewVendorHandler(vendorService)
	proposalHandler := api.NewProposalHandler(proposalService)
	emailHandler := api.NewEmailHandler(inboundService, linkRepo)

	// Router
	router := httpserver.NewRouter(
		authHandler, rfpHandler, vendorHandler, proposalHandler, emailHandler, cfg.JWT.Secret)

	log.Info("Starting API server", zap.String("port", cfg.Server.Port))
	if err := router.Run(cfg.Server.Port); err != nil {
		log.Fatal("server start failed", zap.Error(err))
	}
}
