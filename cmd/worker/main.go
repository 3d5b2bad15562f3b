package main

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"rfpflow/internal/ai"
	"rfpflow/internal/config"
	"rfpflow/internal/mq"
	"rfpflow/internal/mqhandler"
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

	log.Info("Starting worker service...")

	// Init DB
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	// Init Redis
	rdb := redisclient.NewClient(cfg.Redis)
	defer rdb.Close()

	lock := util.NewProcessLock(rdb, time.Duration(cfg.Worker.LockTTLSeconds)*time.Second)

	// Init RabbitMQ Publisher (used when re-enqueueing pending work)
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("failed to init publisher", zap.Error(err))
	}
	defer publisher.Close()

	// Init Repositories
	rfpRepo := repository.NewRFPRepository(dbConn)
	vendorRepo := repository.NewVendorRepository(dbConn)
	proposalRepo := repository.NewProposalRepository(dbConn)

	// Init Services
	aiClient := ai.NewClient(cfg.AI, log)
	proposalService := service.NewProposalService(
		proposalRepo, rfpRepo, vendorRepo, aiClient, lock, publisher, cfg.Worker.PoolSize, log)

	// Init Handler
	processHandler := mqhandler.NewProposalProcessHandler(proposalService, log)

	// Consumer for proposal processing
	log.Info("Initializing proposal process consumer", zap.String("queue", "proposal.process.q"))
	consumer, err := mq.NewConsumer(cfg.MQ.URL, "proposal.process.q", mq.RoutingKeyProposalProcess, log)
	if err != nil {
		log.Fatal("failed to init proposal process consumer", zap.Error(err))
	}
	consumer.SetHandler(processHandler.HandleProposalProcess)
	go func() {
		log.Info("Starting proposal process consumer")
		if err := consumer.StartConsuming(); err != nil {
			log.Fatal("proposal process consumer failed", zap.Error(err))
		}
	}()
	defer consumer.Close()

	// Drain any backlog that accumulated while the worker was down.
	go func() {
		results, err := proposalService.ProcessPending(context.Background())
		if err != nil {
			log.Error("pending backlog drain failed", zap.Error(err))
			return
		}
		if len(results) > 0 {
			log.Info("pending backlog drained", zap.Int("count", len(results)))
		}
	}()

	// Metrics endpoint
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(cfg.Worker.MetricsPort, nil); err != nil {
			log.Error("metrics server failed", zap.Error(err))
		}
	}()

	log.Info("Worker is ready to process messages")

	select {}
}
