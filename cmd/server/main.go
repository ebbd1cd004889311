package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"

	"lifeledger/internal/attestation"
	"lifeledger/internal/audit"
	"lifeledger/internal/audit/outbox"
	"lifeledger/internal/catalog"
	"lifeledger/internal/choice"
	"lifeledger/internal/engine"
	"lifeledger/internal/escrow"
	"lifeledger/internal/ledger"
	"lifeledger/internal/lifecycle"
	"lifeledger/internal/platform/config"
	"lifeledger/internal/platform/httpserver"
	"lifeledger/internal/platform/logger"
	"lifeledger/internal/platform/metrics"
	"lifeledger/internal/platform/redis"
	"lifeledger/internal/registry"
	httptransport "lifeledger/internal/transport/http"
)

// main wires dependencies and runs the server plus background workers under
// one errgroup. Business logic lives in the internal packages.
func main() {
	log := logger.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	attest := attestation.NewService(cfg.JWTSigningKey, "lifeledger")

	// Stores default to memory; POSTGRES_URL switches the durable set.
	var (
		db            *sql.DB
		registryStore registry.Store = registry.NewInMemoryStore()
		catalogStore  catalog.Store  = catalog.NewInMemoryStore()
		escrowStore   escrow.Store   = escrow.NewInMemoryStore()
		auditStore    audit.Store    = audit.NewInMemoryStore()
		choiceStore   choice.Store   = choice.NewInMemoryStore()
	)
	if cfg.PostgresURL != "" {
		db, err = sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			log.Error("failed to open postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("postgres unreachable", "error", err)
			os.Exit(1)
		}
		registryStore = registry.NewPostgresStore(db)
		catalogStore = catalog.NewPostgresStore(db)
		escrowStore = escrow.NewPostgresStore(db)
		auditStore = audit.NewPostgresStore(db)
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		choiceStore = choice.NewCachedStore(choiceStore, redisClient, cfg.ChoiceCacheTTL)
	}

	auditor := audit.NewPublisher(auditStore)
	cat := catalog.NewService(catalogStore)
	if cfg.CatalogSeedPath != "" {
		if err := cat.LoadSeed(ctx, cfg.CatalogSeedPath); err != nil {
			log.Error("failed to load catalog seed", "error", err)
			os.Exit(1)
		}
	}

	coins, err := ledger.NewService(cfg.CoinDenom, cfg.SettlementDenom, cfg.CoinRate, m)
	if err != nil {
		log.Error("invalid ledger configuration", "error", err)
		os.Exit(1)
	}

	// The escrow service doubles as the listing-state oracle for registry
	// and lifecycle.
	esc := escrow.NewService(escrowStore, registryStore, coins, auditor, m)

	eng := engine.New(engine.Deps{
		Attestations: attest,
		Catalog:      cat,
		Registry:     registry.NewService(registryStore, cat, auditor, esc, cfg.HatchDelay, cfg.IncubationImageRef),
		Ledger:       coins,
		Lifecycle:    lifecycle.NewService(registryStore, cat, coins, auditor, esc, cfg.AllowOffLedgerRent),
		Escrow:       esc,
		Choices:      choice.NewService(choiceStore, coins, auditor, m),
		Auditor:      auditor,
		Metrics:      m,
		Logger:       log,
		EggsOnSale:   cfg.EggsOnSale,
		EggPrice:     cfg.EggPrice,
	})

	handler := httptransport.NewHandler(eng, log, m, attest)
	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(handler))

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("starting lifeledger", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	// The Kafka outbox worker needs both a broker list and a durable outbox.
	if len(cfg.KafkaBrokers) > 0 && db != nil {
		kafkaClient, err := kgo.NewClient(
			kgo.SeedBrokers(cfg.KafkaBrokers...),
			kgo.AllowAutoTopicCreation(),
		)
		if err != nil {
			log.Error("failed to build kafka client", "error", err)
			os.Exit(1)
		}
		defer kafkaClient.Close()

		if err := outbox.EnsureTopic(ctx, kafkaClient, cfg.AuditTopic); err != nil {
			log.Error("failed to ensure audit topic", "error", err)
			os.Exit(1)
		}

		worker := outbox.NewWorker(db, kafkaClient, cfg.AuditTopic, log)
		group.Go(func() error {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("lifeledger stopped")
}
