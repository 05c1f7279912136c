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

	"warga/internal/document"
	documenthandler "warga/internal/document/handler"
	documentmetrics "warga/internal/document/metrics"
	documentservice "warga/internal/document/service"
	"warga/internal/household"
	householdhandler "warga/internal/household/handler"
	householdservice "warga/internal/household/service"
	httpapi "warga/internal/http"
	"warga/internal/mutation"
	mutationhandler "warga/internal/mutation/handler"
	mutationmetrics "warga/internal/mutation/metrics"
	mutationservice "warga/internal/mutation/service"
	"warga/internal/platform/config"
	"warga/internal/platform/httpserver"
	"warga/internal/platform/logger"
	"warga/internal/registry"
	"warga/internal/resident"
	residenthandler "warga/internal/resident/handler"
	residentservice "warga/internal/resident/service"
	"warga/internal/sequence"
	"warga/pkg/platform/middleware/auth"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	log := logger.New()
	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	var (
		tx         registry.TxRunner
		residents  resident.Store
		households household.Store
		events     mutation.Store
		documents  document.Store
	)
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Error("open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := db.PingContext(pingCtx); err != nil {
			cancel()
			log.Error("ping database", "error", err)
			os.Exit(1)
		}
		cancel()

		tx = registry.NewPostgresTx(db)
		residents = resident.NewPostgresStore(db)
		households = household.NewPostgresStore(db)
		events = mutation.NewPostgresStore(db)
		documents = document.NewPostgresStore(db)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		memResidents := resident.NewInMemoryStore()
		memHouseholds := household.NewInMemoryStore()
		memEvents := mutation.NewInMemoryStore()
		memDocuments := document.NewInMemoryStore()
		tx = registry.NewMemoryTx(registry.Stores{
			Residents:  memResidents,
			Households: memHouseholds,
			Events:     memEvents,
			Documents:  memDocuments,
			Sequences:  sequence.NewInMemoryStore(),
		})
		residents = memResidents
		households = memHouseholds
		events = memEvents
		documents = memDocuments
	}

	mutationEngine := mutationservice.NewEngine(tx, log, mutationmetrics.New())
	residentSvc := residentservice.NewService(tx, residents, events, log)
	householdSvc := householdservice.NewService(tx, households, log)
	documentSvc := documentservice.NewService(tx, documents, cfg.LocalityCode, log, documentmetrics.New())

	verifier := auth.NewVerifier(cfg.JWTSigningKey)
	router := httpapi.NewRouter(verifier, log,
		mutationhandler.New(mutationEngine, log),
		residenthandler.New(residentSvc, log),
		householdhandler.New(householdSvc, log),
		documenthandler.New(documentSvc, log),
	)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting warga registry", "addr", cfg.Addr, "locality", cfg.LocalityCode)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
