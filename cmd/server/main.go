package main

import (
	"log"
	"net/http"

	"github.com/horizongaming/reconciler/internal/api"
	"github.com/horizongaming/reconciler/internal/config"
	"github.com/horizongaming/reconciler/internal/pipeline"
	"github.com/horizongaming/reconciler/internal/repository"
)

func main() {
	cfg := config.LoadOrEnv()

	log.Printf("Initializing database at %s", cfg.Server.DBPath)
	db, err := repository.InitDB(cfg.Server.DBPath)
	if err != nil {
		log.Fatalf("Failed to init DB: %v", err)
	}
	defer db.Close()

	// Create repositories.
	runRepo := repository.NewRunRepo(db)
	recordRepo := repository.NewRecordRepo(db)
	ghostRepo := repository.NewGhostRepo(db)

	// Pipeline service ties ingestion, reconciliation, analysis and
	// persistence together behind one Execute call.
	pipelineSvc := pipeline.NewService(cfg, runRepo, recordRepo, ghostRepo)

	// Run a reconciliation pass on boot when the database is still empty,
	// so the read endpoints have something to serve.
	latest, err := runRepo.GetLatest()
	if err != nil {
		log.Fatalf("Failed to query runs: %v", err)
	}
	if latest == nil {
		log.Println("No previous runs found, executing initial reconciliation...")
		if _, err := pipelineSvc.Execute(); err != nil {
			log.Printf("WARNING: Initial reconciliation failed: %v", err)
		}
	} else {
		log.Printf("Latest run %s from %s, skipping initial reconciliation",
			latest.ID, latest.StartedAt.Format("2006-01-02 15:04:05"))
	}

	router := api.NewRouter(runRepo, recordRepo, ghostRepo, pipelineSvc)

	log.Printf("Horizon Gaming Settlement Reconciler")
	log.Printf("Listening on http://localhost:%s", cfg.Server.Port)
	log.Printf("API base: http://localhost:%s/api/v1", cfg.Server.Port)
	log.Printf("")
	log.Printf("Endpoints:")
	log.Printf("  POST   /api/v1/reconciliation/run")
	log.Printf("  GET    /api/v1/reconciliation/runs")
	log.Printf("  GET    /api/v1/reconciliation/runs/{id}")
	log.Printf("  GET    /api/v1/reconciliation/records")
	log.Printf("  GET    /api/v1/reconciliation/records/{transactionID}")
	log.Printf("  GET    /api/v1/reconciliation/ghost-settlements")
	log.Printf("  GET    /api/v1/reconciliation/summary")
	log.Printf("  GET    /api/v1/reconciliation/dashboard")

	if err := http.ListenAndServe(":"+cfg.Server.Port, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
