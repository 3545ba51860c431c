package main

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/HapoTV/HapoAiRadio-sub002/internal/cache"
	"github.com/HapoTV/HapoAiRadio-sub002/internal/config"
	database "github.com/HapoTV/HapoAiRadio-sub002/internal/db"
	"github.com/HapoTV/HapoAiRadio-sub002/internal/storage"

	apiserver "github.com/HapoTV/HapoAiRadio-sub002/internal/api/server"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting Storecast API Server...")

	// 1. Setup Configuration
	cfg := config.Load()

	// 2. Initialize Infrastructure
	db := database.New(cfg)

	// 3. Run Database Migrations
	db.AutoMigrate()
	database.SeedDemoStore(db.DB)

	// 4. Redis — the cache is an optimization, never a requirement.
	// If it's down we boot anyway and every read goes to the DB.
	rdb, err := cache.NewClient(cfg)
	if err != nil {
		log.Printf("⚠️ Redis unavailable, running without cache: %v", err)
		rdb = nil
	} else {
		log.Println("✅ Redis Connected")
	}

	// 5. Storage
	store := storage.New(cfg)

	// 6. Setup Metrics
	go func() {
		http.Handle("/_metrics", promhttp.Handler())
		log.Printf("📊 Metrics exposed at http://localhost%s/_metrics", cfg.Server.MetricsPort)
		if err := http.ListenAndServe(cfg.Server.MetricsPort, nil); err != nil {
			log.Printf("⚠️ Metrics server error: %v", err)
		}
	}()

	// 7. Start Server
	srv := apiserver.New(cfg, db, rdb, store)

	log.Printf("🚀 API Server starting on %s", cfg.Server.Port)

	if err := srv.Start(cfg.Server.Port); err != nil {
		log.Fatalf("❌ Server failed to start: %v", err)
	}
}
