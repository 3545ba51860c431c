package main

import (
	"flag"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/HapoTV/HapoAiRadio-sub002/internal/config"
	database "github.com/HapoTV/HapoAiRadio-sub002/internal/db"
	"github.com/HapoTV/HapoAiRadio-sub002/internal/storequeue"
)

func main() {
	// Flags override config.yaml / env values
	port := flag.String("port", "", "Override the listen address (e.g. :8082)")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting Store Queue Service...")

	// 1. Load Config
	cfg := config.Load()
	if *port != "" {
		cfg.Server.QueuePort = *port
	}

	if cfg.Server.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 2. Init Infrastructure
	db := database.New(cfg)
	db.AutoMigrate()

	// 3. Metrics
	storequeue.RegisterMetrics()
	go func() {
		http.Handle("/_metrics", promhttp.Handler())
		log.Printf("📊 Metrics exposed at http://localhost%s/_metrics", cfg.Server.MetricsPort)
		if err := http.ListenAndServe(cfg.Server.MetricsPort, nil); err != nil {
			log.Printf("⚠️ Metrics server error: %v", err)
		}
	}()

	// 4. Serve
	handler := storequeue.NewHandler(storequeue.NewService(db.DB))
	router := handler.Router()

	log.Printf("🚀 Store Queue Service starting on %s", cfg.Server.QueuePort)

	if err := router.Run(cfg.Server.QueuePort); err != nil {
		log.Fatalf("❌ Server failed to start: %v", err)
	}
}
