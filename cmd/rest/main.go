package main

import (
	"context"
	"log"

	"school-assistant-be/internal/bootstrap"
	"school-assistant-be/internal/config"
	"school-assistant-be/internal/server"
	"school-assistant-be/internal/tracer"
	"school-assistant-be/pkg/database"

	"gorm.io/gorm"
)

func main() {
	// 0. Tracing (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Database is optional: without a DSN everything runs in memory
	var gormDB *gorm.DB
	if cfg.App.DatabaseDSN != "" {
		db, err := database.NewGormDBFromDSN(cfg.App.DatabaseDSN)
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
		gormDB = db
	} else {
		log.Println("[INFO] No DB_CONNECTION_STRING set, running with in-memory storage")
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
