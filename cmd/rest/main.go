package main

import (
	"context"
	"log"

	"ai-studyroom-be/internal/bootstrap"
	"ai-studyroom-be/internal/config"
	"ai-studyroom-be/internal/server"
	"ai-studyroom-be/internal/tracer"
	"ai-studyroom-be/pkg/database"
)

func main() {
	// 0. Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Configuration
	cfg := config.Load()

	// 2. Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Dependencies
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Background workers
	go func() {
		log.Println("Background: Starting Ingest Consumer...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()
	if container.AuditService != nil {
		go func() {
			log.Println("Background: Starting Audit Writer...")
			if err := container.AuditService.Start(); err != nil {
				log.Printf("Background Audit Error: %v", err)
			}
		}()
	}

	// 5. Serve
	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}
