package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aviramh/gradecast-be/internal/api"
	"github.com/aviramh/gradecast-be/internal/api/handlers"
	"github.com/aviramh/gradecast-be/internal/config"
	"github.com/aviramh/gradecast-be/internal/database"
	"github.com/aviramh/gradecast-be/internal/logger"
	"github.com/aviramh/gradecast-be/internal/monitoring"
	"github.com/aviramh/gradecast-be/internal/proxy"
	"github.com/aviramh/gradecast-be/internal/services"
	"github.com/aviramh/gradecast-be/internal/websocket"
)

func main() {
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to apply database migrations: %v", err)
	}

	// Set up the presence event hub
	hub := websocket.NewHub()
	go hub.Run()

	// Set up services
	userService := services.NewUserService(db, hub)

	// Set up and run the background presence sweeper
	sweeper := monitoring.NewPresenceSweeper(db, hub)
	if err := sweeper.Run(); err != nil {
		log.Fatalf("Failed to start presence sweeper: %v", err)
	}

	// Set up the prediction gateway
	predictProxy, err := proxy.New(cfg.PredictUpstream)
	if err != nil {
		log.Fatalf("Invalid prediction upstream URL: %v", err)
	}

	// Set up router
	router := api.NewRouter(api.RouterDeps{
		Hub:          hub,
		UserService:  userService,
		Health:       handlers.NewHealthHandler(db),
		PredictProxy: predictProxy,
	})

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on port %d\n", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
