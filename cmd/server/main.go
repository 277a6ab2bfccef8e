/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the teach-ease ledger server: configuration, the
  SQLite store, the HTTP router, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (file + env), apply flag overrides
  2. Open SQLite store (schema auto-migrates)
  3. Build the API handler and router
  4. Start the background due scheduler
  5. Serve with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Path to config.yaml (optional; defaults + env apply without it)
  -port    Override the configured HTTP port
  -db      Override the configured SQLite path (":memory:" works)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, drain for up to 30s, close
  the database, exit.

SEE ALSO:
  - config/config.go: Configuration precedence
  - api/server.go: Router configuration
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/piyush-ds-bit/teach-ease-engine/api"
	"github.com/piyush-ds-bit/teach-ease-engine/config"
	"github.com/piyush-ds-bit/teach-ease-engine/store/sqlite"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	handler := api.NewHandler(store)
	router := api.NewRouter(handler, cfg.Server.CORSOrigins)

	scheduler := api.NewDueScheduler(store)
	scheduler.Enabled = cfg.Scheduler.Enabled
	scheduler.CheckInterval = time.Duration(cfg.Scheduler.IntervalMinutes) * time.Minute
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost:%d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
