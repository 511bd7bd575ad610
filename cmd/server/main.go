package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BeaujeanCyril/gloomhaven-companion/pkg/api"
	"github.com/BeaujeanCyril/gloomhaven-companion/pkg/gamesync"
	"github.com/BeaujeanCyril/gloomhaven-companion/pkg/log"
	"github.com/BeaujeanCyril/gloomhaven-companion/pkg/repositories"
	"github.com/BeaujeanCyril/gloomhaven-companion/pkg/sessions"
	"github.com/BeaujeanCyril/gloomhaven-companion/pkg/workers"
)

func main() {
	port := flag.Int("port", 8080, "Port to listen on")
	logLevel := flag.String("log-level", "info", "Log level")
	dbDriver := flag.String("db", "sqlite", "Database driver (sqlite or postgres)")
	dbPath := flag.String("db-path", "gloomhaven.db", "SQLite database path")
	migrationsPath := flag.String("migrations", "migrations/sqlite", "SQLite migrations directory")
	cleanupInterval := flag.Duration("cleanup-interval", workers.DefaultCleanupInterval, "Expiry sweep interval")
	certFile := flag.String("cert-file", "", "TLS certificate file")
	keyFile := flag.String("key-file", "", "TLS key file")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var repository repositories.Repository
	switch *dbDriver {
	case "sqlite":
		repository, err = repositories.NewSQLiteRepository(ctx, *dbPath, *migrationsPath)
		if err != nil {
			panic(fmt.Sprintf("Failed to create sqlite repository: %v", err))
		}
	case "postgres":
		connStr := os.Getenv("DATABASE_URL")
		if connStr == "" {
			panic("DATABASE_URL environment variable must be set")
		}
		repository, err = repositories.NewPostgresRepository(ctx, connStr)
		if err != nil {
			panic(fmt.Sprintf("Failed to create postgres repository: %v", err))
		}
	default:
		panic(fmt.Sprintf("Unknown database driver: %s", *dbDriver))
	}
	defer repository.Close(ctx)

	if err := repository.Seed(ctx); err != nil {
		panic(fmt.Sprintf("Failed to seed repository: %v", err))
	}

	sessionManager := sessions.NewSessionManager()
	syncManager := gamesync.NewManager()

	cleanupWorker := workers.NewCleanupWorker(workers.NewCleanupWorkerOptions{
		SessionManager: sessionManager,
		SyncManager:    syncManager,
		Interval:       *cleanupInterval,
	})
	go cleanupWorker.Start(ctx)

	var tlsConfig *api.TLSConfig
	if *certFile != "" && *keyFile != "" {
		tlsConfig = &api.TLSConfig{
			CertFile: *certFile,
			KeyFile:  *keyFile,
		}
	}

	apiServer := api.NewAPIServer(api.NewAPIServerOptions{
		Port:           *port,
		TLS:            tlsConfig,
		SessionManager: sessionManager,
		SyncManager:    syncManager,
		Repository:     repository,
	})
	go apiServer.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := apiServer.Stop(shutdownCtx); err != nil {
		log.Error("Failed to stop API server: %v", err)
	}
}
