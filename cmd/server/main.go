package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelmayhem/mayhem/internal/config"
	"github.com/modelmayhem/mayhem/internal/orchestrator"
	"github.com/modelmayhem/mayhem/internal/prompt"
	"github.com/modelmayhem/mayhem/internal/storage"
	"github.com/modelmayhem/mayhem/web/handlers"
)

func main() {
	port := flag.Int("port", 8182, "Server port")
	dbPath := flag.String("db", "", "Database path (default: ~/.mayhem/mayhem.db)")
	cfgPath := flag.String("config", "", "Config file path (default: ~/.mayhem/config.yaml)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// Initialize slog
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	if *debug {
		opts.Level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, opts))
	slog.SetDefault(logger)

	// Load config
	var cfg *config.Config
	var err error
	if *cfgPath != "" {
		cfg, err = config.LoadFrom(*cfgPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize storage
	path := *dbPath
	if path == "" {
		path = storage.DefaultDBPath()
	}

	slog.Info("Initializing storage", "path", path)
	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.Initialize(); err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}

	// Wire the registry, orchestrator and handler
	registry := cfg.CreateRegistry()
	orch := orchestrator.New(registry, prompt.Composer{Store: store})
	h := handlers.New(orch, registry, store, cfg.Debate)

	// Start server
	serverPort := cfg.Server.Port
	if flagWasSet("port") {
		serverPort = *port
	}
	addr := fmt.Sprintf(":%d", serverPort)
	server := &http.Server{
		Addr:    addr,
		Handler: h.Router(),
	}

	// Handle shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		slog.Info("Shutting down...")
		server.Close()
	}()

	slog.Info("Starting mayhem server", "url", fmt.Sprintf("http://localhost%s", addr))
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}
}

func flagWasSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
