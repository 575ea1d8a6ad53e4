package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"bbo-tracker/src/config"
	"bbo-tracker/src/grpc_control"
	"bbo-tracker/src/logger"
	"bbo-tracker/src/rest"
	"bbo-tracker/src/tracker"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	symbol := flag.String("symbol", "", "override the streamed symbol of every configured feed")
	flag.Parse()

	// Load config from YAML file
	config, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// A symbol given on the command line wins over the configuration
	if *symbol != "" {
		for _, feed := range config.Feeds {
			feed.Symbols = []string{*symbol}
		}
	}

	// Setup logger
	appLogger := logger.NewLogger(config, config.Name)

	// Create tracker from config
	trackerService, err := tracker.NewTracker(config, appLogger)
	if err != nil {
		fmt.Printf("Error creating tracker: %v\n", err)
		os.Exit(1)
	}
	defer trackerService.Stop()

	// Create control service
	controlService, err := grpc_control.NewGRPCService(config, appLogger, trackerService)
	if err != nil {
		appLogger.Critical("failed to create control service: %v", err)
		os.Exit(1)
	}
	defer controlService.Stop(context.Background())

	// Start REST API server
	go func() {
		appLogger.Info("starting REST API server on :%d", config.Port)
		if err := startAPIServer(config, appLogger, trackerService); err != nil {
			appLogger.Error("REST API server error: %v", err)
			os.Exit(1)
		}
	}()

	// Start gRPC control server
	go func() {
		appLogger.Info("starting gRPC control service on %s:%d", config.GRPC_Host, config.GRPC_Port)
		if err := controlService.Start(); err != nil {
			appLogger.Error("control server error: %v", err)
			os.Exit(1)
		}
	}()

	// Start tracker
	if err := trackerService.Start(); err != nil {
		appLogger.Critical("failed to start tracker: %v", err)
		os.Exit(1)
	}

	appLogger.Info("bbo tracker running. REST API: :%d, gRPC: %s:%d",
		config.Port, config.GRPC_Host, config.GRPC_Port)
	appLogger.Info("Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	appLogger.Info("shutting down...")
}

// startAPIServer starts the HTTP REST API server
func startAPIServer(config *config.Config, logger *logger.Logger, trackerService *tracker.Tracker) error {
	apiHandler, err := rest.NewAPIHandler(config, logger, trackerService)
	if err != nil {
		return fmt.Errorf("failed to create API handler: %w", err)
	}

	mux := http.NewServeMux()
	apiHandler.Register(mux)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", config.Port),
		Handler: mux,
	}

	logger.Info("REST API server started on :%d", config.Port)
	return server.ListenAndServe()
}
