// Copyright (C) 2025 Time of Code (dev@timeofcode.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command catalog starts the tutorials catalog HTTP server.
//
// This is the main entry point for the containerized catalog service.
// It reads configuration from environment variables and starts the
// server. If the backing store cannot be opened the process exits
// immediately rather than serving requests it cannot fulfill.
//
// # Environment Variables
//
//   - CATALOG_PORT: HTTP server port (default: 4000)
//   - CATALOG_DATA_DIR: Badger database directory (default: ./data/catalog)
//   - CATALOG_ALLOWED_ORIGINS: comma-separated CORS allow-list (default: http://localhost:3000)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OpenTelemetry collector (optional, tracing disabled if unset)
//   - GIN_MODE: Gin framework mode - debug, release, test
//
// # Usage
//
//	# Build
//	go build -o catalog ./cmd/catalog
//
//	# Run
//	./catalog
package main

import (
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/timeofcode/platform/services/catalog"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Build configuration from environment variables
	cfg := catalog.Config{
		Port:           getEnvInt("CATALOG_PORT", 4000),
		DataDir:        getEnvString("CATALOG_DATA_DIR", "./data/catalog"),
		AllowedOrigins: splitOrigins(os.Getenv("CATALOG_ALLOWED_ORIGINS")),
		OTelEndpoint:   os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		GinMode:        os.Getenv("GIN_MODE"),
	}

	slog.Info("Starting catalog",
		"port", cfg.Port,
		"data_dir", cfg.DataDir,
	)

	svc, err := catalog.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create catalog service: %v", err)
	}

	// Run the server (blocks until shutdown)
	if err := svc.Run(); err != nil {
		log.Fatalf("Catalog error: %v", err)
	}
}

// getEnvString returns the environment variable value or a default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as int or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// splitOrigins parses a comma-separated origin list, dropping empty
// entries. Returns nil for an empty value so config defaults apply.
func splitOrigins(value string) []string {
	if value == "" {
		return nil
	}
	var origins []string
	for _, origin := range strings.Split(value, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
