// Copyright (C) 2025 Time of Code (dev@timeofcode.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command catalogctl administers the tutorials catalog database.
//
// The tool operates directly on the Badger store and must not run
// while the catalog server holds the database open.
//
// # Usage
//
//	# Reset the catalog and load the sample dataset
//	catalogctl seed --data-dir ./data/catalog
//
//	# Create or update an admin account
//	catalogctl init-admin --username admin --password secret
package main

import (
	"errors"
	"log"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/timeofcode/platform/pkg/logging"
	"github.com/timeofcode/platform/services/catalog/datatypes"
	"github.com/timeofcode/platform/services/catalog/store"
)

var (
	dataDir       string
	adminUsername string
	adminPassword string
	adminRole     string

	rootCmd = &cobra.Command{
		Use:   "catalogctl",
		Short: "A CLI to administer the tutorials catalog database",
		Long: `catalogctl operates directly on the catalog's embedded database:
seeding sample content and managing admin accounts. Stop the catalog
server before running it against the same data directory.`,
	}
	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Reset the catalog and load the sample dataset",
		Long: `Drops all languages, categories, topics, and articles, then loads
the sample tutorials dataset. Admin accounts are preserved.`,
		RunE: runSeed,
	}
	initAdminCmd = &cobra.Command{
		Use:   "init-admin",
		Short: "Create or update an admin account",
		RunE:  runInitAdmin,
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "./data/catalog",
		"Badger database directory")

	initAdminCmd.Flags().StringVar(&adminUsername, "username", "", "admin username")
	initAdminCmd.Flags().StringVar(&adminPassword, "password", "", "admin password")
	initAdminCmd.Flags().StringVar(&adminRole, "role", datatypes.RoleAdmin,
		"admin role (admin or super_admin)")
	_ = initAdminCmd.MarkFlagRequired("username")
	_ = initAdminCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(initAdminCmd)
}

// openStore opens the catalog store at the configured data directory.
func openStore(logger *logging.Logger) (*store.Store, error) {
	cfg := store.DefaultConfig(dataDir)
	cfg.Logger = logger.Slog()

	st := store.New(cfg)
	if err := st.Open(); err != nil {
		return nil, err
	}
	return st, nil
}

func runInitAdmin(cmd *cobra.Command, args []string) error {
	logger := logging.New(logging.Config{Service: "catalogctl"})
	defer logger.Close()

	st, err := openStore(logger)
	if err != nil {
		return err
	}
	defer st.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	admin := datatypes.Admin{
		Username:     adminUsername,
		PasswordHash: string(hash),
		Role:         adminRole,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	// Updating an existing account keeps its creation time.
	existing, err := st.GetAdmin(cmd.Context(), adminUsername)
	if err == nil {
		admin.CreatedAt = existing.CreatedAt
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	if err := st.PutAdmin(cmd.Context(), admin); err != nil {
		return err
	}

	logger.Info("admin account saved", "username", adminUsername, "role", adminRole)
	return nil
}
