package main

import (
	"fmt" // Error wrapping
	"os"  // Exit codes

	"learnshop/internal/config"  // Custom import path (Config)
	"learnshop/internal/db"      // Custom import path (Database)
	"learnshop/internal/logging" // Logger setup

	"github.com/sirupsen/logrus" // Logrus for structured logging
	"github.com/spf13/cobra"     // CLI commands
	"gorm.io/gorm"               // GORM ORM library
)

// Main entry point for migration and admin tooling
func main() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.WithError(err).Error("Command failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Database maintenance for the learnshop API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(gdb *gorm.DB) error { return runMigrate(gdb) })
		},
	}
	root.AddCommand(newMigrateCmd(), newCreateAdminCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update all tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(gdb *gorm.DB) error { return runMigrate(gdb) })
		},
	}
}

func newCreateAdminCmd() *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account or promote an existing user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(gdb *gorm.DB) error {
				if err := runMigrate(gdb); err != nil {
					return err
				}
				_, err := db.EnsureAdmin(gdb, name, email, password)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Admin email")
	cmd.Flags().StringVar(&password, "password", "", "Admin password, at least 8 characters")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// withDB loads configuration, connects and runs fn
func withDB(fn func(*gorm.DB) error) error {
	cfg := config.LoadConfig() // Load configuration
	if err := logging.Setup(cfg); err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	gdb, err := db.Open(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(gdb) }()
	return fn(gdb)
}

func runMigrate(gdb *gorm.DB) error {
	if err := db.Migrate(gdb); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	logrus.Info("Migration completed")
	return nil
}
