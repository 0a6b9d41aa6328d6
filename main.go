// File: /main.go
package main

import (
	"context"
	"fmt"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"mycar-api/config"
	"mycar-api/database"
	"mycar-api/jobs"
	"mycar-api/routes"
	"mycar-api/utils"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

var (
	dbDriver string
	dbURL    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mycar",
		Short: "MyCar API - fuel ledger, trips and backups for your vehicles",
	}

	rootCmd.PersistentFlags().StringVar(&dbDriver, "db-driver", "", "Database driver (sqlite or mysql), overrides DB_DRIVER")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "Database DSN or sqlite path, overrides DATABASE_URL")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogger(cfg *config.Config) {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	if cfg.IsProduction() {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logrus.SetLevel(logrus.DebugLevel)
	}

	if cfg.LogLevel != "" {
		level, err := logrus.ParseLevel(cfg.LogLevel)
		if err != nil {
			logrus.Warnf("Invalid LOG_LEVEL %q, keeping %s", cfg.LogLevel, logrus.GetLevel())
			return
		}
		logrus.SetLevel(level)
	}
}

// bootstrap loads configuration, applies flag overrides and opens a migrated database.
func bootstrap() (*config.Config, *gorm.DB, error) {
	cfg := config.Load()
	setupLogger(cfg)

	if dbDriver != "" {
		cfg.DBDriver = dbDriver
	}
	if dbURL != "" {
		cfg.DatabaseURL = dbURL
	}

	db, err := database.Initialize(cfg.DBDriver, cfg.DatabaseURL, cfg.IsProduction())
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := bootstrap()
			if err != nil {
				return err
			}

			if err := utils.RegisterBindingValidators(); err != nil {
				return err
			}

			if cfg.IsProduction() {
				gin.SetMode(gin.ReleaseMode)
			}

			deps := routes.NewDependencies(db, cfg)
			router := routes.NewRouter(deps)

			if cfg.BackupIntervalMinutes > 0 {
				backupJob := jobs.NewBackupJob(deps.Backup, deps.Users, cfg.BackupDir, time.Duration(cfg.BackupIntervalMinutes)*time.Minute)
				backupJob.Start()
				defer backupJob.Stop()
			}

			server := &http.Server{
				Addr:           ":" + cfg.Port,
				Handler:        router,
				ReadTimeout:    15 * time.Second,
				WriteTimeout:   30 * time.Second,
				IdleTimeout:    60 * time.Second,
				MaxHeaderBytes: 1 << 20,
			}

			go func() {
				logrus.WithFields(logrus.Fields{
					"port":      cfg.Port,
					"db_driver": cfg.DBDriver,
				}).Info("Starting MyCar API server")

				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logrus.Fatal("Failed to start server: ", err)
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			logrus.Info("Shutting down server...")

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}

			logrus.Info("Server shutdown complete")
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := bootstrap(); err != nil {
				return err
			}
			logrus.Info("Database migrated")
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	var userID, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a user's backup bundle to a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := bootstrap()
			if err != nil {
				return err
			}

			deps := routes.NewDependencies(db, cfg)
			data, err := deps.Backup.ExportJSON(userID)
			if err != nil {
				return err
			}

			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o600); err != nil {
				return err
			}
			logrus.WithField("file", out).Info("Backup exported")
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User ID to export")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (stdout when empty)")
	cmd.MarkFlagRequired("user")
	return cmd
}

func importCmd() *cobra.Command {
	var userID, in string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace a user's data with a backup bundle",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := bootstrap()
			if err != nil {
				return err
			}

			data, err := os.ReadFile(in)
			if err != nil {
				return err
			}

			deps := routes.NewDependencies(db, cfg)
			bundle, err := deps.Backup.Import(userID, data)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d vehicles and %d trips\n", len(bundle.Vehicles), len(bundle.Trips))
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User ID to import into")
	cmd.Flags().StringVarP(&in, "in", "i", "", "Backup file to import")
	cmd.MarkFlagRequired("user")
	cmd.MarkFlagRequired("in")
	return cmd
}
