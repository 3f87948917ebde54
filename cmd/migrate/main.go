package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rajeev-qa/Kartavya-PMS-sub000/config"
	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/storage/postgres"
)

var rootCmd = &cobra.Command{
	Use:   "kartavya-migrate",
	Short: "Apply or roll back the workflow engine schema",
}

func main() {
	// Load .env if present
	_ = godotenv.Load()

	viper.AutomaticEnv()
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_NAME", "kartavya")
	viper.SetDefault("DB_SSLMODE", "disable")

	rootCmd.PersistentFlags().String("host", "", "database host (DB_HOST)")
	rootCmd.PersistentFlags().Int("port", 0, "database port (DB_PORT)")
	rootCmd.PersistentFlags().String("name", "", "database name (DB_NAME)")
	_ = viper.BindPFlag("DB_HOST", rootCmd.PersistentFlags().Lookup("host"))
	_ = viper.BindPFlag("DB_PORT", rootCmd.PersistentFlags().Lookup("port"))
	_ = viper.BindPFlag("DB_NAME", rootCmd.PersistentFlags().Lookup("name"))

	rootCmd.AddCommand(upCmd, downCmd, versionCmd, forceCmd)
	downCmd.Flags().Int("steps", 1, "number of migrations to roll back")

	if err := rootCmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func databaseConfig() *config.DatabaseConfig {
	return &config.DatabaseConfig{
		Host:     viper.GetString("DB_HOST"),
		Port:     viper.GetInt("DB_PORT"),
		User:     viper.GetString("DB_USER"),
		Password: viper.GetString("DB_PASSWORD"),
		Name:     viper.GetString("DB_NAME"),
		SSLMode:  viper.GetString("DB_SSLMODE"),
	}
}

// withMigrator opens a short-lived lib/pq connection for fn.
func withMigrator(fn func(m *migrate.Migrate) error) error {
	db, err := postgres.NewConnection(databaseConfig())
	if err != nil {
		return err
	}
	defer func(db *sql.DB) { _ = db.Close() }(db)

	m, err := postgres.NewMigrator(db)
	if err != nil {
		return err
	}
	return fn(m)
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *migrate.Migrate) error {
			if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return fmt.Errorf("apply migrations: %w", err)
			}
			logrus.Info("migrations applied")
			return nil
		})
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, _ := cmd.Flags().GetInt("steps")
		if steps <= 0 {
			return fmt.Errorf("--steps must be positive")
		}
		return withMigrator(func(m *migrate.Migrate) error {
			if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return fmt.Errorf("roll back: %w", err)
			}
			logrus.Infof("rolled back %d migration(s)", steps)
			return nil
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *migrate.Migrate) error {
			v, dirty, err := m.Version()
			if errors.Is(err, migrate.ErrNilVersion) {
				fmt.Println("no migrations applied")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Printf("version %d (dirty=%t)\n", v, dirty)
			return nil
		})
	},
}

var forceCmd = &cobra.Command{
	Use:   "force [version]",
	Short: "Force the schema version after a failed migration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[0], err)
		}
		return withMigrator(func(m *migrate.Migrate) error {
			return m.Force(v)
		})
	},
}
