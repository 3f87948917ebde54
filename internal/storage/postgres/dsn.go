package postgres

import (
	"fmt"

	"github.com/rajeev-qa/Kartavya-PMS-sub000/config"
)

// DSN renders a keyword/value connection string understood by both pgx and lib/pq.
func DSN(cfg *config.DatabaseConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, sslMode,
	)
}
