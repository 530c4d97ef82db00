package config

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/godror/godror"
)

// OracleConfig holds the connection settings for the booking schema.
// Either Host/Port/Service or WalletPath/TNSAlias must be set; the
// wallet pair wins when both are present (Autonomous DB deployments).
type OracleConfig struct {
	Host         string
	Port         string
	Service      string
	User         string
	Password     string
	MaxOpenConns int
	MaxIdleConns int
	WalletPath   string
	TNSAlias     string
}

// escapeDSNValue quotes backslashes and double quotes so credentials
// cannot break out of the DSN string.
func escapeDSNValue(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	return s
}

// DSN builds the godror connection string
func (c OracleConfig) DSN() string {
	user := escapeDSNValue(c.User)
	password := escapeDSNValue(c.Password)

	if c.WalletPath != "" && c.TNSAlias != "" {
		tnsAlias := escapeDSNValue(c.TNSAlias)
		walletPath := escapeDSNValue(c.WalletPath)
		return fmt.Sprintf(`user="%s" password="%s" connectString="%s" configDir="%s" walletLocation="%s"`,
			user, password, tnsAlias, walletPath, walletPath)
	}
	return fmt.Sprintf(`user="%s" password="%s" connectString="%s:%s/%s"`,
		user, password, c.Host, c.Port, c.Service)
}

// NewOracleDB opens the Oracle pool and verifies connectivity before
// handing it to the repositories.
func NewOracleDB(cfg OracleConfig) (*sql.DB, error) {
	db, err := sql.Open("godror", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
