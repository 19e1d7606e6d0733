// Package config reads runtime settings from the environment. A .env file
// in the working directory is loaded first by the main package.
package config

import (
	"os"
	"strings"
)

type Config struct {
	Port        string
	DBPath      string
	Store       string
	BadgerDir   string
	ContentFile string
	LogLevel    string
	LogFile     string

	Admin AdminConfig
	SMTP  SMTPConfig
}

type AdminConfig struct {
	Username string
	Password string
}

type SMTPConfig struct {
	Host    string
	Port    string
	User    string
	Pass    string
	ToEmail string
}

// Configured reports whether credentials are present.
func (s SMTPConfig) Configured() bool {
	return s.User != "" && s.Pass != ""
}

// Load builds a Config from environment variables, falling back to
// development defaults.
func Load() Config {
	return Config{
		Port:        getenv("PORT", "8080"),
		DBPath:      getenv("DB_PATH", "termfolio.db"),
		Store:       strings.ToLower(getenv("STORE_BACKEND", "sqlite")),
		BadgerDir:   getenv("BADGER_DIR", "termfolio-sessions"),
		ContentFile: os.Getenv("CONTENT_FILE"),
		LogLevel:    strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogFile:     os.Getenv("LOG_FILE"),
		Admin: AdminConfig{
			Username: os.Getenv("ADMIN_USERNAME"),
			Password: os.Getenv("ADMIN_PASSWORD"),
		},
		SMTP: SMTPConfig{
			Host:    getenv("SMTP_HOST", "smtp.gmail.com"),
			Port:    getenv("SMTP_PORT", "587"),
			User:    os.Getenv("SMTP_USER"),
			Pass:    os.Getenv("SMTP_PASS"),
			ToEmail: os.Getenv("TO_EMAIL"),
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
