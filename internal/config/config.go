package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Default locations and budgets used when the environment leaves them
// unset.
const (
	DefaultSQLitePath     = "./data/todos.db"
	DefaultMySQLPort      = "3306"
	DefaultConnectTimeout = 30 * time.Second
)

// Config holds the process configuration resolved from the environment
// at startup.
type Config struct {
	Port       string
	SQLitePath string

	// MySQL is non-nil when the networked backend is selected.
	MySQL *MySQL
}

// MySQL holds connection parameters for the networked backend.
type MySQL struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string

	// ConnectTimeout bounds the startup retry loop.
	ConnectTimeout time.Duration
}

// Addr returns the host:port the driver should dial.
func (m *MySQL) Addr() string {
	return m.Host + ":" + m.Port
}

// FromEnv builds the configuration from environment variables.
//
// Presence of any of MYSQL_HOST, MYSQL_USER, MYSQL_PASSWORD (or
// MYSQL_PASSWORD_FILE) and MYSQL_DB selects the networked backend; all
// of them are then required and a partial set is a configuration
// error. With none of them set, the embedded SQLite backend is used
// with DB_PATH (or its default).
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:       getEnv("PORT", "8080"),
		SQLitePath: getEnv("DB_PATH", DefaultSQLitePath),
	}

	password, err := getSecret("MYSQL_PASSWORD")
	if err != nil {
		return nil, err
	}

	mysql := &MySQL{
		Host:     os.Getenv("MYSQL_HOST"),
		Port:     getEnv("MYSQL_PORT", DefaultMySQLPort),
		User:     os.Getenv("MYSQL_USER"),
		Password: password,
		Database: os.Getenv("MYSQL_DB"),
	}

	if mysql.Host == "" && mysql.User == "" && mysql.Password == "" && mysql.Database == "" {
		return cfg, nil
	}

	var missing []string
	if mysql.Host == "" {
		missing = append(missing, "MYSQL_HOST")
	}
	if mysql.User == "" {
		missing = append(missing, "MYSQL_USER")
	}
	if mysql.Password == "" {
		missing = append(missing, "MYSQL_PASSWORD")
	}
	if mysql.Database == "" {
		missing = append(missing, "MYSQL_DB")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("partial MySQL configuration: missing %s", strings.Join(missing, ", "))
	}

	timeout, err := getDuration("DB_CONNECT_TIMEOUT", DefaultConnectTimeout)
	if err != nil {
		return nil, err
	}
	mysql.ConnectTimeout = timeout

	cfg.MySQL = mysql
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getSecret reads key from the environment, or from the file named by
// key_FILE (the container secret convention). The direct variable
// wins when both are set.
func getSecret(key string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}

	path := os.Getenv(key + "_FILE")
	if path == "" {
		return "", nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s_FILE: %w", key, err)
	}

	return strings.TrimSpace(string(content)), nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}

	return d, nil
}
