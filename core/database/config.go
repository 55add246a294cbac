package database

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// DriverSQLite stores data in a single embedded SQLite file.
	DriverSQLite = "sqlite"
	// DriverPostgres connects to a PostgreSQL server.
	DriverPostgres = "postgres"

	// MemoryPath selects a private in-memory SQLite database.
	MemoryPath = ":memory:"

	defaultSQLitePath = "regbot.db"
)

// Config holds database connection settings shared across bots.
type Config struct {
	Driver string `yaml:"driver" envconfig:"DB_DRIVER"`
	// Path is the SQLite database file.
	Path string `yaml:"path" envconfig:"DB_PATH"`

	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
}

// Normalize validates the driver-specific settings and fills defaults.
func (c *Config) Normalize() error {
	c.Driver = strings.ToLower(strings.TrimSpace(c.Driver))
	switch c.Driver {
	case "", "sqlite3":
		c.Driver = DriverSQLite
	case "postgresql", "pg":
		c.Driver = DriverPostgres
	}

	switch c.Driver {
	case DriverSQLite:
		c.Path = strings.TrimSpace(c.Path)
		if c.Path == "" {
			c.Path = defaultSQLitePath
		}
	case DriverPostgres:
		if strings.TrimSpace(c.Host) == "" || strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("database.host and database.name are required for driver %q", DriverPostgres)
		}
		if c.Port == "" {
			c.Port = "5432"
		}
		if c.SSLMode == "" {
			c.SSLMode = "disable"
		}
	default:
		return fmt.Errorf("invalid database.driver %q; allowed: sqlite, postgres", c.Driver)
	}

	if c.MaxConnections <= 0 {
		c.MaxConnections = 4
	}
	return nil
}

// InMemory reports whether the SQLite database lives only in process memory.
func (c Config) InMemory() bool {
	return c.Driver == DriverSQLite && c.Path == MemoryPath
}

// DSN builds the database/sql data source name for the configured driver.
func (c Config) DSN() string {
	if c.Driver == DriverPostgres {
		return fmt.Sprintf(
			"user=%s password=%s host=%s port=%s dbname=%s sslmode=%s",
			c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
		)
	}
	if c.InMemory() {
		return MemoryPath
	}
	return "file:" + c.Path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

// URL builds the migrate-style postgres URL.
func (c Config) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     "/" + c.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}
