// Package config loads the regbot configuration: the shared bot core settings,
// the record store location and the event being registered for.
package config

import (
	"fmt"
	"strings"

	coreconfig "github.com/m3rciful/regbot/core/config"
	coredatabase "github.com/m3rciful/regbot/core/database"
)

// Event describes the event participants register for.
type Event struct {
	Title   string `yaml:"title" envconfig:"EVENT_TITLE"`
	Date    string `yaml:"date" envconfig:"EVENT_DATE"`
	City    string `yaml:"city" envconfig:"EVENT_CITY"`
	Price   string `yaml:"price" envconfig:"PRICE_TEXT"`
	Payment string `yaml:"payment" envconfig:"PAYMENT_TEXT"`
	// Image is a local file path, an http(s) URL or a Telegram file id.
	Image string `yaml:"image" envconfig:"EVENT_IMAGE"`
}

// Config is the full application configuration. It is built once at startup
// and never mutated afterwards.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	Event    Event               `yaml:"event"`
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}

// Load reads path (optional when it does not exist) and the environment.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, true, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates every section and fills defaults.
func (c *Config) Normalize() error {
	if err := coreconfig.Normalize(&c.Config); err != nil {
		return err
	}
	if err := c.Database.Normalize(); err != nil {
		return err
	}
	c.Event.normalize()
	return nil
}

func (e *Event) normalize() {
	def := func(v *string, fallback string) {
		*v = strings.TrimSpace(*v)
		if *v == "" {
			*v = fallback
		}
	}
	def(&e.Title, "Событие")
	def(&e.Date, "Дата не указана")
	def(&e.City, "Город не указан")
	def(&e.Price, "Стоимость не указана")
	e.Payment = strings.TrimSpace(e.Payment)
	e.Image = strings.TrimSpace(e.Image)
}

// String renders a short summary safe for logs.
func (c *Config) String() string {
	return fmt.Sprintf("run_mode=%s admins=%d db=%s event=%q",
		c.Telegram.RunMode, len(c.Telegram.AdminIDs), c.Database.Driver, c.Event.Title)
}
