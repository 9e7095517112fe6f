// Package app wires configuration, infrastructure and the Telegram runtime
// of the club bot.
package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/m3rciful/gameclub/club/bot"
	"github.com/m3rciful/gameclub/club/notify"
	coreconfig "github.com/m3rciful/gameclub/core/config"
	coredatabase "github.com/m3rciful/gameclub/core/database"
)

// DefaultGenres are offered as catalog filters when none are configured.
var DefaultGenres = []string{"Strategy", "Family", "Party", "Cooperative", "Detective", "Economic", "For two"}

// ClubConfig holds club presentation settings.
type ClubConfig struct {
	Timezone       string   `yaml:"timezone" envconfig:"CLUB_TIMEZONE"`
	About          string   `yaml:"about" envconfig:"CLUB_ABOUT"`
	Contacts       string   `yaml:"contacts" envconfig:"CLUB_CONTACTS"`
	Genres         []string `yaml:"genres" envconfig:"CLUB_GENRES"`
	AnnounceEvents bool     `yaml:"announce_events" envconfig:"CLUB_ANNOUNCE_EVENTS"`
	SeedFile       string   `yaml:"seed_file" envconfig:"CLUB_SEED_FILE"`

	location *time.Location
}

// Location returns the loaded timezone, UTC before Load.
func (c ClubConfig) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// Bot converts the settings for the dialogue router.
func (c ClubConfig) Bot() bot.Club {
	return bot.Club{
		Location:       c.Location(),
		About:          c.About,
		Contacts:       c.Contacts,
		Genres:         c.Genres,
		AnnounceEvents: c.AnnounceEvents,
	}
}

// Config is the full bot configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	Club     ClubConfig          `yaml:"club"`
	Broker   notify.Config       `yaml:"broker"`
}

// CoreConfig implements cmd.ConfigCarrier.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}

// Load reads path plus environment overrides and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates core settings, the database driver and the club timezone.
func Normalize(cfg *Config) error {
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return err
	}

	driver := strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	switch driver {
	case "", "sqlite3":
		driver = coredatabase.DriverSQLite
	case coredatabase.DriverSQLite, coredatabase.DriverPostgres, coredatabase.DriverPgx:
	default:
		return fmt.Errorf("invalid database.driver %q; allowed: sqlite, postgres, pgx", cfg.Database.Driver)
	}
	cfg.Database.Driver = driver
	if driver == coredatabase.DriverSQLite && strings.TrimSpace(cfg.Database.Path) == "" {
		cfg.Database.Path = "data/gameclub.db"
	}
	if driver != coredatabase.DriverSQLite && strings.TrimSpace(cfg.Database.Host) == "" {
		return fmt.Errorf("database.host is required for driver %q", driver)
	}

	tz := strings.TrimSpace(cfg.Club.Timezone)
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("invalid club.timezone %q: %w", cfg.Club.Timezone, err)
	}
	cfg.Club.Timezone = tz
	cfg.Club.location = loc

	genres := cfg.Club.Genres[:0]
	for _, g := range cfg.Club.Genres {
		if g = strings.TrimSpace(g); g != "" {
			genres = append(genres, g)
		}
	}
	if len(genres) == 0 {
		genres = append([]string(nil), DefaultGenres...)
	}
	cfg.Club.Genres = genres
	return nil
}
