// Package domain holds the club catalog records and the error taxonomy shared
// by the store and the dialogue layer.
package domain

import (
	"strings"
	"time"
)

// User is a Telegram account that has contacted the bot.
type User struct {
	ID           int64 `db:"id"`
	TelegramID   int64 `db:"tg_id"`
	RegisteredAt int64 `db:"registered_at"`
}

// Event is a scheduled club meeting.
type Event struct {
	ID              int64
	Name            string
	Description     *string
	StartsAt        time.Time
	DurationMinutes int
	Location        *string
	Organizer       *string
	Author          *string
}

// EndsAt is derived for display only.
func (e Event) EndsAt() time.Time {
	return e.StartsAt.Add(time.Duration(e.DurationMinutes) * time.Minute)
}

// Validate checks required event fields.
func (e Event) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return Invalid("name", "A name is required.")
	}
	if e.StartsAt.IsZero() {
		return Invalid("starts_at", "A start date and time is required.")
	}
	if e.DurationMinutes <= 0 {
		return Invalid("duration_minutes", "The duration must be a positive number of minutes.")
	}
	return nil
}

// Game is a tabletop game in the club catalog.
type Game struct {
	ID          int64   `db:"id" yaml:"-"`
	Name        string  `db:"name" yaml:"name"`
	Description *string `db:"description" yaml:"description"`
	// Genre may hold several comma separated tags.
	Genre  *string `db:"genre" yaml:"genre"`
	Photo  *string `db:"photo" yaml:"photo"`
	Author *string `db:"author" yaml:"author"`
}

// Validate checks required game fields.
func (g Game) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return Invalid("name", "A name is required.")
	}
	return nil
}

// Optional converts empty input into a nil pointer.
func Optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
