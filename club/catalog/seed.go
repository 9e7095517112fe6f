package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"gopkg.in/yaml.v3"

	"github.com/m3rciful/gameclub/club/domain"
	"github.com/m3rciful/gameclub/core/bootstrap"
	"github.com/m3rciful/gameclub/core/logger"
)

// SeedFile is the YAML layout accepted by Seeder.
type SeedFile struct {
	Games []domain.Game `yaml:"games"`
}

// LoadSeedFile reads and validates a seed file.
func LoadSeedFile(path string) (SeedFile, error) {
	var seed SeedFile
	data, err := os.ReadFile(path)
	if err != nil {
		return seed, fmt.Errorf("read seed file: %w", err)
	}
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return seed, fmt.Errorf("parse seed file: %w", err)
	}
	for i, g := range seed.Games {
		if err := g.Validate(); err != nil {
			return seed, fmt.Errorf("seed game #%d: %w", i+1, err)
		}
	}
	return seed, nil
}

// Seeder fills an empty games table from the YAML file at path.
// A missing file or an already populated catalog is skipped.
func Seeder(path string) bootstrap.Seeder {
	return bootstrap.SeederFunc(func(ctx context.Context, db *sqlx.DB) error {
		path = strings.TrimSpace(path)
		if path == "" {
			return nil
		}
		seed, err := LoadSeedFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			logger.SEED.Info("seed file missing",
				slog.String("event", "db.seed"),
				slog.String("status", "skip"),
				slog.String("path", path),
			)
			return nil
		}
		if err != nil {
			return err
		}

		store := New(db)
		n, err := store.CountGames(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			logger.SEED.Debug("catalog already populated",
				slog.String("event", "db.seed"),
				slog.String("status", "skip"),
				slog.Int("count", n),
			)
			return nil
		}
		for _, g := range seed.Games {
			if _, err := store.CreateGame(ctx, g); err != nil {
				return err
			}
		}
		logger.SEED.Info("catalog seeded",
			slog.String("event", "db.seed"),
			slog.String("status", "ok"),
			slog.Int("count", len(seed.Games)),
		)
		return nil
	})
}
