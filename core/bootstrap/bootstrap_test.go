package bootstrap

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/gameclub/core/config"
	coredatabase "github.com/m3rciful/gameclub/core/database"
)

func noLogger(*coreconfig.Config) error { return nil }

func TestRunExecutesPipelineInOrder(t *testing.T) {
	var steps []string
	dbCfg := coredatabase.Config{Path: filepath.Join(t.TempDir(), "club.db")}
	res, err := Run(context.Background(), Options{
		Config:     &coreconfig.Config{},
		Database:   dbCfg,
		Migrations: fstest.MapFS{},
		LoggerInit: func(*coreconfig.Config) error { steps = append(steps, "logger"); return nil },
		Migrate: func(*sqlx.DB, coredatabase.Config, fs.FS) error {
			steps = append(steps, "migrate")
			return nil
		},
		Modules: Modules{Seeders: []Seeder{
			SeederFunc(func(context.Context, *sqlx.DB) error { steps = append(steps, "seed"); return nil }),
		}},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	t.Cleanup(func() { _ = res.DB.Close() })

	want := []string{"logger", "migrate", "seed"}
	if len(steps) != len(want) {
		t.Fatalf("steps = %v, want %v", steps, want)
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Fatalf("steps = %v, want %v", steps, want)
		}
	}
	if res.ShutdownTracing == nil {
		t.Fatal("expected tracing shutdown func")
	}
}

func TestRunStopsOnSeederError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Run(context.Background(), Options{
		Config:     &coreconfig.Config{},
		Database:   coredatabase.Config{Path: filepath.Join(t.TempDir(), "club.db")},
		LoggerInit: noLogger,
		Modules: Modules{Seeders: []Seeder{
			SeederFunc(func(context.Context, *sqlx.DB) error { return boom }),
		}},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}

func TestRunRequiresConfig(t *testing.T) {
	if _, err := Run(context.Background(), Options{}); err == nil {
		t.Fatal("expected error for nil config")
	}
}
