package bootstrap

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/gameclub/core/config"
	coredatabase "github.com/m3rciful/gameclub/core/database"
	"github.com/m3rciful/gameclub/core/logger"
	"github.com/m3rciful/gameclub/core/tracing"
)

// Options control the generic bootstrap pipeline shared between bots.
type Options struct {
	Config     *coreconfig.Config
	Database   coredatabase.Config
	Migrations fs.FS
	Modules    Modules

	LoggerInit  func(*coreconfig.Config) error
	InitTracing func(context.Context, coreconfig.TracingConfig) (tracing.ShutdownFunc, error)
	Connect     func(coredatabase.Config) (*sqlx.DB, error)
	Migrate     func(*sqlx.DB, coredatabase.Config, fs.FS) error
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	DB              *sqlx.DB
	ShutdownTracing tracing.ShutdownFunc
}

// Run initializes the logger and tracing, connects to the database, applies
// migrations, and runs seeders.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	initTracing := opts.InitTracing
	if initTracing == nil {
		initTracing = tracing.Init
	}
	shutdownTracing, err := initTracing(ctx, opts.Config.Tracing)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: tracing init failed: %w", err)
	}

	connect := opts.Connect
	if connect == nil {
		connect = coredatabase.Connect
	}
	db, err := connect(opts.Database)
	if err != nil {
		_ = shutdownTracing(ctx)
		return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
	}

	fail := func(err error) (*Result, error) {
		_ = db.Close()
		_ = shutdownTracing(ctx)
		return nil, err
	}

	migrate := opts.Migrate
	if migrate == nil {
		migrate = coredatabase.RunMigrations
	}
	if opts.Migrations != nil {
		if err := migrate(db, opts.Database, opts.Migrations); err != nil {
			return fail(fmt.Errorf("bootstrap: migrations failed: %w", err))
		}
	}

	for i, s := range opts.Modules.Seeders {
		if err := s.Seed(ctx, db); err != nil {
			logger.SEED.Error("seeder failed",
				slog.String("event", "db.seed"),
				slog.Int("count", i),
				slog.String("err", err.Error()),
			)
			return fail(fmt.Errorf("bootstrap: seeder %d failed: %w", i, err))
		}
	}

	return &Result{DB: db, ShutdownTracing: shutdownTracing}, nil
}
