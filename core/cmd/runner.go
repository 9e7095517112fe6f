// Package cmd holds the process lifecycle shared by bot binaries: config
// discovery, bootstrap, signal handling and orderly shutdown.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m3rciful/gameclub/core/buildinfo"
	coreconfig "github.com/m3rciful/gameclub/core/config"
	"github.com/m3rciful/gameclub/core/logger"
	coretelegram "github.com/m3rciful/gameclub/core/telegram"
)

const closeTimeout = 5 * time.Second

// ErrVersionRequested is returned by Run after printing the build version.
var ErrVersionRequested = errors.New("cmd: version requested")

// ConfigCarrier exposes access to the embedded core configuration.
type ConfigCarrier interface {
	CoreConfig() *coreconfig.Config
}

// TelegramApp is the minimal interface required to run a Telegram bot.
type TelegramApp interface {
	TelegramRunOptions() (coretelegram.RunOptions, error)
}

// Closer is implemented by apps that hold resources beyond the bot runtime
// (database, tracer, broker, probe listener).
type Closer interface {
	Close(ctx context.Context) error
}

// Options describe how to load configuration, bootstrap the app, and run the bot.
type Options struct {
	ConfigEnvVar      string
	DefaultConfigPath string

	// Args are the command line arguments without the program name;
	// nil means os.Args[1:].
	Args   []string
	Stdout io.Writer

	LoadConfig func(path string) (ConfigCarrier, error)
	Bootstrap  func(cfg ConfigCarrier) (TelegramApp, error)

	ShutdownLogger func() error
	RunTelegram    func(ctx context.Context, opts coretelegram.RunOptions) error
	// Context is the parent of the run context; it is cancelled on SIGINT
	// and SIGTERM. Defaults to context.Background().
	Context context.Context
}

// Run loads configuration, bootstraps the app and runs the bot until a
// signal arrives. The config path comes from -config, then the environment
// variable, then DefaultConfigPath.
func Run(opts Options) error {
	if opts.LoadConfig == nil || opts.Bootstrap == nil {
		return fmt.Errorf("cmd: LoadConfig and Bootstrap are required")
	}
	cfgPath, err := configPath(opts)
	if err != nil {
		return err
	}

	log.Printf("loading config: %s", cfgPath)
	cfg, err := opts.LoadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("cmd: failed to load config: %w", err)
	}
	if cfg.CoreConfig() == nil {
		return fmt.Errorf("cmd: loaded config is missing core configuration")
	}

	shutdownLogger := opts.ShutdownLogger
	if shutdownLogger == nil {
		shutdownLogger = logger.Shutdown
	}
	defer func() {
		if err := shutdownLogger(); err != nil {
			log.Printf("logger shutdown error: %v", err)
		}
	}()

	startedAt := time.Now()
	application, err := opts.Bootstrap(cfg)
	if err != nil {
		return fmt.Errorf("cmd: bootstrap failed: %w", err)
	}
	defer closeApp(application)

	runOpts, err := application.TelegramRunOptions()
	if err != nil {
		return fmt.Errorf("cmd: telegram options build failed: %w", err)
	}
	appLog := logger.Component("app")
	runOpts.OnStart = chainStart(runOpts.OnStart, func(ctx context.Context) {
		appLog.LogAttrs(ctx, slog.LevelInfo, "app ready",
			slog.String("event", "ready"),
			slog.String("build", buildinfo.String()),
			slog.Duration("startup_duration", logger.Took(startedAt)),
		)
	})
	runOpts.OnStop = chainStop(runOpts.OnStop, func(ctx context.Context) {
		appLog.LogAttrs(ctx, slog.LevelInfo, "shutting down", slog.String("event", "shutdown"))
	})

	parent := opts.Context
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	run := opts.RunTelegram
	if run == nil {
		run = coretelegram.RunTelegram
	}
	return run(ctx, runOpts)
}

func configPath(opts Options) (string, error) {
	env := opts.ConfigEnvVar
	if env == "" {
		env = "CONFIG_PATH"
	}
	args := opts.Args
	if args == nil {
		args = os.Args[1:]
	}
	fs := flag.NewFlagSet("bot", flag.ContinueOnError)
	path := fs.String("config", "", "path to the YAML config (overrides $"+env+")")
	version := fs.Bool("version", false, "print the build version and exit")
	if err := fs.Parse(args); err != nil {
		return "", fmt.Errorf("cmd: %w", err)
	}
	if *version {
		out := opts.Stdout
		if out == nil {
			out = os.Stdout
		}
		fmt.Fprintln(out, buildinfo.String())
		return "", ErrVersionRequested
	}
	switch {
	case *path != "":
		return *path, nil
	case os.Getenv(env) != "":
		return os.Getenv(env), nil
	case opts.DefaultConfigPath != "":
		return opts.DefaultConfigPath, nil
	}
	return "", fmt.Errorf("cmd: config path not provided via -config, %s or DefaultConfigPath", env)
}

func chainStart(prev func(context.Context, coretelegram.Runtime) error, after func(context.Context)) func(context.Context, coretelegram.Runtime) error {
	return func(ctx context.Context, rt coretelegram.Runtime) error {
		if prev != nil {
			if err := prev(ctx, rt); err != nil {
				return err
			}
		}
		after(ctx)
		return nil
	}
}

func chainStop(prev func(context.Context, coretelegram.Runtime) error, before func(context.Context)) func(context.Context, coretelegram.Runtime) error {
	return func(ctx context.Context, rt coretelegram.Runtime) error {
		before(ctx)
		if prev != nil {
			return prev(ctx, rt)
		}
		return nil
	}
}

func closeApp(application TelegramApp) {
	closer, ok := application.(Closer)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if err := closer.Close(ctx); err != nil {
		logger.Component("app").LogAttrs(ctx, slog.LevelWarn, "close failed",
			slog.String("event", "shutdown"),
			slog.String("err", err.Error()),
		)
	}
}
