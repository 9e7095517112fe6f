package logger

import (
	"log/slog"
	"path/filepath"
	"testing"

	coreconfig "github.com/m3rciful/gameclub/core/config"
)

func TestResolveOptionsDefaults(t *testing.T) {
	opts := resolveOptions(nil)
	if opts.level != slog.LevelInfo || opts.format != formatJSON || opts.profile != "prod" {
		t.Fatalf("defaults = %+v", opts)
	}
	if opts.sample != [2]int{1, 50} || opts.file != "" {
		t.Fatalf("defaults = %+v", opts)
	}
}

func TestResolveOptionsFromConfig(t *testing.T) {
	cfg := &coreconfig.Config{Logging: coreconfig.LoggingConfig{
		Level:       "Warning",
		Profile:     "Dev",
		KeysOrder:   "ts, event ,,level",
		DebugSample: "off",
		Dir:         "logs",
		BotFile:     "bot.log",
	}}
	opts := resolveOptions(cfg)
	if opts.level != slog.LevelWarn {
		t.Fatalf("level = %v", opts.level)
	}
	if opts.format != formatKV {
		t.Fatalf("dev profile should default to kv, got %q", opts.format)
	}
	if len(opts.keyOrder) != 3 || opts.keyOrder[1] != "event" {
		t.Fatalf("key order = %q", opts.keyOrder)
	}
	if opts.sample != [2]int{0, 0} {
		t.Fatalf("sample = %v", opts.sample)
	}
	if opts.file != filepath.Join("logs", "bot.log") {
		t.Fatalf("file = %q", opts.file)
	}

	cfg.Logging.Format = "json"
	if got := resolveOptions(cfg).format; got != formatJSON {
		t.Fatalf("explicit json format = %q", got)
	}
}
