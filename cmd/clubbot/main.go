// Command clubbot runs the game club Telegram bot.
package main

import (
	"errors"
	"log"

	"github.com/m3rciful/gameclub/club/app"
	corecmd "github.com/m3rciful/gameclub/core/cmd"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "configs/config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return app.Load(path)
		},
		Bootstrap: func(cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			return app.Bootstrap(cfg.(*app.Config))
		},
	})
	if err != nil && !errors.Is(err, corecmd.ErrVersionRequested) {
		log.Fatal(err)
	}
}
