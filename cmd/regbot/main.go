// regbot runs the event registration bot.
//
// Configuration is read from a YAML file (--config, $CONFIG_PATH or
// ./config.yaml; a missing file is allowed) and then from the environment,
// after loading variables from ./.env when present.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/m3rciful/regbot/core/buildinfo"
	corecmd "github.com/m3rciful/regbot/core/cmd"
	"github.com/m3rciful/regbot/internal/bot"
	"github.com/m3rciful/regbot/internal/config"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "regbot: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("regbot", pflag.ContinueOnError)
	configPath := flags.StringP("config", "c", "", "path to the YAML config file")
	envFile := flags.String("env-file", ".env", "dotenv file loaded before reading the environment")
	showVersion := flags.Bool("version", false, "print version and exit")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if *showVersion {
		fmt.Println("regbot", buildinfo.String())
		return nil
	}

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", *envFile, err)
		}
	}

	return corecmd.Run(corecmd.Options{
		ConfigPath:        *configPath,
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return config.Load(path)
		},
		Bootstrap: func(cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			return bot.Bootstrap(cfg.(*config.Config))
		},
	})
}
