package main

import (
	"os"

	"github.com/andresuchdata/return-router/backend-go/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	_ = godotenv.Load(".env")

	if err := newApp().Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("router failed")
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "router",
		Usage: "Recommend a store for each returned product",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.BoolFlag{
				Name:  "log-json",
				Usage: "Write logs to stderr as JSON instead of console format",
			},
		},
		Before: func(c *cli.Context) error {
			logger.SetOutput(os.Stderr, !c.Bool("log-json"))
			logger.SetLevel(c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			recommendCommand(),
			fetchCommand(),
			publishCommand(),
		},
	}
}
