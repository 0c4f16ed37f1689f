//go:build !(js && wasm)

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/dassCS/qP/logger"
	"github.com/dassCS/qP/raster"
)

var (
	configFile  string
	logLevel    string
	logFormat   string
	jpegQuality int64

	fileConfig Config
)

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to config.yaml",
			Value:       defaultConfigPath(),
			Destination: &configFile,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "warn",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (auto, pretty, json, text)",
			Value:       "auto",
			Destination: &logFormat,
		},
		&cli.Int64Flag{
			Name:        "jpeg-quality",
			Usage:       "JPEG quality (1-100) when decoding to .jpg",
			Value:       raster.DefaultJPEGQuality,
			Destination: &jpegQuality,
		},
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "qp",
		Usage: "Convert raster images to and from the QP container",
		Flags: globalFlags(),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			cfg, err := loadConfig(configFile)
			if err != nil {
				return ctx, err
			}
			fileConfig = cfg
			applyGlobalConfig(cmd, cfg)
			log := logger.NewFormat(os.Stderr, logFormat, logger.ParseLevel(logLevel))
			return logger.WithContext(ctx, log), nil
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			encodeCmd(),
			decodeCmd(),
			infoCmd(),
			serveCmd(),
		},
	}
}

func rasterOptions() *raster.Options {
	return &raster.Options{JPEGQuality: int(jpegQuality)}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
