//go:build !(js && wasm)

package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"
	"github.com/urfave/cli/v3"

	"github.com/dassCS/qP/api"
	"github.com/dassCS/qP/logger"
	"github.com/dassCS/qP/qp"
	"github.com/dassCS/qP/utils"
)

func twoPaths(cmd *cli.Command) (string, string, error) {
	if cmd.Args().Len() != 2 {
		return "", "", fmt.Errorf("usage: qp %s <input> <output>", cmd.Name)
	}
	return cmd.Args().Get(0), cmd.Args().Get(1), nil
}

func encodeCmd() *cli.Command {
	return &cli.Command{
		Name:      "encode",
		Usage:     "Encode a raster image (png, jpg, bmp, gif, tiff, ico, tga, webp) into a QP file",
		ArgsUsage: "<input> <output>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			in, out, err := twoPaths(cmd)
			if err != nil {
				return err
			}
			if err := utils.RunImage2QP(ctx, in, out); err != nil {
				return fmt.Errorf("error encoding image: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.Root().Writer, "Image encoded to %q successfully.\n", out)
			return nil
		},
	}
}

func decodeCmd() *cli.Command {
	return &cli.Command{
		Name:      "decode",
		Usage:     "Decode a QP file into the image format named by the output extension",
		ArgsUsage: "<input> <output>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			in, out, err := twoPaths(cmd)
			if err != nil {
				return err
			}
			if err := utils.RunQP2Image(ctx, in, out, rasterOptions()); err != nil {
				return fmt.Errorf("error decoding QP image: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.Root().Writer, "QP image decoded to %q successfully.\n", out)
			return nil
		},
	}
}

type infoReport struct {
	Path string `json:"path"`
	qp.Info
	Ratio float64 `json:"ratio"`
}

func infoCmd() *cli.Command {
	var asJSON bool
	return &cli.Command{
		Name:      "info",
		Usage:     "Validate a QP file and print its header, sizes and pixel digest",
		ArgsUsage: "<input>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print the report as JSON",
				Destination: &asJSON,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return fmt.Errorf("usage: qp info [--json] <input>")
			}
			path := cmd.Args().Get(0)
			info, err := utils.RunQPInfo(ctx, path)
			if err != nil {
				return err
			}
			w := cmd.Root().Writer
			if asJSON {
				data, err := json.MarshalIndent(infoReport{Path: path, Info: info, Ratio: info.Ratio()}, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(w, string(data))
				return err
			}
			layout := "RGBA"
			if info.Channels == 3 {
				layout = "RGB"
			}
			_, _ = fmt.Fprintf(w, "file:        %s\n", path)
			_, _ = fmt.Fprintf(w, "dimensions:  %dx%d\n", info.Width, info.Height)
			_, _ = fmt.Fprintf(w, "channels:    %d (%s)\n", info.Channels, layout)
			_, _ = fmt.Fprintf(w, "compression: %s (method %d)\n", info.Compression, uint8(info.Compression))
			_, _ = fmt.Fprintf(w, "payload:     %d bytes\n", info.PayloadSize)
			_, _ = fmt.Fprintf(w, "pixels:      %d bytes (ratio %.2f)\n", info.PixelSize, info.Ratio())
			_, _ = fmt.Fprintf(w, "digest:      %016x\n", info.Digest)
			return nil
		},
	}
}

func serveCmd() *cli.Command {
	var (
		addr        string
		maxBody     int64
		maxPixels   int64
		readTimeout time.Duration
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the conversion HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.Int64Flag{
				Name:        "max-body",
				Usage:       "maximum request body size in bytes",
				Value:       api.DefaultMaxBodyBytes,
				Destination: &maxBody,
			},
			&cli.Int64Flag{
				Name:        "max-pixels",
				Usage:       "maximum width*height of an image the server decodes",
				Value:       api.DefaultMaxPixels,
				Destination: &maxPixels,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read header timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyServeConfig(cmd, fileConfig, &addr, &maxBody, &maxPixels)
			log := logger.FromContext(ctx)

			server := api.NewServer(api.Config{
				MaxBodyBytes: maxBody,
				MaxPixels:    maxPixels,
				Raster:       rasterOptions(),
				Logger:       log,
			})
			e := api.NewEcho(server)
			log.Info("starting server", "address", addr, "max_body", maxBody, "max_pixels", maxPixels)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					h, err := api.Compress(srv.Handler)
					if err != nil {
						return err
					}
					srv.Handler = h
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
