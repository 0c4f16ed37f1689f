//go:build !(js && wasm)

package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := loadConfig(filepath.Join(dir, "missing.yaml"))
	if err != nil {
		t.Fatalf("missing config must not fail: %v", err)
	}
	if cfg.LogLevel != "" || cfg.JPEGQuality != nil {
		t.Fatalf("expected zero config, got %+v", cfg)
	}

	good := filepath.Join(dir, "config.yaml")
	body := "log_level: debug\nlog_format: json\njpeg_quality: 75\nserver_address: 0.0.0.0:9000\nmax_body_bytes: 1024\nmax_pixels: 4096\n"
	if err := os.WriteFile(good, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = loadConfig(good)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.LogFormat != "json" || cfg.ServerAddress != "0.0.0.0:9000" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.JPEGQuality == nil || *cfg.JPEGQuality != 75 {
		t.Fatalf("jpeg_quality: %v", cfg.JPEGQuality)
	}
	if cfg.MaxBodyBytes == nil || *cfg.MaxBodyBytes != 1024 {
		t.Fatalf("max_body_bytes: %v", cfg.MaxBodyBytes)
	}
	if cfg.MaxPixels == nil || *cfg.MaxPixels != 4096 {
		t.Fatalf("max_pixels: %v", cfg.MaxPixels)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("log_level: [unterminated\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(bad); err == nil {
		t.Fatalf("expected error for malformed config")
	}
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &bytes.Buffer{}
	err := app.Run(context.Background(), append([]string{"qp"}, args...))
	return out.String(), err
}

func TestCLIEncodeDecodeInfo(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "none.yaml")
	src := filepath.Join(dir, "red.png")
	qpPath := filepath.Join(dir, "red.qp")
	dst := filepath.Join(dir, "red.bmp")

	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 255, A: 255})
	f, err := os.Create(src)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	out, err := runApp(t, "--config", cfgPath, "encode", src, qpPath)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(out, "encoded") {
		t.Fatalf("missing confirmation: %q", out)
	}

	out, err = runApp(t, "--config", cfgPath, "decode", qpPath, dst)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(out, "decoded") {
		t.Fatalf("missing confirmation: %q", out)
	}
	if _, err := os.Stat(dst); err != nil {
		t.Fatalf("decoded file: %v", err)
	}

	out, err = runApp(t, "--config", cfgPath, "info", "--json", qpPath)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	var report infoReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("info json: %v (%s)", err, out)
	}
	if report.Width != 2 || report.Height != 1 || report.Path != qpPath {
		t.Fatalf("report: %+v", report)
	}

	out, err = runApp(t, "--config", cfgPath, "info", qpPath)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if !strings.Contains(out, "dimensions:  2x1") {
		t.Fatalf("text report: %q", out)
	}
}

func TestCLIErrors(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "none.yaml")

	if _, err := runApp(t, "--config", cfgPath, "encode", "only-one-arg"); err == nil {
		t.Fatalf("expected usage error")
	}
	if _, err := runApp(t, "--config", cfgPath, "decode", filepath.Join(dir, "missing.qp"), filepath.Join(dir, "x.png")); err == nil {
		t.Fatalf("expected error for missing input")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("jpeg_quality: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := runApp(t, "--config", bad, "info", filepath.Join(dir, "missing.qp")); err == nil || !strings.Contains(err.Error(), "config") {
		t.Fatalf("expected config error, got %v", err)
	}
}
