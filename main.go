package main

import (
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/apex/log"
	"golang.org/x/image/bmp"

	"github.com/shoccho/pnGo/internal/config"
	"github.com/shoccho/pnGo/internal/logging"
	"github.com/shoccho/pnGo/pngDecoder"
	"github.com/shoccho/pnGo/utils"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: pnGo [flags] file.png...\n\nFlags:\n")
	flag.PrintDefaults()
}

func main() {
	configPath := flag.String("config", "config.json", "path to a JSON config file (ignored if missing)")
	outDir := flag.String("o", "", "output directory (default: next to each input)")
	format := flag.String("format", "", "output format: ppm, bmp or none")
	headerOnly := flag.Bool("header-only", false, "only decode and print the IHDR fields")
	verifyCRC := flag.Bool("verify-crc", false, "verify the CRC-32 of every chunk")
	logLevel := flag.String("log-level", "", "logging level: debug, info, warn, error")
	workers := flag.Int("workers", 0, "number of files decoded in parallel")
	flag.Usage = usage
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}
	// Flags given on the command line win over the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "o":
			cfg.OutputDir = *outDir
		case "format":
			cfg.Format = *format
		case "header-only":
			cfg.HeaderOnly = *headerOnly
		case "verify-crc":
			cfg.VerifyCRC = *verifyCRC
		case "log-level":
			cfg.LogLevel = *logLevel
		case "workers":
			cfg.Workers = *workers
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}
	if err := logging.Setup(os.Stderr, cfg.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "log level:", err)
		os.Exit(2)
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	if failed := run(flag.Args(), cfg); failed > 0 {
		logging.Error("%d of %d file(s) failed", failed, flag.NArg())
		os.Exit(1)
	}
}

// run decodes files on cfg.Workers goroutines and returns how many failed.
// Decodes share no state.
func run(files []string, cfg *config.Config) int {
	jobs := make(chan string, cfg.Workers)
	results := make(chan error, len(files))

	worker := func(id int) {
		for file := range jobs {
			logging.Debug("worker %d processing: %s", id, filepath.Base(file))
			err := processFile(file, cfg)
			if err != nil {
				logging.Error("%s: %v", file, err)
			}
			results <- err
		}
	}
	for w := 0; w < cfg.Workers; w++ {
		go worker(w)
	}

	for _, file := range files {
		jobs <- file
	}
	close(jobs)

	failed := 0
	for range files {
		if err := <-results; err != nil {
			failed++
		}
	}
	return failed
}

func processFile(inputPath string, cfg *config.Config) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}

	opts := []pngDecoder.Option{
		pngDecoder.WithCRCCheck(cfg.VerifyCRC),
		pngDecoder.WithLogger(logging.Logger()),
	}
	if cfg.HeaderOnly {
		opts = append(opts, pngDecoder.WithMode(pngDecoder.HeaderOnly))
	}
	img, err := pngDecoder.Decode(data, opts...)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	hdr := img.Header()
	logging.WithFields(log.Fields{
		"file":       inputPath,
		"width":      hdr.Width,
		"height":     hdr.Height,
		"bit_depth":  hdr.BitDepth,
		"color_type": hdr.ColorType,
		"interlaced": img.Interlaced(),
		"palette":    len(img.Palette()),
	}).Info("decoded")

	if cfg.HeaderOnly || cfg.Format == config.FormatNone {
		return nil
	}
	outPath := config.OutputPath(inputPath, cfg)
	if cfg.OutputDir != "" {
		if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
			return err
		}
	}
	if err := saveImage(img, outPath, cfg.Format); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	logging.Info("wrote %s", outPath)
	return nil
}

func saveImage(img image.Image, filename, format string) error {
	if format == config.FormatPPM {
		return utils.CreatePPM(filename, img)
	}
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := bmp.Encode(file, img); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
