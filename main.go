package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/gorm"

	"scandiary/cmd/config"
	migration "scandiary/cmd/database/migrate"
	"scandiary/domain"
	"scandiary/internal/utils"
	"scandiary/pkg/scanner"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)

	cfg, err := utils.LoadConfig(*configPath)
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	utils.InitValidator()
	if err := utils.Validate.Struct(cfg); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log.Info("scandiary starting", "diary", cfg.DiaryURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *gorm.DB
	if cfg.JournalEnabled() {
		db, err = config.ConnectDB(cfg)
		if err != nil {
			log.Error("failed to connect journal database", "error", err)
			os.Exit(1)
		}
		if err := migration.Migrate(db); err != nil {
			log.Error("failed to migrate journal database", "error", err)
			os.Exit(1)
		}
	}

	app, pipelineService, err := config.NewApp(cfg, db, log)
	if err != nil {
		log.Error("failed to build agent", "error", err)
		os.Exit(1)
	}

	go func() {
		if err := app.Listen(":" + cfg.StatusPort); err != nil {
			log.Error("status API stopped", "error", err)
		}
	}()

	src, err := openSource(cfg, log)
	if err != nil {
		log.Error("failed to open input device", "error", err)
		os.Exit(1)
	}

	// Shutdown closes the source, which unblocks any in-progress device
	// read inside Run.
	go func() {
		<-ctx.Done()
		src.Close()
	}()

	runErr := pipelineService.Run(ctx, src)
	_ = src.Close()
	_ = app.ShutdownWithTimeout(5 * time.Second)

	if runErr != nil {
		log.Error("agent stopped", "error", runErr)
		os.Exit(1)
	}
	log.Info("agent stopped")
}

// openSource opens the configured scanner device, auto-detects one when
// unconfigured, and falls back to stdin when no device exists at all. An
// explicitly configured device that cannot be opened is a startup failure,
// not a silent stdin fallback.
func openSource(cfg utils.Config, log *slog.Logger) (scanner.BarcodeSource, error) {
	if cfg.ScannerDevice != "" {
		return scanner.OpenEvdevSource(cfg.ScannerDevice, log)
	}

	src, err := scanner.OpenEvdevSource("", log)
	if err == nil {
		return src, nil
	}
	if domain.IsDeviceError(err) {
		log.Warn("no scanner device, reading barcodes from stdin", "error", err)
		return scanner.NewStdinSource(os.Stdin), nil
	}
	return nil, err
}
