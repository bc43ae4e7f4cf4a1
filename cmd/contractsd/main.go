package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/contractops/contracts-tracker/constants"
	"github.com/contractops/contracts-tracker/internal/auth"
	"github.com/contractops/contracts-tracker/internal/common"
	"github.com/contractops/contracts-tracker/internal/export"
	"github.com/contractops/contracts-tracker/internal/extract"
	"github.com/contractops/contracts-tracker/internal/repository"
	"github.com/contractops/contracts-tracker/internal/server"
	"github.com/contractops/contracts-tracker/internal/textract"
	"github.com/contractops/contracts-tracker/internal/vocab"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := repository.HealthCheck(ctx, pool, cfg.Database.DialTimeout, logger); err != nil {
		logger.Error("database health check failed", "error", err)
		os.Exit(1)
	}
	if err := repository.InitSchema(ctx, pool); err != nil {
		logger.Error("failed to initialize schema", "error", err)
		os.Exit(1)
	}

	var store vocab.Store
	if cfg.Vocab.SQLitePath != "" {
		sq, err := vocab.OpenSQLiteStore(cfg.Vocab.SQLitePath, logger)
		if err != nil {
			logger.Error("failed to open vocab store", "error", err)
			os.Exit(1)
		}
		defer func() { _ = sq.Close() }()
		store = sq
	} else {
		store = vocab.NewMemoryStore()
	}

	extractor := textract.NewExtractor(textract.Config{
		Pdftoppm:  cfg.OCR.PdftoppmBin,
		Tesseract: cfg.OCR.TesseractBin,
		Lang:      cfg.OCR.Lang,
		DPI:       cfg.OCR.DPI,
		MaxPages:  cfg.OCR.MaxPages,
	}, logger)
	assembler := extract.NewAssembler(store, constants.DefaultArea, logger)
	extractSvc := extract.NewService(extractor, assembler)

	repo := repository.NewContractRepository(pool, logger)
	exporter := export.NewService(cfg.Export.TemplatePath, logger)

	authSvc, err := auth.NewService(cfg.Auth.UsersFile, logger)
	if err != nil {
		logger.Error("failed to set up auth", "error", err)
		os.Exit(1)
	}

	srv := server.New(cfg.Server, cfg.Ingest, extractSvc, repo, exporter, authSvc, logger)
	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("stopped")
}
