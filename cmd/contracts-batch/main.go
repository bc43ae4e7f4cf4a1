package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/contractops/contracts-tracker/constants"
	"github.com/contractops/contracts-tracker/internal/extract"
	"github.com/contractops/contracts-tracker/internal/textract"
	"github.com/contractops/contracts-tracker/internal/vocab"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir      = flag.String("dir", "", "directory of contract documents to process (required)")
		out      = flag.String("out", "", "output JSON file path (defaults to stdout)")
		lang     = flag.String("lang", "spa", "tesseract language model")
		dpi      = flag.Int("dpi", 300, "rasterization DPI for scanned pages")
		vocabDB  = flag.String("vocab-db", "", "SQLite path for the annex vocabulary (optional)")
		showText = flag.Bool("text", false, "include the acquired text in the output")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	var store vocab.Store
	if *vocabDB != "" {
		sq, err := vocab.OpenSQLiteStore(*vocabDB, logger)
		if err != nil {
			logger.Error("failed to open vocab store", "error", err)
			os.Exit(1)
		}
		defer func() { _ = sq.Close() }()
		store = sq
	} else {
		store = vocab.NewMemoryStore()
	}

	extractor := textract.NewExtractor(textract.Config{Lang: *lang, DPI: *dpi}, logger)
	assembler := extract.NewAssembler(store, constants.DefaultArea, logger)
	svc := extract.NewService(extractor, assembler)

	type batchResult struct {
		File   string `json:"file"`
		Status string `json:"status"`
		Method string `json:"method,omitempty"`
		Pages  int    `json:"pages,omitempty"`
		Text   string `json:"text,omitempty"`
		Record any    `json:"record,omitempty"`
		Error  string `json:"error,omitempty"`
	}

	var results []batchResult
	processed, failures := 0, 0

	err := filepath.WalkDir(*dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := constants.NormalizeExt(filepath.Ext(path))
		if _, ok := constants.AllowedExtensions[ext]; !ok {
			return nil
		}

		logger.Info("processing file", "path", path)
		res, xerr := svc.Textract.ExtractAuto(ctx, path)
		if xerr != nil {
			logger.Error("failed to process file", "path", path, "error", xerr)
			results = append(results, batchResult{File: path, Status: "error", Error: xerr.Error()})
			failures++
			return nil
		}

		br := batchResult{File: path, Method: res.Method, Pages: res.Pages}
		switch res.Status {
		case textract.StatusError:
			br.Status = "error"
			br.Error = res.Message
			failures++
		case textract.StatusInfo:
			br.Status = "info"
			br.Error = res.Message
			processed++
		default:
			br.Status = "ok"
			record := assembler.ContractData(res.Text)
			br.Record = record
			if *showText {
				br.Text = res.Text
			}
			processed++
		}
		results = append(results, br)
		return nil
	})
	if err != nil {
		logger.Error("failed to walk directory", "dir", *dir, "error", err)
		os.Exit(1)
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		logger.Error("failed to encode results", "error", err)
		os.Exit(1)
	}
	data = append(data, '\n')

	if *out == "" || *out == "-" {
		if _, err := os.Stdout.Write(data); err != nil {
			printError("Error: write output: %v\n", err)
			os.Exit(1)
		}
	} else {
		if err := os.WriteFile(*out, data, 0o644); err != nil {
			logger.Error("failed to write output file", "path", *out, "error", err)
			os.Exit(1)
		}
	}

	logger.Info("batch processing complete",
		"files_processed", processed,
		"failures", failures,
		"output_file", strings.TrimSpace(*out))

	fmt.Fprintf(os.Stderr, "Batch processing complete!\n")
	fmt.Fprintf(os.Stderr, "- Files processed: %d\n", processed)
	fmt.Fprintf(os.Stderr, "- Failures: %d\n", failures)
}
