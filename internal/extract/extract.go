// Package extract exposes the two entry points of the extraction core:
// Text (file -> text, with the tagged acquisition result) and
// ContractData (text -> structured record).
package extract

import (
	"context"
	"log/slog"

	"github.com/contractops/contracts-tracker/constants"
	"github.com/contractops/contracts-tracker/internal/entity"
	"github.com/contractops/contracts-tracker/internal/parse"
	"github.com/contractops/contracts-tracker/internal/textract"
	"github.com/contractops/contracts-tracker/internal/vocab"
)

// Assembler composes the field extractors and the annex detector into
// one ContractRecord. It never fails: every field defaults to empty on
// an extraction miss.
type Assembler struct {
	vocab  vocab.Store
	area   string
	logger *slog.Logger
}

func NewAssembler(store vocab.Store, area string, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	if area == "" {
		area = constants.DefaultArea
	}
	return &Assembler{vocab: store, area: area, logger: logger}
}

// ContractData normalizes raw text and extracts a ContractRecord.
// Safe on empty input; newly discovered annex codes are fed back into
// the vocabulary store.
func (a *Assembler) ContractData(rawText string) entity.ContractRecord {
	record := entity.ContractRecord{Annexes: []string{}, Area: a.area}
	if rawText == "" {
		return record
	}

	text := textract.Normalize(rawText)

	record.ContractNumber, record.Contractor = parse.ContractAndContractor(text)
	record.Description = parse.Object(text)
	record.Amount = parse.Amount(text)
	record.TermDays = parse.TermDays(text)
	if annexes := parse.DetectAnnexes(text, a.vocab); len(annexes) > 0 {
		record.Annexes = annexes
	}

	a.logger.Debug("contract data assembled",
		"contract_number", record.ContractNumber,
		"contractor", record.Contractor != "",
		"amount", record.Amount,
		"term_days", record.TermDays,
		"annexes", len(record.Annexes),
	)
	return record
}

// Service bundles text acquisition with record assembly for callers
// that hold a file path.
type Service struct {
	Textract  *textract.Extractor
	Assembler *Assembler
}

func NewService(tx *textract.Extractor, asm *Assembler) *Service {
	return &Service{Textract: tx, Assembler: asm}
}

// Text acquires document text. Expected failures surface in the Result
// status, not the error.
func (s *Service) Text(ctx context.Context, path string, format constants.FileFormat) (textract.Result, error) {
	return s.Textract.Extract(ctx, path, format)
}

// LegacyText renders the historical marker-string protocol:
// "[ERROR] ..." / "[INFO] ..." prefixes, plain text otherwise.
func (s *Service) LegacyText(ctx context.Context, path string, format constants.FileFormat) (string, error) {
	res, err := s.Textract.Extract(ctx, path, format)
	if err != nil {
		return "", err
	}
	return res.Legacy(), nil
}
