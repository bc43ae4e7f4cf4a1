// Package export renders extracted contract data into the cédula
// spreadsheet template at fixed cell coordinates.
package export

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/contractops/contracts-tracker/internal/entity"
)

// Template cell map. The annex list fills a fixed contiguous range
// starting at AnnexStartCell; anything past MaxAnnexRows is silently
// truncated.
const (
	ContractorCell  = "B7"
	NumberCell      = "I7"
	DescriptionCell = "B8"
	AmountCell      = "C13"
	TermCell        = "F13"
	AnnexStartCol   = "B"
	AnnexStartRow   = 29
	MaxAnnexRows    = 31
)

// Service populates cédula workbooks from contract records.
type Service struct {
	templatePath string
	logger       *slog.Logger
}

func NewService(templatePath string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{templatePath: templatePath, logger: logger}
}

// RenderCedula loads the template, writes the record into the mapped
// cells, and returns the workbook bytes.
func (s *Service) RenderCedula(record entity.ContractRecord) ([]byte, error) {
	start := time.Now()

	f, err := excelize.OpenFile(s.templatePath)
	if err != nil {
		return nil, fmt.Errorf("open template: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("failed to close workbook", "error", err)
		}
	}()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("template has no sheets")
	}

	if err := writeRecord(f, sheet, record); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.cedula.ok",
		"contract_number", record.ContractNumber,
		"annex_rows", min(len(record.Annexes), MaxAnnexRows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeRecord(f *excelize.File, sheet string, record entity.ContractRecord) error {
	set := func(cell string, v any) error {
		return f.SetCellValue(sheet, cell, v)
	}

	if record.Contractor != "" {
		if err := set(ContractorCell, "Contratista: "+record.Contractor); err != nil {
			return err
		}
	}
	if record.ContractNumber != "" {
		numero := record.ContractNumber
		if !strings.HasPrefix(numero, "64") {
			numero = "64" + numero
		}
		if err := set(NumberCell, "NO. "+numero); err != nil {
			return err
		}
	}
	if record.Description != "" {
		if err := set(DescriptionCell, "Descripción del contrato: "+record.Description); err != nil {
			return err
		}
	}
	if record.Amount != "" {
		monto := strings.TrimSpace(record.Amount)
		if !strings.HasPrefix(monto, "$") {
			monto = "$" + monto
		}
		if err := set(AmountCell, monto); err != nil {
			return err
		}
	}
	if record.TermDays != "" {
		if err := set(TermCell, record.TermDays); err != nil {
			return err
		}
	}

	if len(record.Annexes) == 0 {
		return nil
	}
	styleID, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("annex style: %w", err)
	}
	for i, annex := range record.Annexes {
		if i >= MaxAnnexRows {
			break
		}
		cell := fmt.Sprintf("%s%d", AnnexStartCol, AnnexStartRow+i)
		if err := set(cell, annex); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, styleID); err != nil {
			return err
		}
	}
	return nil
}
