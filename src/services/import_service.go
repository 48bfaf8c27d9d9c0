package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/username/tradefolio/backend/src/logger"
	"github.com/username/tradefolio/backend/src/models"
	"github.com/username/tradefolio/backend/src/parsers"
	"github.com/username/tradefolio/backend/src/storage"
	"github.com/username/tradefolio/backend/src/validation"
)

// ImportService runs the statement import pipeline: workbook decode, adapter
// selection, per-row validation, fingerprint dedup and batch persistence.
type ImportService struct {
	store     storage.TradeStore
	analytics AnalyticsServicer
}

func NewImportService(store storage.TradeStore, analyticsSvc AnalyticsServicer) *ImportService {
	return &ImportService{store: store, analytics: analyticsSvc}
}

// ImportFile ingests one uploaded workbook. Row-level problems are collected
// into the report rather than failing the batch, even when every row is
// rejected; only file-level problems (unreadable workbook, unknown format,
// storage failure) return an error.
//
// If ctx expires mid-file, rows validated so far are still persisted and the
// remainder reported as errors, so a re-import picks up where this one
// stopped without duplicating anything.
func (s *ImportService) ImportFile(ctx context.Context, fileData []byte, filename, formatHint string) (models.ImportReport, error) {
	report := models.ImportReport{
		BatchID:    uuid.NewString(),
		SourceFile: filename,
	}

	if err := validation.ValidateUploadFilename(filename); err != nil {
		return report, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}
	if err := validation.ValidateFileContentByMagicBytes(fileData); err != nil {
		return report, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	sheet, err := parsers.ReadWorkbook(fileData)
	if err != nil {
		return report, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	adapter, err := parsers.SelectAdapter(sheet, formatHint)
	if err != nil {
		return report, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}
	report.Broker = adapter.Name()
	logger.L.Info("Selected import adapter", "adapter", adapter.Name(), "filename", filename, "rows", len(sheet.Rows))

	rawRecords, rowErrors := adapter.Parse(sheet)
	report.Errors = append(report.Errors, rowErrors...)

	seen, err := s.store.Fingerprints(ctx)
	if err != nil {
		return report, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}

	importTime := time.Now().UTC().Format(time.RFC3339)
	var pending []models.Trade
	for _, raw := range rawRecords {
		if err := ctx.Err(); err != nil {
			report.Errors = append(report.Errors, models.RowError{
				Row:    raw.Row,
				Reason: "import cancelled before this row was processed",
			})
			continue
		}
		if raw.Broker == "" {
			raw.Broker = adapter.Name()
		}
		t, err := validation.ValidateRecord(raw)
		if err != nil {
			var fe *validation.FieldError
			if errors.As(err, &fe) {
				report.Errors = append(report.Errors, models.RowError{
					Row:    fe.Row,
					Reason: fmt.Sprintf("%s: %s", fe.Field, fe.Reason),
				})
			} else {
				report.Errors = append(report.Errors, models.RowError{Row: raw.Row, Reason: err.Error()})
			}
			continue
		}
		if _, dup := seen[t.Fingerprint]; dup {
			report.Skipped++
			continue
		}
		seen[t.Fingerprint] = struct{}{}
		t.SourceFile = filename
		t.ImportTime = importTime
		pending = append(pending, t)
	}

	saved, dbSkipped, err := s.store.SaveImportedTrades(context.WithoutCancel(ctx), pending)
	if err != nil {
		return report, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	report.Imported = len(saved)
	report.Skipped += dbSkipped

	if report.Imported > 0 && s.analytics != nil {
		s.analytics.InvalidateCache()
	}
	logger.L.Info("Import batch finished",
		"batch_id", report.BatchID, "filename", filename, "adapter", adapter.Name(),
		"imported", report.Imported, "skipped", report.Skipped, "row_errors", len(report.Errors))
	return report, nil
}
