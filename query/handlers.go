package query

import (
	"context"

	"github.com/goliatone/go-errors"

	"github.com/goliatone/go-resume-export/export"
)

// StatusReader returns single export records. *export.Service implements it.
type StatusReader interface {
	Status(ctx context.Context, exportID string) (export.ExportRecord, error)
}

// HistoryReader lists export records. *export.Service implements it.
type HistoryReader interface {
	History(ctx context.Context, filter export.ProgressFilter) ([]export.ExportRecord, error)
}

// ExportStatusHandler returns a single export record.
type ExportStatusHandler struct {
	Service StatusReader
}

func NewExportStatusHandler(svc StatusReader) *ExportStatusHandler {
	return &ExportStatusHandler{Service: svc}
}

func (h *ExportStatusHandler) Query(ctx context.Context, msg ExportStatus) (export.ExportRecord, error) {
	if h == nil || h.Service == nil {
		return export.ExportRecord{}, errors.New("export service is required", errors.CategoryInternal).
			WithTextCode("SERVICE_REQUIRED")
	}
	if err := msg.Validate(); err != nil {
		return export.ExportRecord{}, err
	}
	return h.Service.Status(ctx, msg.ExportID)
}

// ExportHistoryHandler returns export history.
type ExportHistoryHandler struct {
	Service HistoryReader
}

func NewExportHistoryHandler(svc HistoryReader) *ExportHistoryHandler {
	return &ExportHistoryHandler{Service: svc}
}

func (h *ExportHistoryHandler) Query(ctx context.Context, msg ExportHistory) ([]export.ExportRecord, error) {
	if h == nil || h.Service == nil {
		return nil, errors.New("export service is required", errors.CategoryInternal).
			WithTextCode("SERVICE_REQUIRED")
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return h.Service.History(ctx, msg.Filter)
}
