package command

import (
	"context"
	"io"
	"time"

	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-errors"

	"github.com/goliatone/go-resume-export/export"
	"github.com/goliatone/go-resume-export/resume"
)

// ResumeExporter runs exports. *export.Service implements it.
type ResumeExporter interface {
	Export(ctx context.Context, doc resume.Document, opts export.Options, w io.Writer) (export.ExportRecord, error)
}

// ExportCleaner removes expired exports. *export.Service implements it.
type ExportCleaner interface {
	Cleanup(ctx context.Context, now time.Time) (int, error)
}

// ExportResumeHandler handles export requests.
type ExportResumeHandler struct {
	Service ResumeExporter
}

func NewExportResumeHandler(svc ResumeExporter) *ExportResumeHandler {
	return &ExportResumeHandler{Service: svc}
}

func (h *ExportResumeHandler) Execute(ctx context.Context, msg ExportResume) error {
	if h == nil || h.Service == nil {
		return errors.New("export service is required", errors.CategoryInternal).
			WithTextCode("SERVICE_REQUIRED")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	record, err := h.Service.Export(ctx, msg.Document, msg.Options, msg.Output)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = record
	}
	if res := gcmd.ResultFromContext[export.ExportRecord](ctx); res != nil {
		res.Store(record)
	}
	return nil
}

// CleanupExportsHandler removes expired exports.
type CleanupExportsHandler struct {
	Service ExportCleaner
	Config  gcmd.HandlerConfig
	Clock   func() time.Time
}

func NewCleanupExportsHandler(svc ExportCleaner) *CleanupExportsHandler {
	return &CleanupExportsHandler{
		Service: svc,
		Config:  gcmd.HandlerConfig{Expression: "0 * * * *"},
	}
}

func (h *CleanupExportsHandler) Execute(ctx context.Context, msg CleanupExports) error {
	if h == nil || h.Service == nil {
		return errors.New("export service is required", errors.CategoryInternal).
			WithTextCode("SERVICE_REQUIRED")
	}
	now := msg.Now
	if now.IsZero() && h.Clock != nil {
		now = h.Clock()
	}
	count, err := h.Service.Cleanup(ctx, now)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = count
	}
	if res := gcmd.ResultFromContext[int](ctx); res != nil {
		res.Store(count)
	}
	return nil
}

func (h *CleanupExportsHandler) CronHandler() func() error {
	return func() error {
		return h.Execute(context.Background(), CleanupExports{})
	}
}

func (h *CleanupExportsHandler) CronOptions() gcmd.HandlerConfig {
	return h.Config
}

// CLIHandler exposes cleanup via CLI.
func (h *CleanupExportsHandler) CLIHandler() any {
	return &cleanupCLI{handler: h}
}

// CLIOptions describes cleanup CLI metadata.
func (h *CleanupExportsHandler) CLIOptions() gcmd.CLIConfig {
	return gcmd.CLIConfig{
		Path:        []string{"resume-exports-cleanup"},
		Description: "Remove expired resume PDFs and their history",
		Group:       "resumes",
	}
}

type cleanupCLI struct {
	handler *CleanupExportsHandler
}

func (c *cleanupCLI) Run() error {
	if c == nil || c.handler == nil {
		return errors.New("cleanup handler is required", errors.CategoryInternal).
			WithTextCode("CLEANUP_HANDLER_REQUIRED")
	}
	return c.handler.Execute(context.Background(), CleanupExports{})
}
