package command

import (
	"io"
	"strings"
	"time"

	"github.com/goliatone/go-errors"

	"github.com/goliatone/go-resume-export/export"
	"github.com/goliatone/go-resume-export/resume"
)

// ExportResume produces a PDF for one resume document.
type ExportResume struct {
	Document resume.Document
	Options  export.Options
	Output   io.Writer
	Result   *export.ExportRecord
}

func (ExportResume) Type() string { return "resume:export" }

func (msg ExportResume) Validate() error {
	if strings.TrimSpace(msg.Document.Name) == "" {
		return errors.New("resume name is required", errors.CategoryValidation).
			WithTextCode("RESUME_NAME_REQUIRED")
	}
	if msg.Options.Mode != "" && msg.Options.Mode != export.ModeImage && msg.Options.Mode != export.ModeVector {
		return errors.New("unsupported export mode: "+string(msg.Options.Mode), errors.CategoryValidation).
			WithTextCode("MODE_INVALID")
	}
	return nil
}

// CleanupExports removes expired exports.
type CleanupExports struct {
	Now    time.Time
	Result *int
}

func (CleanupExports) Type() string { return "resume:export:cleanup" }

func (CleanupExports) Validate() error { return nil }
