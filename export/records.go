package export

import (
	"context"
	"io"
	"time"

	"github.com/goliatone/go-resume-export/resume"
)

// ExportState is the lifecycle state of a tracked export.
type ExportState string

const (
	StateRunning   ExportState = "running"
	StateCompleted ExportState = "completed"
	StateFailed    ExportState = "failed"
	StateDeleted   ExportState = "deleted"
)

// ExportRecord is the tracked history entry of one export.
type ExportRecord struct {
	ID           string            `json:"id"`
	ResumeID     string            `json:"resumeId,omitempty"`
	ResumeName   string            `json:"resumeName"`
	Template     resume.TemplateID `json:"template"`
	Mode         Mode              `json:"mode"`
	PageSize     string            `json:"pageSize"`
	State        ExportState       `json:"state"`
	Filename     string            `json:"filename,omitempty"`
	Pages        int               `json:"pages,omitempty"`
	BytesWritten int64             `json:"bytes,omitempty"`
	Warnings     []Warning         `json:"warnings,omitempty"`
	Error        string            `json:"error,omitempty"`
	Artifact     ArtifactRef       `json:"artifact"`
	CreatedAt    time.Time         `json:"createdAt"`
	CompletedAt  time.Time         `json:"completedAt,omitempty"`
	ExpiresAt    time.Time         `json:"expiresAt,omitempty"`
}

// Completion carries the outcome written to a record on success.
type Completion struct {
	Filename string
	Pages    int
	Bytes    int64
	Warnings []Warning
	Artifact ArtifactRef
}

// ProgressFilter narrows History queries.
type ProgressFilter struct {
	ResumeID string
	State    ExportState
	Mode     Mode
	Since    time.Time
	Until    time.Time
	Limit    int
}

// ProgressTracker persists export history.
type ProgressTracker interface {
	Start(ctx context.Context, record ExportRecord) (string, error)
	Fail(ctx context.Context, id string, err error) error
	Complete(ctx context.Context, id string, completion Completion) error
	Status(ctx context.Context, id string) (ExportRecord, error)
	List(ctx context.Context, filter ProgressFilter) ([]ExportRecord, error)
}

// RecordDeleter removes records permanently.
type RecordDeleter interface {
	Delete(ctx context.Context, id string) error
}

// ArtifactMeta describes a stored PDF.
type ArtifactMeta struct {
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	Filename    string    `json:"filename"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt,omitempty"`
}

// ArtifactRef references a stored PDF.
type ArtifactRef struct {
	Key  string       `json:"key,omitempty"`
	Meta ArtifactMeta `json:"meta"`
}

// ArtifactStore keeps produced PDFs so they can be downloaded later.
type ArtifactStore interface {
	Put(ctx context.Context, key string, r io.Reader, meta ArtifactMeta) (ArtifactRef, error)
	Open(ctx context.Context, key string) (io.ReadCloser, ArtifactMeta, error)
	Delete(ctx context.Context, key string) error
}

// ArtifactSweeper removes expired artifacts that no record points at anymore.
type ArtifactSweeper interface {
	Sweep(ctx context.Context, now time.Time) (int, error)
}

// MatchesFilter reports whether record satisfies filter, ignoring Limit.
func MatchesFilter(record ExportRecord, filter ProgressFilter) bool {
	if filter.ResumeID != "" && record.ResumeID != filter.ResumeID {
		return false
	}
	if filter.State != "" && record.State != filter.State {
		return false
	}
	if filter.Mode != "" && record.Mode != filter.Mode {
		return false
	}
	if !filter.Since.IsZero() && record.CreatedAt.Before(filter.Since) {
		return false
	}
	if !filter.Until.IsZero() && record.CreatedAt.After(filter.Until) {
		return false
	}
	return true
}
