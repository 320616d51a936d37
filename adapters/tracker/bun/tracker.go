package trackerbun

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-resume-export/export"
	"github.com/goliatone/go-resume-export/resume"
)

// Tracker stores resume export history in a Bun-backed database.
type Tracker struct {
	DB          *bun.DB
	Now         func() time.Time
	IDGenerator func() string
}

var (
	_ export.ProgressTracker = (*Tracker)(nil)
	_ export.RecordDeleter   = (*Tracker)(nil)
)

// NewTracker creates a Bun-backed tracker.
func NewTracker(db *bun.DB) *Tracker {
	return &Tracker{DB: db, Now: time.Now, IDGenerator: uuid.NewString}
}

// CreateSchema creates the export_records table when missing.
func (t *Tracker) CreateSchema(ctx context.Context) error {
	if err := t.ready(); err != nil {
		return err
	}
	if _, err := t.DB.NewCreateTable().Model((*recordModel)(nil)).IfNotExists().Exec(ctx); err != nil {
		return err
	}
	_, err := t.DB.NewCreateIndex().Model((*recordModel)(nil)).
		Index("export_records_resume_created_idx").
		Column("resume_id", "created_at").
		IfNotExists().
		Exec(ctx)
	return err
}

// Start inserts a running record.
func (t *Tracker) Start(ctx context.Context, record export.ExportRecord) (string, error) {
	if err := t.ready(); err != nil {
		return "", err
	}
	if record.ID == "" {
		record.ID = t.nextID()
	}
	if record.State == "" {
		record.State = export.StateRunning
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = t.now()
	}

	model, err := modelFromRecord(record)
	if err != nil {
		return "", err
	}
	if _, err := t.DB.NewInsert().Model(&model).Exec(ctx); err != nil {
		return "", err
	}
	return record.ID, nil
}

// Fail marks the export as failed and keeps the error message.
func (t *Tracker) Fail(ctx context.Context, id string, cause error) error {
	message := ""
	if cause != nil {
		message = cause.Error()
	}
	return t.update(ctx, id, func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.
			Set("state = ?", string(export.StateFailed)).
			Set("error = ?", message).
			Set("completed_at = ?", t.now())
	})
}

// Complete marks the export as completed with its outcome.
func (t *Tracker) Complete(ctx context.Context, id string, completion export.Completion) error {
	warnings, err := json.Marshal(completion.Warnings)
	if err != nil {
		return err
	}
	meta, err := json.Marshal(completion.Artifact.Meta)
	if err != nil {
		return err
	}
	return t.update(ctx, id, func(q *bun.UpdateQuery) *bun.UpdateQuery {
		q = q.
			Set("state = ?", string(export.StateCompleted)).
			Set("filename = ?", completion.Filename).
			Set("pages = ?", completion.Pages).
			Set("bytes_written = ?", completion.Bytes).
			Set("warnings = ?", warnings).
			Set("artifact_key = ?", completion.Artifact.Key).
			Set("artifact_meta = ?", meta).
			Set("completed_at = ?", t.now())
		if !completion.Artifact.Meta.ExpiresAt.IsZero() {
			q = q.Set("expires_at = ?", completion.Artifact.Meta.ExpiresAt)
		}
		return q
	})
}

// Status returns a record by ID.
func (t *Tracker) Status(ctx context.Context, id string) (export.ExportRecord, error) {
	if err := t.ready(); err != nil {
		return export.ExportRecord{}, err
	}
	if id == "" {
		return export.ExportRecord{}, export.NewError(export.KindValidation, "export ID is required", nil)
	}

	model := new(recordModel)
	err := t.DB.NewSelect().Model(model).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return export.ExportRecord{}, export.NewError(export.KindNotFound, fmt.Sprintf("export %q not found", id), nil)
		}
		return export.ExportRecord{}, err
	}
	return model.toRecord()
}

// List returns records matching filter, newest first.
func (t *Tracker) List(ctx context.Context, filter export.ProgressFilter) ([]export.ExportRecord, error) {
	if err := t.ready(); err != nil {
		return nil, err
	}

	models := make([]recordModel, 0)
	query := t.DB.NewSelect().Model(&models)
	if filter.ResumeID != "" {
		query = query.Where("resume_id = ?", filter.ResumeID)
	}
	if filter.State != "" {
		query = query.Where("state = ?", string(filter.State))
	}
	if filter.Mode != "" {
		query = query.Where("mode = ?", string(filter.Mode))
	}
	if !filter.Since.IsZero() {
		query = query.Where("created_at >= ?", filter.Since)
	}
	if !filter.Until.IsZero() {
		query = query.Where("created_at <= ?", filter.Until)
	}
	query = query.Order("created_at DESC", "id ASC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	if err := query.Scan(ctx); err != nil {
		return nil, err
	}

	records := make([]export.ExportRecord, 0, len(models))
	for _, model := range models {
		record, err := model.toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// Delete removes a record permanently.
func (t *Tracker) Delete(ctx context.Context, id string) error {
	if err := t.ready(); err != nil {
		return err
	}
	if id == "" {
		return export.NewError(export.KindValidation, "export ID is required", nil)
	}

	res, err := t.DB.NewDelete().Model((*recordModel)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}
	return affectedOne(res, id)
}

func (t *Tracker) update(ctx context.Context, id string, set func(*bun.UpdateQuery) *bun.UpdateQuery) error {
	if err := t.ready(); err != nil {
		return err
	}
	if id == "" {
		return export.NewError(export.KindValidation, "export ID is required", nil)
	}

	query := set(t.DB.NewUpdate().Model((*recordModel)(nil))).Where("id = ?", id)
	res, err := query.Exec(ctx)
	if err != nil {
		return err
	}
	return affectedOne(res, id)
}

func affectedOne(res sql.Result, id string) error {
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return export.NewError(export.KindNotFound, fmt.Sprintf("export %q not found", id), nil)
	}
	return nil
}

type recordModel struct {
	bun.BaseModel `bun:"table:export_records,alias:export_records"`

	ID           string    `bun:",pk"`
	ResumeID     string    `bun:"resume_id"`
	ResumeName   string    `bun:"resume_name"`
	Template     string    `bun:"template,notnull"`
	Mode         string    `bun:"mode,notnull"`
	PageSize     string    `bun:"page_size,notnull"`
	State        string    `bun:"state,notnull"`
	Filename     string    `bun:"filename"`
	Pages        int       `bun:"pages"`
	BytesWritten int64     `bun:"bytes_written"`
	Warnings     []byte    `bun:"warnings"`
	Error        string    `bun:"error"`
	ArtifactKey  string    `bun:"artifact_key"`
	ArtifactMeta []byte    `bun:"artifact_meta"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
	CompletedAt  time.Time `bun:"completed_at,nullzero"`
	ExpiresAt    time.Time `bun:"expires_at,nullzero"`
}

func modelFromRecord(record export.ExportRecord) (recordModel, error) {
	warnings, err := json.Marshal(record.Warnings)
	if err != nil {
		return recordModel{}, err
	}
	meta, err := json.Marshal(record.Artifact.Meta)
	if err != nil {
		return recordModel{}, err
	}

	return recordModel{
		ID:           record.ID,
		ResumeID:     record.ResumeID,
		ResumeName:   record.ResumeName,
		Template:     string(record.Template),
		Mode:         string(record.Mode),
		PageSize:     record.PageSize,
		State:        string(record.State),
		Filename:     record.Filename,
		Pages:        record.Pages,
		BytesWritten: record.BytesWritten,
		Warnings:     warnings,
		Error:        record.Error,
		ArtifactKey:  record.Artifact.Key,
		ArtifactMeta: meta,
		CreatedAt:    record.CreatedAt,
		CompletedAt:  record.CompletedAt,
		ExpiresAt:    record.ExpiresAt,
	}, nil
}

func (m recordModel) toRecord() (export.ExportRecord, error) {
	record := export.ExportRecord{
		ID:           m.ID,
		ResumeID:     m.ResumeID,
		ResumeName:   m.ResumeName,
		Template:     resume.TemplateID(m.Template),
		Mode:         export.Mode(m.Mode),
		PageSize:     m.PageSize,
		State:        export.ExportState(m.State),
		Filename:     m.Filename,
		Pages:        m.Pages,
		BytesWritten: m.BytesWritten,
		Error:        m.Error,
		Artifact:     export.ArtifactRef{Key: m.ArtifactKey},
		CreatedAt:    m.CreatedAt,
		CompletedAt:  m.CompletedAt,
		ExpiresAt:    m.ExpiresAt,
	}
	if len(m.Warnings) > 0 {
		if err := json.Unmarshal(m.Warnings, &record.Warnings); err != nil {
			return export.ExportRecord{}, err
		}
	}
	if len(m.ArtifactMeta) > 0 {
		if err := json.Unmarshal(m.ArtifactMeta, &record.Artifact.Meta); err != nil {
			return export.ExportRecord{}, err
		}
	}
	return record, nil
}

func (t *Tracker) ready() error {
	if t == nil || t.DB == nil {
		return export.NewError(export.KindNotImpl, "tracker database not configured", nil)
	}
	return nil
}

func (t *Tracker) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

func (t *Tracker) nextID() string {
	if t.IDGenerator != nil {
		return t.IDGenerator()
	}
	return uuid.NewString()
}
