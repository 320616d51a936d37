package exportactivity

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-resume-export/export"
	"github.com/goliatone/go-resume-export/resume"
)

// MemorySink keeps records in memory, in the order they were logged.
type MemorySink struct {
	mu      sync.Mutex
	records []Record
}

// Log appends record.
func (s *MemorySink) Log(ctx context.Context, record Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.records = append(s.records, record)
	s.mu.Unlock()
	return nil
}

// Records returns a copy of the logged records.
func (s *MemorySink) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.records...)
}

// BunSink stores records in the export_activity table.
type BunSink struct {
	DB *bun.DB
}

// NewBunSink creates a sink backed by db.
func NewBunSink(db *bun.DB) *BunSink {
	return &BunSink{DB: db}
}

// CreateSchema creates the export_activity table when missing.
func (s *BunSink) CreateSchema(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return export.NewError(export.KindNotImpl, "activity database not configured", nil)
	}
	_, err := s.DB.NewCreateTable().Model((*activityModel)(nil)).IfNotExists().Exec(ctx)
	return err
}

// Log inserts record.
func (s *BunSink) Log(ctx context.Context, record Record) error {
	if s == nil || s.DB == nil {
		return export.NewError(export.KindNotImpl, "activity database not configured", nil)
	}
	model := activityModel{
		ID:         record.ID,
		Verb:       record.Verb,
		ObjectType: record.ObjectType,
		ObjectID:   record.ObjectID,
		ResumeID:   record.ResumeID,
		Template:   string(record.Template),
		Mode:       string(record.Mode),
		Channel:    record.Channel,
		Data:       record.Data,
		OccurredAt: record.OccurredAt,
	}
	_, err := s.DB.NewInsert().Model(&model).Exec(ctx)
	return err
}

// List returns the records logged for exportID, oldest first.
func (s *BunSink) List(ctx context.Context, exportID string) ([]Record, error) {
	if s == nil || s.DB == nil {
		return nil, export.NewError(export.KindNotImpl, "activity database not configured", nil)
	}
	var models []activityModel
	err := s.DB.NewSelect().Model(&models).
		Where("object_id = ?", exportID).
		Order("occurred_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(models))
	for _, model := range models {
		out = append(out, model.record())
	}
	return out, nil
}

type activityModel struct {
	bun.BaseModel `bun:"table:export_activity"`

	ID         uuid.UUID      `bun:"id,pk,type:uuid"`
	Verb       string         `bun:"verb,notnull"`
	ObjectType string         `bun:"object_type,notnull"`
	ObjectID   string         `bun:"object_id,notnull"`
	ResumeID   string         `bun:"resume_id"`
	Template   string         `bun:"template"`
	Mode       string         `bun:"mode"`
	Channel    string         `bun:"channel"`
	Data       map[string]any `bun:"data,type:json"`
	OccurredAt time.Time      `bun:"occurred_at,notnull"`
}

func (m activityModel) record() Record {
	return Record{
		ID:         m.ID,
		Verb:       m.Verb,
		ObjectType: m.ObjectType,
		ObjectID:   m.ObjectID,
		ResumeID:   m.ResumeID,
		Template:   resume.TemplateID(m.Template),
		Mode:       export.Mode(m.Mode),
		Channel:    m.Channel,
		Data:       m.Data,
		OccurredAt: m.OccurredAt,
	}
}
