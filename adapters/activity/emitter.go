package exportactivity

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-resume-export/export"
	"github.com/goliatone/go-resume-export/resume"
)

// Record is one entry in the export activity log.
type Record struct {
	ID         uuid.UUID
	Verb       string
	ObjectType string
	ObjectID   string
	ResumeID   string
	Template   resume.TemplateID
	Mode       export.Mode
	Channel    string
	Data       map[string]any
	OccurredAt time.Time
}

// ActivitySink persists activity records.
type ActivitySink interface {
	Log(ctx context.Context, record Record) error
}

// Config configures the activity emitter adapter.
type Config struct {
	Sink       ActivitySink
	Channel    string
	ObjectType string
}

// Emitter adapts exporter lifecycle events into activity records.
type Emitter struct {
	sink       ActivitySink
	channel    string
	objectType string
}

var _ export.ChangeEmitter = (*Emitter)(nil)

// NewEmitter creates a new activity emitter.
func NewEmitter(cfg Config) *Emitter {
	channel := strings.TrimSpace(cfg.Channel)
	if channel == "" {
		channel = "export"
	}
	objectType := strings.TrimSpace(cfg.ObjectType)
	if objectType == "" {
		objectType = "resume_export"
	}
	return &Emitter{
		sink:       cfg.Sink,
		channel:    channel,
		objectType: objectType,
	}
}

// Emit logs export lifecycle events to the configured ActivitySink.
func (e *Emitter) Emit(ctx context.Context, evt export.ChangeEvent) error {
	if e == nil {
		return export.NewError(export.KindInternal, "activity emitter is nil", nil)
	}
	if e.sink == nil {
		return export.NewError(export.KindNotImpl, "activity sink not configured", nil)
	}
	verb := strings.TrimSpace(evt.Name)
	if verb == "" {
		return export.NewError(export.KindValidation, "activity verb is required", nil)
	}
	objectID := strings.TrimSpace(evt.ExportID)
	if objectID == "" {
		return export.NewError(export.KindValidation, "activity object ID is required", nil)
	}

	occurred := evt.Timestamp
	if occurred.IsZero() {
		occurred = time.Now()
	}
	return e.sink.Log(ctx, Record{
		ID:         uuid.New(),
		Verb:       verb,
		ObjectType: e.objectType,
		ObjectID:   objectID,
		ResumeID:   evt.ResumeID,
		Template:   evt.Template,
		Mode:       evt.Mode,
		Channel:    e.channel,
		Data:       buildMetadata(evt),
		OccurredAt: occurred.UTC(),
	})
}

func buildMetadata(evt export.ChangeEvent) map[string]any {
	meta := make(map[string]any, len(evt.Metadata)+1)
	for k, v := range evt.Metadata {
		if d, ok := v.(time.Duration); ok {
			v = d.Milliseconds()
			k += "_ms"
		}
		meta[k] = v
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}
