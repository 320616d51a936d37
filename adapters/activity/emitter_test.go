package exportactivity

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"testing"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/goliatone/go-resume-export/export"
	"github.com/goliatone/go-resume-export/resume"
)

var baseTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestEmitter_RequiresSink(t *testing.T) {
	err := NewEmitter(Config{}).Emit(context.Background(), export.ChangeEvent{Name: "export.requested", ExportID: "exp-1"})
	if export.KindFromError(err) != export.KindNotImpl {
		t.Fatalf("expected not implemented, got %v", err)
	}
}

func TestEmitter_ValidatesEvent(t *testing.T) {
	emitter := NewEmitter(Config{Sink: &MemorySink{}})
	if err := emitter.Emit(context.Background(), export.ChangeEvent{ExportID: "exp-1"}); export.KindFromError(err) != export.KindValidation {
		t.Fatalf("expected validation error for missing verb, got %v", err)
	}
	if err := emitter.Emit(context.Background(), export.ChangeEvent{Name: "export.requested"}); export.KindFromError(err) != export.KindValidation {
		t.Fatalf("expected validation error for missing export id, got %v", err)
	}
}

func TestEmitter_RecordsExporterLifecycle(t *testing.T) {
	sink := &MemorySink{}
	exporter := export.NewExporter(nil, nil)
	exporter.Defaults = export.Options{Mode: export.ModeVector}
	exporter.Now = func() time.Time { return baseTime }
	exporter.IDGenerator = func() string { return "exp-1" }
	exporter.Events = NewEmitter(Config{Sink: sink})
	emitter := export.EmitterFunc(func(ctx context.Context, job export.EmitJob, w io.Writer) (export.EmitStats, error) {
		n, err := io.WriteString(w, "%PDF-1.3\n%%EOF\n")
		return export.EmitStats{Pages: 1, Bytes: int64(n)}, err
	})
	if err := exporter.Emitters.Register(export.ModeVector, emitter); err != nil {
		t.Fatalf("register: %v", err)
	}

	var buf bytes.Buffer
	if _, err := exporter.Export(context.Background(), export.Request{Document: resume.SampleDocument(), Output: &buf}); err != nil {
		t.Fatalf("export: %v", err)
	}

	records := sink.Records()
	if len(records) != 2 {
		t.Fatalf("expected 2 activity records, got %d", len(records))
	}
	if records[0].Verb != "export.requested" || records[1].Verb != "export.completed" {
		t.Fatalf("unexpected verbs: %q, %q", records[0].Verb, records[1].Verb)
	}
	last := records[1]
	if last.ObjectID != "exp-1" || last.ObjectType != "resume_export" || last.Channel != "export" {
		t.Fatalf("unexpected record: %+v", last)
	}
	if last.ResumeID != "resume-sample" || last.Mode != export.ModeVector {
		t.Fatalf("unexpected resume fields: %+v", last)
	}
	if _, ok := last.Data["duration_ms"]; !ok {
		t.Fatalf("expected duration in milliseconds, got %v", last.Data)
	}
	if last.Data["filename"] != "My_Resume.pdf" {
		t.Fatalf("expected filename metadata, got %v", last.Data["filename"])
	}
}

func TestBunSink_LogAndList(t *testing.T) {
	ctx := context.Background()
	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
	})

	sink := NewBunSink(db)
	if err := sink.CreateSchema(ctx); err != nil {
		t.Fatalf("create schema: %v", err)
	}

	emitter := NewEmitter(Config{Sink: sink, Channel: "editor"})
	for i, name := range []string{"export.requested", "export.failed"} {
		err := emitter.Emit(ctx, export.ChangeEvent{
			Name:      name,
			ExportID:  "exp-1",
			ResumeID:  "resume-sample",
			Template:  resume.TemplateModernBlue,
			Mode:      export.ModeImage,
			Timestamp: baseTime.Add(time.Duration(i) * time.Second),
			Metadata:  map[string]any{"page_size": "A4"},
		})
		if err != nil {
			t.Fatalf("emit %s: %v", name, err)
		}
	}
	if err := emitter.Emit(ctx, export.ChangeEvent{Name: "export.requested", ExportID: "exp-2", Timestamp: baseTime}); err != nil {
		t.Fatalf("emit other export: %v", err)
	}

	records, err := sink.List(ctx, "exp-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Verb != "export.requested" || records[1].Verb != "export.failed" {
		t.Fatalf("expected records in occurrence order, got %q, %q", records[0].Verb, records[1].Verb)
	}
	if records[0].Channel != "editor" || records[0].Template != resume.TemplateModernBlue {
		t.Fatalf("unexpected record: %+v", records[0])
	}
	if records[0].Data["page_size"] != "A4" {
		t.Fatalf("expected metadata round trip, got %v", records[0].Data)
	}
}

func TestBunSink_NotConfigured(t *testing.T) {
	var sink *BunSink
	if err := sink.Log(context.Background(), Record{}); export.KindFromError(err) != export.KindNotImpl {
		t.Fatalf("expected not implemented, got %v", err)
	}
}
