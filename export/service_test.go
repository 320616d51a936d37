package export

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/goliatone/go-resume-export/resume"
)

func newTestService(now time.Time, emitter Emitter) (*Service, *MemoryTracker, *MemoryStore) {
	host := &fakeHost{widthPx: 816, heightPx: 960}
	exporter := newTestExporter(host, emitter)
	tracker := NewMemoryTracker()
	tracker.Now = func() time.Time { return now }
	store := NewMemoryStore()
	svc := NewService(ServiceConfig{
		Exporter:  exporter,
		Tracker:   tracker,
		Store:     store,
		Retention: time.Hour,
		Now:       func() time.Time { return now },
	})
	return svc, tracker, store
}

func TestService_ExportStoresArtifact(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	svc, _, _ := newTestService(now, &recordingEmitter{})

	direct := &bytes.Buffer{}
	record, err := svc.Export(ctx, resume.SampleDocument(), Options{}, direct)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if record.State != StateCompleted || record.Filename != "My_Resume.pdf" {
		t.Fatalf("unexpected record %+v", record)
	}
	if !record.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("expected retention applied, got %s", record.ExpiresAt)
	}

	reader, info, err := svc.Download(ctx, record.ID)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	defer reader.Close()
	stored, _ := io.ReadAll(reader)
	if !bytes.Equal(stored, direct.Bytes()) {
		t.Fatalf("stored artifact differs from streamed output")
	}
	if info.Artifact.Meta.ContentType != PDFContentType || info.Artifact.Meta.Filename != "My_Resume.pdf" {
		t.Fatalf("unexpected artifact meta %+v", info.Artifact.Meta)
	}
}

func TestService_RecordsCanonicalPageSize(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	svc, tracker, _ := newTestService(now, &recordingEmitter{})

	record, err := svc.Export(ctx, resume.SampleDocument(), Options{PageSize: " letter "}, nil)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if record.PageSize != PageSizeLetter.Name {
		t.Fatalf("expected %q, got %q", PageSizeLetter.Name, record.PageSize)
	}
	stored, err := tracker.Status(ctx, record.ID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if stored.PageSize != PageSizeLetter.Name {
		t.Fatalf("expected tracked %q, got %q", PageSizeLetter.Name, stored.PageSize)
	}
}

func TestService_FailureIsTracked(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	svc, tracker, _ := newTestService(now, &recordingEmitter{err: errors.New("encoder broke")})

	if _, err := svc.Export(ctx, resume.SampleDocument(), Options{}, nil); !IsExportFailure(err) {
		t.Fatalf("expected export failure, got %v", err)
	}

	records, err := tracker.List(ctx, ProgressFilter{State: StateFailed})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 || records[0].Error == "" {
		t.Fatalf("expected failed record with error, got %+v", records)
	}
	if _, _, err := svc.Download(ctx, records[0].ID); KindFromError(err) != KindValidation {
		t.Fatalf("expected download of failed export to be rejected, got %v", err)
	}
}

func TestService_HistoryAndCleanup(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	svc, _, store := newTestService(now, &recordingEmitter{})
	ids := []string{"exp-a", "exp-b"}
	svc.exporter.IDGenerator = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	for i := 0; i < 2; i++ {
		if _, err := svc.Export(ctx, resume.SampleDocument(), Options{}, nil); err != nil {
			t.Fatalf("export %d: %v", i, err)
		}
	}

	history, err := svc.History(ctx, ProgressFilter{ResumeID: resume.SampleDocument().ID, Limit: 1})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected limit applied, got %d", len(history))
	}

	removed, err := svc.Cleanup(ctx, now.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	if _, _, err := store.Open(ctx, artifactKey("exp-a")); KindFromError(err) != KindNotFound {
		t.Fatalf("expected artifact deleted, got %v", err)
	}
	if _, err := svc.Status(ctx, "exp-a"); KindFromError(err) != KindNotFound {
		t.Fatalf("expected record deleted, got %v", err)
	}
}

func TestService_RequiresDestination(t *testing.T) {
	svc := NewService(ServiceConfig{Exporter: newTestExporter(&fakeHost{}, &recordingEmitter{})})
	if _, err := svc.Export(context.Background(), resume.SampleDocument(), Options{}, nil); KindFromError(err) != KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.Status(context.Background(), "x"); KindFromError(err) != KindNotImpl {
		t.Fatalf("expected not implemented without tracker, got %v", err)
	}
}
