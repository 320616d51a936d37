package command

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-resume-export/export"
	"github.com/goliatone/go-resume-export/resume"
)

func batchOf(ids ...string) BatchLoader {
	return func(ctx context.Context) ([]BatchRequest, error) {
		requests := make([]BatchRequest, 0, len(ids))
		for _, id := range ids {
			doc := resume.SampleDocument()
			doc.ID = id
			requests = append(requests, BatchRequest{Document: doc})
		}
		return requests, nil
	}
}

func TestBatchCommand_RunHonorsLimits(t *testing.T) {
	exporter := &stubExporter{}
	slept := 0
	cmd := NewBatchExportCommand(exporter, batchOf("a", "b", "c"),
		WithBatchLimits(BatchLimits{MaxRequests: 2, MinInterval: time.Millisecond}))
	cmd.sleep = func(time.Duration) { slept++ }

	report, err := cmd.run(context.Background(), "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(report.Exported) != 2 || exporter.calls != 2 {
		t.Fatalf("expected 2 exports, got %d (calls %d)", len(report.Exported), exporter.calls)
	}
	if slept != 1 {
		t.Fatalf("expected one pause between exports, got %d", slept)
	}
}

func TestBatchCommand_ContinuesAfterFailure(t *testing.T) {
	exporter := &stubExporter{
		export: func(ctx context.Context, doc resume.Document, opts export.Options, w io.Writer) (export.ExportRecord, error) {
			if doc.ID == "bad" {
				return export.ExportRecord{}, errors.New("capture failed")
			}
			if w != nil {
				t.Fatalf("expected batch exports to skip the writer")
			}
			return export.ExportRecord{ID: "exp-" + doc.ID}, nil
		},
	}
	cmd := NewBatchExportCommand(exporter, batchOf("a", "bad", "c"))

	report, err := cmd.run(context.Background(), "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(report.Exported) != 2 {
		t.Fatalf("expected 2 exported, got %d", len(report.Exported))
	}
	if _, ok := report.Failed["bad"]; !ok || len(report.Failed) != 1 {
		t.Fatalf("expected failure for bad, got %v", report.Failed)
	}

	cli := cmd.CLIHandler().(*batchCLI)
	if err := cli.Run(); err == nil {
		t.Fatalf("expected CLI to report partial failure")
	}
}

func TestBatchCommand_LoadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.json")
	payload := `[{"document":{"id":"r1","name":"Jane Doe","content":{}},"options":{"mode":"vector","pageSize":"Letter"}}]`
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	var got BatchRequest
	exporter := &stubExporter{
		export: func(ctx context.Context, doc resume.Document, opts export.Options, w io.Writer) (export.ExportRecord, error) {
			got = BatchRequest{Document: doc, Options: opts}
			return export.ExportRecord{ID: "exp-r1"}, nil
		},
	}
	report, err := NewBatchExportCommand(exporter, nil).run(context.Background(), path)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(report.Exported) != 1 {
		t.Fatalf("expected 1 export, got %d", len(report.Exported))
	}
	if got.Document.Name != "Jane Doe" || got.Options.Mode != export.ModeVector || got.Options.PageSize != "Letter" {
		t.Fatalf("unexpected request %+v", got)
	}
}

func TestBatchCommand_RejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.json")
	if err := os.WriteFile(path, []byte(`[{"document":{"name":""}}]`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewBatchExportCommand(&stubExporter{}, nil).run(context.Background(), path); err == nil {
		t.Fatalf("expected schema error")
	}
}

func TestBatchCommand_RequiresLoader(t *testing.T) {
	if _, err := NewBatchExportCommand(&stubExporter{}, nil).run(context.Background(), ""); err == nil {
		t.Fatalf("expected loader error")
	}
}
