package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/goliatone/go-resume-export/resume"
)

// PDFContentType is the media type of every artifact.
const PDFContentType = "application/pdf"

// DownloadInfo describes a downloadable export.
type DownloadInfo struct {
	ExportID string
	Artifact ArtifactRef
}

// ServiceConfig supplies dependencies for Service.
type ServiceConfig struct {
	Exporter  *Exporter
	Tracker   ProgressTracker
	Store     ArtifactStore
	Retention time.Duration
	Logger    Logger
	Now       func() time.Time
}

// Service runs exports and keeps their history and artifacts so a PDF can be
// downloaded after the request that produced it.
type Service struct {
	exporter  *Exporter
	tracker   ProgressTracker
	store     ArtifactStore
	retention time.Duration
	logger    Logger
	now       func() time.Time
}

// NewService creates a Service with the provided configuration.
func NewService(cfg ServiceConfig) *Service {
	exporter := cfg.Exporter
	if exporter == nil {
		exporter = NewExporter(nil, nil)
	}
	nowFn := cfg.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	if exporter.Now == nil {
		exporter.Now = nowFn
	}
	logger := cfg.Logger
	if logger == nil {
		logger = exporter.Logger
	}
	if logger == nil {
		logger = NopLogger{}
	}

	return &Service{
		exporter:  exporter,
		tracker:   cfg.Tracker,
		store:     cfg.Store,
		retention: cfg.Retention,
		logger:    logger,
		now:       nowFn,
	}
}

// Export runs one export. The PDF is kept in the artifact store when one is
// configured and copied to w when w is not nil.
func (s *Service) Export(ctx context.Context, doc resume.Document, opts Options, w io.Writer) (ExportRecord, error) {
	if s == nil {
		return ExportRecord{}, AsGoError(NewError(KindInternal, "service is nil", nil))
	}
	if s.store == nil && w == nil {
		return ExportRecord{}, AsGoError(NewError(KindValidation, "output writer is required without an artifact store", nil))
	}

	exportID := s.exporter.nextID()
	merged := MergeOptions(s.exporter.Defaults, opts)
	now := s.now()
	record := ExportRecord{
		ID:         exportID,
		ResumeID:   doc.ID,
		ResumeName: doc.Name,
		Template:   doc.Template.Normalize(),
		Mode:       merged.Mode,
		PageSize:   merged.PageSize,
		State:      StateRunning,
		CreatedAt:  now,
	}
	if record.Mode == "" {
		record.Mode = DefaultMode
	}
	if size, err := LookupPageSize(record.PageSize); err == nil {
		record.PageSize = size.Name
	}

	if s.tracker != nil {
		id, err := s.tracker.Start(ctx, record)
		if err != nil {
			return ExportRecord{}, AsGoError(err)
		}
		if id != "" {
			record.ID = id
		}
	}

	var buf bytes.Buffer
	result, err := s.exporter.Export(ctx, Request{
		ID:       record.ID,
		Document: doc,
		Options:  opts,
		Output:   &buf,
	})
	if err != nil {
		s.fail(ctx, record.ID, err)
		return ExportRecord{}, err
	}

	completion := Completion{
		Filename: result.Filename,
		Pages:    result.Pages,
		Bytes:    result.Bytes,
		Warnings: result.Warnings,
	}

	if s.store != nil {
		meta := ArtifactMeta{
			ContentType: PDFContentType,
			Filename:    result.Filename,
			CreatedAt:   now,
		}
		if s.retention > 0 {
			meta.ExpiresAt = now.Add(s.retention)
		}
		ref, err := s.store.Put(ctx, artifactKey(record.ID), bytes.NewReader(buf.Bytes()), meta)
		if err != nil {
			err = ExportFailure("store artifact", err)
			s.fail(ctx, record.ID, err)
			return ExportRecord{}, AsGoError(err)
		}
		completion.Artifact = ref
	}

	if w != nil {
		if _, err := w.Write(buf.Bytes()); err != nil {
			err = ExportFailure("write pdf", err)
			s.fail(ctx, record.ID, err)
			return ExportRecord{}, AsGoError(err)
		}
	}

	if s.tracker != nil {
		if err := s.tracker.Complete(ctx, record.ID, completion); err != nil {
			return ExportRecord{}, AsGoError(err)
		}
		if stored, err := s.tracker.Status(ctx, record.ID); err == nil {
			return stored, nil
		}
	}

	record.State = StateCompleted
	record.CompletedAt = s.now()
	record.Filename = completion.Filename
	record.Pages = completion.Pages
	record.BytesWritten = completion.Bytes
	record.Warnings = completion.Warnings
	record.Artifact = completion.Artifact
	record.ExpiresAt = completion.Artifact.Meta.ExpiresAt
	return record, nil
}

// Status returns a single export record.
func (s *Service) Status(ctx context.Context, exportID string) (ExportRecord, error) {
	if s == nil {
		return ExportRecord{}, AsGoError(NewError(KindInternal, "service is nil", nil))
	}
	if exportID == "" {
		return ExportRecord{}, AsGoError(NewError(KindValidation, "export ID is required", nil))
	}
	if s.tracker == nil {
		return ExportRecord{}, AsGoError(NewError(KindNotImpl, "progress tracker not configured", nil))
	}

	record, err := s.tracker.Status(ctx, exportID)
	if err != nil {
		return ExportRecord{}, AsGoError(err)
	}
	return record, nil
}

// History returns export records matching the filter, newest first.
func (s *Service) History(ctx context.Context, filter ProgressFilter) ([]ExportRecord, error) {
	if s == nil {
		return nil, AsGoError(NewError(KindInternal, "service is nil", nil))
	}
	if s.tracker == nil {
		return nil, AsGoError(NewError(KindNotImpl, "progress tracker not configured", nil))
	}
	if filter.Limit < 0 {
		return nil, AsGoError(NewError(KindValidation, "limit must not be negative", nil))
	}

	records, err := s.tracker.List(ctx, filter)
	if err != nil {
		return nil, AsGoError(err)
	}
	return records, nil
}

// Download opens the stored PDF of a completed export. The caller closes the reader.
func (s *Service) Download(ctx context.Context, exportID string) (io.ReadCloser, DownloadInfo, error) {
	if s == nil {
		return nil, DownloadInfo{}, AsGoError(NewError(KindInternal, "service is nil", nil))
	}
	if s.store == nil {
		return nil, DownloadInfo{}, AsGoError(NewError(KindNotImpl, "artifact store not configured", nil))
	}

	record, err := s.Status(ctx, exportID)
	if err != nil {
		return nil, DownloadInfo{}, err
	}
	if record.State != StateCompleted {
		return nil, DownloadInfo{}, AsGoError(NewError(KindValidation, fmt.Sprintf("export %s is %s", exportID, record.State), nil))
	}

	key := record.Artifact.Key
	if key == "" {
		key = artifactKey(exportID)
	}
	reader, meta, err := s.store.Open(ctx, key)
	if err != nil {
		return nil, DownloadInfo{}, AsGoError(err)
	}
	if meta.Filename == "" {
		meta.Filename = record.Filename
	}
	if meta.ContentType == "" {
		meta.ContentType = PDFContentType
	}
	return reader, DownloadInfo{ExportID: exportID, Artifact: ArtifactRef{Key: key, Meta: meta}}, nil
}

// Cleanup deletes expired artifacts and their records and returns the count
// removed. Stores that can sweep also drop expired files no record tracks.
func (s *Service) Cleanup(ctx context.Context, now time.Time) (int, error) {
	if s == nil {
		return 0, AsGoError(NewError(KindInternal, "service is nil", nil))
	}
	if s.tracker == nil {
		return 0, AsGoError(NewError(KindNotImpl, "progress tracker not configured", nil))
	}
	if s.store == nil {
		return 0, AsGoError(NewError(KindNotImpl, "artifact store not configured", nil))
	}
	if now.IsZero() {
		now = s.now()
	}

	records, err := s.tracker.List(ctx, ProgressFilter{State: StateCompleted})
	if err != nil {
		return 0, AsGoError(err)
	}

	deleted := 0
	for _, record := range records {
		if record.ExpiresAt.IsZero() || record.ExpiresAt.After(now) {
			continue
		}
		key := record.Artifact.Key
		if key == "" {
			key = artifactKey(record.ID)
		}
		if err := s.store.Delete(ctx, key); err != nil {
			return deleted, AsGoError(err)
		}
		if deleter, ok := s.tracker.(RecordDeleter); ok {
			if err := deleter.Delete(ctx, record.ID); err != nil {
				return deleted, AsGoError(err)
			}
		}
		deleted++
	}
	if sweeper, ok := s.store.(ArtifactSweeper); ok {
		swept, err := sweeper.Sweep(ctx, now)
		if err != nil {
			return deleted, AsGoError(err)
		}
		deleted += swept
	}
	if deleted > 0 {
		s.logger.Infof("removed %d expired exports", deleted)
	}
	return deleted, nil
}

func (s *Service) fail(ctx context.Context, exportID string, err error) {
	if s.tracker == nil {
		return
	}
	if trackErr := s.tracker.Fail(ctx, exportID, err); trackErr != nil {
		s.logger.Errorf("record failure of export %s: %v", exportID, trackErr)
	}
}

func (e *Exporter) nextID() string {
	if e.IDGenerator == nil {
		return defaultIDGenerator()
	}
	return e.IDGenerator()
}

func artifactKey(exportID string) string {
	return fmt.Sprintf("resumes/%s.pdf", exportID)
}
