package command

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"

	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-errors"

	"github.com/goliatone/go-resume-export/export"
	"github.com/goliatone/go-resume-export/resume"
)

// BatchRequest is one document to export in a batch run.
type BatchRequest struct {
	Document resume.Document `json:"document"`
	Options  export.Options  `json:"options"`
}

// BatchLoader loads batch requests from a source.
type BatchLoader func(ctx context.Context) ([]BatchRequest, error)

// BatchLimits bounds batch execution throughput.
type BatchLimits struct {
	MaxRequests int
	MinInterval time.Duration
}

// BatchReport summarizes a batch run.
type BatchReport struct {
	Exported []export.ExportRecord
	Failed   map[string]error
}

// BatchCommand exports many resumes into the artifact store, from a CLI call
// or on a cron schedule. A failing document does not stop the batch.
type BatchCommand struct {
	exporter   ResumeExporter
	loader     BatchLoader
	cliConfig  gcmd.CLIConfig
	cronConfig gcmd.HandlerConfig
	limits     BatchLimits
	sleep      func(time.Duration)
}

// BatchOption customizes batch commands.
type BatchOption func(*BatchCommand)

// WithBatchCLIConfig overrides CLI configuration.
func WithBatchCLIConfig(cfg gcmd.CLIConfig) BatchOption {
	return func(cmd *BatchCommand) {
		cmd.cliConfig = cfg
	}
}

// WithBatchCronConfig overrides cron configuration.
func WithBatchCronConfig(cfg gcmd.HandlerConfig) BatchOption {
	return func(cmd *BatchCommand) {
		cmd.cronConfig = cfg
	}
}

// WithBatchLimits overrides batch execution limits.
func WithBatchLimits(limits BatchLimits) BatchOption {
	return func(cmd *BatchCommand) {
		cmd.limits = limits
	}
}

// NewBatchExportCommand creates a batch export CLI/Cron command.
func NewBatchExportCommand(exporter ResumeExporter, loader BatchLoader, opts ...BatchOption) *BatchCommand {
	cmd := &BatchCommand{
		exporter: exporter,
		loader:   loader,
		cliConfig: gcmd.CLIConfig{
			Path:        []string{"resume-exports-batch"},
			Description: "Export a batch of resumes to PDF",
			Group:       "resumes",
		},
		cronConfig: gcmd.HandlerConfig{Expression: "0 2 * * *"},
		sleep:      time.Sleep,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cmd)
		}
	}
	return cmd
}

// CronHandler executes the batch on schedule.
func (c *BatchCommand) CronHandler() func() error {
	return func() error {
		_, err := c.run(context.Background(), "")
		return err
	}
}

// CronOptions returns cron configuration.
func (c *BatchCommand) CronOptions() gcmd.HandlerConfig {
	if c == nil {
		return gcmd.HandlerConfig{}
	}
	return c.cronConfig
}

// CLIHandler exposes the CLI handler.
func (c *BatchCommand) CLIHandler() any {
	return &batchCLI{cmd: c}
}

// CLIOptions returns CLI configuration.
func (c *BatchCommand) CLIOptions() gcmd.CLIConfig {
	if c == nil {
		return gcmd.CLIConfig{}
	}
	return c.cliConfig
}

func (c *BatchCommand) run(ctx context.Context, from string) (BatchReport, error) {
	report := BatchReport{Failed: map[string]error{}}
	if c == nil {
		return report, errors.New("batch command is nil", errors.CategoryInternal).
			WithTextCode("BATCH_CMD_NIL")
	}
	if c.exporter == nil {
		return report, errors.New("resume exporter is required", errors.CategoryValidation).
			WithTextCode("EXPORTER_REQUIRED")
	}

	requests, err := c.loadRequests(ctx, from)
	if err != nil {
		return report, err
	}

	attempted := 0
	for i, item := range requests {
		if c.limits.MaxRequests > 0 && attempted >= c.limits.MaxRequests {
			break
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if attempted > 0 && c.limits.MinInterval > 0 && c.sleep != nil {
			c.sleep(c.limits.MinInterval)
		}
		attempted++

		record, err := c.exporter.Export(ctx, item.Document, item.Options, nil)
		if err != nil {
			report.Failed[batchKey(i, item.Document)] = err
			continue
		}
		report.Exported = append(report.Exported, record)
	}
	return report, nil
}

func (c *BatchCommand) loadRequests(ctx context.Context, from string) ([]BatchRequest, error) {
	if strings.TrimSpace(from) != "" {
		return loadBatchRequestsFromFile(from)
	}
	if c.loader == nil {
		return nil, errors.New("batch loader not configured", errors.CategoryValidation).
			WithTextCode("LOADER_REQUIRED")
	}
	return c.loader(ctx)
}

type batchCLI struct {
	cmd  *BatchCommand
	From string `kong:"name='from',help='Path to a JSON array of {document, options} entries'"`
}

func (c *batchCLI) Run() error {
	if c == nil || c.cmd == nil {
		return errors.New("batch command is required", errors.CategoryInternal).
			WithTextCode("BATCH_CMD_NIL")
	}
	report, err := c.cmd.run(context.Background(), c.From)
	if err != nil {
		return err
	}
	if len(report.Failed) > 0 {
		keys := make([]string, 0, len(report.Failed))
		for key := range report.Failed {
			keys = append(keys, key)
		}
		return errors.New("batch export failed for: "+strings.Join(keys, ", "), errors.CategoryOperation).
			WithTextCode("BATCH_PARTIAL")
	}
	return nil
}

func loadBatchRequestsFromFile(path string) ([]BatchRequest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryExternal, "read batch file failed").
			WithTextCode("BATCH_FILE_READ")
	}

	var raw []struct {
		Document json.RawMessage `json:"document"`
		Options  export.Options  `json:"options"`
	}
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "batch file invalid JSON").
			WithTextCode("BATCH_FILE_INVALID")
	}

	requests := make([]BatchRequest, 0, len(raw))
	for _, entry := range raw {
		doc, err := resume.DecodeJSON(entry.Document)
		if err != nil {
			return nil, err
		}
		requests = append(requests, BatchRequest{Document: doc, Options: entry.Options})
	}
	return requests, nil
}

func batchKey(index int, doc resume.Document) string {
	if doc.ID != "" {
		return doc.ID
	}
	return "#" + strconv.Itoa(index)
}
