package exporthttp

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/goliatone/go-resume-export/export"
	"github.com/goliatone/go-resume-export/resume"
)

// MaxHistoryLimit caps the page size of history listings.
const MaxHistoryLimit = 200

type exportPayload struct {
	Document json.RawMessage `json:"document"`
	Options  export.Options  `json:"options"`
}

type decodedExport struct {
	Document resume.Document
	Options  export.Options
}

func decodeExportPayload(body []byte) (decodedExport, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return decodedExport{}, export.NewError(export.KindValidation, "request body is required", nil)
	}
	var payload exportPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return decodedExport{}, export.NewError(export.KindValidation, "invalid JSON payload", err)
	}
	if len(payload.Document) == 0 || string(payload.Document) == "null" {
		return decodedExport{}, export.NewError(export.KindValidation, "document is required", nil)
	}
	doc, err := resume.DecodeJSON(payload.Document)
	if err != nil {
		return decodedExport{}, err
	}
	return decodedExport{Document: doc, Options: payload.Options}, nil
}

func parseFilter(c *fiber.Ctx) (export.ProgressFilter, error) {
	filter := export.ProgressFilter{
		ResumeID: c.Query("resume"),
		State:    export.ExportState(c.Query("state")),
		Mode:     export.Mode(c.Query("mode")),
	}
	if since := c.Query("since"); since != "" {
		ts, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return export.ProgressFilter{}, export.NewError(export.KindValidation, "invalid since timestamp", err)
		}
		filter.Since = ts
	}
	if until := c.Query("until"); until != "" {
		ts, err := time.Parse(time.RFC3339, until)
		if err != nil {
			return export.ProgressFilter{}, export.NewError(export.KindValidation, "invalid until timestamp", err)
		}
		filter.Until = ts
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return export.ProgressFilter{}, export.NewError(export.KindValidation, "invalid limit", err)
		}
		if limit > MaxHistoryLimit {
			limit = MaxHistoryLimit
		}
		filter.Limit = limit
	}
	return filter, nil
}
