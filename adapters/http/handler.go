package exporthttp

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/goliatone/go-resume-export/export"
)

// DefaultBasePath is where the resume export routes are mounted.
const DefaultBasePath = "/resumes"

// Config configures the HTTP adapter.
type Config struct {
	Service  *export.Service
	BasePath string
	Logger   export.Logger
}

// Handler exposes the export button, status, history and download endpoints.
type Handler struct {
	service  *export.Service
	basePath string
	logger   export.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(cfg Config) *Handler {
	basePath := strings.TrimRight(cfg.BasePath, "/")
	if basePath == "" {
		basePath = DefaultBasePath
	}
	logger := cfg.Logger
	if logger == nil {
		logger = export.NopLogger{}
	}
	return &Handler{service: cfg.Service, basePath: basePath, logger: logger}
}

// RegisterRoutes mounts the handlers on a fiber router.
func (h *Handler) RegisterRoutes(r fiber.Router) {
	group := r.Group(h.basePath)
	group.Post("/export", h.Export)
	group.Get("/exports", h.History)
	group.Get("/exports/:id", h.Status)
	group.Get("/exports/:id/download", h.Download)
}

// BasePath returns the configured base path.
func (h *Handler) BasePath() string {
	return h.basePath
}

// Export produces a PDF for the posted document. The PDF is returned as an
// attachment unless the client asks for JSON, in which case the export record
// and its download link are returned instead.
func (h *Handler) Export(c *fiber.Ctx) error {
	if h.service == nil {
		return writeError(c, export.NewError(export.KindNotImpl, "export service not configured", nil))
	}
	payload, err := decodeExportPayload(c.Body())
	if err != nil {
		return writeError(c, err)
	}

	var buf bytes.Buffer
	record, err := h.service.Export(c.UserContext(), payload.Document, payload.Options, &buf)
	if err != nil {
		h.logger.Errorf("export of resume %q failed: %v", payload.Document.ID, err)
		return writeError(c, err)
	}

	c.Set("X-Export-Id", record.ID)
	if codes := warningCodes(record.Warnings); codes != "" {
		c.Set("X-Export-Warnings", codes)
	}
	if wantsJSON(c) {
		return c.Status(fiber.StatusCreated).JSON(h.recordResponse(record))
	}

	c.Set(fiber.HeaderContentType, export.PDFContentType)
	c.Set(fiber.HeaderContentDisposition, attachment(record.Filename))
	return c.Status(fiber.StatusOK).Send(buf.Bytes())
}

// Status returns one export record.
func (h *Handler) Status(c *fiber.Ctx) error {
	if h.service == nil {
		return writeError(c, export.NewError(export.KindNotImpl, "export service not configured", nil))
	}
	record, err := h.service.Status(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(h.recordResponse(record))
}

// History lists export records, newest first.
func (h *Handler) History(c *fiber.Ctx) error {
	if h.service == nil {
		return writeError(c, export.NewError(export.KindNotImpl, "export service not configured", nil))
	}
	filter, err := parseFilter(c)
	if err != nil {
		return writeError(c, err)
	}
	records, err := h.service.History(c.UserContext(), filter)
	if err != nil {
		return writeError(c, err)
	}
	out := historyResponse{Exports: make([]recordResponse, 0, len(records))}
	for _, record := range records {
		out.Exports = append(out.Exports, h.recordResponse(record))
	}
	return c.JSON(out)
}

// Download streams the stored PDF of a completed export.
func (h *Handler) Download(c *fiber.Ctx) error {
	if h.service == nil {
		return writeError(c, export.NewError(export.KindNotImpl, "export service not configured", nil))
	}
	reader, info, err := h.service.Download(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}

	meta := info.Artifact.Meta
	c.Set(fiber.HeaderContentType, meta.ContentType)
	c.Set(fiber.HeaderContentDisposition, attachment(meta.Filename))
	c.Set("X-Export-Id", info.ExportID)
	size := -1
	if meta.Size > 0 {
		size = int(meta.Size)
	}
	// fasthttp closes the stream once the body is written.
	return c.Status(fiber.StatusOK).SendStream(reader, size)
}

func (h *Handler) statusURL(id string) string {
	return fmt.Sprintf("%s/exports/%s", h.basePath, id)
}

func (h *Handler) downloadURL(id string) string {
	return fmt.Sprintf("%s/exports/%s/download", h.basePath, id)
}

func wantsJSON(c *fiber.Ctx) bool {
	if c.Query("download") == "false" {
		return true
	}
	return c.Accepts(export.PDFContentType, fiber.MIMEApplicationJSON) == fiber.MIMEApplicationJSON
}

func attachment(filename string) string {
	if filename == "" {
		filename = "resume.pdf"
	}
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(filename)
	return fmt.Sprintf("attachment; filename=\"%s\"", escaped)
}

func warningCodes(warnings []export.Warning) string {
	codes := make([]string, 0, len(warnings))
	for _, warning := range warnings {
		codes = append(codes, string(warning.Code))
	}
	return strings.Join(codes, ",")
}
