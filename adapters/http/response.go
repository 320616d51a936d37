package exporthttp

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	errorslib "github.com/goliatone/go-errors"

	"github.com/goliatone/go-resume-export/export"
)

type recordResponse struct {
	export.ExportRecord
	StatusURL   string `json:"statusUrl"`
	DownloadURL string `json:"downloadUrl,omitempty"`
}

type historyResponse struct {
	Exports []recordResponse `json:"exports"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func (h *Handler) recordResponse(record export.ExportRecord) recordResponse {
	out := recordResponse{ExportRecord: record, StatusURL: h.statusURL(record.ID)}
	if record.State == export.StateCompleted && record.Artifact.Key != "" {
		out.DownloadURL = h.downloadURL(record.ID)
	}
	return out
}

func writeError(c *fiber.Ctx, err error) error {
	ge := export.AsGoError(err)
	return c.Status(statusForError(ge)).JSON(errorResponse{
		Error: errorBody{Message: ge.Message, Code: ge.TextCode},
	})
}

func statusForError(err *errorslib.Error) int {
	if err == nil {
		return http.StatusInternalServerError
	}
	switch err.TextCode {
	case "not_implemented":
		return http.StatusNotImplemented
	case "capture_failed":
		return http.StatusBadGateway
	case "export_failed":
		return http.StatusInternalServerError
	case "timeout":
		return http.StatusGatewayTimeout
	case "canceled":
		return http.StatusConflict
	}
	switch err.Category {
	case errorslib.CategoryValidation:
		return http.StatusBadRequest
	case errorslib.CategoryNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
