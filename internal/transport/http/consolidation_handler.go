package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apperrors "consolidator/internal/errors"
	"consolidator/internal/exporter"
	"consolidator/internal/middleware"
	"consolidator/internal/services"
	"consolidator/pkg/contracts/domain"
)

// maxPreviewRows bounds the rows query parameter of the preview endpoint
const maxPreviewRows = 1000

// ConsolidationHandler handles the consolidation API
type ConsolidationHandler struct {
	service      ConsolidationServiceInterface
	logger       *slog.Logger
	errorHandler *apperrors.ErrorHandler
	query        *middleware.QueryParamValidator
}

// PreviewResponse is the body of POST /api/consolidate/preview
type PreviewResponse struct {
	Preview domain.Preview             `json:"preview"`
	Report  domain.ConsolidationReport `json:"report"`
}

// NewConsolidationHandler creates a new consolidation handler
func NewConsolidationHandler(service ConsolidationServiceInterface, logger *slog.Logger, errorHandler *apperrors.ErrorHandler) *ConsolidationHandler {
	logger = logger.With(slog.String("handler", "consolidation"))
	return &ConsolidationHandler{
		service:      service,
		logger:       logger,
		errorHandler: errorHandler,
		query:        middleware.NewQueryParamValidator(logger, errorHandler),
	}
}

// Routes returns the consolidation routes
func (h *ConsolidationHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.ContentTypeValidator(h.errorHandler, "multipart/form-data"))

	r.Post("/", h.Consolidate)
	r.Post("/preview", h.Preview)

	return r
}

// Consolidate handles POST /api/consolidate and streams the file back as an
// attachment.
func (h *ConsolidationHandler) Consolidate(w http.ResponseWriter, r *http.Request) {
	formatName, ok := h.query.ValidateEnum(w, r, "format", []string{string(exporter.FormatXLSX), string(exporter.FormatCSV)}, string(exporter.FormatXLSX))
	if !ok {
		return
	}
	format := exporter.Format(formatName)

	result, ok := h.run(w, r)
	if !ok {
		return
	}

	data, err := h.service.Export(r.Context(), result, format)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	name := h.service.FileName(format)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("X-Consolidation-Rows", strconv.Itoa(result.Report.Days))
	w.Header().Set("X-Consolidation-Stocks", strconv.Itoa(len(result.Report.Stocks)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.WarnContext(r.Context(), "failed to write export",
			slog.String("error", err.Error()))
	}
}

// Preview handles POST /api/consolidate/preview
func (h *ConsolidationHandler) Preview(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.query.ValidateInt(w, r, "rows", 1, maxPreviewRows, 0)
	if !ok {
		return
	}

	result, ok := h.run(w, r)
	if !ok {
		return
	}

	preview := h.service.Preview(result)
	if rows > 0 {
		preview = exporter.BuildPreview(result.Table, rows)
	}

	render.JSON(w, r, PreviewResponse{Preview: preview, Report: result.Report})
}

// run parses the upload and consolidates it, writing the problem response
// on failure.
func (h *ConsolidationHandler) run(w http.ResponseWriter, r *http.Request) (*services.ConsolidationResult, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.service.MaxUploadBytes())

	req, err := parseConsolidationForm(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}

	h.logger.DebugContext(r.Context(), "consolidation requested",
		slog.String("start", req.Start),
		slog.String("end", req.End),
		slog.Int("files", len(req.Files)),
	)

	result, err := h.service.Consolidate(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}
	return result, true
}
