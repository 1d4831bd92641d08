package http

import (
	"bytes"
	"embed"
	"encoding/base64"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	apperrors "consolidator/internal/errors"
	"consolidator/internal/exporter"
	"consolidator/pkg/contracts/domain"
)

// PageTitle is the heading of the upload page
const PageTitle = "Consolidador de Precios de Acciones Chilenas"

//go:embed templates/index.html
var templateFS embed.FS

// pageData feeds templates/index.html
type pageData struct {
	Title       string
	Start       string
	End         string
	Error       string
	Preview     *domain.Preview
	Report      domain.ConsolidationReport
	DownloadURL template.URL
	FileName    string
}

// HTMLHandler serves the upload page
type HTMLHandler struct {
	service ConsolidationServiceInterface
	tmpl    *template.Template
	logger  *slog.Logger
}

// NewHTMLHandler parses the embedded page template
func NewHTMLHandler(service ConsolidationServiceInterface, logger *slog.Logger) (*HTMLHandler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, err
	}
	return &HTMLHandler{
		service: service,
		tmpl:    tmpl,
		logger:  logger.With(slog.String("handler", "html")),
	}, nil
}

// Index handles GET /
func (h *HTMLHandler) Index(w http.ResponseWriter, r *http.Request) {
	start, end := h.service.DefaultRange()
	h.render(w, r, pageData{Start: start, End: end})
}

// Submit handles POST / with the upload form. The workbook is embedded in
// the page as a data URI so nothing is kept between requests.
func (h *HTMLHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.service.MaxUploadBytes())

	req, err := parseConsolidationForm(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "invalid upload form", slog.String("error", err.Error()))
		start, end := h.service.DefaultRange()
		h.render(w, r, pageData{Start: start, End: end, Error: formError(err)})
		return
	}

	data := pageData{Start: req.Start, End: req.End}
	if len(req.Files) == 0 || req.Start == "" || req.End == "" {
		h.render(w, r, data)
		return
	}

	result, err := h.service.Consolidate(r.Context(), req)
	if err != nil {
		h.logger.WarnContext(r.Context(), "consolidation failed", slog.String("error", err.Error()))
		data.Error = apperrors.UserMessage(err)
		h.render(w, r, data)
		return
	}

	workbook, err := h.service.Export(r.Context(), result, exporter.FormatXLSX)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "export failed", slog.String("error", err.Error()))
		data.Error = apperrors.UserMessage(err)
		h.render(w, r, data)
		return
	}

	preview := h.service.Preview(result)
	data.Preview = &preview
	data.Report = result.Report
	data.FileName = h.service.FileName(exporter.FormatXLSX)
	data.DownloadURL = template.URL("data:" + exporter.FormatXLSX.ContentType() + ";base64," +
		base64.StdEncoding.EncodeToString(workbook))

	h.render(w, r, data)
}

func (h *HTMLHandler) render(w http.ResponseWriter, r *http.Request, data pageData) {
	data.Title = PageTitle

	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, data); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render page", slog.String("error", err.Error()))
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// formError turns a form parsing failure into the inline message
func formError(err error) string {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return "los archivos superan el tamaño máximo permitido"
	}
	return apperrors.UserMessage(err)
}
