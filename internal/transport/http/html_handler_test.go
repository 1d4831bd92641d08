package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"consolidator/internal/config"
	"consolidator/internal/services"
	"consolidator/internal/shared/testutil"
)

func newHTMLRouter(t *testing.T) chi.Router {
	t.Helper()
	svc, err := services.NewConsolidationService(config.Default(), nil, quietLogger())
	require.NoError(t, err)
	h, err := NewHTMLHandler(svc, quietLogger())
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Get("/", h.Index)
	r.Post("/", h.Submit)
	return r
}

func TestHTMLHandler_Index(t *testing.T) {
	r := newHTMLRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, body, PageTitle)
	assert.Contains(t, body, `value="2024-04-17"`)
	assert.Contains(t, body, `value="2025-04-17"`)
	assert.Contains(t, body, "Por favor sube los archivos CSV e ingresa las fechas")
	assert.NotContains(t, body, "Vista Previa de Datos")
}

func TestHTMLHandler_SubmitPreview(t *testing.T) {
	r := newHTMLRouter(t)

	body, contentType := testutil.MultipartForm(t, "2024-01-01", "2024-01-05",
		testutil.File("AAA.csv", aaaCSV), testutil.File("BBB.csv", bbbCSV))
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	page := rec.Body.String()
	assert.Contains(t, page, "Vista Previa de Datos")
	assert.Contains(t, page, "<th>AAA</th><th>BBB</th><th>Fin_de_semana</th>")
	assert.Contains(t, page, "1101.25")
	assert.Contains(t, page, "Descargar Excel consolidado")
	assert.Contains(t, page, `download="acciones_consolidadas.xlsx"`)
	assert.Contains(t, page, `href="data:application/vnd.openxmlformats-officedocument.spreadsheetml.sheet;base64,`)
	assert.Equal(t, 5, strings.Count(page, `<td class="fecha">`))
}

func TestHTMLHandler_SubmitError(t *testing.T) {
	r := newHTMLRouter(t)

	body, contentType := testutil.MultipartForm(t, "2024-01-10", "2024-01-05", testutil.File("AAA.csv", aaaCSV))
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	page := rec.Body.String()
	assert.Contains(t, page, "Error: ")
	assert.NotContains(t, page, "Descargar Excel consolidado")
	assert.Contains(t, page, `value="2024-01-10"`)
}

func TestHTMLHandler_SubmitWithoutFiles(t *testing.T) {
	r := newHTMLRouter(t)

	body, contentType := testutil.MultipartForm(t, "2024-01-01", "2024-01-05")
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Por favor sube los archivos CSV e ingresa las fechas")
}
