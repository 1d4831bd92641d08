package http

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	apperrors "consolidator/internal/errors"
	"consolidator/internal/services"
	"consolidator/pkg/contracts/domain"
)

// Multipart field names
const (
	FieldStart = "start"
	FieldEnd   = "end"
	FieldFiles = "files"
)

// multipartMemory is how much of a form is kept in memory before spilling
// file parts to disk.
const multipartMemory = 8 << 20

// parseConsolidationForm reads the multipart upload form into a request.
// The body must already be wrapped by http.MaxBytesReader.
func parseConsolidationForm(r *http.Request) (services.ConsolidationRequest, error) {
	var req services.ConsolidationRequest

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return req, maxBytesErr
		}
		return req, apperrors.InvalidRequestWithError(err)
	}
	defer r.MultipartForm.RemoveAll()

	req.Start = strings.TrimSpace(r.FormValue(FieldStart))
	req.End = strings.TrimSpace(r.FormValue(FieldEnd))

	headers := r.MultipartForm.File[FieldFiles]
	req.Files = make([]domain.Upload, 0, len(headers))
	for _, fh := range headers {
		upload, err := readUpload(fh)
		if err != nil {
			return req, err
		}
		req.Files = append(req.Files, upload)
	}

	return req, nil
}

func readUpload(fh *multipart.FileHeader) (domain.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return domain.Upload{}, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return domain.Upload{}, fmt.Errorf("read upload %s: %w", fh.Filename, err)
	}
	return domain.Upload{Name: fh.Filename, Content: content}, nil
}
