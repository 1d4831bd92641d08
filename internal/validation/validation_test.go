package validation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "consolidator/internal/errors"
)

type sampleFile struct {
	Name string `json:"name" validate:"filename"`
}

type sampleRequest struct {
	Start  string       `json:"start" validate:"required"`
	End    string       `json:"end" validate:"required"`
	Format string       `json:"format" validate:"omitempty,oneof=xlsx csv"`
	Files  []sampleFile `json:"files" validate:"required,min=1,max=3,dive"`
}

func TestValidateStruct(t *testing.T) {
	v := NewRequestValidator()

	tests := []struct {
		name      string
		req       sampleRequest
		wantField string
	}{
		{name: "valid", req: sampleRequest{Start: "2024-01-01", End: "2024-01-05", Files: []sampleFile{{"AAA.csv"}}}},
		{name: "missing start", req: sampleRequest{End: "2024-01-05", Files: []sampleFile{{"A.csv"}}}, wantField: "start"},
		{name: "missing end", req: sampleRequest{Start: "2024-01-01", Files: []sampleFile{{"A.csv"}}}, wantField: "end"},
		{name: "no files", req: sampleRequest{Start: "2024-01-01", End: "2024-01-05"}, wantField: "files"},
		{name: "bad format", req: sampleRequest{Start: "2024-01-01", End: "2024-01-05", Format: "pdf", Files: []sampleFile{{"A.csv"}}}, wantField: "format"},
		{name: "path traversal", req: sampleRequest{Start: "2024-01-01", End: "2024-01-05", Files: []sampleFile{{"../A.csv"}}}, wantField: "name"},
		{name: "windows path", req: sampleRequest{Start: "2024-01-01", End: "2024-01-05", Files: []sampleFile{{`dir\A.csv`}}}, wantField: "name"},
		{name: "parent dir name", req: sampleRequest{Start: "2024-01-01", End: "2024-01-05", Files: []sampleFile{{".."}}}, wantField: "name"},
		{name: "dot name", req: sampleRequest{Start: "2024-01-01", End: "2024-01-05", Files: []sampleFile{{"."}}}, wantField: "name"},
		{name: "repeated dots", req: sampleRequest{Start: "2024-01-01", End: "2024-01-05", Files: []sampleFile{{"ENEL S.A..csv"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStruct(tt.req)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
			assert.Contains(t, err.Error(), tt.wantField)

			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			fields, ok := appErr.Context["fields"].([]apperrors.ValidationError)
			require.True(t, ok)
			assert.NotEmpty(t, fields)
		})
	}
}

func TestFileValidator(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "AAA.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("Fecha,Precio\n"), 0644))
	txtPath := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("x"), 0644))

	v := NewFileValidator(nil)

	assert.NoError(t, v.ValidateInputDirectory(dir))
	assert.Error(t, v.ValidateInputDirectory(filepath.Join(dir, "missing")))
	assert.Error(t, v.ValidateInputDirectory(csvPath))

	assert.NoError(t, v.ValidateCSVFile(csvPath))
	assert.Error(t, v.ValidateCSVFile(txtPath))
	assert.Error(t, v.ValidateCSVFile(filepath.Join(dir, "nope.csv")))
	assert.Error(t, v.ValidateFile(dir))

	out := filepath.Join(dir, "out", "consolidado.xlsx")
	assert.NoError(t, v.ValidateOutputFile(out, ".xlsx"))
	info, err := os.Stat(filepath.Dir(out))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	err = v.ValidateOutputFile(strings.TrimSuffix(out, ".xlsx")+".csv", ".xlsx")
	assert.Error(t, err)
}
