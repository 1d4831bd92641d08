// Package testutil provides fixtures shared by the consolidator tests.
package testutil

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/encoding/charmap"

	"consolidator/pkg/contracts/domain"
)

// Sample stock files. Over 2024-01-01..2024-01-05 AAA is forward filled
// from 100.5 on the 2nd and from 1101.25 on the 4th and 5th.
const (
	AAACSV = "Fecha,Precio\n01/01/2024,\"100,5\"\n03/01/2024,\"1.101,25\"\n"
	BBBCSV = "Fecha,Precio\n01/01/2024,10\n02/01/2024,11\n03/01/2024,12\n04/01/2024,13\n05/01/2024,14\n"
)

// Latin1CSV encodes text as Windows-1252, as spreadsheet exports on
// Spanish-locale machines do.
func Latin1CSV(t *testing.T, text string) []byte {
	t.Helper()
	data, err := charmap.Windows1252.NewEncoder().Bytes([]byte(text))
	if err != nil {
		t.Fatalf("encode windows-1252: %v", err)
	}
	return data
}

// Upload builds an upload from a string
func Upload(name, content string) domain.Upload {
	return domain.Upload{Name: name, Content: []byte(content)}
}

// FormFile is one file part of a multipart upload
type FormFile struct {
	Name    string
	Content []byte
}

// File builds a form file from a string
func File(name, content string) FormFile {
	return FormFile{Name: name, Content: []byte(content)}
}

// MultipartForm encodes the consolidation form and returns the body and its
// Content-Type. Empty dates are omitted.
func MultipartForm(t *testing.T, start, end string, files ...FormFile) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if start != "" {
		if err := mw.WriteField("start", start); err != nil {
			t.Fatalf("write start: %v", err)
		}
	}
	if end != "" {
		if err := mw.WriteField("end", end); err != nil {
			t.Fatalf("write end: %v", err)
		}
	}
	for _, f := range files {
		part, err := mw.CreateFormFile("files", f.Name)
		if err != nil {
			t.Fatalf("create part %s: %v", f.Name, err)
		}
		if _, err := part.Write(f.Content); err != nil {
			t.Fatalf("write part %s: %v", f.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

// WriteFiles writes name → content pairs into a new temp directory
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}
