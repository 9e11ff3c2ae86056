package main

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func postDocument(t *testing.T, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/uploads/document", uploadDocumentHandler())

	req := httptest.NewRequest(http.MethodPost, "/uploads/document", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUploadDocumentRejectsMismatchedContent(t *testing.T) {
	// a .pdf name around plain text must not pass
	w := postDocument(t, "waiver.pdf", []byte("just some plain text, not a document"))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if !strings.Contains(w.Body.String(), "unsupported file type") {
		t.Fatalf("body = %q, want unsupported file type error", w.Body.String())
	}
}

func TestUploadDocumentRequiresExtension(t *testing.T) {
	w := postDocument(t, "waiver", []byte("%PDF-1.7\ncontent"))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if !strings.Contains(w.Body.String(), "extension") {
		t.Fatalf("body = %q, want extension error", w.Body.String())
	}
}

type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

func TestSniffContentTypeDetectsAndRewinds(t *testing.T) {
	data := append([]byte("%PDF-1.7\n"), bytes.Repeat([]byte{'x'}, 600)...)
	file := memFile{bytes.NewReader(data)}

	contentType, err := sniffContentType(file)
	if err != nil {
		t.Fatalf("sniffContentType: %v", err)
	}
	if contentType != "application/pdf" {
		t.Fatalf("contentType = %q, want application/pdf", contentType)
	}

	rest, err := io.ReadAll(file)
	if err != nil {
		t.Fatalf("read after sniff: %v", err)
	}
	if len(rest) != len(data) {
		t.Fatalf("reader not rewound: %d of %d bytes left", len(rest), len(data))
	}
}

func TestSniffContentTypeShortFile(t *testing.T) {
	file := memFile{bytes.NewReader([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'})}

	contentType, err := sniffContentType(file)
	if err != nil {
		t.Fatalf("sniffContentType: %v", err)
	}
	if contentType != "image/png" {
		t.Fatalf("contentType = %q, want image/png", contentType)
	}
}
