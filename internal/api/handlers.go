package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pdfhilite/pdfhilite/internal/highlight"
	"github.com/pdfhilite/pdfhilite/internal/pipeline"
)

const docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("pdfFile")
	if err != nil {
		jsonError(w, "pdfFile is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		jsonError(w, "Invalid file type. Please upload a PDF document.", http.StatusBadRequest)
		return
	}

	modeStr := r.FormValue("extractionMode")
	if modeStr == "" {
		modeStr = "full_page"
	}
	mode, err := highlight.ParseMode(modeStr)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	res, err := s.processor.Process(r.Context(), data, mode)
	if err != nil {
		if errors.Is(err, pipeline.ErrSourceUnreadable) {
			jsonError(w, "Failed to process PDF. Please check the uploaded file.", http.StatusUnprocessableEntity)
			return
		}
		s.log.Error("processing failed", "filename", filename, "error", err)
		jsonError(w, "Failed to process PDF. Please try again.", http.StatusInternalServerError)
		return
	}

	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	pdfName, err := s.store.Put("highlights", base, ".pdf", res.PDFBytes)
	if err != nil {
		s.log.Error("storing pdf artifact failed", "filename", filename, "error", err)
		jsonError(w, "Failed to store generated files.", http.StatusInternalServerError)
		return
	}
	docxName, err := s.store.Put("highlights_text", base, ".docx", res.DOCXBytes)
	if err != nil {
		s.log.Error("storing docx artifact failed", "filename", filename, "error", err)
		s.store.Remove(pdfName)
		jsonError(w, "Failed to store generated files.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"highlights":        res.Highlights,
		"pdf_download_url":  "/download-pdf/" + pdfName,
		"docx_download_url": "/download-docx/" + docxName,
	})
}

func (s *Server) handleDownloadPDF(w http.ResponseWriter, r *http.Request) {
	s.serveArtifact(w, r, "application/pdf")
}

func (s *Server) handleDownloadDOCX(w http.ResponseWriter, r *http.Request) {
	s.serveArtifact(w, r, docxMIME)
}

// serveArtifact sends a generated file as an attachment and deletes it
// afterwards; each artifact downloads at most once.
func (s *Server) serveArtifact(w http.ResponseWriter, r *http.Request, mime string) {
	name := chi.URLParam(r, "filename")
	path, err := s.store.Resolve(name)
	if err != nil {
		jsonError(w, "File not found.", http.StatusNotFound)
		return
	}

	f, err := os.Open(path)
	if err != nil {
		jsonError(w, "File not found.", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if _, err := io.Copy(w, f); err != nil {
		s.log.Warn("artifact download interrupted", "name", name, "error", err)
	}
	f.Close()
	s.store.Remove(name)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
