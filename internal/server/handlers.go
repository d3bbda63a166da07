package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/facto-ocr/facto/internal/pipeline"
	"github.com/facto-ocr/facto/internal/version"
)

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	v, _, _ := version.Info()
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: v,
		Time:    time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) extractHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadMB<<20)

	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}

	start := time.Now()
	doc, err := s.pipeline.Process(req.Text)
	extractDuration.WithLabelValues("text").Observe(time.Since(start).Seconds())
	if err != nil {
		extractTotal.WithLabelValues("text", "error").Inc()
		status := http.StatusInternalServerError
		if errors.Is(err, pipeline.ErrEmptyDocument) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, ExtractResponse{Success: false, Error: err.Error()})
		return
	}

	extractTotal.WithLabelValues("text", "success").Inc()
	documentLines.Observe(float64(len(doc.Lines)))
	writeJSON(w, http.StatusOK, ExtractResponse{Success: true, Document: doc})
}

func (s *Server) extractPDFHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadMB<<20)

	if err := r.ParseMultipartForm(s.maxUploadMB << 20); err != nil {
		writeErrorResponse(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeErrorResponse(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	// dslipak/pdf wants a seekable file on disk.
	tmp, err := os.CreateTemp("", "facto-upload-*.pdf")
	if err != nil {
		writeErrorResponse(w, "failed to buffer upload", http.StatusInternalServerError)
		return
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()
	if _, err := io.Copy(tmp, file); err != nil {
		_ = tmp.Close()
		writeErrorResponse(w, "failed to buffer upload", http.StatusInternalServerError)
		return
	}
	_ = tmp.Close()

	pageRange := r.FormValue("pages")
	docText, err := s.pdf.ExtractFile(tmpPath, pageRange)
	if err != nil {
		extractTotal.WithLabelValues("pdf", "error").Inc()
		writeJSON(w, http.StatusUnprocessableEntity, ExtractResponse{
			Success: false,
			Error:   "PDF text extraction failed: " + err.Error(),
		})
		return
	}

	start := time.Now()
	doc, err := s.pipeline.Process(docText.Text)
	extractDuration.WithLabelValues("pdf").Observe(time.Since(start).Seconds())
	if err != nil {
		extractTotal.WithLabelValues("pdf", "error").Inc()
		status := http.StatusInternalServerError
		if errors.Is(err, pipeline.ErrEmptyDocument) {
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, ExtractResponse{Success: false, Error: err.Error()})
		return
	}

	extractTotal.WithLabelValues("pdf", "success").Inc()
	documentLines.Observe(float64(len(doc.Lines)))
	slog.Debug("pdf extracted", "file", filepath.Base(header.Filename),
		"pages", len(docText.Pages), "lines", len(doc.Lines))
	writeJSON(w, http.StatusOK, ExtractResponse{Success: true, Document: doc})
}

func (s *Server) batchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadMB<<20)

	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Texts) == 0 {
		writeErrorResponse(w, "texts must not be empty", http.StatusBadRequest)
		return
	}

	errs := make(map[int]string)
	cfg := pipeline.DefaultBatchConfig()
	cfg.ErrorHandler = func(index int, err error) {
		errs[index] = err.Error()
	}

	start := time.Now()
	docs, err := s.pipeline.ProcessBatchContext(r.Context(), req.Texts, cfg)
	extractDuration.WithLabelValues("batch").Observe(time.Since(start).Seconds())
	if err != nil {
		extractTotal.WithLabelValues("batch", "error").Inc()
		writeJSON(w, http.StatusInternalServerError, BatchResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	items := make([]BatchItem, len(docs))
	for i, doc := range docs {
		items[i] = BatchItem{Index: i, Document: doc, Error: errs[i]}
	}
	extractTotal.WithLabelValues("batch", "success").Inc()
	writeJSON(w, http.StatusOK, BatchResponse{Success: true, Items: items})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, statusCode, ExtractResponse{Success: false, Error: message})
}
