package notify

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/zombor/paynotify/internal/corpus"
	"github.com/zombor/paynotify/internal/transaction"
)

// maxCaptureSize bounds uploads; full-resolution phone screenshots and
// e-slip PDFs stay well below it.
const maxCaptureSize = 20 << 20

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, map[string]string{"error": message})
}

// statusFor maps service errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrThrottled):
		return http.StatusTooManyRequests
	case errors.Is(err, transaction.ErrEmptyCorpus), errors.Is(err, transaction.ErrInvalidPayload):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": s.version})
}

// handleCapture accepts one screen capture as the multipart field "file".
// It answers 204 when the capture shows no transfer.
func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCaptureSize)
	if err := r.ParseMultipartForm(maxCaptureSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, "Capture is too large", http.StatusRequestEntityTooLarge)
			return
		}
		writeError(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, "No file provided", http.StatusBadRequest)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading capture", "error", err, "filename", header.Filename)
		writeError(w, "Error reading file", http.StatusInternalServerError)
		return
	}

	contentType := strings.ToLower(strings.TrimSpace(header.Header.Get("Content-Type")))
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = contentTypeFor(header.Filename)
	}

	t, err := s.service.ProcessCapture(r.Context(), header.Filename, data, contentType)
	if err != nil {
		if !errors.Is(err, ErrThrottled) {
			slog.Error("Error processing capture", "filename", header.Filename, "error", err)
		}
		writeError(w, err.Error(), statusFor(err))
		return
	}
	if t == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func contentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	}
	return "application/octet-stream"
}

// handleCorpus accepts lines recognized on the device.
func (s *Server) handleCorpus(w http.ResponseWriter, r *http.Request) {
	var c corpus.Corpus
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	for i, l := range c.Lines {
		if l.Box != nil && !l.Box.Valid() {
			c.Lines[i].Box = nil
		}
	}
	s.respondRecorded(w, r, "corpus")(s.service.ProcessCorpus(r.Context(), c))
}

type notificationRequest struct {
	AppPackage string `json:"app_package"`
	Title      string `json:"title"`
	Body       string `json:"body"`
}

func (s *Server) handleNotification(w http.ResponseWriter, r *http.Request) {
	var req notificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	s.respondRecorded(w, r, "notification")(s.service.ProcessNotification(r.Context(), req.AppPackage, req.Title, req.Body))
}

func (s *Server) handlePayload(w http.ResponseWriter, r *http.Request) {
	var p transaction.Payload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	s.respondRecorded(w, r, "payload")(s.service.ProcessPayload(r.Context(), p))
}

func (s *Server) respondRecorded(w http.ResponseWriter, r *http.Request, kind string) func(*Transaction, error) {
	return func(t *Transaction, err error) {
		if err != nil {
			slog.Error("Error processing "+kind, "error", err)
			writeError(w, err.Error(), statusFor(err))
			return
		}
		writeJSON(w, http.StatusCreated, t)
	}
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	list, err := s.service.ListTransactions()
	if err != nil {
		slog.Error("Error listing transactions", "error", err)
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := s.service.GetTransaction(r.PathValue("id"))
	if err != nil {
		writeError(w, "Transaction not found", statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := s.service.GetTransactionImage(r.PathValue("id"))
	if err != nil {
		writeError(w, "Image not found", statusFor(err))
		return
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteTransaction(r.PathValue("id")); err != nil {
		if !errors.Is(err, ErrNotFound) {
			slog.Error("Error deleting transaction", "error", err)
		}
		writeError(w, "Error deleting transaction", statusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
