// Package receiptapi serves the receipt upload service: an upload form, an
// endpoint that extracts and stores an expense from a receipt image, and a
// listing of stored expenses.
package receiptapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/germanamz/genprompt/pkg/expenses"
	"github.com/germanamz/genprompt/pkg/receipts"
	"github.com/google/uuid"
)

// Extractor interprets a receipt image.
type Extractor interface {
	Extract(ctx context.Context, image []byte, mimeType string) (receipts.Result, error)
}

// ExpenseStore persists expenses.
type ExpenseStore interface {
	Add(ctx context.Context, e expenses.Expense) (expenses.Expense, error)
	List(ctx context.Context) ([]expenses.Expense, error)
}

// Handler is the HTTP adapter for the receipt service.
type Handler struct {
	extractor Extractor
	store     ExpenseStore
	uploadDir string
	maxUpload int64
	logger    *slog.Logger
}

// NewHandler creates a Handler. Uploaded files are kept under uploadDir.
func NewHandler(extractor Extractor, store ExpenseStore, uploadDir string, maxUpload int64, logger *slog.Logger) *Handler {
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}
	return &Handler{
		extractor: extractor,
		store:     store,
		uploadDir: uploadDir,
		maxUpload: maxUpload,
		logger:    logger,
	}
}

// NewServeMux registers all routes and wraps them with logging and recovery
// middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.UploadForm)
	mux.HandleFunc("POST /upload-receipt", h.UploadReceipt)
	mux.HandleFunc("GET /expenses", h.ListExpenses)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// UploadForm serves the HTML upload page.
func (h *Handler) UploadForm(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, uploadPage)
}

// UploadReceipt stores the uploaded image, extracts its details with the
// model, and saves the resulting expense.
func (h *Handler) UploadReceipt(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("file exceeds the %d byte upload limit", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read uploaded file")
		return
	}

	fileName := sanitizeFileName(r.FormValue("fileName"))
	if fileName == "" {
		fileName = sanitizeFileName(header.Filename)
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}

	ctx := r.Context()

	// Extract before writing so a failed extraction leaves nothing on disk.
	res, err := h.extractor.Extract(ctx, data, mimeType)
	if err != nil {
		h.logger.ErrorContext(ctx, "extraction failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to process receipt with AI")
		return
	}

	imagePath, err := h.saveUpload(fileName, data)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to store upload", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to store uploaded file")
		return
	}
	h.logger.InfoContext(ctx, "receipt stored", "path", imagePath, "mime_type", mimeType)

	exp, err := h.store.Add(ctx, expenses.Expense{
		Description: res.Description,
		Date:        res.Date,
		Amount:      res.Amount,
		Category:    string(res.Category),
		ImagePath:   imagePath,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to save expense", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to process and save expense")
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		Message: "Receipt processed successfully",
		Data:    exp,
	})
}

// ListExpenses returns every stored expense as JSON.
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list expenses", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch expenses")
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// saveUpload writes data to uploadDir as "<uuid>-<fileName>" and returns the path.
func (h *Handler) saveUpload(fileName string, data []byte) (string, error) {
	if err := os.MkdirAll(h.uploadDir, 0o750); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := uuid.NewString()
	if fileName != "" {
		name += "-" + fileName
	}

	path := filepath.Join(h.uploadDir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}

	return path, nil
}

// sanitizeFileName keeps only the base name and drops path separators.
func sanitizeFileName(name string) string {
	name = strings.TrimSpace(filepath.Base(strings.ReplaceAll(name, "\\", "/")))
	switch name {
	case ".", "..", "/":
		return ""
	}
	return name
}

const uploadPage = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Upload Receipt</title>
</head>
<body>
    <h1>Upload Receipt</h1>
    <form id="uploadForm" enctype="multipart/form-data" method="POST" action="/upload-receipt">
        <input type="file" name="file" id="fileInput" /><br/><br/>
        <input type="text" name="fileName" id="fileName" placeholder="Enter file name" /><br/><br/>
        <button type="submit">Upload</button>
    </form>
</body>
</html>
`
