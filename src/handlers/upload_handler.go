package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/username/tradefolio/backend/src/config"
	"github.com/username/tradefolio/backend/src/logger"
	"github.com/username/tradefolio/backend/src/services"
	"github.com/username/tradefolio/backend/src/utils"
)

// UploadHandler accepts broker statement uploads and hands them to the
// import pipeline.
type UploadHandler struct {
	importSvc services.ImportServicer
}

func NewUploadHandler(importSvc services.ImportServicer) *UploadHandler {
	return &UploadHandler{importSvc: importSvc}
}

// HandleImport processes "POST /api/import". The multipart form carries the
// workbook under "file" and an optional "format" field that pins a specific
// broker adapter instead of header sniffing.
func (h *UploadHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, config.Cfg.MaxUploadSizeBytes)
	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		utils.SendJSONError(w, "Uploaded file exceeds the size limit or the form is malformed", http.StatusRequestEntityTooLarge)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.SendJSONError(w, "Missing 'file' field in upload", http.StatusBadRequest)
		return
	}
	defer file.Close()

	fileData, err := io.ReadAll(file)
	if err != nil {
		logger.L.Error("Error reading uploaded file", "filename", header.Filename, "error", err)
		utils.SendJSONError(w, "Failed to read uploaded file", http.StatusInternalServerError)
		return
	}

	formatHint := r.FormValue("format")
	logger.L.Info("Processing statement upload",
		"filename", header.Filename, "size", len(fileData), "format_hint", formatHint)

	ctx, cancel := context.WithTimeout(r.Context(), config.Cfg.ImportTimeout)
	defer cancel()

	report, err := h.importSvc.ImportFile(ctx, fileData, header.Filename, formatHint)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrParsingFailed):
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		default:
			logger.L.Error("Import failed", "filename", header.Filename, "error", err)
			utils.SendJSONError(w, "Failed to import statement", http.StatusInternalServerError)
		}
		return
	}

	utils.SendJSON(w, report, http.StatusOK)
}
