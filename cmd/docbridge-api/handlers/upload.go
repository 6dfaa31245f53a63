package handlers

import (
	"errors"
	"net/http"

	"github.com/docbridge-ai/docbridge/internal/observability"
	"github.com/docbridge-ai/docbridge/internal/storage"
)

// UploadHandler handles file uploads into the blob store.
type UploadHandler struct {
	logger   *observability.Logger
	store    *storage.BlobStore
	maxBytes int64
}

// NewUploadHandler creates a new upload handler. maxBytes bounds how much
// multipart payload a single request may carry.
func NewUploadHandler(logger *observability.Logger, store *storage.BlobStore, maxBytes int64) *UploadHandler {
	return &UploadHandler{logger: logger, store: store, maxBytes: maxBytes}
}

// UploadResponseDTO echoes the stored file's identifier and original name.
type UploadResponseDTO struct {
	FileID   string `json:"fileId"`
	Filename string `json:"filename"`
}

// Upload handles POST /upload. The file arrives as the multipart form
// field "file".
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// Some slack over the extraction cap: oversized files are still
	// stored and rejected with a precise error at chat time.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes*2)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "uploaded file is too large", err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "missing multipart field: file", err.Error())
		return
	}
	defer file.Close()

	uploaded, err := h.store.Save(header.Filename, file)
	if err != nil {
		h.logger.Error().Err(err).Str("filename", header.Filename).Msg("Upload failed")
		writeDomainError(w, err)
		return
	}

	h.logger.Info().
		Str("file_id", uploaded.ID).
		Str("filename", header.Filename).
		Msg("File uploaded")

	writeJSON(w, http.StatusOK, UploadResponseDTO{
		FileID:   uploaded.ID,
		Filename: uploaded.OriginalName,
	})
}
