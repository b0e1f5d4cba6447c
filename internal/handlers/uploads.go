package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/canvistapp/canvist/internal/storage"
)

// UploadCustomerPhoto accepts one multipart photo for an item.
func (h *Handlers) UploadCustomerPhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vars := mux.Vars(r)

	file, header, err := h.formFile(w, r)
	if err != nil {
		writeMessage(ctx, w, http.StatusBadRequest, err.Error())
		return
	}
	defer file.Close()

	upload, err := h.uploadService.UploadCustomerPhoto(ctx, vars["orderId"], vars["itemId"],
		header.Filename, contentTypeFromHeader(header.Header.Get("Content-Type")), header.Size, file, h.viewer(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(ctx, w, http.StatusCreated, upload)
}

type signUploadRequest struct {
	ContentType string `json:"contentType"`
}

// SignCustomerPhotoUpload issues a pre-signed URL for a direct-to-storage
// upload, when the configured provider supports them.
func (h *Handlers) SignCustomerPhotoUpload(w http.ResponseWriter, r *http.Request) {
	var req signUploadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(r.Context(), w, http.StatusBadRequest, "Invalid request body")
		return
	}

	vars := mux.Vars(r)
	url, key, err := h.uploadService.SignCustomerPhotoUpload(r.Context(), vars["orderId"], vars["itemId"], req.ContentType, h.viewer(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{
		"uploadUrl":  url,
		"storageKey": key,
	})
}

type confirmUploadRequest struct {
	StorageKey  string `json:"storageKey"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	SizeBytes   int64  `json:"sizeBytes"`
}

// ConfirmCustomerPhotoUpload records a completed direct upload.
func (h *Handlers) ConfirmCustomerPhotoUpload(w http.ResponseWriter, r *http.Request) {
	var req confirmUploadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(r.Context(), w, http.StatusBadRequest, "Invalid request body")
		return
	}

	vars := mux.Vars(r)
	upload, err := h.uploadService.ConfirmCustomerPhotoUpload(r.Context(), vars["orderId"], vars["itemId"],
		req.StorageKey, req.FileName, req.ContentType, req.SizeBytes, h.viewer(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusCreated, upload)
}

func (h *Handlers) DeleteCustomerPhoto(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	uploadID, err := uuid.Parse(vars["uploadId"])
	if err != nil {
		writeMessage(r.Context(), w, http.StatusBadRequest, "Invalid upload id")
		return
	}

	if err := h.uploadService.DeleteCustomerPhoto(r.Context(), vars["orderId"], uploadID, h.viewer(r)); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) formFile(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxUploadBytes+4096)
	if err := r.ParseMultipartForm(storage.MaxUploadBytes); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return nil, nil, errors.New("file exceeds the upload size limit")
		}
		return nil, nil, errors.New("invalid multipart request")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, nil, errors.New("missing file field")
	}
	return file, header, nil
}

func contentTypeFromHeader(value string) string {
	if value == "" {
		return "application/octet-stream"
	}
	return value
}
