package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/canvistapp/canvist/internal/storage"
)

// ServeFile streams a stored object. Only the local provider routes download
// URLs through here; object-store providers hand out signed URLs instead.
func (h *Handlers) ServeFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	key := strings.TrimPrefix(r.URL.Path, "/files/")
	if err := storage.ValidateKey(key); err != nil {
		writeMessage(ctx, w, http.StatusBadRequest, "Invalid file path")
		return
	}

	reader, err := h.storage.Open(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidKey) {
			writeMessage(ctx, w, http.StatusBadRequest, "Invalid file path")
			return
		}
		writeMessage(ctx, w, http.StatusNotFound, "Not found")
		return
	}
	defer reader.Close()

	w.Header().Set("Cache-Control", "private, max-age=600")
	if _, err := io.Copy(w, reader); err != nil {
		h.loggerFromContext(ctx).Warn("failed to stream file", "error", err, "key", key)
	}
}
