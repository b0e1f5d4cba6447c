package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/canvistapp/canvist/internal/db"
	"github.com/canvistapp/canvist/internal/logging"
	"github.com/canvistapp/canvist/internal/services"
	"github.com/canvistapp/canvist/internal/workflow"
)

const maxRequestBodyBytes = 1 << 20 // 1 MB for JSON bodies

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx, nil).Error("failed to encode response", "error", err)
	}
}

func writeMessage(ctx context.Context, w http.ResponseWriter, status int, message string) {
	writeJSON(ctx, w, status, map[string]string{"error": message})
}

// writeError maps domain errors onto HTTP statuses. Workflow guard failures
// return their message verbatim so the storefront can show it as-is.
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()

	var insufficient *workflow.InsufficientPhotosError
	if errors.As(err, &insufficient) {
		writeJSON(ctx, w, http.StatusConflict, map[string]any{
			"error": insufficient.Error(),
			"items": insufficient.Items,
		})
		return
	}

	switch {
	case errors.Is(err, workflow.ErrOrderNotEditable),
		errors.Is(err, workflow.ErrUploadsClosed),
		errors.Is(err, workflow.ErrItemNotApprovable),
		errors.Is(err, workflow.ErrItemNotRevisable),
		errors.Is(err, workflow.ErrRevisionAlreadyUsed),
		errors.Is(err, workflow.ErrPreviewUploadsMissing):
		writeMessage(ctx, w, http.StatusConflict, err.Error())
	case errors.Is(err, workflow.ErrRevisionNotesTooShort):
		writeMessage(ctx, w, http.StatusBadRequest, err.Error())
	case services.IsValidation(err):
		writeMessage(ctx, w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotFound), errors.Is(err, db.ErrNotFound):
		writeMessage(ctx, w, http.StatusNotFound, "Not found")
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrInvalidToken):
		writeMessage(ctx, w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrEmailTaken):
		writeMessage(ctx, w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrTooManyAttempts):
		writeMessage(ctx, w, http.StatusTooManyRequests, err.Error())
	default:
		h.loggerFromContext(ctx).Error("request failed", "error", err, "path", r.URL.Path)
		writeMessage(ctx, w, http.StatusInternalServerError, "Internal server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return err
	}
	return nil
}
