package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/canvistapp/canvist/internal/services"
	"github.com/canvistapp/canvist/internal/workflow"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	t.Parallel()

	h := &Handlers{}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"order locked", workflow.ErrOrderNotEditable, http.StatusConflict, "Order is no longer editable."},
		{"uploads closed", workflow.ErrUploadsClosed, http.StatusConflict, "Uploads are closed for this order."},
		{"not approvable", workflow.ErrItemNotApprovable, http.StatusConflict, "Item is not ready for approval."},
		{"revision used", workflow.ErrRevisionAlreadyUsed, http.StatusConflict, "Revision already used for this item."},
		{"preview missing", workflow.ErrPreviewUploadsMissing, http.StatusConflict, "Cannot mark PREVIEW_READY without preview uploads."},
		{"notes too short", workflow.ErrRevisionNotesTooShort, http.StatusBadRequest, "at least 3 characters"},
		{"not found", services.ErrNotFound, http.StatusNotFound, "Not found"},
		{"bad credentials", services.ErrInvalidCredentials, http.StatusUnauthorized, "invalid email or password"},
		{"email taken", services.ErrEmailTaken, http.StatusConflict, "already registered"},
		{"rate limited", services.ErrTooManyAttempts, http.StatusTooManyRequests, "too many attempts"},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "https://canvist.example/api/orders/cv-abc/pay", nil)
			rec := httptest.NewRecorder()

			h.writeError(rec, req, tt.err)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Fatalf("body = %q, missing %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestWriteErrorInsufficientPhotosPayload(t *testing.T) {
	t.Parallel()

	h := &Handlers{}
	req := httptest.NewRequest(http.MethodPost, "https://canvist.example/api/orders/cv-abc/pay", nil)
	rec := httptest.NewRecorder()

	h.writeError(rec, req, &workflow.InsufficientPhotosError{
		Items: []workflow.ItemPhotoCount{{ItemPublicID: "cv-itemshort1", Count: 1}},
	})

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusConflict)
	}

	var body struct {
		Error string                    `json:"error"`
		Items []workflow.ItemPhotoCount `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if len(body.Items) != 1 || body.Items[0].ItemPublicID != "cv-itemshort1" {
		t.Fatalf("items = %+v, want cv-itemshort1", body.Items)
	}
	if !strings.Contains(body.Error, "cv-itemshort1") {
		t.Fatalf("error = %q, missing blocking item id", body.Error)
	}
}
