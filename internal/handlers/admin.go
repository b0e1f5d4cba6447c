package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/canvistapp/canvist/internal/models"
)

func (h *Handlers) AdminListOrders(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeMessage(r.Context(), w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	orders, err := h.adminService.ListOrders(r.Context(), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	writeJSON(r.Context(), w, http.StatusOK, orders)
}

func (h *Handlers) AdminGetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.adminService.GetOrder(r.Context(), mux.Vars(r)["orderId"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.uploadService.AttachURLs(r.Context(), order)
	writeJSON(r.Context(), w, http.StatusOK, order)
}

func (h *Handlers) AdminListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.adminService.ListEvents(r.Context(), mux.Vars(r)["orderId"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if events == nil {
		events = []*models.Event{}
	}
	writeJSON(r.Context(), w, http.StatusOK, events)
}

// AdminUploadPreview attaches a preview image to an item and marks it
// PREVIEW_READY.
func (h *Handlers) AdminUploadPreview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vars := mux.Vars(r)

	file, header, err := h.formFile(w, r)
	if err != nil {
		writeMessage(ctx, w, http.StatusBadRequest, err.Error())
		return
	}
	defer file.Close()

	upload, err := h.uploadService.UploadPreview(ctx, vars["orderId"], vars["itemId"],
		header.Filename, contentTypeFromHeader(header.Header.Get("Content-Type")), header.Size, file)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(ctx, w, http.StatusCreated, upload)
}

type overrideStatusRequest struct {
	Status         string `json:"status"`
	TrackingNumber string `json:"trackingNumber"`
}

func (h *Handlers) AdminOverrideStatus(w http.ResponseWriter, r *http.Request) {
	var req overrideStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(r.Context(), w, http.StatusBadRequest, "Invalid request body")
		return
	}

	vars := mux.Vars(r)
	order, err := h.adminService.OverrideStatus(r.Context(), vars["orderId"], vars["itemId"], req.Status, req.TrackingNumber)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, order)
}

func (h *Handlers) AdminCancelOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.adminService.Cancel(r.Context(), mux.Vars(r)["orderId"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, order)
}

type assignUploadRequest struct {
	ItemPublicID string `json:"itemPublicId"`
}

// AdminAssignUpload attaches a legacy order-level upload to an item.
func (h *Handlers) AdminAssignUpload(w http.ResponseWriter, r *http.Request) {
	var req assignUploadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(r.Context(), w, http.StatusBadRequest, "Invalid request body")
		return
	}

	vars := mux.Vars(r)
	uploadID, err := uuid.Parse(vars["uploadId"])
	if err != nil {
		writeMessage(r.Context(), w, http.StatusBadRequest, "Invalid upload id")
		return
	}

	if err := h.adminService.AssignUpload(r.Context(), vars["orderId"], uploadID, req.ItemPublicID); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "assigned"})
}
