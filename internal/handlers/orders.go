package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/canvistapp/canvist/internal/models"
	"github.com/canvistapp/canvist/internal/services"
	"github.com/canvistapp/canvist/internal/session"
)

type createOrderRequest struct {
	Email string `json:"email"`
}

// CreateOrder opens a new draft order. Guests get a capability URL; logged-in
// customers get the order attached to their account.
func (h *Handlers) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			writeMessage(r.Context(), w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	if req.Email == "" {
		if data := session.FromContext(r.Context()); data != nil {
			req.Email = data.Email
		}
	}

	order, err := h.orderService.CreateOrder(r.Context(), h.viewer(r), req.Email)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusCreated, order)
}

// GetOrder returns the full order with items and signed upload URLs.
func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orderService.GetOrder(r.Context(), mux.Vars(r)["orderId"], h.viewer(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.uploadService.AttachURLs(r.Context(), order)
	writeJSON(r.Context(), w, http.StatusOK, order)
}

// ListMyOrders returns the authenticated customer's orders.
func (h *Handlers) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	data := session.FromContext(r.Context())
	if data == nil {
		writeMessage(r.Context(), w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	orders, err := h.orderService.ListUserOrders(r.Context(), data.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	writeJSON(r.Context(), w, http.StatusOK, orders)
}

type addItemRequest struct {
	ThemeSlug string `json:"themeSlug"`
}

func (h *Handlers) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(r.Context(), w, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, err := h.orderService.AddItem(r.Context(), mux.Vars(r)["orderId"], req.ThemeSlug, h.viewer(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusCreated, item)
}

type configureItemRequest struct {
	ThemeSlug  string `json:"themeSlug"`
	Size       string `json:"size"`
	FrameColor string `json:"frameColor"`
	FrameModel string `json:"frameModel"`
	Quantity   int    `json:"quantity"`
}

func (h *Handlers) ConfigureItem(w http.ResponseWriter, r *http.Request) {
	var req configureItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(r.Context(), w, http.StatusBadRequest, "Invalid request body")
		return
	}

	vars := mux.Vars(r)
	item, err := h.orderService.ConfigureItem(r.Context(), vars["orderId"], vars["itemId"], services.ConfigureItemInput{
		ThemeSlug:  req.ThemeSlug,
		Size:       req.Size,
		FrameColor: req.FrameColor,
		FrameModel: req.FrameModel,
		Quantity:   req.Quantity,
	}, h.viewer(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, item)
}

func (h *Handlers) SetShippingAddress(w http.ResponseWriter, r *http.Request) {
	var req models.ShippingAddress
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(r.Context(), w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := h.orderService.SetShippingAddress(r.Context(), mux.Vars(r)["orderId"], &req, h.viewer(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, order)
}

// Pay runs the simulated payment. Repeat calls on a paid order succeed
// without side effects.
func (h *Handlers) Pay(w http.ResponseWriter, r *http.Request) {
	alreadyPaid, err := h.orderService.Pay(r.Context(), mux.Vars(r)["orderId"], h.viewer(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, map[string]any{
		"paid":        true,
		"alreadyPaid": alreadyPaid,
	})
}

func (h *Handlers) ApproveItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.orderService.ApproveItem(r.Context(), vars["orderId"], vars["itemId"], h.viewer(r)); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "approved"})
}

type revisionRequest struct {
	Notes string `json:"notes"`
}

func (h *Handlers) RequestRevision(w http.ResponseWriter, r *http.Request) {
	var req revisionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(r.Context(), w, http.StatusBadRequest, "Invalid request body")
		return
	}

	vars := mux.Vars(r)
	if err := h.orderService.RequestRevision(r.Context(), vars["orderId"], vars["itemId"], req.Notes, h.viewer(r)); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "revision requested"})
}
