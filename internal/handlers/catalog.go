package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/canvistapp/canvist/internal/catalog"
	"github.com/canvistapp/canvist/internal/shipping"
)

// Themes returns the theme catalog.
func (h *Handlers) Themes(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, h.themes.All())
}

// Catalog returns the fixed configuration space: sizes, frame options and the
// quantity cap.
func (h *Handlers) Catalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]any{
		"sizes":       catalog.Sizes(),
		"frameColors": catalog.FrameColors(),
		"frameModels": catalog.FrameModels(),
		"paperFinish": catalog.PaperFinish,
		"maxQuantity": catalog.MaxQuantity,
	})
}

// ShippingRate resolves a destination country to its zone rate.
func (h *Handlers) ShippingRate(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, shipping.Resolve(mux.Vars(r)["country"]))
}
