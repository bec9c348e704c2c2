package intranet

import (
	"encoding/json"
	"errors"
	"net/http"
)

type ServiceInterface interface {
	ActivePage() (*Page, error)
	Save(program, notifications, events string) error
}

type Handler struct {
	service      ServiceInterface
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string)
}

func NewHandler(
	service ServiceInterface,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string),
) *Handler {
	if service == nil || respondJSON == nil || respondError == nil {
		panic("Service and response functions must not be nil")
	}
	return &Handler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

// HandlePage serves both the public page and the admin editor load, which
// return the same shape.
func (h *Handler) HandlePage(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ActivePage()
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve intranet content")
		return
	}
	h.respondJSON(w, http.StatusOK, page)
}

func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Program       string `json:"program"`
		Notifications string `json:"notifications"`
		Events        string `json:"events"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.service.Save(req.Program, req.Notifications, req.Events); err != nil {
		if errors.Is(err, ErrNoActiveCamp) {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.respondError(w, http.StatusInternalServerError, "Failed to save intranet content")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
