package camp

import (
	"encoding/json"
	"net/http"
	"strconv"
)

type ServiceInterface interface {
	List() ([]Camp, error)
	Active() ([]Camp, error)
	Create(req *UpsertRequest) (int64, error)
	Update(id int64, req *UpsertRequest) error
	Delete(id int64) error
	Rates(campID int64) ([]Rate, error)
	CreateRate(req *RateRequest) (int64, error)
	UpdateRate(id int64, req *RateRequest) error
	DeleteRate(id int64) error
	CloneRates(fromCampID, toCampID int64) (int64, error)
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

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	camps, err := h.service.List()
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve camps")
		return
	}
	if camps == nil {
		camps = []Camp{}
	}
	h.respondJSON(w, http.StatusOK, camps)
}

func (h *Handler) HandleActive(w http.ResponseWriter, r *http.Request) {
	camps, err := h.service.Active()
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve active camps")
		return
	}
	h.respondJSON(w, http.StatusOK, camps)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req UpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	id, err := h.service.Create(&req)
	if err != nil {
		h.respondFailure(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"id":      id,
	})
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.respondError(w, http.StatusBadRequest, "Missing or invalid id")
		return
	}
	var req UpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.service.Update(id, &req); err != nil {
		h.respondFailure(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.respondError(w, http.StatusBadRequest, "Missing or invalid id")
		return
	}
	if err := h.service.Delete(id); err != nil {
		h.respondFailure(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *Handler) HandleRates(w http.ResponseWriter, r *http.Request) {
	campID, err := strconv.ParseInt(r.URL.Query().Get("camp_id"), 10, 64)
	if err != nil || campID <= 0 {
		h.respondError(w, http.StatusBadRequest, "Camp ID required")
		return
	}
	rates, err := h.service.Rates(campID)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve rates")
		return
	}
	h.respondJSON(w, http.StatusOK, rates)
}

func (h *Handler) HandleCreateRate(w http.ResponseWriter, r *http.Request) {
	var req RateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	id, err := h.service.CreateRate(&req)
	if err != nil {
		h.respondFailure(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"id":      id,
	})
}

func (h *Handler) HandleUpdateRate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.respondError(w, http.StatusBadRequest, "Missing or invalid id")
		return
	}
	var req RateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.service.UpdateRate(id, &req); err != nil {
		h.respondFailure(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *Handler) HandleDeleteRate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.respondError(w, http.StatusBadRequest, "Missing or invalid id")
		return
	}
	if err := h.service.DeleteRate(id); err != nil {
		h.respondFailure(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *Handler) HandleCloneRates(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FromCampID int64 `json:"from_camp_id"`
		ToCampID   int64 `json:"to_camp_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	count, err := h.service.CloneRates(req.FromCampID, req.ToCampID)
	if err != nil {
		h.respondFailure(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   count,
	})
}

func (h *Handler) respondFailure(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if IsValidationError(err) {
		status = http.StatusBadRequest
	}
	h.respondJSON(w, status, map[string]interface{}{
		"success": false,
		"message": err.Error(),
	})
}

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
