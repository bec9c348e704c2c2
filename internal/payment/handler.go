package payment

import (
	"encoding/json"
	"net/http"
	"strconv"
)

type ServiceInterface interface {
	PostPayment(req *PostPaymentRequest) (int64, bool, error)
	List(search string) ([]ListRow, error)
	UpdateFees(id int64, corr FeeCorrection) error
	Delete(id int64) error
	Summary(start, end string) (Summary, error)
	DashboardStats(campID *int64) (*DashboardStats, error)
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

// HandlePost accepts one payment submission and posts it atomically.
func (h *Handler) HandlePost(w http.ResponseWriter, r *http.Request) {
	var req PostPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Invalid request body",
		})
		return
	}

	id, duplicate, err := h.service.PostPayment(&req)
	if err != nil {
		status := http.StatusInternalServerError
		if IsValidationError(err) {
			status = http.StatusBadRequest
		}
		h.respondJSON(w, status, map[string]interface{}{
			"success": false,
			"message": err.Error(),
		})
		return
	}
	if duplicate {
		h.respondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Duplicate payment detected, ignored.",
			"id":      nil,
		})
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"id":      id,
	})
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	payments, err := h.service.List(r.URL.Query().Get("search"))
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve payments")
		return
	}
	h.respondJSON(w, http.StatusOK, payments)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.respondError(w, http.StatusBadRequest, "Missing or invalid id")
		return
	}
	var corr FeeCorrection
	if err := json.NewDecoder(r.Body).Decode(&corr); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.service.UpdateFees(id, corr); err != nil {
		h.respondJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"message": err.Error(),
		})
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
		h.respondJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"message": err.Error(),
		})
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.URL.Query().Get("start"), r.URL.Query().Get("end"))
	if err != nil {
		if IsValidationError(err) {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.respondError(w, http.StatusInternalServerError, "Failed to compute summary")
		return
	}
	h.respondJSON(w, http.StatusOK, summary)
}

func (h *Handler) HandleDashboardStats(w http.ResponseWriter, r *http.Request) {
	var campID *int64
	if raw := r.URL.Query().Get("camp_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "Invalid camp_id")
			return
		}
		campID = &parsed
	}

	stats, err := h.service.DashboardStats(campID)
	if err != nil {
		if IsValidationError(err) {
			h.respondJSON(w, http.StatusOK, map[string]string{"error": err.Error()})
			return
		}
		h.respondError(w, http.StatusInternalServerError, "Failed to compute dashboard stats")
		return
	}
	h.respondJSON(w, http.StatusOK, stats)
}

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
