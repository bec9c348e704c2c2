package prepayment

import (
	"encoding/json"
	"net/http"
	"strconv"
)

type ServiceInterface interface {
	List(campID *int64, search, status string) ([]Credit, error)
	Match(id, memberID int64) error
	DeleteAll(campID *int64) error
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
	query := r.URL.Query()
	var campID *int64
	if raw := query.Get("camp_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "Invalid camp_id")
			return
		}
		campID = &parsed
	}

	credits, err := h.service.List(campID, query.Get("search"), query.Get("status"))
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve prepayments")
		return
	}
	h.respondJSON(w, http.StatusOK, credits)
}

func (h *Handler) HandleMatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID       int64 `json:"id"`
		MemberID int64 `json:"member_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.service.Match(req.ID, req.MemberID); err != nil {
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
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *Handler) HandleDeleteAll(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CampID *int64 `json:"camp_id"`
	}
	if r.Body != nil {
		// Body is optional: no camp id wipes every camp's credits.
		json.NewDecoder(r.Body).Decode(&req)
	}
	if err := h.service.DeleteAll(req.CampID); err != nil {
		h.respondJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"message": err.Error(),
		})
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
