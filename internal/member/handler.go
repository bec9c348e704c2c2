package member

import (
	"encoding/json"
	"net/http"
	"strconv"
)

type ServiceInterface interface {
	List() ([]Member, error)
	Create(req *UpsertRequest) (int64, error)
	Update(id int64, req *UpsertRequest) error
	History(id int64) (*History, error)
	Delete(id int64) error
	DeleteAll() error
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
	members, err := h.service.List()
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve members")
		return
	}
	if members == nil {
		members = []Member{}
	}
	h.respondJSON(w, http.StatusOK, members)
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

func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.respondError(w, http.StatusBadRequest, "Missing or invalid id")
		return
	}
	history, err := h.service.History(id)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve member history")
		return
	}
	h.respondJSON(w, http.StatusOK, history)
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

func (h *Handler) HandleDeleteAll(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteAll(); err != nil {
		h.respondFailure(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
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
