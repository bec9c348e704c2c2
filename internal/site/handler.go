package site

import (
	"encoding/json"
	"net/http"
	"strconv"
)

type ServiceInterface interface {
	List() ([]Site, error)
	PublicMap() ([]MapPin, error)
	Create(req *UpsertRequest) (int64, error)
	Update(id int64, req *UpsertRequest) error
	Delete(id int64) error
	UpdateMapCoords(id int64, mapX, mapY float64) error
	Allocate(siteID, memberID int64) error
	Deallocate(siteID, memberID int64) error
	SubmitWaitlist(e *WaitlistEntry) (int64, error)
	Waitlist() ([]WaitlistEntry, error)
	UpdateWaitlistPriority(id int64, priority int) error
	DeleteWaitlist(id int64) error
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
	sites, err := h.service.List()
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve sites")
		return
	}
	if sites == nil {
		sites = []Site{}
	}
	h.respondJSON(w, http.StatusOK, sites)
}

func (h *Handler) HandlePublicMap(w http.ResponseWriter, r *http.Request) {
	pins, err := h.service.PublicMap()
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve site map")
		return
	}
	h.respondJSON(w, http.StatusOK, pins)
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

func (h *Handler) HandleMapCoords(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.respondError(w, http.StatusBadRequest, "Missing or invalid id")
		return
	}
	var req struct {
		MapX *float64 `json:"map_x"`
		MapY *float64 `json:"map_y"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MapX == nil || req.MapY == nil {
		h.respondError(w, http.StatusBadRequest, "Missing coords")
		return
	}
	if err := h.service.UpdateMapCoords(id, *req.MapX, *req.MapY); err != nil {
		h.respondFailure(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *Handler) HandleAllocate(w http.ResponseWriter, r *http.Request) {
	h.handleAllocation(w, r, h.service.Allocate)
}

func (h *Handler) HandleDeallocate(w http.ResponseWriter, r *http.Request) {
	h.handleAllocation(w, r, h.service.Deallocate)
}

func (h *Handler) handleAllocation(w http.ResponseWriter, r *http.Request, op func(siteID, memberID int64) error) {
	var req struct {
		SiteID   int64 `json:"site_id"`
		MemberID int64 `json:"member_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := op(req.SiteID, req.MemberID); err != nil {
		h.respondFailure(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *Handler) HandleWaitlistSubmit(w http.ResponseWriter, r *http.Request) {
	var entry WaitlistEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	id, err := h.service.SubmitWaitlist(&entry)
	if err != nil {
		h.respondFailure(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"id":      id,
	})
}

func (h *Handler) HandleWaitlistList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.Waitlist()
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve waitlist")
		return
	}
	h.respondJSON(w, http.StatusOK, entries)
}

func (h *Handler) HandleWaitlistUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.respondError(w, http.StatusBadRequest, "Missing or invalid id")
		return
	}
	var req struct {
		Priority *int `json:"priority"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Priority == nil {
		h.respondError(w, http.StatusBadRequest, "Missing ID or Priority")
		return
	}
	if err := h.service.UpdateWaitlistPriority(id, *req.Priority); err != nil {
		h.respondFailure(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *Handler) HandleWaitlistDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.respondError(w, http.StatusBadRequest, "Missing or invalid id")
		return
	}
	if err := h.service.DeleteWaitlist(id); err != nil {
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
