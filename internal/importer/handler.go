package importer

import (
	"io"
	"net/http"
	"strconv"
)

const maxUploadBytes = 10 << 20

type ServiceInterface interface {
	ImportMembers(reader io.Reader) (MembersResult, error)
	ImportPrepayments(reader io.Reader, campID int64) (PrepaymentsResult, error)
	ImportRates(reader io.Reader, campID int64) (int, error)
	ImportLegacyPayments(reader io.Reader, campID int64) (int, error)
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

func (h *Handler) HandleImportMembers(w http.ResponseWriter, r *http.Request) {
	file, ok := h.uploadedFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	result, err := h.service.ImportMembers(file)
	if err != nil {
		h.respondFailure(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   result.Created,
		"updated": result.Updated,
	})
}

func (h *Handler) HandleImportPrepayments(w http.ResponseWriter, r *http.Request) {
	file, ok := h.uploadedFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	campID, ok := h.campIDParam(w, r)
	if !ok {
		return
	}

	result, err := h.service.ImportPrepayments(file, campID)
	if err != nil {
		h.respondFailure(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   result.Count,
		"matched": result.Matched,
		"skipped": result.Skipped,
	})
}

func (h *Handler) HandleImportRates(w http.ResponseWriter, r *http.Request) {
	file, ok := h.uploadedFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	campID, ok := h.campIDParam(w, r)
	if !ok {
		return
	}

	count, err := h.service.ImportRates(file, campID)
	if err != nil {
		h.respondFailure(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   count,
	})
}

func (h *Handler) HandleImportLegacy(w http.ResponseWriter, r *http.Request) {
	file, ok := h.uploadedFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	campID, ok := h.campIDParam(w, r)
	if !ok {
		return
	}

	count, err := h.service.ImportLegacyPayments(file, campID)
	if err != nil {
		h.respondFailure(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   count,
	})
}

func (h *Handler) uploadedFile(w http.ResponseWriter, r *http.Request) (io.ReadCloser, bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.respondError(w, http.StatusBadRequest, "No file uploaded")
		return nil, false
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "No file uploaded")
		return nil, false
	}
	return file, true
}

func (h *Handler) campIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	campID, err := strconv.ParseInt(r.FormValue("camp_id"), 10, 64)
	if err != nil || campID <= 0 {
		h.respondError(w, http.StatusBadRequest, "Camp ID required")
		return 0, false
	}
	return campID, true
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
