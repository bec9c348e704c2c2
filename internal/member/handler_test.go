package member

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"status":  "error",
		"message": message,
		"code":    status,
	})
}

func TestHandleCreate_Success(t *testing.T) {
	store := NewMockStore()
	handler := NewHandler(newTestService(store), respondJSON, respondError)

	body := `{"first_name": "Grace", "last_name": "Hopper", "concession": "yes"}`
	req := httptest.NewRequest(http.MethodPost, "/api/members", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.HandleCreate(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var response map[string]interface{}
	err := json.NewDecoder(res.Body).Decode(&response)
	assert.NoError(t, err)
	assert.Equal(t, true, response["success"])
	assert.Equal(t, float64(1), response["id"])
}

func TestHandleCreate_ValidationFailure(t *testing.T) {
	store := NewMockStore()
	handler := NewHandler(newTestService(store), respondJSON, respondError)

	req := httptest.NewRequest(http.MethodPost, "/api/members", strings.NewReader(`{"last_name": "Hopper"}`))
	w := httptest.NewRecorder()

	handler.HandleCreate(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	var response map[string]interface{}
	err := json.NewDecoder(res.Body).Decode(&response)
	assert.NoError(t, err)
	assert.Equal(t, false, response["success"])
	assert.Equal(t, "first_name is required", response["message"])
}

func TestHandleList_ReturnsEmptyArrayNotNull(t *testing.T) {
	store := NewMockStore()
	handler := NewHandler(newTestService(store), respondJSON, respondError)

	req := httptest.NewRequest(http.MethodGet, "/api/members", nil)
	w := httptest.NewRecorder()

	handler.HandleList(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "[]\n", w.Body.String())
}

func TestHandleUpdate_MissingID(t *testing.T) {
	store := NewMockStore()
	handler := NewHandler(newTestService(store), respondJSON, respondError)

	req := httptest.NewRequest(http.MethodPost, "/api/member/update", strings.NewReader(`{}`))
	w := httptest.NewRecorder()

	handler.HandleUpdate(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestHandleDeleteAll(t *testing.T) {
	store := NewMockStore()
	handler := NewHandler(newTestService(store), respondJSON, respondError)

	req := httptest.NewRequest(http.MethodPost, "/api/members/delete-all", nil)
	w := httptest.NewRecorder()

	handler.HandleDeleteAll(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.True(t, store.DeletedAll)
}
