package prepayment

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

func TestHandleList_NoCampID(t *testing.T) {
	handler := NewHandler(NewService(NewMockStore()), respondJSON, respondError)

	req := httptest.NewRequest(http.MethodGet, "/api/prepayments", nil)
	w := httptest.NewRecorder()

	handler.HandleList(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "[]\n", w.Body.String())
}

func TestHandleMatch_MissingMemberID(t *testing.T) {
	store := NewMockStore()
	handler := NewHandler(NewService(store), respondJSON, respondError)

	req := httptest.NewRequest(http.MethodPost, "/api/prepayments/match", strings.NewReader(`{"id": 4}`))
	w := httptest.NewRecorder()

	handler.HandleMatch(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Empty(t, store.Matched)
}

func TestHandleDeleteAll_ForwardsCampID(t *testing.T) {
	store := NewMockStore()
	handler := NewHandler(NewService(store), respondJSON, respondError)

	req := httptest.NewRequest(http.MethodPost, "/api/prepayments/delete-all", strings.NewReader(`{"camp_id": 7}`))
	w := httptest.NewRecorder()

	handler.HandleDeleteAll(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, int64(7), *store.DeletedAllFor)
}
