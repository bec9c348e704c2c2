package importer

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func uploadRequest(t *testing.T, target, csvData string, fields map[string]string) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "import.csv")
	require.NoError(t, err)
	_, err = io.Copy(part, strings.NewReader(csvData))
	require.NoError(t, err)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestHandleImportMembers(t *testing.T) {
	store := NewMockStore()
	handler := NewHandler(NewService(store), respondJSON, respondError)

	csvData := "First Name,Last Name\nJane,Smith\n"
	req := uploadRequest(t, "/api/import/members", csvData, nil)
	rec := httptest.NewRecorder()

	handler.HandleImportMembers(rec, req)
	res := rec.Result()
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)

	var payload map[string]interface{}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&payload))
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, float64(1), payload["count"])
}

func TestHandleImportMembersRequiresFile(t *testing.T) {
	handler := NewHandler(NewService(NewMockStore()), respondJSON, respondError)

	req := httptest.NewRequest(http.MethodPost, "/api/import/members", strings.NewReader(""))
	rec := httptest.NewRecorder()

	handler.HandleImportMembers(rec, req)
	res := rec.Result()
	defer res.Body.Close()

	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestHandleImportPrepaymentsRequiresCamp(t *testing.T) {
	handler := NewHandler(NewService(NewMockStore()), respondJSON, respondError)

	req := uploadRequest(t, "/api/import/prepayments", "a,b,c,d\n", nil)
	rec := httptest.NewRecorder()

	handler.HandleImportPrepayments(rec, req)
	res := rec.Result()
	defer res.Body.Close()

	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestHandleImportLegacy(t *testing.T) {
	store := NewMockStore()
	handler := NewHandler(NewService(store), respondJSON, respondError)

	csvData := strings.Join([]string{
		"Year,First Name,Last Name,Site Type,Site Number,Arrive,Depart,Total Nights,Pre-paid,Camp Fees,Site Fees,Total,Eftpos,Cash,Cheque,Other,Concession,Payment Date,Site Fee Year Paid,Headcount",
		"2019,Jane,Smith,,,,,,0,100,0,100,100,0,0,0,no,2019-01-02,,2",
	}, "\n")
	req := uploadRequest(t, "/api/import/legacy", csvData, map[string]string{"camp_id": "9"})
	rec := httptest.NewRecorder()

	handler.HandleImportLegacy(rec, req)
	res := rec.Result()
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)

	var payload map[string]interface{}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&payload))
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, float64(1), payload["count"])
	require.Len(t, store.Payments, 1)
	require.Len(t, store.Tenders, 1)
}

func TestHandleImportRates(t *testing.T) {
	store := NewMockStore()
	handler := NewHandler(NewService(store), respondJSON, respondError)

	csvData := "Category,Item,User Type,Amount\nSite Fees,Powered Site,Adult,45.50\n"
	req := uploadRequest(t, "/api/import/rates", csvData, map[string]string{"camp_id": "4"})
	rec := httptest.NewRecorder()

	handler.HandleImportRates(rec, req)
	res := rec.Result()
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)

	var payload map[string]interface{}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&payload))
	assert.Equal(t, float64(1), payload["count"])
	require.Len(t, store.Rates, 1)
}
