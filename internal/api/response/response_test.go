package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, map[string]string{"name": "test"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, "test", data["name"])
}

func TestCreated(t *testing.T) {
	w := httptest.NewRecorder()
	Created(w, map[string]string{"id": "abc"})

	assert.Equal(t, http.StatusCreated, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, "abc", data["id"])
}

func TestCollection(t *testing.T) {
	w := httptest.NewRecorder()
	items := []map[string]string{{"id": "1"}, {"id": "2"}}
	meta := PaginationMeta{Page: 1, Limit: 20, Total: 50, HasNext: true}

	Collection(w, items, meta)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)

	data := body["data"].([]any)
	assert.Len(t, data, 2)

	m := body["meta"].(map[string]any)
	assert.Equal(t, float64(1), m["page"])
	assert.Equal(t, float64(20), m["limit"])
	assert.Equal(t, float64(50), m["total"])
	assert.Equal(t, true, m["has_next"])
}

func TestError(t *testing.T) {
	fixed := time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC)
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = func() time.Time { return time.Now().UTC() } })

	w := httptest.NewRecorder()
	Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid params", map[string][]string{
		"questions": {"questions is required"},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	errObj := decode(t, w)["error"].(map[string]any)
	assert.Equal(t, "INVALID_REQUEST", errObj["code"])
	assert.Equal(t, "Invalid params", errObj["message"])
	assert.Equal(t, "2026-05-04T10:30:00Z", errObj["timestamp"])
	assert.NotNil(t, errObj["details"])
	_, hasSuggestion := errObj["suggestion"]
	assert.False(t, hasSuggestion)
}

func TestError_NoDetails(t *testing.T) {
	w := httptest.NewRecorder()
	Error(w, http.StatusNotFound, "RESOURCE_NOT_FOUND", "Not found", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)

	errObj := decode(t, w)["error"].(map[string]any)
	assert.Equal(t, "RESOURCE_NOT_FOUND", errObj["code"])
	_, hasDetails := errObj["details"]
	assert.False(t, hasDetails)
	assert.NotEmpty(t, errObj["timestamp"])
}

func TestErrorWithSuggestion(t *testing.T) {
	w := httptest.NewRecorder()
	ErrorWithSuggestion(w, http.StatusServiceUnavailable, "AI_PROVIDER_UNAVAILABLE",
		"openai has no credentials", "Send an X-AI-API-Key header.")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	errObj := decode(t, w)["error"].(map[string]any)
	assert.Equal(t, "AI_PROVIDER_UNAVAILABLE", errObj["code"])
	assert.Equal(t, "Send an X-AI-API-Key header.", errObj["suggestion"])
}

func TestErrorDetail(t *testing.T) {
	w := httptest.NewRecorder()
	ErrorDetail(w, http.StatusBadGateway, "AI_CONTRACT_VIOLATION", "openai response: no JSON object",
		"Retry the request.", map[string]string{"raw_output": "not json"})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	errObj := decode(t, w)["error"].(map[string]any)
	assert.Equal(t, "Retry the request.", errObj["suggestion"])
	assert.Equal(t, "not json", errObj["details"].(map[string]any)["raw_output"])
	assert.NotEmpty(t, errObj["timestamp"])
}
