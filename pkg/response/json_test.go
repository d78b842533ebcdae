package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, map[string]string{"name": "Goa trip"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Goa trip", body["data"].(map[string]interface{})["name"])
	assert.NotContains(t, body, "error")
}

func TestJSONWithMeta(t *testing.T) {
	rec := httptest.NewRecorder()
	JSONWithMeta(rec, http.StatusOK, []int{1, 2}, NewMeta(2, 20, 41))

	meta := decode(t, rec)["meta"].(map[string]interface{})
	assert.EqualValues(t, 2, meta["page"])
	assert.EqualValues(t, 41, meta["total"])
	assert.EqualValues(t, 3, meta["total_pages"])
}

func TestSplitMismatch(t *testing.T) {
	rec := httptest.NewRecorder()
	SplitMismatch(rec, "split amounts must equal the total", map[string]float64{"difference": 10})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, false, body["success"])

	apiErr := body["error"].(map[string]interface{})
	assert.Equal(t, "SPLIT_MISMATCH", apiErr["code"])
	assert.EqualValues(t, 10, apiErr["details"].(map[string]interface{})["difference"])
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		fn   func(http.ResponseWriter, string)
		code int
		tag  string
	}{
		{BadRequest, http.StatusBadRequest, "BAD_REQUEST"},
		{NotFound, http.StatusNotFound, "NOT_FOUND"},
		{InternalError, http.StatusInternalServerError, "INTERNAL_ERROR"},
		{Unauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{Forbidden, http.StatusForbidden, "FORBIDDEN"},
		{Conflict, http.StatusConflict, "CONFLICT"},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.fn(rec, "boom")

			assert.Equal(t, tt.code, rec.Code)
			apiErr := decode(t, rec)["error"].(map[string]interface{})
			assert.Equal(t, tt.tag, apiErr["code"])
			assert.Equal(t, "boom", apiErr["message"])
			assert.NotContains(t, apiErr, "details")
		})
	}
}
