package expense

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func newTestRouter(svc *Service) http.Handler {
	r := chi.NewRouter()
	r.Mount("/expenses", NewHandler(svc).Routes())
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func TestHandler_CreateEven(t *testing.T) {
	f := newFixture()
	h := newTestRouter(f.svc)

	body := fmt.Sprintf(`{"group_id":%q,"title":"Dinner","amount":100}`, f.groupID)
	rec, env := do(t, h, http.MethodPost, "/expenses", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp ExpenseResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	require.Len(t, resp.Splits, 3)
	assert.Equal(t, 33.33, resp.Splits[2].Amount)
	assert.Equal(t, "EVEN", string(resp.SplitType))

	rec, env = do(t, h, http.MethodGet, "/expenses/group/"+f.groupID.String()+"?per_page=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []ExpenseResponse
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)
}

func TestHandler_SplitMismatch(t *testing.T) {
	f := newFixture()
	h := newTestRouter(f.svc)

	body := fmt.Sprintf(`{"group_id":%q,"title":"Hotel","amount":300,"split_type":"EXACT","participants":[
		{"member_id":%q,"amount":150},{"member_id":%q,"amount":100}]}`, f.groupID, f.priya.ID, f.ravi.ID)
	rec, env := do(t, h, http.MethodPost, "/expenses", body)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "SPLIT_MISMATCH", env.Error.Code)

	var details SplitMismatchDetails
	require.NoError(t, json.Unmarshal(env.Error.Details, &details))
	assert.Equal(t, SplitMismatchDetails{Total: 300, Sum: 250, Difference: -50}, details)
}

func TestHandler_Errors(t *testing.T) {
	f := newFixture()
	h := newTestRouter(f.svc)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{"bad body", http.MethodPost, "/expenses", "[", http.StatusBadRequest, "BAD_REQUEST"},
		{
			"unknown split type", http.MethodPost, "/expenses",
			fmt.Sprintf(`{"group_id":%q,"title":"x","amount":5,"split_type":"SHARES"}`, f.groupID),
			http.StatusBadRequest, "BAD_REQUEST",
		},
		{
			"unknown group", http.MethodPost, "/expenses",
			fmt.Sprintf(`{"group_id":%q,"title":"x","amount":5}`, uuid.New()),
			http.StatusNotFound, "NOT_FOUND",
		},
		{"bad id", http.MethodGet, "/expenses/abc", "", http.StatusBadRequest, "BAD_REQUEST"},
		{"missing expense", http.MethodGet, "/expenses/" + uuid.NewString(), "", http.StatusNotFound, "NOT_FOUND"},
		{"missing split", http.MethodPost, "/expenses/splits/" + uuid.NewString() + "/pay", "", http.StatusNotFound, "NOT_FOUND"},
		{"delete missing", http.MethodDelete, "/expenses/" + uuid.NewString(), "", http.StatusNotFound, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}
