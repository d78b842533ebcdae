package group

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/splitease/pkg/middleware"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestRouter(svc *Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.MemberIdentity)
	r.Mount("/groups", NewHandler(svc).Routes())
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string, header map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func TestHandler_CreateAndGet(t *testing.T) {
	h := newTestRouter(NewService(newMemStore()))

	rec, env := do(t, h, http.MethodPost, "/groups",
		`{"name":"Flat 4B","admin":{"name":"Priya","email":"priya@example.com"}}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created GroupResponse
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.Len(t, created.Members, 1)
	assert.Equal(t, MemberRoleAdmin, created.Members[0].Role)

	rec, env = do(t, h, http.MethodPost, "/groups/"+created.ID.String()+"/members",
		`{"members":[{"name":"Ravi","email":"ravi@example.com"}]}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, env = do(t, h, http.MethodGet, "/groups/"+created.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got GroupResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "Flat 4B", got.Name)
	assert.Len(t, got.Members, 2)
}

func TestHandler_Errors(t *testing.T) {
	svc := NewService(newMemStore())
	h := newTestRouter(svc)

	g, admin, err := svc.Create(context.Background(), &CreateGroupRequest{
		Name:  "Trip",
		Admin: MemberInput{Name: "Priya", Email: "priya@example.com"},
	})
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		header map[string]string
		status int
		code   string
	}{
		{"bad id", http.MethodGet, "/groups/17", "", nil, http.StatusBadRequest, "BAD_REQUEST"},
		{"unknown group", http.MethodGet, "/groups/" + uuid.NewString(), "", nil, http.StatusNotFound, "NOT_FOUND"},
		{"bad body", http.MethodPost, "/groups", "{", nil, http.StatusBadRequest, "BAD_REQUEST"},
		{"missing admin email", http.MethodPost, "/groups", `{"name":"X","admin":{"name":"A"}}`, nil, http.StatusBadRequest, "BAD_REQUEST"},
		{
			"duplicate member", http.MethodPost, "/groups/" + g.ID.String() + "/members",
			`{"members":[{"name":"P2","email":"priya@example.com"}]}`, nil, http.StatusConflict, "CONFLICT",
		},
		{"delete without member", http.MethodDelete, "/groups/" + g.ID.String(), "", nil, http.StatusUnauthorized, "UNAUTHORIZED"},
		{
			"delete by non admin", http.MethodDelete, "/groups/" + g.ID.String(), "",
			map[string]string{middleware.MemberHeader: uuid.NewString()}, http.StatusForbidden, "FORBIDDEN",
		},
		{
			"remove admin", http.MethodDelete, "/groups/" + g.ID.String() + "/members/" + admin.ID.String(), "",
			nil, http.StatusBadRequest, "BAD_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, h, tt.method, tt.path, tt.body, tt.header)
			assert.Equal(t, tt.status, rec.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestHandler_DeleteByAdmin(t *testing.T) {
	svc := NewService(newMemStore())
	h := newTestRouter(svc)

	g, admin, err := svc.Create(context.Background(), &CreateGroupRequest{
		Name:  "Trip",
		Admin: MemberInput{Name: "Priya", Email: "priya@example.com"},
	})
	require.NoError(t, err)

	rec, _ := do(t, h, http.MethodDelete, "/groups/"+g.ID.String(), "", map[string]string{middleware.MemberHeader: admin.ID.String()})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, h, http.MethodGet, "/groups/"+g.ID.String()+"/admin", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_RemoveMemberWithActivity(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)
	h := newTestRouter(svc)
	g, _ := createTrip(t, svc)

	added, err := svc.AddMembers(context.Background(), g.ID, &AddMembersRequest{Members: []MemberInput{{Name: "Ravi", Email: "ravi@example.com"}}})
	require.NoError(t, err)
	store.active[added[0].ID] = true

	rec, env := do(t, h, http.MethodDelete, "/groups/"+g.ID.String()+"/members/"+added[0].ID.String(), "", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "CONFLICT", env.Error.Code)
}
