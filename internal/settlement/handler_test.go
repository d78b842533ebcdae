package settlement

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
	r.Mount("/settlements", NewHandler(svc).Routes())
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

func TestHandler_PaymentsAndSettlement(t *testing.T) {
	f := newFixture()
	h := newTestRouter(f.svc)
	base := "/settlements/expense/" + f.expenseID.String()

	rec, _ := do(t, h, http.MethodPost, base+"/payments",
		fmt.Sprintf(`{"member_id":%q,"amount":150,"method":"UPI"}`, f.priya.ID), nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, env := do(t, h, http.MethodGet, base, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var view SettlementResponse
	require.NoError(t, json.Unmarshal(env.Data, &view))
	require.Len(t, view.Results, 3)
	assert.Equal(t, "Dinner", view.Title)
	assert.Equal(t, StatusReceives, view.Results[0].Status)
	assert.Equal(t, 50.0, view.Results[0].Pending)
	assert.Equal(t, "Mail reminder to Ravi: You still need to pay ₹100.00 for your share", view.Results[1].Message)
	assert.Equal(t, 150.0, view.Summary.Remaining)

	rec, env = do(t, h, http.MethodGet, base+"/payments", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var payments []PaymentResponse
	require.NoError(t, json.Unmarshal(env.Data, &payments))
	require.Len(t, payments, 1)
	assert.Equal(t, PaymentMethodUPI, payments[0].Method)

	rec, _ = do(t, h, http.MethodDelete, "/settlements/payments/"+payments[0].ID.String(), "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_Calculate(t *testing.T) {
	h := newTestRouter(NewService(nil, nil, nil, nil, Messenger{}, nil))

	rec, env := do(t, h, http.MethodPost, "/settlements/calculate",
		`{"total":100,"contributions":[{"name":"A","amount":0},{"name":"B","amount":0},{"name":"C","amount":0}]}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var view SettlementResponse
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, 33.33, view.Summary.Share)
	assert.Equal(t, 33.33, view.Results[2].Pending)
	assert.Equal(t, "Mail reminder to C: You still need to pay ₹33.33 for your share", view.Results[2].Message)

	rec, env = do(t, h, http.MethodPost, "/settlements/calculate", `{"total":100,"contributions":[]}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Message, "participants: 0")
}

func TestHandler_Reminders(t *testing.T) {
	f := newFixture()
	h := newTestRouter(f.svc)
	path := "/settlements/expense/" + f.expenseID.String() + "/reminders"

	rec, _ := do(t, h, http.MethodPost, path, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = do(t, h, http.MethodPost, path, "", map[string]string{middleware.MemberHeader: f.ravi.ID.String()})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env := do(t, h, http.MethodPost, path, "", map[string]string{middleware.MemberHeader: f.priya.ID.String()})
	require.Equal(t, http.StatusOK, rec.Code)
	var reminders []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &reminders))
	assert.Len(t, reminders, 3)
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
	}{
		{"bad expense id", http.MethodGet, "/settlements/expense/xyz", "", http.StatusBadRequest},
		{"unknown expense", http.MethodGet, "/settlements/expense/" + uuid.NewString(), "", http.StatusNotFound},
		{"bad payment body", http.MethodPost, "/settlements/expense/" + f.expenseID.String() + "/payments", "{", http.StatusBadRequest},
		{
			"outsider payment", http.MethodPost, "/settlements/expense/" + f.expenseID.String() + "/payments",
			fmt.Sprintf(`{"member_id":%q,"amount":5}`, f.outsider.ID), http.StatusBadRequest,
		},
		{"missing payment", http.MethodDelete, "/settlements/payments/" + uuid.NewString(), "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, h, tt.method, tt.path, tt.body, nil)
			assert.Equal(t, tt.status, rec.Code)
			assert.NotNil(t, env.Error)
		})
	}
}
