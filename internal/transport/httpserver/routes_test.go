package httpserver_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsboard/internal/config"
	analyticsdomain "opsboard/internal/domain/analytics"
	seminarsdomain "opsboard/internal/domain/seminars"
	transactionsdomain "opsboard/internal/domain/transactions"
	unitsdomain "opsboard/internal/domain/units"
	userdomain "opsboard/internal/domain/user"
	"opsboard/internal/repository/inmemory"
	"opsboard/internal/transport/httpserver"
	"opsboard/internal/transport/httpserver/handler"
	"opsboard/pkg/logger"
)

const testSecret = "routes-secret"

type apiClient struct {
	t      *testing.T
	server *httptest.Server
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()

	store := inmemory.NewStore()
	analyticsService := analyticsdomain.NewService(store.Analytics())
	converter := transactionsdomain.NewConverter(map[string]decimal.Decimal{
		"USD": decimal.RequireFromString("3.6725"),
	})
	units := unitsdomain.NewService(store.Units(), nil)
	profiles := userdomain.NewService(store.Profiles())
	handlers := handler.New(
		units,
		transactionsdomain.NewService(store.Transactions(), converter, analyticsService.Invalidate),
		seminarsdomain.NewService(store.Seminars(), analyticsService.Invalidate),
		analyticsService,
		profiles,
		logger.Discard(),
	)

	cfg := config.Config{
		CORSOrigins: []string{"*"},
		Auth:        config.AuthConfig{JWTSecret: testSecret},
	}
	server := httptest.NewServer(httpserver.NewRouter(cfg, handlers, units, profiles, logger.Discard()))
	t.Cleanup(server.Close)

	return &apiClient{t: t, server: server}
}

func token(t *testing.T, userID string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   userID,
		"email": userID + "@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (c *apiClient) do(method, path, tok string, payload interface{}) (int, []byte) {
	c.t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(c.t, err)
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.server.URL+path, body)
	require.NoError(c.t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.server.Client().Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp.StatusCode, data
}

func (c *apiClient) decode(data []byte, dst interface{}) {
	c.t.Helper()
	require.NoError(c.t, json.Unmarshal(data, dst), string(data))
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *apiClient) errorCode(data []byte) string {
	c.t.Helper()
	var envelope errorEnvelope
	c.decode(data, &envelope)
	return envelope.Error.Code
}

type unitBody struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Role string `json:"role"`
}

func (c *apiClient) createUnit(tok, name string) unitBody {
	c.t.Helper()
	status, data := c.do(http.MethodPost, "/api/units", tok, map[string]string{"name": name})
	require.Equal(c.t, http.StatusCreated, status, string(data))
	var unit unitBody
	c.decode(data, &unit)
	return unit
}

func TestHealthAndAuth(t *testing.T) {
	api := newAPI(t)

	status, _ := api.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, status)

	status, data := api.do(http.MethodGet, "/api/units", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "invalid_token", api.errorCode(data))

	status, data = api.do(http.MethodGet, "/api/auth/me", token(t, "user-a"), nil)
	require.Equal(t, http.StatusOK, status)
	var me struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	api.decode(data, &me)
	assert.Equal(t, "user-a", me.ID)
	assert.Equal(t, "user-a@example.com", me.Email)
}

func TestUnitMembershipGuardsUnitRoutes(t *testing.T) {
	api := newAPI(t)
	owner := token(t, "owner")
	guest := token(t, "guest")

	unit := api.createUnit(owner, "Dubai Office")
	assert.Equal(t, unitsdomain.RoleOwner, unit.Role)
	assert.Len(t, unit.Code, 6)

	status, data := api.do(http.MethodGet, "/api/units/"+unit.ID+"/transactions", guest, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "unit_not_found", api.errorCode(data))

	status, _ = api.do(http.MethodGet, "/api/units/not-a-uuid/transactions", owner, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, data = api.do(http.MethodPost, "/api/units/join", guest, map[string]string{"code": "zzzzzz"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "unit_code_not_found", api.errorCode(data))

	status, _ = api.do(http.MethodPost, "/api/units/join", guest, map[string]string{"code": unit.Code})
	require.Equal(t, http.StatusOK, status)

	status, data = api.do(http.MethodPost, "/api/units/join", guest, map[string]string{"code": unit.Code})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "already_member", api.errorCode(data))

	status, data = api.do(http.MethodGet, "/api/units/"+unit.ID+"/members", guest, nil)
	require.Equal(t, http.StatusOK, status)
	var members struct {
		Items []struct {
			UserID string  `json:"user_id"`
			Role   string  `json:"role"`
			Email  *string `json:"email"`
		} `json:"items"`
	}
	api.decode(data, &members)
	require.Len(t, members.Items, 2)
	for _, item := range members.Items {
		require.NotNil(t, item.Email, item.UserID)
		assert.Equal(t, item.UserID+"@example.com", *item.Email)
	}

	status, data = api.do(http.MethodGet, "/api/units", guest, nil)
	require.Equal(t, http.StatusOK, status)
	var list struct {
		Items []unitBody `json:"items"`
	}
	api.decode(data, &list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, unit.ID, list.Items[0].ID)
	assert.Equal(t, unitsdomain.RoleMember, list.Items[0].Role)
}

func TestTransactionsCRUD(t *testing.T) {
	api := newAPI(t)
	owner := token(t, "owner")
	unit := api.createUnit(owner, "Ops")
	base := "/api/units/" + unit.ID

	status, data := api.do(http.MethodPost, base+"/transactions", owner, map[string]interface{}{
		"date":     "2026-03-04",
		"type":     "EXPENSE",
		"amount":   10,
		"currency": "usd",
		"category": "Software",
	})
	require.Equal(t, http.StatusCreated, status, string(data))
	var created struct {
		ID        string  `json:"id"`
		Amount    float64 `json:"amount"`
		AmountAED float64 `json:"amount_aed"`
		Currency  string  `json:"currency"`
		SeminarID *string `json:"seminar_id"`
	}
	api.decode(data, &created)
	assert.Equal(t, "USD", created.Currency)
	assert.InDelta(t, 36.73, created.AmountAED, 0.0001)
	assert.Nil(t, created.SeminarID)

	status, data = api.do(http.MethodPut, base+"/transactions/"+created.ID, owner, map[string]interface{}{
		"date":     "2026-03-05",
		"type":     "EXPENSE",
		"amount":   12.5,
		"category": "Software",
	})
	require.Equal(t, http.StatusOK, status, string(data))
	api.decode(data, &created)
	assert.InDelta(t, 12.5, created.AmountAED, 0.0001)

	status, data = api.do(http.MethodGet, base+"/transactions?type=expense&from=2026-03-01&to=2026-03-31", owner, nil)
	require.Equal(t, http.StatusOK, status)
	var list struct {
		Items []json.RawMessage `json:"items"`
		Total int               `json:"total"`
	}
	api.decode(data, &list)
	assert.Equal(t, 1, list.Total)
	assert.Len(t, list.Items, 1)

	status, _ = api.do(http.MethodDelete, base+"/transactions/"+created.ID, owner, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, data = api.do(http.MethodGet, base+"/transactions/"+created.ID, owner, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "transaction_not_found", api.errorCode(data))
}

func TestTransactionValidationErrors(t *testing.T) {
	api := newAPI(t)
	owner := token(t, "owner")
	unit := api.createUnit(owner, "Ops")
	path := "/api/units/" + unit.ID + "/transactions"

	tests := []struct {
		name    string
		payload map[string]interface{}
		code    string
	}{
		{"negative amount", map[string]interface{}{"date": "2026-01-01", "type": "INCOME", "amount": -5}, "invalid_request"},
		{"bad type", map[string]interface{}{"date": "2026-01-01", "type": "TRANSFER", "amount": 5}, "invalid_request"},
		{"bad date", map[string]interface{}{"date": "01/02/2026", "type": "INCOME", "amount": 5}, "invalid_request"},
		{"date out of range", map[string]interface{}{"date": "0001-01-02", "type": "INCOME", "amount": 5}, "invalid_request"},
		{"amount below a fil", map[string]interface{}{"date": "2026-01-01", "type": "INCOME", "amount": 0.004}, "invalid_request"},
		{"unsupported currency", map[string]interface{}{"date": "2026-01-01", "type": "INCOME", "amount": 5, "currency": "JPY"}, "unsupported_currency"},
		{"unknown seminar", map[string]interface{}{"date": "2026-01-01", "type": "INCOME", "amount": 5, "seminar_id": "6a8f4f1e-3b1c-4a59-9f43-1c0e0a1b2c3d"}, "seminar_not_found"},
		{"unknown field", map[string]interface{}{"date": "2026-01-01", "type": "INCOME", "amount": 5, "tags": []string{"x"}}, "invalid_request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, data := api.do(http.MethodPost, path, owner, tt.payload)
			assert.Equal(t, http.StatusBadRequest, status, string(data))
			assert.Equal(t, tt.code, api.errorCode(data))
		})
	}
}

func TestSeminarNameConflict(t *testing.T) {
	api := newAPI(t)
	owner := token(t, "owner")
	unit := api.createUnit(owner, "Ops")
	path := "/api/units/" + unit.ID + "/seminars"

	status, data := api.do(http.MethodPost, path, owner, map[string]interface{}{"name": "Leadership 101", "starts_on": "2026-04-01"})
	require.Equal(t, http.StatusCreated, status, string(data))

	status, data = api.do(http.MethodPost, path, owner, map[string]interface{}{"name": "leadership 101"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "seminar_name_taken", api.errorCode(data))

	status, data = api.do(http.MethodPost, path, owner, map[string]interface{}{"name": "   "})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_request", api.errorCode(data))
}

func TestDashboardReflectsWrites(t *testing.T) {
	api := newAPI(t)
	owner := token(t, "owner")
	unit := api.createUnit(owner, "Ops")
	base := "/api/units/" + unit.ID
	today := time.Now().Format("2006-01-02")

	status, data := api.do(http.MethodPost, base+"/seminars", owner, map[string]interface{}{"name": "Spring Summit"})
	require.Equal(t, http.StatusCreated, status, string(data))
	var seminar struct {
		ID string `json:"id"`
	}
	api.decode(data, &seminar)

	status, data = api.do(http.MethodGet, base+"/dashboard", owner, nil)
	require.Equal(t, http.StatusOK, status, string(data))

	for _, payload := range []map[string]interface{}{
		{"date": today, "type": "INCOME", "amount": 100, "category": "Tickets", "seminar_id": seminar.ID},
		{"date": today, "type": "EXPENSE", "amount": 40, "category": "Venue", "seminar_id": seminar.ID},
		{"date": today, "type": "EXPENSE", "amount": 10, "category": "Rent"},
	} {
		status, data = api.do(http.MethodPost, base+"/transactions", owner, payload)
		require.Equal(t, http.StatusCreated, status, string(data))
	}

	status, data = api.do(http.MethodGet, base+"/dashboard?period=all", owner, nil)
	require.Equal(t, http.StatusOK, status, string(data))

	type amount struct {
		Category string  `json:"category"`
		Amount   float64 `json:"amount"`
	}
	var dashboard struct {
		Period      string `json:"period"`
		Granularity string `json:"granularity"`
		Summary     struct {
			Revenue  float64 `json:"revenue"`
			Expenses float64 `json:"expenses"`
			Profit   float64 `json:"profit"`
			Count    int     `json:"count"`
		} `json:"summary"`
		ExpenseBreakdown struct {
			ProjectLinked []amount `json:"project_linked"`
			Operational   []amount `json:"operational"`
		} `json:"expense_breakdown"`
		RevenueByCategory []amount `json:"revenue_by_category"`
		Series            []struct {
			CumulativeRevenue  float64 `json:"cumulative_revenue"`
			CumulativeExpenses float64 `json:"cumulative_expenses"`
			Profit             float64 `json:"profit"`
		} `json:"series"`
		SeminarProfitability []struct {
			SeminarID   string  `json:"seminar_id"`
			SeminarName string  `json:"seminar_name"`
			Profit      float64 `json:"profit"`
		} `json:"seminar_profitability"`
	}
	api.decode(data, &dashboard)

	assert.Equal(t, "all", dashboard.Period)
	assert.Equal(t, "monthly", dashboard.Granularity)
	assert.Equal(t, 3, dashboard.Summary.Count)
	assert.InDelta(t, 100, dashboard.Summary.Revenue, 0.0001)
	assert.InDelta(t, 50, dashboard.Summary.Expenses, 0.0001)
	assert.InDelta(t, 50, dashboard.Summary.Profit, 0.0001)
	assert.Equal(t, []amount{{"Venue", 40}}, dashboard.ExpenseBreakdown.ProjectLinked)
	assert.Equal(t, []amount{{"Rent", 10}}, dashboard.ExpenseBreakdown.Operational)
	assert.Equal(t, []amount{{"Tickets", 100}}, dashboard.RevenueByCategory)

	require.Len(t, dashboard.Series, 1)
	assert.InDelta(t, 100, dashboard.Series[0].CumulativeRevenue, 0.0001)
	assert.InDelta(t, 50, dashboard.Series[0].CumulativeExpenses, 0.0001)

	require.Len(t, dashboard.SeminarProfitability, 1)
	assert.Equal(t, seminar.ID, dashboard.SeminarProfitability[0].SeminarID)
	assert.Equal(t, "Spring Summit", dashboard.SeminarProfitability[0].SeminarName)
	assert.InDelta(t, 60, dashboard.SeminarProfitability[0].Profit, 0.0001)
}

func TestAnalyticsQueryValidation(t *testing.T) {
	api := newAPI(t)
	owner := token(t, "owner")
	unit := api.createUnit(owner, "Ops")
	base := "/api/units/" + unit.ID + "/analytics"

	status, data := api.do(http.MethodGet, base+"/summary?period=quarter", owner, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_request", api.errorCode(data))

	status, _ = api.do(http.MethodGet, base+"/timeseries?to=2026-01-31", owner, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = api.do(http.MethodGet, base+"/timeseries?granularity=hourly&from=2026-01-01&to=2026-01-31", owner, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, data = api.do(http.MethodGet, base+"/timeseries?from=0001-01-01&to=9999-12-31&granularity=daily", owner, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_request", api.errorCode(data))

	status, data = api.do(http.MethodGet, base+"/timeseries?from=2026-01-01&to=2026-01-31", owner, nil)
	require.Equal(t, http.StatusOK, status, string(data))
	var series struct {
		Granularity string            `json:"granularity"`
		Items       []json.RawMessage `json:"items"`
	}
	api.decode(data, &series)
	assert.Equal(t, "daily", series.Granularity)
	assert.Len(t, series.Items, 31)

	for _, path := range []string{"/expense-breakdown", "/revenue-categories", "/cumulative", "/seminar-profitability"} {
		status, data = api.do(http.MethodGet, base+path+"?period=mtd", owner, nil)
		assert.Equal(t, http.StatusOK, status, path+": "+string(data))
	}
}
