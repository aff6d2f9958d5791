package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/configurator-backend/internal/customers"
	"github.com/angelmondragon/configurator-backend/internal/orders"
	"github.com/angelmondragon/configurator-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/configurator-backend/pkg/errors"
)

type pingerFunc func(context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

type verifiedOnly struct {
	verified bool
	calls    int
}

func (s *verifiedOnly) Resolve(context.Context, customers.ResolveInput) (*customers.CustomerDTO, error) {
	return nil, errors.New("not used")
}

func (s *verifiedOnly) Get(context.Context, uuid.UUID) (*customers.CustomerDTO, error) {
	return nil, errors.New("not used")
}

func (s *verifiedOnly) IssueVerification(context.Context, uuid.UUID) (*customers.Issued, error) {
	return nil, errors.New("not used")
}

func (s *verifiedOnly) Verify(context.Context, uuid.UUID, string) error {
	return errors.New("not used")
}

func (s *verifiedOnly) IsVerified(context.Context, uuid.UUID) (bool, error) {
	s.calls++
	return s.verified, nil
}

type recordingOrders struct {
	params orders.ListParams
}

func (r *recordingOrders) Submit(context.Context, orders.SubmitInput) (uuid.UUID, error) {
	return uuid.Nil, errors.New("not used")
}

func (r *recordingOrders) Get(_ context.Context, id uuid.UUID) (*orders.OrderDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

func (r *recordingOrders) ListForCustomer(_ context.Context, params orders.ListParams) (*orders.ListResult, error) {
	r.params = params
	return &orders.ListResult{Items: []orders.OrderDTO{}, Cursor: "next"}, nil
}

func withURLParams(req *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func dataOf(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, dest))
}

func TestLoanQuoteDefaultsRateToOfferedTerm(t *testing.T) {
	handler := LoanQuote(config.LeasingConfig{DefaultTermMonths: 36}, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/loan/quote?principal=52950", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp loanQuoteResponse
	dataOf(t, rec, &resp)
	assert.Equal(t, 36, resp.Months)
	assert.Equal(t, 3.2, resp.RatePercent)
	assert.True(t, resp.MonthlyPayment.Equal(decimal.RequireFromString("1544.52")))
}

func TestLeasingQuoteRejectsMalformedInput(t *testing.T) {
	handler := LeasingQuote(config.LeasingConfig{DefaultTermMonths: 36}, nil)
	for _, target := range []string{
		"/leasing/quote?base_price=abc",
		"/leasing/quote?months=x&base_price=100",
		"/leasing/quote?months=5000&base_price=100",
		"/leasing/quote",
	} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestLeasingQuoteClampsNegativePrice(t *testing.T) {
	handler := LeasingQuote(config.LeasingConfig{DefaultTermMonths: 36}, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leasing/quote?base_price=-10", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		MonthlyPayment string `json:"monthly_payment"`
		Clamped        bool   `json:"clamped_invalid_input"`
	}
	dataOf(t, rec, &resp)
	assert.Equal(t, "0.00", resp.MonthlyPayment)
	assert.True(t, resp.Clamped)
}

func TestHealthReadySkipsNilPingers(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}
	pinged := 0
	handler := HealthReady(cfg, map[string]Pinger{
		"db":    pingerFunc(func(context.Context) error { pinged++; return nil }),
		"redis": nil,
	}, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, pinged)
	assert.Equal(t, "dev", rec.Header().Get("X-Configurator-Env"))
}

func TestVerificationStatusWithoutPollerAnswersImmediately(t *testing.T) {
	svc := &verifiedOnly{}
	handler := CustomerVerificationStatus(svc, nil, nil)
	id := uuid.New()

	req := withURLParams(httptest.NewRequest(http.MethodGet, "/verification?wait=30s", nil), "customerId", id.String())
	rec := httptest.NewRecorder()
	start := time.Now()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 1, svc.calls)

	var status verificationStatus
	dataOf(t, rec, &status)
	assert.Equal(t, id, status.CustomerID)
	assert.False(t, status.Verified)
}

func TestVerificationStatusRejectsMalformedWait(t *testing.T) {
	handler := CustomerVerificationStatus(&verifiedOnly{}, nil, nil)
	req := withURLParams(httptest.NewRequest(http.MethodGet, "/verification?wait=soon", nil), "customerId", uuid.NewString())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCustomerOrdersPassesPaging(t *testing.T) {
	svc := &recordingOrders{}
	id := uuid.New()
	req := withURLParams(httptest.NewRequest(http.MethodGet, "/orders?limit=5&cursor=%20abc%20", nil), "customerId", id.String())
	rec := httptest.NewRecorder()
	CustomerOrders(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, orders.ListParams{CustomerID: id, Limit: 5, Cursor: "abc"}, svc.params)

	req = withURLParams(httptest.NewRequest(http.MethodGet, "/orders?limit=500", nil), "customerId", id.String())
	rec = httptest.NewRecorder()
	CustomerOrders(svc, nil).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderGetNotFound(t *testing.T) {
	req := withURLParams(httptest.NewRequest(http.MethodGet, "/orders/x", nil), "orderId", uuid.NewString())
	rec := httptest.NewRecorder()
	OrderGet(&recordingOrders{}, nil).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlersWithoutServicesReportInternalError(t *testing.T) {
	handlers := map[string]http.HandlerFunc{
		"catalog":  CatalogModels(nil, nil),
		"drafts":   DraftList(nil, nil),
		"orders":   OrderGet(nil, nil),
		"sessions": ConfigurationGet(nil, nil),
		"customer": CustomerResolve(nil, nil),
	}
	for name, handler := range handlers {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code, name)
	}
}
