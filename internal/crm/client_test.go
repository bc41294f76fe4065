package crm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdymaleeq925/tablecrm/pkg/metrics"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second)
}

func TestContragentsSendsTokenQuery(t *testing.T) {
	var gotPath, gotToken string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.URL.Query().Get("token")
		_, _ = w.Write([]byte(`{"count":2,"result":[{"id":1,"name":"Aliya Bekova","phone":"+77010000001"},{"id":2,"name":"Marat Akhmetov","phone":"+77010000002"}]}`))
	})

	list, err := c.Contragents(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/contragents/", gotPath)
	assert.Equal(t, "abc", gotToken)
	require.NotNil(t, list.Count)
	assert.Equal(t, 2, *list.Count)
	require.Len(t, list.Result, 2)
	assert.Equal(t, "Aliya Bekova", list.Result[0].Name)
}

func TestSearchContragentsSendsPhone(t *testing.T) {
	var gotPhone string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPhone = r.URL.Query().Get("phone")
		_, _ = w.Write([]byte(`{"count":1,"result":[{"id":2,"name":"Marat Akhmetov","phone":"+77010000002"}]}`))
	})

	list, err := c.SearchContragents(context.Background(), "abc", "+77010000002")
	require.NoError(t, err)
	assert.Equal(t, "+77010000002", gotPhone)
	require.Len(t, list.Result, 1)
}

func TestDetailOnSuccessStatusIsAnError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"detail":"Invalid token"}`))
	})

	_, err := c.Contragents(context.Background(), "bad")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid token", apiErr.Detail)
	assert.Equal(t, "Invalid token", apiErr.Error())
}

func TestNon2xxIsAnError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"result":[]}`))
	})

	_, err := c.Payboxes(context.Background(), "abc")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "payboxes", apiErr.Op)
}

func TestMalformedBodyIsAnError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	})

	_, err := c.Prices(context.Background(), "abc")
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr), "decode failures are not APIErrors")
}

func TestCatalogEndpoints(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/organizations/":
			_, _ = w.Write([]byte(`{"count":1,"result":[{"id":20,"short_name":"Demo LLC"}]}`))
		case "/api/v1/warehouses/":
			_, _ = w.Write([]byte(`{"count":1,"result":[{"id":30,"name":"Main warehouse"}]}`))
		case "/api/v1/price_types/":
			_, _ = w.Write([]byte(`{"count":1,"result":[{"id":40,"name":"Retail"}]}`))
		case "/api/v1/prices/":
			_, _ = w.Write([]byte(`{"count":1,"result":[{"id":100,"nomenclature_id":50,"nomenclature_name":"Widget","price":100}]}`))
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	orgs, err := c.Organizations(ctx, "abc")
	require.NoError(t, err)
	require.Len(t, orgs, 1)
	assert.Equal(t, "Demo LLC", orgs[0].ShortName)

	whs, err := c.Warehouses(ctx, "abc")
	require.NoError(t, err)
	require.Len(t, whs, 1)

	pts, err := c.PriceTypes(ctx, "abc")
	require.NoError(t, err)
	require.Len(t, pts, 1)

	prices, err := c.Prices(ctx, "abc")
	require.NoError(t, err)
	require.Len(t, prices, 1)
	assert.Equal(t, 50, prices[0].NomenclatureID)
	assert.Equal(t, "Widget", prices[0].NomenclatureName)
}

func TestCreateSalePostsSingleElementBatch(t *testing.T) {
	var gotMethod, gotToken, gotContentType string
	var gotBody []map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotToken = r.URL.Query().Get("token")
		gotContentType = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(data, &gotBody))
		_, _ = w.Write([]byte(`{"result":[{"id":1001,"number":"A-1"}]}`))
	})

	doc := SaleDoc{
		ClientPhone:  "+77010000001",
		AccountID:    10,
		Organization: 20,
		Warehouse:    30,
		PriceType:    40,
		Goods:        []SaleGood{{Nomenclature: 50, Quantity: 2, Price: 100}},
		Process:      true,
	}
	res, err := c.CreateSale(context.Background(), "abc", doc)
	require.NoError(t, err)
	require.Len(t, res.Result, 1)
	assert.Equal(t, 1001, res.Result[0].ID)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "abc", gotToken)
	assert.Equal(t, "application/json", gotContentType)
	require.Len(t, gotBody, 1, "payload must be a single-element batch")
	assert.Equal(t, "+77010000001", gotBody[0]["client_phone"])
	assert.Equal(t, float64(10), gotBody[0]["account_id"])
	assert.Equal(t, float64(20), gotBody[0]["organization"])
	assert.Equal(t, true, gotBody[0]["process"])
	goods := gotBody[0]["goods"].([]any)
	require.Len(t, goods, 1)
	line := goods[0].(map[string]any)
	assert.Equal(t, float64(50), line["nomenclature"])
	assert.Equal(t, float64(2), line["quantity"])
	assert.Equal(t, float64(100), line["price"])
}

func TestCreateSaleRejection(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":"warehouse is required"}`))
	})

	_, err := c.CreateSale(context.Background(), "abc", SaleDoc{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "warehouse is required", apiErr.Detail)
}

func TestClientRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewClientMetrics(reg)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"count":0,"result":[]}`))
	}))
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, 5*time.Second, WithMetrics(m))

	_, err := c.Contragents(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Requests.WithLabelValues("contragents", "200")))
}
