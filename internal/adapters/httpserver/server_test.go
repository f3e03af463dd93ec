package httpserver_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alxcrm/crmd/internal/adapters/httpserver"
	"github.com/alxcrm/crmd/internal/adapters/repo/memstore"
	"github.com/alxcrm/crmd/internal/usecase"
)

func newTestServer() http.Handler {
	s := memstore.New()
	customers, products, orders := s.Customers(), s.Products(), s.Orders()
	return httpserver.New(
		&usecase.CustomerUC{Customers: customers},
		&usecase.ProductUC{Products: products},
		&usecase.OrderUC{Orders: orders, Customers: customers, Products: products},
		&usecase.StatsUC{Customers: customers, Orders: orders},
	)
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	out := map[string]any{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestCustomerEndpoints(t *testing.T) {
	h := newTestServer()

	rec, out := doJSON(t, h, "POST", "/api/customers",
		`{"name":"Alice","email":"alice@example.com","phone":"+1234567890"}`)
	require.Equal(t, 201, rec.Code)
	assert.Equal(t, true, out["success"])

	rec, out = doJSON(t, h, "POST", "/api/customers",
		`{"name":"Impostor","email":"ALICE@example.com"}`)
	require.Equal(t, 409, rec.Code)
	assert.Equal(t, false, out["success"])

	rec, out = doJSON(t, h, "POST", "/api/customers",
		`{"name":"Bob","email":"bob@example.com","phone":"555"}`)
	require.Equal(t, 400, rec.Code)
	errs, ok := out["errors"].([]any)
	require.True(t, ok)
	assert.Contains(t, errs, "invalid phone format")

	rec, out = doJSON(t, h, "GET", "/api/customers?nameIcontains=ali&orderBy=name", "")
	require.Equal(t, 200, rec.Code)
	assert.EqualValues(t, 1, out["total"])

	rec, _ = doJSON(t, h, "GET", "/api/customers?orderBy=banana", "")
	require.Equal(t, 400, rec.Code)
}

func TestBulkCustomerEndpoint(t *testing.T) {
	h := newTestServer()
	rec, out := doJSON(t, h, "POST", "/api/customers/bulk",
		`[{"name":"Alice","email":"alice@example.com"},{"name":"","email":""}]`)
	require.Equal(t, 200, rec.Code)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "Created 1 customers, 1 errors", out["message"])
}

func TestOrderFlow(t *testing.T) {
	h := newTestServer()

	_, out := doJSON(t, h, "POST", "/api/customers", `{"name":"Alice","email":"alice@example.com"}`)
	customerID := out["customer"].(map[string]any)["id"].(string)

	_, out = doJSON(t, h, "POST", "/api/products", `{"name":"Laptop","price":999.99,"stock":5}`)
	laptopID := out["product"].(map[string]any)["id"].(string)
	_, out = doJSON(t, h, "POST", "/api/products", `{"name":"Mouse","price":25.50}`)
	mouseID := out["product"].(map[string]any)["id"].(string)

	rec, out := doJSON(t, h, "POST", "/api/orders",
		`{"customerId":"`+customerID+`","productIds":["`+laptopID+`","`+mouseID+`"]}`)
	require.Equal(t, 201, rec.Code)
	order := out["order"].(map[string]any)
	assert.Equal(t, "1025.49", order["totalAmount"])

	rec, _ = doJSON(t, h, "POST", "/api/orders",
		`{"customerId":"`+uuid.NewString()+`","productIds":["`+laptopID+`"]}`)
	require.Equal(t, 404, rec.Code)

	rec, out = doJSON(t, h, "GET", "/api/stats", "")
	require.Equal(t, 200, rec.Code)
	assert.EqualValues(t, 1, out["ordersCount"])
	assert.Equal(t, "1025.49", out["ordersRevenue"])

	rec, out = doJSON(t, h, "GET", "/api/orders?customerName=alice", "")
	require.Equal(t, 200, rec.Code)
	assert.EqualValues(t, 1, out["total"])
}

func TestRestockEndpoint(t *testing.T) {
	h := newTestServer()
	_, _ = doJSON(t, h, "POST", "/api/products", `{"name":"Laptop","price":999.99,"stock":5}`)
	_, _ = doJSON(t, h, "POST", "/api/products", `{"name":"Mouse","price":25.50,"stock":10}`)

	rec, out := doJSON(t, h, "POST", "/api/products/restock", `{"incrementBy":10,"threshold":10}`)
	require.Equal(t, 200, rec.Code)
	assert.EqualValues(t, 1, out["updatedCount"])
	assert.Equal(t, "Updated 1 low-stock products", out["message"])
}
