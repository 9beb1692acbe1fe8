package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfware/stockwise"
	"github.com/shelfware/stockwise/infrastructure/api"
	"github.com/shelfware/stockwise/infrastructure/api/middleware"
	"github.com/shelfware/stockwise/infrastructure/api/v1/dto"
)

const testAPIKey = "test-key"

type fixedEmbedder struct{}

func (fixedEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))
	for i := range texts {
		vectors[i] = []float64{1, 0}
	}
	return vectors, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	dir := t.TempDir()
	client, err := stockwise.New(
		stockwise.WithDataDir(dir),
		stockwise.WithSQLite(filepath.Join(dir, "test.db")),
		stockwise.WithEmbedder(fixedEmbedder{}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, client.Close()) })

	server := httptest.NewServer(api.NewAPIServer(client, []string{testAPIKey}).Handler())
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, method, url string, body any, apiKey string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set(middleware.APIKeyHeader, apiKey)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func createProduct(t *testing.T, server *httptest.Server, name string, price float64, quantity int) dto.Product {
	t.Helper()

	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/products", dto.ProductRequest{
		Name:     name,
		Brand:    "Acme",
		Category: "Snacks",
		Price:    price,
		Quantity: quantity,
	}, testAPIKey)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeBody[dto.Product](t, resp)
}

func TestAPIServer_Healthz(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPIServer_ProductCRUD(t *testing.T) {
	server := newTestServer(t)

	created := createProduct(t, server, "Trail Mix", 4.99, 50)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Trail Mix", created.Name)

	resp := doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/v1/products/%d", server.URL, created.ID), nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[dto.Product](t, resp)
	assert.Equal(t, created, got)

	resp = doJSON(t, http.MethodGet, server.URL+"/api/v1/products/9999", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/v1/products/%d", server.URL, created.ID), nil, testAPIKey)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPIServer_WriteProtection(t *testing.T) {
	server := newTestServer(t)

	body := dto.ProductRequest{Name: "Protected", Brand: "Acme", Category: "Snacks", Price: 1, Quantity: 1}

	// Mutations without a key are rejected.
	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/products", body, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, server.URL+"/api/v1/products", body, "wrong-key")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Reads stay open.
	resp = doJSON(t, http.MethodGet, server.URL+"/api/v1/products", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPIServer_SaleStockCheck(t *testing.T) {
	server := newTestServer(t)
	product := createProduct(t, server, "Trail Mix", 4.99, 10)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/sales", dto.SaleRequest{
		ProductID:    product.ID,
		QuantitySold: 4,
		SaleDate:     "2026-03-04",
		TotalPrice:   19.96,
	}, testAPIKey)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, server.URL+"/api/v1/sales", dto.SaleRequest{
		ProductID:    product.ID,
		QuantitySold: 100,
		SaleDate:     "2026-03-05",
		TotalPrice:   499.0,
	}, testAPIKey)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Not enough stock", decodeBody[map[string]string](t, resp)["detail"])

	// The first sale decremented stock.
	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/v1/products/%d", server.URL, product.ID), nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 6, decodeBody[dto.Product](t, resp).Quantity)
}

func TestAPIServer_Ask(t *testing.T) {
	server := newTestServer(t)
	createProduct(t, server, "Trail Mix", 4.99, 50)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/ask", dto.AskRequest{
		Question: "How many products do we have?",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	answer := decodeBody[dto.AskResponse](t, resp)
	assert.Equal(t, "The total number of products in the database is 1.", answer.Answer)
	assert.Empty(t, answer.Sources)
}

func TestAPIServer_AskEmptyQuestion(t *testing.T) {
	server := newTestServer(t)

	// An empty question is accepted and runs through retrieval; with
	// nothing indexed it resolves to the no-match answer.
	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/ask", dto.AskRequest{}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	answer := decodeBody[dto.AskResponse](t, resp)
	assert.Contains(t, answer.Answer, "couldn't find relevant information")
	assert.Empty(t, answer.Sources)
}

func TestAPIServer_AskExplicitZeroK(t *testing.T) {
	server := newTestServer(t)
	createProduct(t, server, "Trail Mix", 4.99, 50)

	// An explicit zero is floored to one retrieved passage, not treated
	// as an absent field.
	k := 0
	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/ask", dto.AskRequest{
		Question: "Tell me about trail mix",
		K:        &k,
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	answer := decodeBody[dto.AskResponse](t, resp)
	assert.Len(t, answer.Sources, 1)
}

func TestAPIServer_BuildIndex(t *testing.T) {
	server := newTestServer(t)
	createProduct(t, server, "Trail Mix", 4.99, 50)
	createProduct(t, server, "Granola Bars", 3.49, 80)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/ask/build-index", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decodeBody[dto.BuildIndexResponse](t, resp)
	assert.Equal(t, 2, out.Documents)
	assert.Equal(t, "Indexed 2 documents.", out.Detail)
}

func TestAPIServer_DashboardSummary(t *testing.T) {
	server := newTestServer(t)
	createProduct(t, server, "Trail Mix", 4.99, 50)

	resp := doJSON(t, http.MethodGet, server.URL+"/api/v1/dashboard/summary", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	summary := decodeBody[map[string]any](t, resp)
	assert.EqualValues(t, 1, summary["total_products"])
	assert.EqualValues(t, 50, summary["total_stock"])
}
