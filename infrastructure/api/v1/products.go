package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shelfware/stockwise"
	"github.com/shelfware/stockwise/application/service"
	"github.com/shelfware/stockwise/domain/catalog"
	"github.com/shelfware/stockwise/infrastructure/api/middleware"
	"github.com/shelfware/stockwise/infrastructure/api/v1/dto"
)

const dateLayout = "2006-01-02"

// ProductsRouter handles the product catalog endpoints.
type ProductsRouter struct {
	client *stockwise.Client
	logger *slog.Logger
}

// NewProductsRouter creates a new ProductsRouter.
func NewProductsRouter(client *stockwise.Client) *ProductsRouter {
	return &ProductsRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for product endpoints.
func (r *ProductsRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", r.Create)
	router.Get("/", r.List)
	router.Post("/upload-csv", r.UploadCSV)
	router.Get("/{id}", r.Get)
	router.Put("/{id}", r.Update)
	router.Delete("/{id}", r.Delete)

	return router
}

// Create handles POST /api/v1/products.
func (r *ProductsRouter) Create(w http.ResponseWriter, req *http.Request) {
	product, err := decodeProduct(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	saved, err := r.client.Catalog.CreateProduct(req.Context(), product)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, toProductDTO(saved))
}

// List handles GET /api/v1/products.
func (r *ProductsRouter) List(w http.ResponseWriter, req *http.Request) {
	offset, limit := pagination(req)

	products, err := r.client.Catalog.ListProducts(req.Context(), offset, limit)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	out := make([]dto.Product, len(products))
	for i, p := range products {
		out[i] = toProductDTO(p)
	}
	middleware.WriteJSON(w, http.StatusOK, out)
}

// Get handles GET /api/v1/products/{id}.
func (r *ProductsRouter) Get(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	product, err := r.client.Catalog.GetProduct(req.Context(), id)
	if err != nil {
		middleware.WriteError(w, req, mapCatalogError(err), r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, toProductDTO(product))
}

// Update handles PUT /api/v1/products/{id}.
func (r *ProductsRouter) Update(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	product, err := decodeProduct(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	updated, err := r.client.Catalog.UpdateProduct(req.Context(), id, product)
	if err != nil {
		middleware.WriteError(w, req, mapCatalogError(err), r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, toProductDTO(updated))
}

// Delete handles DELETE /api/v1/products/{id}.
func (r *ProductsRouter) Delete(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	deleted, err := r.client.Catalog.DeleteProduct(req.Context(), id)
	if err != nil {
		middleware.WriteError(w, req, mapCatalogError(err), r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, toProductDTO(deleted))
}

// UploadCSV handles POST /api/v1/products/upload-csv. The CSV file is the
// raw request body or the "file" part of a multipart form.
func (r *ProductsRouter) UploadCSV(w http.ResponseWriter, req *http.Request) {
	body := req.Body
	if file, _, err := req.FormFile("file"); err == nil {
		defer func() { _ = file.Close() }()
		body = file
	}

	result, err := r.client.Catalog.ImportProductsCSV(req.Context(), body)
	if err != nil {
		middleware.WriteError(w, req,
			middleware.NewAPIError(http.StatusBadRequest, err.Error(), nil), r.logger)
		return
	}

	var errs any = "None"
	if len(result.Errors) > 0 {
		errs = result.Errors
	}

	middleware.WriteJSON(w, http.StatusCreated, dto.ImportSummary{
		Detail:        fmt.Sprintf("Successfully added %d products. Skipped %d duplicates.", result.Added, result.Skipped),
		ProductsAdded: result.Added,
		Skipped:       result.Skipped,
		Errors:        errs,
		ErrorCount:    len(result.Errors),
	})
}

func decodeProduct(req *http.Request) (catalog.Product, error) {
	var body dto.ProductRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return catalog.Product{}, middleware.NewAPIError(http.StatusBadRequest, "invalid request body", err)
	}
	if body.Name == "" {
		return catalog.Product{}, middleware.NewAPIError(http.StatusBadRequest, "name is required", nil)
	}

	product := catalog.NewProduct(body.Name, body.Brand, body.Category, body.Price, body.Quantity)
	if body.CostPrice != nil {
		product = product.WithCostPrice(*body.CostPrice)
	}
	if body.ExpiryDate != nil && *body.ExpiryDate != "" {
		expiry, err := time.Parse(dateLayout, *body.ExpiryDate)
		if err != nil {
			return catalog.Product{}, middleware.NewAPIError(http.StatusBadRequest, "expiry_date must be YYYY-MM-DD", err)
		}
		product = product.WithExpiryDate(expiry)
	}
	return product, nil
}

func toProductDTO(p catalog.Product) dto.Product {
	out := dto.Product{
		ID:       p.ID(),
		Name:     p.Name(),
		Brand:    p.Brand(),
		Category: p.Category(),
		Price:    p.Price(),
		Quantity: p.Quantity(),
	}
	if cp, ok := p.CostPrice(); ok {
		out.CostPrice = &cp
	}
	if ed, ok := p.ExpiryDate(); ok {
		s := ed.Format(dateLayout)
		out.ExpiryDate = &s
	}
	return out
}

// mapCatalogError translates domain errors to API status codes.
func mapCatalogError(err error) error {
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		return middleware.NewAPIError(http.StatusNotFound, "Product not found", err)
	case errors.Is(err, catalog.ErrSaleNotFound):
		return middleware.NewAPIError(http.StatusNotFound, "Sale not found", err)
	case errors.Is(err, service.ErrInsufficientStock):
		return middleware.NewAPIError(http.StatusBadRequest, "Not enough stock", err)
	}
	return err
}

func pathID(req *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(req, "id"), 10, 64)
	if err != nil {
		return 0, middleware.NewAPIError(http.StatusBadRequest, "invalid id", err)
	}
	return id, nil
}

func pagination(req *http.Request) (offset, limit int) {
	limit = 100
	if v := req.URL.Query().Get("skip"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	if v := req.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	return offset, limit
}
