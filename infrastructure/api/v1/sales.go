package v1

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shelfware/stockwise"
	"github.com/shelfware/stockwise/domain/catalog"
	"github.com/shelfware/stockwise/infrastructure/api/middleware"
	"github.com/shelfware/stockwise/infrastructure/api/v1/dto"
)

// SalesRouter handles the sales endpoints.
type SalesRouter struct {
	client *stockwise.Client
	logger *slog.Logger
}

// NewSalesRouter creates a new SalesRouter.
func NewSalesRouter(client *stockwise.Client) *SalesRouter {
	return &SalesRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for sales endpoints.
func (r *SalesRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", r.Create)
	router.Get("/", r.List)
	router.Get("/{id}", r.Get)
	router.Put("/{id}", r.Update)
	router.Delete("/{id}", r.Delete)

	return router
}

// Create handles POST /api/v1/sales.
func (r *SalesRouter) Create(w http.ResponseWriter, req *http.Request) {
	sale, err := decodeSale(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	saved, err := r.client.Catalog.CreateSale(req.Context(), sale)
	if err != nil {
		middleware.WriteError(w, req, mapCatalogError(err), r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, toSaleDTO(saved))
}

// List handles GET /api/v1/sales.
func (r *SalesRouter) List(w http.ResponseWriter, req *http.Request) {
	offset, limit := pagination(req)

	sales, err := r.client.Catalog.ListSales(req.Context(), offset, limit)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	out := make([]dto.Sale, len(sales))
	for i, s := range sales {
		out[i] = toSaleDTO(s)
	}
	middleware.WriteJSON(w, http.StatusOK, out)
}

// Get handles GET /api/v1/sales/{id}.
func (r *SalesRouter) Get(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	sale, err := r.client.Catalog.GetSale(req.Context(), id)
	if err != nil {
		middleware.WriteError(w, req, mapCatalogError(err), r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, toSaleDTO(sale))
}

// Update handles PUT /api/v1/sales/{id}.
func (r *SalesRouter) Update(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	sale, err := decodeSale(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	updated, err := r.client.Catalog.UpdateSale(req.Context(), id, sale)
	if err != nil {
		middleware.WriteError(w, req, mapCatalogError(err), r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, toSaleDTO(updated))
}

// Delete handles DELETE /api/v1/sales/{id}.
func (r *SalesRouter) Delete(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	deleted, err := r.client.Catalog.DeleteSale(req.Context(), id)
	if err != nil {
		middleware.WriteError(w, req, mapCatalogError(err), r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, toSaleDTO(deleted))
}

func decodeSale(req *http.Request) (catalog.Sale, error) {
	var body dto.SaleRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return catalog.Sale{}, middleware.NewAPIError(http.StatusBadRequest, "invalid request body", err)
	}
	if body.ProductID == 0 {
		return catalog.Sale{}, middleware.NewAPIError(http.StatusBadRequest, "product_id is required", nil)
	}
	if body.QuantitySold <= 0 {
		return catalog.Sale{}, middleware.NewAPIError(http.StatusBadRequest, "quantity_sold must be positive", nil)
	}

	saleDate := time.Now()
	if body.SaleDate != "" {
		parsed, err := time.Parse(dateLayout, body.SaleDate)
		if err != nil {
			return catalog.Sale{}, middleware.NewAPIError(http.StatusBadRequest, "sale_date must be YYYY-MM-DD", err)
		}
		saleDate = parsed
	}

	return catalog.NewSale(body.ProductID, body.QuantitySold, saleDate, body.TotalPrice), nil
}

func toSaleDTO(s catalog.Sale) dto.Sale {
	return dto.Sale{
		ID:           s.ID(),
		ProductID:    s.ProductID(),
		QuantitySold: s.QuantitySold(),
		SaleDate:     s.SaleDate().Format(dateLayout),
		TotalPrice:   s.TotalPrice(),
	}
}
