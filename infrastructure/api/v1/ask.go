// Package v1 implements the v1 HTTP API routes.
package v1

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shelfware/stockwise"
	"github.com/shelfware/stockwise/infrastructure/api/middleware"
	"github.com/shelfware/stockwise/infrastructure/api/v1/dto"
)

// AskRouter handles the question-answering endpoints.
type AskRouter struct {
	client *stockwise.Client
	logger *slog.Logger
}

// NewAskRouter creates a new AskRouter.
func NewAskRouter(client *stockwise.Client) *AskRouter {
	return &AskRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for ask endpoints.
func (r *AskRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", r.Ask)
	router.Post("/build-index", r.BuildIndex)

	return router
}

// Ask handles POST /api/v1/ask.
func (r *AskRouter) Ask(w http.ResponseWriter, req *http.Request) {
	var body dto.AskRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, "invalid request body", err), r.logger)
		return
	}
	// An empty question is not an error. It runs through retrieval like any
	// other query and resolves to the no-match answer on its own.
	k := stockwise.DefaultAskK
	if body.K != nil {
		k = *body.K
	}

	result, err := r.client.Ask.Ask(req.Context(), body.Question, k)
	if err != nil {
		middleware.WriteError(w, req,
			middleware.NewServerError(http.StatusInternalServerError, fmt.Sprintf("failed to answer question: %v", err)),
			r.logger)
		return
	}

	hits := result.Sources()
	sources := make([]dto.Source, len(hits))
	for i, hit := range hits {
		sources[i] = dto.Source{
			Document: hit.Document(),
			Metadata: hit.Metadata(),
			Distance: hit.Distance(),
		}
	}

	middleware.WriteJSON(w, http.StatusOK, dto.AskResponse{
		Question: result.Question(),
		Answer:   result.Answer(),
		Sources:  sources,
	})
}

// BuildIndex handles POST /api/v1/ask/build-index. It re-projects the whole
// catalog into the vector index, replacing previous contents.
func (r *AskRouter) BuildIndex(w http.ResponseWriter, req *http.Request) {
	count, err := r.client.Ask.RebuildIndex(req.Context())
	if err != nil {
		middleware.WriteError(w, req,
			middleware.NewServerError(http.StatusInternalServerError, fmt.Sprintf("failed to rebuild index: %v", err)),
			r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.BuildIndexResponse{
		Detail:    fmt.Sprintf("Indexed %d documents.", count),
		Documents: count,
	})
}
