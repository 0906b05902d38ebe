package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docvault/src/core/rag"
)

// Handler exposes the question-answering and document-processing
// operations over HTTP. Organization scoping is taken from the request
// body; authentication happens upstream.
type Handler struct {
	service    *rag.Service
	processor  *rag.Processor
	embedder   rag.EmbeddingProvider
	generator  rag.GenerationProvider
	jobService JobEnqueuer
}

// JobEnqueuer lets the handler hand long documents off to the worker
// instead of processing them inline. May be nil when no queue is
// configured.
type JobEnqueuer interface {
	EnqueueProcessDocument(ctx context.Context, documentID, organizationID, text string) (int, error)
}

func NewHandler(
	service *rag.Service,
	processor *rag.Processor,
	embedder rag.EmbeddingProvider,
	generator rag.GenerationProvider,
	jobService JobEnqueuer,
) *Handler {
	return &Handler{
		service:    service,
		processor:  processor,
		embedder:   embedder,
		generator:  generator,
		jobService: jobService,
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")

	// Question answering
	api.POST("/questions", h.AnswerQuestion)

	// Document chunk management
	api.PUT("/documents/:id/chunks", h.ProcessDocument)
	api.DELETE("/documents/:id/chunks", h.DeleteDocumentChunks)

	// System
	api.GET("/health", h.CheckHealth)
}

// Common error response structure
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func sendError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := "INTERNAL_ERROR"

	var re *rag.Error
	if errors.As(err, &re) {
		switch re.Kind {
		case rag.KindInvalidInput:
			status, code = http.StatusBadRequest, "INVALID_INPUT"
		case rag.KindAccessDenied:
			status, code = http.StatusForbidden, "ACCESS_DENIED"
		case rag.KindNotFound:
			status, code = http.StatusNotFound, "NOT_FOUND"
		case rag.KindUpstream:
			status, code = http.StatusBadGateway, "UPSTREAM_FAILURE"
		case rag.KindInvalidResponse:
			status, code = http.StatusBadGateway, "INVALID_RESPONSE"
		}
	}

	c.JSON(status, ErrorResponse{
		Code:    code,
		Message: err.Error(),
	})
}
