package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docvault/src/core/rag"
)

type questionRequest struct {
	Question       string `json:"question" binding:"required"`
	OrganizationID string `json:"organizationId" binding:"required"`
	DocumentID     string `json:"documentId"`
	TopK           int    `json:"topK"`
}

// AnswerQuestion handles POST /api/v1/questions
func (h *Handler) AnswerQuestion(c *gin.Context) {
	var req questionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "INVALID_INPUT", Message: err.Error()})
		return
	}

	ctx := c.Request.Context()
	var (
		answer *rag.Answer
		err    error
	)
	if req.DocumentID != "" {
		answer, err = h.service.AnswerQuestionInDocument(ctx, req.Question, req.OrganizationID, req.DocumentID, req.TopK)
	} else {
		answer, err = h.service.AnswerQuestion(ctx, req.Question, req.OrganizationID, req.TopK)
	}
	if err != nil {
		sendError(c, err)
		return
	}

	c.JSON(http.StatusOK, answer)
}

type processRequest struct {
	OrganizationID string `json:"organizationId" binding:"required"`
	Text           string `json:"text" binding:"required"`
	Async          bool   `json:"async"`
}

// ProcessDocument handles PUT /api/v1/documents/:id/chunks.
// Replaces the document's chunks with a fresh chunking of the supplied
// text. With async=true the work is enqueued and a job ID returned.
func (h *Handler) ProcessDocument(c *gin.Context) {
	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "INVALID_INPUT", Message: err.Error()})
		return
	}

	documentID := c.Param("id")

	if req.Async {
		if h.jobService == nil {
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{
				Code:    "QUEUE_UNAVAILABLE",
				Message: "async processing is not configured",
			})
			return
		}
		jobID, err := h.jobService.EnqueueProcessDocument(c.Request.Context(), documentID, req.OrganizationID, req.Text)
		if err != nil {
			sendError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"jobId": jobID})
		return
	}

	result, err := h.processor.Process(c.Request.Context(), documentID, req.OrganizationID, req.Text)
	if err != nil {
		sendError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"documentId":    documentID,
		"chunksCreated": result.ChunksCreated,
		"chunksDeleted": result.ChunksDeleted,
		"dimensions":    result.Dimensions,
	})
}

// DeleteDocumentChunks handles DELETE /api/v1/documents/:id/chunks
func (h *Handler) DeleteDocumentChunks(c *gin.Context) {
	documentID := c.Param("id")

	deleted, err := h.processor.DeleteChunks(c.Request.Context(), documentID)
	if err != nil {
		sendError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"documentId":    documentID,
		"chunksDeleted": deleted,
	})
}

// CheckHealth handles GET /api/v1/health
func (h *Handler) CheckHealth(c *gin.Context) {
	ctx := c.Request.Context()

	embeddingOK := h.embedder != nil && h.embedder.CheckAvailability(ctx)
	generationOK := h.generator != nil && h.generator.CheckAvailability(ctx)

	status := http.StatusOK
	overall := "ok"
	if !embeddingOK || !generationOK {
		status = http.StatusServiceUnavailable
		overall = "degraded"
	}

	c.JSON(status, gin.H{
		"status": overall,
		"providers": gin.H{
			"embedding":  embeddingOK,
			"generation": generationOK,
		},
	})
}
