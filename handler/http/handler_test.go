package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"docvault/src/core/rag"
)

func TestSendErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "invalid input",
			err:        rag.E(rag.KindInvalidInput, rag.StageRetrieval, "question is empty"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
		{
			name:       "access denied",
			err:        rag.E(rag.KindAccessDenied, rag.StageRetrieval, "wrong organization"),
			wantStatus: http.StatusForbidden,
			wantCode:   "ACCESS_DENIED",
		},
		{
			name:       "not found",
			err:        rag.E(rag.KindNotFound, rag.StageRetrieval, "no such document"),
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "upstream failure",
			err:        rag.E(rag.KindUpstream, rag.StageEmbedding, "provider down"),
			wantStatus: http.StatusBadGateway,
			wantCode:   "UPSTREAM_FAILURE",
		},
		{
			name:       "invalid response",
			err:        rag.E(rag.KindInvalidResponse, rag.StageGeneration, "empty completion"),
			wantStatus: http.StatusBadGateway,
			wantCode:   "INVALID_RESPONSE",
		},
		{
			name:       "internal",
			err:        rag.E(rag.KindInternal, rag.StageStorage, "insert failed"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
		},
		{
			name:       "untyped error",
			err:        errors.New("something broke"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
		},
		{
			name:       "wrapped typed error",
			err:        fmt.Errorf("outer: %w", rag.E(rag.KindInvalidInput, rag.StageChunking, "empty text")),
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			sendError(c, tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}

			var body ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to decode response body: %v", err)
			}
			if body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
			}
			if body.Message == "" {
				t.Errorf("message is empty")
			}
		})
	}
}
