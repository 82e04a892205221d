package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dashprint/backend/internal/interfaces/http/dto"
)

type periodQuery struct {
	From *string `form:"from" binding:"omitempty,range_time"`
	To   *string `form:"to" binding:"omitempty,range_time"`
	Page int     `form:"page" binding:"omitempty,min=1"`
}

func newValidationRouter(t *testing.T) *gin.Engine {
	t.Helper()
	require.NoError(t, SetupValidator())

	router := gin.New()
	router.Use(RequestID())
	router.GET("/test", func(c *gin.Context) {
		var q periodQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})
	return router
}

func TestRangeTimeValidation(t *testing.T) {
	router := newValidationRouter(t)

	tests := []struct {
		name   string
		query  string
		status int
	}{
		{"no period", "", http.StatusOK},
		{"relative", "?from=now-1d/d&to=now", http.StatusOK},
		{"absolute", "?from=2024-03-01%2012:00:00&to=2024-03-02", http.StatusOK},
		{"bad from", "?from=yesterday", http.StatusBadRequest},
		{"bad to", "?from=now-1h&to=now-x", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test"+tt.query, nil))
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestHandleValidationError(t *testing.T) {
	router := newValidationRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/test?from=soon&page=0", nil)
	req.Header.Set(RequestIDHeader, "req-v")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.False(t, resp.Success)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "Request validation failed", resp.Error.Message)
	assert.Equal(t, "req-v", resp.Error.RequestID)
	assert.Contains(t, resp.Error.Details, dto.ValidationDetail{Field: "from", Message: "Invalid time expression"})
}

func TestFormatValidationErrors_NonValidatorError(t *testing.T) {
	resp := FormatValidationErrors(assert.AnError, "")

	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Empty(t, resp.Error.Details)
}
