package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/dashprint/backend/internal/domain/shared"
	"github.com/dashprint/backend/internal/infrastructure/logger"
	"github.com/dashprint/backend/internal/infrastructure/printing"
	"github.com/dashprint/backend/internal/interfaces/http/dto"
	"github.com/dashprint/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// ErrorWithCode sends an error response, deriving status code from error code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleBindError answers a failed bind with ERR_VALIDATION. Validator
// errors list the rejected fields.
func (h *BaseHandler) HandleBindError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		middleware.HandleValidationError(c, err)
		return
	}
	h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, "Invalid request parameters")
}

// HandleError maps domain and rendering errors to their API codes. Other
// errors are logged and answered with a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.ErrorWithCode(c, dto.NormalizeErrorCode(domainErr.Code), domainErr.Message)
		return
	}

	var renderErr *printing.RenderError
	if errors.As(err, &renderErr) {
		logger.GetGinLogger(c).Error("print pipeline failed",
			zap.String("code", renderErr.Code),
			zap.Error(err))
		h.ErrorWithCode(c, dto.NormalizeErrorCode(renderErr.Code), renderErr.Message)
		return
	}

	if errors.Is(err, context.DeadlineExceeded) {
		h.ErrorWithCode(c, dto.ErrCodeRenderTimeout, "The request timed out")
		return
	}

	logger.GetGinLogger(c).Error("unhandled error", zap.Error(err))
	h.InternalError(c, "An unexpected error occurred")
}
