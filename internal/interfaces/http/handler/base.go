package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/erp/erpcore/internal/domain/shared"
	"github.com/erp/erpcore/internal/infrastructure/logger"
	"github.com/erp/erpcore/internal/interfaces/http/dto"
	"github.com/erp/erpcore/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, skip, limit, count int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, skip, limit, count))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, "", middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleError converts domain errors to HTTP responses. Anything else is
// logged and answered with a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	h.HandleErrorWithData(c, err, nil)
}

// HandleErrorWithData is HandleError with a partial result in the data field
func (h *BaseHandler) HandleErrorWithData(c *gin.Context, err error, data any) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	var resp dto.Response
	status := http.StatusInternalServerError

	var domainErr *shared.DomainError
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &domainErr):
		status = dto.GetHTTPStatus(domainErr.Code)
		resp = dto.NewErrorResponseWithRequestID(domainErr.Code, domainErr.Message, domainErr.Field, middleware.GetRequestID(c))
	case errors.As(err, &maxBytesErr):
		status = http.StatusRequestEntityTooLarge
		resp = dto.NewErrorResponseWithRequestID(dto.ErrCodeRequestTooLarge,
			"Request body exceeds maximum allowed size", "", middleware.GetRequestID(c))
	default:
		if !errors.Is(err, context.Canceled) {
			logger.L(c.Request.Context()).Error("Unhandled error", zap.Error(err))
		}
		resp = dto.NewErrorResponseWithRequestID(dto.ErrCodeInternal,
			"An unexpected error occurred", "", middleware.GetRequestID(c))
	}
	resp.Data = data
	c.JSON(status, resp)
}
