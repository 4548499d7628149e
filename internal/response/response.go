package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/personal-system/personal-backend/internal/apperror"
)

// Response is the standardized success envelope.
type Response struct {
	Data       interface{} `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Metadata   Metadata    `json:"metadata"`
}

// ErrorResponse is the error envelope. Field names the offending input when
// there is one; Fields carries every field error of a failed binding.
type ErrorResponse struct {
	Message  string            `json:"message"`
	Type     ErrCode           `json:"type"`
	Field    string            `json:"field,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
	Metadata Metadata          `json:"metadata"`
}

// Pagination holds offset pagination information.
type Pagination struct {
	Limit      int `json:"limit"`
	Offset     int `json:"offset"`
	TotalItems int `json:"total_items"`
}

// Metadata includes request tracing and timing.
type Metadata struct {
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

// ────────────────────────────────────────────────────────────────────────────
// Helper builders
// ────────────────────────────────────────────────────────────────────────────

// Success sends a successful JSON response with the given status code and data.
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Response{
		Data:     data,
		Metadata: buildMetadata(c),
	})
}

// SuccessWithPagination sends a successful response with pagination metadata.
func SuccessWithPagination(c *gin.Context, statusCode int, data interface{}, pagination *Pagination) {
	c.JSON(statusCode, Response{
		Data:       data,
		Pagination: pagination,
		Metadata:   buildMetadata(c),
	})
}

// Fail sends an error response with the default message of code.
func Fail(c *gin.Context, statusCode int, code ErrCode) {
	c.JSON(statusCode, ErrorResponse{
		Message:  GetMessage(code),
		Type:     code,
		Metadata: buildMetadata(c),
	})
}

// FailWithFields sends a 422 validation envelope for a failed binding.
func FailWithFields(c *gin.Context, field string, fields map[string]string) {
	msg := GetMessage(ErrValidation)
	if m, ok := fields[field]; ok {
		msg = m
	}
	c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Message:  msg,
		Type:     ErrValidation,
		Field:    field,
		Fields:   fields,
		Metadata: buildMetadata(c),
	})
}

// AbortFail aborts the middleware chain and sends an error response.
func AbortFail(c *gin.Context, statusCode int, code ErrCode) {
	c.AbortWithStatusJSON(statusCode, ErrorResponse{
		Message:  GetMessage(code),
		Type:     code,
		Metadata: buildMetadata(c),
	})
}

// Error maps a service error onto its status code and envelope. Errors that
// carry no domain kind are logged and answered with a generic 500.
func Error(c *gin.Context, err error) {
	status, code := statusOf(apperror.KindOf(err))
	if code == ErrInternal {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).
			Str("path", c.FullPath()).
			Msg("Unhandled error")
		Fail(c, status, code)
		return
	}

	body := ErrorResponse{
		Message:  GetMessage(code),
		Type:     code,
		Metadata: buildMetadata(c),
	}
	if ae, ok := apperror.As(err); ok {
		if ae.Message != "" {
			body.Message = ae.Message
		}
		body.Field = ae.Field
	}
	c.JSON(status, body)
}

func statusOf(kind apperror.Kind) (int, ErrCode) {
	switch kind {
	case apperror.KindNotFound:
		return http.StatusNotFound, ErrNotFound
	case apperror.KindConflict:
		return http.StatusConflict, ErrBusinessRule
	case apperror.KindBusinessRule:
		return http.StatusUnprocessableEntity, ErrBusinessRule
	case apperror.KindValidation:
		return http.StatusUnprocessableEntity, ErrValidation
	default:
		return http.StatusInternalServerError, ErrInternal
	}
}

// ────────────────────────────────────────────────────────────────────────────
// Internal helpers
// ────────────────────────────────────────────────────────────────────────────

func buildMetadata(c *gin.Context) Metadata {
	reqID, _ := c.Get(ContextKeyRequestID)
	id, ok := reqID.(string)
	if !ok || id == "" {
		id = uuid.New().String() // Fallback if middleware not applied
	}
	return Metadata{
		RequestID: id,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
