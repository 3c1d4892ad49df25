package utils

import (
	"errors"   // Error matching
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"github.com/gin-gonic/gin"               // Gin web framework
	"github.com/go-playground/validator/v10" // Validation errors
)

// FieldError describes a single invalid input field
type FieldError struct {
	Field   string `json:"field"`   // Field name as sent by the client
	Message string `json:"message"` // Human readable reason
}

// Pagination describes a page of a list response
type Pagination struct {
	Page       int   `json:"page"`       // Current page
	Limit      int   `json:"limit"`      // Page size
	Total      int64 `json:"total"`      // Total matching rows
	TotalPages int   `json:"totalPages"` // Total pages
}

// Envelope is the response shape shared by every endpoint
type Envelope struct {
	Success    bool         `json:"success"`
	Data       any          `json:"data,omitempty"`
	Errors     []FieldError `json:"errors,omitempty"`
	Message    string       `json:"message,omitempty"`
	Pagination *Pagination  `json:"pagination,omitempty"`
}

// OK writes a successful envelope
func OK(c *gin.Context, status int, data any, message string) {
	c.JSON(status, Envelope{Success: true, Data: data, Message: message})
}

// Paginated writes a successful list envelope with pagination info
func Paginated(c *gin.Context, data any, p Pagination) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Pagination: &p})
}

// Fail writes an error envelope and aborts the chain
func Fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Envelope{Success: false, Message: message})
}

// FailWithData writes an error envelope carrying extra detail
func FailWithData(c *gin.Context, status int, message string, data any) {
	c.AbortWithStatusJSON(status, Envelope{Success: false, Message: message, Data: data})
}

// ValidationFailed writes a 400 envelope listing field errors
func ValidationFailed(c *gin.Context, errs []FieldError) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Envelope{Success: false, Message: "Validation failed", Errors: errs})
}

// BindError converts a binding error into a 400 validation envelope
func BindError(c *gin.Context, err error) {
	ValidationFailed(c, FieldErrors(err))
}

// FieldErrors turns validator errors into client facing field errors
func FieldErrors(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "body", Message: "Invalid request body"}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: jsonName(fe.Field()), Message: describe(fe)})
	}
	return out
}

// jsonName lower-cases the first letter so errors match the camelCase body keys
func jsonName(field string) string {
	if field == "" {
		return field
	}
	if strings.ToUpper(field) == field {
		return strings.ToLower(field) // SKU, ID
	}
	return strings.ToLower(field[:1]) + field[1:]
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "slug":
		return "must contain only lowercase letters, digits and hyphens"
	case "sku":
		return "must contain only uppercase letters, digits and hyphens"
	case "url":
		return "must be a valid URL"
	default:
		return "is invalid"
	}
}
