// Package response renders the standard API envelope. Success responses are
// {success:true, data, message?, pagination?}; error responses carry a
// structured body with status, timestamp and request path so clients can
// check failures mechanically.
package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fotofolio/backend/pkg/apperr"
)

// Pagination describes a paginated list response.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes total pages from a row count.
func NewPagination(page, limit, total int) *Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return &Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}

// Body is the success envelope.
type Body struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// ErrorDetail is the error payload inside the error envelope.
type ErrorDetail struct {
	Message   string          `json:"message"`
	Status    int             `json:"status"`
	Timestamp string          `json:"timestamp"`
	Path      string          `json:"path"`
	Method    string          `json:"method"`
	Context   *apperr.Context `json:"context,omitempty"`
}

// ErrorBody is the error envelope.
type ErrorBody struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// OK sends a 200 response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Body{Success: true, Data: data})
}

// OKMessage sends a 200 response with data and a message.
func OKMessage(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, Body{Success: true, Data: data, Message: message})
}

// Created sends a 201 response with data and a message.
func Created(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusCreated, Body{Success: true, Data: data, Message: message})
}

// Paginated sends a 200 response with data and pagination meta.
func Paginated(c *gin.Context, data interface{}, p *Pagination) {
	c.JSON(http.StatusOK, Body{Success: true, Data: data, Pagination: p})
}

// Error renders any error through the taxonomy. This is the single boundary
// where typed errors become wire responses.
func Error(c *gin.Context, err error) {
	ae := apperr.From(err)
	c.JSON(ae.Status, ErrorBody{
		Success: false,
		Error: ErrorDetail{
			Message:   ae.Message,
			Status:    ae.Status,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Path:      c.Request.URL.Path,
			Method:    c.Request.Method,
			Context:   ae.Context,
		},
	})
}

// AbortError renders err and aborts the handler chain (middleware use).
func AbortError(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

// BadRequest is a shorthand for a 400 validation error.
func BadRequest(c *gin.Context, msg string) {
	Error(c, apperr.Validation(msg))
}
