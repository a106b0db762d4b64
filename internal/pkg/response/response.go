package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the uniform JSON shape for every API response.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Pagination metadata returned with paginated responses.
type Pagination struct {
	Total       int64 `json:"total"`
	CurrentPage int   `json:"current_page"`
	TotalPage   int   `json:"total_page"`
	Size        int   `json:"size"`
	HasNextPage bool  `json:"has_next_page"`
}

// pagedData wraps a list payload together with its pagination metadata.
type pagedData struct {
	Items      interface{} `json:"items"`
	Pagination Pagination  `json:"pagination"`
}

// OK sends a 200 success envelope.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Paged sends a 200 success envelope with pagination metadata.
func Paged(c *gin.Context, items interface{}, pagination Pagination) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: pagedData{Items: items, Pagination: pagination}})
}

// Created sends a 201 success envelope.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// BadRequest sends a 400 error envelope for invalid input.
func BadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Envelope{Success: false, Error: message})
}

// NotFound sends a 404 error envelope.
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "not found"
	}
	c.AbortWithStatusJSON(http.StatusNotFound, Envelope{Success: false, Error: message})
}

// MethodNotAllowed sends a 405 error envelope.
func MethodNotAllowed(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusMethodNotAllowed, Envelope{Success: false, Error: "method not allowed"})
}

// UpstreamError sends a 502 error envelope carrying an external service's
// message verbatim.
func UpstreamError(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadGateway, Envelope{Success: false, Error: message})
}

// GatewayTimeout sends a 504 error envelope for an exhausted poll budget,
// kept distinct from UpstreamError so callers can decide to retry.
func GatewayTimeout(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusGatewayTimeout, Envelope{Success: false, Error: message})
}

// InternalError sends a 500 error envelope for storage and other
// server-side failures.
func InternalError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, Envelope{Success: false, Error: err.Error()})
}
