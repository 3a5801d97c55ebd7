package utils

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Response represents a standard API response
type Response struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp string      `json:"timestamp"`
	Meta      interface{} `json:"meta,omitempty"`
}

// ErrorResponse represents an error response with request context
type ErrorResponse struct {
	Success   bool        `json:"success"`
	Error     string      `json:"error"`
	Code      int         `json:"code"`
	Timestamp string      `json:"timestamp"`
	Request   RequestInfo `json:"request"`
	Details   interface{} `json:"details,omitempty"`
}

// RequestInfo provides context about the failed request
type RequestInfo struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	Query  string `json:"query,omitempty"`
}

// SendSuccess sends a successful response
func SendSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// SendSuccessWithMeta sends a successful response with metadata
func SendSuccessWithMeta(c *gin.Context, data interface{}, meta interface{}) {
	c.JSON(http.StatusOK, Response{
		Success:   true,
		Data:      data,
		Meta:      meta,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// SendError sends an error response with request context
func SendError(c *gin.Context, statusCode int, message string) {
	errorResponse := ErrorResponse{
		Success:   false,
		Error:     message,
		Code:      statusCode,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Request: RequestInfo{
			Method: c.Request.Method,
			Path:   c.Request.URL.Path,
			Query:  c.Request.URL.RawQuery,
		},
	}

	if statusCode == http.StatusNotFound {
		suggestions := generateNotFoundSuggestions(c.Request.URL.Path)
		if len(suggestions) > 0 {
			errorResponse.Details = map[string]interface{}{
				"suggestions": suggestions,
				"message":     "The requested endpoint does not exist. Check the suggestions below for similar endpoints.",
			}
		}
	}

	c.JSON(statusCode, errorResponse)
}

// generateNotFoundSuggestions provides endpoint suggestions for 404 errors
func generateNotFoundSuggestions(path string) []string {
	endpointsByKeyword := map[string][]string{
		"entit":      {"/api/v1/entities", "/api/v1/entities/:id"},
		"config":     {"/api/v1/config/house", "/api/v1/config/onboarding"},
		"scene":      {"/api/v1/scenes", "/api/v1/scenes/room/:room_key"},
		"suggestion": {"/api/v1/suggestions", "/api/v1/suggestions/:id/dismiss"},
		"refresh":    {"/api/v1/refresh", "/api/v1/refresh/stats"},
		"health":     {"/health"},
		"status":     {"/health"},
		"ws":         {"/ws"},
	}

	pathLower := strings.ToLower(path)
	seen := make(map[string]bool)
	var suggestions []string

	for keyword, endpoints := range endpointsByKeyword {
		if !strings.Contains(pathLower, keyword) {
			continue
		}
		for _, endpoint := range endpoints {
			if !seen[endpoint] && len(suggestions) < 5 {
				seen[endpoint] = true
				suggestions = append(suggestions, endpoint)
			}
		}
	}

	return suggestions
}
