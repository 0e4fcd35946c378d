package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cpptutor/cpptutor-backend/internal/response"
)

// PageHandler serves static page payloads with no behavior behind them.
type PageHandler struct{}

// NewPageHandler creates a new PageHandler.
func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

// Compile godoc
// GET|POST /compile
// Static compiler playground page; rendering only, no server behavior.
func (h *PageHandler) Compile(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"page": "compiler"})
}
