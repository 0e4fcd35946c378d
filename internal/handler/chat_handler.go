package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cpptutor/cpptutor-backend/internal/llm"
	"github.com/cpptutor/cpptutor-backend/internal/middleware"
	"github.com/cpptutor/cpptutor-backend/internal/model"
	"github.com/cpptutor/cpptutor-backend/internal/response"
	"github.com/cpptutor/cpptutor-backend/internal/service"
	"github.com/cpptutor/cpptutor-backend/internal/validator"
)

// ChatHandler handles the tutor chat page.
type ChatHandler struct {
	tutorService *service.TutorService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(tutorService *service.TutorService) *ChatHandler {
	return &ChatHandler{tutorService: tutorService}
}

// ChatPage godoc
// GET /
// Returns the empty chat page payload.
func (h *ChatHandler) ChatPage(c *gin.Context) {
	claims := middleware.GetClaims(c)
	response.Success(c, http.StatusOK, gin.H{
		"page":     "chat",
		"username": claims.Username,
		"reply":    nil,
	})
}

// Chat godoc
// POST /
// Forwards the message to the tutor and returns the reply.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	reply, err := h.tutorService.Ask(c.Request.Context(), req.Message)
	if err != nil {
		if errors.Is(err, llm.ErrRemoteService) {
			response.Fail(c, http.StatusBadGateway, response.ErrRemoteService)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"reply": reply})
}

// acceptsHTML reports whether the client is a browser page load rather
// than an API caller. Browser flows get form-style redirects, API
// callers get JSON.
func acceptsHTML(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}
