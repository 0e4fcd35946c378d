package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/cpptutor/cpptutor-backend/internal/llm"
	"github.com/cpptutor/cpptutor-backend/internal/middleware"
	"github.com/cpptutor/cpptutor-backend/internal/service"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// wsQuestion is an inbound chat message on the stream.
type wsQuestion struct {
	Message string `json:"message"`
}

// wsChunk is one outbound frame of a streamed reply.
type wsChunk struct {
	Type    string `json:"type"` // "chunk", "done", or "error"
	Content string `json:"content,omitempty"`
}

// WSHandler streams tutor replies over a WebSocket.
type WSHandler struct {
	tutorService *service.TutorService
	log          zerolog.Logger
	upgrader     websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(tutorService *service.TutorService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		tutorService: tutorService,
		log:          log.With().Str("component", "ws_handler").Logger(),
		upgrader:     buildUpgrader(allowedOrigins),
	}
}

// TutorStream godoc
// WS /ws/v1/tutor/stream?token=...
// Upgrades to WebSocket; each inbound message is answered with a
// sequence of chunk frames followed by a done frame.
func (h *WSHandler) TutorStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Int("user_id", claims.UserID).Logger()
	wsLog.Info().Msg("Tutor stream connected")

	for {
		var msg wsQuestion
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		if strings.TrimSpace(msg.Message) == "" {
			_ = conn.WriteJSON(wsChunk{Type: "error", Content: "message is required"})
			continue
		}

		err := h.tutorService.AskStream(c.Request.Context(), msg.Message, func(chunk string) error {
			return conn.WriteJSON(wsChunk{Type: "chunk", Content: chunk})
		})
		if err != nil {
			if errors.Is(err, llm.ErrRemoteService) {
				_ = conn.WriteJSON(wsChunk{Type: "error", Content: "The tutoring service is temporarily unavailable."})
				continue
			}
			wsLog.Warn().Err(err).Msg("Stream write failed")
			return
		}

		if err := conn.WriteJSON(wsChunk{Type: "done"}); err != nil {
			return
		}
	}
}
