package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/ignatzorin/cfp-backend/internal/http/handlers/common"
	"github.com/ignatzorin/cfp-backend/internal/http/middleware"
	"github.com/ignatzorin/cfp-backend/internal/logger"
	"github.com/ignatzorin/cfp-backend/internal/pkg/apperror"
	"github.com/ignatzorin/cfp-backend/internal/ws"
)

// WSHandler отвечает за установку WebSocket соединений ревьюеров.
type WSHandler struct {
	hub      *ws.Hub
	tokens   middleware.AccessParser
	users    middleware.UserResolver
	upgrader websocket.Upgrader
}

// NewWSHandler создаёт новый хэндлер. Пустой allowedOrigins разрешает любой origin.
func NewWSHandler(hub *ws.Hub, tokens middleware.AccessParser, users middleware.UserResolver, allowedOrigins []string) *WSHandler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	return &WSHandler{
		hub:    hub,
		tokens: tokens,
		users:  users,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if len(allowed) == 0 {
					return true
				}
				_, ok := allowed[r.Header.Get("Origin")]
				return ok
			},
		},
	}
}

// Handle обслуживает GET /api/ws?token=...
func (h *WSHandler) Handle(c *gin.Context) {
	rawToken := c.Query("token")
	if rawToken == "" {
		common.RespondError(c, apperror.New(apperror.ErrCodeUnauthorized, "access токен обязателен"))
		return
	}

	claims, err := h.tokens.ParseAccess(rawToken)
	if err != nil {
		common.RespondError(c, apperror.New(apperror.ErrCodeUnauthorized, "невалидный access токен"))
		return
	}
	user, err := h.users.Resolve(c.Request.Context(), claims.Email)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	if !user.IsReviewer() {
		common.RespondError(c, apperror.ErrForbidden)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade уже ответил клиенту
		logger.For("ws_handler").WithError(err).Warn("websocket upgrade failed")
		return
	}

	ws.NewClient(conn, h.hub, user.ID).Run(c.Request.Context())
}
