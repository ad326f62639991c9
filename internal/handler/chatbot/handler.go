package chatbot

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/medconnect-api/internal/handler"
	"github.com/jwalitptl/medconnect-api/internal/service/chatbot"
	"github.com/jwalitptl/medconnect-api/pkg/httputil"
)

type chatRequest struct {
	Message string `json:"message" binding:"required,max=1000"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/chatbot", h.Chat)
}

func (h *Handler) Chat(c *gin.Context) {
	var req chatRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	httputil.RespondWithSuccess(c, chatResponse{Reply: chatbot.Reply(req.Message)})
}
