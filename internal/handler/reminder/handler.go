package reminder

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/medconnect-api/internal/handler"
	"github.com/jwalitptl/medconnect-api/internal/middleware"
	"github.com/jwalitptl/medconnect-api/internal/model"
	"github.com/jwalitptl/medconnect-api/internal/service/reminder"
)

type Handler struct {
	service *reminder.Service
}

func NewHandler(service *reminder.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	g := r.Group("/reminders", auth.Authenticate(), auth.RequireRole(model.RolePatient))
	{
		g.POST("", h.Create)
		g.GET("", h.List)
		g.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateReminderRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	rem, err := h.service.Create(c.Request.Context(), middleware.Actor(c).ID, req)
	handler.RespondCreated(c, rem, err)
}

func (h *Handler) List(c *gin.Context) {
	list, err := h.service.List(c.Request.Context(), middleware.Actor(c).ID)
	handler.Respond(c, list, err)
}

func (h *Handler) Delete(c *gin.Context) {
	err := h.service.Delete(c.Request.Context(), middleware.Actor(c).ID, c.Param("id"))
	handler.RespondMessage(c, "reminder deleted", err)
}
