package contact

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/medconnect-api/internal/handler"
	"github.com/jwalitptl/medconnect-api/internal/middleware"
	"github.com/jwalitptl/medconnect-api/internal/model"
	"github.com/jwalitptl/medconnect-api/internal/service/contact"
)

type Handler struct {
	service *contact.Service
}

func NewHandler(service *contact.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	// Submitting the contact form is public; reading it is admin only.
	r.POST("/contacts", h.Submit)

	g := r.Group("/contacts", auth.Authenticate(), auth.RequireRole(model.RoleAdmin))
	{
		g.GET("", h.List)
		g.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) Submit(c *gin.Context) {
	var req model.CreateContactRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	msg, err := h.service.Submit(c.Request.Context(), req)
	handler.RespondCreated(c, msg, err)
}

func (h *Handler) List(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	handler.Respond(c, list, err)
}

func (h *Handler) Delete(c *gin.Context) {
	err := h.service.Delete(c.Request.Context(), c.Param("id"))
	handler.RespondMessage(c, "message deleted", err)
}
