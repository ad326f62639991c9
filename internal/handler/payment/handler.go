package payment

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/medconnect-api/internal/handler"
	"github.com/jwalitptl/medconnect-api/internal/middleware"
	"github.com/jwalitptl/medconnect-api/internal/model"
	"github.com/jwalitptl/medconnect-api/internal/service/payment"
)

type Handler struct {
	service *payment.Service
}

func NewHandler(service *payment.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	g := r.Group("/payments", auth.Authenticate())
	{
		g.POST("", auth.RequireRole(model.RolePatient), h.Create)
		g.GET("", h.List)
		g.GET("/:id", h.Get)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreatePaymentRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	p, err := h.service.Create(c.Request.Context(), middleware.Actor(c), req)
	handler.RespondCreated(c, p, err)
}

func (h *Handler) List(c *gin.Context) {
	list, err := h.service.ListMine(c.Request.Context(), middleware.Actor(c))
	handler.Respond(c, list, err)
}

func (h *Handler) Get(c *gin.Context) {
	p, err := h.service.Get(c.Request.Context(), middleware.Actor(c), c.Param("id"))
	handler.Respond(c, p, err)
}
