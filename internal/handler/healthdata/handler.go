package healthdata

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/medconnect-api/internal/handler"
	"github.com/jwalitptl/medconnect-api/internal/middleware"
	"github.com/jwalitptl/medconnect-api/internal/model"
	"github.com/jwalitptl/medconnect-api/internal/service/healthdata"
)

type Handler struct {
	service *healthdata.Service
}

func NewHandler(service *healthdata.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	g := r.Group("/healthData", auth.Authenticate(), auth.RequireRole(model.RolePatient))
	{
		g.POST("", h.Create)
		g.GET("", h.List)
		g.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateHealthDataRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	entry, err := h.service.Create(c.Request.Context(), middleware.Actor(c).ID, req)
	handler.RespondCreated(c, entry, err)
}

// List filters by ?type= when given.
func (h *Handler) List(c *gin.Context) {
	list, err := h.service.List(c.Request.Context(), middleware.Actor(c).ID, model.HealthDataType(c.Query("type")))
	handler.Respond(c, list, err)
}

func (h *Handler) Delete(c *gin.Context) {
	err := h.service.Delete(c.Request.Context(), middleware.Actor(c).ID, c.Param("id"))
	handler.RespondMessage(c, "entry deleted", err)
}
