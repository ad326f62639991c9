package prescription

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/medconnect-api/internal/handler"
	"github.com/jwalitptl/medconnect-api/internal/middleware"
	"github.com/jwalitptl/medconnect-api/internal/model"
	"github.com/jwalitptl/medconnect-api/internal/service/prescription"
	"github.com/jwalitptl/medconnect-api/pkg/httputil"
)

type Handler struct {
	service *prescription.Service
}

func NewHandler(service *prescription.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	g := r.Group("/prescriptions", auth.Authenticate())
	{
		g.POST("", auth.RequireRole(model.RoleDoctor), h.Create)
		g.GET("", h.List)
		g.GET("/:id", h.Get)
		g.GET("/:id/pdf", h.PDF)
		g.PUT("/:id", auth.RequireRole(model.RoleDoctor, model.RoleAdmin), h.Update)
		g.DELETE("/:id", auth.RequireRole(model.RoleDoctor, model.RoleAdmin), h.Delete)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreatePrescriptionRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	p, err := h.service.Create(c.Request.Context(), middleware.Actor(c), req)
	handler.RespondCreated(c, p, err)
}

// List accepts ?patientId= for doctors and admins.
func (h *Handler) List(c *gin.Context) {
	list, err := h.service.List(c.Request.Context(), middleware.Actor(c), c.Query("patientId"))
	handler.Respond(c, list, err)
}

func (h *Handler) Get(c *gin.Context) {
	p, err := h.service.Get(c.Request.Context(), middleware.Actor(c), c.Param("id"))
	handler.Respond(c, p, err)
}

func (h *Handler) PDF(c *gin.Context) {
	data, filename, err := h.service.PDF(c.Request.Context(), middleware.Actor(c), c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

func (h *Handler) Update(c *gin.Context) {
	var req model.UpdatePrescriptionRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	p, err := h.service.Update(c.Request.Context(), middleware.Actor(c), c.Param("id"), req)
	handler.Respond(c, p, err)
}

func (h *Handler) Delete(c *gin.Context) {
	err := h.service.Delete(c.Request.Context(), middleware.Actor(c), c.Param("id"))
	handler.RespondMessage(c, "prescription deleted", err)
}
