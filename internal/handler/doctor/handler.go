package doctor

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/medconnect-api/internal/handler"
	"github.com/jwalitptl/medconnect-api/internal/middleware"
	"github.com/jwalitptl/medconnect-api/internal/model"
	"github.com/jwalitptl/medconnect-api/internal/service/doctor"
	apperrors "github.com/jwalitptl/medconnect-api/pkg/errors"
)

type Handler struct {
	service *doctor.Service
}

func NewHandler(service *doctor.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires the public catalogue under /doctors and the
// signed-in doctor's own endpoints under /doctor.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	r.GET("/doctors", h.List)
	r.GET("/doctors/:id", h.Get)

	self := r.Group("/doctor", auth.Authenticate(), auth.RequireRole(model.RoleDoctor))
	{
		self.GET("/dashboard", h.Dashboard)
		self.GET("/profile", h.Profile)
		self.PUT("/profile", h.UpdateProfile)
		self.POST("/availability/toggle", h.ToggleAvailability)
		self.PUT("/schedule", h.UpdateSchedule)
	}
}

func (h *Handler) List(c *gin.Context) {
	doctors, err := h.service.List(c.Request.Context(), c.Query("specialization"), false)
	handler.Respond(c, doctors, err)
}

// Get hides deactivated doctors behind a 404.
func (h *Handler) Get(c *gin.Context) {
	d, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err == nil && !d.IsActive {
		handler.Respond(c, nil, apperrors.NotFound("doctor", nil))
		return
	}
	handler.Respond(c, d, err)
}

func (h *Handler) Dashboard(c *gin.Context) {
	dash, err := h.service.Dashboard(c.Request.Context(), middleware.Actor(c).ID)
	handler.Respond(c, dash, err)
}

func (h *Handler) Profile(c *gin.Context) {
	d, err := h.service.Get(c.Request.Context(), middleware.Actor(c).ID)
	handler.Respond(c, d, err)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req model.UpdateDoctorRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	d, err := h.service.UpdateProfile(c.Request.Context(), middleware.Actor(c).ID, req)
	handler.Respond(c, d, err)
}

func (h *Handler) ToggleAvailability(c *gin.Context) {
	d, err := h.service.ToggleAvailability(c.Request.Context(), middleware.Actor(c).ID)
	handler.Respond(c, d, err)
}

func (h *Handler) UpdateSchedule(c *gin.Context) {
	var req model.UpdateScheduleRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	d, err := h.service.UpdateSchedule(c.Request.Context(), middleware.Actor(c).ID, req)
	handler.Respond(c, d, err)
}
