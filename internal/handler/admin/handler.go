package admin

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/medconnect-api/internal/handler"
	"github.com/jwalitptl/medconnect-api/internal/middleware"
	"github.com/jwalitptl/medconnect-api/internal/model"
	"github.com/jwalitptl/medconnect-api/internal/service/admin"
	"github.com/jwalitptl/medconnect-api/internal/service/appointment"
	"github.com/jwalitptl/medconnect-api/internal/service/doctor"
	"github.com/jwalitptl/medconnect-api/internal/service/patient"
)

type Handler struct {
	admin        *admin.Service
	doctors      *doctor.Service
	patients     *patient.Service
	appointments *appointment.Service
}

func NewHandler(adminSvc *admin.Service, doctors *doctor.Service, patients *patient.Service, appointments *appointment.Service) *Handler {
	return &Handler{
		admin:        adminSvc,
		doctors:      doctors,
		patients:     patients,
		appointments: appointments,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	g := r.Group("/admin", auth.Authenticate(), auth.RequireRole(model.RoleAdmin))
	{
		g.GET("/dashboard", h.Dashboard)
		g.GET("/doctors", h.ListDoctors)
		g.PATCH("/doctors/:id/active", h.SetDoctorActive)
		g.GET("/patients", h.ListPatients)
		g.GET("/appointments", h.ListAppointments)
	}
}

func (h *Handler) Dashboard(c *gin.Context) {
	dash, err := h.admin.Dashboard(c.Request.Context())
	handler.Respond(c, dash, err)
}

func (h *Handler) ListDoctors(c *gin.Context) {
	doctors, err := h.doctors.List(c.Request.Context(), c.Query("specialization"), true)
	handler.Respond(c, doctors, err)
}

func (h *Handler) SetDoctorActive(c *gin.Context) {
	var req model.SetActiveRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	d, err := h.doctors.SetActive(c.Request.Context(), c.Param("id"), *req.IsActive)
	handler.Respond(c, d, err)
}

func (h *Handler) ListPatients(c *gin.Context) {
	patients, err := h.patients.List(c.Request.Context())
	handler.Respond(c, patients, err)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	apts, err := h.appointments.ListForActor(c.Request.Context(), middleware.Actor(c), model.AppointmentStatus(c.Query("status")))
	handler.Respond(c, apts, err)
}
