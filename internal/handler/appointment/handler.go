package appointment

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/medconnect-api/internal/handler"
	"github.com/jwalitptl/medconnect-api/internal/middleware"
	"github.com/jwalitptl/medconnect-api/internal/model"
	"github.com/jwalitptl/medconnect-api/internal/service/appointment"
)

type Handler struct {
	service *appointment.Service
}

func NewHandler(service *appointment.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	r.GET("/doctors/:id/availability", h.GetAvailability)

	appointments := r.Group("/appointments", auth.Authenticate())
	{
		appointments.POST("", auth.RequireRole(model.RolePatient), h.BookAppointment)
		appointments.GET("", h.ListAppointments)
		appointments.GET("/:id", h.GetAppointment)
		appointments.POST("/:id/cancel", h.CancelAppointment)
		// Patients confirm by paying, see the payment service.
		appointments.POST("/:id/confirm", auth.RequireRole(model.RoleDoctor, model.RoleAdmin), h.ConfirmAppointment)
		appointments.POST("/:id/complete", auth.RequireRole(model.RoleDoctor), h.CompleteAppointment)

		appointments.GET("/:id/call", h.GetCall)
		appointments.PUT("/:id/offer", h.SetOffer)
		appointments.PUT("/:id/answer", h.SetAnswer)
		appointments.POST("/:id/ice-candidate", h.AddICECandidate)
		appointments.POST("/:id/end-call", h.EndCall)
	}
}

func (h *Handler) GetAvailability(c *gin.Context) {
	status, err := h.service.GetAvailability(c.Request.Context(), c.Param("id"), c.Query("date"))
	handler.Respond(c, status, err)
}

func (h *Handler) BookAppointment(c *gin.Context) {
	var req model.BookAppointmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	apt, err := h.service.BookAppointment(c.Request.Context(), middleware.Actor(c).ID, req)
	handler.RespondCreated(c, apt, err)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	status := model.AppointmentStatus(c.Query("status"))
	apts, err := h.service.ListForActor(c.Request.Context(), middleware.Actor(c), status)
	handler.Respond(c, apts, err)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	apt, err := h.service.GetAppointment(c.Request.Context(), middleware.Actor(c), c.Param("id"))
	handler.Respond(c, apt, err)
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	var req model.CancelAppointmentRequest
	if !handler.BindOptionalJSON(c, &req) {
		return
	}
	apt, err := h.service.Cancel(c.Request.Context(), middleware.Actor(c), c.Param("id"), req.Reason)
	handler.Respond(c, apt, err)
}

func (h *Handler) ConfirmAppointment(c *gin.Context) {
	apt, err := h.service.Confirm(c.Request.Context(), middleware.Actor(c), c.Param("id"))
	handler.Respond(c, apt, err)
}

func (h *Handler) CompleteAppointment(c *gin.Context) {
	apt, err := h.service.Complete(c.Request.Context(), middleware.Actor(c), c.Param("id"))
	handler.Respond(c, apt, err)
}

func (h *Handler) GetCall(c *gin.Context) {
	call, err := h.service.GetCall(c.Request.Context(), middleware.Actor(c), c.Param("id"))
	handler.Respond(c, call, err)
}

func (h *Handler) signal(c *gin.Context, send func(req model.SignalRequest) (*model.CallState, error)) {
	var req model.SignalRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	call, err := send(req)
	handler.Respond(c, call, err)
}

func (h *Handler) SetOffer(c *gin.Context) {
	h.signal(c, func(req model.SignalRequest) (*model.CallState, error) {
		return h.service.SetOffer(c.Request.Context(), middleware.Actor(c), c.Param("id"), req.Payload)
	})
}

func (h *Handler) SetAnswer(c *gin.Context) {
	h.signal(c, func(req model.SignalRequest) (*model.CallState, error) {
		return h.service.SetAnswer(c.Request.Context(), middleware.Actor(c), c.Param("id"), req.Payload)
	})
}

func (h *Handler) AddICECandidate(c *gin.Context) {
	h.signal(c, func(req model.SignalRequest) (*model.CallState, error) {
		return h.service.AddICECandidate(c.Request.Context(), middleware.Actor(c), c.Param("id"), req.Payload)
	})
}

func (h *Handler) EndCall(c *gin.Context) {
	call, err := h.service.EndCall(c.Request.Context(), middleware.Actor(c), c.Param("id"))
	handler.Respond(c, call, err)
}
