package auth

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/medconnect-api/internal/handler"
	"github.com/jwalitptl/medconnect-api/internal/middleware"
	"github.com/jwalitptl/medconnect-api/internal/model"
	"github.com/jwalitptl/medconnect-api/internal/service/auth"
	"github.com/jwalitptl/medconnect-api/internal/service/doctor"
	"github.com/jwalitptl/medconnect-api/internal/service/patient"
	"github.com/jwalitptl/medconnect-api/internal/storage"
	apperrors "github.com/jwalitptl/medconnect-api/pkg/errors"
	"github.com/jwalitptl/medconnect-api/pkg/httputil"
	"github.com/jwalitptl/medconnect-api/pkg/logger"
)

const profilesDir = "profiles"

type Handler struct {
	svc      *auth.Service
	patients *patient.Service
	doctors  *doctor.Service
	storage  *storage.Local
	logger   *logger.Logger
}

func NewHandler(svc *auth.Service, patients *patient.Service, doctors *doctor.Service, store *storage.Local, log *logger.Logger) *Handler {
	return &Handler{
		svc:      svc,
		patients: patients,
		doctors:  doctors,
		storage:  store,
		logger:   log,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, m *middleware.AuthMiddleware) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/forgot-password", h.ForgotPassword)
		authGroup.POST("/reset-password", h.ResetPassword)

		authGroup.POST("/logout", m.Authenticate(), h.Logout)
		authGroup.POST("/register-doctor", m.Authenticate(), m.RequireRole(model.RoleAdmin), h.RegisterDoctor)
	}

	profile := r.Group("/profile", m.Authenticate())
	{
		profile.GET("", h.GetProfile)
		profile.PUT("", h.UpdateProfile)
		profile.POST("/image", m.RequireRole(model.RolePatient, model.RoleDoctor), h.UploadImage)
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	resp, err := h.svc.RegisterPatient(c.Request.Context(), req)
	handler.RespondCreated(c, resp, err)
}

func (h *Handler) RegisterDoctor(c *gin.Context) {
	var req model.RegisterDoctorRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	doc, err := h.svc.RegisterDoctor(c.Request.Context(), req)
	handler.RespondCreated(c, doc, err)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	resp, err := h.svc.Login(c.Request.Context(), req)
	handler.Respond(c, resp, err)
}

func (h *Handler) Logout(c *gin.Context) {
	if claims := middleware.Claims(c); claims != nil {
		h.svc.Logout(claims)
	}
	httputil.RespondWithMessage(c, "logged out")
}

func (h *Handler) ForgotPassword(c *gin.Context) {
	var req model.ForgotPasswordRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	err := h.svc.ForgotPassword(c.Request.Context(), req)
	handler.RespondMessage(c, "if the account exists a reset code has been sent", err)
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req model.ResetPasswordRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	err := h.svc.ResetPassword(c.Request.Context(), req)
	handler.RespondMessage(c, "password updated", err)
}

func (h *Handler) GetProfile(c *gin.Context) {
	profile, err := h.svc.GetProfile(c.Request.Context(), middleware.Actor(c))
	handler.Respond(c, profile, err)
}

// UpdateProfile edits the caller's own record; the body shape depends on
// the role.
func (h *Handler) UpdateProfile(c *gin.Context) {
	actor := middleware.Actor(c)
	ctx := c.Request.Context()

	switch actor.Role {
	case model.RolePatient:
		var req model.UpdatePatientRequest
		if !handler.BindJSON(c, &req) {
			return
		}
		p, err := h.patients.UpdateProfile(ctx, actor.ID, req)
		handler.Respond(c, p, err)
	case model.RoleDoctor:
		var req model.UpdateDoctorRequest
		if !handler.BindJSON(c, &req) {
			return
		}
		d, err := h.doctors.UpdateProfile(ctx, actor.ID, req)
		handler.Respond(c, d, err)
	default:
		httputil.RespondWithError(c, apperrors.BadRequest("admin profiles are not editable", nil))
	}
}

func (h *Handler) UploadImage(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("image file is required", err))
		return
	}
	if !strings.HasPrefix(fh.Header.Get("Content-Type"), "image/") {
		httputil.RespondWithError(c, apperrors.BadRequest("profile picture must be an image", nil))
		return
	}
	f, err := fh.Open()
	if err != nil {
		httputil.RespondWithError(c, apperrors.Internal(err))
		return
	}
	defer f.Close()

	url, _, err := h.storage.Save(profilesDir, fh.Filename, f)
	if errors.Is(err, storage.ErrTooLarge) {
		httputil.RespondWithError(c, apperrors.BadRequest("image exceeds the upload size limit", err))
		return
	}
	if err != nil {
		httputil.RespondWithError(c, apperrors.Internal(err))
		return
	}

	if err := h.svc.SetProfileImage(c.Request.Context(), middleware.Actor(c), url); err != nil {
		if rmErr := h.storage.Remove(url); rmErr != nil {
			h.logger.WithContext(c.Request.Context()).Error(rmErr, "Failed to remove orphaned profile image", "path", url)
		}
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"image": url})
}
