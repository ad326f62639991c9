package record

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/medconnect-api/internal/handler"
	"github.com/jwalitptl/medconnect-api/internal/middleware"
	"github.com/jwalitptl/medconnect-api/internal/model"
	"github.com/jwalitptl/medconnect-api/internal/service/record"
	apperrors "github.com/jwalitptl/medconnect-api/pkg/errors"
	"github.com/jwalitptl/medconnect-api/pkg/httputil"
)

type Handler struct {
	service *record.Service
}

func NewHandler(service *record.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	g := r.Group("/records", auth.Authenticate())
	{
		g.POST("", auth.RequireRole(model.RolePatient), h.Upload)
		g.GET("", auth.RequireRole(model.RolePatient), h.List)
		g.DELETE("/:id", auth.RequireRole(model.RolePatient, model.RoleAdmin), h.Delete)
	}
}

// Upload takes a multipart form with a "file" part plus optional title and
// description fields.
func (h *Handler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("file is required", err))
		return
	}
	f, err := fh.Open()
	if err != nil {
		httputil.RespondWithError(c, apperrors.Internal(err))
		return
	}
	defer f.Close()

	rec, err := h.service.Create(c.Request.Context(), middleware.Actor(c).ID, record.Upload{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Body:        f,
	})
	handler.RespondCreated(c, rec, err)
}

func (h *Handler) List(c *gin.Context) {
	list, err := h.service.List(c.Request.Context(), middleware.Actor(c).ID)
	handler.Respond(c, list, err)
}

func (h *Handler) Delete(c *gin.Context) {
	err := h.service.Delete(c.Request.Context(), middleware.Actor(c), c.Param("id"))
	handler.RespondMessage(c, "record deleted", err)
}
