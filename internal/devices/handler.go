package devices

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"iotplatform-backend/internal/shared/server/middleware"
	"iotplatform-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches device routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/devices", h.create)
	rg.GET("/devices", h.list)
	rg.GET("/devices/:id", h.get)
}

type createRequest struct {
	Name       string `json:"name" binding:"required"`
	DeviceType string `json:"deviceType"`
	Location   string `json:"location"`
}

func (h *Handler) create(c *gin.Context) {
	orgID := middleware.OrgIDFromContext(c)

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "name is required", nil)
		return
	}

	device, err := h.Svc.Register(c.Request.Context(), orgID, req.Name, req.DeviceType, req.Location)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to register device", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, toResponse(device))
}

func (h *Handler) list(c *gin.Context) {
	orgID := middleware.OrgIDFromContext(c)

	devs, err := h.Svc.List(c.Request.Context(), orgID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list devices", nil)
		return
	}

	out := make([]gin.H, 0, len(devs))
	for _, device := range devs {
		out = append(out, toResponse(device))
	}
	respond.OK(c, out)
}

func (h *Handler) get(c *gin.Context) {
	orgID := middleware.OrgIDFromContext(c)

	device, err := h.Svc.Get(c.Request.Context(), orgID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "device not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch device", nil)
		}
		return
	}

	respond.OK(c, toResponse(device))
}

func toResponse(device Device) gin.H {
	return gin.H{
		"deviceId":   device.ID,
		"name":       device.Name,
		"deviceType": device.DeviceType,
		"location":   device.Location,
		"status":     device.Status,
		"createdAt":  device.CreatedAt,
	}
}
