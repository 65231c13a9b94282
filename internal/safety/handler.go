package safety

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"iotplatform-backend/internal/shared/server/middleware"
	"iotplatform-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the repo.
type Handler struct {
	Repo Repo
}

// NewHandler constructs a Handler.
func NewHandler(repo Repo) *Handler {
	return &Handler{Repo: repo}
}

// RegisterRoutes attaches safety precaution routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/safety-precautions", h.create)
	rg.GET("/safety-precautions", h.list)
	rg.GET("/devices/:id/safety-precautions", h.listByDevice)
	rg.DELETE("/safety-precautions/:id", h.delete)
}

type createRequest struct {
	DeviceID    string `json:"deviceId" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Severity    string `json:"severity"`
}

// create goes through the same upsert as reconciliation, so posting an
// existing (device, title) pair updates it instead of minting a duplicate.
func (h *Handler) create(c *gin.Context) {
	orgID := middleware.OrgIDFromContext(c)

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "deviceId and title are required", nil)
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "deviceId and title are required", nil)
		return
	}

	now := time.Now().UTC()
	precaution := Precaution{
		ID:             uuid.NewString(),
		OrganizationID: orgID,
		DeviceID:       strings.TrimSpace(req.DeviceID),
		Title:          title,
		Description:    req.Description,
		Category:       req.Category,
		Severity:       req.Severity,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	created, err := h.Repo.UpsertByDeviceAndTitle(c.Request.Context(), precaution)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to save safety precaution", nil)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	} else {
		// The upsert updated an existing row; report its canonical id.
		if list, err := h.Repo.ListByDevice(c.Request.Context(), orgID, precaution.DeviceID); err == nil {
			for _, existing := range list {
				if existing.Title == precaution.Title {
					precaution = existing
					break
				}
			}
		}
	}
	respond.JSON(c, status, toResponse(precaution))
}

type precautionResponse struct {
	ID          string    `json:"id"`
	DeviceID    string    `json:"deviceId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Severity    string    `json:"severity"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toResponse(p Precaution) precautionResponse {
	return precautionResponse{
		ID:          p.ID,
		DeviceID:    p.DeviceID,
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		Severity:    p.Severity,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (h *Handler) list(c *gin.Context) {
	orgID := middleware.OrgIDFromContext(c)

	list, err := h.Repo.ListByOrg(c.Request.Context(), orgID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list safety precautions", nil)
		return
	}

	resp := make([]precautionResponse, 0, len(list))
	for _, p := range list {
		resp = append(resp, toResponse(p))
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) listByDevice(c *gin.Context) {
	orgID := middleware.OrgIDFromContext(c)

	list, err := h.Repo.ListByDevice(c.Request.Context(), orgID, c.Param("id"))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list safety precautions", nil)
		return
	}

	resp := make([]precautionResponse, 0, len(list))
	for _, p := range list {
		resp = append(resp, toResponse(p))
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) delete(c *gin.Context) {
	orgID := middleware.OrgIDFromContext(c)

	if err := h.Repo.Delete(c.Request.Context(), orgID, c.Param("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "safety precaution not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete safety precaution", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"success": true})
}
