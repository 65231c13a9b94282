package rules

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

// Handler wires HTTP handlers to the repo. Rules have no business logic of
// their own beyond the reconciliation upsert, so no service layer sits here.
type Handler struct {
	Repo Repo
}

// NewHandler constructs a Handler.
func NewHandler(repo Repo) *Handler {
	return &Handler{Repo: repo}
}

// RegisterRoutes attaches rule routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/rules", h.create)
	rg.GET("/rules", h.list)
	rg.GET("/devices/:id/rules", h.listByDevice)
	rg.DELETE("/rules/:id", h.delete)
}

type createRequest struct {
	DeviceID  string `json:"deviceId" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Condition string `json:"condition"`
	Action    string `json:"action"`
	Priority  string `json:"priority"`
}

// create goes through the same upsert as reconciliation, so posting an
// existing (device, name) pair updates it instead of minting a duplicate.
func (h *Handler) create(c *gin.Context) {
	orgID := middleware.OrgIDFromContext(c)

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "deviceId and name are required", nil)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "deviceId and name are required", nil)
		return
	}

	now := time.Now().UTC()
	rule := Rule{
		ID:             uuid.NewString(),
		OrganizationID: orgID,
		DeviceID:       strings.TrimSpace(req.DeviceID),
		Name:           name,
		Condition:      req.Condition,
		Action:         req.Action,
		Priority:       req.Priority,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	created, err := h.Repo.UpsertByDeviceAndName(c.Request.Context(), rule)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to save rule", nil)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	} else {
		// The upsert updated an existing row; report its canonical id.
		if list, err := h.Repo.ListByDevice(c.Request.Context(), orgID, rule.DeviceID); err == nil {
			for _, existing := range list {
				if existing.Name == rule.Name {
					rule = existing
					break
				}
			}
		}
	}
	respond.JSON(c, status, toResponse(rule))
}

type ruleResponse struct {
	ID        string    `json:"id"`
	DeviceID  string    `json:"deviceId"`
	Name      string    `json:"name"`
	Condition string    `json:"condition"`
	Action    string    `json:"action"`
	Priority  string    `json:"priority"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toResponse(rule Rule) ruleResponse {
	return ruleResponse{
		ID:        rule.ID,
		DeviceID:  rule.DeviceID,
		Name:      rule.Name,
		Condition: rule.Condition,
		Action:    rule.Action,
		Priority:  rule.Priority,
		CreatedAt: rule.CreatedAt,
		UpdatedAt: rule.UpdatedAt,
	}
}

func (h *Handler) list(c *gin.Context) {
	orgID := middleware.OrgIDFromContext(c)

	list, err := h.Repo.ListByOrg(c.Request.Context(), orgID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list rules", nil)
		return
	}

	resp := make([]ruleResponse, 0, len(list))
	for _, rule := range list {
		resp = append(resp, toResponse(rule))
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) listByDevice(c *gin.Context) {
	orgID := middleware.OrgIDFromContext(c)

	list, err := h.Repo.ListByDevice(c.Request.Context(), orgID, c.Param("id"))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list rules", nil)
		return
	}

	resp := make([]ruleResponse, 0, len(list))
	for _, rule := range list {
		resp = append(resp, toResponse(rule))
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) delete(c *gin.Context) {
	orgID := middleware.OrgIDFromContext(c)

	if err := h.Repo.Delete(c.Request.Context(), orgID, c.Param("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "rule not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete rule", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"success": true})
}
