package maintenance

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"iotplatform-backend/internal/shared/server/middleware"
	"iotplatform-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service

	// UpcomingWindowDays is the default span for the upcoming query.
	UpcomingWindowDays int
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, upcomingWindowDays int) *Handler {
	if upcomingWindowDays <= 0 {
		upcomingWindowDays = 30
	}
	return &Handler{Svc: svc, UpcomingWindowDays: upcomingWindowDays}
}

// RegisterRoutes attaches maintenance routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/maintenance", h.create)
	rg.GET("/maintenance", h.list)
	rg.GET("/maintenance/today", h.today)
	rg.GET("/maintenance/tomorrow", h.tomorrow)
	rg.GET("/maintenance/upcoming", h.upcoming)
	rg.GET("/maintenance/overdue", h.overdue)
	rg.GET("/maintenance/recently-completed", h.recentlyCompleted)
	rg.POST("/maintenance/backfill-device-names", h.backfill)
	rg.GET("/maintenance/:id", h.get)
	rg.PUT("/maintenance/:id", h.update)
	rg.DELETE("/maintenance/:id", h.delete)
	rg.POST("/maintenance/:id/complete", h.complete)
	rg.POST("/maintenance/:id/assign", h.assign)
	rg.POST("/devices/:id/maintenance/remove-duplicates", h.removeDuplicates)
}

type createRequest struct {
	DeviceID        string `json:"deviceId" binding:"required"`
	TaskName        string `json:"taskName" binding:"required"`
	ComponentName   string `json:"componentName"`
	MaintenanceType string `json:"maintenanceType"`
	Frequency       string `json:"frequency"`
	NextMaintenance string `json:"nextMaintenance"`
	Priority        string `json:"priority"`
	Description     string `json:"description"`
	Notes           string `json:"notes"`
}

func (h *Handler) create(c *gin.Context) {
	orgID := middleware.OrgIDFromContext(c)

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	task := Task{
		OrganizationID:  orgID,
		DeviceID:        strings.TrimSpace(req.DeviceID),
		TaskName:        req.TaskName,
		ComponentName:   req.ComponentName,
		MaintenanceType: req.MaintenanceType,
		Frequency:       req.Frequency,
		Priority:        req.Priority,
		Description:     req.Description,
		Notes:           req.Notes,
	}
	if req.NextMaintenance != "" {
		parsed, err := time.Parse(dateLayout, req.NextMaintenance)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "nextMaintenance must be YYYY-MM-DD", nil)
			return
		}
		task.NextMaintenance = parsed
	}

	created, err := h.Svc.Create(c.Request.Context(), task)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create maintenance task", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, toResponse(created))
}

func (h *Handler) list(c *gin.Context) {
	orgID := middleware.OrgIDFromContext(c)

	var (
		tasks []Task
		err   error
	)
	if deviceID := strings.TrimSpace(c.Query("deviceId")); deviceID != "" {
		tasks, err = h.Svc.ListByDevice(c.Request.Context(), orgID, deviceID)
	} else {
		tasks, err = h.Svc.List(c.Request.Context(), orgID)
	}
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list maintenance tasks", nil)
		return
	}

	respond.JSON(c, http.StatusOK, toResponses(tasks))
}

func (h *Handler) get(c *gin.Context) {
	orgID := middleware.OrgIDFromContext(c)

	task, err := h.Svc.Get(c.Request.Context(), orgID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "maintenance task not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch maintenance task", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, toResponse(task))
}

type updateRequest struct {
	TaskName        *string `json:"taskName"`
	ComponentName   *string `json:"componentName"`
	MaintenanceType *string `json:"maintenanceType"`
	Frequency       *string `json:"frequency"`
	NextMaintenance *string `json:"nextMaintenance"`
	Priority        *string `json:"priority"`
	Description     *string `json:"description"`
	Notes           *string `json:"notes"`
}

func (h *Handler) update(c *gin.Context) {
	orgID := middleware.OrgIDFromContext(c)

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	patch := TaskPatch{
		TaskName:        req.TaskName,
		ComponentName:   req.ComponentName,
		MaintenanceType: req.MaintenanceType,
		Frequency:       req.Frequency,
		Priority:        req.Priority,
		Description:     req.Description,
		Notes:           req.Notes,
	}
	if req.NextMaintenance != nil {
		parsed, err := time.Parse(dateLayout, *req.NextMaintenance)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "nextMaintenance must be YYYY-MM-DD", nil)
			return
		}
		patch.NextMaintenance = &parsed
	}

	task, err := h.Svc.UpdateDetails(c.Request.Context(), orgID, c.Param("id"), patch)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "maintenance task not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update maintenance task", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, toResponse(task))
}

func (h *Handler) delete(c *gin.Context) {
	orgID := middleware.OrgIDFromContext(c)

	if err := h.Svc.Delete(c.Request.Context(), orgID, c.Param("id")); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "maintenance task not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete maintenance task", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"success": true})
}

func (h *Handler) complete(c *gin.Context) {
	orgID := middleware.OrgIDFromContext(c)
	userID := middleware.UserIDFromContext(c)

	task, err := h.Svc.Complete(c.Request.Context(), orgID, c.Param("id"), userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "maintenance task not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to complete maintenance task", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"success":             true,
		"message":             "maintenance task completed",
		"maintenanceTask":     toResponse(task),
		"nextMaintenanceDate": task.NextMaintenance.Format(dateLayout),
		"completedBy":         userID,
	})
}

type assignRequest struct {
	AssigneeID string `json:"assigneeId" binding:"required"`
}

func (h *Handler) assign(c *gin.Context) {
	orgID := middleware.OrgIDFromContext(c)
	actorID := middleware.UserIDFromContext(c)

	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "assigneeId is required", nil)
		return
	}

	task, err := h.Svc.Assign(c.Request.Context(), orgID, c.Param("id"), strings.TrimSpace(req.AssigneeID), actorID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "maintenance task not found", nil)
		case errors.Is(err, ErrAssigneeNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "assignee not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to assign maintenance task", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, toResponse(task))
}

func (h *Handler) today(c *gin.Context) {
	h.window(c, func(orgID string) ([]Task, error) {
		return h.Svc.Today(c.Request.Context(), orgID)
	})
}

func (h *Handler) tomorrow(c *gin.Context) {
	h.window(c, func(orgID string) ([]Task, error) {
		return h.Svc.Tomorrow(c.Request.Context(), orgID)
	})
}

func (h *Handler) upcoming(c *gin.Context) {
	days := h.UpcomingWindowDays
	if v := c.Query("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			respond.Error(c, http.StatusBadRequest, "validation_error", "days must be a positive integer", nil)
			return
		}
		days = parsed
	}
	h.window(c, func(orgID string) ([]Task, error) {
		return h.Svc.NextNDays(c.Request.Context(), orgID, days)
	})
}

func (h *Handler) overdue(c *gin.Context) {
	h.window(c, func(orgID string) ([]Task, error) {
		return h.Svc.Overdue(c.Request.Context(), orgID)
	})
}

func (h *Handler) recentlyCompleted(c *gin.Context) {
	days := 7
	if v := c.Query("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			respond.Error(c, http.StatusBadRequest, "validation_error", "days must be a positive integer", nil)
			return
		}
		days = parsed
	}
	h.window(c, func(orgID string) ([]Task, error) {
		return h.Svc.RecentlyCompleted(c.Request.Context(), orgID, days)
	})
}

func (h *Handler) window(c *gin.Context, query func(orgID string) ([]Task, error)) {
	orgID := middleware.OrgIDFromContext(c)

	tasks, err := query(orgID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to query maintenance window", nil)
		return
	}
	respond.JSON(c, http.StatusOK, toResponses(tasks))
}

func (h *Handler) removeDuplicates(c *gin.Context) {
	orgID := middleware.OrgIDFromContext(c)

	removed, err := h.Svc.RemoveDuplicates(c.Request.Context(), orgID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to remove duplicates", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"success": true, "removed": removed})
}

func (h *Handler) backfill(c *gin.Context) {
	orgID := middleware.OrgIDFromContext(c)

	updated, err := h.Svc.BackfillDeviceNames(c.Request.Context(), orgID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to backfill device names", nil)
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"success": true, "updated": updated})
}
