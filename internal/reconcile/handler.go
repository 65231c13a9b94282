package reconcile

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"iotplatform-backend/internal/shared/server/respond"
)

// Handler receives completion callbacks from the external service. The
// route is exempt from tenant auth, so the organization is resolved here:
// the X-Org-Id header when present, else a configured default.
type Handler struct {
	Svc *Service

	// DefaultOrgID attributes callbacks that carry no tenant header.
	DefaultOrgID string
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, defaultOrgID string) *Handler {
	return &Handler{Svc: svc, DefaultOrgID: defaultOrgID}
}

// RegisterRoutes attaches the callback route to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/pdf/callback", h.callback)
}

func (h *Handler) callback(c *gin.Context) {
	orgID := strings.TrimSpace(c.GetHeader("X-Org-Id"))
	if orgID == "" {
		orgID = h.DefaultOrgID
	}
	if orgID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "callback organization could not be resolved", nil)
		return
	}

	var cb Callback
	if err := c.ShouldBindJSON(&cb); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid callback body", nil)
		return
	}

	result, err := h.Svc.Reconcile(c.Request.Context(), orgID, cb)
	if err != nil {
		if errors.Is(err, ErrInvalidCallback) {
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
			return
		}
		// Non-2xx tells the external service to retry the whole callback.
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to apply callback", nil)
		return
	}

	switch result.Outcome {
	case OutcomeCompleted:
		respond.JSON(c, http.StatusOK, gin.H{
			"success":  true,
			"message":  "PDF updated successfully",
			"pdfId":    result.DocumentID,
			"deviceId": result.DeviceID,
		})
	case OutcomeFailed:
		resp := gin.H{
			"success": false,
			"message": "PDF processing failed",
		}
		if result.DocumentID != "" {
			resp["pdfId"] = result.DocumentID
		}
		if result.DeviceID != "" {
			resp["deviceId"] = result.DeviceID
		}
		respond.JSON(c, http.StatusOK, resp)
	default:
		// A callback nothing matches is an operational signal, not a client
		// error. 200 stops the external service from retrying forever.
		respond.JSON(c, http.StatusOK, gin.H{
			"success": false,
			"message": result.Message,
		})
	}
}
