package generation

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"iotplatform-backend/internal/documents"
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

// RegisterRoutes attaches one dispatch route per generation kind.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/pdf/generate-rules", h.dispatch(KindRules))
	rg.POST("/pdf/generate-maintenance", h.dispatch(KindMaintenance))
	rg.POST("/pdf/generate-safety", h.dispatch(KindSafety))
}

type dispatchRequest struct {
	PDFName  string `json:"pdfName"`
	DeviceID string `json:"deviceId"`
}

func (h *Handler) dispatch(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := middleware.OrgIDFromContext(c)

		var req dispatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
			return
		}
		req.PDFName = strings.TrimSpace(req.PDFName)
		if req.PDFName == "" {
			respond.Error(c, http.StatusBadRequest, "validation_error", "pdfName is required", nil)
			return
		}

		task, err := h.Svc.Dispatch(c.Request.Context(), orgID, kind, req.PDFName, strings.TrimSpace(req.DeviceID))
		if err != nil {
			switch {
			case errors.Is(err, documents.ErrNotFound):
				respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
			case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidKind):
				respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
			case errors.Is(err, ErrExternalService):
				respond.Error(c, http.StatusBadGateway, "external_service_error", "document-intelligence service unavailable", nil)
			default:
				respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to dispatch generation", nil)
			}
			return
		}

		respond.JSON(c, http.StatusAccepted, task)
	}
}
