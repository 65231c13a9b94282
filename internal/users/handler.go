package users

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

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches user directory routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/users", h.create)
	rg.GET("/users", h.list)
	rg.GET("/users/:id", h.get)
}

type createRequest struct {
	Email string `json:"email" binding:"required"`
	Name  string `json:"name"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func toResponse(user User) userResponse {
	return userResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
	}
}

func (h *Handler) create(c *gin.Context) {
	orgID := middleware.OrgIDFromContext(c)

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "email is required", nil)
		return
	}

	user := User{
		ID:             uuid.NewString(),
		OrganizationID: orgID,
		Email:          strings.TrimSpace(req.Email),
		Name:           strings.TrimSpace(req.Name),
		CreatedAt:      time.Now().UTC(),
	}
	if err := h.Svc.Repo.Create(c.Request.Context(), user); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create user", nil)
		return
	}

	respond.JSON(c, http.StatusCreated, toResponse(user))
}

func (h *Handler) get(c *gin.Context) {
	orgID := middleware.OrgIDFromContext(c)

	user, err := h.Svc.Get(c.Request.Context(), orgID, c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "user not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch user", nil)
		return
	}

	respond.JSON(c, http.StatusOK, toResponse(user))
}

func (h *Handler) list(c *gin.Context) {
	orgID := middleware.OrgIDFromContext(c)

	list, err := h.Svc.List(c.Request.Context(), orgID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list users", nil)
		return
	}

	resp := make([]userResponse, 0, len(list))
	for _, user := range list {
		resp = append(resp, toResponse(user))
	}
	respond.JSON(c, http.StatusOK, resp)
}
