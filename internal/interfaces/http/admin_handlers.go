package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"projectdesk/internal/application/port"
	"projectdesk/internal/application/service"
	"projectdesk/internal/domain/apperror"
	"projectdesk/internal/domain/entity"
)

// ListActivity handles GET /api/admin/activity
func (h *Handlers) ListActivity(c *gin.Context) {
	if actor(c).Role != entity.RoleAdmin {
		respondError(c, apperror.Forbidden("insufficient permissions"))
		return
	}

	filter := port.AuditFilter{
		Entity:  entity.AuditEntityType(c.Query("entity")),
		ActorID: c.Query("actor_id"),
	}
	if raw := c.Query("from"); raw != "" {
		if from, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.From = &from
		}
	}
	if raw := c.Query("to"); raw != "" {
		if to, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.To = &to
		}
	}
	if page, err := strconv.Atoi(c.Query("page")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		filter.Limit = limit
	}

	page, err := h.services.Audit.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, page)
}

// CreateUserRequest is the payload for POST /api/admin/users
type CreateUserRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required"`
	Role        string `json:"role" binding:"required"`
	CompanyName string `json:"company_name"`
	Department  string `json:"department"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
}

// CreateUser handles POST /api/admin/users
func (h *Handlers) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	user, err := h.services.Users.Create(c.Request.Context(), service.CreateUserInput{
		Name:        req.Name,
		Email:       req.Email,
		Role:        entity.Role(req.Role),
		CompanyName: req.CompanyName,
		Department:  req.Department,
		Address:     req.Address,
		Phone:       req.Phone,
	}, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, user)
}

// ListUsers handles GET /api/admin/users. An optional role query narrows
// the listing.
func (h *Handlers) ListUsers(c *gin.Context) {
	if role := c.Query("role"); role != "" {
		users, err := h.services.Users.ListByRole(c.Request.Context(), entity.Role(role), actor(c))
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, users)
		return
	}

	users, err := h.services.Users.List(c.Request.Context(), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, users)
}

// ListNotifications handles GET /api/notifications
func (h *Handlers) ListNotifications(c *gin.Context) {
	unreadOnly := c.Query("unread") == "true"

	notifications, err := h.services.Notification.ListForUser(c.Request.Context(), actor(c).ID, unreadOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, notifications)
}

// MarkNotificationRead handles POST /api/notifications/:id/read
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	if err := h.services.Notification.MarkRead(c.Request.Context(), c.Param("id"), actor(c).ID); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"read": true})
}
