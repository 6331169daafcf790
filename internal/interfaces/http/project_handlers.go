package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"projectdesk/internal/application/service"
	"projectdesk/internal/domain/entity"
)

// CreateProjectRequest is the payload for POST /api/projects
type CreateProjectRequest struct {
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description"`
	ClientID    string     `json:"client_id" binding:"required"`
	Category    string     `json:"category"`
	Budget      string     `json:"budget"`
	ExpectedEnd *time.Time `json:"expected_completion_date"`
}

// CreateProject handles POST /api/projects
func (h *Handlers) CreateProject(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	project, err := h.services.Projects.Create(c.Request.Context(), service.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		ClientID:    req.ClientID,
		Category:    req.Category,
		Budget:      req.Budget,
		ExpectedEnd: req.ExpectedEnd,
	}, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, project)
}

// ListProjects handles GET /api/projects
func (h *Handlers) ListProjects(c *gin.Context) {
	projects, err := h.services.Projects.ListForUser(c.Request.Context(), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, projects)
}

// GetProject handles GET /api/projects/:id
func (h *Handlers) GetProject(c *gin.Context) {
	project, err := h.services.Projects.GetByID(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, project)
}

// RequestProjectStart handles POST /api/projects/:id/request-start
func (h *Handlers) RequestProjectStart(c *gin.Context) {
	if err := h.services.Projects.RequestStart(c.Request.Context(), c.Param("id"), actor(c)); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"requested": true})
}

// ApproveProject handles POST /api/projects/:id/approve
func (h *Handlers) ApproveProject(c *gin.Context) {
	project, err := h.services.Projects.Approve(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, project)
}

// CompleteProject handles POST /api/projects/:id/complete
func (h *Handlers) CompleteProject(c *gin.Context) {
	project, err := h.services.Projects.Complete(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, project)
}

// UpdateProjectStatusRequest is the payload for PATCH /api/projects/:id/status
type UpdateProjectStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateProjectStatus handles PATCH /api/projects/:id/status
func (h *Handlers) UpdateProjectStatus(c *gin.Context) {
	var req UpdateProjectStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	project, err := h.services.Projects.UpdateStatus(c.Request.Context(), c.Param("id"), entity.ProjectStatus(req.Status), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, project)
}

// AssignStaffRequest is the payload for POST /api/projects/:id/staff
type AssignStaffRequest struct {
	StaffID string `json:"staff_id" binding:"required"`
}

// AssignStaff handles POST /api/projects/:id/staff
func (h *Handlers) AssignStaff(c *gin.Context) {
	var req AssignStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if err := h.services.Projects.AssignStaff(c.Request.Context(), c.Param("id"), req.StaffID, actor(c)); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"assigned": true})
}

// RemoveStaff handles DELETE /api/projects/:id/staff/:staffId
func (h *Handlers) RemoveStaff(c *gin.Context) {
	if err := h.services.Projects.RemoveStaff(c.Request.Context(), c.Param("id"), c.Param("staffId"), actor(c)); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"removed": true})
}

// AddProjectUpdateRequest is the payload for POST /api/projects/:id/updates
type AddProjectUpdateRequest struct {
	Note     string `json:"note"`
	Progress int    `json:"progress"`
}

// AddProjectUpdate handles POST /api/projects/:id/updates
func (h *Handlers) AddProjectUpdate(c *gin.Context) {
	var req AddProjectUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	update, err := h.services.Projects.AddUpdate(c.Request.Context(), c.Param("id"), req.Note, req.Progress, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, update)
}

// ListProjectUpdates handles GET /api/projects/:id/updates
func (h *Handlers) ListProjectUpdates(c *gin.Context) {
	// visibility piggybacks on project access
	if _, err := h.services.Projects.GetByID(c.Request.Context(), c.Param("id"), actor(c)); err != nil {
		respondError(c, err)
		return
	}

	updates, err := h.services.Projects.ListUpdates(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, updates)
}
