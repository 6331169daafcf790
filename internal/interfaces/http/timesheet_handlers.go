package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"projectdesk/internal/application/port"
	"projectdesk/internal/application/service"
	"projectdesk/internal/domain/entity"
)

// CreateTimesheetRequest is the payload for POST /api/timesheets
type CreateTimesheetRequest struct {
	ProjectID string    `json:"project_id" binding:"required"`
	EntryDate time.Time `json:"entry_date" binding:"required"`
	Hours     string    `json:"hours" binding:"required"`
	Notes     string    `json:"notes"`
}

// CreateTimesheet handles POST /api/timesheets
func (h *Handlers) CreateTimesheet(c *gin.Context) {
	var req CreateTimesheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	entry, err := h.services.Timesheets.Create(c.Request.Context(), service.CreateTimesheetInput{
		ProjectID: req.ProjectID,
		EntryDate: req.EntryDate,
		Hours:     req.Hours,
		Notes:     req.Notes,
	}, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, entry)
}

// timesheetFilter builds the listing filter from query parameters
func timesheetFilter(c *gin.Context) port.TimesheetFilter {
	filter := port.TimesheetFilter{
		ProjectID: c.Query("project_id"),
		StaffID:   c.Query("staff_id"),
		Status:    entity.TimesheetStatus(c.Query("status")),
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
	return filter
}

// ListTimesheets handles GET /api/timesheets
func (h *Handlers) ListTimesheets(c *gin.Context) {
	entries, err := h.services.Timesheets.List(c.Request.Context(), timesheetFilter(c), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, entries)
}

// ApproveTimesheet handles POST /api/timesheets/:id/approve
func (h *Handlers) ApproveTimesheet(c *gin.Context) {
	entry, err := h.services.Timesheets.Approve(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, entry)
}

// RejectTimesheet handles POST /api/timesheets/:id/reject
func (h *Handlers) RejectTimesheet(c *gin.Context) {
	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	entry, err := h.services.Timesheets.Reject(c.Request.Context(), c.Param("id"), req.Reason, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, entry)
}

// DeleteTimesheet handles DELETE /api/timesheets/:id
func (h *Handlers) DeleteTimesheet(c *gin.Context) {
	if err := h.services.Timesheets.Delete(c.Request.Context(), c.Param("id"), actor(c)); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"deleted": true})
}

// ExportTimesheets handles GET /api/timesheets/export
func (h *Handlers) ExportTimesheets(c *gin.Context) {
	content, name, err := h.services.Timesheets.Export(c.Request.Context(), timesheetFilter(c), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", content)
}
