package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"projectdesk/internal/application/service"
	"projectdesk/internal/domain/entity"
)

// UploadDocument handles POST /api/documents. The payload is a multipart
// form carrying the file plus project_id, name and category fields.
func (h *Handlers) UploadDocument(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondBadRequest(c, "missing file")
		return
	}

	projectID := c.PostForm("project_id")
	name := c.PostForm("name")
	if projectID == "" || name == "" {
		respondBadRequest(c, "project_id and name are required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondBadRequest(c, "unreadable file")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		respondBadRequest(c, "unreadable file")
		return
	}

	document, err := h.services.Documents.Upload(c.Request.Context(), service.UploadDocumentInput{
		ProjectID: projectID,
		Name:      name,
		Category:  entity.DocumentCategory(c.PostForm("category")),
		FileName:  fileHeader.Filename,
		Content:   content,
	}, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, document)
}

// ListDocumentGroups handles GET /api/projects/:id/document-groups
func (h *Handlers) ListDocumentGroups(c *gin.Context) {
	groups, err := h.services.Documents.ListGroups(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, groups)
}

// ListLatestDocuments handles GET /api/projects/:id/documents
func (h *Handlers) ListLatestDocuments(c *gin.Context) {
	documents, err := h.services.Documents.ListLatest(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, documents)
}

// ListDocumentVersions handles GET /api/document-groups/:groupId/versions
func (h *Handlers) ListDocumentVersions(c *gin.Context) {
	versions, err := h.services.Documents.ListVersions(c.Request.Context(), c.Param("groupId"), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, versions)
}

// DownloadDocument handles GET /api/documents/:id/download
func (h *Handlers) DownloadDocument(c *gin.Context) {
	content, name, err := h.services.Documents.Download(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/octet-stream", content)
}
