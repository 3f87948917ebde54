package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/workflows/domain"
	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/workflows/export"
	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/workflows/service"
	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/workflows/templates"
)

// CreateWorkflow creates a workflow from an explicit definition or a template.
func (h *Handler) CreateWorkflow(c *gin.Context) {
	var body createWorkflowRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	// an unknown template is a no-op; validation then reports what is missing
	if body.Template != "" && body.Statuses == nil && body.Transitions == nil {
		if statuses, transitions, ok := templates.ApplyTemplate(body.Template); ok {
			body.Statuses, body.Transitions = statuses, transitions
		}
	}

	w, warnings, err := h.workflows.Create(c.Request.Context(), service.CreateWorkflowInput{
		Name:        body.Name,
		Description: body.Description,
		ProjectID:   body.ProjectID,
		Statuses:    body.Statuses,
		Transitions: body.Transitions,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := gin.H{"workflow": w}
	if len(warnings) > 0 {
		resp["warnings"] = warnings
	}
	c.JSON(http.StatusCreated, resp)
}

// ListWorkflows lists every workflow, or one project's with ?project_id=.
func (h *Handler) ListWorkflows(c *gin.Context) {
	var filter domain.ListFilter
	if raw := c.Query("project_id"); raw != "" {
		pid, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || pid <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project_id"})
			return
		}
		filter.ProjectID = pid
	}

	list, err := h.workflows.List(c.Request.Context(), filter)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"workflows": list})
}

func (h *Handler) GetWorkflow(c *gin.Context) {
	id, ok := parseID(c, "id", "workflow id")
	if !ok {
		return
	}

	w, err := h.workflows.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"workflow": w})
}

// ExportWorkflow downloads the definition as YAML (default) or JSON.
func (h *Handler) ExportWorkflow(c *gin.Context) {
	id, ok := parseID(c, "id", "workflow id")
	if !ok {
		return
	}

	format := c.DefaultQuery("format", export.FormatYAML)
	out, contentType, err := h.workflows.Export(c.Request.Context(), id, format)
	if err != nil {
		h.writeError(c, err)
		return
	}

	ext := export.FormatYAML
	if contentType == export.ContentTypeJSON {
		ext = export.FormatJSON
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="workflow-%d.%s"`, id, ext))
	c.Data(http.StatusOK, contentType, out)
}

func (h *Handler) UpdateWorkflow(c *gin.Context) {
	id, ok := parseID(c, "id", "workflow id")
	if !ok {
		return
	}

	var body updateWorkflowRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	w, warnings, err := h.workflows.Update(c.Request.Context(), id, service.UpdateWorkflowInput{
		Name:        body.Name,
		Description: body.Description,
		Statuses:    body.Statuses,
		Transitions: body.Transitions,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := gin.H{"workflow": w}
	if len(warnings) > 0 {
		resp["warnings"] = warnings
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) DeleteWorkflow(c *gin.Context) {
	id, ok := parseID(c, "id", "workflow id")
	if !ok {
		return
	}

	if err := h.workflows.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Workflow deleted successfully"})
}
