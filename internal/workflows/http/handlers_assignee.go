package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/workflows/service"
)

// SetDefaultAssignee upserts the default for a project and issue type.
// "assignee_id": null clears it; leaving the key out keeps the current one.
func (h *Handler) SetDefaultAssignee(c *gin.Context) {
	var body setDefaultAssigneeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	da, err := h.assignees.Set(c.Request.Context(), service.SetDefaultAssigneeInput{
		ProjectID:  body.ProjectID,
		IssueType:  body.IssueType,
		AssigneeID: body.AssigneeID,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"defaultAssignee": da})
}

func (h *Handler) ListDefaultAssignees(c *gin.Context) {
	pid, err := strconv.ParseInt(c.Query("project_id"), 10, 64)
	if err != nil || pid <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project_id is required"})
		return
	}

	list, err := h.assignees.List(c.Request.Context(), pid)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"defaultAssignees": list})
}

// AutoAssign applies the configured default assignee to an issue. A missing
// default is reported in the message, still with 200.
func (h *Handler) AutoAssign(c *gin.Context) {
	issueID, ok := parseID(c, "issue_id", "issue id")
	if !ok {
		return
	}

	res, err := h.assignees.Resolve(c.Request.Context(), issueID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := gin.H{"message": res.Message, "assigned": res.Assigned}
	if res.AssigneeID != nil {
		resp["assignee_id"] = *res.AssigneeID
	}
	c.JSON(http.StatusOK, resp)
}
