package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) AvailableTransitions(c *gin.Context) {
	issueID, ok := parseID(c, "issue_id", "issue id")
	if !ok {
		return
	}

	list, err := h.transitions.AvailableTransitions(c.Request.Context(), issueID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transitions": list})
}

// TransitionIssue moves an issue to to_status, answering 409 when no
// workflow of its project allows the move.
func (h *Handler) TransitionIssue(c *gin.Context) {
	issueID, ok := parseID(c, "issue_id", "issue id")
	if !ok {
		return
	}

	var body transitionIssueRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	issue, err := h.transitions.TransitionIssue(c.Request.Context(), issueID, body.ToStatus)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"issue": issue})
}
