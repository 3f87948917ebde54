package http

import "github.com/gin-gonic/gin"

// Register registers the workflow routes on the /api/workflows group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/templates", h.ListTemplates)
	rg.GET("/templates/:name", h.GetTemplate)

	rg.POST("/default-assignee", h.SetDefaultAssignee)
	rg.GET("/default-assignee", h.ListDefaultAssignees)
	rg.POST("/auto-assign/:issue_id", h.AutoAssign)

	rg.GET("/issues/:issue_id/transitions", h.AvailableTransitions)
	rg.POST("/issues/:issue_id/transition", h.TransitionIssue)

	rg.POST("", h.CreateWorkflow)
	rg.GET("", h.ListWorkflows)
	rg.GET("/:id", h.GetWorkflow)
	rg.GET("/:id/export", h.ExportWorkflow)
	rg.GET("/:id/events", h.StreamWorkflowEvents)
	rg.PUT("/:id", h.UpdateWorkflow)
	rg.DELETE("/:id", h.DeleteWorkflow)
}
