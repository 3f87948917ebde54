package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/workflows/templates"
)

func (h *Handler) ListTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"templates": templates.ListTemplates()})
}

// GetTemplate matches the name case-insensitively.
func (h *Handler) GetTemplate(c *gin.Context) {
	tpl, ok := templates.Find(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"template": tpl})
}
