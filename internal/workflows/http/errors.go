package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/logging"
	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/workflows/domain"
)

// writeError maps domain errors onto status codes. Validator rejections keep
// every message so the client can show each one.
func (h *Handler) writeError(c *gin.Context, err error) {
	var (
		structure  *domain.StructureError
		validation *domain.ValidationError
	)
	switch {
	case errors.As(err, &structure):
		c.JSON(http.StatusBadRequest, gin.H{"errors": structure.Errors})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrTransitionNotAllowed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logging.FromContext(c.Request.Context()).
			WithError(err).
			WithField("path", c.FullPath()).
			Error("request failed")
		msg := "internal server error"
		if !h.production {
			msg = err.Error()
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

// parseID reads a positive integer path parameter, writing a 400 when it is not one.
func parseID(c *gin.Context, param, label string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + label})
		return 0, false
	}
	return id, true
}
