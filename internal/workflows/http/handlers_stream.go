package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/logging"
	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/workflows/domain"
)

const keepAliveInterval = 15 * time.Second

// StreamWorkflowEvents streams change events for a workflow using Server-Sent Events (SSE).
// The stream ends when the client disconnects or the workflow is deleted.
func (h *Handler) StreamWorkflowEvents(c *gin.Context) {
	id, ok := parseID(c, "id", "workflow id")
	if !ok {
		return
	}
	if h.events == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event stream unavailable"})
		return
	}

	ctx := c.Request.Context()
	w, err := h.workflows.Get(ctx, id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	events, err := h.events.Events(ctx, id)
	if err != nil {
		logging.FromContext(ctx).WithError(err).Error("subscribe to workflow events failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event stream unavailable"})
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering

	if writeEvent(c, "initial", gin.H{"workflow": w}) {
		flusher.Flush()
	}

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()
		case ev, ok := <-events:
			if !ok {
				return
			}
			if writeEvent(c, ev.Action, ev) {
				flusher.Flush()
			}
			if ev.Action == domain.ActionDeleted {
				return
			}
		}
	}
}

// writeEvent reports whether a frame was written. Unencodable payloads are
// logged and skipped.
func writeEvent(c *gin.Context, name string, payload any) bool {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.FromContext(c.Request.Context()).WithError(err).WithField("event", name).Error("encode workflow event failed")
		return false
	}
	fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", name, data)
	return true
}
