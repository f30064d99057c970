package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tripcrew/services"
)

// PlanHandler runs the planning pipeline and streams every StageEvent to the
// client as a Server-Sent Event named after the event type.
func (h *Handler) PlanHandler(c *gin.Context) {
	var req services.TripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	req.Origin = strings.TrimSpace(req.Origin)
	req.Destination = strings.TrimSpace(req.Destination)
	if req.People <= 0 {
		req.People = 1
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	for ev := range h.Pipeline.Run(c.Request.Context(), req) {
		c.SSEvent(string(ev.Type), ev)
		c.Writer.Flush()
		if ev.Type == services.EventError {
			log.Printf("⚠️  Plan %s → %s stopped: %s failed: %s", req.Origin, req.Destination, ev.Agent, ev.Text())
		}
	}
}
