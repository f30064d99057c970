package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"tripcrew/services"
)

// Pinger reports storage health; *database.Store satisfies it.
type Pinger interface {
	Ping() error
}

type Handler struct {
	Pipeline *services.Pipeline
	Resolver *services.AirportResolver
	Flights  *services.FlightSynthesizer
	Airports *services.AirportTable
	DB       Pinger
	Now      func() time.Time
}

// Register mounts every route on the /api group.
func (h *Handler) Register(api *gin.RouterGroup) {
	api.GET("/health", h.HealthHandler)
	api.POST("/plan", h.PlanHandler)
	api.POST("/plan/pdf", h.DownloadHandler)
	api.GET("/airports/resolve", h.ResolveHandler)
	api.GET("/flights", h.SearchHandler)
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}
