package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"tripcrew/services"
)

const defaultMaxResults = 5

type SearchResponse struct {
	Origin      string                  `json:"origin"`
	Destination string                  `json:"destination"`
	Flights     []services.FlightOption `json:"flights"`
	Currency    string                  `json:"currency,omitempty"`
	Error       string                  `json:"error,omitempty"`
}

type ResolveResponse struct {
	Query string `json:"query"`
	Code  string `json:"code"`
	City  string `json:"city"`
	Name  string `json:"name"`
}

// SearchHandler resolves free-text origin/destination to airports and
// returns synthesized flight estimates between them.
func (h *Handler) SearchHandler(c *gin.Context) {
	origin := strings.TrimSpace(c.Query("origin"))
	destination := strings.TrimSpace(c.Query("destination"))
	if origin == "" || destination == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "origin and destination are required"})
		return
	}

	maxResults := defaultMaxResults
	if v := strings.TrimSpace(c.Query("max_results")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "max_results must be a positive integer"})
			return
		}
		maxResults = n
	}

	ctx := c.Request.Context()
	notFound := SearchResponse{Origin: origin, Destination: destination, Flights: []services.FlightOption{}, Error: "Airport not found"}

	originCode, ok := h.Resolver.Resolve(ctx, origin)
	if !ok {
		c.JSON(http.StatusNotFound, notFound)
		return
	}
	destCode, ok := h.Resolver.Resolve(ctx, destination)
	if !ok {
		c.JSON(http.StatusNotFound, notFound)
		return
	}

	result, err := h.Flights.Search(ctx, originCode, destCode, maxResults)
	if errors.Is(err, services.ErrAirportNotFound) {
		c.JSON(http.StatusNotFound, notFound)
		return
	}

	c.JSON(http.StatusOK, SearchResponse{
		Origin:      originCode,
		Destination: destCode,
		Flights:     result.Flights,
		Currency:    result.Currency,
	})
}

func (h *Handler) ResolveHandler(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}

	code, ok := h.Resolver.Resolve(c.Request.Context(), q)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Airport not found"})
		return
	}
	a, _ := h.Airports.Lookup(code)
	c.JSON(http.StatusOK, ResolveResponse{Query: q, Code: a.Code, City: a.City, Name: a.Name})
}
