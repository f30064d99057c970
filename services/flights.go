package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

var ErrAirportNotFound = errors.New("airport not found")

const (
	maxDirectOptions     = 3
	maxConnectingOptions = 2

	directCruiseKmh     = 800.0
	connectingCruiseKmh = 600.0
	minDirectDuration   = 45 * 60
	minConnectDuration  = 60 * 60

	directCO2PerKm     = 0.115
	connectingCO2PerKm = 0.13

	probeWindow = 2 * time.Hour
)

// ─── Types ────────────────────────────────────────────────────────────────────

// FlightOption is a synthetic fare estimate. Duration is in seconds and
// Departure is a YYYY-MM-DD date.
type FlightOption struct {
	Price       float64  `json:"price"`
	Airlines    []string `json:"airlines"`
	Duration    int      `json:"duration"`
	Departure   string   `json:"departure"`
	BookingLink string   `json:"booking_link"`
	CO2Kg       float64  `json:"co2_kg"`
	Stops       int      `json:"stops"`
}

type FlightSearchResult struct {
	Flights  []FlightOption `json:"flights"`
	Currency string         `json:"currency,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// ─── Synthesizer ─────────────────────────────────────────────────────────────

// FlightSynthesizer produces plausible flight options from great-circle
// distance alone. It never talks to a booking API.
type FlightSynthesizer struct {
	airports *AirportTable
	probe    ArrivalProbe
	now      func() time.Time
}

func NewFlightSynthesizer(airports *AirportTable, probe ArrivalProbe) *FlightSynthesizer {
	return &FlightSynthesizer{airports: airports, probe: probe, now: time.Now}
}

// WithClock overrides the time source used for departure dates.
func (s *FlightSynthesizer) WithClock(now func() time.Time) *FlightSynthesizer {
	s.now = now
	return s
}

// Search returns up to three direct and two connecting options, never more
// than maxResults in total. Unknown codes yield an empty result carrying
// "Airport not found" together with ErrAirportNotFound.
func (s *FlightSynthesizer) Search(ctx context.Context, originCode, destinationCode string, maxResults int) (FlightSearchResult, error) {
	originCode = strings.ToUpper(strings.TrimSpace(originCode))
	destinationCode = strings.ToUpper(strings.TrimSpace(destinationCode))

	origin, ok1 := s.airports.Lookup(originCode)
	dest, ok2 := s.airports.Lookup(destinationCode)
	if !ok1 || !ok2 {
		return FlightSearchResult{Flights: []FlightOption{}, Error: "Airport not found"}, ErrAirportNotFound
	}

	distance := Haversine(origin.Lat, origin.Lon, dest.Lat, dest.Lon)
	s.probeArrivals(ctx, destinationCode)

	now := s.now()
	basePrice := EstimatePrice(distance)
	flights := make([]FlightOption, 0, max(0, min(maxResults, maxDirectOptions+maxConnectingOptions)))

	for i := 0; i < min(maxResults, maxDirectOptions); i++ {
		departure := now.AddDate(0, 0, i+1).Format("2006-01-02")
		flights = append(flights, FlightOption{
			Price:       roundTo(basePrice*(0.9+float64(i*2)/10), 2),
			Airlines:    []string{"Direct"},
			Duration:    max(minDirectDuration, int(distance/directCruiseKmh*3600)),
			Departure:   departure,
			BookingLink: bookingLink(originCode, destinationCode, departure),
			CO2Kg:       roundTo(distance*directCO2PerKm, 1),
			Stops:       0,
		})
	}

	connecting := max(0, min(maxResults-len(flights), maxConnectingOptions))
	for i := 0; i < connecting; i++ {
		departure := now.AddDate(0, 0, i+2).Format("2006-01-02")
		flights = append(flights, FlightOption{
			Price:       roundTo(basePrice*(1.1+float64(i*2)/10), 2),
			Airlines:    []string{"Connecting"},
			Duration:    max(minConnectDuration, int(distance/connectingCruiseKmh*3600)),
			Departure:   departure,
			BookingLink: bookingLink(originCode, destinationCode, departure),
			CO2Kg:       roundTo(distance*connectingCO2PerKm, 1),
			Stops:       1,
		})
	}

	return FlightSearchResult{Flights: flights, Currency: "USD"}, nil
}

// probeArrivals pings the flight tracker for the last two hours of arrivals.
// The answer is not used and failures are only logged.
func (s *FlightSynthesizer) probeArrivals(ctx context.Context, airport string) {
	if s.probe == nil {
		return
	}
	end := s.now()
	if err := s.probe.RecentArrivals(ctx, airport, end.Add(-probeWindow), end); err != nil {
		log.Printf("⚠️  Arrival probe for %s failed: %v — continuing with estimates", airport, err)
	}
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func bookingLink(origin, destination, departure string) string {
	return fmt.Sprintf("https://www.google.com/travel/flights?q=Flights%%20%s%%20to%%20%s%%20%s",
		origin, destination, departure)
}

// FormatDuration renders seconds as "5h 30m" (or "5h" on the hour).
func FormatDuration(seconds int) string {
	minutes := seconds / 60
	h := minutes / 60
	m := minutes % 60
	if m > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dh", h)
}
