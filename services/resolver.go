package services

import (
	"context"
	"strings"
)

// AirportResolver maps free text ("Paris", "heathrow", "LAX") to a code in
// the reference table.
type AirportResolver struct {
	airports *AirportTable
	geocoder Geocoder
}

func NewAirportResolver(airports *AirportTable, geocoder Geocoder) *AirportResolver {
	return &AirportResolver{airports: airports, geocoder: geocoder}
}

// Resolve tries, in order: a known 3-letter code, a case-insensitive
// substring of a city or airport name (first record in table order wins),
// and finally geocoding the text and taking the nearest known airport.
func (r *AirportResolver) Resolve(ctx context.Context, place string) (string, bool) {
	s := strings.TrimSpace(place)
	if s == "" || r.airports.Len() == 0 {
		return "", false
	}

	if code := strings.ToUpper(s); len(code) == 3 {
		if _, ok := r.airports.Lookup(code); ok {
			return code, true
		}
	}

	needle := strings.ToLower(s)
	for _, a := range r.airports.records {
		if strings.Contains(strings.ToLower(a.City), needle) || strings.Contains(strings.ToLower(a.Name), needle) {
			return a.Code, true
		}
	}

	if r.geocoder == nil {
		return "", false
	}
	lat, lon, ok := r.geocoder.Geocode(ctx, s)
	if !ok {
		return "", false
	}
	nearest, ok := r.airports.Nearest(lat, lon)
	if !ok {
		return "", false
	}
	return nearest.Code, true
}
