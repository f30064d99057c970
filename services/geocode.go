package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Geocoder turns a place name into coordinates. ok is false when the place
// could not be located for any reason.
type Geocoder interface {
	Geocode(ctx context.Context, place string) (lat, lon float64, ok bool)
}

// ─── OpenTripMap ─────────────────────────────────────────────────────────────

// OpenTripMap's free tier allows a handful of requests per second.
const geocodeRatePerSec = 5

type OpenTripMapGeocoder struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewOpenTripMapGeocoder(apiKey, baseURL string) *OpenTripMapGeocoder {
	return &OpenTripMapGeocoder{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 8 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(geocodeRatePerSec), geocodeRatePerSec),
	}
}

type geonameResponse struct {
	Name *string  `json:"name"`
	Lat  *float64 `json:"lat"`
	Lon  *float64 `json:"lon"`
}

func (g *OpenTripMapGeocoder) Geocode(ctx context.Context, place string) (float64, float64, bool) {
	place = strings.TrimSpace(place)
	if g == nil || g.apiKey == "" || place == "" {
		return 0, 0, false
	}
	lat, lon, err := g.lookup(ctx, place)
	if err != nil {
		log.Printf("⚠️  Geocoding %q failed: %v", place, err)
		return 0, 0, false
	}
	return lat, lon, true
}

func (g *OpenTripMapGeocoder) lookup(ctx context.Context, place string) (float64, float64, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return 0, 0, err
	}

	q := url.Values{}
	q.Set("name", place)
	q.Set("apikey", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/places/geoname?"+q.Encode(), nil)
	if err != nil {
		return 0, 0, err
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("opentripmap error (%d): %s", resp.StatusCode, string(body))
	}

	var result geonameResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, 0, fmt.Errorf("failed to parse geoname response: %w", err)
	}
	if result.Lat == nil || result.Lon == nil {
		return 0, 0, fmt.Errorf("no coordinates for %q", place)
	}
	return *result.Lat, *result.Lon, nil
}
