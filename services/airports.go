package services

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

//go:embed data/airports.json
var embeddedAirports []byte

// AirportRecord is one row of the reference airport table.
type AirportRecord struct {
	Code string  `json:"code"`
	City string  `json:"city"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// AirportTable is the read-only reference table keyed by IATA code.
// Iteration order is the load order.
type AirportTable struct {
	records []AirportRecord
	byCode  map[string]int
}

// NewAirportTable builds a table from records, rejecting malformed or
// duplicate codes.
func NewAirportTable(records []AirportRecord) (*AirportTable, error) {
	t := &AirportTable{
		records: make([]AirportRecord, 0, len(records)),
		byCode:  make(map[string]int, len(records)),
	}
	for _, r := range records {
		code := strings.ToUpper(strings.TrimSpace(r.Code))
		if len(code) != 3 {
			return nil, fmt.Errorf("invalid airport code %q", r.Code)
		}
		if _, dup := t.byCode[code]; dup {
			return nil, fmt.Errorf("duplicate airport code %s", code)
		}
		r.Code = code
		t.byCode[code] = len(t.records)
		t.records = append(t.records, r)
	}
	return t, nil
}

// LoadEmbeddedAirports parses the airport list bundled with the binary.
func LoadEmbeddedAirports() (*AirportTable, error) {
	records, err := EmbeddedAirportRecords()
	if err != nil {
		return nil, err
	}
	return NewAirportTable(records)
}

// EmbeddedAirportRecords returns the bundled airport list in file order.
func EmbeddedAirportRecords() ([]AirportRecord, error) {
	var records []AirportRecord
	if err := json.Unmarshal(embeddedAirports, &records); err != nil {
		return nil, fmt.Errorf("failed to parse bundled airport data: %w", err)
	}
	return records, nil
}

func (t *AirportTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// Lookup returns the record for an exact code.
func (t *AirportTable) Lookup(code string) (AirportRecord, bool) {
	if t == nil {
		return AirportRecord{}, false
	}
	i, ok := t.byCode[code]
	if !ok {
		return AirportRecord{}, false
	}
	return t.records[i], true
}

// Records returns a copy of all records in table order.
func (t *AirportTable) Records() []AirportRecord {
	if t == nil {
		return nil
	}
	out := make([]AirportRecord, len(t.records))
	copy(out, t.records)
	return out
}

// Nearest returns the record closest to (lat, lon). There is no distance
// cutoff: a far-away airport is still returned when it is the closest one.
func (t *AirportTable) Nearest(lat, lon float64) (AirportRecord, bool) {
	if t.Len() == 0 {
		return AirportRecord{}, false
	}
	best := -1
	bestDist := math.Inf(1)
	for i, r := range t.records {
		if d := Haversine(lat, lon, r.Lat, r.Lon); d < bestDist {
			bestDist = d
			best = i
		}
	}
	return t.records[best], true
}
