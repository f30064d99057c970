package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProbe struct {
	err      error
	airports []string
	windows  []time.Duration
}

func (p *recordingProbe) RecentArrivals(_ context.Context, airport string, begin, end time.Time) error {
	p.airports = append(p.airports, airport)
	p.windows = append(p.windows, end.Sub(begin))
	return p.err
}

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestSynthesizer(t *testing.T, probe ArrivalProbe) *FlightSynthesizer {
	t.Helper()
	table, err := NewAirportTable([]AirportRecord{
		{Code: "AAA", City: "Alpha", Lat: 0, Lon: 0},
		{Code: "BBB", City: "Beta", Lat: 0, Lon: 10},
		{Code: "CCC", City: "Gamma", Lat: 0, Lon: 0.1},
	})
	require.NoError(t, err)
	return NewFlightSynthesizer(table, probe).WithClock(func() time.Time { return fixedNow })
}

func TestSearch_DirectAndConnecting(t *testing.T) {
	probe := &recordingProbe{}
	s := newTestSynthesizer(t, probe)

	res, err := s.Search(context.Background(), "aaa", " bbb", 5)
	require.NoError(t, err)
	require.Len(t, res.Flights, 5)
	assert.Equal(t, "USD", res.Currency)
	assert.Empty(t, res.Error)

	d := Haversine(0, 0, 0, 10)
	base := EstimatePrice(d)

	directDates := []string{"2025-03-15", "2025-03-16", "2025-03-17"}
	for i, f := range res.Flights[:3] {
		assert.Equal(t, roundTo(base*(0.9+float64(i*2)/10), 2), f.Price)
		assert.Equal(t, []string{"Direct"}, f.Airlines)
		assert.Equal(t, 0, f.Stops)
		assert.Equal(t, int(d/800*3600), f.Duration)
		assert.Equal(t, directDates[i], f.Departure)
		assert.Equal(t, roundTo(d*0.115, 1), f.CO2Kg)
		assert.Equal(t, "https://www.google.com/travel/flights?q=Flights%20AAA%20to%20BBB%20"+directDates[i], f.BookingLink)
	}

	connectingDates := []string{"2025-03-16", "2025-03-17"}
	for i, f := range res.Flights[3:] {
		assert.Equal(t, roundTo(base*(1.1+float64(i*2)/10), 2), f.Price)
		assert.Equal(t, []string{"Connecting"}, f.Airlines)
		assert.Equal(t, 1, f.Stops)
		assert.Equal(t, int(d/600*3600), f.Duration)
		assert.Equal(t, connectingDates[i], f.Departure)
		assert.Equal(t, roundTo(d*0.13, 1), f.CO2Kg)
	}

	assert.Equal(t, []string{"BBB"}, probe.airports)
	assert.Equal(t, []time.Duration{2 * time.Hour}, probe.windows)
}

func TestSearch_JFKToLAX(t *testing.T) {
	airports, err := LoadEmbeddedAirports()
	require.NoError(t, err)
	s := NewFlightSynthesizer(airports, nil).WithClock(func() time.Time { return fixedNow })

	res, err := s.Search(context.Background(), "JFK", "LAX", 5)
	require.NoError(t, err)
	require.Len(t, res.Flights, 5)

	var prices, co2 []float64
	var durations, stops []int
	var dates []string
	for _, f := range res.Flights {
		prices = append(prices, f.Price)
		co2 = append(co2, f.CO2Kg)
		durations = append(durations, f.Duration)
		stops = append(stops, f.Stops)
		dates = append(dates, f.Departure)
	}
	assert.Equal(t, []float64{581.53, 710.76, 840, 710.76, 840}, prices)
	assert.Equal(t, []float64{457, 457, 457, 516.7, 516.7}, co2)
	assert.Equal(t, []int{17884, 17884, 17884, 23846, 23846}, durations)
	assert.Equal(t, []int{0, 0, 0, 1, 1}, stops)
	assert.Equal(t, []string{"2025-03-15", "2025-03-16", "2025-03-17", "2025-03-16", "2025-03-17"}, dates)
	assert.Equal(t, "https://www.google.com/travel/flights?q=Flights%20JFK%20to%20LAX%202025-03-15", res.Flights[0].BookingLink)
}

func TestSearch_MaxResults(t *testing.T) {
	s := newTestSynthesizer(t, nil)
	ctx := context.Background()

	for maxResults, want := range map[int]int{0: 0, 1: 1, 3: 3, 4: 4, 5: 5, 10: 5} {
		res, err := s.Search(ctx, "AAA", "BBB", maxResults)
		require.NoError(t, err)
		assert.Len(t, res.Flights, want, "max %d", maxResults)
	}

	res, err := s.Search(ctx, "AAA", "BBB", 4)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Flights[3].Stops)
}

func TestSearch_MinimumDurations(t *testing.T) {
	s := newTestSynthesizer(t, nil)

	res, err := s.Search(context.Background(), "AAA", "CCC", 5)
	require.NoError(t, err)
	assert.Equal(t, 45*60, res.Flights[0].Duration)
	assert.Equal(t, 60*60, res.Flights[3].Duration)
}

func TestSearch_UnknownAirport(t *testing.T) {
	for _, route := range [][2]string{{"AAA", "ZZZ"}, {"ZZZ", "BBB"}, {"ZZZ", "ZZZ"}} {
		probe := &recordingProbe{}
		s := newTestSynthesizer(t, probe)

		res, err := s.Search(context.Background(), route[0], route[1], 5)
		assert.ErrorIs(t, err, ErrAirportNotFound, route)
		assert.NotNil(t, res.Flights, route)
		assert.Empty(t, res.Flights, route)
		assert.Empty(t, res.Currency, route)
		assert.Equal(t, "Airport not found", res.Error, route)
		assert.Empty(t, probe.airports, route)
	}
}

func TestSearch_ProbeFailureIgnored(t *testing.T) {
	s := newTestSynthesizer(t, &recordingProbe{err: errors.New("503")})

	res, err := s.Search(context.Background(), "AAA", "BBB", 5)
	require.NoError(t, err)
	assert.Len(t, res.Flights, 5)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "5h 30m", FormatDuration(5*3600+30*60))
	assert.Equal(t, "5h", FormatDuration(5*3600))
	assert.Equal(t, "0h 45m", FormatDuration(45*60))
}
