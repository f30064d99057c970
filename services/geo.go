package services

import (
	"math"
	"strconv"
)

const (
	earthRadiusKm = 6371.0

	basePriceUSD  = 50.0
	pricePerKmUSD = 0.15

	degToRad = float64(math.Pi) / 180
)

// Haversine returns the great-circle distance in kilometres between two
// points given in degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1, lon1 = toRadians(lat1), toRadians(lon1)
	lat2, lon2 = toRadians(lat2), toRadians(lon2)

	dlat := lat2 - lat1
	dlon := lon2 - lon1
	a := math.Pow(math.Sin(dlat/2), 2) + float64(math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dlon/2), 2))
	return earthRadiusKm * 2 * math.Asin(math.Min(1, math.Sqrt(a)))
}

// EstimatePrice is the linear fare model: 50 + 0.15 per km, rounded to cents.
func EstimatePrice(distanceKm float64) float64 {
	// no FMA: multiply and add round separately
	return roundTo(basePriceUSD+float64(distanceKm*pricePerKmUSD), 2)
}

func toRadians(deg float64) float64 {
	return deg * degToRad
}

// roundTo rounds the exact binary value of v to places decimals, breaking
// exact ties to even.
func roundTo(v float64, places int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', places, 64), 64)
	if err != nil {
		return v
	}
	return r
}
