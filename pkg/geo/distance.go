// Package geo computes great-circle distances over tracked delivery paths.
//
// Points are orb.Point values in degrees, ordered [longitude, latitude].
package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// EarthRadiusKm is the mean Earth radius used for all distance figures.
const EarthRadiusKm = 6371.0

// SegmentDistanceKm returns the haversine distance between a and b in kilometers.
func SegmentDistanceKm(a, b orb.Point) float64 {
	lat1 := toRadians(a.Lat())
	lat2 := toRadians(b.Lat())
	dLat := lat2 - lat1
	dLon := toRadians(b.Lon() - a.Lon())

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

// PathDistanceKm sums segment distances over consecutive points and rounds
// to two decimals. Fewer than two points yield 0.
func PathDistanceKm(path orb.LineString) float64 {
	if len(path) < 2 {
		return 0
	}
	var total float64
	for i := 0; i < len(path)-1; i++ {
		total += SegmentDistanceKm(path[i], path[i+1])
	}
	return Round2(total)
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
