// Package geo provides the great-circle and circular-angle math used by the
// anomaly rules.
package geo

import "math"

// Mean Earth radius in meters.
const earthRadiusMeters = 6371000.0

// DistanceMeters returns the great-circle (haversine) distance between two
// points in meters. The atan2 form keeps the result defined when floating
// point overshoot would push the asin argument past 1 near antipodal or
// near-zero separations.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)
	a := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda
	return 2 * earthRadiusMeters * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// CourseDiffDeg returns the minimal absolute angular difference between two
// course values, in [0,180]. Wrap-around is handled: 350 vs 10 is 20, not 340.
func CourseDiffDeg(c1, c2 float64) float64 {
	diff := math.Mod(math.Abs(c1-c2), 360)
	if diff > 180 {
		diff = 360 - diff
	}
	return diff
}
