package geo

import "math"

const earthRadiusMeters = 6371000.0

// ValidCoordinates reports whether lat/lng fall inside the WGS84
// ranges. Everything downstream assumes callers rejected bad input.
func ValidCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// DistanceMeters returns the great-circle distance between two points
// using the haversine formula on a spherical Earth.
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
