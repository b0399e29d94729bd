package simulator

import "github.com/eldview/eldview/pkg/polyline"

// City is a stop on a simulated route.
type City struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// TruckRoutes is the table of cities simulated days are drawn from.
var TruckRoutes = []City{
	{"Chicago, IL", 41.8781, -87.6298},
	{"Indianapolis, IN", 39.7684, -86.1581},
	{"Cincinnati, OH", 39.1031, -84.512},
	{"Louisville, KY", 38.2527, -85.7585},
	{"Nashville, TN", 36.1627, -86.7816},
	{"Atlanta, GA", 33.749, -84.388},
	{"Charlotte, NC", 35.2271, -80.8431},
	{"Richmond, VA", 37.5407, -77.436},
	{"Washington, DC", 38.9072, -77.0369},
	{"Philadelphia, PA", 39.9526, -75.1652},
	{"New York, NY", 40.7128, -74.006},
}

// DistanceKm is the great-circle distance between two cities.
func DistanceKm(a, b City) float64 {
	return polyline.Distance(a.Coordinate(), b.Coordinate()) / 1000
}

// Coordinate returns the position of c.
func (c City) Coordinate() polyline.Coordinate {
	return polyline.Coordinate{Lat: c.Lat, Lon: c.Lon}
}

// RouteKm is the length of a route through cities in order.
func RouteKm(cities []City) float64 {
	var total float64
	for i := 1; i < len(cities); i++ {
		total += DistanceKm(cities[i-1], cities[i])
	}
	return total
}

// ClosePairs returns every pair of cities at most maxKm apart.
func ClosePairs(cities []City, maxKm float64) [][2]City {
	var pairs [][2]City
	for i := range cities {
		for j := i + 1; j < len(cities); j++ {
			if DistanceKm(cities[i], cities[j]) <= maxKm {
				pairs = append(pairs, [2]City{cities[i], cities[j]})
			}
		}
	}
	return pairs
}

// along returns the point at progress (0..1) of the straight line from a to b.
func along(a, b City, progress float64) (lat, lon float64) {
	return a.Lat + (b.Lat-a.Lat)*progress, a.Lon + (b.Lon-a.Lon)*progress
}
