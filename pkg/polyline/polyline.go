// Package polyline encodes coordinate paths with Google's polyline algorithm
// at precision 5:
// https://developers.google.com/maps/documentation/utilities/polylinealgorithm
package polyline

import (
	"errors"
	"math"
)

const precision = 1e5

// ErrMalformed is returned by Decode for truncated or invalid input.
var ErrMalformed = errors.New("malformed polyline")

// Coordinate is a point in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Encode encodes coords as a polyline. An empty path encodes to "".
func Encode(coords []Coordinate) string {
	buf := make([]byte, 0, len(coords)*8)
	var prevLat, prevLon int

	for _, c := range coords {
		lat := int(math.Round(c.Lat * precision))
		lon := int(math.Round(c.Lon * precision))
		buf = appendValue(buf, lat-prevLat)
		buf = appendValue(buf, lon-prevLon)
		prevLat, prevLon = lat, lon
	}
	return string(buf)
}

func appendValue(buf []byte, v int) []byte {
	u := v << 1
	if v < 0 {
		u = ^u
	}
	for u >= 0x20 {
		buf = append(buf, byte(0x20|u&0x1f)+63)
		u >>= 5
	}
	return append(buf, byte(u)+63)
}

// Decode decodes a polyline. It fails with ErrMalformed when the input ends
// inside a value or holds a character outside the alphabet.
func Decode(encoded string) ([]Coordinate, error) {
	var (
		coords   []Coordinate
		lat, lon int
	)
	for i := 0; i < len(encoded); {
		dLat, next, err := readValue(encoded, i)
		if err != nil {
			return nil, err
		}
		dLon, next, err := readValue(encoded, next)
		if err != nil {
			return nil, err
		}
		i = next

		lat += dLat
		lon += dLon
		coords = append(coords, Coordinate{Lat: float64(lat) / precision, Lon: float64(lon) / precision})
	}
	return coords, nil
}

func readValue(s string, i int) (value, next int, err error) {
	var result, shift int
	for {
		if i >= len(s) {
			return 0, i, ErrMalformed
		}
		b := int(s[i]) - 63
		if b < 0 || b > 0x3f {
			return 0, i, ErrMalformed
		}
		i++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}
	if result&1 != 0 {
		return ^(result >> 1), i, nil
	}
	return result >> 1, i, nil
}

const earthRadiusMeters = 6371000

// Distance is the great-circle distance between a and b in meters.
func Distance(a, b Coordinate) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	sinDLat := math.Sin(radians(b.Lat-a.Lat) / 2)
	sinDLon := math.Sin(radians(b.Lon-a.Lon) / 2)

	h := sinDLat*sinDLat + math.Cos(lat1)*math.Cos(lat2)*sinDLon*sinDLon
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}

// Length is the length of the path through coords in meters.
func Length(coords []Coordinate) float64 {
	var total float64
	for i := 1; i < len(coords); i++ {
		total += Distance(coords[i-1], coords[i])
	}
	return total
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
