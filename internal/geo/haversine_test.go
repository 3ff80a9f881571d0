package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversine_SamePointIsZero(t *testing.T) {
	points := [][2]float64{
		{0, 0},
		{40.7128, -74.0060},
		{-33.8688, 151.2093},
		{89.9, 179.9},
	}
	for _, p := range points {
		assert.Equal(t, 0.0, Haversine(p[0], p[1], p[0], p[1]))
	}
}

func TestHaversine_Symmetric(t *testing.T) {
	pairs := [][4]float64{
		{0, 0, 0, 1},
		{51.5074, -0.1278, 48.8566, 2.3522},
		{-23.5505, -46.6333, 35.6762, 139.6503},
	}
	for _, p := range pairs {
		assert.InDelta(t, Haversine(p[0], p[1], p[2], p[3]), Haversine(p[2], p[3], p[0], p[1]), 1e-9)
	}
}

func TestHaversine_KnownDistances(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		wantKm                 float64
		delta                  float64
	}{
		{"one degree of longitude at the equator", 0, 0, 0, 1, 111.195, 0.01},
		{"two degrees of longitude at the equator", 0, 0, 0, 2, 222.39, 0.01},
		{"london to paris", 51.5074, -0.1278, 48.8566, 2.3522, 343.5, 1},
		{"quarter meridian", 0, 0, 90, 0, 10007.54, 0.1},
		{"antipodes", -86.77999999999997, -179, 86.77999999999997, 1, 20015.09, 0.01},
		{"antipodes on the equator", 0, 0, 0, 180, 20015.09, 0.01},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.wantKm, Haversine(tt.lat1, tt.lon1, tt.lat2, tt.lon2), tt.delta)
		})
	}
}

func TestHaversine_NearAntipodesStayFinite(t *testing.T) {
	for lat := -89.0; lat <= 89.0; lat += 0.37 {
		for lon := -179.0; lon <= 0; lon += 7.3 {
			d := Haversine(lat, lon, -lat, lon+180)
			assert.False(t, math.IsNaN(d), "NaN at (%v,%v)", lat, lon)
			assert.InDelta(t, 20015.09, d, 0.01, "(%v,%v)", lat, lon)
		}
	}
}
