package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversineKm(t *testing.T) {
	assert.InDelta(t, 0, HaversineKm(19.07, 72.87, 19.07, 72.87), 1e-9)
	// 孟买 -> 浦那 约 120 公里
	assert.InDelta(t, 120, HaversineKm(19.0760, 72.8777, 18.5204, 73.8567), 5)
	// 赤道上一度经度约 111.19 公里
	assert.InDelta(t, 111.19, HaversineKm(0, 0, 0, 1), 0.1)
}

func TestClusterPoints(t *testing.T) {
	points := []GeoPoint{
		{ID: 1, Latitude: 18.5204, Longitude: 73.8567},
		{ID: 2, Latitude: 18.5210, Longitude: 73.8570},
		{ID: 3, Latitude: 19.0760, Longitude: 72.8777},
		{ID: 4, Latitude: 18.5200, Longitude: 73.8560},
	}
	clusters := ClusterPoints(points, 1)
	require.Len(t, clusters, 2)
	assert.Equal(t, 3, clusters[0].Count)
	assert.ElementsMatch(t, []uint{1, 2, 4}, clusters[0].ItemIDs)
	assert.Equal(t, []uint{3}, clusters[1].ItemIDs)

	assert.Empty(t, ClusterPoints(nil, 1))
	assert.Len(t, ClusterPoints(points, 500), 1)
}
