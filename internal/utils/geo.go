package utils

import (
	"math"
	"sort"
)

const earthRadiusKm = 6371.0

// HaversineKm 两点间球面距离（公里）
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// GeoPoint 地图上的一个条目
type GeoPoint struct {
	ID        uint
	Latitude  float64
	Longitude float64
}

// Cluster 聚合后的地图标记
type Cluster struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Count     int     `json:"count"`
	ItemIDs   []uint  `json:"item_ids"`
}

// ClusterPoints 贪心聚合：按顺序把点归入第一个中心距离不超过 radiusKm 的簇，
// 簇中心取成员坐标均值。结果按数量降序。
func ClusterPoints(points []GeoPoint, radiusKm float64) []Cluster {
	clusters := make([]Cluster, 0)
	for _, p := range points {
		placed := false
		for i := range clusters {
			cl := &clusters[i]
			if HaversineKm(cl.Latitude, cl.Longitude, p.Latitude, p.Longitude) <= radiusKm {
				n := float64(cl.Count)
				cl.Latitude = (cl.Latitude*n + p.Latitude) / (n + 1)
				cl.Longitude = (cl.Longitude*n + p.Longitude) / (n + 1)
				cl.Count++
				cl.ItemIDs = append(cl.ItemIDs, p.ID)
				placed = true
				break
			}
		}
		if !placed {
			clusters = append(clusters, Cluster{
				Latitude:  p.Latitude,
				Longitude: p.Longitude,
				Count:     1,
				ItemIDs:   []uint{p.ID},
			})
		}
	}
	sort.SliceStable(clusters, func(i, j int) bool { return clusters[i].Count > clusters[j].Count })
	return clusters
}
