package services

import (
	"context"

	"communityhub/internal/db"
	"communityhub/internal/models"
	"communityhub/internal/utils"
)

// 聚合半径范围（公里）
const (
	DefaultClusterRadiusKm = 1.0
	minClusterRadiusKm     = 0.05
	maxClusterRadiusKm     = 500.0
	mapItemsCap            = 2000
)

// MapClusters 活跃条目按距离聚合成地图标记
func MapClusters(ctx context.Context, f ItemFilter, radiusKm float64) ([]utils.Cluster, error) {
	if radiusKm <= 0 {
		radiusKm = DefaultClusterRadiusKm
	}
	if radiusKm < minClusterRadiusKm {
		radiusKm = minClusterRadiusKm
	}
	if radiusKm > maxClusterRadiusKm {
		radiusKm = maxClusterRadiusKm
	}

	q := db.DB.WithContext(ctx).Model(&models.Item{}).
		Select("id, latitude, longitude").
		Where("lifecycle = ?", models.LifecycleActive).
		Where("NOT (latitude = 0 AND longitude = 0)")
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.City != "" {
		q = q.Where("city = ?", f.City)
	}

	points := make([]utils.GeoPoint, 0)
	if err := q.Order("id ASC").Limit(mapItemsCap).Scan(&points).Error; err != nil {
		return nil, err
	}
	return utils.ClusterPoints(points, radiusKm), nil
}
