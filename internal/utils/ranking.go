package utils

import "fmt"

// RankConfig 热度权重，静态线性公式
type RankConfig struct {
	WeightLike    int64 // 2
	WeightComment int64 // 1
	WeightShare   int64 // 3
}

var DefaultRankConfig = RankConfig{
	WeightLike:    2,
	WeightComment: 1,
	WeightShare:   3,
}

// EngagementScore likes*2 + comments + shares*3
func EngagementScore(likes, comments, shares int64) int64 {
	c := DefaultRankConfig
	return likes*c.WeightLike + comments*c.WeightComment + shares*c.WeightShare
}

// EngagementScoreSQL 与 EngagementScore 相同权重的 SQL 表达式
func EngagementScoreSQL(likes, comments, shares string) string {
	c := DefaultRankConfig
	return fmt.Sprintf("(%s * %d + %s * %d + %s * %d)",
		likes, c.WeightLike, comments, c.WeightComment, shares, c.WeightShare)
}
