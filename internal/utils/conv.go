package utils

import (
	"math"
	"strconv"
	"strings"
)

// StringToInt converts string to int, returns 0 if error
func StringToInt(s string) int {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return i
}

// StringToUint 非法或非正数返回 0
func StringToUint(s string) uint {
	i := StringToInt(s)
	if i <= 0 {
		return 0
	}
	return uint(i)
}

// ParseFloat 解析坐标等数值
func ParseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Paging 解析分页参数，limit 限制在 [minLimit, maxLimit]，offset 不超过 int32
func Paging(pageStr, limitStr string, def, minLimit, maxLimit int) (page, limit, offset int) {
	page = StringToInt(pageStr)
	if page < 1 {
		page = 1
	}
	if maxPage := math.MaxInt32/maxLimit + 1; page > maxPage {
		page = maxPage
	}
	limit = StringToInt(limitStr)
	if limit == 0 {
		limit = def
	}
	if limit < minLimit {
		limit = minLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit, (page - 1) * limit
}
