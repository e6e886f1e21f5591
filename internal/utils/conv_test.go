package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaging(t *testing.T) {
	cases := []struct {
		page, limit         string
		wantPage, wantLimit int
		wantOffset          int
	}{
		{"", "", 1, 10, 0},
		{"2", "10", 2, 10, 10},
		{"0", "1", 1, 5, 0},
		{"-3", "500", 1, 50, 0},
		{"3", "abc", 3, 10, 20},
		{"922337203685477582", "10", 42949673, 10, 429496720},
		{"42949674", "50", 42949673, 50, 2147483600},
	}
	for _, tc := range cases {
		p, l, o := Paging(tc.page, tc.limit, 10, 5, 50)
		assert.Equal(t, tc.wantPage, p, "page %q", tc.page)
		assert.Equal(t, tc.wantLimit, l, "limit %q", tc.limit)
		assert.Equal(t, tc.wantOffset, o)
	}
}

func TestConversions(t *testing.T) {
	assert.Equal(t, uint(12), StringToUint(" 12 "))
	assert.Equal(t, uint(0), StringToUint("-1"))
	f, ok := ParseFloat("18.5204")
	assert.True(t, ok)
	assert.InDelta(t, 18.5204, f, 1e-9)
	_, ok = ParseFloat("north")
	assert.False(t, ok)
}
