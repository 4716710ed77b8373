package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateSliceIndices(t *testing.T) {
	tests := []struct {
		name              string
		page, size, total int
		wantStart         int
		wantEnd           int
	}{
		{name: "first page", page: 1, size: 10, total: 25, wantStart: 0, wantEnd: 10},
		{name: "last partial page", page: 3, size: 10, total: 25, wantStart: 20, wantEnd: 25},
		{name: "past the end", page: 4, size: 10, total: 25, wantStart: 25, wantEnd: 25},
		{name: "invalid page defaults to first", page: 0, size: 5, total: 8, wantStart: 0, wantEnd: 5},
		{name: "oversized page size falls back to default", page: 1, size: 1000, total: 50, wantStart: 0, wantEnd: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := CalculateSliceIndices(tt.page, tt.size, tt.total)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{3, 4}, Paginate(items, 2, 2))
	assert.Empty(t, Paginate(items, 9, 2))
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(25, 2, 10)
	assert.Equal(t, 3, info.TotalPages)
	assert.Equal(t, 2, info.CurrentPage)
	assert.Equal(t, int64(25), info.TotalItems)

	empty := NewPaginationInfo(0, 1, 10)
	assert.Equal(t, 1, empty.TotalPages)
}

func TestNormalizePage(t *testing.T) {
	page, size := NormalizePage(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, size)
}
