package shared

import (
	"math"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginationBounds(t *testing.T) {
	cases := []struct {
		name            string
		page, per, tot  int
		start, end, pgs int
	}{
		{"defaults", 0, 0, 45, 0, 20, 3},
		{"last partial page", 3, 20, 45, 40, 45, 3},
		{"past the end", 9, 20, 45, 45, 45, 3},
		{"empty", 1, 10, 0, 0, 0, 0},
		{"capped page size", 1, 1000, 250, 0, 100, 3},
		{"huge page", math.MaxInt, 100, 3, 3, 3, 1},
		{"page that overflows when multiplied", math.MaxInt/2 + 1, 100, 3, 3, 3, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPagination(tc.page, tc.per, tc.tot)
			start, end := p.Bounds()
			assert.Equal(t, tc.start, start)
			assert.Equal(t, tc.end, end)
			assert.Equal(t, tc.pgs, p.TotalPages)
		})
	}
}

func TestPaginationFromRequest(t *testing.T) {
	p := PaginationFromRequest(httptest.NewRequest("GET", "/api/documents?page=2&perPage=5", nil), 12)
	assert.Equal(t, Pagination{Page: 2, PerPage: 5, Total: 12, TotalPages: 3}, p)

	p = PaginationFromRequest(httptest.NewRequest("GET", "/api/documents?page=abc", nil), 3)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PerPage)
}

func TestPaginationFromRequestHugePage(t *testing.T) {
	p := PaginationFromRequest(httptest.NewRequest("GET", "/api/documents?page=9223372036854775807&perPage=100", nil), 3)
	start, end := p.Bounds()
	assert.Equal(t, 3, start)
	assert.Equal(t, 3, end)
	docs := []int{1, 2, 3}
	assert.Empty(t, docs[start:end])
}
