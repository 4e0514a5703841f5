package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		page, size int
		from, lim  int
	}{
		{1, 10, 0, 10},
		{2, 10, 10, 10},
		{3, 25, 50, 25},
		{0, 10, 0, 10},
		{-5, 10, 0, 10},
		{1, 0, 0, DefaultPageSize},
		{1, 500, 0, DefaultPageSize},
	}
	for _, tc := range cases {
		from, lim := Calculate(tc.page, tc.size)
		assert.Equal(t, tc.from, from, "page=%d size=%d", tc.page, tc.size)
		assert.Equal(t, tc.lim, lim, "page=%d size=%d", tc.page, tc.size)
	}
}
