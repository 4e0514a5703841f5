package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductHTTP_GetProduct(t *testing.T) {
	env := newTestEnv(t)
	h := &ProductHTTP{Repo: env.repo}

	widget := env.seedProduct(t, "Widget", "10.00", 10)

	c, rec := env.request(http.MethodGet, fmt.Sprintf("/api/v1/products/%d", widget.ID), "")
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(widget.ID))
	require.NoError(t, h.GetProduct(c))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Widget")
}

func TestProductHTTP_GetProduct_HidesInactive(t *testing.T) {
	env := newTestEnv(t)
	h := &ProductHTTP{Repo: env.repo}

	retired := env.seedProduct(t, "Retired", "1.00", 5)
	require.NoError(t, env.repo.DB.Model(retired).Update("is_active", false).Error)

	c, rec := env.request(http.MethodGet, fmt.Sprintf("/api/v1/products/%d", retired.ID), "")
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(retired.ID))
	require.NoError(t, h.GetProduct(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	c, rec = env.request(http.MethodGet, "/api/v1/products/abc", "")
	c.SetParamNames("id")
	c.SetParamValues("abc")
	require.NoError(t, h.GetProduct(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductHTTP_GetProducts_Pagination(t *testing.T) {
	env := newTestEnv(t)
	h := &ProductHTTP{Repo: env.repo}

	for i := 0; i < 15; i++ {
		env.seedProduct(t, fmt.Sprintf("Item %02d", i), "1.00", 5)
	}
	hidden := env.seedProduct(t, "Hidden", "1.00", 5)
	require.NoError(t, env.repo.DB.Model(hidden).Update("is_active", false).Error)

	c, rec := env.request(http.MethodGet, "/api/v1/products?page=2&size=10", "")
	require.NoError(t, h.GetProducts(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []json.RawMessage `json:"data"`
		Meta struct {
			Page       int   `json:"page"`
			Total      int64 `json:"total"`
			TotalPages int64 `json:"total_pages"`
			HasPrev    bool  `json:"has_prev"`
			HasNext    bool  `json:"has_next"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Len(t, body.Data, 5)
	assert.Equal(t, 2, body.Meta.Page)
	assert.EqualValues(t, 15, body.Meta.Total)
	assert.EqualValues(t, 2, body.Meta.TotalPages)
	assert.True(t, body.Meta.HasPrev)
	assert.False(t, body.Meta.HasNext)
}
