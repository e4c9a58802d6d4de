/*
 * @module api/controllers/pagination_test
 * @description 分页响应封装单元测试
 * @architecture 测试层 - 单元测试
 */

package controllers

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePaginationDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/products", nil)
	page, pageSize := ParsePagination(r)
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPageSize, pageSize)

	r = httptest.NewRequest("GET", "/products?page=3&page_size=10", nil)
	page, pageSize = ParsePagination(r)
	assert.Equal(t, 3, page)
	assert.Equal(t, 10, pageSize)

	// 非法值回落到默认
	r = httptest.NewRequest("GET", "/products?page=-1&page_size=abc", nil)
	page, pageSize = ParsePagination(r)
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPageSize, pageSize)

	// 超过上限截断
	r = httptest.NewRequest("GET", "/products?page_size=5000", nil)
	_, pageSize = ParsePagination(r)
	assert.Equal(t, MaxPageSize, pageSize)
}

func TestNewPaginatedResponseLinks(t *testing.T) {
	r := httptest.NewRequest("GET", "/products?page=2&page_size=10", nil)
	resp := NewPaginatedResponse(r, 2, 10, 10, 35, []string{})

	assert.Equal(t, 2, resp.Pagination.Page)
	assert.Equal(t, 10, resp.Pagination.PageRecords)
	assert.Equal(t, int64(35), resp.Pagination.TotalRecords)
	assert.Equal(t, 4, resp.Pagination.LastPage)

	require.NotNil(t, resp.Pagination.URL.Next)
	assert.Contains(t, *resp.Pagination.URL.Next, "page=3")
	require.NotNil(t, resp.Pagination.URL.Previous)
	assert.Contains(t, *resp.Pagination.URL.Previous, "page=1")
}

func TestNewPaginatedResponseBoundaries(t *testing.T) {
	r := httptest.NewRequest("GET", "/products", nil)
	resp := NewPaginatedResponse(r, 1, 25, 0, 0, []string{})

	assert.Equal(t, 1, resp.Pagination.LastPage, "空结果集的最后一页为 1")
	assert.Nil(t, resp.Pagination.URL.Next)
	assert.Nil(t, resp.Pagination.URL.Previous)
}
