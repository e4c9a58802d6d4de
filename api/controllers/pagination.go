/*
 * @module api/controllers/pagination
 * @description 集合接口的分页信封构造与分页参数解析
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 解析 page/page_size -> 查询 -> 构造含前后页链接的信封
 * @rules 默认页大小 25；page_size 由调用方选择；last_page 由总数推导
 * @dependencies net/http, net/url
 * @refs api/controllers/response.go
 */

package controllers

import (
	"net/http"
	"net/url"
	"strconv"
)

// DefaultPageSize 集合接口默认页大小
const DefaultPageSize = 25

// MaxPageSize 单页记录数上限
const MaxPageSize = 1000

// PageURLs 前后页链接
type PageURLs struct {
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
}

// Pagination 分页元数据
type Pagination struct {
	Page         int      `json:"page" example:"1"`
	PageRecords  int      `json:"page_records" example:"25"`
	TotalRecords int64    `json:"total_records" example:"100"`
	LastPage     int      `json:"last_page" example:"4"`
	URL          PageURLs `json:"url"`
}

// PaginatedResponse 集合响应信封
type PaginatedResponse struct {
	Pagination Pagination  `json:"pagination"`
	Data       interface{} `json:"data"`
}

// ParsePagination 从查询参数解析 page 与 page_size
func ParsePagination(r *http.Request) (page, pageSize int) {
	page = 1
	pageSize = DefaultPageSize
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil && v > 0 {
		pageSize = v
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// NewPaginatedResponse 构造分页信封。pageRecords 为当前页实际记录数
func NewPaginatedResponse(r *http.Request, page, pageSize, pageRecords int, total int64, data interface{}) *PaginatedResponse {
	lastPage := int((total + int64(pageSize) - 1) / int64(pageSize))
	if lastPage < 1 {
		lastPage = 1
	}

	urls := PageURLs{}
	if page < lastPage {
		next := pageURL(r.URL, page+1, pageSize)
		urls.Next = &next
	}
	if page > 1 {
		previous := pageURL(r.URL, page-1, pageSize)
		urls.Previous = &previous
	}

	return &PaginatedResponse{
		Pagination: Pagination{
			Page:         page,
			PageRecords:  pageRecords,
			TotalRecords: total,
			LastPage:     lastPage,
			URL:          urls,
		},
		Data: data,
	}
}

// pageURL 以当前请求URL为模板替换分页参数
func pageURL(u *url.URL, page, pageSize int) string {
	copied := *u
	q := copied.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))
	copied.RawQuery = q.Encode()
	return copied.String()
}
