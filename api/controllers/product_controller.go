/*
 * @module api/controllers/product_controller
 * @description 产品API控制器，处理产品管理的HTTP请求并附带派生生命周期状态
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow HTTP请求处理流程
 * @rules 生命周期状态为读取时派生，仅在单次请求内计算，不落库
 * @dependencies productdb-service/service, github.com/go-chi/render
 * @refs dev_docs/model.md
 */

package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"productdb-service/service"
	"productdb-service/service/catalog"
	"productdb-service/service/models"
)

// ProductController 产品控制器
type ProductController struct {
	service *catalog.ProductService
}

// NewProductController 创建产品控制器实例
func NewProductController() *ProductController {
	return &ProductController{service: service.GlobalProductService}
}

// ProductView 带派生生命周期状态的产品视图
type ProductView struct {
	models.Product
	CurrentLifecycleStates []string `json:"current_lifecycle_states"`
}

func newProductView(p models.Product, now time.Time) ProductView {
	return ProductView{
		Product:                p,
		CurrentLifecycleStates: catalog.LifecycleStates(&p, now),
	}
}

// SaveProduct 创建或更新产品
// @Summary 创建或更新产品
// @Description 保存产品并应用保存钩子策略
// @Tags 产品
// @Accept json
// @Produce json
// @Param product body models.Product true "产品信息"
// @Success 200 {object} APIResponse{data=ProductView}
// @Failure 400 {object} APIResponse
// @Router /products [post]
func (c *ProductController) SaveProduct(w http.ResponseWriter, r *http.Request) {
	var req models.Product
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse(fmt.Sprintf("请求参数格式错误:%s", err.Error()), nil))
		return
	}

	if err := c.service.SaveProduct(&req); err != nil {
		render.JSON(w, r, ErrorResponse(err))
		return
	}
	render.JSON(w, r, SuccessResponse("保存成功", newProductView(req, time.Now())))
}

// GetProduct 获取产品详情
// @Summary 获取产品详情
// @Description 根据ID获取产品详细信息，含派生生命周期状态
// @Tags 产品
// @Produce json
// @Param id path string true "产品ID"
// @Success 200 {object} APIResponse{data=ProductView}
// @Failure 404 {object} APIResponse
// @Router /products/{id} [get]
func (c *ProductController) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	product, err := c.service.GetProduct(id)
	if err != nil {
		render.JSON(w, r, NotFoundResponse("产品不存在", nil))
		return
	}
	render.JSON(w, r, SuccessResponse("查询成功", newProductView(*product, time.Now())))
}

// GetProducts 获取产品列表
// @Summary 获取产品列表
// @Description 分页获取产品列表，支持厂商、分组与关键字过滤
// @Tags 产品
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "页大小"
// @Param vendor_id query string false "厂商ID过滤"
// @Param product_group_id query string false "分组ID过滤"
// @Param search query string false "关键字"
// @Success 200 {object} PaginatedResponse
// @Router /products [get]
func (c *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	page, pageSize := ParsePagination(r)
	filter := catalog.ProductFilter{
		VendorID:       r.URL.Query().Get("vendor_id"),
		ProductGroupID: r.URL.Query().Get("product_group_id"),
		Search:         r.URL.Query().Get("search"),
	}

	products, total, err := c.service.GetProducts(page, pageSize, filter)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse(err.Error(), nil))
		return
	}

	// 派生状态在单次请求内用同一参考时间计算
	now := time.Now()
	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, newProductView(p, now))
	}
	render.JSON(w, r, NewPaginatedResponse(r, page, pageSize, len(views), total, views))
}

// DeleteProduct 删除产品
// @Summary 删除产品
// @Description 删除产品并清理指向它的迁移选项弱引用
// @Tags 产品
// @Produce json
// @Param id path string true "产品ID"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /products/{id} [delete]
func (c *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := c.service.DeleteProduct(id); err != nil {
		render.JSON(w, r, ErrorResponse(err))
		return
	}
	render.JSON(w, r, SuccessResponse("删除成功", nil))
}
