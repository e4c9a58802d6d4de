/*
 * @module api/controllers/product_list_controller
 * @description 产品清单API控制器
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow HTTP请求处理流程
 * @rules 清单内容保存时规范化并重算哈希
 * @dependencies productdb-service/service, github.com/go-chi/render
 * @refs dev_docs/model.md
 */

package controllers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"productdb-service/service"
	"productdb-service/service/catalog"
	"productdb-service/service/models"
)

// ProductListController 产品清单控制器
type ProductListController struct {
	service *catalog.ProductListService
}

// NewProductListController 创建产品清单控制器实例
func NewProductListController() *ProductListController {
	return &ProductListController{service: service.GlobalProductListService}
}

// SaveProductList 创建或更新产品清单
// @Summary 创建或更新产品清单
// @Description 保存清单，内容规范化并重算哈希
// @Tags 产品清单
// @Accept json
// @Produce json
// @Param list body models.ProductList true "清单信息"
// @Success 200 {object} APIResponse{data=models.ProductList}
// @Failure 400 {object} APIResponse
// @Router /product-lists [post]
func (c *ProductListController) SaveProductList(w http.ResponseWriter, r *http.Request) {
	var req models.ProductList
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse(fmt.Sprintf("请求参数格式错误:%s", err.Error()), nil))
		return
	}

	if err := c.service.SaveProductList(&req); err != nil {
		render.JSON(w, r, ErrorResponse(err))
		return
	}
	render.JSON(w, r, SuccessResponse("保存成功", &req))
}

// GetProductList 获取产品清单详情
// @Summary 获取产品清单详情
// @Description 根据ID获取清单详细信息
// @Tags 产品清单
// @Produce json
// @Param id path string true "清单ID"
// @Success 200 {object} APIResponse{data=models.ProductList}
// @Failure 404 {object} APIResponse
// @Router /product-lists/{id} [get]
func (c *ProductListController) GetProductList(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	list, err := c.service.GetProductList(id)
	if err != nil {
		render.JSON(w, r, NotFoundResponse("产品清单不存在", nil))
		return
	}
	render.JSON(w, r, SuccessResponse("查询成功", list))
}

// GetProductLists 获取产品清单列表
// @Summary 获取产品清单列表
// @Description 分页获取产品清单列表
// @Tags 产品清单
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "页大小"
// @Param vendor_id query string false "厂商ID过滤"
// @Success 200 {object} PaginatedResponse
// @Router /product-lists [get]
func (c *ProductListController) GetProductLists(w http.ResponseWriter, r *http.Request) {
	page, pageSize := ParsePagination(r)
	lists, total, err := c.service.GetProductLists(page, pageSize, r.URL.Query().Get("vendor_id"))
	if err != nil {
		render.JSON(w, r, InternalErrorResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, NewPaginatedResponse(r, page, pageSize, len(lists), total, lists))
}

// DeleteProductList 删除产品清单
// @Summary 删除产品清单
// @Description 删除产品清单
// @Tags 产品清单
// @Produce json
// @Param id path string true "清单ID"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /product-lists/{id} [delete]
func (c *ProductListController) DeleteProductList(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := c.service.DeleteProductList(id); err != nil {
		render.JSON(w, r, ErrorResponse(err))
		return
	}
	render.JSON(w, r, SuccessResponse("删除成功", nil))
}
