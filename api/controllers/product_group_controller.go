/*
 * @module api/controllers/product_group_controller
 * @description 产品分组API控制器
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow HTTP请求处理流程
 * @rules 分组下存在产品时禁止变更厂商
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

// ProductGroupController 产品分组控制器
type ProductGroupController struct {
	service *catalog.ProductGroupService
}

// NewProductGroupController 创建产品分组控制器实例
func NewProductGroupController() *ProductGroupController {
	return &ProductGroupController{service: service.GlobalProductGroupService}
}

// CreateProductGroup 创建产品分组
// @Summary 创建产品分组
// @Description 创建新的产品分组
// @Tags 产品分组
// @Accept json
// @Produce json
// @Param group body models.ProductGroup true "分组信息"
// @Success 200 {object} APIResponse{data=models.ProductGroup}
// @Failure 400 {object} APIResponse
// @Router /product-groups [post]
func (c *ProductGroupController) CreateProductGroup(w http.ResponseWriter, r *http.Request) {
	var req models.ProductGroup
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse(fmt.Sprintf("请求参数格式错误:%s", err.Error()), nil))
		return
	}

	if err := c.service.CreateProductGroup(&req); err != nil {
		render.JSON(w, r, ErrorResponse(err))
		return
	}
	render.JSON(w, r, SuccessResponse("创建成功", &req))
}

// GetProductGroup 获取产品分组详情
// @Summary 获取产品分组详情
// @Description 根据ID获取分组详细信息
// @Tags 产品分组
// @Produce json
// @Param id path string true "分组ID"
// @Success 200 {object} APIResponse{data=models.ProductGroup}
// @Failure 404 {object} APIResponse
// @Router /product-groups/{id} [get]
func (c *ProductGroupController) GetProductGroup(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	group, err := c.service.GetProductGroup(id)
	if err != nil {
		render.JSON(w, r, NotFoundResponse("产品分组不存在", nil))
		return
	}
	render.JSON(w, r, SuccessResponse("查询成功", group))
}

// GetProductGroups 获取产品分组列表
// @Summary 获取产品分组列表
// @Description 分页获取产品分组列表
// @Tags 产品分组
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "页大小"
// @Param vendor_id query string false "厂商ID过滤"
// @Success 200 {object} PaginatedResponse
// @Router /product-groups [get]
func (c *ProductGroupController) GetProductGroups(w http.ResponseWriter, r *http.Request) {
	page, pageSize := ParsePagination(r)
	groups, total, err := c.service.GetProductGroups(page, pageSize, r.URL.Query().Get("vendor_id"))
	if err != nil {
		render.JSON(w, r, InternalErrorResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, NewPaginatedResponse(r, page, pageSize, len(groups), total, groups))
}

// UpdateProductGroup 更新产品分组
// @Summary 更新产品分组
// @Description 更新分组信息，有产品挂载时禁止变更厂商
// @Tags 产品分组
// @Accept json
// @Produce json
// @Param id path string true "分组ID"
// @Param updates body map[string]interface{} true "更新字段"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Router /product-groups/{id} [put]
func (c *ProductGroupController) UpdateProductGroup(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var updates map[string]interface{}
	if err := render.DecodeJSON(r.Body, &updates); err != nil {
		render.JSON(w, r, BadRequestResponse(fmt.Sprintf("请求参数格式错误:%s", err.Error()), nil))
		return
	}

	if err := c.service.UpdateProductGroup(id, updates); err != nil {
		render.JSON(w, r, ErrorResponse(err))
		return
	}
	render.JSON(w, r, SuccessResponse("更新成功", nil))
}

// DeleteProductGroup 删除产品分组
// @Summary 删除产品分组
// @Description 删除分组，产品的分组引用置空
// @Tags 产品分组
// @Produce json
// @Param id path string true "分组ID"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /product-groups/{id} [delete]
func (c *ProductGroupController) DeleteProductGroup(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := c.service.DeleteProductGroup(id); err != nil {
		render.JSON(w, r, ErrorResponse(err))
		return
	}
	render.JSON(w, r, SuccessResponse("删除成功", nil))
}
