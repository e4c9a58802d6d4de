/*
 * @module api/controllers/vendor_controller
 * @description 厂商API控制器，处理厂商管理的HTTP请求
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow HTTP请求处理流程
 * @rules 哨兵厂商的删除与改名返回禁止操作
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

// VendorController 厂商控制器
type VendorController struct {
	service *catalog.VendorService
}

// NewVendorController 创建厂商控制器实例
func NewVendorController() *VendorController {
	return &VendorController{service: service.GlobalVendorService}
}

// CreateVendor 创建厂商
// @Summary 创建厂商
// @Description 创建新的厂商
// @Tags 厂商
// @Accept json
// @Produce json
// @Param vendor body models.Vendor true "厂商信息"
// @Success 200 {object} APIResponse{data=models.Vendor}
// @Failure 400 {object} APIResponse
// @Router /vendors [post]
func (c *VendorController) CreateVendor(w http.ResponseWriter, r *http.Request) {
	var req models.Vendor
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse(fmt.Sprintf("请求参数格式错误:%s", err.Error()), nil))
		return
	}

	if err := c.service.CreateVendor(&req); err != nil {
		render.JSON(w, r, ErrorResponse(err))
		return
	}

	render.JSON(w, r, SuccessResponse("创建成功", &req))
}

// GetVendor 获取厂商详情
// @Summary 获取厂商详情
// @Description 根据ID获取厂商详细信息
// @Tags 厂商
// @Produce json
// @Param id path string true "厂商ID"
// @Success 200 {object} APIResponse{data=models.Vendor}
// @Failure 404 {object} APIResponse
// @Router /vendors/{id} [get]
func (c *VendorController) GetVendor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	vendor, err := c.service.GetVendor(id)
	if err != nil {
		render.JSON(w, r, NotFoundResponse("厂商不存在", nil))
		return
	}
	render.JSON(w, r, SuccessResponse("查询成功", vendor))
}

// GetVendors 获取厂商列表
// @Summary 获取厂商列表
// @Description 分页获取厂商列表
// @Tags 厂商
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "页大小"
// @Param name query string false "名称过滤"
// @Success 200 {object} PaginatedResponse
// @Router /vendors [get]
func (c *VendorController) GetVendors(w http.ResponseWriter, r *http.Request) {
	page, pageSize := ParsePagination(r)
	vendors, total, err := c.service.GetVendors(page, pageSize, r.URL.Query().Get("name"))
	if err != nil {
		render.JSON(w, r, InternalErrorResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, NewPaginatedResponse(r, page, pageSize, len(vendors), total, vendors))
}

// UpdateVendor 更新厂商
// @Summary 更新厂商
// @Description 更新厂商信息
// @Tags 厂商
// @Accept json
// @Produce json
// @Param id path string true "厂商ID"
// @Param updates body map[string]interface{} true "更新字段"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Failure 403 {object} APIResponse
// @Router /vendors/{id} [put]
func (c *VendorController) UpdateVendor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var updates map[string]interface{}
	if err := render.DecodeJSON(r.Body, &updates); err != nil {
		render.JSON(w, r, BadRequestResponse(fmt.Sprintf("请求参数格式错误:%s", err.Error()), nil))
		return
	}

	if err := c.service.UpdateVendor(id, updates); err != nil {
		render.JSON(w, r, ErrorResponse(err))
		return
	}
	render.JSON(w, r, SuccessResponse("更新成功", nil))
}

// DeleteVendor 删除厂商
// @Summary 删除厂商
// @Description 删除厂商，其产品与分组转移到哨兵厂商
// @Tags 厂商
// @Produce json
// @Param id path string true "厂商ID"
// @Success 200 {object} APIResponse
// @Failure 403 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /vendors/{id} [delete]
func (c *VendorController) DeleteVendor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := c.service.DeleteVendor(id); err != nil {
		render.JSON(w, r, ErrorResponse(err))
		return
	}
	render.JSON(w, r, SuccessResponse("删除成功", nil))
}
