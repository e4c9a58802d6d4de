/*
 * @module api/controllers/normalization_controller
 * @description 产品编号规范化规则API控制器
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow HTTP请求处理流程
 * @rules 占位符与捕获组数量不一致在保存时返回校验错误
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
	"productdb-service/service/models"
	"productdb-service/service/normalization"
)

// NormalizationController 规范化规则控制器
type NormalizationController struct {
	service *normalization.NormalizationService
}

// NewNormalizationController 创建规范化规则控制器实例
func NewNormalizationController() *NormalizationController {
	return &NormalizationController{service: service.GlobalNormalization}
}

// SaveRule 创建或更新规范化规则
// @Summary 创建或更新规范化规则
// @Description 保存规则，校验正则可编译且 %s 占位符数量等于捕获组数量
// @Tags 规范化规则
// @Accept json
// @Produce json
// @Param rule body models.ProductIDNormalizationRule true "规则信息"
// @Success 200 {object} APIResponse{data=models.ProductIDNormalizationRule}
// @Failure 400 {object} APIResponse
// @Router /normalization-rules [post]
func (c *NormalizationController) SaveRule(w http.ResponseWriter, r *http.Request) {
	var req models.ProductIDNormalizationRule
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse(fmt.Sprintf("请求参数格式错误:%s", err.Error()), nil))
		return
	}

	if err := c.service.SaveRule(&req); err != nil {
		render.JSON(w, r, ErrorResponse(err))
		return
	}
	render.JSON(w, r, SuccessResponse("保存成功", &req))
}

// GetRules 获取规范化规则列表
// @Summary 获取规范化规则列表
// @Description 分页获取规则列表，按优先级升序
// @Tags 规范化规则
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "页大小"
// @Param vendor_id query string false "厂商ID过滤"
// @Success 200 {object} PaginatedResponse
// @Router /normalization-rules [get]
func (c *NormalizationController) GetRules(w http.ResponseWriter, r *http.Request) {
	page, pageSize := ParsePagination(r)
	rules, total, err := c.service.ListRules(page, pageSize, r.URL.Query().Get("vendor_id"))
	if err != nil {
		render.JSON(w, r, InternalErrorResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, NewPaginatedResponse(r, page, pageSize, len(rules), total, rules))
}

// DeleteRule 删除规范化规则
// @Summary 删除规范化规则
// @Description 删除规范化规则
// @Tags 规范化规则
// @Produce json
// @Param id path string true "规则ID"
// @Success 200 {object} APIResponse
// @Router /normalization-rules/{id} [delete]
func (c *NormalizationController) DeleteRule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := c.service.DeleteRule(id); err != nil {
		render.JSON(w, r, ErrorResponse(err))
		return
	}
	render.JSON(w, r, SuccessResponse("删除成功", nil))
}

// NormalizeRequest 规范化试算请求
type NormalizeRequest struct {
	VendorID string `json:"vendor_id"`
	RawPID   string `json:"raw_pid"`
}

// NormalizeResponse 规范化试算响应
type NormalizeResponse struct {
	RawPID        string `json:"raw_pid"`
	NormalizedPID string `json:"normalized_pid"`
}

// Normalize 规范化试算
// @Summary 规范化试算
// @Description 对原始PID应用规则试算规范化结果，不修改数据
// @Tags 规范化规则
// @Accept json
// @Produce json
// @Param request body NormalizeRequest true "试算请求"
// @Success 200 {object} APIResponse{data=NormalizeResponse}
// @Failure 400 {object} APIResponse
// @Router /normalization-rules/normalize [post]
func (c *NormalizationController) Normalize(w http.ResponseWriter, r *http.Request) {
	var req NormalizeRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse(fmt.Sprintf("请求参数格式错误:%s", err.Error()), nil))
		return
	}

	normalized, err := c.service.Normalize(req.VendorID, req.RawPID)
	if err != nil {
		render.JSON(w, r, ErrorResponse(err))
		return
	}
	render.JSON(w, r, SuccessResponse("试算成功", NormalizeResponse{
		RawPID:        req.RawPID,
		NormalizedPID: normalized,
	}))
}
