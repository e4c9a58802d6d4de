/*
 * @module api/controllers/settings_controller
 * @description 系统设置API控制器与统计信息查询
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow HTTP请求处理流程
 * @rules 仅白名单内的设置键可读写；越界的 eox_api_wait_time 在写入时被拒绝
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
	"productdb-service/service/meta"
	"productdb-service/service/settings"
)

// SettingsController 系统设置控制器
type SettingsController struct {
	service *settings.SettingsService
}

// NewSettingsController 创建系统设置控制器实例
func NewSettingsController() *SettingsController {
	return &SettingsController{service: service.GlobalSettingsService}
}

// SettingView 设置键值视图
type SettingView struct {
	Key   string `json:"key" example:"eox_api_wait_time"`
	Value string `json:"value" example:"5"`
}

// GetSettings 获取全部设置
// @Summary 获取全部设置
// @Description 返回白名单内全部设置键的当前值
// @Tags 系统设置
// @Produce json
// @Success 200 {object} APIResponse{data=[]SettingView}
// @Router /settings [get]
func (c *SettingsController) GetSettings(w http.ResponseWriter, r *http.Request) {
	views := make([]SettingView, 0, len(meta.SettingKeys))
	for _, field := range meta.SettingKeys {
		value, err := c.service.Get(r.Context(), field.Name)
		if err != nil {
			render.JSON(w, r, InternalErrorResponse(err.Error(), nil))
			return
		}
		// 凭证不回显
		if field.Name == meta.SettingKeyCiscoApiClientSecret && value != "" {
			value = "********"
		}
		views = append(views, SettingView{Key: field.Name, Value: value})
	}
	render.JSON(w, r, SuccessResponse("查询成功", views))
}

// GetSetting 获取单个设置
// @Summary 获取单个设置
// @Description 根据键获取设置值
// @Tags 系统设置
// @Produce json
// @Param key path string true "设置键"
// @Success 200 {object} APIResponse{data=SettingView}
// @Failure 400 {object} APIResponse
// @Router /settings/{key} [get]
func (c *SettingsController) GetSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if !meta.IsValidSettingKey(key) {
		render.JSON(w, r, BadRequestResponse(fmt.Sprintf("未知的设置键: %s", key), nil))
		return
	}

	value, err := c.service.Get(r.Context(), key)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, SuccessResponse("查询成功", SettingView{Key: key, Value: value}))
}

// SetSetting 写入设置
// @Summary 写入设置
// @Description 写入白名单内的设置键，带键级校验
// @Tags 系统设置
// @Accept json
// @Produce json
// @Param key path string true "设置键"
// @Param setting body SettingView true "设置值"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Router /settings/{key} [put]
func (c *SettingsController) SetSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	var req SettingView
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse(fmt.Sprintf("请求参数格式错误:%s", err.Error()), nil))
		return
	}

	if err := c.service.Set(r.Context(), key, req.Value); err != nil {
		render.JSON(w, r, ErrorResponse(err))
		return
	}
	render.JSON(w, r, SuccessResponse("写入成功", nil))
}

// StatisticsResponse 统计信息响应
type StatisticsResponse struct {
	AmountOfProductChecks             int    `json:"amount_of_product_checks"`
	AmountOfUniqueProductCheckEntries int    `json:"amount_of_unique_product_check_entries"`
	LastSyncExecutionTime             string `json:"last_sync_execution_time"`
	LastSyncExecutionResult           string `json:"last_sync_execution_result"`
}

// GetStatistics 获取统计信息
// @Summary 获取统计信息
// @Description 返回产品核对累计统计与上次同步执行信息
// @Tags 系统设置
// @Produce json
// @Success 200 {object} APIResponse{data=StatisticsResponse}
// @Router /statistics [get]
func (c *SettingsController) GetStatistics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	checks, err := c.service.GetInt(ctx, meta.SettingKeyStatAmountProductChecks)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse(err.Error(), nil))
		return
	}
	entries, err := c.service.GetInt(ctx, meta.SettingKeyStatAmountUniqueEntries)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse(err.Error(), nil))
		return
	}
	lastTime, err := c.service.Get(ctx, meta.SettingKeyEoxCrawlerLastExecTime)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse(err.Error(), nil))
		return
	}
	lastResult, err := c.service.Get(ctx, meta.SettingKeyEoxCrawlerLastExecResult)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse(err.Error(), nil))
		return
	}

	render.JSON(w, r, SuccessResponse("查询成功", StatisticsResponse{
		AmountOfProductChecks:             checks,
		AmountOfUniqueProductCheckEntries: entries,
		LastSyncExecutionTime:             lastTime,
		LastSyncExecutionResult:           lastResult,
	}))
}
