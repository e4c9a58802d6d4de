/*
 * @module api/controllers/migration_controller
 * @description 迁移图API控制器，迁移来源与迁移选项管理、迁移路径求解
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow HTTP请求处理流程
 * @rules 路径求解接口为只读；自引用替代在保存时被拒绝
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
	"productdb-service/service/migration"
	"productdb-service/service/models"
)

// MigrationController 迁移图控制器
type MigrationController struct {
	service *migration.MigrationService
}

// NewMigrationController 创建迁移图控制器实例
func NewMigrationController() *MigrationController {
	return &MigrationController{service: service.GlobalMigrationService}
}

// CreateMigrationSource 创建迁移来源
// @Summary 创建迁移来源
// @Description 创建新的迁移来源，偏好权重范围 [1,100]
// @Tags 迁移图
// @Accept json
// @Produce json
// @Param source body models.ProductMigrationSource true "迁移来源信息"
// @Success 200 {object} APIResponse{data=models.ProductMigrationSource}
// @Failure 400 {object} APIResponse
// @Router /migration-sources [post]
func (c *MigrationController) CreateMigrationSource(w http.ResponseWriter, r *http.Request) {
	var req models.ProductMigrationSource
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse(fmt.Sprintf("请求参数格式错误:%s", err.Error()), nil))
		return
	}

	if err := c.service.CreateMigrationSource(&req); err != nil {
		render.JSON(w, r, ErrorResponse(err))
		return
	}
	render.JSON(w, r, SuccessResponse("创建成功", &req))
}

// GetMigrationSources 获取迁移来源列表
// @Summary 获取迁移来源列表
// @Description 分页获取迁移来源，按偏好权重降序
// @Tags 迁移图
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "页大小"
// @Success 200 {object} PaginatedResponse
// @Router /migration-sources [get]
func (c *MigrationController) GetMigrationSources(w http.ResponseWriter, r *http.Request) {
	page, pageSize := ParsePagination(r)
	sources, total, err := c.service.GetMigrationSources(page, pageSize)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, NewPaginatedResponse(r, page, pageSize, len(sources), total, sources))
}

// UpdateMigrationSource 更新迁移来源
// @Summary 更新迁移来源
// @Description 更新迁移来源信息
// @Tags 迁移图
// @Accept json
// @Produce json
// @Param id path string true "迁移来源ID"
// @Param updates body map[string]interface{} true "更新字段"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Router /migration-sources/{id} [put]
func (c *MigrationController) UpdateMigrationSource(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var updates map[string]interface{}
	if err := render.DecodeJSON(r.Body, &updates); err != nil {
		render.JSON(w, r, BadRequestResponse(fmt.Sprintf("请求参数格式错误:%s", err.Error()), nil))
		return
	}

	if err := c.service.UpdateMigrationSource(id, updates); err != nil {
		render.JSON(w, r, ErrorResponse(err))
		return
	}
	render.JSON(w, r, SuccessResponse("更新成功", nil))
}

// DeleteMigrationSource 删除迁移来源
// @Summary 删除迁移来源
// @Description 删除迁移来源及其全部迁移选项
// @Tags 迁移图
// @Produce json
// @Param id path string true "迁移来源ID"
// @Success 200 {object} APIResponse
// @Router /migration-sources/{id} [delete]
func (c *MigrationController) DeleteMigrationSource(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := c.service.DeleteMigrationSource(id); err != nil {
		render.JSON(w, r, ErrorResponse(err))
		return
	}
	render.JSON(w, r, SuccessResponse("删除成功", nil))
}

// SaveMigrationOption 创建或更新迁移选项
// @Summary 创建或更新迁移选项
// @Description 保存迁移选项，保存前解析替代产品弱引用
// @Tags 迁移图
// @Accept json
// @Produce json
// @Param option body models.ProductMigrationOption true "迁移选项信息"
// @Success 200 {object} APIResponse{data=models.ProductMigrationOption}
// @Failure 400 {object} APIResponse
// @Router /migration-options [post]
func (c *MigrationController) SaveMigrationOption(w http.ResponseWriter, r *http.Request) {
	var req models.ProductMigrationOption
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse(fmt.Sprintf("请求参数格式错误:%s", err.Error()), nil))
		return
	}

	if err := c.service.SaveMigrationOption(&req); err != nil {
		render.JSON(w, r, ErrorResponse(err))
		return
	}
	render.JSON(w, r, SuccessResponse("保存成功", &req))
}

// GetMigrationOptions 获取迁移选项列表
// @Summary 获取迁移选项列表
// @Description 分页获取迁移选项，可按产品过滤
// @Tags 迁移图
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "页大小"
// @Param product_id query string false "产品ID过滤"
// @Success 200 {object} PaginatedResponse
// @Router /migration-options [get]
func (c *MigrationController) GetMigrationOptions(w http.ResponseWriter, r *http.Request) {
	page, pageSize := ParsePagination(r)
	options, total, err := c.service.ListMigrationOptions(page, pageSize, r.URL.Query().Get("product_id"))
	if err != nil {
		render.JSON(w, r, InternalErrorResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, NewPaginatedResponse(r, page, pageSize, len(options), total, options))
}

// DeleteMigrationOption 删除迁移选项
// @Summary 删除迁移选项
// @Description 删除迁移选项
// @Tags 迁移图
// @Produce json
// @Param id path string true "迁移选项ID"
// @Success 200 {object} APIResponse
// @Router /migration-options/{id} [delete]
func (c *MigrationController) DeleteMigrationOption(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := c.service.DeleteMigrationOption(id); err != nil {
		render.JSON(w, r, ErrorResponse(err))
		return
	}
	render.JSON(w, r, SuccessResponse("删除成功", nil))
}

// MigrationPathResponse 迁移路径响应
type MigrationPathResponse struct {
	Path                 []models.ProductMigrationOption `json:"path"`
	PreferredReplacement *models.Product                 `json:"preferred_replacement,omitempty"`
}

// GetMigrationPath 求解产品迁移路径
// @Summary 求解产品迁移路径
// @Description 返回产品在指定来源（缺省为最高偏好首选来源）下的迁移路径与首选替代产品
// @Tags 迁移图
// @Produce json
// @Param id path string true "产品ID"
// @Param source query string false "迁移来源名称"
// @Success 200 {object} APIResponse{data=MigrationPathResponse}
// @Failure 404 {object} APIResponse
// @Router /products/{id}/migration-path [get]
func (c *MigrationController) GetMigrationPath(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	product, err := service.GlobalProductService.GetProduct(id)
	if err != nil {
		render.JSON(w, r, NotFoundResponse("产品不存在", nil))
		return
	}

	sourceName := r.URL.Query().Get("source")
	path, err := c.service.GetMigrationPath(product, sourceName)
	if err != nil {
		render.JSON(w, r, ErrorResponse(err))
		return
	}

	resp := MigrationPathResponse{Path: path}
	if sourceName == "" {
		preferred, err := c.service.GetPreferredReplacement(product)
		if err != nil {
			render.JSON(w, r, InternalErrorResponse(err.Error(), nil))
			return
		}
		resp.PreferredReplacement = preferred
	}
	render.JSON(w, r, SuccessResponse("查询成功", resp))
}
