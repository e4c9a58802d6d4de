/*
 * @module api/controllers/product_check_controller
 * @description 产品核对API控制器，核对管理、异步执行与条目查询
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 创建核对 -> 提交执行任务 -> 轮询任务状态 -> 查询条目
 * @rules owner 为空的核对公开可见；批量删除为单例任务
 * @dependencies productdb-service/service, github.com/go-chi/render
 * @refs dev_docs/model.md
 */

package controllers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"productdb-service/service"
	"productdb-service/service/meta"
	"productdb-service/service/models"
	"productdb-service/service/product_check"
)

// ProductCheckController 产品核对控制器
type ProductCheckController struct {
	service *product_check.ProductCheckService
}

// NewProductCheckController 创建产品核对控制器实例
func NewProductCheckController() *ProductCheckController {
	return &ProductCheckController{service: service.GlobalProductCheckService}
}

// requestUser 从请求头获取调用方用户名，外层网关负责填充
func requestUser(r *http.Request) string {
	return r.Header.Get("X-User-Name")
}

// CreateProductCheck 创建产品核对
// @Summary 创建产品核对
// @Description 创建核对查询，owner 为空表示公开
// @Tags 产品核对
// @Accept json
// @Produce json
// @Param check body models.ProductCheck true "核对信息"
// @Success 200 {object} APIResponse{data=models.ProductCheck}
// @Failure 400 {object} APIResponse
// @Router /product-checks [post]
func (c *ProductCheckController) CreateProductCheck(w http.ResponseWriter, r *http.Request) {
	var req models.ProductCheck
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, BadRequestResponse(fmt.Sprintf("请求参数格式错误:%s", err.Error()), nil))
		return
	}

	if err := c.service.CreateProductCheck(&req); err != nil {
		render.JSON(w, r, ErrorResponse(err))
		return
	}
	render.JSON(w, r, SuccessResponse("创建成功", &req))
}

// GetProductCheck 获取产品核对详情
// @Summary 获取产品核对详情
// @Description 根据ID获取核对，私有核对仅 owner 可见
// @Tags 产品核对
// @Produce json
// @Param id path string true "核对ID"
// @Success 200 {object} APIResponse{data=models.ProductCheck}
// @Failure 404 {object} APIResponse
// @Router /product-checks/{id} [get]
func (c *ProductCheckController) GetProductCheck(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	check, err := c.service.GetProductCheck(id, requestUser(r))
	if err != nil {
		render.JSON(w, r, NotFoundResponse("产品核对不存在", nil))
		return
	}
	render.JSON(w, r, SuccessResponse("查询成功", check))
}

// GetProductChecks 获取产品核对列表
// @Summary 获取产品核对列表
// @Description 分页获取对调用方可见的核对列表
// @Tags 产品核对
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "页大小"
// @Success 200 {object} PaginatedResponse
// @Router /product-checks [get]
func (c *ProductCheckController) GetProductChecks(w http.ResponseWriter, r *http.Request) {
	page, pageSize := ParsePagination(r)
	checks, total, err := c.service.GetProductChecks(page, pageSize, requestUser(r))
	if err != nil {
		render.JSON(w, r, InternalErrorResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, NewPaginatedResponse(r, page, pageSize, len(checks), total, checks))
}

// RunProductCheck 异步执行产品核对
// @Summary 执行产品核对
// @Description 提交核对执行任务，返回任务ID供轮询
// @Tags 产品核对
// @Produce json
// @Param id path string true "核对ID"
// @Success 200 {object} APIResponse{data=models.TaskRecord}
// @Failure 404 {object} APIResponse
// @Router /product-checks/{id}/run [post]
func (c *ProductCheckController) RunProductCheck(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	check, err := c.service.GetProductCheck(id, requestUser(r))
	if err != nil {
		render.JSON(w, r, NotFoundResponse("产品核对不存在", nil))
		return
	}

	task, err := service.GlobalTaskRuntime.Submit(meta.TaskTypeProductCheck, "",
		func(ctx context.Context, taskID string, progress func(string)) (models.JSONB, error) {
			// 任务标记写到核对上，消费方可据此判断进行中
			service.DB.Model(check).Update("task_id", taskID)
			progress(fmt.Sprintf("核对 %s 执行中", check.Name))
			if err := c.service.Run(ctx, check); err != nil {
				return nil, err
			}
			return models.JSONB{"product_check_id": check.ID}, nil
		})
	if err != nil {
		render.JSON(w, r, ErrorResponse(err))
		return
	}
	render.JSON(w, r, SuccessResponse("任务已提交", task))
}

// GetEntries 获取核对条目
// @Summary 获取核对条目
// @Description 获取核对的全部条目及清单归属名称
// @Tags 产品核对
// @Produce json
// @Param id path string true "核对ID"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /product-checks/{id}/entries [get]
func (c *ProductCheckController) GetEntries(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := c.service.GetProductCheck(id, requestUser(r)); err != nil {
		render.JSON(w, r, NotFoundResponse("产品核对不存在", nil))
		return
	}

	entries, err := c.service.GetEntries(id)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse(err.Error(), nil))
		return
	}

	// 清单归属名称按读取时的清单内容重新解析
	type entryView struct {
		models.ProductCheckEntry
		ProductListNames []string `json:"product_list_names"`
	}
	views := make([]entryView, 0, len(entries))
	for i := range entries {
		names, err := c.service.ProductListNames(&entries[i])
		if err != nil {
			render.JSON(w, r, InternalErrorResponse(err.Error(), nil))
			return
		}
		views = append(views, entryView{ProductCheckEntry: entries[i], ProductListNames: names})
	}
	render.JSON(w, r, SuccessResponse("查询成功", views))
}

// DeleteProductCheck 删除产品核对
// @Summary 删除产品核对
// @Description 删除核对及其条目
// @Tags 产品核对
// @Produce json
// @Param id path string true "核对ID"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /product-checks/{id} [delete]
func (c *ProductCheckController) DeleteProductCheck(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := c.service.GetProductCheck(id, requestUser(r)); err != nil {
		render.JSON(w, r, NotFoundResponse("产品核对不存在", nil))
		return
	}
	if err := c.service.DeleteProductCheck(id); err != nil {
		render.JSON(w, r, ErrorResponse(err))
		return
	}
	render.JSON(w, r, SuccessResponse("删除成功", nil))
}

// DeleteAllProductChecks 批量删除全部产品核对
// @Summary 批量删除全部产品核对
// @Description 提交批量删除单例任务
// @Tags 产品核对
// @Produce json
// @Success 200 {object} APIResponse{data=models.TaskRecord}
// @Failure 409 {object} APIResponse
// @Router /product-checks [delete]
func (c *ProductCheckController) DeleteAllProductChecks(w http.ResponseWriter, r *http.Request) {
	task, err := service.GlobalTaskRuntime.Submit(meta.TaskTypeProductCheckDelete, "product_check_delete",
		func(ctx context.Context, taskID string, progress func(string)) (models.JSONB, error) {
			progress("批量删除产品核对中")
			return nil, c.service.DeleteAllProductChecks(ctx, taskID)
		})
	if err != nil {
		render.JSON(w, r, ConflictResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, SuccessResponse("任务已提交", task))
}
