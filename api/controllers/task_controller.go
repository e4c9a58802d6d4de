/*
 * @module api/controllers/task_controller
 * @description 后台任务API控制器，任务状态轮询与取消
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow HTTP请求处理流程
 * @rules 取消为协作式，在流水线边界生效
 * @dependencies productdb-service/service, github.com/go-chi/render
 * @refs dev_docs/model.md
 */

package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"productdb-service/service"
)

// TaskController 后台任务控制器
type TaskController struct{}

// NewTaskController 创建任务控制器实例
func NewTaskController() *TaskController {
	return &TaskController{}
}

// GetTask 获取任务详情
// @Summary 获取任务详情
// @Description 根据ID获取任务状态、进度消息与结果
// @Tags 后台任务
// @Produce json
// @Param id path string true "任务ID"
// @Success 200 {object} APIResponse{data=models.TaskRecord}
// @Failure 404 {object} APIResponse
// @Router /tasks/{id} [get]
func (c *TaskController) GetTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	task, err := service.GlobalTaskRuntime.GetTask(id)
	if err != nil {
		render.JSON(w, r, NotFoundResponse("任务不存在", nil))
		return
	}
	render.JSON(w, r, SuccessResponse("查询成功", task))
}

// GetTasks 获取任务列表
// @Summary 获取任务列表
// @Description 分页获取任务记录，支持类型与状态过滤
// @Tags 后台任务
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "页大小"
// @Param task_type query string false "任务类型过滤"
// @Param status query string false "状态过滤"
// @Success 200 {object} PaginatedResponse
// @Router /tasks [get]
func (c *TaskController) GetTasks(w http.ResponseWriter, r *http.Request) {
	page, pageSize := ParsePagination(r)
	tasks, total, err := service.GlobalTaskRuntime.GetTasks(page, pageSize,
		r.URL.Query().Get("task_type"), r.URL.Query().Get("status"))
	if err != nil {
		render.JSON(w, r, InternalErrorResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, NewPaginatedResponse(r, page, pageSize, len(tasks), total, tasks))
}

// CancelTask 取消任务
// @Summary 取消任务
// @Description 协作式取消运行中的任务
// @Tags 后台任务
// @Produce json
// @Param id path string true "任务ID"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Router /tasks/{id}/cancel [post]
func (c *TaskController) CancelTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := service.GlobalTaskRuntime.Cancel(id); err != nil {
		render.JSON(w, r, BadRequestResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, SuccessResponse("取消信号已发送", nil))
}
