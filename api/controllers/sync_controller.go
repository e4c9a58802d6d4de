/*
 * @module api/controllers/sync_controller
 * @description EoX同步API控制器，手动触发同步与同步状态查询
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 触发同步 -> 返回任务ID -> 轮询任务状态
 * @rules 同步为单例任务，重复触发返回冲突
 * @dependencies productdb-service/service, github.com/go-chi/render
 * @refs dev_docs/model.md
 */

package controllers

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"productdb-service/service"
	"productdb-service/service/meta"
	"productdb-service/service/scheduler"
)

// SyncController EoX同步控制器
type SyncController struct{}

// NewSyncController 创建同步控制器实例
func NewSyncController() *SyncController {
	return &SyncController{}
}

// TriggerSync 手动触发同步
// @Summary 手动触发EoX同步
// @Description 立即提交一次同步任务，已有同步在运行时返回冲突
// @Tags EoX同步
// @Produce json
// @Success 200 {object} APIResponse{data=models.TaskRecord}
// @Failure 409 {object} APIResponse
// @Router /sync/trigger [post]
func (c *SyncController) TriggerSync(w http.ResponseWriter, r *http.Request) {
	task, err := service.GlobalCronScheduler.TriggerSyncNow()
	if err != nil {
		if errors.Is(err, scheduler.ErrJobAlreadyRunning) {
			render.JSON(w, r, ConflictResponse(err.Error(), nil))
			return
		}
		render.JSON(w, r, InternalErrorResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, SuccessResponse("同步任务已提交", task))
}

// SyncStatusResponse 同步状态响应
type SyncStatusResponse struct {
	Running             bool   `json:"running"`
	LeaseHolder         string `json:"lease_holder,omitempty"`
	LastExecutionTime   string `json:"last_execution_time"`
	LastExecutionResult string `json:"last_execution_result"`
}

// GetSyncStatus 查询同步状态
// @Summary 查询同步状态
// @Description 返回同步租约持有情况与上次执行信息
// @Tags EoX同步
// @Produce json
// @Success 200 {object} APIResponse{data=SyncStatusResponse}
// @Router /sync/status [get]
func (c *SyncController) GetSyncStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	holder, err := service.GlobalLeaseLock.Holder(ctx, meta.SettingKeyEoxCrawlerSyncTaskID)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse(err.Error(), nil))
		return
	}
	lastTime, err := service.GlobalSettingsService.Get(ctx, meta.SettingKeyEoxCrawlerLastExecTime)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse(err.Error(), nil))
		return
	}
	lastResult, err := service.GlobalSettingsService.Get(ctx, meta.SettingKeyEoxCrawlerLastExecResult)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse(err.Error(), nil))
		return
	}

	render.JSON(w, r, SuccessResponse("查询成功", SyncStatusResponse{
		Running:             holder != "",
		LeaseHolder:         holder,
		LastExecutionTime:   lastTime,
		LastExecutionResult: lastResult,
	}))
}
