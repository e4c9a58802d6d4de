/*
 * @module service/scheduler/task_runtime
 * @description 后台任务运行时，提供延迟执行、进度上报、协作式取消与重启恢复
 * @architecture 分层架构 - 任务调度层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 任务创建(pending) -> 启动(running) -> 进度上报 -> 成功/失败/取消
 * @rules 同名作业至多一个并发实例；进度为不透明状态消息字符串，消费方按
 *        任务ID轮询；取消为协作式，在流水线边界生效；任务记录持久化，
 *        进程重启后遗留的 running 任务标记为失败
 * @dependencies productdb-service/service/models, gorm.io/gorm
 * @refs service/sync_engine, service/product_check, service/scheduler/cron_scheduler.go
 */

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"productdb-service/service/meta"
	"productdb-service/service/models"
)

// ErrJobAlreadyRunning 同名作业已有实例在运行
var ErrJobAlreadyRunning = errors.New("同名作业已在运行")

// TaskFunc 任务执行函数。ctx 取消时应在下一个流水线边界停止，
// progress 用于上报不透明的状态消息
type TaskFunc func(ctx context.Context, taskID string, progress func(string)) (models.JSONB, error)

// TaskRuntime 后台任务运行时
type TaskRuntime struct {
	db *gorm.DB

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	jobs    map[string]string
}

// NewTaskRuntime 创建任务运行时
func NewTaskRuntime(db *gorm.DB) *TaskRuntime {
	return &TaskRuntime{
		db:      db,
		cancels: make(map[string]context.CancelFunc),
		jobs:    make(map[string]string),
	}
}

// RecoverOrphanedTasks 启动恢复：上一个进程遗留的未完成任务标记为失败
func (r *TaskRuntime) RecoverOrphanedTasks() error {
	now := time.Now()
	result := r.db.Model(&models.TaskRecord{}).
		Where("status IN ?", []string{meta.TaskStatusPending, meta.TaskStatusRunning}).
		Updates(map[string]interface{}{
			"status":        meta.TaskStatusFailed,
			"error_message": "工作进程重启，任务未完成",
			"end_time":      now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		slog.Warn("启动恢复：遗留任务已标记为失败", "count", result.RowsAffected)
	}
	return nil
}

// Submit 提交任务异步执行。jobName 非空时同名作业互斥
func (r *TaskRuntime) Submit(taskType, jobName string, fn TaskFunc) (*models.TaskRecord, error) {
	task := &models.TaskRecord{
		TaskType: taskType,
		Status:   meta.TaskStatusPending,
	}
	if err := r.db.Create(task).Error; err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	r.mu.Lock()
	if jobName != "" {
		if runningID, exists := r.jobs[jobName]; exists {
			r.mu.Unlock()
			cancel()
			r.finish(task, meta.TaskStatusFailed, "", fmt.Sprintf("作业 %s 已在运行（任务 %s）", jobName, runningID), nil)
			return nil, fmt.Errorf("%w: %s", ErrJobAlreadyRunning, jobName)
		}
		r.jobs[jobName] = task.ID
	}
	r.cancels[task.ID] = cancel
	r.mu.Unlock()

	now := time.Now()
	if err := r.db.Model(task).Updates(map[string]interface{}{
		"status":     meta.TaskStatusRunning,
		"start_time": now,
	}).Error; err != nil {
		r.cleanup(task.ID, jobName)
		cancel()
		return nil, err
	}
	task.Status = meta.TaskStatusRunning
	task.StartTime = &now

	go r.execute(ctx, cancel, task, jobName, fn)
	return task, nil
}

// execute 工作协程：执行任务函数并落盘终态
func (r *TaskRuntime) execute(ctx context.Context, cancel context.CancelFunc, task *models.TaskRecord, jobName string, fn TaskFunc) {
	defer cancel()
	defer r.cleanup(task.ID, jobName)

	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("任务发生 panic", "task_id", task.ID, "panic", rec)
			r.finish(task, meta.TaskStatusFailed, "", fmt.Sprintf("任务异常终止: %v", rec), nil)
		}
	}()

	progress := func(message string) {
		if err := r.db.Model(&models.TaskRecord{}).
			Where("id = ?", task.ID).
			Update("status_message", message).Error; err != nil {
			slog.Error("更新任务进度失败", "task_id", task.ID, "error", err)
		}
	}

	result, err := fn(ctx, task.ID, progress)
	switch {
	case err != nil && (errors.Is(err, context.Canceled) || ctx.Err() != nil):
		r.finish(task, meta.TaskStatusCancelled, "任务已取消", err.Error(), result)
	case err != nil:
		r.finish(task, meta.TaskStatusFailed, "", err.Error(), result)
	case ctx.Err() != nil:
		r.finish(task, meta.TaskStatusCancelled, "任务已取消", "", result)
	default:
		r.finish(task, meta.TaskStatusSuccess, "任务执行完成", "", result)
	}
}

// finish 落盘任务终态
func (r *TaskRuntime) finish(task *models.TaskRecord, status, statusMessage, errorMessage string, result models.JSONB) {
	now := time.Now()
	updates := map[string]interface{}{
		"status":   status,
		"end_time": now,
	}
	if statusMessage != "" {
		updates["status_message"] = statusMessage
	}
	if errorMessage != "" {
		updates["error_message"] = errorMessage
	}
	if result != nil {
		updates["result"] = result
	}
	if err := r.db.Model(&models.TaskRecord{}).Where("id = ?", task.ID).
		Updates(updates).Error; err != nil {
		slog.Error("写入任务终态失败", "task_id", task.ID, "status", status, "error", err)
	}
}

// cleanup 从运行表中移除任务
func (r *TaskRuntime) cleanup(taskID, jobName string) {
	r.mu.Lock()
	delete(r.cancels, taskID)
	if jobName != "" && r.jobs[jobName] == taskID {
		delete(r.jobs, jobName)
	}
	r.mu.Unlock()
}

// Cancel 协作式取消任务。任务不在本进程运行时返回错误
func (r *TaskRuntime) Cancel(taskID string) error {
	r.mu.Lock()
	cancel, exists := r.cancels[taskID]
	r.mu.Unlock()
	if !exists {
		return fmt.Errorf("任务 %s 不在运行中", taskID)
	}
	cancel()
	return nil
}

// IsJobRunning 判断命名作业是否在本进程运行
func (r *TaskRuntime) IsJobRunning(jobName string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.jobs[jobName]
	return exists
}

// GetTask 根据ID获取任务记录
func (r *TaskRuntime) GetTask(id string) (*models.TaskRecord, error) {
	var task models.TaskRecord
	if err := r.db.First(&task, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// GetTasks 分页获取任务记录
func (r *TaskRuntime) GetTasks(page, pageSize int, taskType, status string) ([]models.TaskRecord, int64, error) {
	var tasks []models.TaskRecord
	var total int64

	query := r.db.Model(&models.TaskRecord{})
	if taskType != "" {
		query = query.Where("task_type = ?", taskType)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&tasks).Error
	return tasks, total, err
}
