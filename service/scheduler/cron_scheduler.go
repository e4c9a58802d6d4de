/*
 * @module service/scheduler/cron_scheduler
 * @description 周期调度器，按 cron 表达式触发 EoX 定时同步
 * @architecture 分层架构 - 任务调度层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 调度器启动 -> 到点检查 auto_sync 设置 -> 提交同步任务
 * @rules 定时触发在 auto_sync 关闭时静默跳过；同名作业互斥由任务运行时
 *        与 settings 租约双重保证
 * @dependencies github.com/robfig/cron/v3, productdb-service/service/sync_engine
 * @refs service/scheduler/task_runtime.go, service/init.go
 */

package scheduler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/robfig/cron/v3"

	"productdb-service/service/meta"
	"productdb-service/service/models"
	"productdb-service/service/settings"
	"productdb-service/service/sync_engine"
)

// 同步作业的互斥名
const SyncJobName = "eox_sync"

// CronScheduler 周期调度器
type CronScheduler struct {
	cron     *cron.Cron
	runtime  *TaskRuntime
	settings *settings.SettingsService
	sync     *sync_engine.SyncService
}

// NewCronScheduler 创建周期调度器
func NewCronScheduler(runtime *TaskRuntime, settingsService *settings.SettingsService, syncService *sync_engine.SyncService) *CronScheduler {
	return &CronScheduler{
		cron:     cron.New(cron.WithSeconds()),
		runtime:  runtime,
		settings: settingsService,
		sync:     syncService,
	}
}

// Start 注册定时同步并启动调度器
func (s *CronScheduler) Start() error {
	_, err := s.cron.AddFunc(meta.DefaultSyncCronExpression, s.triggerSync)
	if err != nil {
		return err
	}
	s.cron.Start()
	slog.Info("周期调度器已启动", "sync_cron", meta.DefaultSyncCronExpression)
	return nil
}

// Stop 停止调度器，等待在途触发返回
func (s *CronScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// triggerSync 定时触发同步。auto_sync 关闭时跳过
func (s *CronScheduler) triggerSync() {
	ctx := context.Background()

	autoSync, err := s.settings.IsAutoSyncEnabled(ctx)
	if err != nil {
		slog.Error("读取 auto_sync 设置失败，跳过定时同步", "error", err)
		return
	}
	if !autoSync {
		return
	}

	task, err := s.TriggerSyncNow()
	if err != nil {
		if errors.Is(err, ErrJobAlreadyRunning) {
			slog.Warn("定时同步触发时已有同步在运行，跳过")
			return
		}
		slog.Error("提交定时同步任务失败", "error", err)
		return
	}
	slog.Info("定时同步任务已提交", "task_id", task.ID)
}

// TriggerSyncNow 立即提交一次同步任务，定时触发与手动触发共用
func (s *CronScheduler) TriggerSyncNow() (*models.TaskRecord, error) {
	return s.runtime.Submit(meta.TaskTypeEoxSync, SyncJobName,
		func(ctx context.Context, taskID string, progress func(string)) (models.JSONB, error) {
			report, err := s.sync.Synchronize(ctx, taskID, progress)
			result := models.JSONB{}
			if report != nil {
				result = models.JSONB{
					"updated":     report.Updated,
					"created":     report.Created,
					"ignored":     report.Ignored,
					"blacklisted": report.Blacklisted,
					"errors":      report.Errors,
					"cancelled":   report.Cancelled,
					"summary":     report.Summary(),
				}
			}
			return result, err
		})
}
