/*
 * @module service/scheduler/cron_scheduler_test
 * @description 周期调度器单元测试
 * @architecture 测试层 - 单元测试
 */

package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"productdb-service/service/catalog"
	"productdb-service/service/database"
	"productdb-service/service/eoxclient"
	"productdb-service/service/meta"
	"productdb-service/service/migration"
	"productdb-service/service/normalization"
	"productdb-service/service/settings"
	"productdb-service/service/sync_engine"
)

func setupScheduler(t *testing.T) (*CronScheduler, *TaskRuntime) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "打开内存数据库失败")
	require.NoError(t, database.AutoMigrate(db), "数据库迁移失败")

	settingsService := settings.NewSettingsService(db, settings.NewMemoryCache())
	lease := settings.NewLeaseLock(settingsService)
	syncService := sync_engine.NewSyncService(db, settingsService, lease,
		eoxclient.NewEoxClient(settingsService),
		catalog.NewVendorService(db), catalog.NewProductService(db),
		normalization.NewNormalizationService(db), migration.NewMigrationService(db), nil)

	runtime := NewTaskRuntime(db)
	return NewCronScheduler(runtime, settingsService, syncService), runtime
}

func TestSchedulerStartStop(t *testing.T) {
	scheduler, _ := setupScheduler(t)
	require.NoError(t, scheduler.Start())
	scheduler.Stop()
}

func TestTriggerSyncNowRecordsTask(t *testing.T) {
	scheduler, runtime := setupScheduler(t)

	// Cisco API 未启用，同步任务会以失败告终，但任务记录完整落盘
	task, err := scheduler.TriggerSyncNow()
	require.NoError(t, err)
	assert.Equal(t, meta.TaskTypeEoxSync, task.TaskType)

	require.Eventually(t, func() bool {
		done, err := runtime.GetTask(task.ID)
		return err == nil && done.Status == meta.TaskStatusFailed
	}, 5*time.Second, 10*time.Millisecond)
}
