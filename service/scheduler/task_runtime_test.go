/*
 * @module service/scheduler/task_runtime_test
 * @description 任务运行时单元测试，覆盖状态机、作业互斥、取消与重启恢复
 * @architecture 测试层 - 单元测试
 */

package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"productdb-service/service/database"
	"productdb-service/service/meta"
	"productdb-service/service/models"
)

func setupRuntime(t *testing.T) *TaskRuntime {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "打开内存数据库失败")
	require.NoError(t, database.AutoMigrate(db), "数据库迁移失败")
	return NewTaskRuntime(db)
}

// waitForStatus 轮询任务直到进入终态
func waitForStatus(t *testing.T, runtime *TaskRuntime, taskID, status string) *models.TaskRecord {
	var task *models.TaskRecord
	require.Eventually(t, func() bool {
		var err error
		task, err = runtime.GetTask(taskID)
		return err == nil && task.Status == status
	}, 5*time.Second, 10*time.Millisecond, "任务未进入预期状态 %s", status)
	return task
}

func TestSubmitRunsToSuccess(t *testing.T) {
	runtime := setupRuntime(t)

	task, err := runtime.Submit(meta.TaskTypeProductCheck, "", func(ctx context.Context, taskID string, progress func(string)) (models.JSONB, error) {
		progress("处理中")
		return models.JSONB{"entries": 3}, nil
	})
	require.NoError(t, err)
	require.Equal(t, meta.TaskStatusRunning, task.Status)

	done := waitForStatus(t, runtime, task.ID, meta.TaskStatusSuccess)
	assert.NotNil(t, done.EndTime)
	assert.Equal(t, "任务执行完成", done.StatusMessage)
	assert.EqualValues(t, 3, done.Result["entries"])
}

func TestSubmitRecordsFailure(t *testing.T) {
	runtime := setupRuntime(t)

	task, err := runtime.Submit(meta.TaskTypeProductCheck, "", func(ctx context.Context, taskID string, progress func(string)) (models.JSONB, error) {
		return nil, assert.AnError
	})
	require.NoError(t, err)

	done := waitForStatus(t, runtime, task.ID, meta.TaskStatusFailed)
	assert.Contains(t, done.ErrorMessage, assert.AnError.Error())
}

func TestSubmitJobMutex(t *testing.T) {
	runtime := setupRuntime(t)
	release := make(chan struct{})

	first, err := runtime.Submit(meta.TaskTypeEoxSync, "eox_sync", func(ctx context.Context, taskID string, progress func(string)) (models.JSONB, error) {
		<-release
		return nil, nil
	})
	require.NoError(t, err)
	assert.True(t, runtime.IsJobRunning("eox_sync"))

	_, err = runtime.Submit(meta.TaskTypeEoxSync, "eox_sync", func(ctx context.Context, taskID string, progress func(string)) (models.JSONB, error) {
		return nil, nil
	})
	assert.ErrorIs(t, err, ErrJobAlreadyRunning)

	close(release)
	waitForStatus(t, runtime, first.ID, meta.TaskStatusSuccess)
	assert.False(t, runtime.IsJobRunning("eox_sync"))

	// 首个实例结束后同名作业可再次提交
	_, err = runtime.Submit(meta.TaskTypeEoxSync, "eox_sync", func(ctx context.Context, taskID string, progress func(string)) (models.JSONB, error) {
		return nil, nil
	})
	assert.NoError(t, err)
}

func TestCancelCooperative(t *testing.T) {
	runtime := setupRuntime(t)
	started := make(chan struct{})

	task, err := runtime.Submit(meta.TaskTypeEoxSync, "", func(ctx context.Context, taskID string, progress func(string)) (models.JSONB, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	})
	require.NoError(t, err)

	<-started
	require.NoError(t, runtime.Cancel(task.ID))

	waitForStatus(t, runtime, task.ID, meta.TaskStatusCancelled)

	assert.Error(t, runtime.Cancel("unknown-task"), "未在运行的任务不可取消")
}

func TestRecoverOrphanedTasks(t *testing.T) {
	runtime := setupRuntime(t)

	orphan := &models.TaskRecord{TaskType: meta.TaskTypeEoxSync, Status: meta.TaskStatusRunning}
	require.NoError(t, runtime.db.Create(orphan).Error)
	finished := &models.TaskRecord{TaskType: meta.TaskTypeEoxSync, Status: meta.TaskStatusSuccess}
	require.NoError(t, runtime.db.Create(finished).Error)

	require.NoError(t, runtime.RecoverOrphanedTasks())

	recovered, err := runtime.GetTask(orphan.ID)
	require.NoError(t, err)
	assert.Equal(t, meta.TaskStatusFailed, recovered.Status)
	assert.NotEmpty(t, recovered.ErrorMessage)

	untouched, err := runtime.GetTask(finished.ID)
	require.NoError(t, err)
	assert.Equal(t, meta.TaskStatusSuccess, untouched.Status)
}

func TestGetTasksFilters(t *testing.T) {
	runtime := setupRuntime(t)

	require.NoError(t, runtime.db.Create(&models.TaskRecord{TaskType: meta.TaskTypeEoxSync, Status: meta.TaskStatusSuccess}).Error)
	require.NoError(t, runtime.db.Create(&models.TaskRecord{TaskType: meta.TaskTypeProductCheck, Status: meta.TaskStatusFailed}).Error)

	_, total, err := runtime.GetTasks(1, 10, meta.TaskTypeEoxSync, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	_, total, err = runtime.GetTasks(1, 10, "", meta.TaskStatusFailed)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}
