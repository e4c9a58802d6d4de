/*
 * @module service/models/task
 * @description 后台任务记录模型，任务标识持久化以便跨进程重启观测
 * @architecture DDD领域驱动设计 - 实体模型
 * @documentReference dev_docs/model.md
 * @stateFlow 任务创建 -> 待执行 -> 执行中 -> 成功/失败/取消
 * @rules 任务ID持久化；工作进程消失后未完成任务在恢复时标记为失败
 * @dependencies gorm.io/gorm, github.com/google/uuid
 * @refs service/scheduler/task_runtime.go
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"productdb-service/service/meta"
)

// TaskRecord 后台任务记录
type TaskRecord struct {
	ID            string     `json:"id" gorm:"primaryKey;type:varchar(36)" example:"550e8400-e29b-41d4-a716-446655440000"`
	TaskType      string     `json:"task_type" gorm:"not null;size:50;index" example:"eox_sync"`
	Status        string     `json:"status" gorm:"not null;size:20;default:'pending';index" example:"pending"`
	StatusMessage string     `json:"status_message" gorm:"type:text"`
	ErrorMessage  string     `json:"error_message,omitempty" gorm:"type:text"`
	Result        JSONB      `json:"result,omitempty" gorm:"type:jsonb"`
	StartTime     *time.Time `json:"start_time,omitempty"`
	EndTime       *time.Time `json:"end_time,omitempty"`
	CreatedAt     time.Time  `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	CreatedBy     string     `json:"created_by" gorm:"not null;default:'system';size:100"`
	UpdatedAt     time.Time  `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName 指定表名
func (TaskRecord) TableName() string {
	return "task_records"
}

// BeforeCreate GORM钩子，创建前生成UUID
func (t *TaskRecord) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Status == "" {
		t.Status = meta.TaskStatusPending
	}
	if t.CreatedBy == "" {
		t.CreatedBy = "system"
	}
	return nil
}

// IsFinished 任务是否已结束
func (t *TaskRecord) IsFinished() bool {
	return t.Status == meta.TaskStatusSuccess ||
		t.Status == meta.TaskStatusFailed ||
		t.Status == meta.TaskStatusCancelled
}

// CanStart 任务是否可以开始执行
func (t *TaskRecord) CanStart() bool {
	return t.Status == meta.TaskStatusPending
}
