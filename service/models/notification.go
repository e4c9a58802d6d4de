/*
 * @module service/models/notification
 * @description 通知消息模型，同步任务结果等系统消息的持久化载体
 * @architecture 数据模型层
 * @documentReference dev_docs/model.md
 * @stateFlow 消息创建 -> 持久化 -> SSE/连接器分发 -> 客户端查询
 * @rules type ∈ {INFO, SUCC, WARN, ERR}
 * @dependencies gorm.io/gorm, github.com/google/uuid
 * @refs service/event/notification_service.go
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"productdb-service/service/meta"
)

// NotificationMessage 通知消息模型
type NotificationMessage struct {
	ID              string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title           string    `json:"title" gorm:"not null;size:2048"`
	Type            string    `json:"type" gorm:"not null;size:8;default:'INFO'" example:"SUCC"`
	SummaryMessage  string    `json:"summary_message" gorm:"type:text"`
	DetailedMessage string    `json:"detailed_message" gorm:"type:text"`
	Created         time.Time `json:"created" gorm:"not null;default:CURRENT_TIMESTAMP;index"`
}

// TableName 指定表名
func (NotificationMessage) TableName() string {
	return "notification_messages"
}

// BeforeCreate GORM钩子，创建前生成UUID并校验消息类型
func (n *NotificationMessage) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.Type == "" {
		n.Type = meta.NotificationTypeInfo
	}
	if !meta.IsValidNotificationType(n.Type) {
		return NewValidationError("type", "无效的通知类型: "+n.Type)
	}
	return nil
}
