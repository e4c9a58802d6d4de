/*
 * @module service/models/settings
 * @description 系统设置模型，字符串键到字符串值的运行时配置存储
 * @architecture 数据模型层
 * @documentReference dev_docs/model.md
 * @stateFlow 设置写入 -> 缓存失效并回填 -> 设置读取
 * @rules 键唯一且必须在 meta.SettingKeys 白名单内；值跨进程重启持久化
 * @dependencies gorm.io/gorm, github.com/google/uuid
 * @refs service/settings/settings_service.go, service/meta/settings.go
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Setting 系统设置条目
type Setting struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Key         string    `json:"key" gorm:"not null;unique;size:255"`
	Value       string    `json:"value" gorm:"type:text;not null"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName 指定表名
func (Setting) TableName() string {
	return "settings"
}

// BeforeCreate GORM钩子，创建前生成UUID
func (s *Setting) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}
