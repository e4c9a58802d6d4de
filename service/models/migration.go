/*
 * @module service/models/migration
 * @description 产品迁移图模型定义，包括迁移来源与迁移选项（图的边）
 * @architecture DDD领域驱动设计 - 实体模型
 * @documentReference dev_docs/model.md
 * @stateFlow 迁移选项保存 -> 替代产品解析 -> 路径递归求解
 * @rules 迁移来源 preference ∈ [1,100]，> 25 为首选；
 *        迁移选项 (product_id, migration_source_id) 唯一，禁止自引用替代；
 *        replacement_db_product 为弱引用，替代产品删除后置空
 * @dependencies gorm.io/gorm, github.com/google/uuid
 * @refs service/migration/migration_service.go
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"productdb-service/service/meta"
)

// ProductMigrationSource 迁移来源模型，带偏好权重
type ProductMigrationSource struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name        string    `json:"name" gorm:"not null;unique;size:255" example:"Cisco EoX API"`
	Description string    `json:"description" gorm:"type:text"`
	Preference  int       `json:"preference" gorm:"not null;default:50" example:"50"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName 指定表名
func (ProductMigrationSource) TableName() string {
	return "product_migration_sources"
}

// BeforeCreate GORM钩子，创建前生成UUID
func (s *ProductMigrationSource) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// BeforeSave GORM钩子，保存前校验偏好权重范围
func (s *ProductMigrationSource) BeforeSave(tx *gorm.DB) error {
	if s.Preference < meta.MigrationSourcePreferenceMin || s.Preference > meta.MigrationSourcePreferenceMax {
		return NewValidationError("preference", "偏好权重必须在 1 到 100 之间")
	}
	return nil
}

// IsPreferred 偏好权重超过阈值的来源为首选来源
func (s *ProductMigrationSource) IsPreferred() bool {
	return s.Preference > meta.MigrationSourcePreferenceThreshold
}

// ProductMigrationOption 迁移选项模型，迁移图中的一条边：
// (product, source) -> replacement_product_id
type ProductMigrationOption struct {
	ID                      string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductID               string    `json:"product_id" gorm:"not null;type:varchar(36);uniqueIndex:idx_migration_options_product_source;index"`
	MigrationSourceID       string    `json:"migration_source_id" gorm:"not null;type:varchar(36);uniqueIndex:idx_migration_options_product_source;index"`
	ReplacementProductID    string    `json:"replacement_product_id" gorm:"size:512"`
	ReplacementDbProductID  *string   `json:"replacement_db_product_id,omitempty" gorm:"type:varchar(36);index"`
	Comment                 string    `json:"comment" gorm:"type:text"`
	MigrationProductInfoURL string    `json:"migration_product_info_url" gorm:"size:1024"`
	CreatedAt               time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt               time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`

	// 关联关系。ReplacementDbProduct 为弱引用，替代产品删除后由服务层置空
	Product              Product                `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	MigrationSource      ProductMigrationSource `json:"migration_source,omitempty" gorm:"foreignKey:MigrationSourceID"`
	ReplacementDbProduct *Product               `json:"replacement_db_product,omitempty" gorm:"foreignKey:ReplacementDbProductID"`
}

// TableName 指定表名
func (ProductMigrationOption) TableName() string {
	return "product_migration_options"
}

// BeforeCreate GORM钩子，创建前生成UUID
func (o *ProductMigrationOption) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return nil
}
