/*
 * @module service/models/product_check
 * @description 产品核对模型定义，包含核对查询与核对条目
 * @architecture DDD领域驱动设计 - 实体模型
 * @documentReference dev_docs/model.md
 * @stateFlow 核对创建 -> 任务执行 -> 条目生成 -> 结果查询
 * @rules owner 为空表示公开可见；条目随核对级联删除；
 *        input_product_ids 存储为单个变长文本列，读取时原样返回
 * @dependencies gorm.io/gorm, github.com/google/uuid
 * @refs service/product_check/product_check_service.go
 */

package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductCheck 产品核对查询模型
type ProductCheck struct {
	ID                string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name              string     `json:"name" gorm:"not null;size:2048"`
	InputProductIDs   string     `json:"input_product_ids" gorm:"type:text;not null"`
	MigrationSourceID *string    `json:"migration_source_id,omitempty" gorm:"type:varchar(36);index"`
	Owner             string     `json:"create_user" gorm:"size:255;index"`
	TaskID            *string    `json:"task_id,omitempty" gorm:"type:varchar(36)"`
	LastChange        time.Time  `json:"last_change" gorm:"not null;default:CURRENT_TIMESTAMP"`
	CreatedAt         time.Time  `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`

	// 关联关系
	MigrationSource *ProductMigrationSource `json:"migration_source,omitempty" gorm:"foreignKey:MigrationSourceID"`
	Entries         []ProductCheckEntry     `json:"entries,omitempty" gorm:"foreignKey:ProductCheckID;constraint:OnDelete:CASCADE"`
}

// TableName 指定表名
func (ProductCheck) TableName() string {
	return "product_checks"
}

// BeforeCreate GORM钩子，创建前生成UUID
func (c *ProductCheck) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// IsPublic owner 未设置时核对对所有人可见
func (c *ProductCheck) IsPublic() bool {
	return c.Owner == ""
}

// InProgress 是否有进行中的任务
func (c *ProductCheck) InProgress() bool {
	return c.TaskID != nil && *c.TaskID != ""
}

// ProductCheckEntry 产品核对条目，每个唯一输入编号一条
type ProductCheckEntry struct {
	ID                    string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductCheckID        string    `json:"product_check_id" gorm:"not null;type:varchar(36);index"`
	InputProductID        string    `json:"input_product_id" gorm:"not null;size:512"`
	AmountOfProducts      int       `json:"amount_of_products" gorm:"not null;default:1"`
	InDatabase            bool      `json:"in_database" gorm:"not null;default:false"`
	ProductInDatabaseID   *string   `json:"product_in_database_id,omitempty" gorm:"type:varchar(36)"`
	MigrationOptionID     *string   `json:"migration_option_id,omitempty" gorm:"type:varchar(36)"`
	ProductListHashValues string    `json:"product_list_hash_values" gorm:"type:text"`
	CreatedAt             time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`

	// 关联关系
	ProductInDatabase *Product                `json:"product_in_database,omitempty" gorm:"foreignKey:ProductInDatabaseID"`
	MigrationOption   *ProductMigrationOption `json:"migration_option,omitempty" gorm:"foreignKey:MigrationOptionID"`
}

// TableName 指定表名
func (ProductCheckEntry) TableName() string {
	return "product_check_entries"
}

// BeforeCreate GORM钩子，创建前生成UUID
func (e *ProductCheckEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}

// ListHashes 返回条目所属产品清单的哈希切片
func (e *ProductCheckEntry) ListHashes() []string {
	if e.ProductListHashValues == "" {
		return nil
	}
	return strings.Split(e.ProductListHashValues, "\n")
}
