/*
 * @module service/models/vendor
 * @description 厂商模型定义，包含保留哨兵厂商的约束
 * @architecture DDD领域驱动设计 - 实体模型
 * @documentReference dev_docs/model.md
 * @stateFlow 厂商创建 -> 产品关联 -> 删除时产品回挂哨兵厂商
 * @rules 厂商名称唯一；哨兵厂商 "unassigned" 使用固定ID且禁止删除
 * @dependencies gorm.io/gorm, github.com/google/uuid
 * @refs service/models/product.go, service/catalog
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"productdb-service/service/meta"
)

// Vendor 厂商模型
type Vendor struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name      string    `json:"name" gorm:"not null;unique;size:255" example:"Cisco Systems"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`

	// 关联关系
	Products      []Product      `json:"products,omitempty" gorm:"foreignKey:VendorID"`
	ProductGroups []ProductGroup `json:"product_groups,omitempty" gorm:"foreignKey:VendorID"`
}

// TableName 指定表名
func (Vendor) TableName() string {
	return "vendors"
}

// BeforeCreate GORM钩子，创建前生成UUID
func (v *Vendor) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return nil
}

// IsUnassigned 是否为保留哨兵厂商
func (v *Vendor) IsUnassigned() bool {
	return v.ID == meta.VendorUnassignedID || v.Name == meta.VendorUnassignedName
}
