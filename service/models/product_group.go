/*
 * @module service/models/product_group
 * @description 产品分组模型定义
 * @architecture DDD领域驱动设计 - 实体模型
 * @documentReference dev_docs/model.md
 * @stateFlow 分组创建 -> 产品关联 -> 有产品关联时禁止变更厂商
 * @rules (name, vendor_id) 唯一；分组厂商与组内产品厂商必须一致
 * @dependencies gorm.io/gorm, github.com/google/uuid
 * @refs service/models/product.go, service/catalog
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductGroup 产品分组模型，(Name, VendorID) 唯一
type ProductGroup struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name      string    `json:"name" gorm:"not null;size:512;uniqueIndex:idx_product_groups_name_vendor" example:"Catalyst 2960"`
	VendorID  string    `json:"vendor_id" gorm:"not null;type:varchar(36);uniqueIndex:idx_product_groups_name_vendor;index"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`

	// 关联关系
	Vendor   Vendor    `json:"vendor,omitempty" gorm:"foreignKey:VendorID"`
	Products []Product `json:"products,omitempty" gorm:"foreignKey:ProductGroupID"`
}

// TableName 指定表名
func (ProductGroup) TableName() string {
	return "product_groups"
}

// BeforeCreate GORM钩子，创建前生成UUID
func (g *ProductGroup) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	return nil
}
