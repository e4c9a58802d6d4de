/*
 * @module service/models/product_list
 * @description 产品清单模型定义，维护规范化的产品编号集合与稳定哈希
 * @architecture DDD领域驱动设计 - 实体模型
 * @documentReference dev_docs/model.md
 * @stateFlow 清单保存 -> 列表规范化(去重排序) -> 哈希重算
 * @rules (name, vendor_id) 唯一；string_product_list 为按行排序去重后的文本；
 *        hash = SHA-256(name ∥ ":" ∥ string_product_list ∥ ":" ∥ vendor_id)
 * @dependencies gorm.io/gorm, github.com/google/uuid, crypto/sha256
 * @refs service/catalog/product_list_service.go, service/product_check
 */

package models

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductList 产品清单模型，hash 作为 Product Check 成员关系的连接键
type ProductList struct {
	ID                string    `json:"id" gorm:"primaryKey;type:varchar(36)" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name              string    `json:"name" gorm:"not null;size:2048;uniqueIndex:idx_product_lists_name_vendor"`
	Description       string    `json:"description" gorm:"type:text"`
	StringProductList string    `json:"string_product_list" gorm:"type:text;not null"`
	VendorID          string    `json:"vendor_id" gorm:"not null;type:varchar(36);uniqueIndex:idx_product_lists_name_vendor;index"`
	Hash              string    `json:"hash" gorm:"size:64;index"`
	UpdateUser        string    `json:"update_user" gorm:"size:255;default:'system'"`
	UpdateDate        time.Time `json:"update_date" gorm:"not null;default:CURRENT_TIMESTAMP"`
	CreatedAt         time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`

	// 关联关系
	Vendor Vendor `json:"vendor,omitempty" gorm:"foreignKey:VendorID"`
}

// TableName 指定表名
func (ProductList) TableName() string {
	return "product_lists"
}

// BeforeCreate GORM钩子，创建前生成UUID
func (l *ProductList) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}

// BeforeSave GORM钩子，保存前规范化清单并重算哈希
func (l *ProductList) BeforeSave(tx *gorm.DB) error {
	l.Normalize()
	l.Hash = l.ComputeHash()
	l.UpdateDate = time.Now()
	return nil
}

// Normalize 对产品编号列表做去重、排序并按行连接
func (l *ProductList) Normalize() {
	seen := make(map[string]bool)
	var entries []string
	for _, line := range strings.Split(l.StringProductList, "\n") {
		entry := strings.TrimSpace(line)
		if entry == "" || seen[entry] {
			continue
		}
		seen[entry] = true
		entries = append(entries, entry)
	}
	sort.Strings(entries)
	l.StringProductList = strings.Join(entries, "\n")
}

// ComputeHash 计算清单的稳定哈希
func (l *ProductList) ComputeHash() string {
	sum := sha256.Sum256([]byte(l.Name + ":" + l.StringProductList + ":" + l.VendorID))
	return hex.EncodeToString(sum[:])
}

// Entries 返回规范化后的产品编号切片
func (l *ProductList) Entries() []string {
	if l.StringProductList == "" {
		return nil
	}
	return strings.Split(l.StringProductList, "\n")
}

// Contains 判断清单是否包含指定产品编号（整行精确匹配）
func (l *ProductList) Contains(productID string) bool {
	for _, entry := range l.Entries() {
		if entry == productID {
			return true
		}
	}
	return false
}
