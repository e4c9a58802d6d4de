/*
 * @module service/models/normalization_rule
 * @description 产品编号规范化规则模型，将原始PID按正则映射为规范PID
 * @architecture DDD领域驱动设计 - 实体模型
 * @documentReference dev_docs/model.md
 * @stateFlow 规则保存 -> 正则与模板校验 -> 按优先级匹配应用
 * @rules (vendor_id, product_id_template, regex) 唯一；priority 越小越先匹配；
 *        模板中 %s 占位符数量必须等于正则捕获组数量
 * @dependencies gorm.io/gorm, github.com/google/uuid, regexp
 * @refs service/normalization/normalization_service.go
 */

package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductIDNormalizationRule 产品编号规范化规则
type ProductIDNormalizationRule struct {
	ID                string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	VendorID          string    `json:"vendor_id" gorm:"not null;type:varchar(36);uniqueIndex:idx_norm_rules_vendor_tpl_regex;index"`
	ProductIDTemplate string    `json:"product_id" gorm:"not null;size:512;uniqueIndex:idx_norm_rules_vendor_tpl_regex"`
	Regex             string    `json:"regex" gorm:"not null;size:512;uniqueIndex:idx_norm_rules_vendor_tpl_regex"`
	Priority          int       `json:"priority" gorm:"not null;default:500"`
	Comment           string    `json:"comment" gorm:"type:text"`
	CreatedAt         time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`

	// 关联关系
	Vendor Vendor `json:"vendor,omitempty" gorm:"foreignKey:VendorID"`
}

// TableName 指定表名
func (ProductIDNormalizationRule) TableName() string {
	return "product_id_normalization_rules"
}

// BeforeCreate GORM钩子，创建前生成UUID
func (r *ProductIDNormalizationRule) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// BeforeSave GORM钩子，保存前校验正则可编译且占位符与捕获组数量一致
func (r *ProductIDNormalizationRule) BeforeSave(tx *gorm.DB) error {
	re, err := regexp.Compile(r.Regex)
	if err != nil {
		return NewValidationError("regex", "正则表达式无法编译: "+err.Error())
	}
	placeholders := strings.Count(r.ProductIDTemplate, "%s")
	if placeholders != re.NumSubexp() {
		return NewValidationError("product_id", "模板中 %s 占位符数量必须等于正则捕获组数量")
	}
	return nil
}
