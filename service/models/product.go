/*
 * @module service/models/product
 * @description 产品模型定义，包含生命周期日期字段与价格、分组等属性
 * @architecture DDD领域驱动设计 - 实体模型
 * @documentReference dev_docs/model.md
 * @stateFlow 产品创建(导入/对账) -> 对账或手工更新 -> 显式删除
 * @rules (product_id, vendor_id) 唯一；产品分组厂商必须与产品厂商一致；
 *        list_price 不允许为负；生命周期状态为派生值，不落库
 * @dependencies gorm.io/gorm, github.com/google/uuid
 * @refs service/catalog/product_service.go, service/catalog/lifecycle.go
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product 产品模型，(ProductID, VendorID) 唯一
type Product struct {
	ID                string   `json:"id" gorm:"primaryKey;type:varchar(36)" example:"550e8400-e29b-41d4-a716-446655440000"`
	ProductID         string   `json:"product_id" gorm:"not null;size:512;uniqueIndex:idx_products_pid_vendor" example:"WS-C2960-48TT-L"`
	VendorID          string   `json:"vendor_id" gorm:"not null;type:varchar(36);uniqueIndex:idx_products_pid_vendor;index" example:"550e8400-e29b-41d4-a716-446655440000"`
	Description       string   `json:"description" gorm:"type:text"`
	ListPrice         *float64 `json:"list_price,omitempty" gorm:"type:decimal(32,2)" example:"1299.00"`
	Currency          string   `json:"currency" gorm:"size:16;default:'USD'" example:"USD"`
	Tags              string   `json:"tags" gorm:"type:text"`
	InternalProductID string   `json:"internal_product_id" gorm:"size:255"`
	ProductGroupID    *string  `json:"product_group_id,omitempty" gorm:"type:varchar(36);index"`

	// 生命周期日期，未设置表示尚未公告/视为未来
	EoLAnnouncementDate             *time.Time `json:"eol_ext_announcement_date,omitempty"`
	EndOfSaleDate                   *time.Time `json:"end_of_sale_date,omitempty"`
	EndOfNewServiceAttachmentDate   *time.Time `json:"end_of_new_service_attachment_date,omitempty"`
	EndOfSWMaintenanceDate          *time.Time `json:"end_of_sw_maintenance_date,omitempty"`
	EndOfRoutineFailureAnalysisDate *time.Time `json:"end_of_routine_failure_analysis_date,omitempty"`
	EndOfServiceContractRenewalDate *time.Time `json:"end_of_service_contract_renewal_date,omitempty"`
	EndOfSecVulnSuppDate            *time.Time `json:"end_of_sec_vuln_supp_date,omitempty"`
	EndOfSupportDate                *time.Time `json:"end_of_support_date,omitempty"`

	EoxUpdateTimestamp *time.Time `json:"eox_update_time_stamp,omitempty"`
	EolReferenceNumber string     `json:"eol_reference_number" gorm:"size:255"`
	EolReferenceURL    string     `json:"eol_reference_url" gorm:"size:1024"`

	// LcStateSync 表示生命周期字段由 EoX 同步维护
	LcStateSync        bool       `json:"lc_state_sync" gorm:"not null;default:false"`
	UpdateTimestamp    *time.Time `json:"update_timestamp,omitempty"`
	ListPriceTimestamp *time.Time `json:"list_price_timestamp,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`

	// 关联关系
	Vendor       Vendor        `json:"vendor,omitempty" gorm:"foreignKey:VendorID"`
	ProductGroup *ProductGroup `json:"product_group,omitempty" gorm:"foreignKey:ProductGroupID"`
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// BeforeCreate GORM钩子，创建前生成UUID
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// LifecycleDates 返回产品的八个生命周期日期，便于整体比较
func (p *Product) LifecycleDates() []*time.Time {
	return []*time.Time{
		p.EoLAnnouncementDate,
		p.EndOfSaleDate,
		p.EndOfNewServiceAttachmentDate,
		p.EndOfSWMaintenanceDate,
		p.EndOfRoutineFailureAnalysisDate,
		p.EndOfServiceContractRenewalDate,
		p.EndOfSecVulnSuppDate,
		p.EndOfSupportDate,
	}
}
