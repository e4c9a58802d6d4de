/*
 * @module service/catalog/product_group_service
 * @description 产品分组业务逻辑服务，提供分组CRUD与厂商一致性约束
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 分组创建 -> 产品挂载 -> 有产品挂载时禁止变更厂商
 * @rules (name, vendor_id) 唯一；分组下存在产品时禁止修改厂商
 * @dependencies productdb-service/service/models, gorm.io/gorm
 * @refs service/catalog/product_service.go
 */

package catalog

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"productdb-service/service/models"
)

// ProductGroupService 产品分组服务
type ProductGroupService struct {
	db *gorm.DB
}

// NewProductGroupService 创建产品分组服务实例
func NewProductGroupService(db *gorm.DB) *ProductGroupService {
	return &ProductGroupService{db: db}
}

// CreateProductGroup 创建产品分组
func (s *ProductGroupService) CreateProductGroup(group *models.ProductGroup) error {
	group.Name = strings.TrimSpace(group.Name)
	if group.Name == "" {
		return models.NewValidationError("name", "分组名称不能为空")
	}
	if group.VendorID == "" {
		return models.NewValidationError("vendor_id", "厂商不能为空")
	}

	var existing models.ProductGroup
	if err := s.db.Where("name = ? AND vendor_id = ?", group.Name, group.VendorID).
		First(&existing).Error; err == nil {
		return models.NewValidationError("name", "该厂商下已存在同名分组")
	}

	return s.db.Create(group).Error
}

// GetProductGroup 根据ID获取产品分组
func (s *ProductGroupService) GetProductGroup(id string) (*models.ProductGroup, error) {
	var group models.ProductGroup
	if err := s.db.Preload("Vendor").First(&group, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// GetProductGroups 获取产品分组列表
func (s *ProductGroupService) GetProductGroups(page, pageSize int, vendorID string) ([]models.ProductGroup, int64, error) {
	var groups []models.ProductGroup
	var total int64

	query := s.db.Model(&models.ProductGroup{})
	if vendorID != "" {
		query = query.Where("vendor_id = ?", vendorID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Vendor").Order("name ASC").Offset(offset).Limit(pageSize).Find(&groups).Error
	return groups, total, err
}

// UpdateProductGroup 更新产品分组
func (s *ProductGroupService) UpdateProductGroup(id string, updates map[string]interface{}) error {
	var group models.ProductGroup
	if err := s.db.First(&group, "id = ?", id).Error; err != nil {
		return err
	}

	if newVendor, ok := updates["vendor_id"]; ok {
		vendorID := fmt.Sprintf("%v", newVendor)
		if vendorID != group.VendorID {
			// 分组下存在产品时禁止变更厂商，否则破坏产品-分组厂商一致性
			var count int64
			if err := s.db.Model(&models.Product{}).
				Where("product_group_id = ?", id).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return models.NewValidationError("vendor_id", "分组下存在产品，禁止变更厂商")
			}
		}
	}

	if name, ok := updates["name"]; ok {
		newName := strings.TrimSpace(fmt.Sprintf("%v", name))
		if newName == "" {
			return models.NewValidationError("name", "分组名称不能为空")
		}
		updates["name"] = newName
	}

	return s.db.Model(&group).Updates(updates).Error
}

// DeleteProductGroup 删除产品分组，产品的分组引用置空
func (s *ProductGroupService) DeleteProductGroup(id string) error {
	var group models.ProductGroup
	if err := s.db.First(&group, "id = ?", id).Error; err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).
			Where("product_group_id = ?", id).
			Update("product_group_id", nil).Error; err != nil {
			return fmt.Errorf("清理产品分组引用失败: %w", err)
		}
		return tx.Delete(&group).Error
	})
}
