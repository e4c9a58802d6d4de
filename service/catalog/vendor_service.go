/*
 * @module service/catalog/vendor_service
 * @description 厂商业务逻辑服务，提供厂商的CRUD操作与哨兵厂商保护
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 厂商创建 -> 产品/分组挂载 -> 删除时产品回挂哨兵厂商
 * @rules 厂商名称唯一；哨兵厂商 "unassigned" 禁止删除和改名；
 *        删除厂商时其产品与分组转移到哨兵厂商
 * @dependencies productdb-service/service/models, gorm.io/gorm
 * @refs service/catalog/product_service.go
 */

package catalog

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"productdb-service/service/meta"
	"productdb-service/service/models"
)

// VendorService 厂商服务
type VendorService struct {
	db *gorm.DB
}

// NewVendorService 创建厂商服务实例
func NewVendorService(db *gorm.DB) *VendorService {
	return &VendorService{db: db}
}

// CreateVendor 创建厂商
func (s *VendorService) CreateVendor(vendor *models.Vendor) error {
	vendor.Name = strings.TrimSpace(vendor.Name)
	if vendor.Name == "" {
		return models.NewValidationError("name", "厂商名称不能为空")
	}

	var existing models.Vendor
	if err := s.db.Where("name = ?", vendor.Name).First(&existing).Error; err == nil {
		return models.NewValidationError("name", "厂商名称已存在")
	}

	return s.db.Create(vendor).Error
}

// GetVendor 根据ID获取厂商
func (s *VendorService) GetVendor(id string) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := s.db.First(&vendor, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

// GetVendorByName 根据名称获取厂商
func (s *VendorService) GetVendorByName(name string) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := s.db.First(&vendor, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

// GetVendors 获取厂商列表
func (s *VendorService) GetVendors(page, pageSize int, nameFilter string) ([]models.Vendor, int64, error) {
	var vendors []models.Vendor
	var total int64

	query := s.db.Model(&models.Vendor{})
	if nameFilter != "" {
		query = query.Where("name LIKE ?", "%"+nameFilter+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("name ASC").Offset(offset).Limit(pageSize).Find(&vendors).Error
	return vendors, total, err
}

// UpdateVendor 更新厂商，哨兵厂商禁止改名
func (s *VendorService) UpdateVendor(id string, updates map[string]interface{}) error {
	var vendor models.Vendor
	if err := s.db.First(&vendor, "id = ?", id).Error; err != nil {
		return err
	}

	if name, ok := updates["name"]; ok {
		newName := strings.TrimSpace(fmt.Sprintf("%v", name))
		if vendor.IsUnassigned() && newName != vendor.Name {
			return models.ErrOperationNotAllowed
		}
		if newName == "" {
			return models.NewValidationError("name", "厂商名称不能为空")
		}
		var existing models.Vendor
		if err := s.db.Where("name = ? AND id <> ?", newName, id).First(&existing).Error; err == nil {
			return models.NewValidationError("name", "厂商名称已存在")
		}
		updates["name"] = newName
	}

	return s.db.Model(&vendor).Updates(updates).Error
}

// DeleteVendor 删除厂商，产品与分组回挂哨兵厂商
func (s *VendorService) DeleteVendor(id string) error {
	var vendor models.Vendor
	if err := s.db.First(&vendor, "id = ?", id).Error; err != nil {
		return err
	}
	if vendor.IsUnassigned() {
		return models.ErrOperationNotAllowed
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).
			Where("vendor_id = ?", id).
			Update("vendor_id", meta.VendorUnassignedID).Error; err != nil {
			return fmt.Errorf("转移产品到哨兵厂商失败: %w", err)
		}
		if err := tx.Model(&models.ProductGroup{}).
			Where("vendor_id = ?", id).
			Update("vendor_id", meta.VendorUnassignedID).Error; err != nil {
			return fmt.Errorf("转移产品分组到哨兵厂商失败: %w", err)
		}
		return tx.Delete(&vendor).Error
	})
}

// EnsureUnassignedVendor 确保哨兵厂商存在，返回其记录
func (s *VendorService) EnsureUnassignedVendor() (*models.Vendor, error) {
	var vendor models.Vendor
	err := s.db.First(&vendor, "id = ?", meta.VendorUnassignedID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		vendor = models.Vendor{ID: meta.VendorUnassignedID, Name: meta.VendorUnassignedName}
		if err := s.db.Create(&vendor).Error; err != nil {
			return nil, err
		}
		return &vendor, nil
	}
	if err != nil {
		return nil, err
	}
	return &vendor, nil
}
