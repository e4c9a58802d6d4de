/*
 * @module service/catalog/product_list_service
 * @description 产品清单业务逻辑服务，维护规范化清单内容与稳定哈希
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 清单保存 -> 规范化(去重/排序/换行连接) -> 重算哈希
 * @rules 哈希 = SHA-256(name:normalized_list:vendor_id)，作为产品核对的归属键；
 *        清单改名后哈希变化，历史核对条目按哈希解析当前名称
 * @dependencies productdb-service/service/models, gorm.io/gorm
 * @refs service/product_check/product_check_service.go
 */

package catalog

import (
	"strings"

	"gorm.io/gorm"

	"productdb-service/service/models"
)

// ProductListService 产品清单服务
type ProductListService struct {
	db *gorm.DB
}

// NewProductListService 创建产品清单服务实例
func NewProductListService(db *gorm.DB) *ProductListService {
	return &ProductListService{db: db}
}

// SaveProductList 保存产品清单，模型钩子负责规范化与哈希重算
func (s *ProductListService) SaveProductList(list *models.ProductList) error {
	list.Name = strings.TrimSpace(list.Name)
	if list.Name == "" {
		return models.NewValidationError("name", "清单名称不能为空")
	}
	if list.VendorID == "" {
		return models.NewValidationError("vendor_id", "厂商不能为空")
	}

	dup := s.db.Model(&models.ProductList{}).
		Where("name = ? AND vendor_id = ?", list.Name, list.VendorID)
	if list.ID != "" {
		dup = dup.Where("id <> ?", list.ID)
	}
	var count int64
	if err := dup.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return models.NewValidationError("name", "该厂商下已存在同名清单")
	}

	return s.db.Save(list).Error
}

// GetProductList 根据ID获取产品清单
func (s *ProductListService) GetProductList(id string) (*models.ProductList, error) {
	var list models.ProductList
	if err := s.db.Preload("Vendor").First(&list, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &list, nil
}

// GetProductLists 获取产品清单列表
func (s *ProductListService) GetProductLists(page, pageSize int, vendorID string) ([]models.ProductList, int64, error) {
	var lists []models.ProductList
	var total int64

	query := s.db.Model(&models.ProductList{})
	if vendorID != "" {
		query = query.Where("vendor_id = ?", vendorID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Vendor").Order("name ASC").Offset(offset).Limit(pageSize).Find(&lists).Error
	return lists, total, err
}

// DeleteProductList 删除产品清单
func (s *ProductListService) DeleteProductList(id string) error {
	var list models.ProductList
	if err := s.db.First(&list, "id = ?", id).Error; err != nil {
		return err
	}
	return s.db.Delete(&list).Error
}

// ListsContaining 返回清单内容中按整行包含 productID 的全部清单
func (s *ProductListService) ListsContaining(productID string) ([]models.ProductList, error) {
	// 规范化后的清单按行存储，逐条用 Contains 精确判断，避免 LIKE 的子串误判
	var candidates []models.ProductList
	if err := s.db.Find(&candidates).Error; err != nil {
		return nil, err
	}

	var matched []models.ProductList
	for _, list := range candidates {
		if list.Contains(productID) {
			matched = append(matched, list)
		}
	}
	return matched, nil
}

// NamesByHashes 将哈希集合解析为当前清单名称，容忍清单改名后的历史哈希
func (s *ProductListService) NamesByHashes(hashes []string) ([]string, error) {
	if len(hashes) == 0 {
		return []string{}, nil
	}
	var lists []models.ProductList
	if err := s.db.Where("hash IN ?", hashes).Find(&lists).Error; err != nil {
		return nil, err
	}
	names := make([]string, 0, len(lists))
	for _, list := range lists {
		names = append(names, list.Name)
	}
	return names, nil
}
