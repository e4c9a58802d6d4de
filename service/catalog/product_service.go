/*
 * @module service/catalog/product_service
 * @description 产品业务逻辑服务，提供产品CRUD、保存钩子策略与删除时的弱引用清理
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 产品保存 -> 校验不变量 -> 时间戳策略 -> 保存后钩子（迁移选项重解析）
 * @rules (product_id, vendor_id) 唯一；产品分组厂商必须与产品厂商一致；
 *        list_price 变化时更新 list_price_timestamp；仅 lc_state_sync 变化
 *        不更新 update_timestamp；保存后钩子单向触发，不回写产品
 * @dependencies productdb-service/service/models, gorm.io/gorm
 * @refs service/migration/migration_service.go, service/catalog/lifecycle.go
 */

package catalog

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"gorm.io/gorm"

	"productdb-service/service/models"
)

// ProductSaveHook 产品保存后钩子。钩子在保存产品的同一事务内执行，
// 钩子内不得再次保存产品，保证保存链单向无环。
type ProductSaveHook func(tx *gorm.DB, product *models.Product) error

// ProductDeleteHook 产品删除前钩子，同一事务内执行
type ProductDeleteHook func(tx *gorm.DB, product *models.Product) error

// ProductService 产品服务
type ProductService struct {
	db          *gorm.DB
	saveHooks   []ProductSaveHook
	deleteHooks []ProductDeleteHook
}

// NewProductService 创建产品服务实例
func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

// RegisterSaveHook 注册产品保存后钩子
func (s *ProductService) RegisterSaveHook(hook ProductSaveHook) {
	s.saveHooks = append(s.saveHooks, hook)
}

// RegisterDeleteHook 注册产品删除前钩子
func (s *ProductService) RegisterDeleteHook(hook ProductDeleteHook) {
	s.deleteHooks = append(s.deleteHooks, hook)
}

// SaveProduct 保存产品（创建或更新），应用保存钩子策略
func (s *ProductService) SaveProduct(product *models.Product) error {
	if err := s.validate(product); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var existing *models.Product
		if product.ID != "" {
			var old models.Product
			err := tx.First(&old, "id = ?", product.ID).Error
			if err == nil {
				existing = &old
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		// (product_id, vendor_id) 唯一性检查
		dup := tx.Model(&models.Product{}).
			Where("product_id = ? AND vendor_id = ?", product.ProductID, product.VendorID)
		if product.ID != "" {
			dup = dup.Where("id <> ?", product.ID)
		}
		var count int64
		if err := dup.Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return models.NewValidationError("product_id", "该厂商下已存在相同的产品ID")
		}

		s.applyTimestampPolicy(existing, product)

		if err := tx.Save(product).Error; err != nil {
			return fmt.Errorf("保存产品失败: %w", err)
		}

		// 保存后钩子与触发保存同事务执行，避免 replacement_db_product 脏读
		for _, hook := range s.saveHooks {
			if err := hook(tx, product); err != nil {
				return err
			}
		}
		return nil
	})
}

// validate 校验产品不变量
func (s *ProductService) validate(product *models.Product) error {
	product.ProductID = strings.TrimSpace(product.ProductID)
	if product.ProductID == "" {
		return models.NewValidationError("product_id", "产品ID不能为空")
	}
	if product.VendorID == "" {
		return models.NewValidationError("vendor_id", "厂商不能为空")
	}

	if product.ListPrice != nil && *product.ListPrice < 0 {
		return models.NewValidationError("list_price", "标价不能为负数")
	}

	// 产品分组厂商必须与产品厂商一致
	if product.ProductGroupID != nil && *product.ProductGroupID != "" {
		var group models.ProductGroup
		if err := s.db.First(&group, "id = ?", *product.ProductGroupID).Error; err != nil {
			return models.NewValidationError("product_group_id", "产品分组不存在")
		}
		if group.VendorID != product.VendorID {
			return models.NewValidationError("product_group_id", "产品分组厂商与产品厂商不一致")
		}
	}

	product.EolReferenceURL = strings.TrimSpace(product.EolReferenceURL)
	if product.EolReferenceURL != "" {
		u, err := url.Parse(product.EolReferenceURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return models.NewValidationError("eol_reference_url", "EoL参考链接不是合法的URL")
		}
	}
	return nil
}

// applyTimestampPolicy 应用时间戳策略：
// list_price 变化更新 list_price_timestamp；仅 lc_state_sync 变化不更新
// update_timestamp，其余任何变化都更新 update_timestamp。
func (s *ProductService) applyTimestampPolicy(existing, product *models.Product) {
	now := time.Now()

	if existing == nil {
		product.UpdateTimestamp = &now
		if product.ListPrice != nil {
			product.ListPriceTimestamp = &now
		}
		return
	}

	// 保留既有时间戳，由策略决定是否刷新
	product.UpdateTimestamp = existing.UpdateTimestamp
	product.ListPriceTimestamp = existing.ListPriceTimestamp
	product.CreatedAt = existing.CreatedAt

	if listPriceChanged(existing.ListPrice, product.ListPrice) {
		product.ListPriceTimestamp = &now
	}

	if !onlyLcStateSyncChanged(existing, product) {
		product.UpdateTimestamp = &now
	}
}

func listPriceChanged(old, new *float64) bool {
	if (old == nil) != (new == nil) {
		return true
	}
	return old != nil && *old != *new
}

// onlyLcStateSyncChanged 判断除 lc_state_sync 外是否没有任何业务字段变化
func onlyLcStateSyncChanged(old, new *models.Product) bool {
	if old.LcStateSync == new.LcStateSync {
		return false
	}
	if old.ProductID != new.ProductID ||
		old.VendorID != new.VendorID ||
		old.Description != new.Description ||
		old.Currency != new.Currency ||
		old.Tags != new.Tags ||
		old.InternalProductID != new.InternalProductID ||
		old.EolReferenceNumber != new.EolReferenceNumber ||
		old.EolReferenceURL != new.EolReferenceURL {
		return false
	}
	if !stringPtrEqual(old.ProductGroupID, new.ProductGroupID) {
		return false
	}
	if listPriceChanged(old.ListPrice, new.ListPrice) {
		return false
	}
	if !timePtrEqual(old.EoxUpdateTimestamp, new.EoxUpdateTimestamp) {
		return false
	}
	oldDates, newDates := old.LifecycleDates(), new.LifecycleDates()
	for i := range oldDates {
		if !timePtrEqual(oldDates[i], newDates[i]) {
			return false
		}
	}
	return true
}

func stringPtrEqual(a, b *string) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}

func timePtrEqual(a, b *time.Time) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || a.Equal(*b)
}

// GetProduct 根据ID获取产品
func (s *ProductService) GetProduct(id string) (*models.Product, error) {
	var product models.Product
	err := s.db.Preload("Vendor").Preload("ProductGroup").First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProductByPID 根据产品ID查找产品，跨厂商取第一个匹配
func (s *ProductService) GetProductByPID(productID string) (*models.Product, error) {
	var product models.Product
	err := s.db.Preload("Vendor").First(&product, "product_id = ?", productID).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProductByPIDAndVendor 根据 (产品ID, 厂商) 查找产品
func (s *ProductService) GetProductByPIDAndVendor(productID, vendorID string) (*models.Product, error) {
	var product models.Product
	err := s.db.First(&product, "product_id = ? AND vendor_id = ?", productID, vendorID).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ProductFilter 产品列表过滤条件
type ProductFilter struct {
	VendorID       string
	ProductGroupID string
	Search         string
}

// GetProducts 获取产品列表
func (s *ProductService) GetProducts(page, pageSize int, filter ProductFilter) ([]models.Product, int64, error) {
	var products []models.Product
	var total int64

	query := s.db.Model(&models.Product{})
	if filter.VendorID != "" {
		query = query.Where("vendor_id = ?", filter.VendorID)
	}
	if filter.ProductGroupID != "" {
		query = query.Where("product_group_id = ?", filter.ProductGroupID)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("product_id LIKE ? OR description LIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Vendor").Preload("ProductGroup").
		Order("product_id ASC").Offset(offset).Limit(pageSize).Find(&products).Error
	return products, total, err
}

// DeleteProduct 删除产品，清理指向它的迁移选项弱引用
func (s *ProductService) DeleteProduct(id string) error {
	var product models.Product
	if err := s.db.First(&product, "id = ?", id).Error; err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, hook := range s.deleteHooks {
			if err := hook(tx, &product); err != nil {
				return err
			}
		}

		// 以该产品为替代目标的迁移选项，弱引用置空，记录本身保留
		if err := tx.Model(&models.ProductMigrationOption{}).
			Where("replacement_db_product_id = ?", product.ID).
			Update("replacement_db_product_id", nil).Error; err != nil {
			return fmt.Errorf("清理迁移选项弱引用失败: %w", err)
		}

		// 该产品自身拥有的迁移选项随产品删除
		if err := tx.Where("product_id = ?", product.ID).
			Delete(&models.ProductMigrationOption{}).Error; err != nil {
			return fmt.Errorf("删除产品迁移选项失败: %w", err)
		}

		return tx.Delete(&product).Error
	})
}
