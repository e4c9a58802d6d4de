/*
 * @module service/migration/migration_service
 * @description 产品迁移图服务，维护迁移来源与迁移选项，递归求解首选替代路径
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 迁移选项保存 -> 替代产品解析 -> 路径遍历(访问集防环) -> 终点替代产品
 * @rules 禁止自引用替代；路径求解只跟随同一来源；偏好权重 ≤ 25 的来源
 *        不会被隐式选中；遍历带 product_id 访问集，检测到环时记录日志并截断
 * @dependencies productdb-service/service/models, productdb-service/service/catalog, gorm.io/gorm
 * @refs service/product_check/product_check_service.go, service/sync_engine
 */

package migration

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cast"
	"gorm.io/gorm"

	"productdb-service/service/catalog"
	"productdb-service/service/meta"
	"productdb-service/service/models"
)

// MigrationService 迁移图服务
type MigrationService struct {
	db *gorm.DB
}

// NewMigrationService 创建迁移图服务实例
func NewMigrationService(db *gorm.DB) *MigrationService {
	return &MigrationService{db: db}
}

// CreateMigrationSource 创建迁移来源
func (s *MigrationService) CreateMigrationSource(source *models.ProductMigrationSource) error {
	source.Name = strings.TrimSpace(source.Name)
	if source.Name == "" {
		return models.NewValidationError("name", "迁移来源名称不能为空")
	}
	var existing models.ProductMigrationSource
	if err := s.db.Where("name = ?", source.Name).First(&existing).Error; err == nil {
		return models.NewValidationError("name", "迁移来源名称已存在")
	}
	return s.db.Create(source).Error
}

// GetMigrationSource 根据ID获取迁移来源
func (s *MigrationService) GetMigrationSource(id string) (*models.ProductMigrationSource, error) {
	var source models.ProductMigrationSource
	if err := s.db.First(&source, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &source, nil
}

// GetMigrationSourceByName 根据名称获取迁移来源
func (s *MigrationService) GetMigrationSourceByName(name string) (*models.ProductMigrationSource, error) {
	var source models.ProductMigrationSource
	if err := s.db.First(&source, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &source, nil
}

// GetMigrationSources 获取迁移来源列表
func (s *MigrationService) GetMigrationSources(page, pageSize int) ([]models.ProductMigrationSource, int64, error) {
	var sources []models.ProductMigrationSource
	var total int64

	if err := s.db.Model(&models.ProductMigrationSource{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := s.db.Order("preference DESC, name ASC").Offset(offset).Limit(pageSize).Find(&sources).Error
	return sources, total, err
}

// UpdateMigrationSource 更新迁移来源
func (s *MigrationService) UpdateMigrationSource(id string, updates map[string]interface{}) error {
	var source models.ProductMigrationSource
	if err := s.db.First(&source, "id = ?", id).Error; err != nil {
		return err
	}
	// Updates 不触发 BeforeSave 的范围校验，这里提前校验
	if pref, ok := updates["preference"]; ok {
		p := cast.ToInt(pref)
		if p < meta.MigrationSourcePreferenceMin || p > meta.MigrationSourcePreferenceMax {
			return models.NewValidationError("preference", "偏好权重必须在 1 到 100 之间")
		}
	}
	return s.db.Model(&source).Updates(updates).Error
}

// DeleteMigrationSource 删除迁移来源及其全部迁移选项
func (s *MigrationService) DeleteMigrationSource(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("migration_source_id = ?", id).
			Delete(&models.ProductMigrationOption{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.ProductMigrationSource{}, "id = ?", id).Error
	})
}

// SaveMigrationOption 保存迁移选项，保存前解析替代产品弱引用
func (s *MigrationService) SaveMigrationOption(option *models.ProductMigrationOption) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.resolveReplacement(tx, option); err != nil {
			return err
		}
		return tx.Save(option).Error
	})
}

// resolveReplacement 迁移选项保存前钩子：拒绝自引用替代，
// 并将 replacement_db_product 解析为目录中匹配 replacement_product_id 的产品
func (s *MigrationService) resolveReplacement(tx *gorm.DB, option *models.ProductMigrationOption) error {
	option.ReplacementProductID = strings.TrimSpace(option.ReplacementProductID)

	var owner models.Product
	if err := tx.First(&owner, "id = ?", option.ProductID).Error; err != nil {
		return models.NewValidationError("product_id", "迁移选项所属产品不存在")
	}

	if option.ReplacementProductID != "" && option.ReplacementProductID == owner.ProductID {
		return models.NewValidationError("replacement_product_id", "替代产品不能与自身相同")
	}

	option.ReplacementDbProductID = nil
	option.ReplacementDbProduct = nil
	if option.ReplacementProductID != "" {
		var replacement models.Product
		err := tx.First(&replacement, "product_id = ?", option.ReplacementProductID).Error
		if err == nil {
			option.ReplacementDbProductID = &replacement.ID
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}
	return nil
}

// ResolveDanglingReplacements 产品保存后钩子：所有以该产品 product_id
// 为替代目标的迁移选项重新解析弱引用，使新建产品回溯绑定悬空替代。
// 与触发保存同事务执行，且不回写产品，保证保存链单向。
func (s *MigrationService) ResolveDanglingReplacements(tx *gorm.DB, product *models.Product) error {
	var options []models.ProductMigrationOption
	if err := tx.Where("replacement_product_id = ?", product.ProductID).
		Find(&options).Error; err != nil {
		return err
	}
	for i := range options {
		if err := s.resolveReplacement(tx, &options[i]); err != nil {
			return err
		}
		if err := tx.Save(&options[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// GetMigrationOption 根据ID获取迁移选项
func (s *MigrationService) GetMigrationOption(id string) (*models.ProductMigrationOption, error) {
	var option models.ProductMigrationOption
	err := s.db.Preload("MigrationSource").Preload("ReplacementDbProduct").
		First(&option, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &option, nil
}

// GetMigrationOptions 获取产品的全部迁移选项，按来源偏好降序
func (s *MigrationService) GetMigrationOptions(productID string) ([]models.ProductMigrationOption, error) {
	var options []models.ProductMigrationOption
	err := s.db.Preload("MigrationSource").Preload("ReplacementDbProduct").
		Where("product_id = ?", productID).Find(&options).Error
	if err != nil {
		return nil, err
	}
	sort.SliceStable(options, func(i, j int) bool {
		return options[i].MigrationSource.Preference > options[j].MigrationSource.Preference
	})
	return options, nil
}

// ListMigrationOptions 分页获取迁移选项
func (s *MigrationService) ListMigrationOptions(page, pageSize int, productID string) ([]models.ProductMigrationOption, int64, error) {
	var options []models.ProductMigrationOption
	var total int64

	query := s.db.Model(&models.ProductMigrationOption{})
	if productID != "" {
		query = query.Where("product_id = ?", productID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("MigrationSource").Preload("ReplacementDbProduct").
		Offset(offset).Limit(pageSize).Find(&options).Error
	return options, total, err
}

// DeleteMigrationOption 删除迁移选项
func (s *MigrationService) DeleteMigrationOption(id string) error {
	return s.db.Delete(&models.ProductMigrationOption{}, "id = ?", id).Error
}

// HasMigrationOptions 判断产品是否存在迁移选项
func (s *MigrationService) HasMigrationOptions(productID string) (bool, error) {
	var count int64
	err := s.db.Model(&models.ProductMigrationOption{}).
		Where("product_id = ?", productID).Count(&count).Error
	return count > 0, err
}

// HasPreferred 判断产品是否存在首选迁移选项（来源偏好 > 25）
func (s *MigrationService) HasPreferred(productID string) (bool, error) {
	options, err := s.GetMigrationOptions(productID)
	if err != nil {
		return false, err
	}
	for _, o := range options {
		if o.MigrationSource.IsPreferred() {
			return true, nil
		}
	}
	return false, nil
}

// IsValidReplacement 迁移选项为有效替代，当且仅当 replacement_product_id
// 非空，且替代产品不在目录中，或在目录中但尚未停售
func (s *MigrationService) IsValidReplacement(option *models.ProductMigrationOption) bool {
	if option.ReplacementProductID == "" {
		return false
	}
	if option.ReplacementDbProductID == nil {
		return true
	}
	replacement := option.ReplacementDbProduct
	if replacement == nil {
		var p models.Product
		if err := s.db.First(&p, "id = ?", *option.ReplacementDbProductID).Error; err != nil {
			return true
		}
		replacement = &p
	}
	return !catalog.IsEndOfSale(replacement, time.Now())
}

// GetValidReplacementProduct 返回有效迁移选项指向的目录产品，无效或不在目录返回 nil
func (s *MigrationService) GetValidReplacementProduct(option *models.ProductMigrationOption) (*models.Product, error) {
	if !s.IsValidReplacement(option) || option.ReplacementDbProductID == nil {
		return nil, nil
	}
	var product models.Product
	if err := s.db.First(&product, "id = ?", *option.ReplacementDbProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// GetMigrationPath 求解产品在指定来源下的迁移路径。
// sourceName 为空时选取偏好最高且 > 25 的来源；首元素为直接替代，
// 尾元素为终点有效替代。遍历维护 product_id 访问集，发现环时截断。
func (s *MigrationService) GetMigrationPath(product *models.Product, sourceName string) ([]models.ProductMigrationOption, error) {
	source, err := s.pickSource(product, sourceName)
	if err != nil || source == nil {
		return []models.ProductMigrationOption{}, err
	}

	path := []models.ProductMigrationOption{}
	visited := map[string]bool{product.ProductID: true}

	current, err := s.optionFor(product.ID, source.ID)
	if err != nil || current == nil {
		return path, err
	}
	path = append(path, *current)

	for {
		last := &path[len(path)-1]
		// 终点条件：替代仍然有效，或没有可继续跟随的边
		if s.IsValidReplacement(last) || last.ReplacementProductID == "" {
			break
		}
		if visited[last.ReplacementProductID] {
			slog.Warn("迁移路径存在环，截断遍历",
				"product_id", product.ProductID,
				"source", source.Name,
				"cycle_at", last.ReplacementProductID)
			break
		}
		visited[last.ReplacementProductID] = true

		var replacement models.Product
		err := s.db.First(&replacement, "product_id = ?", last.ReplacementProductID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			break
		}
		if err != nil {
			return path, err
		}

		next, err := s.optionFor(replacement.ID, source.ID)
		if err != nil {
			return path, err
		}
		if next == nil {
			break
		}
		path = append(path, *next)
	}
	return path, nil
}

// GetPreferredReplacement 返回首选路径终点的目录产品，无首选路径返回 nil
func (s *MigrationService) GetPreferredReplacement(product *models.Product) (*models.Product, error) {
	path, err := s.GetMigrationPath(product, "")
	if err != nil || len(path) == 0 {
		return nil, err
	}
	terminal := path[len(path)-1]
	return s.GetValidReplacementProduct(&terminal)
}

// pickSource 选取遍历来源：命名来源直接使用；未命名时取该产品
// 迁移选项中偏好最高且超过阈值的来源
func (s *MigrationService) pickSource(product *models.Product, sourceName string) (*models.ProductMigrationSource, error) {
	if sourceName != "" {
		source, err := s.GetMigrationSourceByName(sourceName)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewValidationError("migration_source", fmt.Sprintf("迁移来源 %s 不存在", sourceName))
		}
		return source, err
	}

	options, err := s.GetMigrationOptions(product.ID)
	if err != nil {
		return nil, err
	}
	for _, o := range options {
		if o.MigrationSource.IsPreferred() {
			source := o.MigrationSource
			return &source, nil
		}
	}
	return nil, nil
}

// optionFor 查找 (product, source) 的迁移选项，不存在返回 nil
func (s *MigrationService) optionFor(productID, sourceID string) (*models.ProductMigrationOption, error) {
	var option models.ProductMigrationOption
	err := s.db.Preload("MigrationSource").Preload("ReplacementDbProduct").
		Where("product_id = ? AND migration_source_id = ?", productID, sourceID).
		First(&option).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &option, nil
}
