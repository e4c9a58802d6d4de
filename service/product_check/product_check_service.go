/*
 * @module service/product_check/product_check_service
 * @description 产品核对服务，批量解析调用方提交的产品编号清单并分类
 * @architecture 分层架构 - 核心服务层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 输入切词(换行/分号) -> 多重集计数 -> 目录匹配 -> 迁移目标绑定 ->
 *            产品清单归属哈希 -> 条目落库 -> 统计计数
 * @rules 核对重跑前删除旧条目；指定迁移来源时取路径终点，未指定时取首选替代；
 *        清单归属按整行字面匹配；owner 为空的核对公开可见
 * @dependencies productdb-service/service/catalog, productdb-service/service/migration,
 *               golang.org/x/text/unicode/norm
 * @refs service/scheduler, api/controllers/product_check_controller.go
 */

package product_check

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"

	"productdb-service/service/catalog"
	"productdb-service/service/meta"
	"productdb-service/service/migration"
	"productdb-service/service/models"
	"productdb-service/service/settings"
)

// ProductCheckService 产品核对服务
type ProductCheckService struct {
	db           *gorm.DB
	products     *catalog.ProductService
	productLists *catalog.ProductListService
	migrations   *migration.MigrationService
	settings     *settings.SettingsService
	lease        *settings.LeaseLock
}

// NewProductCheckService 创建产品核对服务实例
func NewProductCheckService(
	db *gorm.DB,
	products *catalog.ProductService,
	productLists *catalog.ProductListService,
	migrations *migration.MigrationService,
	settingsService *settings.SettingsService,
	lease *settings.LeaseLock,
) *ProductCheckService {
	return &ProductCheckService{
		db:           db,
		products:     products,
		productLists: productLists,
		migrations:   migrations,
		settings:     settingsService,
		lease:        lease,
	}
}

// CreateProductCheck 创建产品核对
func (s *ProductCheckService) CreateProductCheck(check *models.ProductCheck) error {
	check.Name = strings.TrimSpace(check.Name)
	if check.Name == "" {
		return models.NewValidationError("name", "核对名称不能为空")
	}
	if check.MigrationSourceID != nil && *check.MigrationSourceID != "" {
		var source models.ProductMigrationSource
		if err := s.db.First(&source, "id = ?", *check.MigrationSourceID).Error; err != nil {
			return models.NewValidationError("migration_source_id", "迁移来源不存在")
		}
	}
	check.LastChange = time.Now()
	return s.db.Create(check).Error
}

// GetProductCheck 根据ID获取产品核对。requestUser 用于可见性判断：
// 公开核对对所有人可见，私有核对仅 owner 可见
func (s *ProductCheckService) GetProductCheck(id, requestUser string) (*models.ProductCheck, error) {
	var check models.ProductCheck
	err := s.db.Preload("MigrationSource").First(&check, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	if !check.IsPublic() && check.Owner != requestUser {
		return nil, gorm.ErrRecordNotFound
	}
	return &check, nil
}

// GetProductChecks 获取对 requestUser 可见的核对列表
func (s *ProductCheckService) GetProductChecks(page, pageSize int, requestUser string) ([]models.ProductCheck, int64, error) {
	var checks []models.ProductCheck
	var total int64

	query := s.db.Model(&models.ProductCheck{}).
		Where("owner = '' OR owner = ?", requestUser)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("MigrationSource").Order("last_change DESC").
		Offset(offset).Limit(pageSize).Find(&checks).Error
	return checks, total, err
}

// GetEntries 获取核对的全部条目
func (s *ProductCheckService) GetEntries(checkID string) ([]models.ProductCheckEntry, error) {
	var entries []models.ProductCheckEntry
	err := s.db.Preload("ProductInDatabase").
		Preload("MigrationOption").Preload("MigrationOption.ReplacementDbProduct").
		Where("product_check_id = ?", checkID).
		Order("input_product_id ASC").Find(&entries).Error
	return entries, err
}

// DeleteProductCheck 删除产品核对及其条目
func (s *ProductCheckService) DeleteProductCheck(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_check_id = ?", id).
			Delete(&models.ProductCheckEntry{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.ProductCheck{}, "id = ?", id).Error
	})
}

// DeleteAllProductChecks 删除全部产品核对。单例任务，通过 settings 租约互斥
func (s *ProductCheckService) DeleteAllProductChecks(ctx context.Context, taskID string) error {
	acquired, holder, err := s.lease.TryAcquire(ctx, meta.SettingKeyProductCheckDeleteTaskID, taskID)
	if err != nil {
		return err
	}
	if !acquired {
		return fmt.Errorf("批量删除任务已在运行（持有者 %s）", holder)
	}
	defer s.lease.Release(context.Background(), meta.SettingKeyProductCheckDeleteTaskID, taskID)

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.ProductCheckEntry{}).Error; err != nil {
			return err
		}
		return tx.Where("1 = 1").Delete(&models.ProductCheck{}).Error
	})
}

// Run 执行产品核对，重建 check 的全部条目
func (s *ProductCheckService) Run(ctx context.Context, check *models.ProductCheck) error {
	tokens := Tokenize(check.InputProductIDs)

	sourceName := ""
	if check.MigrationSourceID != nil && *check.MigrationSourceID != "" {
		source, err := s.migrations.GetMigrationSource(*check.MigrationSourceID)
		if err != nil {
			return fmt.Errorf("核对指定的迁移来源不存在: %w", err)
		}
		sourceName = source.Name
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// 目录与迁移图查询和条目写入必须处于同一事务
		txService := s.withTx(tx)

		// 重跑前清空旧条目
		if err := tx.Where("product_check_id = ?", check.ID).
			Delete(&models.ProductCheckEntry{}).Error; err != nil {
			return err
		}

		for _, token := range sortedTokens(tokens) {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			entry, err := txService.buildEntry(check, token, tokens[token], sourceName)
			if err != nil {
				return err
			}
			if err := tx.Create(entry).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	// 聚合统计持久化在 settings，进程重启后仍然累计
	if _, err := s.settings.IncrementInt(ctx, meta.SettingKeyStatAmountProductChecks, 1); err != nil {
		return err
	}
	if _, err := s.settings.IncrementInt(ctx, meta.SettingKeyStatAmountUniqueEntries, len(tokens)); err != nil {
		return err
	}

	// 清除核对上的任务标记
	check.TaskID = nil
	check.LastChange = time.Now()
	return s.db.Model(check).Select("task_id", "last_change").
		Updates(map[string]interface{}{"task_id": nil, "last_change": check.LastChange}).Error
}

// withTx 返回绑定到事务连接的服务副本，供 Run 在事务内做目录与迁移图查询
func (s *ProductCheckService) withTx(tx *gorm.DB) *ProductCheckService {
	clone := *s
	clone.db = tx
	clone.products = catalog.NewProductService(tx)
	clone.productLists = catalog.NewProductListService(tx)
	clone.migrations = migration.NewMigrationService(tx)
	return &clone
}

// buildEntry 为单个唯一输入编号构造核对条目
func (s *ProductCheckService) buildEntry(check *models.ProductCheck, token string, amount int, sourceName string) (*models.ProductCheckEntry, error) {
	entry := &models.ProductCheckEntry{
		ProductCheckID:   check.ID,
		InputProductID:   token,
		AmountOfProducts: amount,
	}

	product, err := s.products.GetProductByPID(token)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if product != nil {
		entry.InDatabase = true
		entry.ProductInDatabaseID = &product.ID

		option, err := s.pickMigrationOption(product, sourceName)
		if err != nil {
			return nil, err
		}
		if option != nil {
			entry.MigrationOptionID = &option.ID
		}
	}

	// 清单归属：所有按整行包含该编号的清单的哈希并集
	lists, err := s.productLists.ListsContaining(token)
	if err != nil {
		return nil, err
	}
	hashes := make([]string, 0, len(lists))
	for _, list := range lists {
		hashes = append(hashes, list.Hash)
	}
	sort.Strings(hashes)
	entry.ProductListHashValues = strings.Join(hashes, "\n")

	return entry, nil
}

// pickMigrationOption 选取条目的迁移目标：指定来源时为该来源路径的终点选项，
// 未指定来源时为首选来源路径的终点选项
func (s *ProductCheckService) pickMigrationOption(product *models.Product, sourceName string) (*models.ProductMigrationOption, error) {
	path, err := s.migrations.GetMigrationPath(product, sourceName)
	if err != nil {
		if models.IsValidationError(err) {
			// 来源在核对创建后被删除，按无迁移目标处理
			return nil, nil
		}
		return nil, err
	}
	if len(path) == 0 {
		return nil, nil
	}
	terminal := path[len(path)-1]
	return &terminal, nil
}

// ProductListNames 解析条目的清单归属为当前清单名称。
// 按输入编号重新执行归属匹配，容忍清单在核对之后改名
func (s *ProductCheckService) ProductListNames(entry *models.ProductCheckEntry) ([]string, error) {
	lists, err := s.productLists.ListsContaining(entry.InputProductID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(lists))
	for _, list := range lists {
		names = append(names, list.Name)
	}
	sort.Strings(names)
	return names, nil
}

// Tokenize 解析输入文本为多重集：按换行与分号切分、去首尾空白、
// NFKC 规范化、丢弃空串，统计每个唯一编号的出现次数
func Tokenize(input string) map[string]int {
	tokens := map[string]int{}
	for _, line := range strings.Split(input, "\n") {
		for _, raw := range strings.Split(line, ";") {
			token := strings.TrimSpace(norm.NFKC.String(raw))
			if token == "" {
				continue
			}
			tokens[token]++
		}
	}
	return tokens
}

func sortedTokens(tokens map[string]int) []string {
	keys := make([]string, 0, len(tokens))
	for k := range tokens {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
