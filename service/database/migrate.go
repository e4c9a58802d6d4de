/*
 * @module service/database/migrate
 * @description 数据库迁移模块，负责创建和更新数据库表结构并初始化基础数据
 * @architecture 数据访问层 - 迁移管理
 * @documentReference dev_docs/model.md
 * @stateFlow 应用启动时执行数据库迁移
 * @rules 确保数据库结构与模型定义保持一致；哨兵厂商与默认设置幂等初始化
 * @dependencies productdb-service/service/models, gorm.io/gorm
 * @refs dev_docs/backend_requirements.md, service/meta
 */

package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"productdb-service/service/meta"
	"productdb-service/service/models"
)

// AutoMigrate 自动迁移数据库表结构
func AutoMigrate(db *gorm.DB) error {
	log.Println("开始数据库迁移...")

	// 产品目录相关表
	err := db.AutoMigrate(
		&models.Vendor{},
		&models.ProductGroup{},
		&models.Product{},
		&models.ProductList{},
	)
	if err != nil {
		return err
	}

	// 迁移图与规范化规则相关表
	err = db.AutoMigrate(
		&models.ProductMigrationSource{},
		&models.ProductMigrationOption{},
		&models.ProductIDNormalizationRule{},
	)
	if err != nil {
		return err
	}

	// 产品核对相关表
	err = db.AutoMigrate(
		&models.ProductCheck{},
		&models.ProductCheckEntry{},
	)
	if err != nil {
		return err
	}

	// 系统设置、通知与任务表
	return db.AutoMigrate(
		&models.Setting{},
		&models.NotificationMessage{},
		&models.TaskRecord{},
	)
}

// InitializeData 初始化基础数据，可重复执行
func InitializeData(db *gorm.DB) error {
	// 哨兵厂商使用固定ID，厂商被删除时产品回挂到它
	sentinel := &models.Vendor{ID: meta.VendorUnassignedID, Name: meta.VendorUnassignedName}
	if err := db.Where("id = ?", sentinel.ID).FirstOrCreate(sentinel).Error; err != nil {
		return fmt.Errorf("初始化哨兵厂商失败: %w", err)
	}

	// EoX 对账的固定厂商
	cisco := &models.Vendor{Name: meta.VendorCiscoName}
	if err := db.Where("name = ?", cisco.Name).FirstOrCreate(cisco).Error; err != nil {
		return fmt.Errorf("初始化 Cisco 厂商失败: %w", err)
	}

	// 默认设置项，仅当键不存在时写入
	for _, field := range meta.SettingKeys {
		setting := &models.Setting{
			Key:         field.Name,
			Value:       fmt.Sprintf("%v", field.DefaultValue),
			Description: field.DisplayName,
		}
		if err := db.Where("key = ?", field.Name).FirstOrCreate(setting).Error; err != nil {
			return fmt.Errorf("初始化设置项 %s 失败: %w", field.Name, err)
		}
	}

	return nil
}
