/*
 * @module service/normalization/normalization_service_test
 * @description NormalizationService 单元测试，覆盖规则校验与按优先级应用
 * @architecture 测试层 - 单元测试
 */

package normalization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"productdb-service/service/database"
	"productdb-service/service/models"
)

func setupNormalizationDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "打开内存数据库失败")
	require.NoError(t, database.AutoMigrate(db), "数据库迁移失败")
	return db
}

func createRuleVendor(t *testing.T, db *gorm.DB) *models.Vendor {
	vendor := &models.Vendor{Name: "Cisco Systems"}
	require.NoError(t, db.Create(vendor).Error)
	return vendor
}

func TestSaveRuleRejectsInvalidRegex(t *testing.T) {
	db := setupNormalizationDB(t)
	service := NewNormalizationService(db)
	vendor := createRuleVendor(t, db)

	err := service.SaveRule(&models.ProductIDNormalizationRule{
		VendorID:          vendor.ID,
		ProductIDTemplate: "WS-%s",
		Regex:             "WS-([",
	})
	assert.True(t, models.IsValidationError(err))
}

func TestSaveRuleRejectsPlaceholderMismatch(t *testing.T) {
	db := setupNormalizationDB(t)
	service := NewNormalizationService(db)
	vendor := createRuleVendor(t, db)

	// 两个捕获组但只有一个占位符
	err := service.SaveRule(&models.ProductIDNormalizationRule{
		VendorID:          vendor.ID,
		ProductIDTemplate: "WS-%s",
		Regex:             `WS-(\w+)-(\w+)`,
	})
	assert.True(t, models.IsValidationError(err), "占位符数量必须等于捕获组数量")

	assert.NoError(t, service.SaveRule(&models.ProductIDNormalizationRule{
		VendorID:          vendor.ID,
		ProductIDTemplate: "WS-%s-%s",
		Regex:             `WS-(\w+)-(\w+)`,
	}))
}

func TestSaveRuleRejectsDuplicate(t *testing.T) {
	db := setupNormalizationDB(t)
	service := NewNormalizationService(db)
	vendor := createRuleVendor(t, db)

	rule := models.ProductIDNormalizationRule{
		VendorID:          vendor.ID,
		ProductIDTemplate: "WS-%s",
		Regex:             `WS-(\w+)`,
	}
	require.NoError(t, service.SaveRule(&rule))

	dup := models.ProductIDNormalizationRule{
		VendorID:          vendor.ID,
		ProductIDTemplate: "WS-%s",
		Regex:             `WS-(\w+)`,
	}
	err := service.SaveRule(&dup)
	assert.True(t, models.IsValidationError(err), "相同的(厂商,模板,正则)规则不可重复")

	rules, total, err := service.ListRules(1, 25, vendor.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, rules, 1)
}

func TestApplySubstitutesCaptureGroups(t *testing.T) {
	rule := &models.ProductIDNormalizationRule{
		ProductIDTemplate: "WS-C%s-%s",
		Regex:             `^WS-C(\d+)[A-Z]*-(\d+)\S*$`,
	}

	matched, err := Matches(rule, "WS-C2960X-48")
	require.NoError(t, err)
	assert.True(t, matched)

	result, err := Apply(rule, "WS-C2960X-48")
	require.NoError(t, err)
	assert.Equal(t, "WS-C2960-48", result)
}

func TestApplyDoesNotInterpretPercentInGroups(t *testing.T) {
	// 捕获组内容中的 %s 是普通字面量，不得被二次替换
	rule := &models.ProductIDNormalizationRule{
		ProductIDTemplate: "%s-%s",
		Regex:             `^(.*);(.*)$`,
	}

	result, err := Apply(rule, "A%sB;C")
	require.NoError(t, err)
	assert.Equal(t, "A%sB-C", result)
}

func TestNormalizeFirstMatchWins(t *testing.T) {
	db := setupNormalizationDB(t)
	service := NewNormalizationService(db)
	vendor := createRuleVendor(t, db)

	require.NoError(t, service.SaveRule(&models.ProductIDNormalizationRule{
		VendorID:          vendor.ID,
		ProductIDTemplate: "SPECIFIC",
		Regex:             `^WS-C2960X-48$`,
		Priority:          10,
	}))
	require.NoError(t, service.SaveRule(&models.ProductIDNormalizationRule{
		VendorID:          vendor.ID,
		ProductIDTemplate: "GENERIC",
		Regex:             `^WS-.*$`,
		Priority:          500,
	}))

	result, err := service.Normalize(vendor.ID, "WS-C2960X-48")
	require.NoError(t, err)
	assert.Equal(t, "SPECIFIC", result, "优先级数值更小的规则应先匹配")

	result, err = service.Normalize(vendor.ID, "WS-C3850-24T")
	require.NoError(t, err)
	assert.Equal(t, "GENERIC", result)
}

func TestNormalizeNoMatchReturnsRaw(t *testing.T) {
	db := setupNormalizationDB(t)
	service := NewNormalizationService(db)
	vendor := createRuleVendor(t, db)

	result, err := service.Normalize(vendor.ID, "EX2200-24T")
	require.NoError(t, err)
	assert.Equal(t, "EX2200-24T", result, "无规则命中时返回原始编号")
}

func TestNormalizeIsIdempotentWithAnchoredRules(t *testing.T) {
	db := setupNormalizationDB(t)
	service := NewNormalizationService(db)
	vendor := createRuleVendor(t, db)

	require.NoError(t, service.SaveRule(&models.ProductIDNormalizationRule{
		VendorID:          vendor.ID,
		ProductIDTemplate: "WS-C%s",
		Regex:             `^WS-C(\d+)X-\d+$`,
	}))

	once, err := service.Normalize(vendor.ID, "WS-C2960X-48")
	require.NoError(t, err)
	twice, err := service.Normalize(vendor.ID, once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}
