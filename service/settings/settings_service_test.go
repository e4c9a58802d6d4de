/*
 * @module service/settings/settings_service_test
 * @description 设置服务单元测试，覆盖键白名单、写入校验与缓存回填
 * @architecture 测试层 - 单元测试
 */

package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"productdb-service/service/database"
	"productdb-service/service/meta"
	"productdb-service/service/models"
)

func setupSettingsService(t *testing.T) *SettingsService {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "打开内存数据库失败")
	require.NoError(t, database.AutoMigrate(db), "数据库迁移失败")
	return NewSettingsService(db, NewMemoryCache())
}

func TestSetGetRoundtrip(t *testing.T) {
	service := setupSettingsService(t)
	ctx := context.Background()

	require.NoError(t, service.Set(ctx, meta.SettingKeyCiscoApiClientID, "client-1"))
	value, err := service.Get(ctx, meta.SettingKeyCiscoApiClientID)
	require.NoError(t, err)
	assert.Equal(t, "client-1", value)
}

func TestGetUnknownKeyRejected(t *testing.T) {
	service := setupSettingsService(t)

	_, err := service.Get(context.Background(), "no_such_key")
	assert.True(t, models.IsValidationError(err))
	err = service.Set(context.Background(), "no_such_key", "x")
	assert.True(t, models.IsValidationError(err))
}

func TestGetReturnsDefaultWhenUnset(t *testing.T) {
	service := setupSettingsService(t)

	waitTime, err := service.EoxApiWaitTime(context.Background())
	require.NoError(t, err)
	assert.Equal(t, meta.EoxApiWaitTimeDefault, waitTime)
}

func TestCompareAndSwapGuardsStaleWrites(t *testing.T) {
	service := setupSettingsService(t)
	ctx := context.Background()

	// 行不存在时当前值视为空串，插入即获胜
	swapped, err := service.CompareAndSwap(ctx, meta.SettingKeyEoxCrawlerSyncTaskID, "", "task-1|2026-08-28T03:00:00Z")
	require.NoError(t, err)
	assert.True(t, swapped)

	// 基于过期读的写入被守卫条件拒绝
	swapped, err = service.CompareAndSwap(ctx, meta.SettingKeyEoxCrawlerSyncTaskID, "", "task-2|2026-08-28T03:00:01Z")
	require.NoError(t, err)
	assert.False(t, swapped, "当前值不匹配时写入不得生效")

	value, err := service.Get(ctx, meta.SettingKeyEoxCrawlerSyncTaskID)
	require.NoError(t, err)
	assert.Equal(t, "task-1|2026-08-28T03:00:00Z", value)

	// 匹配当前值的交换生效
	swapped, err = service.CompareAndSwap(ctx, meta.SettingKeyEoxCrawlerSyncTaskID, "task-1|2026-08-28T03:00:00Z", "")
	require.NoError(t, err)
	assert.True(t, swapped)
	value, err = service.Get(ctx, meta.SettingKeyEoxCrawlerSyncTaskID)
	require.NoError(t, err)
	assert.Equal(t, "", value)
}

func TestSetWaitTimeValidatesBounds(t *testing.T) {
	service := setupSettingsService(t)
	ctx := context.Background()

	err := service.Set(ctx, meta.SettingKeyEoxApiWaitTime, "0")
	assert.True(t, models.IsValidationError(err))
	err = service.Set(ctx, meta.SettingKeyEoxApiWaitTime, "61")
	assert.True(t, models.IsValidationError(err))
	err = service.Set(ctx, meta.SettingKeyEoxApiWaitTime, "abc")
	assert.True(t, models.IsValidationError(err))

	require.NoError(t, service.Set(ctx, meta.SettingKeyEoxApiWaitTime, "10"))
	waitTime, err := service.EoxApiWaitTime(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, waitTime)
}

func TestSetBlacklistValidatesRegex(t *testing.T) {
	service := setupSettingsService(t)
	ctx := context.Background()

	err := service.Set(ctx, meta.SettingKeyEoxProductBlacklistRegex, `^WS-([`)
	assert.True(t, models.IsValidationError(err), "损坏的黑名单正则应被拒绝写入")

	require.NoError(t, service.Set(ctx, meta.SettingKeyEoxProductBlacklistRegex, "^WS-.*$;^AIR-.*$"))
	patterns, err := service.BlacklistPatterns(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"^WS-.*$", "^AIR-.*$"}, patterns)
}

func TestEoxApiQueriesSplitsLines(t *testing.T) {
	service := setupSettingsService(t)
	ctx := context.Background()

	require.NoError(t, service.Set(ctx, meta.SettingKeyEoxApiQueries, "WS-C2960\n\n  AIR-CAP  \n"))
	queries, err := service.EoxApiQueries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"WS-C2960", "AIR-CAP"}, queries)
}

func TestIncrementInt(t *testing.T) {
	service := setupSettingsService(t)
	ctx := context.Background()

	next, err := service.IncrementInt(ctx, meta.SettingKeyStatAmountProductChecks, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, next)

	next, err = service.IncrementInt(ctx, meta.SettingKeyStatAmountProductChecks, 5)
	require.NoError(t, err)
	assert.Equal(t, 6, next)
}
