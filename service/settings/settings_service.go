/*
 * @module service/settings/settings_service
 * @description 设置服务，提供带写通缓存的类型化运行时配置读写
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 服务调用 -> 缓存/数据库 -> 按键类型转换
 * @rules 键必须在白名单内；eox_api_wait_time 写入时校验范围 [1,60]；
 *        黑名单正则写入时校验可编译
 * @dependencies productdb-service/service/models, gorm.io/gorm, github.com/spf13/cast
 * @refs service/meta/settings.go, service/sync_engine
 */

package settings

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
	"gorm.io/gorm"

	"productdb-service/service/meta"
	"productdb-service/service/models"
)

// SettingsService 设置服务
type SettingsService struct {
	db    *gorm.DB
	cache Cache
}

// NewSettingsService 创建设置服务实例
func NewSettingsService(db *gorm.DB, cache Cache) *SettingsService {
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &SettingsService{db: db, cache: cache}
}

// Get 读取设置值，优先走缓存
func (s *SettingsService) Get(ctx context.Context, key string) (string, error) {
	if !meta.IsValidSettingKey(key) {
		return "", models.NewValidationError("key", "未知的设置键: "+key)
	}

	if value, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		return value, nil
	}

	var setting models.Setting
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return s.defaultValue(key), nil
		}
		return "", fmt.Errorf("查询设置失败: %w", err)
	}

	// 回填缓存，失败不影响读取结果
	_ = s.cache.Set(ctx, key, setting.Value)
	return setting.Value, nil
}

// Set 写入设置值。写通缓存：成功写库后失效并回填缓存
func (s *SettingsService) Set(ctx context.Context, key, value string) error {
	if !meta.IsValidSettingKey(key) {
		return models.NewValidationError("key", "未知的设置键: "+key)
	}
	if err := s.validate(key, value); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var setting models.Setting
		err := tx.Where("key = ?", key).First(&setting).Error
		if err == gorm.ErrRecordNotFound {
			setting = models.Setting{Key: key, Value: value}
			return tx.Create(&setting).Error
		}
		if err != nil {
			return err
		}
		setting.Value = value
		setting.UpdatedAt = time.Now()
		return tx.Save(&setting).Error
	})
	if err != nil {
		return fmt.Errorf("写入设置失败: %w", err)
	}

	if err := s.cache.Delete(ctx, key); err == nil {
		_ = s.cache.Set(ctx, key, value)
	}
	return nil
}

// CompareAndSwap 仅当当前库内值等于 oldValue 时写入 newValue，返回是否写入。
// 行不存在时当前值视为空串，由键的唯一约束裁决并发插入竞争
func (s *SettingsService) CompareAndSwap(ctx context.Context, key, oldValue, newValue string) (bool, error) {
	if !meta.IsValidSettingKey(key) {
		return false, models.NewValidationError("key", "未知的设置键: "+key)
	}
	if err := s.validate(key, newValue); err != nil {
		return false, err
	}

	var swapped bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Setting{}).
			Where("key = ? AND value = ?", key, oldValue).
			Updates(map[string]interface{}{"value": newValue, "updated_at": time.Now()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			swapped = true
			return nil
		}
		if oldValue != "" {
			return nil
		}
		var count int64
		if err := tx.Model(&models.Setting{}).Where("key = ?", key).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		setting := models.Setting{Key: key, Value: newValue}
		if err := tx.Create(&setting).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil
			}
			return err
		}
		swapped = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("写入设置失败: %w", err)
	}

	if swapped {
		if err := s.cache.Delete(ctx, key); err == nil {
			_ = s.cache.Set(ctx, key, newValue)
		}
	}
	return swapped, nil
}

// GetBool 读取布尔设置
func (s *SettingsService) GetBool(ctx context.Context, key string) (bool, error) {
	value, err := s.Get(ctx, key)
	if err != nil {
		return false, err
	}
	return cast.ToBool(value), nil
}

// GetInt 读取整数设置
func (s *SettingsService) GetInt(ctx context.Context, key string) (int, error) {
	value, err := s.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	return cast.ToInt(value), nil
}

// SetBool 写入布尔设置
func (s *SettingsService) SetBool(ctx context.Context, key string, value bool) error {
	return s.Set(ctx, key, strconv.FormatBool(value))
}

// SetInt 写入整数设置
func (s *SettingsService) SetInt(ctx context.Context, key string, value int) error {
	return s.Set(ctx, key, strconv.Itoa(value))
}

// IncrementInt 整数设置自增，返回自增后的值
func (s *SettingsService) IncrementInt(ctx context.Context, key string, delta int) (int, error) {
	current, err := s.GetInt(ctx, key)
	if err != nil {
		return 0, err
	}
	next := current + delta
	if err := s.SetInt(ctx, key, next); err != nil {
		return 0, err
	}
	return next, nil
}

// IsCiscoApiEnabled Cisco EoX API 功能是否启用
func (s *SettingsService) IsCiscoApiEnabled(ctx context.Context) (bool, error) {
	return s.GetBool(ctx, meta.SettingKeyCiscoApiEnabled)
}

// IsAutoSyncEnabled 定时同步是否启用
func (s *SettingsService) IsAutoSyncEnabled(ctx context.Context) (bool, error) {
	return s.GetBool(ctx, meta.SettingKeyEoxCrawlerAutoSync)
}

// IsCreateProductsEnabled 同步时是否允许自动建档
func (s *SettingsService) IsCreateProductsEnabled(ctx context.Context) (bool, error) {
	return s.GetBool(ctx, meta.SettingKeyEoxCrawlerCreateProducts)
}

// CiscoApiCredentials 读取 Cisco API 凭据
func (s *SettingsService) CiscoApiCredentials(ctx context.Context) (clientID, clientSecret string, err error) {
	clientID, err = s.Get(ctx, meta.SettingKeyCiscoApiClientID)
	if err != nil {
		return "", "", err
	}
	clientSecret, err = s.Get(ctx, meta.SettingKeyCiscoApiClientSecret)
	if err != nil {
		return "", "", err
	}
	return clientID, clientSecret, nil
}

// EoxApiQueries 读取配置的 EoX 查询列表，按行拆分并去除空白行
func (s *SettingsService) EoxApiQueries(ctx context.Context) ([]string, error) {
	value, err := s.Get(ctx, meta.SettingKeyEoxApiQueries)
	if err != nil {
		return nil, err
	}
	var queries []string
	for _, line := range strings.Split(value, "\n") {
		if q := strings.TrimSpace(line); q != "" {
			queries = append(queries, q)
		}
	}
	return queries, nil
}

// BlacklistPatterns 读取黑名单正则列表，分号或换行分隔
func (s *SettingsService) BlacklistPatterns(ctx context.Context) ([]string, error) {
	value, err := s.Get(ctx, meta.SettingKeyEoxProductBlacklistRegex)
	if err != nil {
		return nil, err
	}
	var patterns []string
	for _, part := range strings.FieldsFunc(value, func(r rune) bool {
		return r == ';' || r == '\n'
	}) {
		if p := strings.TrimSpace(part); p != "" {
			patterns = append(patterns, p)
		}
	}
	return patterns, nil
}

// EoxApiWaitTime 读取 EoX API 请求间隔（秒），非法值回落到默认值
func (s *SettingsService) EoxApiWaitTime(ctx context.Context) (int, error) {
	value, err := s.GetInt(ctx, meta.SettingKeyEoxApiWaitTime)
	if err != nil {
		return 0, err
	}
	if value < meta.EoxApiWaitTimeMin || value > meta.EoxApiWaitTimeMax {
		return meta.EoxApiWaitTimeDefault, nil
	}
	return value, nil
}

// RecordSyncExecution 记录同步的执行时间与结果
func (s *SettingsService) RecordSyncExecution(ctx context.Context, executedAt time.Time, result string) error {
	if err := s.Set(ctx, meta.SettingKeyEoxCrawlerLastExecTime, executedAt.Format(time.RFC3339)); err != nil {
		return err
	}
	return s.Set(ctx, meta.SettingKeyEoxCrawlerLastExecResult, result)
}

// validate 按键做写入校验
func (s *SettingsService) validate(key, value string) error {
	switch key {
	case meta.SettingKeyEoxApiWaitTime:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return models.NewValidationError(key, "必须是整数")
		}
		if n < meta.EoxApiWaitTimeMin || n > meta.EoxApiWaitTimeMax {
			return models.NewValidationError(key, fmt.Sprintf("必须在 %d 到 %d 秒之间", meta.EoxApiWaitTimeMin, meta.EoxApiWaitTimeMax))
		}
	case meta.SettingKeyEoxProductBlacklistRegex:
		for _, part := range strings.FieldsFunc(value, func(r rune) bool {
			return r == ';' || r == '\n'
		}) {
			p := strings.TrimSpace(part)
			if p == "" {
				continue
			}
			if _, err := regexp.Compile(p); err != nil {
				return models.NewValidationError(key, "黑名单正则无法编译: "+p)
			}
		}
	}
	return nil
}

// defaultValue 返回键的默认值
func (s *SettingsService) defaultValue(key string) string {
	for _, f := range meta.SettingKeys {
		if f.Name == key {
			return cast.ToString(f.DefaultValue)
		}
	}
	return ""
}
