/*
 * @module service/normalization/normalization_service
 * @description 产品编号规范化服务，按厂商作用域的正则规则将原始PID映射为规范PID
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 规则按(priority升序, 模板升序)迭代 -> 首个匹配生效 -> %s 占位替换
 * @rules 首个匹配即返回；无规则匹配时原样返回；规范化幂等
 * @dependencies productdb-service/service/models, gorm.io/gorm
 * @refs service/sync_engine/sync_service.go
 */

package normalization

import (
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"productdb-service/service/models"
)

// NormalizationService 产品编号规范化服务
type NormalizationService struct {
	db *gorm.DB
}

// NewNormalizationService 创建规范化服务实例
func NewNormalizationService(db *gorm.DB) *NormalizationService {
	return &NormalizationService{db: db}
}

// SaveRule 保存规范化规则，模型钩子校验正则与占位符数量
func (s *NormalizationService) SaveRule(rule *models.ProductIDNormalizationRule) error {
	rule.ProductIDTemplate = strings.TrimSpace(rule.ProductIDTemplate)
	if rule.Regex == "" {
		return models.NewValidationError("regex", "正则表达式不能为空")
	}
	if rule.VendorID == "" {
		return models.NewValidationError("vendor_id", "厂商不能为空")
	}

	dup := s.db.Model(&models.ProductIDNormalizationRule{}).
		Where("vendor_id = ? AND product_id_template = ? AND regex = ?",
			rule.VendorID, rule.ProductIDTemplate, rule.Regex)
	if rule.ID != "" {
		dup = dup.Where("id <> ?", rule.ID)
	}
	var count int64
	if err := dup.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return models.NewValidationError("regex", "相同的规范化规则已存在")
	}

	return s.db.Save(rule).Error
}

// GetRule 根据ID获取规范化规则
func (s *NormalizationService) GetRule(id string) (*models.ProductIDNormalizationRule, error) {
	var rule models.ProductIDNormalizationRule
	if err := s.db.Preload("Vendor").First(&rule, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

// GetRules 获取厂商作用域内的规则，按(priority升序, 模板升序)
func (s *NormalizationService) GetRules(vendorID string) ([]models.ProductIDNormalizationRule, error) {
	var rules []models.ProductIDNormalizationRule
	query := s.db.Order("priority ASC, product_id_template ASC")
	if vendorID != "" {
		query = query.Where("vendor_id = ?", vendorID)
	}
	if err := query.Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// ListRules 分页获取规范化规则
func (s *NormalizationService) ListRules(page, pageSize int, vendorID string) ([]models.ProductIDNormalizationRule, int64, error) {
	var rules []models.ProductIDNormalizationRule
	var total int64

	query := s.db.Model(&models.ProductIDNormalizationRule{})
	if vendorID != "" {
		query = query.Where("vendor_id = ?", vendorID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Vendor").Order("priority ASC, product_id_template ASC").
		Offset(offset).Limit(pageSize).Find(&rules).Error
	return rules, total, err
}

// DeleteRule 删除规范化规则
func (s *NormalizationService) DeleteRule(id string) error {
	return s.db.Delete(&models.ProductIDNormalizationRule{}, "id = ?", id).Error
}

// Matches 判断规则是否匹配原始PID。正则损坏按致命错误处理
func Matches(rule *models.ProductIDNormalizationRule, rawPID string) (bool, error) {
	re, err := regexp.Compile(rule.Regex)
	if err != nil {
		return false, fmt.Errorf("规范化规则 %s 正则损坏: %w", rule.ID, err)
	}
	return re.MatchString(rawPID), nil
}

// Apply 将正则捕获组按位置替换进模板的 %s 占位符
func Apply(rule *models.ProductIDNormalizationRule, rawPID string) (string, error) {
	re, err := regexp.Compile(rule.Regex)
	if err != nil {
		return "", fmt.Errorf("规范化规则 %s 正则损坏: %w", rule.ID, err)
	}
	groups := re.FindStringSubmatch(rawPID)
	if groups == nil {
		return rawPID, nil
	}

	// 模板只切分一次，捕获组内容中的 %s 不再被解释
	segments := strings.Split(rule.ProductIDTemplate, "%s")
	var b strings.Builder
	for i, seg := range segments {
		b.WriteString(seg)
		if i < len(groups)-1 && i < len(segments)-1 {
			b.WriteString(groups[i+1])
		}
	}
	return b.String(), nil
}

// Normalize 在厂商作用域内规范化原始PID，首个匹配的规则生效，
// 无匹配时原样返回
func (s *NormalizationService) Normalize(vendorID, rawPID string) (string, error) {
	rules, err := s.GetRules(vendorID)
	if err != nil {
		return "", err
	}
	for i := range rules {
		matched, err := Matches(&rules[i], rawPID)
		if err != nil {
			return "", err
		}
		if matched {
			return Apply(&rules[i], rawPID)
		}
	}
	return rawPID, nil
}
