/*
 * @module service/models/errors
 * @description 领域错误类型定义，包括字段级校验错误与禁止操作错误
 * @architecture 数据模型层 - 错误分类
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 校验失败 -> 错误构造 -> 调用方按类型处理
 * @rules 校验错误需指明违规字段，禁止操作错误不可重试
 * @dependencies errors, fmt
 * @refs service/catalog, service/migration
 */

package models

import (
	"errors"
	"fmt"
)

// ErrOperationNotAllowed 禁止的操作，如删除哨兵厂商、自引用替代
var ErrOperationNotAllowed = errors.New("operation not allowed")

// ValidationError 字段级校验错误
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("字段 %s 校验失败: %s", e.Field, e.Message)
}

// NewValidationError 创建字段级校验错误
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError 判断错误是否为校验错误
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
