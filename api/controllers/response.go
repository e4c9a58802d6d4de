/*
 * @module api/controllers/response
 * @description 统一API响应结构与构造辅助
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 无状态HTTP响应构造
 * @rules status 为 0 表示成功，非 0 为业务错误码；校验错误回传字段级信息
 * @dependencies productdb-service/service/models
 * @refs api/controllers/pagination.go
 */

package controllers

import (
	"errors"

	"productdb-service/service/models"
)

// APIResponse 统一API响应结构
type APIResponse struct {
	Status int         `json:"status" example:"0"`
	Msg    string      `json:"msg" example:"操作成功"`
	Data   interface{} `json:"data,omitempty"`
}

// SuccessResponse 成功响应
func SuccessResponse(msg string, data interface{}) *APIResponse {
	return &APIResponse{Status: 0, Msg: msg, Data: data}
}

// BadRequestResponse 请求错误响应
func BadRequestResponse(msg string, data interface{}) *APIResponse {
	return &APIResponse{Status: 400, Msg: msg, Data: data}
}

// ForbiddenResponse 禁止操作响应
func ForbiddenResponse(msg string, data interface{}) *APIResponse {
	return &APIResponse{Status: 403, Msg: msg, Data: data}
}

// NotFoundResponse 未找到响应
func NotFoundResponse(msg string, data interface{}) *APIResponse {
	return &APIResponse{Status: 404, Msg: msg, Data: data}
}

// ConflictResponse 冲突响应
func ConflictResponse(msg string, data interface{}) *APIResponse {
	return &APIResponse{Status: 409, Msg: msg, Data: data}
}

// InternalErrorResponse 服务器内部错误响应
func InternalErrorResponse(msg string, data interface{}) *APIResponse {
	return &APIResponse{Status: 500, Msg: msg, Data: data}
}

// ErrorResponse 按错误类型选择响应：校验错误与禁止操作按请求错误处理，
// 其他错误按内部错误处理
func ErrorResponse(err error) *APIResponse {
	if models.IsValidationError(err) {
		return BadRequestResponse(err.Error(), nil)
	}
	if errors.Is(err, models.ErrOperationNotAllowed) {
		return ForbiddenResponse(err.Error(), nil)
	}
	return InternalErrorResponse(err.Error(), nil)
}
