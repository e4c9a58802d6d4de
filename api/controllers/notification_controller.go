/*
 * @module api/controllers/notification_controller
 * @description 通知API控制器，历史通知查询与SSE实时推送
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow SSE连接注册 -> 事件推送 -> 连接关闭注销
 * @rules SSE推送为尽力而为，客户端断开即注销
 * @dependencies productdb-service/service, github.com/go-chi/render
 * @refs service/event/event_service.go
 */

package controllers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"productdb-service/service"
)

// NotificationController 通知控制器
type NotificationController struct{}

// NewNotificationController 创建通知控制器实例
func NewNotificationController() *NotificationController {
	return &NotificationController{}
}

// GetNotifications 获取通知列表
// @Summary 获取通知列表
// @Description 分页获取历史通知，支持类型过滤
// @Tags 通知
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "页大小"
// @Param type query string false "通知类型过滤"
// @Success 200 {object} PaginatedResponse
// @Router /notifications [get]
func (c *NotificationController) GetNotifications(w http.ResponseWriter, r *http.Request) {
	page, pageSize := ParsePagination(r)
	notifications, total, err := service.GlobalEventService.GetNotifications(page, pageSize, r.URL.Query().Get("type"))
	if err != nil {
		render.JSON(w, r, InternalErrorResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, NewPaginatedResponse(r, page, pageSize, len(notifications), total, notifications))
}

// DeleteNotification 删除通知
// @Summary 删除通知
// @Description 删除指定的历史通知
// @Tags 通知
// @Produce json
// @Param id path string true "通知ID"
// @Success 200 {object} APIResponse
// @Router /notifications/{id} [delete]
func (c *NotificationController) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := service.GlobalEventService.DeleteNotification(id); err != nil {
		render.JSON(w, r, ErrorResponse(err))
		return
	}
	render.JSON(w, r, SuccessResponse("删除成功", nil))
}

// StreamEvents SSE事件流
// @Summary SSE事件流
// @Description 建立Server-Sent Events连接，实时接收通知推送
// @Tags 通知
// @Produce text/event-stream
// @Param connection_id path string false "连接ID，缺省时自动生成"
// @Router /sse/{connection_id} [get]
func (c *NotificationController) StreamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	connectionID := chi.URLParam(r, "connection_id")
	if connectionID == "" {
		connectionID = uuid.New().String()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	client := service.GlobalEventService.AddSSEConnection(connectionID)
	defer service.GlobalEventService.RemoveSSEConnection(connectionID)

	fmt.Fprintf(w, "event: connected\ndata: {\"connection_id\":\"%s\"}\n\n", connectionID)
	flusher.Flush()

	for {
		select {
		case msg, open := <-client.Channel:
			if !open {
				return
			}
			payload, err := json.Marshal(msg)
			if err != nil {
				slog.Error("序列化通知失败", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: notification\ndata: %s\n\n", payload)
			flusher.Flush()
		case <-client.Done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
