/*
 * @module service/event/event_service
 * @description 事件管理服务，通知消息持久化、SSE推送与数据库变更监听
 * @architecture 事件驱动架构 - 业务服务层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 通知产生 -> 落库 -> SSE广播 -> 外部连接器转发
 * @rules 通知先落库再分发；SSE队列满时丢弃不阻塞；pq 监听器捕获
 *        其他进程写入的通知，保证多实例下客户端都能收到
 * @dependencies productdb-service/service/models, github.com/lib/pq, gorm.io/gorm
 * @refs service/sync_engine, api/controllers/notification_controller.go
 */

package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"productdb-service/service/models"
)

// 数据库通知通道名
const notifyChannel = "product_notifications"

// getEnvWithDefault 获取环境变量，如果不存在则返回默认值
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Publisher 外部通知连接器接口，由 kafka/mqtt 连接器实现
type Publisher interface {
	Publish(ctx context.Context, notification *models.NotificationMessage) error
	Close() error
}

// SSEClient SSE客户端连接
type SSEClient struct {
	ID      string
	Channel chan *models.NotificationMessage
	Done    chan struct{}
}

// EventService 事件管理服务
type EventService struct {
	db          *gorm.DB
	mu          sync.RWMutex
	connections map[string]*SSEClient
	publishers  []Publisher
	dbListener  *pq.Listener
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewEventService 创建事件服务实例。listenDB 为 true 时启动
// PostgreSQL LISTEN/NOTIFY 监听，捕获其他实例写入的通知
func NewEventService(db *gorm.DB, listenDB bool) *EventService {
	ctx, cancel := context.WithCancel(context.Background())
	s := &EventService{
		db:          db,
		connections: make(map[string]*SSEClient),
		ctx:         ctx,
		cancel:      cancel,
	}
	if listenDB {
		go s.startDBListener()
	}
	return s
}

// RegisterPublisher 注册外部通知连接器
func (s *EventService) RegisterPublisher(p Publisher) {
	s.mu.Lock()
	s.publishers = append(s.publishers, p)
	s.mu.Unlock()
}

// Notify 持久化并分发一条通知，实现同步引擎的通知接口
func (s *EventService) Notify(ctx context.Context, title, notificationType, summary, detail string) error {
	notification := &models.NotificationMessage{
		Title:           title,
		Type:            notificationType,
		SummaryMessage:  summary,
		DetailedMessage: detail,
		Created:         time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(notification).Error; err != nil {
		return fmt.Errorf("保存通知失败: %w", err)
	}

	s.dispatch(notification)
	return nil
}

// dispatch 将通知分发到 SSE 客户端与外部连接器
func (s *EventService) dispatch(notification *models.NotificationMessage) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id, client := range s.connections {
		select {
		case client.Channel <- notification:
		default:
			slog.Warn("SSE客户端队列已满，跳过推送", "connection_id", id)
		}
	}

	for _, p := range s.publishers {
		publishCtx, cancel := context.WithTimeout(s.ctx, 10*time.Second)
		if err := p.Publish(publishCtx, notification); err != nil {
			slog.Error("外部连接器转发通知失败", "error", err)
		}
		cancel()
	}
}

// AddSSEConnection 添加SSE连接
func (s *EventService) AddSSEConnection(connectionID string) *SSEClient {
	client := &SSEClient{
		ID:      connectionID,
		Channel: make(chan *models.NotificationMessage, 100),
		Done:    make(chan struct{}),
	}
	s.mu.Lock()
	s.connections[connectionID] = client
	s.mu.Unlock()

	slog.Info("SSE连接已建立", "connection_id", connectionID)
	return client
}

// RemoveSSEConnection 移除SSE连接
func (s *EventService) RemoveSSEConnection(connectionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if client, exists := s.connections[connectionID]; exists {
		close(client.Done)
		delete(s.connections, connectionID)
		slog.Info("SSE连接已断开", "connection_id", connectionID)
	}
}

// GetNotifications 分页获取通知，按创建时间倒序
func (s *EventService) GetNotifications(page, pageSize int, notificationType string) ([]models.NotificationMessage, int64, error) {
	var notifications []models.NotificationMessage
	var total int64

	query := s.db.Model(&models.NotificationMessage{})
	if notificationType != "" {
		query = query.Where("type = ?", notificationType)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created DESC").Offset(offset).Limit(pageSize).Find(&notifications).Error
	return notifications, total, err
}

// DeleteNotification 删除通知
func (s *EventService) DeleteNotification(id string) error {
	return s.db.Delete(&models.NotificationMessage{}, "id = ?", id).Error
}

// Stop 停止事件服务
func (s *EventService) Stop() {
	s.cancel()
	if s.dbListener != nil {
		s.dbListener.Close()
	}
	s.mu.Lock()
	for _, p := range s.publishers {
		p.Close()
	}
	s.publishers = nil
	s.mu.Unlock()
}

// startDBListener 启动 PostgreSQL LISTEN/NOTIFY 监听
func (s *EventService) startDBListener() {
	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		host := getEnvWithDefault("DB_HOST", "localhost")
		port := getEnvWithDefault("DB_PORT", "5432")
		user := getEnvWithDefault("DB_USER", "postgres")
		password := getEnvWithDefault("DB_PASSWORD", "postgres")
		dbname := getEnvWithDefault("DB_NAME", "productdb")
		sslmode := getEnvWithDefault("DB_SSLMODE", "disable")
		connStr = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			host, port, user, password, dbname, sslmode)
	}

	s.dbListener = pq.NewListener(connStr, 10*time.Second, time.Minute,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				slog.Error("PostgreSQL监听器事件", "event", ev, "error", err)
			}
		})

	if err := s.dbListener.Listen(notifyChannel); err != nil {
		slog.Error("订阅数据库通知通道失败", "channel", notifyChannel, "error", err)
		return
	}
	slog.Info("数据库通知监听已启动", "channel", notifyChannel)

	for {
		select {
		case <-s.ctx.Done():
			return
		case n := <-s.dbListener.Notify:
			if n == nil {
				continue
			}
			var notification models.NotificationMessage
			if err := json.Unmarshal([]byte(n.Extra), &notification); err != nil {
				slog.Warn("解析数据库通知失败", "error", err)
				continue
			}
			s.dispatch(&notification)
		case <-time.After(90 * time.Second):
			go func() {
				if err := s.dbListener.Ping(); err != nil {
					slog.Error("数据库监听器心跳失败", "error", err)
				}
			}()
		}
	}
}
