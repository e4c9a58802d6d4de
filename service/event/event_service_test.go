/*
 * @module service/event/event_service_test
 * @description 事件服务单元测试，覆盖通知持久化与SSE分发
 * @architecture 测试层 - 单元测试
 */

package event

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"productdb-service/service/database"
	"productdb-service/service/meta"
)

func setupEventService(t *testing.T) *EventService {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "打开内存数据库失败")
	require.NoError(t, database.AutoMigrate(db), "数据库迁移失败")

	service := NewEventService(db, false)
	t.Cleanup(service.Stop)
	return service
}

func TestNotifyPersistsAndDispatches(t *testing.T) {
	service := setupEventService(t)

	client := service.AddSSEConnection("conn-1")
	defer service.RemoveSSEConnection("conn-1")

	require.NoError(t, service.Notify(context.Background(),
		"EoX 同步", meta.NotificationTypeSuccess, "更新 3，创建 1", "明细"))

	select {
	case msg := <-client.Channel:
		assert.Equal(t, "EoX 同步", msg.Title)
		assert.Equal(t, meta.NotificationTypeSuccess, msg.Type)
	case <-time.After(time.Second):
		t.Fatal("SSE 客户端未收到通知")
	}

	notifications, total, err := service.GetNotifications(1, 10, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "更新 3，创建 1", notifications[0].SummaryMessage)
}

func TestGetNotificationsFiltersByType(t *testing.T) {
	service := setupEventService(t)
	ctx := context.Background()

	require.NoError(t, service.Notify(ctx, "a", meta.NotificationTypeSuccess, "", ""))
	require.NoError(t, service.Notify(ctx, "b", meta.NotificationTypeError, "", ""))

	_, total, err := service.GetNotifications(1, 10, meta.NotificationTypeError)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestRemoveSSEConnectionClosesDone(t *testing.T) {
	service := setupEventService(t)

	client := service.AddSSEConnection("conn-1")
	service.RemoveSSEConnection("conn-1")

	select {
	case <-client.Done:
	case <-time.After(time.Second):
		t.Fatal("注销连接后 Done 应被关闭")
	}
}
