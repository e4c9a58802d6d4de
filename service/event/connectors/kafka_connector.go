/*
 * @module service/event/connectors/kafka_connector
 * @description Kafka通知连接器，将系统通知转发到Kafka主题
 * @architecture 适配器模式 - 封装第三方Kafka客户端
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 连接建立 -> 通知序列化 -> 消息发送 -> 连接断开
 * @rules 转发失败只记录不回滚，通知以数据库为准；未配置 broker 时不启用
 * @dependencies github.com/segmentio/kafka-go, encoding/json
 * @refs service/event/event_service.go
 */

package connectors

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/segmentio/kafka-go"

	"productdb-service/service/models"
)

// KafkaConnector Kafka通知连接器
type KafkaConnector struct {
	writer *kafka.Writer
	topic  string
}

// NewKafkaConnectorFromEnv 从环境变量创建 Kafka 连接器。
// KAFKA_BROKERS 未配置时返回 nil 表示不启用
func NewKafkaConnectorFromEnv() *KafkaConnector {
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		return nil
	}
	topic := os.Getenv("KAFKA_NOTIFICATION_TOPIC")
	if topic == "" {
		topic = "product-notifications"
	}
	return NewKafkaConnector(strings.Split(brokers, ","), topic)
}

// NewKafkaConnector 创建 Kafka 连接器
func NewKafkaConnector(brokers []string, topic string) *KafkaConnector {
	return &KafkaConnector{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
		},
		topic: topic,
	}
}

// Publish 将通知序列化发送到 Kafka 主题
func (c *KafkaConnector) Publish(ctx context.Context, notification *models.NotificationMessage) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return err
	}
	return c.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(notification.Type),
		Value: payload,
	})
}

// Close 关闭连接器
func (c *KafkaConnector) Close() error {
	return c.writer.Close()
}
