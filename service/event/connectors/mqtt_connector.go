/*
 * @module service/event/connectors/mqtt_connector
 * @description MQTT通知连接器，将系统通知发布到MQTT主题
 * @architecture 适配器模式 - 封装第三方MQTT客户端
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 连接建立 -> 通知序列化 -> 主题发布 -> 连接断开
 * @rules 发布为 QoS 1；自动重连交由客户端库处理；未配置 broker 时不启用
 * @dependencies github.com/eclipse/paho.mqtt.golang, encoding/json
 * @refs service/event/event_service.go
 */

package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"productdb-service/service/models"
)

// MQTTConnector MQTT通知连接器
type MQTTConnector struct {
	client mqtt.Client
	topic  string
}

// NewMQTTConnectorFromEnv 从环境变量创建 MQTT 连接器。
// MQTT_BROKER 未配置时返回 nil 表示不启用
func NewMQTTConnectorFromEnv() (*MQTTConnector, error) {
	broker := os.Getenv("MQTT_BROKER")
	if broker == "" {
		return nil, nil
	}
	topic := os.Getenv("MQTT_NOTIFICATION_TOPIC")
	if topic == "" {
		topic = "productdb/notifications"
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(fmt.Sprintf("productdb-service-%d", time.Now().UnixNano()))
	if username := os.Getenv("MQTT_USERNAME"); username != "" {
		opts.SetUsername(username)
		opts.SetPassword(os.Getenv("MQTT_PASSWORD"))
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetKeepAlive(30 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("连接MQTT broker失败: %w", token.Error())
	}
	return &MQTTConnector{client: client, topic: topic}, nil
}

// Publish 将通知序列化发布到 MQTT 主题
func (c *MQTTConnector) Publish(ctx context.Context, notification *models.NotificationMessage) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return err
	}
	token := c.client.Publish(c.topic, 1, false, payload)
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("MQTT发布超时")
	}
	return token.Error()
}

// Close 关闭连接器
func (c *MQTTConnector) Close() error {
	c.client.Disconnect(250)
	return nil
}
