/*
 * @module service/settings/lease_lock
 * @description 基于设置表的单例任务租约锁，保证跨进程重启后约束仍然可观测
 * @architecture 工具层 - 提供命名租约能力
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 获取租约 -> 执行任务 -> 释放租约/超时失效
 * @rules 租约值为 "<task_id>|<RFC3339时间戳>"；超过 30 分钟的租约视为失效，
 *        允许被其他实例接管，避免崩溃的工作进程造成死锁
 * @dependencies productdb-service/service/meta
 * @refs service/sync_engine, service/product_check
 */

package settings

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"productdb-service/service/meta"
)

// LeaseLock 设置表租约锁
type LeaseLock struct {
	settings *SettingsService
}

// NewLeaseLock 创建租约锁
func NewLeaseLock(settings *SettingsService) *LeaseLock {
	return &LeaseLock{settings: settings}
}

// TryAcquire 尝试以 taskID 获取 key 上的租约。
// 已存在且未过期的租约会导致获取失败（返回持有者任务ID）。
// 写入通过带守卫条件的比较交换完成，两个进程竞争同一租约时只有一个成功
func (l *LeaseLock) TryAcquire(ctx context.Context, key, taskID string) (bool, string, error) {
	raw, holder, acquiredAt, err := l.current(ctx, key)
	if err != nil {
		return false, "", err
	}

	if holder != "" {
		age := time.Since(acquiredAt)
		if age < meta.TaskLeaseTimeoutMinutes*time.Minute {
			return false, holder, nil
		}
		// 超时的租约视为持有者已崩溃，接管
		slog.Warn("单例任务租约超时，接管",
			"key", key,
			"stale_holder", holder,
			"age", age.String())
	}

	value := fmt.Sprintf("%s|%s", taskID, time.Now().Format(time.RFC3339))
	swapped, err := l.settings.CompareAndSwap(ctx, key, raw, value)
	if err != nil {
		return false, "", fmt.Errorf("写入租约失败: %w", err)
	}
	if !swapped {
		// 竞争者在读写窗口内抢先写入
		_, holder, _, _ = l.current(ctx, key)
		return false, holder, nil
	}
	return true, taskID, nil
}

// Release 释放租约，仅持有者可释放
func (l *LeaseLock) Release(ctx context.Context, key, taskID string) error {
	raw, holder, _, err := l.current(ctx, key)
	if err != nil {
		return err
	}
	if holder != "" && holder != taskID {
		slog.Warn("租约已被其他任务持有，跳过释放", "key", key, "holder", holder)
		return nil
	}
	if raw == "" {
		return nil
	}
	swapped, err := l.settings.CompareAndSwap(ctx, key, raw, "")
	if err != nil {
		return err
	}
	if !swapped {
		slog.Warn("租约在释放前已被接管", "key", key)
	}
	return nil
}

// Holder 返回当前未过期租约的持有者任务ID，无人持有返回空串
func (l *LeaseLock) Holder(ctx context.Context, key string) (string, error) {
	_, holder, acquiredAt, err := l.current(ctx, key)
	if err != nil {
		return "", err
	}
	if holder == "" || time.Since(acquiredAt) >= meta.TaskLeaseTimeoutMinutes*time.Minute {
		return "", nil
	}
	return holder, nil
}

// current 解析租约值，同时返回原始值供比较交换使用
func (l *LeaseLock) current(ctx context.Context, key string) (string, string, time.Time, error) {
	value, err := l.settings.Get(ctx, key)
	if err != nil {
		return "", "", time.Time{}, err
	}
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return value, "", time.Time{}, nil
	}

	parts := strings.SplitN(trimmed, "|", 2)
	if len(parts) != 2 {
		// 历史格式或损坏的值，当作过期处理
		return value, parts[0], time.Time{}, nil
	}
	acquiredAt, err := time.Parse(time.RFC3339, parts[1])
	if err != nil {
		return value, parts[0], time.Time{}, nil
	}
	return value, parts[0], acquiredAt, nil
}
