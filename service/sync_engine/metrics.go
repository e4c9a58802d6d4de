/*
 * @module service/sync_engine/metrics
 * @description EoX 同步引擎的 Prometheus 指标定义
 * @architecture 分层架构 - 监控指标
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 同步执行 -> 按对账结果分类计数 -> 记录执行时长
 * @rules 指标仅在进程内累计，持久化统计走 settings 表
 * @dependencies github.com/prometheus/client_golang
 * @refs service/sync_engine/sync_service.go
 */

package sync_engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	syncRecordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eox_sync_records_total",
		Help: "EoX 同步记录数，按对账结果分类",
	}, []string{"outcome"})

	syncRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eox_sync_runs_total",
		Help: "EoX 同步执行次数，按最终状态分类",
	}, []string{"status"})

	syncDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "eox_sync_duration_seconds",
		Help:    "单次 EoX 同步执行时长",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})
)
