/*
 * @module service/sync_engine/sync_service
 * @description EoX 同步引擎，编排查询执行、黑名单过滤与产品对账
 * @architecture 分层架构 - 核心服务层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 租约获取 -> 查询校验 -> 流式拉取记录 -> 规范化/黑名单 -> 对账分类 ->
 *            写回执行结果 -> 发送通知 -> 释放租约
 * @rules 引擎为单例任务，通过 settings 租约跨进程互斥；查询按序执行以保证
 *        限速语义；单条记录失败只计入错误继续处理；认证失败中止整次调用；
 *        页边界为合法取消点
 * @dependencies productdb-service/service/eoxclient, productdb-service/service/catalog,
 *               productdb-service/service/migration, productdb-service/service/normalization
 * @refs service/scheduler, api/controllers/sync_controller.go
 */

package sync_engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"productdb-service/service/catalog"
	"productdb-service/service/eoxclient"
	"productdb-service/service/meta"
	"productdb-service/service/migration"
	"productdb-service/service/models"
	"productdb-service/service/normalization"
	"productdb-service/service/settings"
)

// 同步通知与结果明细中最多保留的错误行数
const maxErrorDetailLines = 10

// ErrSyncDisabled Cisco API 未启用
var ErrSyncDisabled = errors.New("Cisco API 未启用，同步被拒绝")

// ErrSyncAlreadyRunning 已有同步实例持有租约
var ErrSyncAlreadyRunning = errors.New("同步任务已在运行")

// Notifier 同步结果通知接口，由事件服务实现
type Notifier interface {
	Notify(ctx context.Context, title, notificationType, summary, detail string) error
}

// SyncReport 单次同步的执行报告
type SyncReport struct {
	Updated      int       `json:"updated"`
	Created      int       `json:"created"`
	Ignored      int       `json:"ignored"`
	Blacklisted  int       `json:"blacklisted"`
	Errors       int       `json:"errors"`
	QueryErrors  []string  `json:"query_errors,omitempty"`
	RecordErrors []string  `json:"record_errors,omitempty"`
	Cancelled    bool      `json:"cancelled"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
}

// Summary 报告的单行摘要
func (r *SyncReport) Summary() string {
	s := fmt.Sprintf("更新 %d，创建 %d，忽略 %d，黑名单 %d，错误 %d",
		r.Updated, r.Created, r.Ignored, r.Blacklisted, r.Errors)
	if r.Cancelled {
		s += "（已取消，结果为部分结果）"
	}
	return s
}

// Detail 报告的多行明细，错误行截断
func (r *SyncReport) Detail() string {
	var b strings.Builder
	b.WriteString(r.Summary())
	lines := append(append([]string{}, r.QueryErrors...), r.RecordErrors...)
	for i, line := range lines {
		if i >= maxErrorDetailLines {
			b.WriteString(fmt.Sprintf("\n... 另有 %d 条错误未展示", len(lines)-maxErrorDetailLines))
			break
		}
		b.WriteString("\n" + line)
	}
	return b.String()
}

// SyncService EoX 同步引擎
type SyncService struct {
	db         *gorm.DB
	settings   *settings.SettingsService
	lease      *settings.LeaseLock
	client     *eoxclient.EoxClient
	vendors    *catalog.VendorService
	products   *catalog.ProductService
	norm       *normalization.NormalizationService
	migrations *migration.MigrationService
	notifier   Notifier
}

// NewSyncService 创建同步引擎实例
func NewSyncService(
	db *gorm.DB,
	settingsService *settings.SettingsService,
	lease *settings.LeaseLock,
	client *eoxclient.EoxClient,
	vendors *catalog.VendorService,
	products *catalog.ProductService,
	norm *normalization.NormalizationService,
	migrations *migration.MigrationService,
	notifier Notifier,
) *SyncService {
	return &SyncService{
		db:         db,
		settings:   settingsService,
		lease:      lease,
		client:     client,
		vendors:    vendors,
		products:   products,
		norm:       norm,
		migrations: migrations,
		notifier:   notifier,
	}
}

// Synchronize 执行一次完整同步。progress 为可选的进度回调，
// 接收不透明的状态消息字符串。
func (s *SyncService) Synchronize(ctx context.Context, taskID string, progress func(string)) (*SyncReport, error) {
	if progress == nil {
		progress = func(string) {}
	}

	enabled, err := s.settings.IsCiscoApiEnabled(ctx)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return nil, ErrSyncDisabled
	}

	acquired, holder, err := s.lease.TryAcquire(ctx, meta.SettingKeyEoxCrawlerSyncTaskID, taskID)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, fmt.Errorf("%w（持有者 %s）", ErrSyncAlreadyRunning, holder)
	}
	defer func() {
		if err := s.lease.Release(context.Background(), meta.SettingKeyEoxCrawlerSyncTaskID, taskID); err != nil {
			slog.Error("释放同步租约失败", "error", err)
		}
	}()

	report := &SyncReport{StartedAt: time.Now()}
	err = s.run(ctx, report, progress)
	report.FinishedAt = time.Now()
	syncDuration.Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())

	s.finalize(report, err)
	return report, err
}

// run 执行同步主流程
func (s *SyncService) run(ctx context.Context, report *SyncReport, progress func(string)) error {
	queries, err := s.settings.EoxApiQueries(ctx)
	if err != nil {
		return err
	}

	blacklist, err := s.compileBlacklist(ctx)
	if err != nil {
		// 黑名单正则损坏属于配置级致命错误
		return err
	}

	waitTime, err := s.settings.EoxApiWaitTime(ctx)
	if err != nil {
		return err
	}
	createProducts, err := s.settings.IsCreateProductsEnabled(ctx)
	if err != nil {
		return err
	}

	ciscoVendor, err := s.ensureCiscoVendor()
	if err != nil {
		return err
	}
	source, err := s.ensureEoxSource()
	if err != nil {
		return err
	}

	for i, query := range queries {
		if ctx.Err() != nil {
			report.Cancelled = true
			return nil
		}

		query = strings.TrimSpace(query)
		if len(query) < meta.EoxApiQueryMinLength {
			report.QueryErrors = append(report.QueryErrors,
				fmt.Sprintf("查询 %q 无效：长度不足 %d 个字符", query, meta.EoxApiQueryMinLength))
			continue
		}

		progress(fmt.Sprintf("执行查询 %d/%d: %s", i+1, len(queries), query))

		for item := range s.client.QueryAll(ctx, query, waitTime) {
			if item.Err != nil {
				if eoxclient.IsAuthError(item.Err) {
					return item.Err
				}
				report.Errors++
				report.RecordErrors = append(report.RecordErrors,
					fmt.Sprintf("查询 %s: %v", query, item.Err))
				continue
			}

			outcome, err := s.reconcile(item.Record, ciscoVendor, source, blacklist, createProducts)
			if err != nil {
				report.Errors++
				syncRecordsTotal.WithLabelValues(meta.RecordOutcomeError).Inc()
				report.RecordErrors = append(report.RecordErrors,
					fmt.Sprintf("记录 %s: %v", item.Record.EOLProductID, err))
				continue
			}
			syncRecordsTotal.WithLabelValues(outcome).Inc()
			switch outcome {
			case meta.RecordOutcomeUpdated:
				report.Updated++
			case meta.RecordOutcomeCreated:
				report.Created++
			case meta.RecordOutcomeIgnored:
				report.Ignored++
			case meta.RecordOutcomeBlacklisted:
				report.Blacklisted++
			}
		}

		if ctx.Err() != nil {
			report.Cancelled = true
			return nil
		}
	}
	return nil
}

// reconcile 将单条 EoX 记录对账到产品目录，返回结果分类
func (s *SyncService) reconcile(
	record *eoxclient.EoxRecord,
	ciscoVendor *models.Vendor,
	source *models.ProductMigrationSource,
	blacklist []*regexp.Regexp,
	createProducts bool,
) (string, error) {
	rawPID := record.EOLProductID
	if strings.TrimSpace(rawPID) == "" {
		return "", fmt.Errorf("记录缺少 EOLProductID")
	}

	// 规范化规则作用域固定为 Cisco 厂商
	effectivePID, err := s.norm.Normalize(ciscoVendor.ID, rawPID)
	if err != nil {
		return "", err
	}

	for _, re := range blacklist {
		if re.MatchString(effectivePID) {
			return meta.RecordOutcomeBlacklisted, nil
		}
	}

	product, err := s.products.GetProductByPIDAndVendor(effectivePID, ciscoVendor.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if !createProducts {
			return meta.RecordOutcomeIgnored, nil
		}
		created := &models.Product{
			ProductID:   effectivePID,
			VendorID:    ciscoVendor.ID,
			Description: record.ProductIDDescription,
		}
		s.applyRecord(created, record)
		if err := s.products.SaveProduct(created); err != nil {
			return "", err
		}
		if err := s.upsertMigrationOption(created, source, record); err != nil {
			return "", err
		}
		return meta.RecordOutcomeCreated, nil
	}
	if err != nil {
		return "", err
	}

	s.applyRecord(product, record)
	if err := s.products.SaveProduct(product); err != nil {
		return "", err
	}
	if err := s.upsertMigrationOption(product, source, record); err != nil {
		return "", err
	}
	return meta.RecordOutcomeUpdated, nil
}

// applyRecord 将 EoX 记录的生命周期字段原样覆盖到产品
func (s *SyncService) applyRecord(product *models.Product, record *eoxclient.EoxRecord) {
	product.EoLAnnouncementDate = record.EOXExternalAnnouncementDate.Time()
	product.EndOfSaleDate = record.EndOfSaleDate.Time()
	product.EndOfNewServiceAttachmentDate = record.EndOfSvcAttachDate.Time()
	product.EndOfSWMaintenanceDate = record.EndOfSWMaintenanceReleases.Time()
	product.EndOfRoutineFailureAnalysisDate = record.EndOfRoutineFailureAnalysisDate.Time()
	product.EndOfServiceContractRenewalDate = record.EndOfServiceContractRenewal.Time()
	product.EndOfSecVulnSuppDate = record.EndOfSecurityVulSupportDate.Time()
	product.EndOfSupportDate = record.LastDateOfSupport.Time()
	product.EoxUpdateTimestamp = record.UpdatedTimeStamp.Time()
	product.EolReferenceNumber = record.ProductBulletinNumber
	product.EolReferenceURL = strings.TrimSpace(record.LinkToProductBulletinURL)
	product.LcStateSync = true
}

// upsertMigrationOption 迁移明细非空时创建或更新 (product, source) 迁移选项
func (s *SyncService) upsertMigrationOption(product *models.Product, source *models.ProductMigrationSource, record *eoxclient.EoxRecord) error {
	replacementPID := strings.TrimSpace(record.EOXMigrationDetails.MigrationProductID)
	if replacementPID == "" {
		return nil
	}
	// 自引用替代不构成有效迁移建议，跳过而不报错
	if replacementPID == product.ProductID {
		return nil
	}

	var option models.ProductMigrationOption
	err := s.db.Where("product_id = ? AND migration_source_id = ?", product.ID, source.ID).
		First(&option).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	option.ProductID = product.ID
	option.MigrationSourceID = source.ID
	option.ReplacementProductID = replacementPID
	option.MigrationProductInfoURL = strings.TrimSpace(record.EOXMigrationDetails.MigrationProductInfoURL)
	option.Comment = strings.TrimSpace(record.EOXMigrationDetails.MigrationStrategy)
	return s.migrations.SaveMigrationOption(&option)
}

// compileBlacklist 编译黑名单正则，任一模式损坏即失败
func (s *SyncService) compileBlacklist(ctx context.Context) ([]*regexp.Regexp, error) {
	patterns, err := s.settings.BlacklistPatterns(ctx)
	if err != nil {
		return nil, err
	}
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("黑名单正则 %q 无法编译: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// ensureCiscoVendor 确保 Cisco 厂商存在
func (s *SyncService) ensureCiscoVendor() (*models.Vendor, error) {
	vendor, err := s.vendors.GetVendorByName(meta.VendorCiscoName)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		vendor = &models.Vendor{Name: meta.VendorCiscoName}
		if err := s.vendors.CreateVendor(vendor); err != nil {
			return nil, err
		}
		return vendor, nil
	}
	return vendor, err
}

// ensureEoxSource 确保 EoX 迁移来源存在
func (s *SyncService) ensureEoxSource() (*models.ProductMigrationSource, error) {
	source, err := s.migrations.GetMigrationSourceByName(meta.MigrationSourceEoxName)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		source = &models.ProductMigrationSource{
			Name:        meta.MigrationSourceEoxName,
			Description: "Cisco EoX API 同步提供的迁移建议",
			Preference:  meta.MigrationSourceEoxPreference,
		}
		if err := s.migrations.CreateMigrationSource(source); err != nil {
			return nil, err
		}
		return source, nil
	}
	return source, err
}

// finalize 写回执行结果、累计指标并发送通知
func (s *SyncService) finalize(report *SyncReport, runErr error) {
	ctx := context.Background()

	result := report.Summary()
	notificationType := meta.NotificationTypeSuccess
	status := "success"
	switch {
	case runErr != nil:
		result = fmt.Sprintf("同步失败: %v（%s）", runErr, report.Summary())
		notificationType = meta.NotificationTypeError
		status = "failed"
	case report.Cancelled:
		notificationType = meta.NotificationTypeWarning
		status = "cancelled"
	case report.Errors > 0 || len(report.QueryErrors) > 0:
		notificationType = meta.NotificationTypeWarning
	}
	syncRunsTotal.WithLabelValues(status).Inc()

	if err := s.settings.RecordSyncExecution(ctx, report.StartedAt, result); err != nil {
		slog.Error("写回同步执行结果失败", "error", err)
	}

	if s.notifier != nil {
		detail := report.Detail()
		if runErr != nil {
			detail = result + "\n" + detail
		}
		if err := s.notifier.Notify(ctx, "EoX 同步", notificationType, result, detail); err != nil {
			slog.Error("发送同步通知失败", "error", err)
		}
	}
}
