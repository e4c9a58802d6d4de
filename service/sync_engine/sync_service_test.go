/*
 * @module service/sync_engine/sync_service_test
 * @description 同步引擎集成测试，基于内存数据库与 httptest 模拟 EoX API
 * @architecture 测试层 - 集成测试
 */

package sync_engine

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"productdb-service/service/catalog"
	"productdb-service/service/database"
	"productdb-service/service/eoxclient"
	"productdb-service/service/meta"
	"productdb-service/service/migration"
	"productdb-service/service/models"
	"productdb-service/service/normalization"
	"productdb-service/service/settings"
)

type recordedNotification struct {
	Title   string
	Type    string
	Summary string
	Detail  string
}

type fakeNotifier struct {
	notifications []recordedNotification
}

func (n *fakeNotifier) Notify(ctx context.Context, title, notificationType, summary, detail string) error {
	n.notifications = append(n.notifications, recordedNotification{title, notificationType, summary, detail})
	return nil
}

type syncFixture struct {
	db       *gorm.DB
	settings *settings.SettingsService
	service  *SyncService
	products *catalog.ProductService
	norm     *normalization.NormalizationService
	notifier *fakeNotifier
}

// newSyncFixture 装配与正式 init 一致的同步引擎，EoX API 由传入的 handler 模拟
func newSyncFixture(t *testing.T, handler http.HandlerFunc) *syncFixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "打开内存数据库失败")
	require.NoError(t, database.AutoMigrate(db), "数据库迁移失败")

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	settingsService := settings.NewSettingsService(db, settings.NewMemoryCache())
	lease := settings.NewLeaseLock(settingsService)
	client := eoxclient.NewEoxClientWithEndpoints(settingsService,
		server.URL+"/token", server.URL+"/eox")

	products := catalog.NewProductService(db)
	migrations := migration.NewMigrationService(db)
	products.RegisterSaveHook(migrations.ResolveDanglingReplacements)
	norm := normalization.NewNormalizationService(db)
	notifier := &fakeNotifier{}

	f := &syncFixture{
		db:       db,
		settings: settingsService,
		products: products,
		norm:     norm,
		notifier: notifier,
	}
	f.service = NewSyncService(db, settingsService, lease, client,
		catalog.NewVendorService(db), products, norm, migrations, notifier)

	ctx := context.Background()
	require.NoError(t, settingsService.SetBool(ctx, meta.SettingKeyCiscoApiEnabled, true))
	require.NoError(t, settingsService.SetBool(ctx, meta.SettingKeyEoxCrawlerCreateProducts, true))
	require.NoError(t, settingsService.Set(ctx, meta.SettingKeyCiscoApiClientID, "id"))
	require.NoError(t, settingsService.Set(ctx, meta.SettingKeyCiscoApiClientSecret, "secret"))
	require.NoError(t, settingsService.SetInt(ctx, meta.SettingKeyEoxApiWaitTime, 1))
	return f
}

func (f *syncFixture) setQueries(t *testing.T, queries string) {
	require.NoError(t, f.settings.Set(context.Background(), meta.SettingKeyEoxApiQueries, queries))
}

func singleRecordHandler(pid, replacementPID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token" {
			fmt.Fprint(w, `{"access_token": "tok-1", "expires_in": 3600}`)
			return
		}
		fmt.Fprintf(w, `{
			"PaginationResponseRecord": {"PageIndex": 1, "LastIndex": 1, "TotalRecords": 1, "PageRecords": 1},
			"EOXRecord": [{
				"EOLProductID": %q,
				"ProductIDDescription": "48-port switch",
				"EOXExternalAnnouncementDate": {"value": "2019-10-01", "dateFormat": "YYYY-MM-DD"},
				"EndOfSaleDate": {"value": "2020-01-31", "dateFormat": "YYYY-MM-DD"},
				"LastDateOfSupport": {"value": "2025-01-31", "dateFormat": "YYYY-MM-DD"},
				"UpdatedTimeStamp": {"value": "2019-10-02", "dateFormat": "YYYY-MM-DD"},
				"ProductBulletinNumber": "EOL13007",
				"LinkToProductBulletinURL": "https://www.cisco.com/c/en/us/products/eol13007.html",
				"EOXMigrationDetails": {"MigrationProductId": %q}
			}]
		}`, pid, replacementPID)
	}
}

func TestSynchronizeCreatesProducts(t *testing.T) {
	f := newSyncFixture(t, singleRecordHandler("WS-C2960-48TT-L", "WS-C2960X-48TS-L"))
	f.setQueries(t, "WS-C2960")

	report, err := f.service.Synchronize(context.Background(), "task-1", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 0, report.Errors)

	product, err := f.products.GetProductByPID("WS-C2960-48TT-L")
	require.NoError(t, err)
	assert.True(t, product.LcStateSync)
	assert.Equal(t, "EOL13007", product.EolReferenceNumber)
	require.NotNil(t, product.EndOfSaleDate)
	assert.Equal(t, 2020, product.EndOfSaleDate.Year())

	// 迁移选项随记录一并建立
	var option models.ProductMigrationOption
	require.NoError(t, f.db.Where("product_id = ?", product.ID).First(&option).Error)
	assert.Equal(t, "WS-C2960X-48TS-L", option.ReplacementProductID)

	var source models.ProductMigrationSource
	require.NoError(t, f.db.First(&source, "id = ?", option.MigrationSourceID).Error)
	assert.Equal(t, meta.MigrationSourceEoxName, source.Name)
}

func TestSynchronizeUpdatesExistingProducts(t *testing.T) {
	f := newSyncFixture(t, singleRecordHandler("WS-C2960-48TT-L", ""))
	f.setQueries(t, "WS-C2960")

	vendor := &models.Vendor{Name: meta.VendorCiscoName}
	require.NoError(t, f.db.Create(vendor).Error)
	existing := &models.Product{ProductID: "WS-C2960-48TT-L", VendorID: vendor.ID, Description: "manual entry"}
	require.NoError(t, f.products.SaveProduct(existing))

	report, err := f.service.Synchronize(context.Background(), "task-1", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 0, report.Created)

	reloaded, err := f.products.GetProduct(existing.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.LcStateSync)
	assert.Equal(t, "manual entry", reloaded.Description, "同步不应覆盖手工维护的描述")
	require.NotNil(t, reloaded.EndOfSupportDate)
}

func TestSynchronizeIgnoresUnknownWhenCreateDisabled(t *testing.T) {
	f := newSyncFixture(t, singleRecordHandler("WS-C2960-48TT-L", ""))
	f.setQueries(t, "WS-C2960")
	require.NoError(t, f.settings.SetBool(context.Background(), meta.SettingKeyEoxCrawlerCreateProducts, false))

	report, err := f.service.Synchronize(context.Background(), "task-1", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Ignored)

	_, err = f.products.GetProductByPID("WS-C2960-48TT-L")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSynchronizeAppliesBlacklist(t *testing.T) {
	f := newSyncFixture(t, singleRecordHandler("WS-C2960-48TT-L", ""))
	f.setQueries(t, "WS-C2960")
	require.NoError(t, f.settings.Set(context.Background(),
		meta.SettingKeyEoxProductBlacklistRegex, `^WS-C2960-.*$`))

	report, err := f.service.Synchronize(context.Background(), "task-1", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Blacklisted)
	assert.Equal(t, 0, report.Created)
}

func TestSynchronizeNormalizesBeforeMatching(t *testing.T) {
	f := newSyncFixture(t, singleRecordHandler("WS-C2960-48TT-L=", ""))
	f.setQueries(t, "WS-C2960")

	// 规范化规则剥离营销后缀，规则作用域为 Cisco 厂商
	vendor := &models.Vendor{Name: meta.VendorCiscoName}
	require.NoError(t, f.db.Create(vendor).Error)
	require.NoError(t, f.norm.SaveRule(&models.ProductIDNormalizationRule{
		VendorID:          vendor.ID,
		ProductIDTemplate: "%s",
		Regex:             `^(\S+?)=$`,
	}))

	report, err := f.service.Synchronize(context.Background(), "task-1", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)

	_, err = f.products.GetProductByPID("WS-C2960-48TT-L")
	assert.NoError(t, err, "产品应以规范化后的编号建档")
}

func TestSynchronizeRejectsShortQueries(t *testing.T) {
	f := newSyncFixture(t, singleRecordHandler("WS-C2960-48TT-L", ""))
	f.setQueries(t, "WS\nWS-C2960")

	report, err := f.service.Synchronize(context.Background(), "task-1", nil)
	require.NoError(t, err)
	assert.Len(t, report.QueryErrors, 1, "过短的查询应计入错误并跳过")
	assert.Equal(t, 1, report.Created, "其余查询应继续执行")
}

func TestSynchronizeDisabled(t *testing.T) {
	f := newSyncFixture(t, singleRecordHandler("WS-C2960-48TT-L", ""))
	require.NoError(t, f.settings.SetBool(context.Background(), meta.SettingKeyCiscoApiEnabled, false))

	_, err := f.service.Synchronize(context.Background(), "task-1", nil)
	assert.ErrorIs(t, err, ErrSyncDisabled)
}

func TestSynchronizeMutualExclusion(t *testing.T) {
	f := newSyncFixture(t, singleRecordHandler("WS-C2960-48TT-L", ""))
	f.setQueries(t, "WS-C2960")

	// 模拟另一实例持有的租约
	lease := settings.NewLeaseLock(f.settings)
	acquired, _, err := lease.TryAcquire(context.Background(), meta.SettingKeyEoxCrawlerSyncTaskID, "other-task")
	require.NoError(t, err)
	require.True(t, acquired)

	_, err = f.service.Synchronize(context.Background(), "task-1", nil)
	assert.ErrorIs(t, err, ErrSyncAlreadyRunning)
}

func TestSynchronizeRecordsExecutionAndNotifies(t *testing.T) {
	f := newSyncFixture(t, singleRecordHandler("WS-C2960-48TT-L", ""))
	f.setQueries(t, "WS-C2960")

	_, err := f.service.Synchronize(context.Background(), "task-1", nil)
	require.NoError(t, err)

	ctx := context.Background()
	lastResult, err := f.settings.Get(ctx, meta.SettingKeyEoxCrawlerLastExecResult)
	require.NoError(t, err)
	assert.Contains(t, lastResult, "创建 1")

	lastTime, err := f.settings.Get(ctx, meta.SettingKeyEoxCrawlerLastExecTime)
	require.NoError(t, err)
	assert.NotEmpty(t, lastTime)

	require.Len(t, f.notifier.notifications, 1)
	assert.Equal(t, "EoX 同步", f.notifier.notifications[0].Title)
	assert.Equal(t, meta.NotificationTypeSuccess, f.notifier.notifications[0].Type)
}

func TestSynchronizeAuthFailureIsFatal(t *testing.T) {
	f := newSyncFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error": "invalid_client"}`)
			return
		}
	})
	f.setQueries(t, "WS-C2960")

	_, err := f.service.Synchronize(context.Background(), "task-1", nil)
	assert.True(t, eoxclient.IsAuthError(err), "认证失败应中止整次同步")

	require.Len(t, f.notifier.notifications, 1)
	assert.Equal(t, meta.NotificationTypeError, f.notifier.notifications[0].Type)
}

func TestSynchronizeEmptyQueriesStillRecordsExecution(t *testing.T) {
	f := newSyncFixture(t, singleRecordHandler("WS-C2960-48TT-L", ""))
	f.setQueries(t, "")

	report, err := f.service.Synchronize(context.Background(), "task-1", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Created)

	lastResult, err := f.settings.Get(context.Background(), meta.SettingKeyEoxCrawlerLastExecResult)
	require.NoError(t, err)
	assert.NotEmpty(t, lastResult, "空查询列表也应记录执行结果")
}
