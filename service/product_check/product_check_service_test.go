/*
 * @module service/product_check/product_check_service_test
 * @description 产品核对服务单元测试，覆盖分词、条目生成与可见性控制
 * @architecture 测试层 - 单元测试
 */

package product_check

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"productdb-service/service/catalog"
	"productdb-service/service/database"
	"productdb-service/service/meta"
	"productdb-service/service/migration"
	"productdb-service/service/models"
	"productdb-service/service/settings"
)

type checkFixture struct {
	db       *gorm.DB
	service  *ProductCheckService
	products *catalog.ProductService
	lists    *catalog.ProductListService
	settings *settings.SettingsService
	vendor   *models.Vendor
}

func newCheckFixture(t *testing.T) *checkFixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "打开内存数据库失败")
	require.NoError(t, database.AutoMigrate(db), "数据库迁移失败")

	settingsService := settings.NewSettingsService(db, settings.NewMemoryCache())
	lease := settings.NewLeaseLock(settingsService)
	products := catalog.NewProductService(db)
	lists := catalog.NewProductListService(db)
	migrations := migration.NewMigrationService(db)

	f := &checkFixture{
		db:       db,
		products: products,
		lists:    lists,
		settings: settingsService,
		vendor:   &models.Vendor{Name: "Cisco Systems"},
	}
	require.NoError(t, db.Create(f.vendor).Error)
	f.service = NewProductCheckService(db, products, lists, migrations, settingsService, lease)
	return f
}

func TestTokenizeMultiset(t *testing.T) {
	tokens := Tokenize("WS-C2960-48TT-L\nEX2200-24T; WS-C2960-48TT-L ;\n\n;WS-C2960-48TT-L")
	assert.Equal(t, map[string]int{
		"WS-C2960-48TT-L": 3,
		"EX2200-24T":      1,
	}, tokens, "分词应按换行与分号切分并统计重复次数")
}

func TestTokenizeAppliesNFKC(t *testing.T) {
	// 全角字符归一到半角
	tokens := Tokenize("ＷＳ－Ｃ２９６０")
	_, ok := tokens["WS-C2960"]
	assert.True(t, ok, "分词应做 NFKC 规范化")
}

func TestRunBuildsEntries(t *testing.T) {
	f := newCheckFixture(t)
	ctx := context.Background()

	require.NoError(t, f.products.SaveProduct(&models.Product{
		ProductID: "WS-C2960-48TT-L", VendorID: f.vendor.ID,
	}))
	list := &models.ProductList{
		Name: "Campus 2024", VendorID: f.vendor.ID,
		StringProductList: "WS-C2960-48TT-L",
	}
	require.NoError(t, f.lists.SaveProductList(list))

	check := &models.ProductCheck{
		Name:            "库存核对",
		InputProductIDs: "WS-C2960-48TT-L\nWS-C2960-48TT-L\nUNKNOWN-1",
	}
	require.NoError(t, f.service.CreateProductCheck(check))
	require.NoError(t, f.service.Run(ctx, check))

	entries, err := f.service.GetEntries(check.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2, "每个唯一编号一条条目")

	unknown, known := entries[0], entries[1]
	assert.Equal(t, "UNKNOWN-1", unknown.InputProductID)
	assert.False(t, unknown.InDatabase)
	assert.Equal(t, 1, unknown.AmountOfProducts)

	assert.Equal(t, "WS-C2960-48TT-L", known.InputProductID)
	assert.True(t, known.InDatabase)
	assert.Equal(t, 2, known.AmountOfProducts, "重复输入应累计数量")
	assert.Equal(t, list.Hash, known.ProductListHashValues)

	names, err := f.service.ProductListNames(&known)
	require.NoError(t, err)
	assert.Equal(t, []string{"Campus 2024"}, names)
}

func TestRunResolvesMigrationTarget(t *testing.T) {
	f := newCheckFixture(t)
	ctx := context.Background()
	migrations := migration.NewMigrationService(f.db)

	source := &models.ProductMigrationSource{Name: "Cisco EoX API", Preference: 50}
	require.NoError(t, migrations.CreateMigrationSource(source))

	old := &models.Product{ProductID: "OLD-1", VendorID: f.vendor.ID}
	require.NoError(t, f.products.SaveProduct(old))
	require.NoError(t, f.products.SaveProduct(&models.Product{ProductID: "NEW-1", VendorID: f.vendor.ID}))
	require.NoError(t, migrations.SaveMigrationOption(&models.ProductMigrationOption{
		ProductID: old.ID, MigrationSourceID: source.ID, ReplacementProductID: "NEW-1",
	}))

	check := &models.ProductCheck{
		Name:              "迁移核对",
		InputProductIDs:   "OLD-1",
		MigrationSourceID: &source.ID,
	}
	require.NoError(t, f.service.CreateProductCheck(check))
	require.NoError(t, f.service.Run(ctx, check))

	entries, err := f.service.GetEntries(check.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].MigrationOptionID)
}

func TestRunIsIdempotent(t *testing.T) {
	f := newCheckFixture(t)
	ctx := context.Background()

	check := &models.ProductCheck{Name: "库存核对", InputProductIDs: "A-1\nB-2"}
	require.NoError(t, f.service.CreateProductCheck(check))

	require.NoError(t, f.service.Run(ctx, check))
	require.NoError(t, f.service.Run(ctx, check))

	entries, err := f.service.GetEntries(check.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "重跑应重建而非追加条目")
}

func TestRunIncrementsStatistics(t *testing.T) {
	f := newCheckFixture(t)
	ctx := context.Background()

	check := &models.ProductCheck{Name: "库存核对", InputProductIDs: "A-1\nB-2\nA-1"}
	require.NoError(t, f.service.CreateProductCheck(check))
	require.NoError(t, f.service.Run(ctx, check))

	checks, err := f.settings.GetInt(ctx, meta.SettingKeyStatAmountProductChecks)
	require.NoError(t, err)
	assert.Equal(t, 1, checks)

	unique, err := f.settings.GetInt(ctx, meta.SettingKeyStatAmountUniqueEntries)
	require.NoError(t, err)
	assert.Equal(t, 2, unique, "统计按唯一编号累计")
}

func TestGetProductCheckVisibility(t *testing.T) {
	f := newCheckFixture(t)

	private := &models.ProductCheck{Name: "私有核对", InputProductIDs: "A-1", Owner: "alice"}
	require.NoError(t, f.service.CreateProductCheck(private))
	public := &models.ProductCheck{Name: "公开核对", InputProductIDs: "A-1"}
	require.NoError(t, f.service.CreateProductCheck(public))

	_, err := f.service.GetProductCheck(private.ID, "alice")
	assert.NoError(t, err)
	_, err = f.service.GetProductCheck(private.ID, "bob")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound, "私有核对对他人不可见")
	_, err = f.service.GetProductCheck(public.ID, "bob")
	assert.NoError(t, err)

	checks, total, err := f.service.GetProductChecks(1, 10, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "公开核对", checks[0].Name)
}

func TestDeleteAllProductChecks(t *testing.T) {
	f := newCheckFixture(t)
	ctx := context.Background()

	check := &models.ProductCheck{Name: "库存核对", InputProductIDs: "A-1"}
	require.NoError(t, f.service.CreateProductCheck(check))
	require.NoError(t, f.service.Run(ctx, check))

	require.NoError(t, f.service.DeleteAllProductChecks(ctx, "task-1"))

	var count int64
	require.NoError(t, f.db.Model(&models.ProductCheck{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, f.db.Model(&models.ProductCheckEntry{}).Count(&count).Error)
	assert.Zero(t, count)
}
