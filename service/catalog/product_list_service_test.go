/*
 * @module service/catalog/product_list_service_test
 * @description ProductListService 单元测试，覆盖清单规范化、哈希与成员查询
 * @architecture 测试层 - 单元测试
 */

package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productdb-service/service/models"
)

func TestSaveProductListNormalizesEntries(t *testing.T) {
	db := setupCatalogDB(t)
	service := NewProductListService(db)
	vendor := createTestVendor(t, db, "Cisco Systems")

	list := &models.ProductList{
		Name:              "Campus 2024",
		VendorID:          vendor.ID,
		StringProductList: "WS-C2960-48TT-L\n  EX2200-24T  \nWS-C2960-48TT-L\n\nAIR-CAP3702I",
	}
	require.NoError(t, service.SaveProductList(list))

	assert.Equal(t, "AIR-CAP3702I\nEX2200-24T\nWS-C2960-48TT-L", list.StringProductList,
		"清单应去重、去空白并按字典序排序")
	assert.Len(t, list.Hash, 64)
}

func TestSaveProductListHashChangesWithContent(t *testing.T) {
	db := setupCatalogDB(t)
	service := NewProductListService(db)
	vendor := createTestVendor(t, db, "Cisco Systems")

	list := &models.ProductList{Name: "Campus 2024", VendorID: vendor.ID, StringProductList: "A-1"}
	require.NoError(t, service.SaveProductList(list))
	firstHash := list.Hash

	list.StringProductList = "A-1\nB-2"
	require.NoError(t, service.SaveProductList(list))
	assert.NotEqual(t, firstHash, list.Hash, "内容变化应改变哈希")
}

func TestSaveProductListRejectsDuplicateNamePerVendor(t *testing.T) {
	db := setupCatalogDB(t)
	service := NewProductListService(db)
	vendor := createTestVendor(t, db, "Cisco Systems")

	require.NoError(t, service.SaveProductList(&models.ProductList{
		Name: "Campus 2024", VendorID: vendor.ID, StringProductList: "A-1",
	}))
	err := service.SaveProductList(&models.ProductList{
		Name: "Campus 2024", VendorID: vendor.ID, StringProductList: "B-2",
	})
	assert.True(t, models.IsValidationError(err))
}

func TestListsContainingExactMatchOnly(t *testing.T) {
	db := setupCatalogDB(t)
	service := NewProductListService(db)
	vendor := createTestVendor(t, db, "Cisco Systems")

	require.NoError(t, service.SaveProductList(&models.ProductList{
		Name: "Campus 2024", VendorID: vendor.ID,
		StringProductList: "WS-C2960-48TT-L\nEX2200-24T",
	}))
	require.NoError(t, service.SaveProductList(&models.ProductList{
		Name: "Branch 2024", VendorID: vendor.ID,
		StringProductList: "WS-C2960-48TT-L",
	}))

	lists, err := service.ListsContaining("WS-C2960-48TT-L")
	require.NoError(t, err)
	assert.Len(t, lists, 2)

	// 前缀不算包含
	lists, err = service.ListsContaining("WS-C2960")
	require.NoError(t, err)
	assert.Empty(t, lists)
}

func TestNamesByHashes(t *testing.T) {
	db := setupCatalogDB(t)
	service := NewProductListService(db)
	vendor := createTestVendor(t, db, "Cisco Systems")

	list := &models.ProductList{Name: "Campus 2024", VendorID: vendor.ID, StringProductList: "A-1"}
	require.NoError(t, service.SaveProductList(list))

	names, err := service.NamesByHashes([]string{list.Hash, "deadbeef"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Campus 2024"}, names)
}
