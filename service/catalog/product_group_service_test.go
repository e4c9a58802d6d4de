/*
 * @module service/catalog/product_group_service_test
 * @description ProductGroupService 单元测试
 * @architecture 测试层 - 单元测试
 */

package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productdb-service/service/models"
)

func TestUpdateProductGroupRejectsVendorChangeWithProducts(t *testing.T) {
	db := setupCatalogDB(t)
	service := NewProductGroupService(db)
	products := NewProductService(db)
	cisco := createTestVendor(t, db, "Cisco Systems")
	juniper := createTestVendor(t, db, "Juniper Networks")

	group := &models.ProductGroup{Name: "Switches", VendorID: cisco.ID}
	require.NoError(t, service.CreateProductGroup(group))

	require.NoError(t, products.SaveProduct(&models.Product{
		ProductID: "WS-C2960-48TT-L", VendorID: cisco.ID, ProductGroupID: &group.ID,
	}))

	err := service.UpdateProductGroup(group.ID, map[string]interface{}{"vendor_id": juniper.ID})
	assert.True(t, models.IsValidationError(err), "分组下有产品时不允许改挂厂商")
}

func TestDeleteProductGroupDetachesProducts(t *testing.T) {
	db := setupCatalogDB(t)
	service := NewProductGroupService(db)
	products := NewProductService(db)
	vendor := createTestVendor(t, db, "Cisco Systems")

	group := &models.ProductGroup{Name: "Switches", VendorID: vendor.ID}
	require.NoError(t, service.CreateProductGroup(group))

	product := &models.Product{ProductID: "WS-C2960-48TT-L", VendorID: vendor.ID, ProductGroupID: &group.ID}
	require.NoError(t, products.SaveProduct(product))

	require.NoError(t, service.DeleteProductGroup(group.ID))

	reloaded, err := products.GetProduct(product.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.ProductGroupID, "删除分组后产品应脱离分组而非被删除")
}
