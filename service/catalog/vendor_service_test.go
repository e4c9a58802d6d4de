/*
 * @module service/catalog/vendor_service_test
 * @description VendorService 单元测试，覆盖哨兵厂商保护与删除回挂
 * @architecture 测试层 - 单元测试
 */

package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productdb-service/service/meta"
	"productdb-service/service/models"
)

func TestCreateVendorRejectsDuplicateName(t *testing.T) {
	db := setupCatalogDB(t)
	service := NewVendorService(db)

	require.NoError(t, service.CreateVendor(&models.Vendor{Name: "Cisco Systems"}))
	err := service.CreateVendor(&models.Vendor{Name: "Cisco Systems"})
	assert.True(t, models.IsValidationError(err))
}

func TestUpdateVendorRejectsSentinelRename(t *testing.T) {
	db := setupCatalogDB(t)
	service := NewVendorService(db)

	sentinel, err := service.EnsureUnassignedVendor()
	require.NoError(t, err)

	err = service.UpdateVendor(sentinel.ID, map[string]interface{}{"name": "Cisco"})
	assert.True(t, errors.Is(err, models.ErrOperationNotAllowed), "哨兵厂商重命名应被禁止")

	vendor := &models.Vendor{Name: "Cisco Systems"}
	require.NoError(t, service.CreateVendor(vendor))
	assert.NoError(t, service.UpdateVendor(vendor.ID, map[string]interface{}{"name": "Cisco"}))

	err = service.UpdateVendor(vendor.ID, map[string]interface{}{"name": ""})
	assert.True(t, models.IsValidationError(err), "空名称应校验失败")
}

func TestDeleteVendorRejectsSentinel(t *testing.T) {
	db := setupCatalogDB(t)
	service := NewVendorService(db)

	_, err := service.EnsureUnassignedVendor()
	require.NoError(t, err)

	err = service.DeleteVendor(meta.VendorUnassignedID)
	assert.True(t, errors.Is(err, models.ErrOperationNotAllowed), "哨兵厂商不可删除")
}

func TestDeleteVendorMovesProductsToSentinel(t *testing.T) {
	db := setupCatalogDB(t)
	service := NewVendorService(db)
	products := NewProductService(db)

	_, err := service.EnsureUnassignedVendor()
	require.NoError(t, err)

	vendor := &models.Vendor{Name: "Cisco Systems"}
	require.NoError(t, service.CreateVendor(vendor))

	product := &models.Product{ProductID: "WS-C2960-48TT-L", VendorID: vendor.ID}
	require.NoError(t, products.SaveProduct(product))

	require.NoError(t, service.DeleteVendor(vendor.ID))

	reloaded, err := products.GetProduct(product.ID)
	require.NoError(t, err)
	assert.Equal(t, meta.VendorUnassignedID, reloaded.VendorID, "删除厂商后产品应回挂到哨兵厂商")
}
