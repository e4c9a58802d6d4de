/*
 * @module service/catalog/lifecycle_test
 * @description 生命周期状态推导单元测试
 * @architecture 测试层 - 单元测试
 */

package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"productdb-service/service/meta"
	"productdb-service/service/models"
)

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestLifecycleStatesNeverSynced(t *testing.T) {
	p := &models.Product{ProductID: "WS-C2960-48TT-L"}
	states := LifecycleStates(p, time.Now())
	assert.Empty(t, states, "未同步的产品不应有生命周期状态")
}

func TestLifecycleStatesNoAnnouncement(t *testing.T) {
	now := time.Now()
	p := &models.Product{
		ProductID:          "WS-C2960-48TT-L",
		EoxUpdateTimestamp: timePtr(now.AddDate(0, -1, 0)),
	}
	states := LifecycleStates(p, now)
	assert.Equal(t, []string{meta.LifecycleStateNoEoLAnnouncement}, states)
}

func TestLifecycleStatesEoSAnnounced(t *testing.T) {
	now := time.Now()
	p := &models.Product{
		EoxUpdateTimestamp:  timePtr(now),
		EoLAnnouncementDate: timePtr(now.AddDate(0, -1, 0)),
		EndOfSaleDate:       timePtr(now.AddDate(0, 6, 0)),
	}
	states := LifecycleStates(p, now)
	assert.Equal(t, []string{meta.LifecycleStateEoSAnnounced}, states)
}

func TestLifecycleStatesEoSAnnouncedWhenSaleDateUnset(t *testing.T) {
	// 未设置的停售日期按未来处理
	now := time.Now()
	p := &models.Product{
		EoxUpdateTimestamp:  timePtr(now),
		EoLAnnouncementDate: timePtr(now.AddDate(0, -1, 0)),
	}
	states := LifecycleStates(p, now)
	assert.Equal(t, []string{meta.LifecycleStateEoSAnnounced}, states)
}

func TestLifecycleStatesEndOfSaleWithSubStates(t *testing.T) {
	now := time.Now()
	past := timePtr(now.AddDate(-1, 0, 0))
	future := timePtr(now.AddDate(1, 0, 0))
	p := &models.Product{
		EoxUpdateTimestamp:     timePtr(now),
		EoLAnnouncementDate:    past,
		EndOfSaleDate:          past,
		EndOfSWMaintenanceDate: past,
		EndOfSecVulnSuppDate:   future,
		EndOfSupportDate:       future,
	}
	states := LifecycleStates(p, now)
	assert.Contains(t, states, meta.LifecycleStateEndOfSale)
	assert.Contains(t, states, meta.LifecycleStateEndOfSWMaint)
	assert.NotContains(t, states, meta.LifecycleStateEndOfSecVulnSupp)
	assert.NotContains(t, states, meta.LifecycleStateEndOfSupport)
}

func TestLifecycleStatesEndOfSupportIsTerminal(t *testing.T) {
	now := time.Now()
	past := timePtr(now.AddDate(-2, 0, 0))
	p := &models.Product{
		EoxUpdateTimestamp:              timePtr(now),
		EoLAnnouncementDate:             past,
		EndOfSaleDate:                   past,
		EndOfNewServiceAttachmentDate:   past,
		EndOfSWMaintenanceDate:          past,
		EndOfRoutineFailureAnalysisDate: past,
		EndOfServiceContractRenewalDate: past,
		EndOfSecVulnSuppDate:            past,
		EndOfSupportDate:                past,
	}
	states := LifecycleStates(p, now)
	assert.Equal(t, []string{meta.LifecycleStateEndOfSupport}, states, "终态应覆盖所有细分状态")
}

func TestLifecycleStatesDateEqualToNowCounts(t *testing.T) {
	// 日期恰好等于参考时间时视为已到达
	now := time.Now()
	p := &models.Product{
		EoxUpdateTimestamp:  timePtr(now),
		EoLAnnouncementDate: timePtr(now.AddDate(-1, 0, 0)),
		EndOfSaleDate:       timePtr(now),
	}
	states := LifecycleStates(p, now)
	assert.Contains(t, states, meta.LifecycleStateEndOfSale)
}

func TestIsEndOfSale(t *testing.T) {
	now := time.Now()
	past := timePtr(now.AddDate(-1, 0, 0))

	sold := &models.Product{
		EoxUpdateTimestamp:  timePtr(now),
		EoLAnnouncementDate: past,
		EndOfSaleDate:       past,
	}
	assert.True(t, IsEndOfSale(sold, now))

	unsupported := &models.Product{
		EoxUpdateTimestamp:  timePtr(now),
		EoLAnnouncementDate: past,
		EndOfSaleDate:       past,
		EndOfSupportDate:    past,
	}
	assert.True(t, IsEndOfSale(unsupported, now), "End of Support 也视为已停售")

	announced := &models.Product{
		EoxUpdateTimestamp:  timePtr(now),
		EoLAnnouncementDate: past,
		EndOfSaleDate:       timePtr(now.AddDate(0, 6, 0)),
	}
	assert.False(t, IsEndOfSale(announced, now))
}
