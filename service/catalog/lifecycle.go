/*
 * @module service/catalog/lifecycle
 * @description 产品生命周期状态推导，基于最多八个部分填充的日期计算当前状态集合
 * @architecture 分层架构 - 业务服务层（纯函数）
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 未公告 -> EoS公告 -> End of Sale(+细分状态) -> End of Support
 * @rules 派生值不落库；未设置的日期按"未来"处理；End of Support 为终态，
 *        覆盖其下所有细分状态
 * @dependencies productdb-service/service/meta, productdb-service/service/models
 * @refs service/catalog/product_service.go
 */

package catalog

import (
	"time"

	"productdb-service/service/meta"
	"productdb-service/service/models"
)

// LifecycleStates 计算产品在参考日期 now 的生命周期状态集合。
// 返回空切片表示该产品从未被 EoX 同步覆盖或无可推导状态。
func LifecycleStates(p *models.Product, now time.Time) []string {
	if p.EoxUpdateTimestamp == nil {
		return []string{}
	}

	// 有同步记录但无公告日期：厂商尚未发布 EoL 公告
	if p.EoLAnnouncementDate == nil {
		return []string{meta.LifecycleStateNoEoLAnnouncement}
	}

	// 未设置的日期视为未来（now 的次日）
	future := now.AddDate(0, 0, 1)
	dateOrFuture := func(d *time.Time) time.Time {
		if d == nil {
			return future
		}
		return *d
	}

	if dateOrFuture(p.EndOfSaleDate).After(now) {
		return []string{meta.LifecycleStateEoSAnnounced}
	}

	// End of Support 为终态
	if !dateOrFuture(p.EndOfSupportDate).After(now) {
		return []string{meta.LifecycleStateEndOfSupport}
	}

	states := []string{meta.LifecycleStateEndOfSale}
	sub := []struct {
		date  *time.Time
		state string
	}{
		{p.EndOfNewServiceAttachmentDate, meta.LifecycleStateEndOfNewService},
		{p.EndOfSWMaintenanceDate, meta.LifecycleStateEndOfSWMaint},
		{p.EndOfRoutineFailureAnalysisDate, meta.LifecycleStateEndOfRoutineFA},
		{p.EndOfServiceContractRenewalDate, meta.LifecycleStateEndOfSvcContract},
		{p.EndOfSecVulnSuppDate, meta.LifecycleStateEndOfSecVulnSupp},
	}
	for _, s := range sub {
		if !dateOrFuture(s.date).After(now) {
			states = append(states, s.state)
		}
	}
	return states
}

// IsEndOfSale 判断产品在参考日期是否已停售
func IsEndOfSale(p *models.Product, now time.Time) bool {
	for _, state := range LifecycleStates(p, now) {
		if state == meta.LifecycleStateEndOfSale || state == meta.LifecycleStateEndOfSupport {
			return true
		}
	}
	return false
}
