package meta

// 产品生命周期状态常量（由生命周期日期派生，不落库）
const (
	LifecycleStateNoEoLAnnouncement = "No EoL announcement"
	LifecycleStateEoSAnnounced      = "EoS announced"
	LifecycleStateEndOfSale         = "End of Sale"
	LifecycleStateEndOfNewService   = "End of New Service Attachment"
	LifecycleStateEndOfSWMaint      = "End of SW Maintenance Releases"
	LifecycleStateEndOfRoutineFA    = "End of Routine Failure Analysis"
	LifecycleStateEndOfSvcContract  = "End of Service Contract Renewal"
	LifecycleStateEndOfSecVulnSupp  = "End of Vulnerability/Security Support"
	LifecycleStateEndOfSupport      = "End of Support"
)

// LifecycleStates 全部合法的生命周期状态标签
var LifecycleStates = []string{
	LifecycleStateNoEoLAnnouncement,
	LifecycleStateEoSAnnounced,
	LifecycleStateEndOfSale,
	LifecycleStateEndOfNewService,
	LifecycleStateEndOfSWMaint,
	LifecycleStateEndOfRoutineFA,
	LifecycleStateEndOfSvcContract,
	LifecycleStateEndOfSecVulnSupp,
	LifecycleStateEndOfSupport,
}

// IsValidLifecycleState 校验状态标签是否合法
func IsValidLifecycleState(state string) bool {
	for _, s := range LifecycleStates {
		if s == state {
			return true
		}
	}
	return false
}
