package meta

// 单条 EoX 记录的对账结果分类常量
const (
	RecordOutcomeUpdated     = "updated"
	RecordOutcomeCreated     = "created"
	RecordOutcomeIgnored     = "ignored"
	RecordOutcomeBlacklisted = "blacklisted"
	RecordOutcomeError       = "error"
)

var RecordOutcomes = []MetaField{
	{Name: RecordOutcomeUpdated, DisplayName: "已更新", Type: "string"},
	{Name: RecordOutcomeCreated, DisplayName: "已创建", Type: "string"},
	{Name: RecordOutcomeIgnored, DisplayName: "已忽略", Type: "string"},
	{Name: RecordOutcomeBlacklisted, DisplayName: "黑名单", Type: "string"},
	{Name: RecordOutcomeError, DisplayName: "错误", Type: "string"},
}

// 任务状态常量
const (
	TaskStatusPending   = "pending"
	TaskStatusRunning   = "running"
	TaskStatusSuccess   = "success"
	TaskStatusFailed    = "failed"
	TaskStatusCancelled = "cancelled"
)

var TaskStatuses = []MetaField{
	{Name: TaskStatusPending, DisplayName: "待执行", Type: "string"},
	{Name: TaskStatusRunning, DisplayName: "执行中", Type: "string"},
	{Name: TaskStatusSuccess, DisplayName: "成功", Type: "string"},
	{Name: TaskStatusFailed, DisplayName: "失败", Type: "string"},
	{Name: TaskStatusCancelled, DisplayName: "取消", Type: "string"},
}

// 任务类型常量
const (
	TaskTypeEoxSync            = "eox_sync"
	TaskTypeProductCheck       = "product_check"
	TaskTypeProductCheckDelete = "product_check_delete"
)

// IsValidTaskStatus 校验任务状态是否合法
func IsValidTaskStatus(status string) bool {
	for _, f := range TaskStatuses {
		if f.Name == status {
			return true
		}
	}
	return false
}

// 同步调度默认配置：每周日凌晨 3 点执行
const DefaultSyncCronExpression = "0 0 3 * * 0"

// 单例任务租约超时时长（分钟），超时后允许其他实例接管
const TaskLeaseTimeoutMinutes = 30
