package meta

// 保留厂商常量。"unassigned" 为哨兵厂商，厂商被删除时产品默认回挂到它，
// 哨兵自身禁止删除；"Cisco Systems" 为 EoX 对账的固定厂商。
const (
	VendorUnassignedID   = "00000000-0000-0000-0000-000000000001"
	VendorUnassignedName = "unassigned"
	VendorCiscoName      = "Cisco Systems"
)

// 迁移来源偏好权重的合法范围与阈值。preference > 25 的来源为首选来源，
// 阈值是领域常量，不做运行时配置。
const (
	MigrationSourcePreferenceMin       = 1
	MigrationSourcePreferenceMax       = 100
	MigrationSourcePreferenceThreshold = 25
)

// EoX 同步内建迁移来源
const (
	MigrationSourceEoxName       = "Cisco EoX API"
	MigrationSourceEoxPreference = 50
)

// 通知消息类型常量
const (
	NotificationTypeInfo    = "INFO"
	NotificationTypeSuccess = "SUCC"
	NotificationTypeWarning = "WARN"
	NotificationTypeError   = "ERR"
)

var NotificationTypes = []MetaField{
	{Name: NotificationTypeInfo, DisplayName: "信息", Type: "string"},
	{Name: NotificationTypeSuccess, DisplayName: "成功", Type: "string"},
	{Name: NotificationTypeWarning, DisplayName: "警告", Type: "string"},
	{Name: NotificationTypeError, DisplayName: "错误", Type: "string"},
}

// IsValidNotificationType 校验通知类型是否合法
func IsValidNotificationType(t string) bool {
	for _, f := range NotificationTypes {
		if f.Name == t {
			return true
		}
	}
	return false
}
