package meta

// 系统设置键常量（键值对存储于 settings 表）
const (
	SettingKeyCiscoApiEnabled          = "cisco_api_enabled"
	SettingKeyLoginOnlyMode            = "login_only_mode"
	SettingKeyCiscoApiClientID         = "cisco_api_client_id"
	SettingKeyCiscoApiClientSecret     = "cisco_api_client_secret"
	SettingKeyEoxCrawlerAutoSync       = "eox_crawler_auto_sync"
	SettingKeyEoxCrawlerCreateProducts = "eox_crawler_create_products"
	SettingKeyEoxApiQueries            = "eox_api_queries"
	SettingKeyEoxProductBlacklistRegex = "eox_product_blacklist_regex"
	SettingKeyInternalProductIDLabel   = "internal_product_id_label"
	SettingKeyEoxApiWaitTime           = "eox_api_wait_time"
	SettingKeyEoxCrawlerLastExecTime   = "eox_crawler_last_execution_time"
	SettingKeyEoxCrawlerLastExecResult = "eox_crawler_last_execution_result"
	SettingKeyStatAmountProductChecks  = "stat_amount_of_product_checks"
	SettingKeyStatAmountUniqueEntries  = "stat_amount_of_unique_product_check_entries"

	// 单例任务租约标记（跨进程生效，带时间戳，超时 30 分钟视为失效）
	SettingKeyEoxCrawlerSyncTaskID     = "eox_crawler_sync_task_id"
	SettingKeyProductCheckDeleteTaskID = "product_check_delete_task_id"
)

// EoX API 请求间隔的合法范围（秒）
const (
	EoxApiWaitTimeMin     = 1
	EoxApiWaitTimeMax     = 60
	EoxApiWaitTimeDefault = 5
)

// EoX API 查询字符串的最小长度
const EoxApiQueryMinLength = 3

// SettingKeys 全部可识别的设置键
var SettingKeys = []MetaField{
	{Name: SettingKeyCiscoApiEnabled, DisplayName: "Cisco API 启用", Type: "bool", DefaultValue: "false"},
	{Name: SettingKeyLoginOnlyMode, DisplayName: "仅登录模式", Type: "bool", DefaultValue: "false"},
	{Name: SettingKeyCiscoApiClientID, DisplayName: "Cisco API Client ID", Type: "string", DefaultValue: ""},
	{Name: SettingKeyCiscoApiClientSecret, DisplayName: "Cisco API Client Secret", Type: "string", DefaultValue: ""},
	{Name: SettingKeyEoxCrawlerAutoSync, DisplayName: "EoX 定时同步", Type: "bool", DefaultValue: "false"},
	{Name: SettingKeyEoxCrawlerCreateProducts, DisplayName: "同步时自动建档", Type: "bool", DefaultValue: "false"},
	{Name: SettingKeyEoxApiQueries, DisplayName: "EoX API 查询列表", Type: "text", DefaultValue: ""},
	{Name: SettingKeyEoxProductBlacklistRegex, DisplayName: "产品黑名单正则", Type: "text", DefaultValue: ""},
	{Name: SettingKeyInternalProductIDLabel, DisplayName: "内部产品编号标签", Type: "string", DefaultValue: "Internal Product ID"},
	{Name: SettingKeyEoxApiWaitTime, DisplayName: "EoX API 请求间隔(秒)", Type: "int", DefaultValue: "5"},
	{Name: SettingKeyEoxCrawlerLastExecTime, DisplayName: "上次同步时间", Type: "string", DefaultValue: ""},
	{Name: SettingKeyEoxCrawlerLastExecResult, DisplayName: "上次同步结果", Type: "string", DefaultValue: ""},
	{Name: SettingKeyStatAmountProductChecks, DisplayName: "产品核对执行总数", Type: "int", DefaultValue: "0"},
	{Name: SettingKeyStatAmountUniqueEntries, DisplayName: "产品核对唯一条目总数", Type: "int", DefaultValue: "0"},
	{Name: SettingKeyEoxCrawlerSyncTaskID, DisplayName: "同步任务租约", Type: "string", DefaultValue: ""},
	{Name: SettingKeyProductCheckDeleteTaskID, DisplayName: "批量删除任务租约", Type: "string", DefaultValue: ""},
}

// IsValidSettingKey 校验设置键是否在白名单内
func IsValidSettingKey(key string) bool {
	for _, f := range SettingKeys {
		if f.Name == key {
			return true
		}
	}
	return false
}
