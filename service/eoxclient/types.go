/*
 * @module service/eoxclient/types
 * @description EoX API 响应结构定义与日期解析
 * @architecture 分层架构 - 外部服务接入层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow API响应反序列化 -> 日期字段解析 -> 对账记录
 * @rules 日期为 YYYY-MM-DD 字符串，单个空格表示未设置；
 *        EOLProductID 等自由文本字段可含任意字符（包括 %），不做解释
 * @dependencies encoding/json, time
 * @refs service/eoxclient/client.go, service/sync_engine
 */

package eoxclient

import (
	"strings"
	"time"
)

// EoxDate EoX 日期字段，{value, dateFormat} 包裹
type EoxDate struct {
	Value      string `json:"value"`
	DateFormat string `json:"dateFormat"`
}

// Time 解析日期值，空串或单个空格表示未设置
func (d EoxDate) Time() *time.Time {
	v := strings.TrimSpace(d.Value)
	if v == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil
	}
	return &t
}

// EoxMigrationDetails 迁移建议明细
type EoxMigrationDetails struct {
	PIDActiveFlag           string `json:"PIDActiveFlag"`
	MigrationInformation    string `json:"MigrationInformation"`
	MigrationOption         string `json:"MigrationOption"`
	MigrationProductID      string `json:"MigrationProductId"`
	MigrationProductInfoURL string `json:"MigrationProductInfoURL"`
	MigrationStrategy       string `json:"MigrationStrategy"`
	MigrationProductName    string `json:"MigrationProductName"`
}

// EoxRecord 单条 EoX 生命周期记录
type EoxRecord struct {
	EOLProductID                    string              `json:"EOLProductID"`
	ProductIDDescription            string              `json:"ProductIDDescription"`
	EOLInstanceID                   string              `json:"EOLInstanceID"`
	EOXExternalAnnouncementDate     EoxDate             `json:"EOXExternalAnnouncementDate"`
	EndOfSaleDate                   EoxDate             `json:"EndOfSaleDate"`
	EndOfSWMaintenanceReleases      EoxDate             `json:"EndOfSWMaintenanceReleases"`
	EndOfSecurityVulSupportDate     EoxDate             `json:"EndOfSecurityVulSupportDate"`
	EndOfRoutineFailureAnalysisDate EoxDate             `json:"EndOfRoutineFailureAnalysisDate"`
	EndOfServiceContractRenewal     EoxDate             `json:"EndOfServiceContractRenewal"`
	LastDateOfSupport               EoxDate             `json:"LastDateOfSupport"`
	EndOfSvcAttachDate              EoxDate             `json:"EndOfSvcAttachDate"`
	UpdatedTimeStamp                EoxDate             `json:"UpdatedTimeStamp"`
	EOXMigrationDetails             EoxMigrationDetails `json:"EOXMigrationDetails"`
	LinkToProductBulletinURL        string              `json:"LinkToProductBulletinURL"`
	ProductBulletinNumber           string              `json:"ProductBulletinNumber"`
}

// EoxError API 返回的记录级错误
type EoxError struct {
	ErrorID          string `json:"ErrorID"`
	ErrorDescription string `json:"ErrorDescription"`
	ErrorDataType    string `json:"ErrorDataType"`
	ErrorDataValue   string `json:"ErrorDataValue"`
}

// EoxPaginationResponseRecord 分页元数据
type EoxPaginationResponseRecord struct {
	PageIndex    int `json:"PageIndex"`
	LastIndex    int `json:"LastIndex"`
	TotalRecords int `json:"TotalRecords"`
	PageRecords  int `json:"PageRecords"`
}

// EoxQueryResponse 单页查询响应
type EoxQueryResponse struct {
	PaginationResponseRecord EoxPaginationResponseRecord `json:"PaginationResponseRecord"`
	EOXRecord                []EoxRecord                 `json:"EOXRecord"`
	EOXError                 []EoxError                  `json:"EOXError,omitempty"`
}

// QueryResult 单页查询结果
type QueryResult struct {
	RecordCount int
	Pages       int
	Records     []EoxRecord
	Errors      []EoxError
}

// StreamItem 惰性流中的一项：记录或页级错误
type StreamItem struct {
	Record *EoxRecord
	Err    error
}

// tokenResponse OAuth2 客户端凭证模式令牌响应
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}
