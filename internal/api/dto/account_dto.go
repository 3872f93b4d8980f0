package dto

import "time"

// ================== Account DTO ==================

// AccountListReq 账户列表请求
type AccountListReq struct {
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=20"`
	SiteType string `form:"site_type"`
	Keyword  string `form:"keyword"`
	Disabled *bool  `form:"disabled"`
}

// AccountCreateReq 账户创建请求
type AccountCreateReq struct {
	Name       string `json:"name" binding:"required,max=255"`
	SiteURL    string `json:"site_url" binding:"required,max=512"`
	SiteType   string `json:"site_type" binding:"required"`
	AuthType   string `json:"auth_type" binding:"required"`
	UserID     string `json:"user_id"`
	Credential string `json:"credential"`

	EnableDetection       bool   `json:"enable_detection"`
	CustomCheckInURL      string `json:"custom_checkin_url" binding:"max=512"`
	CustomRedeemURL       string `json:"custom_redeem_url" binding:"max=512"`
	OpenRedeemWithCheckIn bool   `json:"open_redeem_with_checkin"`

	ExchangeRate float64 `json:"exchange_rate"`
}

// AccountUpdateReq 账户更新请求（凭证留空表示不变）
type AccountUpdateReq struct {
	Name       string `json:"name" binding:"required,max=255"`
	SiteURL    string `json:"site_url" binding:"required,max=512"`
	SiteType   string `json:"site_type" binding:"required"`
	AuthType   string `json:"auth_type" binding:"required"`
	UserID     string `json:"user_id"`
	Credential string `json:"credential"`

	EnableDetection       bool   `json:"enable_detection"`
	CustomCheckInURL      string `json:"custom_checkin_url" binding:"max=512"`
	CustomRedeemURL       string `json:"custom_redeem_url" binding:"max=512"`
	OpenRedeemWithCheckIn bool   `json:"open_redeem_with_checkin"`

	ExchangeRate float64 `json:"exchange_rate"`
	Disabled     bool    `json:"disabled"`
}

// AccountResp 账户响应（不含凭证）
type AccountResp struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	SiteURL  string `json:"site_url"`
	SiteType string `json:"site_type"`
	AuthType string `json:"auth_type"`
	UserID   string `json:"user_id"`

	EnableDetection       bool   `json:"enable_detection"`
	IsCheckedInToday      bool   `json:"is_checked_in_today"`
	LastCheckInDate       string `json:"last_checkin_date"`
	CustomCheckInURL      string `json:"custom_checkin_url"`
	CustomRedeemURL       string `json:"custom_redeem_url"`
	OpenRedeemWithCheckIn bool   `json:"open_redeem_with_checkin"`

	ExchangeRate float64 `json:"exchange_rate"`
	Disabled     bool    `json:"disabled"`

	Quota                 int64 `json:"quota"`
	TodayQuotaConsumption int64 `json:"today_quota_consumption"`
	TodayPromptTokens     int64 `json:"today_prompt_tokens"`
	TodayCompletionTokens int64 `json:"today_completion_tokens"`
	TodayRequestsCount    int64 `json:"today_requests_count"`
	TodayIncome           int64 `json:"today_income"`

	LastSyncTime *time.Time `json:"last_sync_time,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// AccountListResp 账户列表响应
type AccountListResp struct {
	Total int64         `json:"total"`
	List  []AccountResp `json:"list"`
}

// ================== Sync DTO ==================

// SyncAccountResp 单账户同步响应
type SyncAccountResp struct {
	AccountID             string `json:"account_id"`
	Quota                 int64  `json:"quota"`
	TodayQuotaConsumption int64  `json:"today_quota_consumption"`
	TodayIncome           int64  `json:"today_income"`
	IsCheckedInToday      bool   `json:"is_checked_in_today"`
}

// ================== Checkin DTO ==================

// CheckinRetryReq 签到重试请求（为空时重试上一轮失败账户）
type CheckinRetryReq struct {
	AccountIDs []string `json:"account_ids"`
}

// CheckinLogListReq 签到流水查询请求
type CheckinLogListReq struct {
	Limit int `form:"limit,default=50"`
}
