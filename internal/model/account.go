package model

import (
	"time"
)

// ==================== 站点类型常量 ====================

// 站点类型（决定使用哪个 Provider 适配器）
const (
	SiteTypeOneAPI    = "one-api"
	SiteTypeNewAPI    = "new-api"
	SiteTypeVeloera   = "veloera"
	SiteTypeOneHub    = "one-hub"
	SiteTypeDoneHub   = "done-hub"
	SiteTypeAnyRouter = "any-router"
)

// 鉴权方式
const (
	AuthTypeAccessToken = "access_token"
	AuthTypeCookie      = "cookie"
	AuthTypeNone        = "none"
)

// ==================== CheckInConfig 签到配置 ====================

// CheckInConfig 单账户签到配置（内嵌于 SiteAccount）
// EnableDetection 为 false 时，引擎对该账户既不探测也不签到
type CheckInConfig struct {
	EnableDetection       bool   `gorm:"not null;default:false" json:"enable_detection"`
	IsCheckedInToday      bool   `gorm:"not null;default:false" json:"is_checked_in_today"`
	LastCheckInDate       string `gorm:"type:char(10);not null;default:''" json:"last_checkin_date"` // 日期键 YYYY-MM-DD，非时间戳
	CustomCheckInURL      string `gorm:"type:varchar(512);not null;default:''" json:"custom_checkin_url"`
	CustomRedeemURL       string `gorm:"type:varchar(512);not null;default:''" json:"custom_redeem_url"`
	OpenRedeemWithCheckIn bool   `gorm:"not null;default:false" json:"open_redeem_with_checkin"` // UI 提示位，引擎原样透传
}

// ==================== SiteAccount 站点账户 ====================

// SiteAccount 一个已配置的远端面板账户
// 动态字段（额度/用量快照）由同步任务整体写回，引擎只持有临时副本
type SiteAccount struct {
	ID        string `gorm:"type:varchar(36);primaryKey" json:"id"` // UUID
	Name      string `gorm:"type:varchar(255);not null" json:"name"`
	SiteURL   string `gorm:"type:varchar(512);not null;index" json:"site_url"`
	SiteType  string `gorm:"type:varchar(64);not null;index" json:"site_type"`
	AuthType  string `gorm:"type:varchar(32);not null;default:'none'" json:"auth_type"`
	UserID    string `gorm:"type:varchar(64);not null;default:''" json:"user_id"` // 面板侧用户 ID，new-api 系请求头需要
	Credential string `gorm:"type:text;not null;default:''" json:"-"`             // 凭证（token 或 cookie），由上游解析好后存入

	CheckIn CheckInConfig `gorm:"embedded;embeddedPrefix:checkin_" json:"check_in"`

	ExchangeRate float64 `gorm:"not null;default:7" json:"exchange_rate"` // 展示换算汇率，引擎不参与换算
	Disabled     bool    `gorm:"not null;default:false;index" json:"disabled"`

	// --- 同步快照（最小单位整数，避免浮点误差） ---
	Quota                 int64 `gorm:"not null;default:0" json:"quota"`
	TodayQuotaConsumption int64 `gorm:"not null;default:0" json:"today_quota_consumption"`
	TodayPromptTokens     int64 `gorm:"not null;default:0" json:"today_prompt_tokens"`
	TodayCompletionTokens int64 `gorm:"not null;default:0" json:"today_completion_tokens"`
	TodayRequestsCount    int64 `gorm:"not null;default:0" json:"today_requests_count"`
	TodayIncome           int64 `gorm:"not null;default:0" json:"today_income"`

	LastSyncTime *time.Time `json:"last_sync_time,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (SiteAccount) TableName() string { return "site_accounts" }

// KnownSiteTypes 所有已注册适配器的站点类型
func KnownSiteTypes() []string {
	return []string{
		SiteTypeOneAPI, SiteTypeNewAPI, SiteTypeVeloera,
		SiteTypeOneHub, SiteTypeDoneHub, SiteTypeAnyRouter,
	}
}

// ==================== AccountSnapshot 同步快照 ====================

// AccountSnapshot 一次账户同步的合并结果
// 是同步后写回 SiteAccount 的唯一变更单元，要么整体成功要么整体放弃
type AccountSnapshot struct {
	Quota                 int64         `json:"quota"`
	TodayQuotaConsumption int64         `json:"today_quota_consumption"`
	TodayPromptTokens     int64         `json:"today_prompt_tokens"`
	TodayCompletionTokens int64         `json:"today_completion_tokens"`
	TodayRequestsCount    int64         `json:"today_requests_count"`
	TodayIncome           int64         `json:"today_income"`
	CheckIn               CheckInConfig `json:"check_in"`
}
