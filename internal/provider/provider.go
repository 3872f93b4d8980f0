package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"panel_keeper_v1_202608/internal/model"
)

// ==================== Provider 契约 ====================

// CheckInProbe 远端签到状态探测结果（三态）
// 没有该端点的后端必须返回 ProbeUnknown，调用方不得把 Unknown 当作"未签到"
type CheckInProbe int

const (
	ProbeUnknown     CheckInProbe = iota // 后端无此端点或无法判断
	ProbeAvailable                       // 今日还可签到
	ProbeUnavailable                     // 今日已无可签（视为已完成今日签到）
)

// TodayUsage 今日用量
type TodayUsage struct {
	Consumption      int64 `json:"consumption"`
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	RequestsCount    int64 `json:"requests_count"`
}

// TodayIncome 今日收益（多数后端不提供，适配器返回零值而非报错）
type TodayIncome struct {
	Income int64 `json:"income"`
}

// CheckinResult 一次签到尝试的结果
type CheckinResult struct {
	Status  string                 `json:"status"` // model.CheckinResult* 三值
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// Provider 后端适配器契约
// 各后端的成功标记、措辞、端点差异全部在适配器内部消化，
// 引擎其余部分只认这里的归一化形态
type Provider interface {
	Name() string

	FetchQuota(ctx context.Context, acct *model.SiteAccount) (int64, error)
	FetchTodayUsage(ctx context.Context, acct *model.SiteAccount) (*TodayUsage, error)
	FetchTodayIncome(ctx context.Context, acct *model.SiteAccount) (*TodayIncome, error)
	FetchCheckInStatus(ctx context.Context, acct *model.SiteAccount) (CheckInProbe, error)

	// CanCheckIn 本地前置校验，不发起任何网络请求
	CanCheckIn(acct *model.SiteAccount) bool

	CheckIn(ctx context.Context, acct *model.SiteAccount) (*CheckinResult, error)
}

// ==================== 错误定义 ====================

// ErrCheckinNotSupported 后端根本没有签到端点（404 等），区别于一次失败的尝试
var ErrCheckinNotSupported = errors.New("check-in endpoint not supported")

// ErrMissingCredential 凭证缺失，属配置错误，不重试
var ErrMissingCredential = errors.New("missing credential")

// UnknownSiteTypeError 未注册的站点类型，属配置错误
type UnknownSiteTypeError struct {
	SiteType string
}

func (e *UnknownSiteTypeError) Error() string {
	return fmt.Sprintf("unknown site type: %s", e.SiteType)
}

// ==================== 措辞匹配 ====================

// 各家面板"今日已签到"的措辞不统一，中英双语兜底
var alreadyCheckedPhrases = []string{
	"已签到",
	"已经签到",
	"今日已签到",
	"今天已经签到",
	"重复签到",
	"already checked",
	"already signed",
	"checked in today",
}

// isAlreadyCheckedMessage 根据后端返回文案判断是否为"已签到"
// 仅用于把语义失败归一化为 already_checked，不做其他控制流解析
func isAlreadyCheckedMessage(msg string) bool {
	lower := strings.ToLower(msg)
	for _, phrase := range alreadyCheckedPhrases {
		if strings.Contains(lower, strings.ToLower(phrase)) {
			return true
		}
	}
	return false
}

// hasCredential 凭证是否齐备
func hasCredential(acct *model.SiteAccount) bool {
	switch acct.AuthType {
	case model.AuthTypeAccessToken, model.AuthTypeCookie:
		return acct.Credential != ""
	default:
		return false
	}
}
