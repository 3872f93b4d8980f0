package provider

import (
	"context"
	"time"

	"panel_keeper_v1_202608/internal/model"
)

// ==================== AnyRouterProvider any-router ====================

// AnyRouterProvider any-router 适配器
// 只认浏览器会话 Cookie；不提供今日维度的用量与收益端点，对应操作返回零值；
// 签到走 /api/checkin
type AnyRouterProvider struct {
	c   *panelClient
	loc *time.Location
}

// NewAnyRouterProvider 创建 any-router 适配器
func NewAnyRouterProvider(loc *time.Location) *AnyRouterProvider {
	return &AnyRouterProvider{c: newPanelClient(""), loc: loc}
}

func (p *AnyRouterProvider) Name() string { return model.SiteTypeAnyRouter }

func (p *AnyRouterProvider) FetchQuota(ctx context.Context, acct *model.SiteAccount) (int64, error) {
	return fetchQuotaUserSelf(ctx, p.c, acct)
}

func (p *AnyRouterProvider) FetchTodayUsage(ctx context.Context, acct *model.SiteAccount) (*TodayUsage, error) {
	// 面板无今日维度统计端点，按零值返回而非报错
	return &TodayUsage{}, nil
}

func (p *AnyRouterProvider) FetchTodayIncome(ctx context.Context, acct *model.SiteAccount) (*TodayIncome, error) {
	return &TodayIncome{}, nil
}

func (p *AnyRouterProvider) FetchCheckInStatus(ctx context.Context, acct *model.SiteAccount) (CheckInProbe, error) {
	return ProbeUnknown, nil
}

// CanCheckIn Cookie 会话是硬前提
func (p *AnyRouterProvider) CanCheckIn(acct *model.SiteAccount) bool {
	return acct.CheckIn.EnableDetection &&
		acct.AuthType == model.AuthTypeCookie &&
		acct.Credential != ""
}

func (p *AnyRouterProvider) CheckIn(ctx context.Context, acct *model.SiteAccount) (*CheckinResult, error) {
	return submitCheckIn(ctx, p.c, acct, "/api/checkin")
}

var _ Provider = (*AnyRouterProvider)(nil)
