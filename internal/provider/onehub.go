package provider

import (
	"context"
	"time"

	"panel_keeper_v1_202608/internal/model"
)

// ==================== OneHubProvider one-hub ====================

// OneHubProvider one-hub 适配器
// 统计端点沿用 one-api 的 /api/log/self/stat；签到走 /api/user/clock_in，
// 无独立探测端点（Unknown），是否已签只能靠签到时的措辞判断
type OneHubProvider struct {
	c   *panelClient
	loc *time.Location
}

// NewOneHubProvider 创建 one-hub 适配器
func NewOneHubProvider(loc *time.Location) *OneHubProvider {
	return &OneHubProvider{c: newPanelClient(""), loc: loc}
}

func (p *OneHubProvider) Name() string { return model.SiteTypeOneHub }

func (p *OneHubProvider) FetchQuota(ctx context.Context, acct *model.SiteAccount) (int64, error) {
	return fetchQuotaUserSelf(ctx, p.c, acct)
}

func (p *OneHubProvider) FetchTodayUsage(ctx context.Context, acct *model.SiteAccount) (*TodayUsage, error) {
	return fetchUsageLogStat(ctx, p.c, acct, p.loc)
}

func (p *OneHubProvider) FetchTodayIncome(ctx context.Context, acct *model.SiteAccount) (*TodayIncome, error) {
	return &TodayIncome{}, nil
}

func (p *OneHubProvider) FetchCheckInStatus(ctx context.Context, acct *model.SiteAccount) (CheckInProbe, error) {
	return ProbeUnknown, nil
}

func (p *OneHubProvider) CanCheckIn(acct *model.SiteAccount) bool {
	return canCheckInLocal(acct)
}

func (p *OneHubProvider) CheckIn(ctx context.Context, acct *model.SiteAccount) (*CheckinResult, error) {
	return submitCheckIn(ctx, p.c, acct, "/api/user/clock_in")
}

var _ Provider = (*OneHubProvider)(nil)
