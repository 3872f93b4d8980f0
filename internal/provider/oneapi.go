package provider

import (
	"context"
	"time"

	"panel_keeper_v1_202608/internal/model"
)

// ==================== OneAPIProvider one-api 原版 ====================

// OneAPIProvider one-api 原版适配器
// 原版没有签到端点，也没有收益维度：探测恒为 Unknown，签到返回 NotSupported
type OneAPIProvider struct {
	c   *panelClient
	loc *time.Location
}

// NewOneAPIProvider 创建 one-api 适配器
func NewOneAPIProvider(loc *time.Location) *OneAPIProvider {
	return &OneAPIProvider{c: newPanelClient(""), loc: loc}
}

func (p *OneAPIProvider) Name() string { return model.SiteTypeOneAPI }

func (p *OneAPIProvider) FetchQuota(ctx context.Context, acct *model.SiteAccount) (int64, error) {
	return fetchQuotaUserSelf(ctx, p.c, acct)
}

func (p *OneAPIProvider) FetchTodayUsage(ctx context.Context, acct *model.SiteAccount) (*TodayUsage, error) {
	return fetchUsageLogStat(ctx, p.c, acct, p.loc)
}

func (p *OneAPIProvider) FetchTodayIncome(ctx context.Context, acct *model.SiteAccount) (*TodayIncome, error) {
	return &TodayIncome{}, nil
}

func (p *OneAPIProvider) FetchCheckInStatus(ctx context.Context, acct *model.SiteAccount) (CheckInProbe, error) {
	return ProbeUnknown, nil
}

func (p *OneAPIProvider) CanCheckIn(acct *model.SiteAccount) bool {
	return canCheckInLocal(acct)
}

func (p *OneAPIProvider) CheckIn(ctx context.Context, acct *model.SiteAccount) (*CheckinResult, error) {
	return nil, ErrCheckinNotSupported
}

var _ Provider = (*OneAPIProvider)(nil)
