package provider

import (
	"context"
	"time"

	"panel_keeper_v1_202608/internal/model"
)

// ==================== VeloeraProvider veloera ====================

// VeloeraProvider veloera 适配器
// 布局与 new-api 同源但用户头不同（Veloera-User），
// 且 /api/user/self 额外给出 today_income
type VeloeraProvider struct {
	c   *panelClient
	loc *time.Location
}

// NewVeloeraProvider 创建 veloera 适配器
func NewVeloeraProvider(loc *time.Location) *VeloeraProvider {
	return &VeloeraProvider{c: newPanelClient("Veloera-User"), loc: loc}
}

func (p *VeloeraProvider) Name() string { return model.SiteTypeVeloera }

func (p *VeloeraProvider) FetchQuota(ctx context.Context, acct *model.SiteAccount) (int64, error) {
	return fetchQuotaUserSelf(ctx, p.c, acct)
}

func (p *VeloeraProvider) FetchTodayUsage(ctx context.Context, acct *model.SiteAccount) (*TodayUsage, error) {
	return fetchUsageDataSelf(ctx, p.c, acct, p.loc)
}

func (p *VeloeraProvider) FetchTodayIncome(ctx context.Context, acct *model.SiteAccount) (*TodayIncome, error) {
	env, _, err := p.c.getJSON(ctx, acct, "/api/user/self")
	if err != nil {
		return nil, err
	}
	if env == nil || !env.Success {
		// 收益拿不到不算同步失败，按零值兜底
		return &TodayIncome{}, nil
	}

	var data userSelfData
	if err := decodeData(env, &data); err != nil {
		return &TodayIncome{}, nil
	}
	return &TodayIncome{Income: data.TodayIncome}, nil
}

func (p *VeloeraProvider) FetchCheckInStatus(ctx context.Context, acct *model.SiteAccount) (CheckInProbe, error) {
	return probeCheckInStatus(ctx, p.c, acct)
}

func (p *VeloeraProvider) CanCheckIn(acct *model.SiteAccount) bool {
	return canCheckInLocal(acct) && acct.UserID != ""
}

func (p *VeloeraProvider) CheckIn(ctx context.Context, acct *model.SiteAccount) (*CheckinResult, error) {
	return submitCheckIn(ctx, p.c, acct, "/api/user/check_in")
}

var _ Provider = (*VeloeraProvider)(nil)
