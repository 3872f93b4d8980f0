package provider

import (
	"context"
	"time"

	"panel_keeper_v1_202608/internal/model"
)

// ==================== DoneHubProvider done-hub ====================

// DoneHubProvider done-hub 适配器
// one-hub 的下游分支，签到端点改名为 /api/user/sign_in，其余语义一致
type DoneHubProvider struct {
	c   *panelClient
	loc *time.Location
}

// NewDoneHubProvider 创建 done-hub 适配器
func NewDoneHubProvider(loc *time.Location) *DoneHubProvider {
	return &DoneHubProvider{c: newPanelClient(""), loc: loc}
}

func (p *DoneHubProvider) Name() string { return model.SiteTypeDoneHub }

func (p *DoneHubProvider) FetchQuota(ctx context.Context, acct *model.SiteAccount) (int64, error) {
	return fetchQuotaUserSelf(ctx, p.c, acct)
}

func (p *DoneHubProvider) FetchTodayUsage(ctx context.Context, acct *model.SiteAccount) (*TodayUsage, error) {
	return fetchUsageLogStat(ctx, p.c, acct, p.loc)
}

func (p *DoneHubProvider) FetchTodayIncome(ctx context.Context, acct *model.SiteAccount) (*TodayIncome, error) {
	return &TodayIncome{}, nil
}

func (p *DoneHubProvider) FetchCheckInStatus(ctx context.Context, acct *model.SiteAccount) (CheckInProbe, error) {
	return ProbeUnknown, nil
}

func (p *DoneHubProvider) CanCheckIn(acct *model.SiteAccount) bool {
	return canCheckInLocal(acct)
}

func (p *DoneHubProvider) CheckIn(ctx context.Context, acct *model.SiteAccount) (*CheckinResult, error) {
	return submitCheckIn(ctx, p.c, acct, "/api/user/sign_in")
}

var _ Provider = (*DoneHubProvider)(nil)
