package provider

import (
	"context"
	"time"

	"panel_keeper_v1_202608/internal/model"
)

// ==================== NewAPIProvider new-api 系 ====================

// NewAPIProvider new-api 及其多数分支的适配器
// 请求需额外携带 New-Api-User 头；签到走 /api/user/check_in，
// 探测走 /api/user/check_in_status（未启用签到的部署返回 404 → Unknown）
type NewAPIProvider struct {
	c   *panelClient
	loc *time.Location
}

// NewNewAPIProvider 创建 new-api 适配器
func NewNewAPIProvider(loc *time.Location) *NewAPIProvider {
	return &NewAPIProvider{c: newPanelClient("New-Api-User"), loc: loc}
}

func (p *NewAPIProvider) Name() string { return model.SiteTypeNewAPI }

func (p *NewAPIProvider) FetchQuota(ctx context.Context, acct *model.SiteAccount) (int64, error) {
	return fetchQuotaUserSelf(ctx, p.c, acct)
}

func (p *NewAPIProvider) FetchTodayUsage(ctx context.Context, acct *model.SiteAccount) (*TodayUsage, error) {
	return fetchUsageDataSelf(ctx, p.c, acct, p.loc)
}

func (p *NewAPIProvider) FetchTodayIncome(ctx context.Context, acct *model.SiteAccount) (*TodayIncome, error) {
	// new-api 主线无收益维度
	return &TodayIncome{}, nil
}

func (p *NewAPIProvider) FetchCheckInStatus(ctx context.Context, acct *model.SiteAccount) (CheckInProbe, error) {
	return probeCheckInStatus(ctx, p.c, acct)
}

// CanCheckIn new-api 系除凭证外还要求配置面板侧用户 ID（请求头用）
func (p *NewAPIProvider) CanCheckIn(acct *model.SiteAccount) bool {
	return canCheckInLocal(acct) && acct.UserID != ""
}

func (p *NewAPIProvider) CheckIn(ctx context.Context, acct *model.SiteAccount) (*CheckinResult, error) {
	return submitCheckIn(ctx, p.c, acct, "/api/user/check_in")
}

var _ Provider = (*NewAPIProvider)(nil)
