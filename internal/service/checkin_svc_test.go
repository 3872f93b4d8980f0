package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"panel_keeper_v1_202608/internal/model"
	"panel_keeper_v1_202608/internal/provider"
	"panel_keeper_v1_202608/internal/repository"
	"panel_keeper_v1_202608/pkg/daykey"
)

func TestCheckinService_RunPass_SuccessAdvancesDayKey(t *testing.T) {
	fake := &fakeProvider{
		eligible:      true,
		checkinResult: &provider.CheckinResult{Status: model.CheckinResultSuccess, Message: "签到成功，获得 10000 额度"},
	}
	svc, db := newCheckinFixture(t, fake)
	acct := seedAccount(t, db, nil)

	status, err := svc.RunAutoCheckinPass(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, status.TotalEligible)
	assert.Equal(t, 1, status.Executed)
	assert.Equal(t, 1, status.SuccessCount)
	assert.Zero(t, status.FailedCount)
	assert.False(t, status.NeedsRetry)
	assert.False(t, status.IsRunning)
	require.NotNil(t, status.FinishedAt)

	got := reloadAccount(t, db, acct.ID)
	assert.True(t, got.CheckIn.IsCheckedInToday)
	assert.Equal(t, daykey.Today(time.UTC), got.CheckIn.LastCheckInDate)
}

func TestCheckinService_RunPass_DayKeyShortCircuit(t *testing.T) {
	today := daykey.Today(time.UTC)
	fake := &fakeProvider{eligible: true}
	svc, db := newCheckinFixture(t, fake)
	seedAccount(t, db, func(a *model.SiteAccount) {
		a.CheckIn.IsCheckedInToday = true
		a.CheckIn.LastCheckInDate = today
	})

	status, err := svc.RunAutoCheckinPass(context.Background())
	require.NoError(t, err)

	// 日期键命中 → 不发任何网络请求
	assert.Zero(t, fake.checkinCalls)
	assert.Equal(t, 1, status.TotalEligible)
	assert.Zero(t, status.Executed)
	assert.Equal(t, 1, status.SkippedCount)
	require.Len(t, status.Results, 1)
	assert.Equal(t, model.CheckinResultAlreadyChecked, status.Results[0].Status)
}

func TestCheckinService_RunPass_FailureDoesNotAdvanceDayKey(t *testing.T) {
	yesterday := daykey.FromTime(time.Now().AddDate(0, 0, -1), time.UTC)
	fake := &fakeProvider{
		eligible:      true,
		checkinResult: &provider.CheckinResult{Status: model.CheckinResultFailed, Message: "额度发放失败"},
	}
	svc, db := newCheckinFixture(t, fake)
	acct := seedAccount(t, db, func(a *model.SiteAccount) {
		a.CheckIn.LastCheckInDate = yesterday
	})

	status, err := svc.RunAutoCheckinPass(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, status.FailedCount)
	assert.True(t, status.NeedsRetry)
	require.Len(t, status.Results, 1)
	// 后端原话要保留，便于排障
	assert.Equal(t, "额度发放失败", status.Results[0].Message)

	// 失败绝不推进日期键，下一轮还会再试
	got := reloadAccount(t, db, acct.ID)
	assert.False(t, got.CheckIn.IsCheckedInToday)
	assert.Equal(t, yesterday, got.CheckIn.LastCheckInDate)
}

func TestCheckinService_RunPass_RemoteAlreadyCheckedAdvancesDayKey(t *testing.T) {
	fake := &fakeProvider{
		eligible:      true,
		checkinResult: &provider.CheckinResult{Status: model.CheckinResultAlreadyChecked, Message: "今日已签到"},
	}
	svc, db := newCheckinFixture(t, fake)
	acct := seedAccount(t, db, nil)

	status, err := svc.RunAutoCheckinPass(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, status.SkippedCount)
	assert.False(t, status.NeedsRetry)

	// 远端说签过了 → 推进日期键，今天之内不再打它
	got := reloadAccount(t, db, acct.ID)
	assert.True(t, got.CheckIn.IsCheckedInToday)
	assert.Equal(t, daykey.Today(time.UTC), got.CheckIn.LastCheckInDate)
}

func TestCheckinService_RunPass_NotSupportedCountsSkipped(t *testing.T) {
	fake := &fakeProvider{
		eligible:   true,
		checkinErr: provider.ErrCheckinNotSupported,
	}
	svc, db := newCheckinFixture(t, fake)
	acct := seedAccount(t, db, nil)

	status, err := svc.RunAutoCheckinPass(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, status.SkippedCount)
	assert.Zero(t, status.FailedCount)
	assert.False(t, status.NeedsRetry)
	require.Len(t, status.Results, 1)
	assert.Equal(t, model.CheckinResultSkipped, status.Results[0].Status)

	// 端点不存在不是一次失败的尝试，日期键不动
	got := reloadAccount(t, db, acct.ID)
	assert.False(t, got.CheckIn.IsCheckedInToday)
}

func TestCheckinService_RunPass_IneligibleAbsentFromResults(t *testing.T) {
	fake := &fakeProvider{
		eligible:      true,
		checkinResult: &provider.CheckinResult{Status: model.CheckinResultSuccess, Message: "ok"},
	}
	svc, db := newCheckinFixture(t, fake)
	seedAccount(t, db, func(a *model.SiteAccount) { a.Name = "可签账户" })
	ineligible := seedAccount(t, db, func(a *model.SiteAccount) {
		a.Name = "检测关闭账户"
		a.CheckIn.EnableDetection = false
	})

	status, err := svc.RunAutoCheckinPass(context.Background())
	require.NoError(t, err)

	// 不可签账户连结果列表都不进
	assert.Equal(t, 1, status.TotalEligible)
	require.Len(t, status.Results, 1)
	for _, r := range status.Results {
		assert.NotEqual(t, ineligible.ID, r.AccountID)
	}
}

// 混合场景：成功 + 失败 + 不可签，对齐一轮调度的全量口径
func TestCheckinService_RunPass_MixedAggregate(t *testing.T) {
	okFake := &fakeProvider{
		eligible:      true,
		checkinResult: &provider.CheckinResult{Status: model.CheckinResultSuccess, Message: "签到成功"},
	}
	failFake := &fakeProvider{
		name:       model.SiteTypeVeloera,
		eligible:   true,
		checkinErr: errors.New("connection refused"),
	}
	svc, db := newCheckinFixture(t, okFake)
	// 再顶掉 veloera 适配器制造失败路径
	reg := provider.NewRegistry(time.UTC)
	reg.Register(okFake)
	reg.Register(failFake)
	svc.registry = reg

	seedAccount(t, db, func(a *model.SiteAccount) { a.Name = "成功账户" })
	failed := seedAccount(t, db, func(a *model.SiteAccount) {
		a.Name = "失败账户"
		a.SiteType = model.SiteTypeVeloera
	})
	seedAccount(t, db, func(a *model.SiteAccount) {
		a.Name = "检测关闭账户"
		a.CheckIn.EnableDetection = false
	})

	status, err := svc.RunAutoCheckinPass(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, status.TotalEligible)
	assert.Equal(t, 2, status.Executed)
	assert.Equal(t, 1, status.SuccessCount)
	assert.Equal(t, 1, status.FailedCount)
	assert.True(t, status.NeedsRetry)
	assert.Equal(t, []string{failed.ID}, status.FailedAccountIDs())
}

func TestCheckinService_RetryFailedAccounts_OverwritesStatus(t *testing.T) {
	fake := &fakeProvider{
		eligible:   true,
		checkinErr: errors.New("上游 503"),
	}
	svc, db := newCheckinFixture(t, fake)
	acct := seedAccount(t, db, nil)

	first, err := svc.RunAutoCheckinPass(context.Background())
	require.NoError(t, err)
	require.True(t, first.NeedsRetry)

	// 站点恢复后重试
	fake.checkinErr = nil
	fake.checkinResult = &provider.CheckinResult{Status: model.CheckinResultSuccess, Message: "签到成功"}

	second, err := svc.RetryFailedAccounts(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, second.SuccessCount)
	assert.False(t, second.NeedsRetry)

	// 状态是整体覆盖，不残留上一轮的失败记录
	stored, err := svc.GetStatus(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stored.FailedCount)
	assert.Equal(t, daykey.Today(time.UTC), reloadAccount(t, db, acct.ID).CheckIn.LastCheckInDate)
}

func TestCheckinService_RunPass_DetectionOffNeverFetched(t *testing.T) {
	fake := &fakeProvider{
		eligible:      true,
		checkinResult: &provider.CheckinResult{Status: model.CheckinResultSuccess, Message: "签到成功"},
	}
	svc, db := newCheckinFixture(t, fake)
	on := seedAccount(t, db, nil)
	seedAccount(t, db, func(a *model.SiteAccount) {
		a.CheckIn.EnableDetection = false
	})

	status, err := svc.RunAutoCheckinPass(context.Background())
	require.NoError(t, err)

	// 检测关的账户连候选集都不进，更不会发起签到
	assert.Equal(t, 1, status.TotalEligible)
	assert.Equal(t, int32(1), fake.checkinCalls)
	require.Len(t, status.Results, 1)
	assert.Equal(t, on.ID, status.Results[0].AccountID)
}

func TestCheckinService_RetryFailedAccounts_RejectedWhileRunning(t *testing.T) {
	fake := &fakeProvider{}
	svc, db := newCheckinFixture(t, fake)
	acct := seedAccount(t, db, nil)

	statusRepo := repository.NewCheckinStatusRepository(db)
	require.NoError(t, statusRepo.Save(context.Background(), &model.AutoCheckinStatus{
		IsRunning: true,
		StartedAt: time.Now(),
	}))

	// 指定 ids 的重试同样要让路给进行中的一轮
	_, err := svc.RetryFailedAccounts(context.Background(), []string{acct.ID})
	assert.ErrorIs(t, err, ErrCheckinRunning)
	assert.Zero(t, fake.checkinCalls)
}

func TestCheckinService_RetryFailedAccounts_NothingToRetry(t *testing.T) {
	fake := &fakeProvider{
		eligible:      true,
		checkinResult: &provider.CheckinResult{Status: model.CheckinResultSuccess, Message: "ok"},
	}
	svc, db := newCheckinFixture(t, fake)
	seedAccount(t, db, nil)

	_, err := svc.RunAutoCheckinPass(context.Background())
	require.NoError(t, err)

	_, err = svc.RetryFailedAccounts(context.Background(), nil)
	require.Error(t, err)
}

func TestCheckinService_ResetExpiredCheckIns_OnlyCustomURL(t *testing.T) {
	yesterday := daykey.FromTime(time.Now().AddDate(0, 0, -1), time.UTC)
	fake := &fakeProvider{}
	svc, db := newCheckinFixture(t, fake)

	custom := seedAccount(t, db, func(a *model.SiteAccount) {
		a.Name = "自定义签到页账户"
		a.CheckIn.CustomCheckInURL = "https://panel.example.com/checkin"
		a.CheckIn.IsCheckedInToday = true
		a.CheckIn.LastCheckInDate = yesterday
	})
	api := seedAccount(t, db, func(a *model.SiteAccount) {
		a.Name = "API 直签账户"
		a.CheckIn.IsCheckedInToday = true
		a.CheckIn.LastCheckInDate = yesterday
	})
	fresh := seedAccount(t, db, func(a *model.SiteAccount) {
		a.Name = "今日已签的自定义账户"
		a.CheckIn.CustomCheckInURL = "https://panel.example.com/checkin"
		a.CheckIn.IsCheckedInToday = true
		a.CheckIn.LastCheckInDate = daykey.Today(time.UTC)
	})

	reset, err := svc.ResetExpiredCheckIns(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, reset)

	// 只有过期的自定义签到页账户被复位
	got := reloadAccount(t, db, custom.ID)
	assert.False(t, got.CheckIn.IsCheckedInToday)
	assert.Empty(t, got.CheckIn.LastCheckInDate)

	// API 直签账户靠日期键比对自然过期，不做复位
	got = reloadAccount(t, db, api.ID)
	assert.True(t, got.CheckIn.IsCheckedInToday)
	assert.Equal(t, yesterday, got.CheckIn.LastCheckInDate)

	// 今天刚签的不动
	got = reloadAccount(t, db, fresh.ID)
	assert.True(t, got.CheckIn.IsCheckedInToday)
}

func TestCheckinService_StatusLifecycle(t *testing.T) {
	fake := &fakeProvider{
		eligible:      true,
		checkinResult: &provider.CheckinResult{Status: model.CheckinResultSuccess, Message: "ok"},
	}
	svc, db := newCheckinFixture(t, fake)
	seedAccount(t, db, nil)

	// 从未执行过 → nil
	status, err := svc.GetStatus(context.Background())
	require.NoError(t, err)
	assert.Nil(t, status)

	_, err = svc.RunAutoCheckinPass(context.Background())
	require.NoError(t, err)

	status, err = svc.GetStatus(context.Background())
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, 1, status.SuccessCount)

	require.NoError(t, svc.ClearStatus(context.Background()))
	status, err = svc.GetStatus(context.Background())
	require.NoError(t, err)
	assert.Nil(t, status)
}

func TestCheckinService_RunPass_AppendsLogs(t *testing.T) {
	fake := &fakeProvider{
		eligible:      true,
		checkinResult: &provider.CheckinResult{Status: model.CheckinResultSuccess, Message: "签到成功"},
	}
	svc, db := newCheckinFixture(t, fake)
	acct := seedAccount(t, db, nil)

	_, err := svc.RunAutoCheckinPass(context.Background())
	require.NoError(t, err)

	logs, err := svc.ListAccountLogs(context.Background(), acct.ID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, model.CheckinResultSuccess, logs[0].Status)
	assert.Equal(t, daykey.Today(time.UTC), logs[0].DayKey)
}

func TestCheckinService_PruneOldLogs(t *testing.T) {
	fake := &fakeProvider{}
	svc, db := newCheckinFixture(t, fake)
	acct := seedAccount(t, db, nil)

	stale := &model.CheckinLog{
		AccountID: acct.ID,
		DayKey:    "2026-01-01",
		Status:    model.CheckinResultSuccess,
		Message:   "签到成功",
		CreatedAt: time.Now().Add(-120 * 24 * time.Hour),
	}
	fresh := &model.CheckinLog{
		AccountID: acct.ID,
		DayKey:    daykey.Today(time.UTC),
		Status:    model.CheckinResultSuccess,
		Message:   "签到成功",
	}
	require.NoError(t, db.Create(stale).Error)
	require.NoError(t, db.Create(fresh).Error)

	pruned, err := svc.PruneOldLogs(context.Background(), 90*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)

	logs, err := svc.ListAccountLogs(context.Background(), acct.ID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, fresh.DayKey, logs[0].DayKey)

	// 保留期为 0 表示不清理
	pruned, err = svc.PruneOldLogs(context.Background(), 0)
	require.NoError(t, err)
	assert.Zero(t, pruned)
}
