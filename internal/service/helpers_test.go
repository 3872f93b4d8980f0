package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"panel_keeper_v1_202608/internal/model"
	"panel_keeper_v1_202608/internal/provider"
	"panel_keeper_v1_202608/internal/repository"
)

// ==================== 测试夹具 ====================

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.SiteAccount{},
		&model.CheckinStatusRecord{},
		&model.CheckinLog{},
	))
	return db
}

func seedAccount(t *testing.T, db *gorm.DB, mutate func(*model.SiteAccount)) *model.SiteAccount {
	t.Helper()
	acct := &model.SiteAccount{
		ID:         uuid.New().String(),
		Name:       "测试账户",
		SiteURL:    "https://panel.example.com",
		SiteType:   model.SiteTypeNewAPI,
		AuthType:   model.AuthTypeAccessToken,
		UserID:     "42",
		Credential: "sk-test",
		CheckIn:    model.CheckInConfig{EnableDetection: true},
	}
	if mutate != nil {
		mutate(acct)
	}
	require.NoError(t, db.Create(acct).Error)
	return acct
}

func reloadAccount(t *testing.T, db *gorm.DB, id string) *model.SiteAccount {
	t.Helper()
	var acct model.SiteAccount
	require.NoError(t, db.First(&acct, "id = ?", id).Error)
	return &acct
}

// ==================== 假适配器 ====================

// fakeProvider 可编程的适配器替身，通过 Registry.Register 顶掉真实适配器
type fakeProvider struct {
	name string

	quota  int64
	usage  provider.TodayUsage
	income provider.TodayIncome

	quotaErr  error
	usageErr  error
	incomeErr error

	probe      provider.CheckInProbe
	probeErr   error
	probeCalls int32

	eligible bool

	checkinResult *provider.CheckinResult
	checkinErr    error
	checkinCalls  int32
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) FetchQuota(ctx context.Context, acct *model.SiteAccount) (int64, error) {
	return f.quota, f.quotaErr
}

func (f *fakeProvider) FetchTodayUsage(ctx context.Context, acct *model.SiteAccount) (*provider.TodayUsage, error) {
	if f.usageErr != nil {
		return nil, f.usageErr
	}
	u := f.usage
	return &u, nil
}

func (f *fakeProvider) FetchTodayIncome(ctx context.Context, acct *model.SiteAccount) (*provider.TodayIncome, error) {
	if f.incomeErr != nil {
		return nil, f.incomeErr
	}
	in := f.income
	return &in, nil
}

func (f *fakeProvider) FetchCheckInStatus(ctx context.Context, acct *model.SiteAccount) (provider.CheckInProbe, error) {
	atomic.AddInt32(&f.probeCalls, 1)
	return f.probe, f.probeErr
}

func (f *fakeProvider) CanCheckIn(acct *model.SiteAccount) bool {
	return f.eligible && acct.CheckIn.EnableDetection
}

func (f *fakeProvider) CheckIn(ctx context.Context, acct *model.SiteAccount) (*provider.CheckinResult, error) {
	atomic.AddInt32(&f.checkinCalls, 1)
	if f.checkinErr != nil {
		return nil, f.checkinErr
	}
	return f.checkinResult, nil
}

var _ provider.Provider = (*fakeProvider)(nil)

// newFakeRegistry 注册一个顶替 new-api 的假适配器
func newFakeRegistry(fake *fakeProvider) *provider.Registry {
	fake.name = model.SiteTypeNewAPI
	r := provider.NewRegistry(time.UTC)
	r.Register(fake)
	return r
}

// ==================== 服务装配 ====================

func newSyncFixture(t *testing.T, fake *fakeProvider) (*SyncService, repository.AccountRepository, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	accountRepo := repository.NewAccountRepository(db)
	svc := NewSyncService(accountRepo, newFakeRegistry(fake), time.UTC)
	svc.SetConcurrency(3, 0)
	return svc, accountRepo, db
}

func newCheckinFixture(t *testing.T, fake *fakeProvider) (*CheckinService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc := NewCheckinService(
		repository.NewAccountRepository(db),
		repository.NewCheckinStatusRepository(db),
		repository.NewCheckinLogRepository(db),
		newFakeRegistry(fake),
		time.UTC,
	)
	svc.SetSleepTime(0)
	return svc, db
}
