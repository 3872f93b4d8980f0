package controller_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"panel_keeper_v1_202608/internal/controller"
	"panel_keeper_v1_202608/internal/middleware"
	"panel_keeper_v1_202608/internal/model"
	"panel_keeper_v1_202608/internal/provider"
	"panel_keeper_v1_202608/internal/repository"
	"panel_keeper_v1_202608/internal/router"
	"panel_keeper_v1_202608/internal/service"
	"panel_keeper_v1_202608/internal/task"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ==================== 假适配器 ====================

// stubProvider 固定返回值的适配器替身
type stubProvider struct {
	name          string
	quota         int64
	usage         provider.TodayUsage
	income        provider.TodayIncome
	probe         provider.CheckInProbe
	eligible      bool
	checkinResult *provider.CheckinResult
	checkinErr    error
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) FetchQuota(ctx context.Context, acct *model.SiteAccount) (int64, error) {
	return s.quota, nil
}

func (s *stubProvider) FetchTodayUsage(ctx context.Context, acct *model.SiteAccount) (*provider.TodayUsage, error) {
	u := s.usage
	return &u, nil
}

func (s *stubProvider) FetchTodayIncome(ctx context.Context, acct *model.SiteAccount) (*provider.TodayIncome, error) {
	in := s.income
	return &in, nil
}

func (s *stubProvider) FetchCheckInStatus(ctx context.Context, acct *model.SiteAccount) (provider.CheckInProbe, error) {
	return s.probe, nil
}

func (s *stubProvider) CanCheckIn(acct *model.SiteAccount) bool {
	return s.eligible && acct.CheckIn.EnableDetection
}

func (s *stubProvider) CheckIn(ctx context.Context, acct *model.SiteAccount) (*provider.CheckinResult, error) {
	if s.checkinErr != nil {
		return nil, s.checkinErr
	}
	return s.checkinResult, nil
}

var _ provider.Provider = (*stubProvider)(nil)

// ==================== 测试装配 ====================

type ctlFixture struct {
	engine *gin.Engine
	db     *gorm.DB
	token  string
}

func setupCtlFixture(t *testing.T, stub *stubProvider) *ctlFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.SiteAccount{},
		&model.Setting{},
		&model.CheckinStatusRecord{},
		&model.CheckinLog{},
	))

	registry := provider.NewRegistry(time.UTC)
	if stub != nil {
		if stub.name == "" {
			stub.name = model.SiteTypeNewAPI
		}
		registry.Register(stub)
	}

	accountRepo := repository.NewAccountRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	syncSvc := service.NewSyncService(accountRepo, registry, time.UTC)
	syncSvc.SetConcurrency(3, 0)
	checkinSvc := service.NewCheckinService(
		accountRepo,
		repository.NewCheckinStatusRepository(db),
		repository.NewCheckinLogRepository(db),
		registry,
		time.UTC,
	)
	checkinSvc.SetSleepTime(0)

	tm := task.NewTaskManager(&task.TaskManagerDeps{
		SettingRepo:    settingRepo,
		SyncService:    syncSvc,
		CheckinService: checkinSvc,
	}, nil)

	engine := gin.New()
	router.InitRoutes(engine,
		controller.NewAuthController("admin", "admin-pass"),
		controller.NewAccountController(service.NewAccountService(accountRepo, registry)),
		controller.NewSyncController(syncSvc, tm),
		controller.NewCheckinController(checkinSvc),
		controller.NewSettingController(settingRepo),
	)

	token, err := middleware.GenerateAccessToken("admin")
	require.NoError(t, err)

	// 全局限流器跨测试共享，逐个用例清零
	middleware.GetLimiter().Reset(middleware.GlobalSyncKey(middleware.SyncTypeAccount))
	middleware.GetLimiter().Reset(middleware.GlobalSyncKey(middleware.SyncTypeCheckin))

	return &ctlFixture{engine: engine, db: db, token: token}
}

// performRequest 发起测试请求（自动带上认证头）
func (f *ctlFixture) performRequest(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.token)

	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

// performAnonRequest 不带认证头的请求
func (f *ctlFixture) performAnonRequest(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func (f *ctlFixture) seedAccount(t *testing.T, mutate func(*model.SiteAccount)) *model.SiteAccount {
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
	require.NoError(t, f.db.Create(acct).Error)
	return acct
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
