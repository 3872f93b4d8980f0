package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"panel_keeper_v1_202608/internal/model"
	"panel_keeper_v1_202608/internal/provider"
	"panel_keeper_v1_202608/internal/repository"
)

func newAccountFixture(t *testing.T) (*AccountService, repository.AccountRepository) {
	t.Helper()
	db := newTestDB(t)
	repo := repository.NewAccountRepository(db)
	return NewAccountService(repo, provider.NewRegistry(time.UTC)), repo
}

func validAccount() *model.SiteAccount {
	return &model.SiteAccount{
		Name:       "测试账户",
		SiteURL:    "https://panel.example.com",
		SiteType:   model.SiteTypeNewAPI,
		AuthType:   model.AuthTypeAccessToken,
		Credential: "sk-test",
	}
}

func TestAccountService_CreateAssignsID(t *testing.T) {
	svc, repo := newAccountFixture(t)

	acct := validAccount()
	require.NoError(t, svc.Create(context.Background(), acct))
	assert.NotEmpty(t, acct.ID)

	got, err := repo.GetByID(context.Background(), acct.ID)
	require.NoError(t, err)
	assert.Equal(t, "测试账户", got.Name)
}

func TestAccountService_CreateRejectsUnknownSiteType(t *testing.T) {
	svc, _ := newAccountFixture(t)

	acct := validAccount()
	acct.SiteType = "mystery-panel"

	err := svc.Create(context.Background(), acct)
	require.Error(t, err)

	var unknownErr *provider.UnknownSiteTypeError
	assert.ErrorAs(t, err, &unknownErr)
}

func TestAccountService_CreateAllowsNoneAuth(t *testing.T) {
	svc, repo := newAccountFixture(t)

	// 无认证面板：没有凭证也能建档，签到由 CanCheckIn 自行拦下
	acct := validAccount()
	acct.AuthType = model.AuthTypeNone
	acct.Credential = ""
	require.NoError(t, svc.Create(context.Background(), acct))

	got, err := repo.GetByID(context.Background(), acct.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AuthTypeNone, got.AuthType)
}

func TestAccountService_CreateValidatesFields(t *testing.T) {
	svc, _ := newAccountFixture(t)

	tests := []struct {
		name   string
		mutate func(*model.SiteAccount)
	}{
		{"名称为空", func(a *model.SiteAccount) { a.Name = "  " }},
		{"站点 URL 为空", func(a *model.SiteAccount) { a.SiteURL = "" }},
		{"未知认证方式", func(a *model.SiteAccount) { a.AuthType = "magic" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acct := validAccount()
			tt.mutate(acct)
			assert.Error(t, svc.Create(context.Background(), acct))
		})
	}
}

func TestAccountService_UpdateRejectsMissingAccount(t *testing.T) {
	svc, _ := newAccountFixture(t)

	acct := validAccount()
	acct.ID = "no-such-id"
	assert.Error(t, svc.Update(context.Background(), acct))
}

func TestAccountService_SetDisabled(t *testing.T) {
	svc, repo := newAccountFixture(t)

	acct := validAccount()
	require.NoError(t, svc.Create(context.Background(), acct))
	require.NoError(t, svc.SetDisabled(context.Background(), acct.ID, true))

	got, err := repo.GetByID(context.Background(), acct.ID)
	require.NoError(t, err)
	assert.True(t, got.Disabled)
}
