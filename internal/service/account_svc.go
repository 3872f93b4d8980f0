package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"panel_keeper_v1_202608/internal/model"
	"panel_keeper_v1_202608/internal/provider"
	"panel_keeper_v1_202608/internal/repository"
)

// ==================== AccountService 账户管理 ====================

// AccountService 站点账户的增删改查
// 站点类型在写入时就校验，不让未知类型躺进库里等到同步时才爆
type AccountService struct {
	accountRepo repository.AccountRepository
	registry    *provider.Registry
}

// NewAccountService 创建账户服务
func NewAccountService(accountRepo repository.AccountRepository, registry *provider.Registry) *AccountService {
	return &AccountService{accountRepo: accountRepo, registry: registry}
}

// Create 新建账户（ID 由服务端生成）
func (s *AccountService) Create(ctx context.Context, acct *model.SiteAccount) error {
	if err := s.validate(acct); err != nil {
		return err
	}
	if acct.ID == "" {
		acct.ID = uuid.New().String()
	}
	return s.accountRepo.Create(ctx, acct)
}

// Update 更新账户
func (s *AccountService) Update(ctx context.Context, acct *model.SiteAccount) error {
	if err := s.validate(acct); err != nil {
		return err
	}
	if _, err := s.accountRepo.GetByID(ctx, acct.ID); err != nil {
		return fmt.Errorf("账户 %s 不存在: %w", acct.ID, err)
	}
	return s.accountRepo.Update(ctx, acct)
}

// Get 按 ID 查账户
func (s *AccountService) Get(ctx context.Context, id string) (*model.SiteAccount, error) {
	return s.accountRepo.GetByID(ctx, id)
}

// List 按条件分页查账户
func (s *AccountService) List(ctx context.Context, filter repository.AccountFilter) ([]model.SiteAccount, int64, error) {
	return s.accountRepo.List(ctx, filter)
}

// Delete 删除账户
func (s *AccountService) Delete(ctx context.Context, id string) error {
	return s.accountRepo.Delete(ctx, id)
}

// SetDisabled 启用/停用账户
func (s *AccountService) SetDisabled(ctx context.Context, id string, disabled bool) error {
	return s.accountRepo.UpdateFields(ctx, id, map[string]interface{}{"disabled": disabled})
}

// validate 写入前校验
func (s *AccountService) validate(acct *model.SiteAccount) error {
	if strings.TrimSpace(acct.Name) == "" {
		return fmt.Errorf("账户名称不能为空")
	}
	if strings.TrimSpace(acct.SiteURL) == "" {
		return fmt.Errorf("站点 URL 不能为空")
	}
	if !s.registry.Known(acct.SiteType) {
		return &provider.UnknownSiteTypeError{SiteType: acct.SiteType}
	}
	switch acct.AuthType {
	case model.AuthTypeAccessToken, model.AuthTypeCookie, model.AuthTypeNone:
	default:
		return fmt.Errorf("未知认证方式: %s", acct.AuthType)
	}
	return nil
}
