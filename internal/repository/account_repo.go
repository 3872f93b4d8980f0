package repository

import (
	"context"

	"gorm.io/gorm"

	"panel_keeper_v1_202608/internal/model"
)

// ==================== 接口定义 ====================

// AccountRepository 站点账户仓储接口
type AccountRepository interface {
	Create(ctx context.Context, acct *model.SiteAccount) error
	GetByID(ctx context.Context, id string) (*model.SiteAccount, error)
	Update(ctx context.Context, acct *model.SiteAccount) error
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error

	// 列表查询
	List(ctx context.Context, filter AccountFilter) ([]model.SiteAccount, int64, error)
	ListEnabled(ctx context.Context) ([]model.SiteAccount, error)
	ListDetectionEnabled(ctx context.Context) ([]model.SiteAccount, error)

	// 同步快照：单条 UPDATE 原子写回，避免读方看到半截字段
	UpdateSnapshot(ctx context.Context, id string, snap *model.AccountSnapshot) error

	// 签到状态：只动日期键相关字段
	UpdateCheckinState(ctx context.Context, id string, checkedIn bool, dayKey string) error
	ResetCheckinState(ctx context.Context, id string) error
}

// ==================== 过滤条件 ====================

// AccountFilter 账户过滤条件
type AccountFilter struct {
	SiteType string // 空表示不筛选
	Disabled *bool  // nil 表示不筛选
	Keyword  string // 按名称/站点 URL 模糊
	Page     int
	PageSize int
}

// ==================== 仓储实现 ====================

type accountRepo struct {
	db *gorm.DB
}

// NewAccountRepository 创建账户仓储
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepo{db: db}
}

func (r *accountRepo) Create(ctx context.Context, acct *model.SiteAccount) error {
	return r.db.WithContext(ctx).Create(acct).Error
}

func (r *accountRepo) GetByID(ctx context.Context, id string) (*model.SiteAccount, error) {
	var acct model.SiteAccount
	if err := r.db.WithContext(ctx).First(&acct, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &acct, nil
}

func (r *accountRepo) Update(ctx context.Context, acct *model.SiteAccount) error {
	return r.db.WithContext(ctx).Save(acct).Error
}

func (r *accountRepo) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.SiteAccount{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *accountRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&model.SiteAccount{}, "id = ?", id).Error
}

func (r *accountRepo) List(ctx context.Context, filter AccountFilter) ([]model.SiteAccount, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.SiteAccount{})

	if filter.SiteType != "" {
		query = query.Where("site_type = ?", filter.SiteType)
	}
	if filter.Disabled != nil {
		query = query.Where("disabled = ?", *filter.Disabled)
	}
	if filter.Keyword != "" {
		kw := "%" + filter.Keyword + "%"
		query = query.Where("name LIKE ? OR site_url LIKE ?", kw, kw)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var accounts []model.SiteAccount
	if err := query.Order("created_at ASC").Find(&accounts).Error; err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

func (r *accountRepo) ListEnabled(ctx context.Context) ([]model.SiteAccount, error) {
	var accounts []model.SiteAccount
	err := r.db.WithContext(ctx).
		Where("disabled = ?", false).
		Order("created_at ASC").
		Find(&accounts).Error
	return accounts, err
}

func (r *accountRepo) ListDetectionEnabled(ctx context.Context) ([]model.SiteAccount, error) {
	var accounts []model.SiteAccount
	err := r.db.WithContext(ctx).
		Where("disabled = ? AND checkin_enable_detection = ?", false, true).
		Order("created_at ASC").
		Find(&accounts).Error
	return accounts, err
}

func (r *accountRepo) UpdateSnapshot(ctx context.Context, id string, snap *model.AccountSnapshot) error {
	return r.db.WithContext(ctx).
		Model(&model.SiteAccount{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"quota":                        snap.Quota,
			"today_quota_consumption":      snap.TodayQuotaConsumption,
			"today_prompt_tokens":          snap.TodayPromptTokens,
			"today_completion_tokens":      snap.TodayCompletionTokens,
			"today_requests_count":         snap.TodayRequestsCount,
			"today_income":                 snap.TodayIncome,
			"checkin_is_checked_in_today":  snap.CheckIn.IsCheckedInToday,
			"checkin_last_check_in_date":   snap.CheckIn.LastCheckInDate,
			"last_sync_time":               gorm.Expr("CURRENT_TIMESTAMP"),
		}).Error
}

func (r *accountRepo) UpdateCheckinState(ctx context.Context, id string, checkedIn bool, dayKey string) error {
	return r.db.WithContext(ctx).
		Model(&model.SiteAccount{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"checkin_is_checked_in_today": checkedIn,
			"checkin_last_check_in_date":  dayKey,
		}).Error
}

func (r *accountRepo) ResetCheckinState(ctx context.Context, id string) error {
	return r.UpdateCheckinState(ctx, id, false, "")
}
