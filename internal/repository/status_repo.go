package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"panel_keeper_v1_202608/internal/model"
)

// ==================== 接口定义 ====================

// CheckinStatusRepository 自动签到状态仓储（单行覆盖写）
type CheckinStatusRepository interface {
	Get(ctx context.Context) (*model.AutoCheckinStatus, error) // 无记录时返回 (nil, nil)
	Save(ctx context.Context, status *model.AutoCheckinStatus) error
	Clear(ctx context.Context) error
}

// CheckinLogRepository 签到流水仓储
type CheckinLogRepository interface {
	Append(ctx context.Context, logEntry *model.CheckinLog) error
	ListByAccount(ctx context.Context, accountID string, limit int) ([]model.CheckinLog, error)

	// PruneBefore 删除指定时刻之前的流水，返回删除条数
	PruneBefore(ctx context.Context, before time.Time) (int64, error)
}

// ==================== 状态仓储实现 ====================

type checkinStatusRepo struct {
	db *gorm.DB
}

// NewCheckinStatusRepository 创建状态仓储
func NewCheckinStatusRepository(db *gorm.DB) CheckinStatusRepository {
	return &checkinStatusRepo{db: db}
}

func (r *checkinStatusRepo) Get(ctx context.Context) (*model.AutoCheckinStatus, error) {
	var rec model.CheckinStatusRecord
	err := r.db.WithContext(ctx).First(&rec, "id = ?", 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if rec.Payload == "" {
		return nil, nil
	}

	var status model.AutoCheckinStatus
	if err := json.Unmarshal([]byte(rec.Payload), &status); err != nil {
		return nil, fmt.Errorf("签到状态反序列化失败: %w", err)
	}
	return &status, nil
}

func (r *checkinStatusRepo) Save(ctx context.Context, status *model.AutoCheckinStatus) error {
	payload, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("签到状态序列化失败: %w", err)
	}

	rec := model.CheckinStatusRecord{ID: 1, Payload: string(payload)}
	return r.db.WithContext(ctx).Save(&rec).Error
}

func (r *checkinStatusRepo) Clear(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Model(&model.CheckinStatusRecord{}).
		Where("id = ?", 1).
		Update("payload", "").Error
}

// ==================== 流水仓储实现 ====================

type checkinLogRepo struct {
	db *gorm.DB
}

// NewCheckinLogRepository 创建签到流水仓储
func NewCheckinLogRepository(db *gorm.DB) CheckinLogRepository {
	return &checkinLogRepo{db: db}
}

func (r *checkinLogRepo) Append(ctx context.Context, logEntry *model.CheckinLog) error {
	return r.db.WithContext(ctx).Create(logEntry).Error
}

func (r *checkinLogRepo) ListByAccount(ctx context.Context, accountID string, limit int) ([]model.CheckinLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var logs []model.CheckinLog
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

func (r *checkinLogRepo) PruneBefore(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", before).
		Delete(&model.CheckinLog{})
	return result.RowsAffected, result.Error
}
