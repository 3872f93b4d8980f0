package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"panel_keeper_v1_202608/internal/model"
)

// ==================== 接口定义 ====================

// SettingRepository 全局偏好仓储（单行，ID 恒为 1）
type SettingRepository interface {
	Get(ctx context.Context) (*model.Setting, error) // 无记录时落默认值并返回
	Save(ctx context.Context, setting *model.Setting) error
	UpdateSchemaVersion(ctx context.Context, version int) error
}

// ==================== 仓储实现 ====================

type settingRepo struct {
	db *gorm.DB
}

// NewSettingRepository 创建偏好仓储
func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepo{db: db}
}

func (r *settingRepo) Get(ctx context.Context) (*model.Setting, error) {
	var setting model.Setting
	err := r.db.WithContext(ctx).First(&setting, "id = ?", 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// 首次启动：写入默认行
		setting = model.Setting{
			ID:                 1,
			SchemaVersion:      1,
			Timezone:           "Asia/Shanghai",
			AutoCheckinEnabled: true,
			WindowStart:        "08:00",
			WindowEnd:          "23:00",
			SyncEnabled:        true,
		}
		if err := r.db.WithContext(ctx).Create(&setting).Error; err != nil {
			return nil, err
		}
		return &setting, nil
	}
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *settingRepo) Save(ctx context.Context, setting *model.Setting) error {
	setting.ID = 1
	return r.db.WithContext(ctx).Save(setting).Error
}

func (r *settingRepo) UpdateSchemaVersion(ctx context.Context, version int) error {
	return r.db.WithContext(ctx).
		Model(&model.Setting{}).
		Where("id = ?", 1).
		Update("schema_version", version).Error
}
