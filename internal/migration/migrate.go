package migration

import (
	"context"
	"fmt"
	"log"

	"gorm.io/gorm"

	"panel_keeper_v1_202608/internal/model"
	"panel_keeper_v1_202608/internal/repository"
)

// ==================== 版本化迁移 ====================

// 迁移按版本号顺序执行，settings 行的 schema_version 记录当前进度；
// 每步执行完立即推进版本号，失败则停在失败的那一步

type migrationFunc func(ctx context.Context, db *gorm.DB) error

type step struct {
	version int
	name    string
	run     migrationFunc
}

var steps = []step{
	{2, "站点类型别名归一化", normalizeSiteTypeAliases},
	{3, "拆分旧 checkin_url 列", splitLegacyCheckinURL},
	{4, "日期键截断与汇率兜底", normalizeDayKeyAndRate},
}

// Apply 把持久化结构升级到当前版本
// 先 AutoMigrate 建出基线表，再按版本补数据层面的清洗
func Apply(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&model.SiteAccount{},
		&model.Setting{},
		&model.CheckinStatusRecord{},
		&model.CheckinLog{},
	); err != nil {
		return fmt.Errorf("基线建表失败: %w", err)
	}

	settingRepo := repository.NewSettingRepository(db)
	setting, err := settingRepo.Get(ctx)
	if err != nil {
		return fmt.Errorf("读取结构版本失败: %w", err)
	}

	current := setting.SchemaVersion
	if current > model.CurrentSchemaVersion {
		// 库比程序新：多半是回滚了二进制，继续跑会写坏数据
		return fmt.Errorf("库结构版本 %d 高于程序支持的 %d，拒绝启动", current, model.CurrentSchemaVersion)
	}
	if current == model.CurrentSchemaVersion {
		return nil
	}

	for _, s := range steps {
		if s.version <= current {
			continue
		}
		log.Printf("[Migration] 执行 v%d: %s", s.version, s.name)
		if err := s.run(ctx, db); err != nil {
			return fmt.Errorf("迁移 v%d（%s）失败: %w", s.version, s.name, err)
		}
		if err := settingRepo.UpdateSchemaVersion(ctx, s.version); err != nil {
			return fmt.Errorf("推进结构版本到 v%d 失败: %w", s.version, err)
		}
	}

	log.Printf("[Migration] 结构已升级到 v%d", model.CurrentSchemaVersion)
	return nil
}

// ==================== 各版本实现 ====================

// 历史版本里站点类型写法不统一，归一到带连字符的规范形
var siteTypeAliases = map[string]string{
	"one_api":    model.SiteTypeOneAPI,
	"oneapi":     model.SiteTypeOneAPI,
	"new_api":    model.SiteTypeNewAPI,
	"newapi":     model.SiteTypeNewAPI,
	"one_hub":    model.SiteTypeOneHub,
	"onehub":     model.SiteTypeOneHub,
	"done_hub":   model.SiteTypeDoneHub,
	"donehub":    model.SiteTypeDoneHub,
	"any_router": model.SiteTypeAnyRouter,
	"anyrouter":  model.SiteTypeAnyRouter,
}

func normalizeSiteTypeAliases(ctx context.Context, db *gorm.DB) error {
	for alias, canonical := range siteTypeAliases {
		if err := db.WithContext(ctx).
			Model(&model.SiteAccount{}).
			Where("site_type = ?", alias).
			Update("site_type", canonical).Error; err != nil {
			return err
		}
	}
	return nil
}

// 老版本只有一个 checkin_url 列，既当自定义签到页又当兑换页用；
// 拆成 custom_check_in_url 后把旧值搬过去，列本身删掉
func splitLegacyCheckinURL(ctx context.Context, db *gorm.DB) error {
	migrator := db.WithContext(ctx).Migrator()
	if !migrator.HasColumn(&model.SiteAccount{}, "checkin_url") {
		return nil
	}

	if err := db.WithContext(ctx).
		Model(&model.SiteAccount{}).
		Where("checkin_url <> '' AND checkin_custom_check_in_url = ''").
		Update("checkin_custom_check_in_url", gorm.Expr("checkin_url")).Error; err != nil {
		return err
	}
	return migrator.DropColumn(&model.SiteAccount{}, "checkin_url")
}

// 老数据把完整时间戳存进了日期键列，截断到 YYYY-MM-DD；
// 顺带把异常的零汇率兜回默认值
func normalizeDayKeyAndRate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).
		Model(&model.SiteAccount{}).
		Where("length(checkin_last_check_in_date) > 10").
		Update("checkin_last_check_in_date", gorm.Expr("substr(checkin_last_check_in_date, 1, 10)")).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).
		Model(&model.SiteAccount{}).
		Where("exchange_rate <= 0").
		Update("exchange_rate", 7).Error
}
