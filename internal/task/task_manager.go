package task

import (
	"context"
	"log"
	"time"

	"panel_keeper_v1_202608/internal/repository"
	"panel_keeper_v1_202608/internal/service"
)

// ==================== TaskManager 后台任务管理器 ====================

// TaskManager 统一管理后台任务
// 管理范围：账户同步、自动签到
type TaskManager struct {
	syncTask    *AccountSyncTask
	checkinTask *AutoCheckinTask
}

// TaskManagerDeps 任务管理器依赖
type TaskManagerDeps struct {
	SettingRepo repository.SettingRepository

	SyncService    *service.SyncService
	CheckinService *service.CheckinService
}

// TaskManagerConfig 任务管理器配置
type TaskManagerConfig struct {
	// 账户同步
	SyncEnabled    bool
	SyncSpec       string
	SyncFirstDelay time.Duration

	// 自动签到
	CheckinEnabled bool
	CheckinSpec    string
}

// DefaultConfig 默认配置
func DefaultConfig() *TaskManagerConfig {
	return &TaskManagerConfig{
		SyncEnabled:    true,
		SyncSpec:       "0 0 */6 * * *",
		SyncFirstDelay: 30 * time.Second,

		CheckinEnabled: true,
		CheckinSpec:    "0 5 * * * *",
	}
}

// NewTaskManager 创建任务管理器
func NewTaskManager(deps *TaskManagerDeps, cfg *TaskManagerConfig) *TaskManager {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	tm := &TaskManager{}

	// 账户同步任务
	if cfg.SyncEnabled && deps.SyncService != nil {
		tm.syncTask = NewAccountSyncTask(deps.SyncService)
		tm.syncTask.SetSchedule(cfg.SyncSpec, cfg.SyncFirstDelay)
	}

	// 自动签到任务
	if cfg.CheckinEnabled && deps.CheckinService != nil {
		tm.checkinTask = NewAutoCheckinTask(deps.CheckinService, deps.SettingRepo)
		tm.checkinTask.SetSchedule(cfg.CheckinSpec)
	}

	return tm
}

// ==================== 生命周期管理 ====================

// Start 启动所有任务
func (tm *TaskManager) Start() {
	log.Println("[TaskManager] 正在启动后台任务...")

	if tm.syncTask != nil {
		tm.syncTask.Start()
	}
	if tm.checkinTask != nil {
		tm.checkinTask.Start()
	}

	log.Println("[TaskManager] 后台任务已全部启动")
}

// Stop 停止所有任务
func (tm *TaskManager) Stop() {
	log.Println("[TaskManager] 正在停止后台任务...")

	if tm.syncTask != nil {
		tm.syncTask.Stop()
	}
	if tm.checkinTask != nil {
		tm.checkinTask.Stop()
	}

	log.Println("[TaskManager] 后台任务已全部停止")
}

// ==================== 手动触发接口 ====================

// TriggerAccountSync 触发单账户同步
func (tm *TaskManager) TriggerAccountSync(ctx context.Context, accountID string, force bool) error {
	if tm.syncTask == nil {
		return ErrTaskDisabled
	}
	return tm.syncTask.SyncAccountNow(ctx, accountID, force)
}

// TriggerAllAccountsSync 触发全量同步
func (tm *TaskManager) TriggerAllAccountsSync() error {
	if tm.syncTask == nil {
		return ErrTaskDisabled
	}
	tm.syncTask.SyncAllNow()
	return nil
}

// TriggerCheckinRun 触发一轮自动签到（忽略时间窗）
func (tm *TaskManager) TriggerCheckinRun(ctx context.Context) error {
	if tm.checkinTask == nil {
		return ErrTaskDisabled
	}
	return tm.checkinTask.RunNow(ctx)
}

// ==================== 状态查询 ====================

// Status 获取任务启用状态
func (tm *TaskManager) Status() map[string]bool {
	return map[string]bool{
		"sync":    tm.syncTask != nil,
		"checkin": tm.checkinTask != nil,
	}
}

// ==================== 错误定义 ====================

type TaskError string

func (e TaskError) Error() string { return string(e) }

const (
	ErrTaskDisabled TaskError = "task is disabled"
)
