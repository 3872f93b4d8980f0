package task

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"panel_keeper_v1_202608/internal/service"
)

// ==================== AccountSyncTask 账户同步任务 ====================

// AccountSyncTask 账户数据定时同步
// 首次执行延迟一小段时间，避开启动时的连接抖动
type AccountSyncTask struct {
	syncService *service.SyncService
	cron        *cron.Cron

	spec       string
	firstDelay time.Duration
}

// NewAccountSyncTask 创建账户同步任务
func NewAccountSyncTask(syncService *service.SyncService) *AccountSyncTask {
	return &AccountSyncTask{
		syncService: syncService,
		cron:        cron.New(cron.WithSeconds()),
		spec:        "0 0 */6 * * *", // 每 6 小时
		firstDelay:  30 * time.Second,
	}
}

// SetSchedule 设置执行计划与首次延迟
func (t *AccountSyncTask) SetSchedule(spec string, firstDelay time.Duration) {
	t.spec = spec
	t.firstDelay = firstDelay
}

// Start 启动定时任务
func (t *AccountSyncTask) Start() {
	// 延迟首次执行
	go func() {
		time.Sleep(t.firstDelay)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		log.Println("[AccountSyncTask] 执行首次全量同步...")
		t.syncAll(ctx)
	}()

	_, err := t.cron.AddFunc(t.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		t.syncAll(ctx)
	})
	if err != nil {
		log.Printf("[AccountSyncTask] 定时任务启动失败: %v", err)
		return
	}

	t.cron.Start()
	log.Printf("[AccountSyncTask] 已启动 (%s)", t.spec)
}

// Stop 停止任务
func (t *AccountSyncTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	log.Println("[AccountSyncTask] 已停止")
}

func (t *AccountSyncTask) syncAll(ctx context.Context) {
	summary, err := t.syncService.SyncAllAccounts(ctx, service.SyncOptions{})
	if err != nil {
		log.Printf("[AccountSyncTask] 全量同步失败: %v", err)
		return
	}
	log.Printf("[AccountSyncTask] 同步完成: 成功 %d, 失败 %d", summary.Success, summary.Failed)
}

// ==================== 手动触发 ====================

// SyncAccountNow 立即同步单个账户
func (t *AccountSyncTask) SyncAccountNow(ctx context.Context, accountID string, force bool) error {
	_, err := t.syncService.SyncAccount(ctx, accountID, service.SyncOptions{Force: force})
	return err
}

// SyncAllNow 立即全量同步
func (t *AccountSyncTask) SyncAllNow() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		t.syncAll(ctx)
	}()
}
