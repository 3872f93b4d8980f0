package task

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"panel_keeper_v1_202608/internal/repository"
	"panel_keeper_v1_202608/internal/service"
	"panel_keeper_v1_202608/pkg/daykey"
)

// ==================== AutoCheckinTask 自动签到任务 ====================

// logRetention 签到流水保留期，超期条目随每次触发顺带清理
const logRetention = 90 * 24 * time.Hour

// AutoCheckinTask 自动签到定时任务
// 每小时检查一次：落在偏好设置的时间窗内才真正执行签到；
// 每天零点后第一次触发先做过期状态复位，把昨天的"已签"标清掉
type AutoCheckinTask struct {
	checkinService *service.CheckinService
	settingRepo    repository.SettingRepository
	cron           *cron.Cron

	spec string
}

// NewAutoCheckinTask 创建自动签到任务
func NewAutoCheckinTask(checkinService *service.CheckinService, settingRepo repository.SettingRepository) *AutoCheckinTask {
	return &AutoCheckinTask{
		checkinService: checkinService,
		settingRepo:    settingRepo,
		cron:           cron.New(cron.WithSeconds()),
		spec:           "0 5 * * * *", // 每小时第 5 分钟
	}
}

// SetSchedule 设置执行计划
func (t *AutoCheckinTask) SetSchedule(spec string) {
	t.spec = spec
}

// Start 启动定时任务
func (t *AutoCheckinTask) Start() {
	_, err := t.cron.AddFunc(t.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
		defer cancel()
		t.tick(ctx)
	})
	if err != nil {
		log.Printf("[AutoCheckinTask] 定时任务启动失败: %v", err)
		return
	}

	t.cron.Start()
	log.Printf("[AutoCheckinTask] 已启动 (%s)", t.spec)
}

// Stop 停止任务
func (t *AutoCheckinTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	log.Println("[AutoCheckinTask] 已停止")
}

// tick 每次触发的完整流程：复位 → 窗口判断 → 执行
func (t *AutoCheckinTask) tick(ctx context.Context) {
	setting, err := t.settingRepo.Get(ctx)
	if err != nil {
		log.Printf("[AutoCheckinTask] 读取偏好设置失败: %v", err)
		return
	}

	// 复位不受开关与时间窗限制：哪怕自动签到关着，过期标记也要清
	if _, err := t.checkinService.ResetExpiredCheckIns(ctx); err != nil {
		log.Printf("[AutoCheckinTask] 过期状态复位失败: %v", err)
	}

	// 流水保留期清理，同样不受开关限制
	if _, err := t.checkinService.PruneOldLogs(ctx, logRetention); err != nil {
		log.Printf("[AutoCheckinTask] 签到流水清理失败: %v", err)
	}

	if !setting.AutoCheckinEnabled {
		return
	}

	loc := daykey.LoadLocation(setting.Timezone)
	if !inWindow(time.Now().In(loc), setting.WindowStart, setting.WindowEnd) {
		return
	}

	status, err := t.checkinService.RunAutoCheckinPass(ctx)
	if err != nil {
		if errors.Is(err, service.ErrCheckinRunning) {
			log.Println("[AutoCheckinTask] 上一轮未结束，本次跳过")
			return
		}
		log.Printf("[AutoCheckinTask] 签到调度失败: %v", err)
		return
	}

	if status.Executed > 0 {
		log.Printf("[AutoCheckinTask] 本轮执行 %d 个账户: 成功 %d, 失败 %d, 跳过 %d",
			status.Executed, status.SuccessCount, status.FailedCount, status.SkippedCount)
	}
}

// inWindow 当前时刻是否落在 HH:MM 时间窗内（含两端）
// 窗口跨零点时（如 22:00-06:00）按两段处理
func inWindow(now time.Time, start, end string) bool {
	cur := fmt.Sprintf("%02d:%02d", now.Hour(), now.Minute())
	if start <= end {
		return cur >= start && cur <= end
	}
	return cur >= start || cur <= end
}

// ==================== 手动触发 ====================

// RunNow 立即执行一轮签到（忽略时间窗）
func (t *AutoCheckinTask) RunNow(ctx context.Context) error {
	_, err := t.checkinService.RunAutoCheckinPass(ctx)
	return err
}
