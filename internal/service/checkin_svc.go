package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"panel_keeper_v1_202608/internal/model"
	"panel_keeper_v1_202608/internal/provider"
	"panel_keeper_v1_202608/internal/repository"
	"panel_keeper_v1_202608/pkg/daykey"
)

// ==================== CheckinService 自动签到调度 ====================

// ErrCheckinRunning 上一轮调度尚未结束
var ErrCheckinRunning = errors.New("自动签到正在执行中")

// CheckinService 自动签到调度器
// 一轮调度：筛选可签账户 → 日期键去重 → 逐个执行 → 汇总覆盖写状态
// 账户之间顺序执行并留间隔，避免对同一面板家族连发
type CheckinService struct {
	accountRepo repository.AccountRepository
	statusRepo  repository.CheckinStatusRepository
	logRepo     repository.CheckinLogRepository
	registry    *provider.Registry
	loc         *time.Location
	sleepTime   time.Duration
}

// NewCheckinService 创建签到服务
func NewCheckinService(
	accountRepo repository.AccountRepository,
	statusRepo repository.CheckinStatusRepository,
	logRepo repository.CheckinLogRepository,
	registry *provider.Registry,
	loc *time.Location,
) *CheckinService {
	return &CheckinService{
		accountRepo: accountRepo,
		statusRepo:  statusRepo,
		logRepo:     logRepo,
		registry:    registry,
		loc:         loc,
		sleepTime:   500 * time.Millisecond,
	}
}

// SetSleepTime 设置账户间执行间隔
func (s *CheckinService) SetSleepTime(d time.Duration) {
	s.sleepTime = d
}

// RunAutoCheckinPass 执行一轮自动签到
// 不可签账户（检测关 / 凭证缺失 / 站点不适用）不进入结果列表；
// 检测关的账户在 SQL 层就被筛掉，凭证与站点适用性交给 CanCheckIn
func (s *CheckinService) RunAutoCheckinPass(ctx context.Context) (*model.AutoCheckinStatus, error) {
	prev, err := s.statusRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取签到状态失败: %w", err)
	}
	if prev != nil && prev.IsRunning {
		return nil, ErrCheckinRunning
	}

	accounts, err := s.accountRepo.ListDetectionEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("获取账户列表失败: %w", err)
	}

	return s.runPass(ctx, accounts)
}

// RetryFailedAccounts 重试指定账户；ids 为空时取上一轮失败名单
// 重试轮同样整体覆盖状态，前一轮的成功记录不保留
func (s *CheckinService) RetryFailedAccounts(ctx context.Context, ids []string) (*model.AutoCheckinStatus, error) {
	// 显式指定 ids 也不允许与进行中的一轮并发，否则状态会互相覆盖
	prev, err := s.statusRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取签到状态失败: %w", err)
	}
	if prev != nil && prev.IsRunning {
		return nil, ErrCheckinRunning
	}

	if len(ids) == 0 {
		if prev == nil {
			return nil, errors.New("没有可重试的签到记录")
		}
		ids = prev.FailedAccountIDs()
		if len(ids) == 0 {
			return nil, errors.New("上一轮没有失败的账户")
		}
	}

	var accounts []model.SiteAccount
	for _, id := range ids {
		acct, err := s.accountRepo.GetByID(ctx, id)
		if err != nil {
			log.Printf("[CheckinService] 重试账户 %s 不存在，跳过: %v", id, err)
			continue
		}
		if acct.Disabled {
			continue
		}
		accounts = append(accounts, *acct)
	}

	return s.runPass(ctx, accounts)
}

// runPass 对给定账户集执行一轮签到并落盘汇总
func (s *CheckinService) runPass(ctx context.Context, accounts []model.SiteAccount) (*model.AutoCheckinStatus, error) {
	status := &model.AutoCheckinStatus{
		IsRunning: true,
		StartedAt: time.Now(),
		Results:   []model.AccountCheckinResult{},
	}
	// 先落一条运行中状态，外部轮询可见
	if err := s.statusRepo.Save(ctx, status); err != nil {
		return nil, fmt.Errorf("写入签到状态失败: %w", err)
	}

	today := daykey.Today(s.loc)
	log.Printf("[CheckinService] 开始签到调度，候选账户 %d 个，日期键 %s", len(accounts), today)

	for i := range accounts {
		acct := &accounts[i]

		select {
		case <-ctx.Done():
			log.Println("[CheckinService] 签到调度被取消")
			s.finish(context.WithoutCancel(ctx), status)
			return status, ctx.Err()
		default:
		}

		prov, err := s.registry.Resolve(acct.SiteType)
		if err != nil {
			// 未注册的站点类型是配置错误：点名记为失败，不中断整轮
			status.TotalEligible++
			s.record(ctx, status, acct, model.CheckinResultFailed, err.Error(), today)
			continue
		}

		if !prov.CanCheckIn(acct) {
			// 不可签：不计入本轮任何统计
			continue
		}
		status.TotalEligible++

		// 日期键命中 → 今天已有定论，零网络请求
		if acct.CheckIn.LastCheckInDate == today {
			s.record(ctx, status, acct, model.CheckinResultAlreadyChecked, "今日已签到（本地记录）", today)
			if !acct.CheckIn.IsCheckedInToday {
				if err := s.accountRepo.UpdateCheckinState(ctx, acct.ID, true, today); err != nil {
					log.Printf("[CheckinService] 账户 %s 状态回填失败: %v", acct.Name, err)
				}
			}
			continue
		}

		status.Executed++
		s.executeOne(ctx, status, prov, acct, today)

		if i < len(accounts)-1 {
			time.Sleep(s.sleepTime)
		}
	}

	s.finish(ctx, status)
	log.Printf("[CheckinService] 签到调度完成: 可签 %d / 执行 %d / 成功 %d / 失败 %d / 跳过 %d",
		status.TotalEligible, status.Executed, status.SuccessCount, status.FailedCount, status.SkippedCount)
	return status, nil
}

// executeOne 对单账户发起签到并按结果推进日期键
// 失败不推进日期键，后续轮次会再次尝试
func (s *CheckinService) executeOne(ctx context.Context, status *model.AutoCheckinStatus, prov provider.Provider, acct *model.SiteAccount, today string) {
	result, err := prov.CheckIn(ctx, acct)

	switch {
	case errors.Is(err, provider.ErrCheckinNotSupported):
		// 端点不存在不算故障，后续轮次也不必重试
		s.record(ctx, status, acct, model.CheckinResultSkipped, "站点未提供签到端点", today)

	case err != nil:
		s.record(ctx, status, acct, model.CheckinResultFailed, err.Error(), today)

	case result.Status == model.CheckinResultSuccess:
		s.advanceDayKey(ctx, acct, today)
		s.record(ctx, status, acct, model.CheckinResultSuccess, result.Message, today)

	case result.Status == model.CheckinResultAlreadyChecked:
		// 远端说今天签过了 → 同样推进日期键，之后不再打这个站点
		s.advanceDayKey(ctx, acct, today)
		s.record(ctx, status, acct, model.CheckinResultAlreadyChecked, result.Message, today)

	default:
		// 业务层面失败（HTTP 200 但 success=false），保留后端原话
		s.record(ctx, status, acct, model.CheckinResultFailed, result.Message, today)
	}
}

// advanceDayKey 推进账户日期键到今天
func (s *CheckinService) advanceDayKey(ctx context.Context, acct *model.SiteAccount, today string) {
	if err := s.accountRepo.UpdateCheckinState(ctx, acct.ID, true, today); err != nil {
		log.Printf("[CheckinService] 账户 %s 日期键推进失败: %v", acct.Name, err)
	}
}

// record 把单账户结果计入汇总并追加流水
func (s *CheckinService) record(ctx context.Context, status *model.AutoCheckinStatus, acct *model.SiteAccount, resultStatus, message, today string) {
	status.Results = append(status.Results, model.AccountCheckinResult{
		AccountID: acct.ID,
		Name:      acct.Name,
		SiteURL:   acct.SiteURL,
		Status:    resultStatus,
		Message:   message,
		CheckedAt: time.Now(),
	})

	switch resultStatus {
	case model.CheckinResultSuccess:
		status.SuccessCount++
	case model.CheckinResultFailed:
		status.FailedCount++
	case model.CheckinResultAlreadyChecked, model.CheckinResultSkipped:
		status.SkippedCount++
	}

	if err := s.logRepo.Append(ctx, &model.CheckinLog{
		AccountID: acct.ID,
		DayKey:    today,
		Status:    resultStatus,
		Message:   message,
	}); err != nil {
		log.Printf("[CheckinService] 账户 %s 签到流水写入失败: %v", acct.Name, err)
	}
}

// finish 收尾：置完成标记并整体覆盖状态
func (s *CheckinService) finish(ctx context.Context, status *model.AutoCheckinStatus) {
	now := time.Now()
	status.IsRunning = false
	status.FinishedAt = &now
	status.NeedsRetry = status.FailedCount > 0

	if err := s.statusRepo.Save(ctx, status); err != nil {
		log.Printf("[CheckinService] 签到状态落盘失败: %v", err)
	}
}

// ==================== 过期状态复位 ====================

// ResetExpiredCheckIns 复位日期键已过期的自定义签到账户
// 只处理配了自定义签到页的账户：这类账户由人在页面上签，
// 引擎要做的是每天把"已签"标记清掉提醒再签；
// API 直签账户不需要复位，调度时日期键比对天然过期
func (s *CheckinService) ResetExpiredCheckIns(ctx context.Context) (int, error) {
	accounts, err := s.accountRepo.ListEnabled(ctx)
	if err != nil {
		return 0, fmt.Errorf("获取账户列表失败: %w", err)
	}

	today := daykey.Today(s.loc)
	reset := 0
	for i := range accounts {
		acct := &accounts[i]
		if acct.CheckIn.CustomCheckInURL == "" {
			continue
		}
		if !acct.CheckIn.IsCheckedInToday && acct.CheckIn.LastCheckInDate == "" {
			continue
		}
		if !daykey.IsBefore(acct.CheckIn.LastCheckInDate, today) {
			continue
		}
		if err := s.accountRepo.ResetCheckinState(ctx, acct.ID); err != nil {
			log.Printf("[CheckinService] 账户 %s 签到状态复位失败: %v", acct.Name, err)
			continue
		}
		reset++
	}

	if reset > 0 {
		log.Printf("[CheckinService] 已复位 %d 个过期签到状态", reset)
	}
	return reset, nil
}

// ==================== 状态查询 ====================

// GetStatus 读取最近一轮调度状态（从未执行过时返回 nil）
func (s *CheckinService) GetStatus(ctx context.Context) (*model.AutoCheckinStatus, error) {
	return s.statusRepo.Get(ctx)
}

// ClearStatus 清除调度状态
func (s *CheckinService) ClearStatus(ctx context.Context) error {
	return s.statusRepo.Clear(ctx)
}

// ListAccountLogs 按账户查签到流水
func (s *CheckinService) ListAccountLogs(ctx context.Context, accountID string, limit int) ([]model.CheckinLog, error) {
	return s.logRepo.ListByAccount(ctx, accountID, limit)
}

// PruneOldLogs 清理超过保留期的签到流水
func (s *CheckinService) PruneOldLogs(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}
	pruned, err := s.logRepo.PruneBefore(ctx, time.Now().Add(-retention))
	if err != nil {
		return 0, err
	}
	if pruned > 0 {
		log.Printf("[CheckinService] 已清理 %d 条过期签到流水", pruned)
	}
	return pruned, nil
}
