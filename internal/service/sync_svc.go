package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"panel_keeper_v1_202608/internal/model"
	"panel_keeper_v1_202608/internal/provider"
	"panel_keeper_v1_202608/internal/repository"
	"panel_keeper_v1_202608/pkg/daykey"
)

// ==================== SyncService 账户数据同步 ====================

// SyncOptions 同步选项
type SyncOptions struct {
	Force bool // 强制：跳过本地新鲜度判断，探测照发
}

// SyncSummary 全量同步汇总
type SyncSummary struct {
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// SyncService 单账户取数编排与全量同步
// 余额/用量/收益三路并发取数，探测按条件追加，合并为一个快照整体写回；
// 任一必需项失败则整次放弃，账户保持上一次快照不动
type SyncService struct {
	accountRepo repository.AccountRepository
	registry    *provider.Registry
	loc         *time.Location

	// 并发控制（全量同步时）
	concurrencyLimit int
	sleepTime        time.Duration
}

// NewSyncService 创建同步服务
func NewSyncService(accountRepo repository.AccountRepository, registry *provider.Registry, loc *time.Location) *SyncService {
	return &SyncService{
		accountRepo:      accountRepo,
		registry:         registry,
		loc:              loc,
		concurrencyLimit: 3,
		sleepTime:        200 * time.Millisecond,
	}
}

// SetConcurrency 设置并发参数
func (s *SyncService) SetConcurrency(limit int, sleep time.Duration) {
	s.concurrencyLimit = limit
	s.sleepTime = sleep
}

// SyncAccount 同步单个账户并原子写回快照
func (s *SyncService) SyncAccount(ctx context.Context, accountID string, opts SyncOptions) (*model.AccountSnapshot, error) {
	acct, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("账户 %s 不存在: %w", accountID, err)
	}

	prov, err := s.registry.Resolve(acct.SiteType)
	if err != nil {
		// 配置错误：点名账户直接上抛，不发任何网络请求
		return nil, fmt.Errorf("账户 %s 配置无效: %w", acct.Name, err)
	}

	snap, err := s.fetchSnapshot(ctx, prov, acct, opts)
	if err != nil {
		return nil, fmt.Errorf("账户 %s 同步失败: %w", acct.Name, err)
	}

	if err := s.accountRepo.UpdateSnapshot(ctx, acct.ID, snap); err != nil {
		return nil, fmt.Errorf("账户 %s 快照写回失败: %w", acct.Name, err)
	}
	return snap, nil
}

// fetchSnapshot 三路并发取数 + 条件探测，合并快照
func (s *SyncService) fetchSnapshot(ctx context.Context, prov provider.Provider, acct *model.SiteAccount, opts SyncOptions) (*model.AccountSnapshot, error) {
	var (
		quota  int64
		usage  *provider.TodayUsage
		income *provider.TodayIncome

		quotaErr, usageErr, incomeErr error
	)

	// 三路之间无顺序依赖，发完一起等
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		quota, quotaErr = prov.FetchQuota(ctx, acct)
	}()
	go func() {
		defer wg.Done()
		usage, usageErr = prov.FetchTodayUsage(ctx, acct)
	}()
	go func() {
		defer wg.Done()
		income, incomeErr = prov.FetchTodayIncome(ctx, acct)
	}()
	wg.Wait()

	// 必需项任一失败 → 整次放弃，不产出半截快照
	if quotaErr != nil {
		return nil, fmt.Errorf("查余额失败: %w", quotaErr)
	}
	if usageErr != nil {
		return nil, fmt.Errorf("查用量失败: %w", usageErr)
	}
	if incomeErr != nil {
		return nil, fmt.Errorf("查收益失败: %w", incomeErr)
	}

	snap := &model.AccountSnapshot{
		Quota:                 quota,
		TodayQuotaConsumption: usage.Consumption,
		TodayPromptTokens:     usage.PromptTokens,
		TodayCompletionTokens: usage.CompletionTokens,
		TodayRequestsCount:    usage.RequestsCount,
		TodayIncome:           income.Income,
		CheckIn:               acct.CheckIn,
	}

	if s.shouldProbe(acct, opts) {
		probe, err := prov.FetchCheckInStatus(ctx, acct)
		if err != nil {
			// 探测失败不拖垮整次同步，本地状态保持原样
			log.Printf("[SyncService] 账户 %s 签到探测失败: %v", acct.Name, err)
		} else if probe == provider.ProbeUnavailable {
			// 远端今日已无可签（多半是手动签过了）→ 本地视为已完成今日签到
			snap.CheckIn.IsCheckedInToday = true
			snap.CheckIn.LastCheckInDate = daykey.Today(s.loc)
		}
		// ProbeAvailable / ProbeUnknown 均不动本地状态
	}

	return snap, nil
}

// shouldProbe 是否需要远端签到状态探测
func (s *SyncService) shouldProbe(acct *model.SiteAccount, opts SyncOptions) bool {
	if !acct.CheckIn.EnableDetection {
		return false
	}
	// 配了自定义签到页的账户走页面签到，不打 API 探测
	if acct.CheckIn.CustomCheckInURL != "" {
		return false
	}
	// 本地今天已有定论时不再探测，避免陈旧的 Unknown 覆盖已知状态
	if !opts.Force && acct.CheckIn.IsCheckedInToday &&
		acct.CheckIn.LastCheckInDate == daykey.Today(s.loc) {
		return false
	}
	return true
}

// SyncAllAccounts 全量同步（单账户失败互不牵连）
func (s *SyncService) SyncAllAccounts(ctx context.Context, opts SyncOptions) (*SyncSummary, error) {
	accounts, err := s.accountRepo.ListEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("获取账户列表失败: %w", err)
	}

	summary := &SyncSummary{}
	if len(accounts) == 0 {
		return summary, nil
	}

	sem := make(chan struct{}, s.concurrencyLimit)
	var wg sync.WaitGroup
	var mu sync.Mutex

	log.Printf("[SyncService] 开始全量同步 %d 个账户", len(accounts))

	for i := range accounts {
		acct := accounts[i]
		select {
		case <-ctx.Done():
			log.Println("[SyncService] 全量同步被取消")
			wg.Wait()
			return summary, ctx.Err()
		default:
		}

		sem <- struct{}{}
		wg.Add(1)
		time.Sleep(s.sleepTime)

		go func(id, name string) {
			defer wg.Done()
			defer func() { <-sem }()

			_, err := s.SyncAccount(ctx, id, opts)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("[SyncService] 账户 %s 同步失败: %v", name, err)
				summary.Failed++
				return
			}
			summary.Success++
		}(acct.ID, acct.Name)
	}

	wg.Wait()
	log.Printf("[SyncService] 全量同步完成: 成功 %d / 失败 %d", summary.Success, summary.Failed)
	return summary, nil
}
