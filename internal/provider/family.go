package provider

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"panel_keeper_v1_202608/internal/model"
)

// one-api 衍生系共用的端点语义
// 各适配器仍各自决定用哪几个，以及如何解释返回值

// userSelfData GET /api/user/self 的 data 段（取需要的字段）
type userSelfData struct {
	Quota       int64 `json:"quota"`
	TodayIncome int64 `json:"today_income"` // 仅部分分支（如 veloera）提供
}

// fetchQuotaUserSelf 经 /api/user/self 读当前余额
func fetchQuotaUserSelf(ctx context.Context, c *panelClient, acct *model.SiteAccount) (int64, error) {
	env, code, err := c.getJSON(ctx, acct, "/api/user/self")
	if err != nil {
		return 0, err
	}
	if env == nil {
		return 0, fmt.Errorf("panel responded %d", code)
	}
	if !env.Success {
		return 0, fmt.Errorf("panel error: %s", env.Message)
	}

	var data userSelfData
	if err := decodeData(env, &data); err != nil {
		return 0, err
	}
	return data.Quota, nil
}

// logStatData GET /api/log/self/stat 的 data 段
// 老派面板只给汇总额度与调用次数，token 不区分输入输出
type logStatData struct {
	Quota int64 `json:"quota"`
	Count int64 `json:"count"`
}

// fetchUsageLogStat 经 /api/log/self/stat 读今日用量（one-api / one-hub 一脉）
func fetchUsageLogStat(ctx context.Context, c *panelClient, acct *model.SiteAccount, loc *time.Location) (*TodayUsage, error) {
	start, end := todayRange(loc)
	path := "/api/log/self/stat?type=0&start_timestamp=" + strconv.FormatInt(start, 10) +
		"&end_timestamp=" + strconv.FormatInt(end, 10)

	env, code, err := c.getJSON(ctx, acct, path)
	if err != nil {
		return nil, err
	}
	if env == nil {
		return nil, fmt.Errorf("panel responded %d", code)
	}
	if !env.Success {
		return nil, fmt.Errorf("panel error: %s", env.Message)
	}

	var data logStatData
	if err := decodeData(env, &data); err != nil {
		return nil, err
	}
	// token 维度该端点不提供，留零
	return &TodayUsage{
		Consumption:   data.Quota,
		RequestsCount: data.Count,
	}, nil
}

// dataSelfRow GET /api/data/self 返回的按时段统计行（new-api 一脉）
type dataSelfRow struct {
	Quota            int64 `json:"quota"`
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	Count            int64 `json:"count"`
}

// fetchUsageDataSelf 经 /api/data/self 读今日用量并按行求和
func fetchUsageDataSelf(ctx context.Context, c *panelClient, acct *model.SiteAccount, loc *time.Location) (*TodayUsage, error) {
	start, end := todayRange(loc)
	path := "/api/data/self?start_timestamp=" + strconv.FormatInt(start, 10) +
		"&end_timestamp=" + strconv.FormatInt(end, 10)

	env, code, err := c.getJSON(ctx, acct, path)
	if err != nil {
		return nil, err
	}
	if env == nil {
		return nil, fmt.Errorf("panel responded %d", code)
	}
	if !env.Success {
		return nil, fmt.Errorf("panel error: %s", env.Message)
	}

	var rows []dataSelfRow
	if err := decodeData(env, &rows); err != nil {
		return nil, err
	}

	usage := &TodayUsage{}
	for _, row := range rows {
		usage.Consumption += row.Quota
		usage.PromptTokens += row.PromptTokens
		usage.CompletionTokens += row.CompletionTokens
		usage.RequestsCount += row.Count
	}
	return usage, nil
}

// checkInStatusData GET /api/user/check_in_status 的 data 段
type checkInStatusData struct {
	CanCheckIn bool `json:"can_check_in"`
}

// probeCheckInStatus 探测今日是否还可签到；端点缺失返回 ProbeUnknown
func probeCheckInStatus(ctx context.Context, c *panelClient, acct *model.SiteAccount) (CheckInProbe, error) {
	env, code, err := c.getJSON(ctx, acct, "/api/user/check_in_status")
	if err != nil {
		return ProbeUnknown, err
	}
	if env == nil {
		if code == http.StatusNotFound {
			return ProbeUnknown, nil
		}
		return ProbeUnknown, fmt.Errorf("panel responded %d", code)
	}
	if !env.Success {
		return ProbeUnknown, fmt.Errorf("panel error: %s", env.Message)
	}

	var data checkInStatusData
	if err := decodeData(env, &data); err != nil {
		return ProbeUnknown, err
	}
	if data.CanCheckIn {
		return ProbeAvailable, nil
	}
	return ProbeUnavailable, nil
}

// submitCheckIn 提交签到并归一化结果
// 404 → ErrCheckinNotSupported；语义失败按措辞归一化为 already_checked 或 failed
func submitCheckIn(ctx context.Context, c *panelClient, acct *model.SiteAccount, path string) (*CheckinResult, error) {
	env, code, err := c.postJSON(ctx, acct, path)
	if err != nil {
		return nil, err
	}
	if env == nil {
		if code == http.StatusNotFound {
			return nil, ErrCheckinNotSupported
		}
		return nil, fmt.Errorf("panel responded %d", code)
	}

	result := &CheckinResult{Message: env.Message}
	if len(env.Data) > 0 {
		var data map[string]interface{}
		if err := decodeData(env, &data); err == nil {
			result.Data = data
		}
	}

	switch {
	case env.Success:
		result.Status = model.CheckinResultSuccess
	case isAlreadyCheckedMessage(env.Message):
		result.Status = model.CheckinResultAlreadyChecked
	default:
		result.Status = model.CheckinResultFailed
	}
	return result, nil
}

// todayRange 当地今日零点到当前的 Unix 秒区间
func todayRange(loc *time.Location) (int64, int64) {
	now := time.Now().In(loc)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	return start.Unix(), now.Unix()
}

// canCheckInLocal 通用本地前置校验：检测开关 + 凭证齐备
func canCheckInLocal(acct *model.SiteAccount) bool {
	return acct.CheckIn.EnableDetection && hasCredential(acct)
}
