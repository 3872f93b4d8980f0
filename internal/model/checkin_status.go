package model

import "time"

// ==================== 签到结果常量 ====================

const (
	CheckinResultSuccess        = "success"
	CheckinResultAlreadyChecked = "already_checked"
	CheckinResultFailed         = "failed"
	CheckinResultSkipped        = "skipped" // 站点不支持签到端点
)

// ==================== AutoCheckinStatus 自动签到状态 ====================

// AccountCheckinResult 单账户签到结果
type AccountCheckinResult struct {
	AccountID string    `json:"account_id"`
	Name      string    `json:"name"`
	SiteURL   string    `json:"site_url"`
	Status    string    `json:"status"` // success / already_checked / failed / skipped
	Message   string    `json:"message,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// AutoCheckinStatus 最近一轮调度的全量汇总
// 生命周期：调度开始时创建，结束时整体覆盖，仅由用户显式清除或新一轮覆盖
type AutoCheckinStatus struct {
	IsRunning     bool                   `json:"is_running"`
	StartedAt     time.Time              `json:"started_at"`
	FinishedAt    *time.Time             `json:"finished_at,omitempty"`
	TotalEligible int                    `json:"total_eligible"`
	Executed      int                    `json:"executed"`
	SuccessCount  int                    `json:"success_count"`
	FailedCount   int                    `json:"failed_count"`
	SkippedCount  int                    `json:"skipped_count"`
	NeedsRetry    bool                   `json:"needs_retry"`
	Results       []AccountCheckinResult `json:"results"`
}

// FailedAccountIDs 上一轮中失败的账户，供重试通道使用
func (s *AutoCheckinStatus) FailedAccountIDs() []string {
	var ids []string
	for _, r := range s.Results {
		if r.Status == CheckinResultFailed {
			ids = append(ids, r.AccountID)
		}
	}
	return ids
}

// CheckinStatusRecord 状态持久化载体（单行表，Payload 为 JSON）
type CheckinStatusRecord struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Payload   string    `gorm:"type:text;not null;default:''" json:"payload"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (CheckinStatusRecord) TableName() string { return "checkin_status" }

// ==================== CheckinLog 签到流水 ====================

// CheckinLog 只增不改的签到流水，轻量留痕
type CheckinLog struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountID string    `gorm:"type:varchar(36);not null;index:idx_checkin_logs_account_time,priority:1" json:"account_id"`
	DayKey    string    `gorm:"type:char(10);not null;index" json:"day_key"`
	Status    string    `gorm:"type:varchar(32);not null" json:"status"`
	Message   string    `gorm:"type:text;not null;default:''" json:"message"`
	CreatedAt time.Time `gorm:"index:idx_checkin_logs_account_time,priority:2" json:"created_at"`
}

// TableName 指定表名
func (CheckinLog) TableName() string { return "checkin_logs" }
