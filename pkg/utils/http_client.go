package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// NewPanelClient 创建统一配置的 Resty 客户端
// 它是全系统访问各面板的统一网络出口：统一超时、统一 UA
// 瞬时失败不在客户端内重试，交给下一轮调度
func NewPanelClient() *resty.Client {
	return resty.New().
		SetTimeout(15 * time.Second).
		SetHeader("User-Agent", "PanelKeeper/1.0").
		SetHeader("Accept", "application/json")
}
