package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"panel_keeper_v1_202608/internal/model"
	"panel_keeper_v1_202608/pkg/utils"
)

// ==================== 响应包络 ====================

// apiEnvelope one-api 衍生系通用响应包络 {success, message, data}
type apiEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// ==================== panelClient 面板请求客户端 ====================

// panelClient 适配器共用的 HTTP 薄封装
// 职责仅限：拼 URL、挂凭证、解包络；端点语义由各适配器自持
type panelClient struct {
	client *resty.Client
	// 部分面板族要求额外携带用户标识头（如 new-api 的 New-Api-User）
	userIDHeader string
}

func newPanelClient(userIDHeader string) *panelClient {
	return &panelClient{
		client:       utils.NewPanelClient(),
		userIDHeader: userIDHeader,
	}
}

// request 构造带凭证的请求
func (c *panelClient) request(ctx context.Context, acct *model.SiteAccount) *resty.Request {
	req := c.client.R().SetContext(ctx)

	switch acct.AuthType {
	case model.AuthTypeAccessToken:
		req.SetHeader("Authorization", "Bearer "+acct.Credential)
	case model.AuthTypeCookie:
		req.SetHeader("Cookie", acct.Credential)
	}
	if c.userIDHeader != "" && acct.UserID != "" {
		req.SetHeader(c.userIDHeader, acct.UserID)
	}
	return req
}

// siteURL 拼接站点相对路径
func siteURL(acct *model.SiteAccount, path string) string {
	return strings.TrimRight(acct.SiteURL, "/") + path
}

// getJSON 发送 GET 并解析包络，返回 (包络, HTTP 状态码, error)
// 网络错误与非 2xx/404 状态由调用方按瞬时失败处理
func (c *panelClient) getJSON(ctx context.Context, acct *model.SiteAccount, path string) (*apiEnvelope, int, error) {
	resp, err := c.request(ctx, acct).Get(siteURL(acct, path))
	return decodeEnvelope(resp, err)
}

// postJSON 发送 POST 并解析包络
func (c *panelClient) postJSON(ctx context.Context, acct *model.SiteAccount, path string) (*apiEnvelope, int, error) {
	resp, err := c.request(ctx, acct).Post(siteURL(acct, path))
	return decodeEnvelope(resp, err)
}

func decodeEnvelope(resp *resty.Response, err error) (*apiEnvelope, int, error) {
	if err != nil {
		return nil, 0, err
	}

	code := resp.StatusCode()
	if code == http.StatusNotFound {
		// 端点缺失交给适配器判定（探测→Unknown，签到→NotSupported）
		return nil, code, nil
	}
	if code >= 500 {
		return nil, code, fmt.Errorf("panel responded %d", code)
	}

	var env apiEnvelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return nil, code, fmt.Errorf("malformed panel response: %w", err)
	}
	return &env, code, nil
}

// decodeData 解出包络中的 data 段
func decodeData(env *apiEnvelope, out interface{}) error {
	if len(env.Data) == 0 {
		return fmt.Errorf("panel response has no data")
	}
	return json.Unmarshal(env.Data, out)
}
