package provider

import (
	"time"

	"panel_keeper_v1_202608/internal/model"
)

// ==================== Registry 适配器注册表 ====================

// Registry 站点类型 → 适配器的静态查找表
// 显式构造、可注入，测试可替换单个适配器
type Registry struct {
	providers map[string]Provider
}

// NewRegistry 创建注册表并装配全部内置适配器
// loc 决定各适配器计算"今日"区间所用的时区
func NewRegistry(loc *time.Location) *Registry {
	r := &Registry{providers: make(map[string]Provider)}
	r.Register(NewOneAPIProvider(loc))
	r.Register(NewNewAPIProvider(loc))
	r.Register(NewVeloeraProvider(loc))
	r.Register(NewOneHubProvider(loc))
	r.Register(NewDoneHubProvider(loc))
	r.Register(NewAnyRouterProvider(loc))
	return r
}

// Register 注册适配器（同名覆盖）
func (r *Registry) Register(p Provider) {
	r.providers[p.Name()] = p
}

// Resolve 按站点类型取适配器
// 未注册的类型是配置错误，必须显式上抛，不得静默忽略
func (r *Registry) Resolve(siteType string) (Provider, error) {
	p, ok := r.providers[siteType]
	if !ok {
		return nil, &UnknownSiteTypeError{SiteType: siteType}
	}
	return p, nil
}

// Known 判断站点类型是否已注册（账户写入前校验用）
func (r *Registry) Known(siteType string) bool {
	_, ok := r.providers[siteType]
	return ok
}

// KnownTypes 全部已注册类型
func (r *Registry) KnownTypes() []string {
	types := make([]string, 0, len(r.providers))
	for _, t := range model.KnownSiteTypes() {
		if _, ok := r.providers[t]; ok {
			types = append(types, t)
		}
	}
	return types
}
