package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"panel_keeper_v1_202608/internal/model"
	"panel_keeper_v1_202608/internal/provider"
	"panel_keeper_v1_202608/pkg/daykey"
)

func main() {
	fmt.Println(">>> 开始执行全链路测试...")

	// ------------------------------------------------
	// 1. 连接数据库
	// ------------------------------------------------
	dsn := "host=localhost user=postgres password=postgres dbname=panel_keeper port=5432 sslmode=disable"
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("❌ 数据库连接失败: %v", err)
	}
	fmt.Println("✅ 数据库连接成功！")

	// ------------------------------------------------
	// 2. 从数据库读取第一个启用的账户
	// ------------------------------------------------
	var acct model.SiteAccount
	result := db.Where("disabled = ?", false).First(&acct)
	if result.Error != nil {
		log.Fatalf("❌ 未找到可用账户，请先通过接口添加账户: %v", result.Error)
	}
	fmt.Printf("✅ 读取账户成功: [Name: %s] [站点: %s] [类型: %s] [凭证长度: %d]\n",
		acct.Name, acct.SiteURL, acct.SiteType, len(acct.Credential))

	// ------------------------------------------------
	// 3. 解析适配器并查询余额
	// ------------------------------------------------
	loc := daykey.LoadLocation("Asia/Shanghai")
	registry := provider.NewRegistry(loc)

	prov, err := registry.Resolve(acct.SiteType)
	if err != nil {
		log.Fatalf("❌ 站点类型未注册: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Println(">>> 正在向面板发起余额查询...")
	quota, err := prov.FetchQuota(ctx, &acct)

	// ------------------------------------------------
	// 4. 结果验证
	// ------------------------------------------------
	if err != nil {
		log.Fatalf("❌ 请求失败 (可能是站点不通或凭证失效): %v", err)
	}

	fmt.Println("🎉🎉🎉 测试成功！全链路已打通！")
	fmt.Printf("当前余额: %d\n", quota)

	// 顺带探测一下签到状态（没有该端点的后端返回 Unknown，属正常）
	probe, err := prov.FetchCheckInStatus(ctx, &acct)
	if err != nil {
		fmt.Printf("⚠️ 签到状态探测失败: %v\n", err)
		return
	}
	switch probe {
	case provider.ProbeAvailable:
		fmt.Println("今日还可签到")
	case provider.ProbeUnavailable:
		fmt.Println("今日已无可签")
	default:
		fmt.Println("该后端不提供签到状态端点")
	}
}
