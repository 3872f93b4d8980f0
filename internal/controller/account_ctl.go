package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"panel_keeper_v1_202608/internal/api/dto"
	"panel_keeper_v1_202608/internal/model"
	"panel_keeper_v1_202608/internal/provider"
	"panel_keeper_v1_202608/internal/repository"
	"panel_keeper_v1_202608/internal/service"
)

// AccountController 账户管理控制器
type AccountController struct {
	accountSvc *service.AccountService
}

// NewAccountController 创建账户控制器
func NewAccountController(accountSvc *service.AccountService) *AccountController {
	return &AccountController{accountSvc: accountSvc}
}

// ==================== Handler 实现 ====================

// List 账户列表
// @Summary 获取账户列表
// @Tags Account
// @Param site_type query string false "站点类型筛选"
// @Param keyword query string false "名称/站点 URL 关键词"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} dto.AccountListResp
// @Router /api/v1/accounts [get]
func (c *AccountController) List(ctx *gin.Context) {
	var req dto.AccountListReq
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	accounts, total, err := c.accountSvc.List(ctx.Request.Context(), repository.AccountFilter{
		SiteType: req.SiteType,
		Disabled: req.Disabled,
		Keyword:  req.Keyword,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	resp := dto.AccountListResp{Total: total, List: make([]dto.AccountResp, 0, len(accounts))}
	for i := range accounts {
		resp.List = append(resp.List, toAccountResp(&accounts[i]))
	}
	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": resp})
}

// Get 账户详情
// @Summary 获取账户详情
// @Tags Account
// @Param id path string true "账户 ID"
// @Success 200 {object} dto.AccountResp
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/accounts/{id} [get]
func (c *AccountController) Get(ctx *gin.Context) {
	acct, err := c.accountSvc.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"code": 404, "message": "账户不存在"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": toAccountResp(acct)})
}

// Create 新建账户
// @Summary 新建账户
// @Tags Account
// @Accept json
// @Param request body dto.AccountCreateReq true "账户参数"
// @Success 200 {object} dto.AccountResp
// @Failure 400 {object} map[string]interface{} "参数或站点类型错误"
// @Router /api/v1/accounts [post]
func (c *AccountController) Create(ctx *gin.Context) {
	var req dto.AccountCreateReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	acct := &model.SiteAccount{
		Name:       req.Name,
		SiteURL:    req.SiteURL,
		SiteType:   req.SiteType,
		AuthType:   req.AuthType,
		UserID:     req.UserID,
		Credential: req.Credential,
		CheckIn: model.CheckInConfig{
			EnableDetection:       req.EnableDetection,
			CustomCheckInURL:      req.CustomCheckInURL,
			CustomRedeemURL:       req.CustomRedeemURL,
			OpenRedeemWithCheckIn: req.OpenRedeemWithCheckIn,
		},
		ExchangeRate: req.ExchangeRate,
	}

	if err := c.accountSvc.Create(ctx.Request.Context(), acct); err != nil {
		status := http.StatusInternalServerError
		var unknownErr *provider.UnknownSiteTypeError
		if errors.As(err, &unknownErr) {
			status = http.StatusBadRequest
		}
		ctx.JSON(status, gin.H{"code": status, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": toAccountResp(acct)})
}

// Update 更新账户
// @Summary 更新账户
// @Tags Account
// @Accept json
// @Param id path string true "账户 ID"
// @Param request body dto.AccountUpdateReq true "账户参数"
// @Success 200 {object} dto.AccountResp
// @Router /api/v1/accounts/{id} [put]
func (c *AccountController) Update(ctx *gin.Context) {
	var req dto.AccountUpdateReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	acct, err := c.accountSvc.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"code": 404, "message": "账户不存在"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	acct.Name = req.Name
	acct.SiteURL = req.SiteURL
	acct.SiteType = req.SiteType
	acct.AuthType = req.AuthType
	acct.UserID = req.UserID
	if req.Credential != "" {
		acct.Credential = req.Credential
	}
	acct.CheckIn.EnableDetection = req.EnableDetection
	acct.CheckIn.CustomCheckInURL = req.CustomCheckInURL
	acct.CheckIn.CustomRedeemURL = req.CustomRedeemURL
	acct.CheckIn.OpenRedeemWithCheckIn = req.OpenRedeemWithCheckIn
	if req.ExchangeRate > 0 {
		acct.ExchangeRate = req.ExchangeRate
	}
	acct.Disabled = req.Disabled

	if err := c.accountSvc.Update(ctx.Request.Context(), acct); err != nil {
		status := http.StatusInternalServerError
		var unknownErr *provider.UnknownSiteTypeError
		if errors.As(err, &unknownErr) {
			status = http.StatusBadRequest
		}
		ctx.JSON(status, gin.H{"code": status, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": toAccountResp(acct)})
}

// Delete 删除账户
// @Summary 删除账户
// @Tags Account
// @Param id path string true "账户 ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/accounts/{id} [delete]
func (c *AccountController) Delete(ctx *gin.Context) {
	if err := c.accountSvc.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"code": 200, "message": "账户已删除"})
}

// ==================== 响应映射 ====================

func toAccountResp(acct *model.SiteAccount) dto.AccountResp {
	return dto.AccountResp{
		ID:       acct.ID,
		Name:     acct.Name,
		SiteURL:  acct.SiteURL,
		SiteType: acct.SiteType,
		AuthType: acct.AuthType,
		UserID:   acct.UserID,

		EnableDetection:       acct.CheckIn.EnableDetection,
		IsCheckedInToday:      acct.CheckIn.IsCheckedInToday,
		LastCheckInDate:       acct.CheckIn.LastCheckInDate,
		CustomCheckInURL:      acct.CheckIn.CustomCheckInURL,
		CustomRedeemURL:       acct.CheckIn.CustomRedeemURL,
		OpenRedeemWithCheckIn: acct.CheckIn.OpenRedeemWithCheckIn,

		ExchangeRate: acct.ExchangeRate,
		Disabled:     acct.Disabled,

		Quota:                 acct.Quota,
		TodayQuotaConsumption: acct.TodayQuotaConsumption,
		TodayPromptTokens:     acct.TodayPromptTokens,
		TodayCompletionTokens: acct.TodayCompletionTokens,
		TodayRequestsCount:    acct.TodayRequestsCount,
		TodayIncome:           acct.TodayIncome,

		LastSyncTime: acct.LastSyncTime,
		CreatedAt:    acct.CreatedAt,
		UpdatedAt:    acct.UpdatedAt,
	}
}
