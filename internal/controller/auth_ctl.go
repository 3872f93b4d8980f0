package controller

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"panel_keeper_v1_202608/internal/middleware"
)

// AuthController 登录鉴权控制器
// 单管理员形态：账号口令来自环境变量，登录换 JWT
type AuthController struct {
	adminUser     string
	adminPassword string
}

// NewAuthController 创建鉴权控制器
func NewAuthController(adminUser, adminPassword string) *AuthController {
	return &AuthController{adminUser: adminUser, adminPassword: adminPassword}
}

type loginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Login 登录
// @Summary 管理员登录，换取 Token 对
// @Tags Auth
// @Accept json
// @Param request body loginReq true "登录参数"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{} "账号或口令错误"
// @Router /api/v1/auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req loginReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	// 常量时间比较，避免口令探测
	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(c.adminUser)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(c.adminPassword)) == 1
	if !userOK || !passOK {
		ctx.JSON(http.StatusUnauthorized, gin.H{"code": 401, "message": "账号或口令错误"})
		return
	}

	accessToken, refreshToken, err := middleware.GenerateTokenPair(req.Username)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{
			"access_token":  accessToken,
			"refresh_token": refreshToken,
		},
	})
}

// Refresh 刷新 Token
// @Summary 用 Refresh Token 换新的 Access Token
// @Tags Auth
// @Accept json
// @Param request body refreshReq true "刷新参数"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{} "Refresh Token 无效"
// @Router /api/v1/auth/refresh [post]
func (c *AuthController) Refresh(ctx *gin.Context) {
	var req refreshReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	claims, err := middleware.ParseToken(req.RefreshToken)
	if err != nil || claims.Subject != "refresh" {
		ctx.JSON(http.StatusUnauthorized, gin.H{"code": 401, "message": "Refresh Token 无效或已过期"})
		return
	}

	accessToken, err := middleware.GenerateAccessToken(claims.Username)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{"access_token": accessToken},
	})
}
