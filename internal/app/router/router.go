package router

import (
	authhandler "flexora_backend/internal/feature/auth/transport/handler"
	healthhandler "flexora_backend/internal/platform/http/handler"
	jwtmw "flexora_backend/internal/platform/jwt"

	"github.com/gin-gonic/gin"
)

// NewRouter assembles the route table. Protected routes are grouped behind
// the bearer-token guard so handlers never see an unverified request.
func NewRouter(authHandler *authhandler.AuthHandler, verifier jwtmw.Verifier, uploadDir string) *gin.Engine {
	r := gin.Default()

	// 認証不要
	// 導通確認用
	r.GET("/healthz", healthhandler.Health)
	// アップロード済みアバターの配信
	r.Static("/uploads", uploadDir)
	// 新規ユーザー登録
	r.POST("/api/auth/register", authHandler.Register)
	// ログイン（トークン発行）
	r.POST("/api/auth/login", authHandler.Login)

	// 認証必須のルート
	// リクエストヘッダーに Bearer トークンが必要になる
	me := r.Group("/api/auth")
	me.Use(jwtmw.AuthRequired(verifier))
	{
		me.GET("/me", authHandler.Me)
		me.PUT("/me", authHandler.UpdateMe)
	}

	return r
}
