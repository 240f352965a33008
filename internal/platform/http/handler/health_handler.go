// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import "github.com/gin-gonic/gin"

// Health は認証バックエンドの導通確認用 /healthz エンドポイントを処理します。
// 認証もDBアクセスも行わず、HTTPメソッドに応じて即座にレスポンスします。
func Health(c *gin.Context) {
	// ロードバランサー等にキャッシュされないように明示
	c.Header("Cache-Control", "no-store")

	// GET/HEAD/OPTIONS いずれも 200 または 204 を返す
	switch c.Request.Method {
	case "HEAD":
		c.Status(200)
	case "OPTIONS":
		c.Status(204)
	default:
		c.JSON(200, gin.H{"status": "ok"})
	}
}
