package main

import (
	"log"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"flexora_backend/internal/app/config"
	"flexora_backend/internal/app/router"
	authadapters "flexora_backend/internal/feature/auth/adapters"
	authhandler "flexora_backend/internal/feature/auth/transport/handler"
	authusecase "flexora_backend/internal/feature/auth/usecase"
	"flexora_backend/internal/platform/cache"
	infradb "flexora_backend/internal/platform/db"
	jwtmw "flexora_backend/internal/platform/jwt"
	infraredis "flexora_backend/internal/platform/redis"
	"flexora_backend/internal/platform/storage"
	"flexora_backend/internal/shared/ratelimiter"
)

func main() {
	// 設定読み込み。署名シークレットやDB設定が欠けていれば起動しない
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	// db
	db := infradb.OpenDB(cfg)

	// Redis（任意。接続できなければキャッシュなしで稼働する）
	var rdb *redisv9.Client
	if addr := cfg.RedisAddr(); addr != "" {
		if tmp, err := infraredis.NewRedisClient(addr, cfg.RedisPassword); err != nil {
			log.Println("[WARN] Redis unavailable. Running without cache.")
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					log.Println("[ERROR] Failed to close Redis client:", err)
				}
			}()
		}
	}

	// Repository
	userRepo := authadapters.NewUserMySQL(db)

	// Redisキャッシュでラップ（プロフィール読み取りのみ）
	cachedUserRepo := cache.NewCachingUserRepository(rdb, 5*time.Minute, userRepo, "users")

	// アバター保存先
	avatarStore, err := storage.NewLocalAvatarStore(cfg.UploadDir)
	if err != nil {
		log.Fatal(err)
	}

	// トークンサービス。シークレットは起動時に一度だけ注入する
	tokenService := jwtmw.NewTokenService(cfg.JWTSecret, cfg.JWTExpire)

	// Usecase
	authUC := authusecase.NewAuthUsecase(cachedUserRepo, tokenService, avatarStore)

	// Handler（ログイン・登録はIPごとのレート制限付き）
	loginLimiter := ratelimiter.NewRateLimiter(10, time.Minute)
	authH := authhandler.NewAuthHandler(authUC, loginLimiter)

	// ルータ生成
	router := router.NewRouter(authH, tokenService, cfg.UploadDir)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
