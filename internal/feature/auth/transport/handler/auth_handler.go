// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"flexora_backend/internal/feature/auth/domain/entity"
	"flexora_backend/internal/feature/auth/transport/http/dto"
	"flexora_backend/internal/feature/auth/usecase"
	jwtmw "flexora_backend/internal/platform/jwt"
)

// maxAvatarSize はアバター画像の最大サイズです。
const maxAvatarSize = 5 << 20 // 5MB

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	// Register は新規ユーザーを登録し、発行したトークンとユーザーを返します。
	Register(ctx context.Context, name, email, password string) (string, *entity.User, error)
	// Login はユーザーを認証し、成功時にトークンとユーザーを返します。
	Login(ctx context.Context, email, password string) (string, *entity.User, error)
	// GetProfile は認証済みユーザーのプロフィールを取得します。
	GetProfile(ctx context.Context, id uint) (*entity.User, error)
	// UpdateProfile は表示名・アバターのうち指定されたフィールドのみを更新します。
	UpdateProfile(ctx context.Context, id uint, name, avatarFilename string, avatarData []byte) (*entity.User, error)
}

// RateLimiter は認証エンドポイントへの試行頻度を制限します。
type RateLimiter interface {
	Allow(key string) bool
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
// AuthUsecaseインターフェースに依存し、JSONリクエスト/レスポンスを処理します。
type AuthHandler struct {
	auth    AuthUsecase
	limiter RateLimiter
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
// limiterはnilでもよく、その場合レート制限は行われません。
func NewAuthHandler(auth AuthUsecase, limiter RateLimiter) *AuthHandler {
	return &AuthHandler{auth: auth, limiter: limiter}
}

// Register はユーザー登録APIエンドポイントを処理します。
// - 必須フィールド欠落時は400を返却
// - フィールド検証違反時は違反の全リスト付きで400を返却
// - メール重複時は400を返却
// - 成功時はトークンと公開プロフィール付きで201を返却
func (h *AuthHandler) Register(c *gin.Context) {
	if !h.allow(c) {
		return
	}

	var req dto.RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("register validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Please provide all required fields (name, email, password)"})
		return
	}

	token, user, err := h.auth.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		var vErr *usecase.ValidationError
		switch {
		case errors.As(err, &vErr):
			slog.Warn("register field validation failed", "errors", vErr.Violations, "remote_addr", c.ClientIP())
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Validation error", Errors: vErr.Violations})
		case errors.Is(err, usecase.ErrEmailAlreadyExists):
			slog.Warn("register duplicate email", "email", req.Email, "remote_addr", c.ClientIP())
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Email already registered. Please use a different email."})
		default:
			h.internalError(c, "Error during registration", err)
		}
		return
	}

	slog.Info("user registered", "user_id", user.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, dto.AuthResponse{
		Message: "User registered successfully",
		Token:   token,
		User:    dto.NewUserResponse(user),
	})
}

// Login はユーザーログインAPIエンドポイントを処理します。
// - 必須フィールド欠落時は400を返却
// - 認証失敗時は、メール未登録かパスワード不一致かを区別できない401を返却
// - 認証成功時はトークンと公開プロフィール付きで200を返却
func (h *AuthHandler) Login(c *gin.Context) {
	if !h.allow(c) {
		return
	}

	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Please provide email and password"})
		return
	}

	token, user, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			// ユーザー列挙攻撃を防止するため、未登録と不一致で同一の応答を返す
			slog.Warn("login failed", "remote_addr", c.ClientIP())
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Invalid email or password"})
			return
		}
		h.internalError(c, "Error during login", err)
		return
	}

	slog.Info("user login successful", "user_id", user.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.AuthResponse{
		Message: "Login successful",
		Token:   token,
		User:    dto.NewUserResponse(user),
	})
}

// Me は認証済みユーザー自身のプロフィールを返します。
// ルートガードが解決したIDがもはや存在しない場合は404を返却します。
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "No token provided. Please log in."})
		return
	}

	user, err := h.auth.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "User not found"})
			return
		}
		h.internalError(c, "Error retrieving user data", err)
		return
	}

	c.JSON(http.StatusOK, dto.ProfileResponse{
		Message: "User data retrieved successfully",
		User:    dto.NewUserResponse(user),
	})
}

// UpdateMe は認証済みユーザーのプロフィール更新を処理します。
//
// Content-Type: multipart/form-data
// フィールド: name（任意）、avatar（任意、画像ファイル、最大5MB）
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "No token provided. Please log in."})
		return
	}

	name := c.PostForm("name")

	var (
		avatarFilename string
		avatarData     []byte
	)
	if file, err := c.FormFile("avatar"); err == nil {
		if file.Size > maxAvatarSize {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Avatar file is too large (max 5MB)"})
			return
		}
		if !strings.HasPrefix(file.Header.Get("Content-Type"), "image/") {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Only image files are allowed"})
			return
		}

		f, err := file.Open()
		if err != nil {
			h.internalError(c, "Error updating profile", err)
			return
		}
		data, err := io.ReadAll(f)
		closeErr := f.Close()
		if err == nil {
			err = closeErr
		}
		if err != nil {
			h.internalError(c, "Error updating profile", err)
			return
		}
		avatarFilename = file.Filename
		avatarData = data
	}

	user, err := h.auth.UpdateProfile(c.Request.Context(), userID, name, avatarFilename, avatarData)
	if err != nil {
		var vErr *usecase.ValidationError
		switch {
		case errors.As(err, &vErr):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Validation error", Errors: vErr.Violations})
		case errors.Is(err, usecase.ErrUserNotFound):
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "User not found"})
		default:
			h.internalError(c, "Error updating profile", err)
		}
		return
	}

	slog.Info("profile updated", "user_id", user.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.ProfileResponse{
		Message: "Profile updated successfully",
		User:    dto.NewUserResponse(user),
	})
}

// allow はレート制限を確認し、上限超過時は429を返してfalseを返します。
func (h *AuthHandler) allow(c *gin.Context) bool {
	if h.limiter == nil || h.limiter.Allow(c.ClientIP()) {
		return true
	}
	slog.Warn("rate limit exceeded", "remote_addr", c.ClientIP())
	c.JSON(http.StatusTooManyRequests, dto.ErrorResponse{Message: "Too many attempts. Please try again later."})
	return false
}

// internalError は詳細をログに残し、リリースモード以外では診断用の詳細を応答に含めます。
func (h *AuthHandler) internalError(c *gin.Context, message string, err error) {
	slog.Error("unexpected auth failure", "error", err, "remote_addr", c.ClientIP())
	resp := dto.ErrorResponse{Message: message}
	if gin.Mode() != gin.ReleaseMode {
		resp.Detail = err.Error()
	}
	c.JSON(http.StatusInternalServerError, resp)
}

// userIDFrom はルートガードがコンテキストに格納したユーザーIDを取り出します。
func userIDFrom(c *gin.Context) (uint, bool) {
	v, ok := c.Get(jwtmw.ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
