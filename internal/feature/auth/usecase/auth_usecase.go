// Package usecase はauthフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"flexora_backend/internal/feature/auth/domain/entity"

	"golang.org/x/crypto/bcrypt"
)

const (
	// minNameLength / maxNameLength は表示名の文字数制限を定義します。
	minNameLength = 2
	maxNameLength = 50
	// minPasswordLength はパスワードの最低文字数を定義します。
	minPasswordLength = 6
)

// emailPattern は local@domain.tld 形式の簡易チェックです。
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーをストレージに永続化します。
	// 同じメールアドレスのユーザーが既に存在する場合、ErrEmailAlreadyExistsを返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail は指定されたメールアドレス（正規化済み）に一致するユーザーを取得します。
	// 結果にはパスワードハッシュが含まれます（ログイン検証用）。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID は指定されたIDに一致するユーザーを取得します。
	FindByID(ctx context.Context, id uint) (*entity.User, error)

	// Update は指定されたフィールドのみを更新し、更新後のユーザーを返します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	Update(ctx context.Context, id uint, fields map[string]any) (*entity.User, error)
}

// TokenIssuer はセッショントークン発行のインターフェースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（platform/jwt）ではなくコンシューマー（usecase）が定義します。
type TokenIssuer interface {
	// IssueToken は指定されたユーザーの署名済みトークンを生成します。
	IssueToken(userID uint) (string, error)
}

// AvatarStore はアップロードされたアバター画像の保存先を抽象化します。
// 保存に成功すると、プロフィールに書き込む参照パスを返します。
type AvatarStore interface {
	Save(ctx context.Context, userID uint, filename string, data []byte) (string, error)
}

// authUsecase は認証ビジネスロジックを実装します。
type authUsecase struct {
	users   UserRepository
	tokens  TokenIssuer
	avatars AvatarStore
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(users UserRepository, tokens TokenIssuer, avatars AvatarStore) *authUsecase {
	return &authUsecase{
		users:   users,
		tokens:  tokens,
		avatars: avatars,
	}
}

// NormalizeEmail はメールアドレスを比較・一意性判定用に正規化します。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validateName は表示名の制約違反メッセージを返します。違反がなければnilです。
func validateName(name string) []string {
	var violations []string
	n := utf8.RuneCountInString(name)
	if n < minNameLength {
		violations = append(violations, fmt.Sprintf("Name must be at least %d characters", minNameLength))
	}
	if n > maxNameLength {
		violations = append(violations, fmt.Sprintf("Name cannot exceed %d characters", maxNameLength))
	}
	return violations
}

// validateEmail はメールアドレスの形式違反メッセージを返します。
func validateEmail(email string) []string {
	if !emailPattern.MatchString(email) {
		return []string{"Please provide a valid email address"}
	}
	return nil
}

// validatePassword はパスワードの制約違反メッセージを返します。
func validatePassword(password string) []string {
	if len(password) < minPasswordLength {
		return []string{fmt.Sprintf("Password must be at least %d characters", minPasswordLength)}
	}
	return nil
}

// Register は新規ユーザーを登録し、発行したトークンと作成されたユーザーを返します。
// すべてのフィールド違反をまとめてValidationErrorとして報告します。
// トークンはストアへの作成が成功した後にのみ発行されます。
func (u *authUsecase) Register(ctx context.Context, name, email, password string) (string, *entity.User, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)

	// フィールド検証は最初の違反で打ち切らず、全件を集約する
	var violations []string
	violations = append(violations, validateName(name)...)
	violations = append(violations, validateEmail(email)...)
	violations = append(violations, validatePassword(password)...)
	if len(violations) > 0 {
		return "", nil, &ValidationError{Violations: violations}
	}

	// 既存メールの事前チェック。最終的な一意性の保証はストアのユニークインデックスが行う
	if _, err := u.users.FindByEmail(ctx, email); err == nil {
		return "", nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return "", nil, fmt.Errorf("failed to check existing email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		Name:     name,
		Email:    email,
		Password: string(hashed),
	}
	if err := u.users.Create(ctx, user); err != nil {
		return "", nil, err
	}

	token, err := u.tokens.IssueToken(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return token, user, nil
}

// Login はユーザーを認証し、成功時にトークンとユーザーを返します。
// メール未登録とパスワード不一致は区別できないErrInvalidCredentialsを返します。
// タイミング攻撃を緩和するため、ユーザーが存在しない場合でもbcrypt比較を実行します。
func (u *authUsecase) Login(ctx context.Context, email, password string) (string, *entity.User, error) {
	user, err := u.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return "", nil, fmt.Errorf("failed to look up user: %w", err)
	}

	// ユーザー未検出時のダミーハッシュ。bcrypt.CompareHashAndPasswordが
	// 常に呼ばれることを保証し、検索結果による応答時間差を抑える
	passwordHash := "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
	if err == nil {
		passwordHash = user.Password
	}

	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))
	if err != nil || compareErr != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, tokenErr := u.tokens.IssueToken(user.ID)
	if tokenErr != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", tokenErr)
	}
	return token, user, nil
}

// GetProfile は認証済みユーザー自身のプロフィールを取得します。
func (u *authUsecase) GetProfile(ctx context.Context, id uint) (*entity.User, error) {
	return u.users.FindByID(ctx, id)
}

// UpdateProfile は表示名とアバターのうち、指定されたフィールドのみを更新します。
// avatarDataが空でない場合、AvatarStoreへ保存した参照パスをプロフィールに書き込みます。
func (u *authUsecase) UpdateProfile(ctx context.Context, id uint, name, avatarFilename string, avatarData []byte) (*entity.User, error) {
	fields := map[string]any{}

	if name != "" {
		name = strings.TrimSpace(name)
		if violations := validateName(name); len(violations) > 0 {
			return nil, &ValidationError{Violations: violations}
		}
		fields["name"] = name
	}

	if len(avatarData) > 0 {
		ref, err := u.avatars.Save(ctx, id, avatarFilename, avatarData)
		if err != nil {
			return nil, fmt.Errorf("failed to store avatar: %w", err)
		}
		fields["avatar_url"] = ref
	}

	// 更新対象がなければ現在のプロフィールをそのまま返す
	if len(fields) == 0 {
		return u.users.FindByID(ctx, id)
	}
	return u.users.Update(ctx, id, fields)
}
