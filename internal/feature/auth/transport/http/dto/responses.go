package dto

import "flexora_backend/internal/feature/auth/domain/entity"

// UserResponse is the public profile projection of a user.
// It never includes the password hash.
type UserResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl"`
}

// NewUserResponse maps a user entity to its public profile.
func NewUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
	}
}

// AuthResponse is returned by register and login: a message, the issued
// session token and the public profile.
type AuthResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    UserResponse `json:"user"`
}

// ProfileResponse is returned by the profile read/update endpoints.
type ProfileResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

// ErrorResponse carries a short human-readable message; validation errors
// additionally list every violated field, and internal errors may attach
// diagnostic detail outside of release mode.
type ErrorResponse struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
	Detail  string   `json:"error,omitempty"`
}
