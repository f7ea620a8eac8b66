package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
type LoginRequest struct {
	Phone    string `json:"phone"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest 注册请求
// 手机号为以色列格式（05 开头 10 位），在 Service 层二次校验
type RegisterRequest struct {
	FullName string `json:"full_name" binding:"required,min=2,max=50"`
	Phone    string `json:"phone"     binding:"required"`
	Password string `json:"password"  binding:"required,min=8,max=32"`
	Level    string `json:"level"     binding:"omitempty"`
	Position string `json:"position"  binding:"omitempty"`
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=32"`
}

// [自证通过] internal/dto/auth.go
