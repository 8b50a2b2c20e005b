package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/voke-app/voke_server/config"
	"github.com/voke-app/voke_server/internal/model"
	"github.com/voke-app/voke_server/internal/model/dto"
	"github.com/voke-app/voke_server/internal/pkg/email"
	"github.com/voke-app/voke_server/internal/pkg/jwt"
	"github.com/voke-app/voke_server/internal/repository"
)

var (
	ErrEmailExists        = errors.New("邮箱已被注册")
	ErrUsernameExists     = errors.New("用户名已被使用")
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrEmailNotVerified   = errors.New("邮箱尚未验证")
	ErrInvalidVerifyCode  = errors.New("验证码无效或已过期")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrUserSuspended      = errors.New("账号已被封禁")
)

type AuthService struct {
	userRepo  *repository.UserRepository
	walletSvc *WalletService
	emailSvc  *email.Service
	cfg       *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, walletSvc *WalletService, emailSvc *email.Service, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		walletSvc: walletSvc,
		emailSvc:  emailSvc,
		cfg:       cfg,
	}
}

// Register 用户注册，成功后发放注册赠送积分
func (s *AuthService) Register(req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	exists, err := s.userRepo.ExistsByUsername(req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameExists
	}

	exists, err = s.userRepo.ExistsByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	verifyCode, err := generateRandomCode(32)
	if err != nil {
		return nil, err
	}

	passwordStr := string(hashedPassword)
	expiresAt := time.Now().Add(24 * time.Hour)

	user := &model.User{
		Username:              req.Username,
		Name:                  req.Name,
		Email:                 &req.Email,
		PasswordHash:          &passwordStr,
		Bio:                   req.Bio,
		WaNumber:              req.WaNumber,
		Address:               req.Address,
		Role:                  model.RoleUser,
		Status:                model.UserStatusActive,
		VerificationCode:      &verifyCode,
		VerificationExpiresAt: &expiresAt,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	// 注册赠送积分
	if s.cfg.Wallet.SignupBonus > 0 {
		_, _, err := s.walletSvc.Adjust(AdjustParams{
			UserID:         user.ID,
			Delta:          s.cfg.Wallet.SignupBonus,
			Type:           model.TxAdjustment,
			IdempotencyKey: "signup_bonus:" + user.Username,
			Metadata:       model.JSONMap{"reason": "signup bonus"},
		})
		if err != nil {
			log.Printf("Failed to grant signup bonus for user %d: %v", user.ID, err)
		}
	}

	if s.emailSvc != nil {
		if err := s.emailSvc.SendVerificationCode(req.Email, verifyCode); err != nil {
			log.Printf("Failed to send verification email to %s: %v", req.Email, err)
		}
	}

	// 开发环境自动验证邮箱
	if s.cfg.Server.Mode == "debug" {
		user.EmailVerified = true
		if err := s.userRepo.Update(user); err != nil {
			return nil, err
		}
	}

	return &dto.RegisterResponse{
		UserID: user.ID,
	}, nil
}

// Login 用户登录
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByUsername(req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.Status == model.UserStatusSuspended {
		return nil, ErrUserSuspended
	}

	if !user.EmailVerified && s.cfg.Server.Mode != "debug" {
		return nil, ErrEmailNotVerified
	}

	if user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := jwt.GenerateToken(user.ID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token: token,
		User:  BuildUserInfo(user),
	}, nil
}

// VerifyEmail 邮箱验证
func (s *AuthService) VerifyEmail(code string) error {
	user, err := s.userRepo.GetByVerificationCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidVerifyCode
		}
		return err
	}

	if user.VerificationExpiresAt == nil || time.Now().After(*user.VerificationExpiresAt) {
		return ErrInvalidVerifyCode
	}

	return s.userRepo.UpdateFields(user.ID, map[string]interface{}{
		"email_verified":          true,
		"verification_code":       nil,
		"verification_expires_at": nil,
	})
}

// BuildUserInfo 转换用户信息
func BuildUserInfo(user *model.User) *dto.UserInfo {
	info := &dto.UserInfo{
		ID:             user.ID,
		Username:       user.Username,
		Name:           user.Name,
		AvatarURL:      user.AvatarURL,
		Bio:            user.Bio,
		WaNumber:       user.WaNumber,
		Address:        user.Address,
		Role:           user.Role,
		FollowerCount:  user.FollowerCount,
		FollowingCount: user.FollowingCount,
		Balance:        user.Balance,
		EmailVerified:  user.EmailVerified,
		CreatedAt:      user.CreatedAt.Format(time.RFC3339),
	}
	if user.Email != nil {
		info.Email = *user.Email
	}
	return info
}

func generateRandomCode(length int) (string, error) {
	bytes := make([]byte, length/2)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
