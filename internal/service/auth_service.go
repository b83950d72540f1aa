package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/YuWang03/kunyu-project-sub003/internal/dto"
	"github.com/YuWang03/kunyu-project-sub003/internal/model"
	"github.com/YuWang03/kunyu-project-sub003/internal/repository"
	pkgerrors "github.com/YuWang03/kunyu-project-sub003/pkg/errors"
	"github.com/YuWang03/kunyu-project-sub003/pkg/oidc"
)

var (
	ErrInvalidCredentials  = errors.New("账号或密码错误")
	ErrInvalidRefreshToken = errors.New("登录已过期，请重新登录")
	ErrTokenRejected       = errors.New("身份提供者签发的 Token 无法通过校验")
	ErrEmployeeNotFound    = errors.New("人事资料中查无此员工")
)

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.LoginResponse, error)
	// Logout 将 Token 加入黑名单直至其过期
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
	Me(ctx context.Context, op Operator) (*dto.UserInfo, error)
}

type authService struct {
	repo      *repository.Repository
	idp       IdentityProvider
	verifier  TokenVerifier
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	repo *repository.Repository,
	idp IdentityProvider,
	verifier TokenVerifier,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		repo:      repo,
		idp:       idp,
		verifier:  verifier,
		blacklist: blacklist,
		logger:    logger,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	// 1. 密码模式换取 Token（不重试）
	tok, err := s.idp.PasswordGrant(ctx, req.Username, req.Password)
	if err != nil {
		if oidc.IsInvalidGrant(err) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("身份提供者登录失败", zap.String("username", req.Username), zap.Error(err))
		return nil, idpError(err)
	}

	return s.complete(ctx, tok)
}

func (s *authService) Refresh(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.LoginResponse, error) {
	tok, err := s.idp.RefreshGrant(ctx, req.RefreshToken)
	if err != nil {
		if oidc.IsInvalidGrant(err) {
			return nil, ErrInvalidRefreshToken
		}
		s.logger.Error("刷新 Token 失败", zap.Error(err))
		return nil, idpError(err)
	}

	return s.complete(ctx, tok)
}

// complete 校验 Access Token 并合并人事资料
func (s *authService) complete(ctx context.Context, tok *oidc.TokenResponse) (*dto.LoginResponse, error) {
	// 2. 校验签名、签发者与有效期
	claims, err := s.verifier.Verify(tok.AccessToken)
	if err != nil {
		s.logger.Error("Access Token 校验失败", zap.Error(err))
		return nil, ErrTokenRejected
	}

	// 3. 以 preferred_username 关联人事资料
	emp, err := s.findEmployee(ctx, claims.Username())
	if err != nil {
		return nil, err
	}
	if !emp.Status.IsActive() {
		s.logger.Warn("非在职员工尝试登录",
			zap.String("uid", emp.UID),
			zap.String("status", string(emp.Status)),
		)
		return nil, pkgerrors.ErrEmployeeInactive
	}

	tokenType := tok.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return &dto.LoginResponse{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    tok.ExpiresIn,
		TokenType:    tokenType,
		User:         dto.NewUserInfo(emp, claims.RealmAccess.Roles),
	}, nil
}

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.blacklist == nil || jti == "" {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, jti, ttl); err != nil {
		s.logger.Error("Token 加入黑名单失败", zap.String("jti", jti), zap.Error(err))
		return err
	}
	return nil
}

func (s *authService) Me(ctx context.Context, op Operator) (*dto.UserInfo, error) {
	emp, err := s.findEmployee(ctx, op.UID)
	if err != nil {
		return nil, err
	}
	info := dto.NewUserInfo(emp, op.Roles)
	return &info, nil
}

func (s *authService) findEmployee(ctx context.Context, uid string) (*model.Employee, error) {
	emp, err := s.repo.Employee.GetByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		s.logger.Error("查询员工资料失败", zap.String("uid", uid), zap.Error(err))
		return nil, err
	}
	return emp, nil
}

// idpError 身份提供者的非凭证类失败统一视为外部系统不可用
func idpError(err error) error {
	return fmt.Errorf("%w: %v", pkgerrors.ErrUpstreamUnavailable, err)
}
