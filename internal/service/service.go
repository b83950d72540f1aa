package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/YuWang03/kunyu-project-sub003/config"
	"github.com/YuWang03/kunyu-project-sub003/internal/repository"
	"github.com/YuWang03/kunyu-project-sub003/pkg/bpm"
	"github.com/YuWang03/kunyu-project-sub003/pkg/jwt"
	"github.com/YuWang03/kunyu-project-sub003/pkg/oidc"
	"github.com/YuWang03/kunyu-project-sub003/pkg/redis"
)

// ── 外部依赖接口 ──

// IdentityProvider 身份提供者 Token 端点（*oidc.Client 实现）
type IdentityProvider interface {
	PasswordGrant(ctx context.Context, username, password string) (*oidc.TokenResponse, error)
	RefreshGrant(ctx context.Context, refreshToken string) (*oidc.TokenResponse, error)
}

// TokenVerifier Access Token 校验（*jwt.Verifier 实现）
type TokenVerifier interface {
	Verify(tokenString string) (*jwt.Claims, error)
}

// TokenBlacklist Token 黑名单（*redis.Client 实现）
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// FormEngine BPM 流程引擎（*bpm.Client 实现）
type FormEngine interface {
	SubmitForm(ctx context.Context, formCode, applicant string, fields map[string]interface{}) (string, string, error)
	GetStatus(ctx context.Context, formID string) (string, error)
	Sign(ctx context.Context, formID, approver, decision, comment string) (string, error)
}

var (
	_ IdentityProvider = (*oidc.Client)(nil)
	_ TokenVerifier    = (*jwt.Verifier)(nil)
	_ TokenBlacklist   = (*redis.Client)(nil)
	_ FormEngine       = (*bpm.Client)(nil)
)

// Deps 外部系统依赖
type Deps struct {
	IdP       IdentityProvider
	Verifier  TokenVerifier
	Blacklist TokenBlacklist // 可为 nil（未启用 Redis）
	Engine    FormEngine
}

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	Attendance AttendanceService
	Overtime   OvertimeService
	Outing     OutingService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	deps Deps,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:       NewAuthService(repo, deps.IdP, deps.Verifier, deps.Blacklist, logger),
		Attendance: NewAttendanceService(repo, logger),
		Overtime:   NewOvertimeService(&cfg.BPM, repo, deps.Engine, logger),
		Outing:     NewOutingService(&cfg.BPM, &cfg.FTP, repo, deps.Engine, logger),
	}
}

// ── 操作者 ──

// RoleManager 可签核表单、查看他人资料的角色
const RoleManager = "manager"

// Operator 当前登录的操作者
type Operator struct {
	UID   string
	Roles []string
}

// IsManager 是否具有主管角色
func (o Operator) IsManager() bool {
	for _, r := range o.Roles {
		if r == RoleManager {
			return true
		}
	}
	return false
}

// CanView 本人或主管可查看
func (o Operator) CanView(ownerUID string) bool {
	return o.UID == ownerUID || o.IsManager()
}
