// oidc-login 以密码模式向身份提供者换取 Token，并打印 Access Token 中的身份声明。
// 仅供联调使用：默认不校验签名，-verify 时改用 JWKS 校验。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/YuWang03/kunyu-project-sub003/config"
	"github.com/YuWang03/kunyu-project-sub003/pkg/jwt"
	applogger "github.com/YuWang03/kunyu-project-sub003/pkg/logger"
	"github.com/YuWang03/kunyu-project-sub003/pkg/oidc"
)

// loginEnv 环境变量（可由 .env 提供），命令行参数优先
type loginEnv struct {
	Authority     string        `env:"OIDC_AUTHORITY"`
	Realm         string        `env:"OIDC_REALM"`
	ClientID      string        `env:"OIDC_CLIENT_ID"`
	ClientSecret  string        `env:"OIDC_CLIENT_SECRET"`
	Scope         string        `env:"OIDC_SCOPE" envDefault:"openid profile email"`
	TokenEndpoint string        `env:"OIDC_TOKEN_ENDPOINT"`
	Username      string        `env:"OIDC_USERNAME"`
	Password      string        `env:"OIDC_PASSWORD"`
	Timeout       time.Duration `env:"OIDC_TIMEOUT" envDefault:"10s"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "读取 .env 失败: %v\n", err)
		os.Exit(1)
	}

	var e loginEnv
	if err := env.Parse(&e); err != nil {
		fmt.Fprintf(os.Stderr, "解析环境变量失败: %v\n", err)
		os.Exit(1)
	}

	flag.StringVar(&e.Authority, "authority", e.Authority, "身份提供者地址，如 https://sso.example.com")
	flag.StringVar(&e.Realm, "realm", e.Realm, "realm 名称")
	flag.StringVar(&e.ClientID, "client-id", e.ClientID, "client id")
	flag.StringVar(&e.Username, "username", e.Username, "登录账号")
	flag.StringVar(&e.Password, "password", e.Password, "登录密码")
	verify := flag.Bool("verify", false, "使用 JWKS 校验 Access Token 签名")
	flag.Parse()

	logger, err := applogger.NewLogger(&config.LogConfig{Level: e.LogLevel, Format: "console"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(context.Background(), e, *verify, os.Stdout, logger); err != nil {
		os.Exit(1)
	}
}

// run 执行一次登录；失败时已记录日志
func run(ctx context.Context, e loginEnv, verify bool, out io.Writer, logger *zap.Logger) error {
	if e.Username == "" || e.Password == "" {
		logger.Error("缺少账号或密码（-username / -password 或 OIDC_USERNAME / OIDC_PASSWORD）")
		return errors.New("missing credentials")
	}

	cfg := &config.OIDCConfig{
		Authority:     e.Authority,
		Realm:         e.Realm,
		ClientID:      e.ClientID,
		ClientSecret:  e.ClientSecret,
		Scope:         e.Scope,
		TokenEndpoint: e.TokenEndpoint,
		Timeout:       e.Timeout,
	}
	client := oidc.NewClient(cfg, logger)

	tok, err := client.PasswordGrant(ctx, e.Username, e.Password)
	if err != nil {
		logFailure(logger, client.TokenURL(), err)
		return err
	}

	fmt.Fprintf(out, "token_type:          %s\n", tok.TokenType)
	fmt.Fprintf(out, "expires_in:          %d\n", tok.ExpiresIn)
	fmt.Fprintf(out, "refresh_expires_in:  %d\n", tok.RefreshExpiresIn)
	fmt.Fprintf(out, "scope:               %s\n", tok.Scope)

	claims, err := jwt.Decode(tok.AccessToken)
	if err != nil {
		logger.Error("Access Token 解码失败", zap.Error(err))
		return err
	}
	printClaims(out, claims)

	if verify {
		verifier, err := jwt.NewJWKSVerifier(ctx, cfg.JWKSEndpoint(), cfg.IssuerURL())
		if err != nil {
			logger.Error("加载 JWKS 失败", zap.String("jwks_url", cfg.JWKSEndpoint()), zap.Error(err))
			return err
		}
		if _, err := verifier.Verify(tok.AccessToken); err != nil {
			logger.Error("签名校验失败", zap.Error(err))
			return err
		}
		fmt.Fprintln(out, "signature:           verified")
	}
	return nil
}

func printClaims(out io.Writer, c *jwt.Claims) {
	fmt.Fprintf(out, "sub:                 %s\n", c.Subject)
	fmt.Fprintf(out, "email:               %s\n", c.Email)
	fmt.Fprintf(out, "preferred_username:  %s\n", c.PreferredUsername)
	fmt.Fprintf(out, "realm_access.roles:  %s\n", strings.Join(c.RealmAccess.Roles, ", "))
}

// logFailure 按三类失败分别记录
func logFailure(logger *zap.Logger, tokenURL string, err error) {
	var (
		errResp *oidc.ErrorResponse
		noResp  *oidc.NoResponseError
		reqErr  *oidc.RequestError
	)
	switch {
	case errors.As(err, &errResp):
		logger.Error("身份提供者拒绝请求",
			zap.Int("status", errResp.StatusCode),
			zap.String("error", errResp.Code),
			zap.String("error_description", errResp.Description),
		)
	case errors.As(err, &noResp):
		logger.Error("身份提供者无响应", zap.String("token_url", tokenURL), zap.Error(noResp.Err))
	case errors.As(err, &reqErr):
		logger.Error("请求构造失败", zap.Error(reqErr.Err))
	default:
		logger.Error("登录失败", zap.Error(err))
	}
}
