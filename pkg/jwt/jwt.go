package jwt

import (
	"context"
	"errors"
	"fmt"

	"github.com/MicahParks/keyfunc/v3"
	jwtv5 "github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("token 已过期")
	ErrTokenInvalid = errors.New("token 无效")
)

// 身份提供者使用的非对称签名算法
var allowedMethods = []string{"RS256", "RS384", "RS512", "PS256", "ES256", "ES384"}

// RealmAccess Keycloak realm 角色
type RealmAccess struct {
	Roles []string `json:"roles"`
}

// Claims 身份提供者签发的 Access Token 声明
type Claims struct {
	Email             string      `json:"email,omitempty"`
	PreferredUsername string      `json:"preferred_username,omitempty"`
	Name              string      `json:"name,omitempty"`
	RealmAccess       RealmAccess `json:"realm_access"`
	jwtv5.RegisteredClaims
}

// HasRole 是否拥有指定 realm 角色
func (c *Claims) HasRole(role string) bool {
	for _, r := range c.RealmAccess.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Username 优先使用 preferred_username，缺省时回退到 sub
func (c *Claims) Username() string {
	if c.PreferredUsername != "" {
		return c.PreferredUsername
	}
	return c.Subject
}

// Decode 解码 Token 但不校验签名与有效期。
// 仅供调试（登录演示工具）使用，任何授权判断都必须经过 Verifier。
func Decode(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwtv5.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	return claims, nil
}

// Verifier 校验签名、有效期与签发者
type Verifier struct {
	keyFunc jwtv5.Keyfunc
	issuer  string
}

// NewVerifier 使用给定的公钥解析函数创建 Verifier
func NewVerifier(keyFunc jwtv5.Keyfunc, issuer string) *Verifier {
	return &Verifier{keyFunc: keyFunc, issuer: issuer}
}

// NewJWKSVerifier 从身份提供者的 JWKS 端点获取公钥（后台自动刷新）
func NewJWKSVerifier(ctx context.Context, jwksURL, issuer string) (*Verifier, error) {
	k, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("加载 JWKS 失败: %w", err)
	}
	return NewVerifier(k.Keyfunc, issuer), nil
}

// Verify 解析并校验 Token
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	opts := []jwtv5.ParserOption{
		jwtv5.WithValidMethods(allowedMethods),
		jwtv5.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwtv5.WithIssuer(v.issuer))
	}

	token, err := jwtv5.ParseWithClaims(tokenString, &Claims{}, v.keyFunc, opts...)
	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Subject == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
