package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	jwtv5 "github.com/golang-jwt/jwt/v5"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/YuWang03/kunyu-project-sub003/pkg/jwt"
	"github.com/YuWang03/kunyu-project-sub003/pkg/redis"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testIssuer = "https://idp.example.com/realms/hr"

type authFixture struct {
	key      *rsa.PrivateKey
	verifier *jwt.Verifier
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("生成 RSA 密钥失败: %v", err)
	}
	v := jwt.NewVerifier(func(*jwtv5.Token) (interface{}, error) {
		return &key.PublicKey, nil
	}, testIssuer)
	return &authFixture{key: key, verifier: v}
}

func (f *authFixture) token(t *testing.T, username string, roles []string, exp time.Time) string {
	t.Helper()
	claims := jwt.Claims{
		PreferredUsername: username,
		RealmAccess:       jwt.RealmAccess{Roles: roles},
		RegisteredClaims: jwtv5.RegisteredClaims{
			Subject:   "sub-" + username,
			Issuer:    testIssuer,
			ID:        "jti-" + username,
			ExpiresAt: jwtv5.NewNumericDate(exp),
		},
	}
	s, err := jwtv5.NewWithClaims(jwtv5.SigningMethodRS256, claims).SignedString(f.key)
	if err != nil {
		t.Fatalf("签名失败: %v", err)
	}
	return s
}

// unreachableRedis 指向无人监听的端口，用于验证降级放行
func unreachableRedis() *redis.Client {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	return redis.NewFromUniversal(rdb, zap.NewNop())
}

func newProtectedRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append(mw, func(c *gin.Context) {
		roles, _ := c.Get(CtxRoles)
		exp, _ := c.Get(CtxTokenExp)
		c.JSON(http.StatusOK, gin.H{
			"uid":     c.GetString(CtxUserID),
			"jti":     c.GetString(CtxTokenJTI),
			"roles":   roles,
			"has_exp": exp != nil,
		})
	})
	r.GET("/protected", handlers...)
	return r
}

func doGet(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	f := newAuthFixture(t)
	w := doGet(newProtectedRouter(JWTAuth(f.verifier, nil)), "")

	if w.Code != http.StatusUnauthorized {
		t.Errorf("期望 401，实际 %d", w.Code)
	}
}

func TestJWTAuth_MalformedHeader(t *testing.T) {
	f := newAuthFixture(t)
	r := newProtectedRouter(JWTAuth(f.verifier, nil))

	for _, h := range []string{"Token abc", "Bearer", "Bearer "} {
		if w := doGet(r, h); w.Code != http.StatusUnauthorized {
			t.Errorf("%q: 期望 401，实际 %d", h, w.Code)
		}
	}
}

func TestJWTAuth_InvalidToken(t *testing.T) {
	f := newAuthFixture(t)
	other := newAuthFixture(t)
	r := newProtectedRouter(JWTAuth(f.verifier, nil))

	forged := other.token(t, "E001", nil, time.Now().Add(time.Minute))
	if w := doGet(r, "Bearer "+forged); w.Code != http.StatusUnauthorized {
		t.Errorf("他人密钥签名: 期望 401，实际 %d", w.Code)
	}

	expired := f.token(t, "E001", nil, time.Now().Add(-time.Minute))
	if w := doGet(r, "Bearer "+expired); w.Code != http.StatusUnauthorized {
		t.Errorf("过期 Token: 期望 401，实际 %d", w.Code)
	}
}

func TestJWTAuth_Valid_InjectsIdentity(t *testing.T) {
	f := newAuthFixture(t)
	r := newProtectedRouter(JWTAuth(f.verifier, nil))

	tok := f.token(t, "E001", []string{"employee"}, time.Now().Add(5*time.Minute))
	w := doGet(r, "bearer "+tok)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d: %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	for _, want := range []string{`"uid":"E001"`, `"jti":"jti-E001"`, `"roles":["employee"]`, `"has_exp":true`} {
		if !strings.Contains(body, want) {
			t.Errorf("响应缺少 %s: %s", want, body)
		}
	}
}

func TestJWTAuth_RedisDown_FailOpen(t *testing.T) {
	f := newAuthFixture(t)
	rdb := unreachableRedis()
	defer rdb.Close()
	r := newProtectedRouter(JWTAuth(f.verifier, rdb))

	tok := f.token(t, "E001", nil, time.Now().Add(5*time.Minute))
	if w := doGet(r, "Bearer "+tok); w.Code != http.StatusOK {
		t.Errorf("Redis 不可用时应放行，实际 %d", w.Code)
	}
}

func TestRoleAuth(t *testing.T) {
	f := newAuthFixture(t)
	r := newProtectedRouter(JWTAuth(f.verifier, nil), RoleAuth("manager"))

	staff := f.token(t, "E001", []string{"employee"}, time.Now().Add(5*time.Minute))
	if w := doGet(r, "Bearer "+staff); w.Code != http.StatusForbidden {
		t.Errorf("一般员工: 期望 403，实际 %d", w.Code)
	}

	mgr := f.token(t, "M001", []string{"employee", "manager"}, time.Now().Add(5*time.Minute))
	if w := doGet(r, "Bearer "+mgr); w.Code != http.StatusOK {
		t.Errorf("主管: 期望 200，实际 %d", w.Code)
	}
}

func TestRoleAuth_NoIdentity(t *testing.T) {
	r := newProtectedRouter(RoleAuth("manager"))
	if w := doGet(r, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("期望 401，实际 %d", w.Code)
	}
}

func TestRateLimit_NilRedisPassesThrough(t *testing.T) {
	r := newProtectedRouter(RateLimit(nil, 1, time.Minute))
	for i := 0; i < 3; i++ {
		if w := doGet(r, ""); w.Code != http.StatusOK {
			t.Fatalf("第 %d 次请求: 期望 200，实际 %d", i+1, w.Code)
		}
	}
}

func TestRateLimit_RedisDown_FailOpen(t *testing.T) {
	rdb := unreachableRedis()
	defer rdb.Close()
	r := newProtectedRouter(RateLimit(rdb, 1, time.Minute))
	for i := 0; i < 2; i++ {
		if w := doGet(r, ""); w.Code != http.StatusOK {
			t.Fatalf("第 %d 次请求: 期望 200，实际 %d", i+1, w.Code)
		}
	}
}

func TestBodyLimit_DeclaredLength(t *testing.T) {
	r := gin.New()
	r.POST("/upload", BodyLimit(16), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/upload", strings.NewReader(strings.Repeat("x", 32)))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("期望 413，实际 %d", w.Code)
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.GET("/rid", RequestID(), func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/rid", nil)
	req.Header.Set("X-Request-ID", "gw-abc-123")
	r.ServeHTTP(w, req)
	if w.Body.String() != "gw-abc-123" || w.Header().Get("X-Request-ID") != "gw-abc-123" {
		t.Errorf("应沿用网关 ID，实际 %q", w.Body.String())
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/rid", nil)
	req.Header.Set("X-Request-ID", "bad id\nforged")
	r.ServeHTTP(w, req)
	if w.Body.String() == "bad id\nforged" || len(w.Body.String()) != 36 {
		t.Errorf("非法 ID 应替换为 UUID，实际 %q", w.Body.String())
	}
}
