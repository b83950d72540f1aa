package router

import (
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/YuWang03/kunyu-project-sub003/config"
	"github.com/YuWang03/kunyu-project-sub003/internal/api/handler"
	"github.com/YuWang03/kunyu-project-sub003/internal/service"
	"github.com/YuWang03/kunyu-project-sub003/pkg/jwt"
)

const testIssuer = "https://idp.example.com/realms/hr"

// newTestRouter 服务层留空：以下用例都在进入 Handler 之前结束
func newTestRouter(t *testing.T) (http.Handler, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("生成 RSA 密钥失败: %v", err)
	}
	verifier := jwt.NewVerifier(func(*jwtv5.Token) (interface{}, error) {
		return &key.PublicKey, nil
	}, testIssuer)

	cfg := &config.Config{Server: config.ServerConfig{
		MaxBodyBytes: 1 << 10,
		CORS:         config.CORSConfig{AllowOrigins: []string{"https://hr.example.com"}},
	}}
	h := handler.NewHandler(cfg, &service.Service{})
	return Setup(cfg, h, verifier, nil, zap.NewNop()), key
}

func bearer(t *testing.T, key *rsa.PrivateKey, uid string, roles ...string) string {
	t.Helper()
	claims := jwt.Claims{
		PreferredUsername: uid,
		RealmAccess:       jwt.RealmAccess{Roles: roles},
		RegisteredClaims: jwtv5.RegisteredClaims{
			Subject:   "sub-" + uid,
			Issuer:    testIssuer,
			ExpiresAt: jwtv5.NewNumericDate(time.Now().Add(5 * time.Minute)),
		},
	}
	s, err := jwtv5.NewWithClaims(jwtv5.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("签名失败: %v", err)
	}
	return "Bearer " + s
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("期望 200，实际 %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("期望返回 X-Request-ID")
	}
	if w.Header().Get("Cache-Control") != "no-store" {
		t.Error("期望禁止缓存")
	}
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, path := range []string{"/api/v1/attendance", "/api/v1/overtime", "/api/v1/outings", "/api/v1/auth/me"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: 期望 401，实际 %d", path, w.Code)
		}
	}
}

func TestApproval_RequiresManager(t *testing.T) {
	r, key := newTestRouter(t)

	for _, path := range []string{"/api/v1/overtime/x/approval", "/api/v1/outings/x/approval"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", path, nil)
		req.Header.Set("Authorization", bearer(t, key, "E001", "employee"))
		r.ServeHTTP(w, req)
		if w.Code != http.StatusForbidden {
			t.Errorf("%s: 期望 403，实际 %d", path, w.Code)
		}
	}
}

func TestCORS_Preflight(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("OPTIONS", "/api/v1/auth/login", nil)
	req.Header.Set("Origin", "https://hr.example.com")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("期望 204，实际 %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "https://hr.example.com" {
		t.Error("白名单来源应被允许")
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest("OPTIONS", "/api/v1/auth/login", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	r.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("非白名单来源不应被允许")
	}
}

func TestPanicRecovery(t *testing.T) {
	r, key := newTestRouter(t)

	// 服务层为 nil，进入 Handler 后会 panic
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/attendance/codes", nil)
	req.Header.Set("Authorization", bearer(t, key, "E001", "employee"))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("期望 500，实际 %d", w.Code)
	}
}
