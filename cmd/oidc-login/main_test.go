package main

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/YuWang03/kunyu-project-sub003/pkg/oidc"
)

func signedAccessToken(t *testing.T) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	claims := jwtv5.MapClaims{
		"sub":                "2f1c7b1e-0000-4000-8000-000000000001",
		"email":              "e001@example.com",
		"preferred_username": "E001",
		"realm_access":       map[string]interface{}{"roles": []string{"employee", "manager"}},
		"exp":                time.Now().Add(5 * time.Minute).Unix(),
	}
	s, err := jwtv5.NewWithClaims(jwtv5.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func fakeIdP(t *testing.T, accessToken string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")
		if r.PostForm.Get("password") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{
				"error":             "invalid_grant",
				"error_description": "Invalid user credentials",
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token":       accessToken,
			"refresh_token":      "refresh",
			"expires_in":         300,
			"refresh_expires_in": 1800,
			"token_type":         "Bearer",
			"scope":              "openid profile email",
		})
	}))
}

func TestRun_PrintsClaims(t *testing.T) {
	srv := fakeIdP(t, signedAccessToken(t))
	defer srv.Close()

	var out bytes.Buffer
	err := run(context.Background(), loginEnv{
		TokenEndpoint: srv.URL,
		ClientID:      "hr-portal",
		Username:      "E001",
		Password:      "secret",
	}, false, &out, zap.NewNop())
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "expires_in:          300")
	assert.Contains(t, text, "sub:                 2f1c7b1e-0000-4000-8000-000000000001")
	assert.Contains(t, text, "email:               e001@example.com")
	assert.Contains(t, text, "preferred_username:  E001")
	assert.Contains(t, text, "realm_access.roles:  employee, manager")
}

func TestRun_InvalidGrant(t *testing.T) {
	srv := fakeIdP(t, "unused")
	defer srv.Close()

	var out bytes.Buffer
	err := run(context.Background(), loginEnv{
		TokenEndpoint: srv.URL,
		ClientID:      "hr-portal",
		Username:      "E001",
		Password:      "wrong",
	}, false, &out, zap.NewNop())

	var errResp *oidc.ErrorResponse
	require.True(t, errors.As(err, &errResp))
	assert.Equal(t, "invalid_grant", errResp.Code)
	assert.Empty(t, out.String(), "失败时不应输出 Token 信息")
}

func TestRun_NoResponse(t *testing.T) {
	srv := fakeIdP(t, "unused")
	url := srv.URL
	srv.Close()

	err := run(context.Background(), loginEnv{
		TokenEndpoint: url,
		ClientID:      "hr-portal",
		Username:      "E001",
		Password:      "secret",
		Timeout:       time.Second,
	}, false, &bytes.Buffer{}, zap.NewNop())

	var noResp *oidc.NoResponseError
	assert.True(t, errors.As(err, &noResp))
}

func TestRun_MissingCredentials(t *testing.T) {
	err := run(context.Background(), loginEnv{TokenEndpoint: "http://127.0.0.1:1"}, false, &bytes.Buffer{}, zap.NewNop())
	assert.Error(t, err)
}
