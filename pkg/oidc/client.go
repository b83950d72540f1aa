package oidc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/YuWang03/kunyu-project-sub003/config"
)

// TokenResponse Token 端点成功响应
type TokenResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	ExpiresIn        int    `json:"expires_in"`
	RefreshExpiresIn int    `json:"refresh_expires_in"`
	TokenType        string `json:"token_type"`
	IDToken          string `json:"id_token,omitempty"`
	Scope            string `json:"scope,omitempty"`
}

// ── 三类失败 ──

// ErrorResponse 身份提供者返回的错误负载（如 invalid_grant）
type ErrorResponse struct {
	StatusCode  int    `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *ErrorResponse) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("oidc: %s (%d): %s", e.Code, e.StatusCode, e.Description)
	}
	return fmt.Sprintf("oidc: %s (%d)", e.Code, e.StatusCode)
}

// NoResponseError 请求已发出但未收到响应（网络层错误）
type NoResponseError struct {
	Err error
}

func (e *NoResponseError) Error() string { return "oidc: 身份提供者无响应: " + e.Err.Error() }
func (e *NoResponseError) Unwrap() error { return e.Err }

// RequestError 本地构造请求失败
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string { return "oidc: 构造请求失败: " + e.Err.Error() }
func (e *RequestError) Unwrap() error { return e.Err }

// IsInvalidGrant 账号或密码错误、refresh token 失效时返回 true
func IsInvalidGrant(err error) bool {
	var er *ErrorResponse
	return errors.As(err, &er) && er.Code == "invalid_grant"
}

// Client 身份提供者 Token 端点客户端。不做重试。
type Client struct {
	tokenURL     string
	clientID     string
	clientSecret string
	scope        string
	httpClient   *http.Client
	logger       *zap.Logger
}

// NewClient 根据 OIDC 设定创建客户端
func NewClient(cfg *config.OIDCConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		tokenURL:     cfg.TokenURL(),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		scope:        cfg.Scope,
		httpClient:   &http.Client{Timeout: timeout},
		logger:       logger,
	}
}

// TokenURL 返回实际使用的 Token 端点
func (c *Client) TokenURL() string { return c.tokenURL }

// PasswordGrant 以账号密码换取 Token
func (c *Client) PasswordGrant(ctx context.Context, username, password string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", username)
	form.Set("password", password)
	if c.scope != "" {
		form.Set("scope", c.scope)
	}
	return c.exchange(ctx, form)
}

// RefreshGrant 以 refresh token 换取新 Token
func (c *Client) RefreshGrant(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	return c.exchange(ctx, form)
}

func (c *Client) exchange(ctx context.Context, form url.Values) (*TokenResponse, error) {
	form.Set("client_id", c.clientID)
	if c.clientSecret != "" {
		form.Set("client_secret", c.clientSecret)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &RequestError{Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("身份提供者无响应",
			zap.String("grant_type", form.Get("grant_type")),
			zap.Error(err),
		)
		return nil, &NoResponseError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &NoResponseError{Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		er := &ErrorResponse{StatusCode: resp.StatusCode}
		if jsonErr := json.Unmarshal(body, er); jsonErr != nil || er.Code == "" {
			er.Code = "http_error"
			er.Description = strings.TrimSpace(string(body))
		}
		c.logger.Info("身份提供者拒绝请求",
			zap.String("grant_type", form.Get("grant_type")),
			zap.Int("status", resp.StatusCode),
			zap.String("error", er.Code),
		)
		return nil, er
	}

	var tr TokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("oidc: 解析 Token 响应失败: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("oidc: Token 响应缺少 access_token")
	}

	return &tr, nil
}
