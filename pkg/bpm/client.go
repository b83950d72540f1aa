package bpm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/YuWang03/kunyu-project-sub003/config"
	applogger "github.com/YuWang03/kunyu-project-sub003/pkg/logger"
)

// 签核决定
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// APIError BPM 返回的失败（HTTP 非 2xx 或业务码非 0）
type APIError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bpm: status=%d code=%d msg=%s", e.StatusCode, e.Code, e.Message)
}

// envelope BPM 统一响应
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type submitRequest struct {
	FormCode  string                 `json:"form_code"`
	Applicant string                 `json:"applicant"`
	Fields    map[string]interface{} `json:"fields"`
}

type signRequest struct {
	Approver string `json:"approver"`
	Decision string `json:"decision"`
	Comment  string `json:"comment,omitempty"`
}

type formState struct {
	FormID string `json:"form_id"`
	Status string `json:"status"`
}

// Client BPM 流程引擎客户端。
// 审批状态由 BPM 持有，这里只转交表单并原样返回状态字符串。
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient 根据 BPM 设定创建客户端
func NewClient(cfg *config.BPMConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// SubmitForm 送出表单，返回 BPM 表单编号与初始状态
func (c *Client) SubmitForm(ctx context.Context, formCode, applicant string, fields map[string]interface{}) (string, string, error) {
	var st formState
	err := c.do(ctx, http.MethodPost, "/api/forms", submitRequest{
		FormCode:  formCode,
		Applicant: applicant,
		Fields:    fields,
	}, &st)
	if err != nil {
		return "", "", err
	}
	if st.FormID == "" {
		return "", "", &APIError{StatusCode: http.StatusOK, Code: -1, Message: "响应缺少 form_id"}
	}

	c.logger.Info("BPM 表单已送出",
		zap.String("form_code", formCode),
		zap.String("bpm_form_id", st.FormID),
		zap.String("status", st.Status),
	)
	return st.FormID, st.Status, nil
}

// GetStatus 查询表单当前签核状态
func (c *Client) GetStatus(ctx context.Context, formID string) (string, error) {
	var st formState
	if err := c.do(ctx, http.MethodGet, "/api/forms/"+url.PathEscape(formID)+"/status", nil, &st); err != nil {
		return "", err
	}
	return st.Status, nil
}

// Sign 以签核者身份签核表单，返回签核后的状态
func (c *Client) Sign(ctx context.Context, formID, approver, decision, comment string) (string, error) {
	var st formState
	err := c.do(ctx, http.MethodPost, "/api/forms/"+url.PathEscape(formID)+"/sign", signRequest{
		Approver: approver,
		Decision: decision,
		Comment:  comment,
	}, &st)
	if err != nil {
		return "", err
	}
	return st.Status, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("bpm: 序列化请求失败: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("bpm: 构造请求失败: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rid := applogger.RequestID(ctx)
	if rid != "" {
		req.Header.Set("X-Request-ID", rid)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("BPM 请求失败",
			zap.String("request_id", rid),
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return fmt.Errorf("bpm: 请求失败: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("bpm: 读取响应失败: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 300 {
			return &APIError{StatusCode: resp.StatusCode, Code: -1, Message: strings.TrimSpace(string(raw))}
		}
		return fmt.Errorf("bpm: 解析响应失败: %w", err)
	}
	if resp.StatusCode >= 300 || env.Code != 0 {
		c.logger.Warn("BPM 返回失败",
			zap.String("request_id", rid),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.Int("code", env.Code),
			zap.String("msg", env.Message),
		)
		return &APIError{StatusCode: resp.StatusCode, Code: env.Code, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("bpm: 解析 data 失败: %w", err)
		}
	}
	return nil
}
