package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOIDCConfig_DerivedURLs(t *testing.T) {
	c := OIDCConfig{Authority: "https://sso.example.com/", Realm: "hr"}

	if got := c.IssuerURL(); got != "https://sso.example.com/realms/hr" {
		t.Errorf("Issuer 推导错误: %s", got)
	}
	if got := c.TokenURL(); got != "https://sso.example.com/realms/hr/protocol/openid-connect/token" {
		t.Errorf("Token 端点推导错误: %s", got)
	}
	if got := c.JWKSEndpoint(); got != "https://sso.example.com/realms/hr/protocol/openid-connect/certs" {
		t.Errorf("JWKS 端点推导错误: %s", got)
	}

	c.TokenEndpoint = "https://idp.internal/token"
	c.JWKSURL = "https://idp.internal/keys"
	c.Issuer = "https://idp.internal"
	if c.TokenURL() != c.TokenEndpoint || c.JWKSEndpoint() != c.JWKSURL || c.IssuerURL() != c.Issuer {
		t.Error("显式设定应优先于推导")
	}
}

func TestFTPConfig_AttachmentPath(t *testing.T) {
	c := FTPConfig{Host: "ftp.example.com", Username: "hr", BasePath: "/attachments"}

	if got := c.AttachmentPath("form-1", "receipt.pdf"); got != "/attachments/form-1/receipt.pdf" {
		t.Errorf("路径错误: %s", got)
	}
	if got := c.AttachmentPath("form-1", "../../etc/passwd"); got != "/attachments/form-1/passwd" {
		t.Errorf("文件名应去除目录部分，实际 %s", got)
	}

	url := c.AttachmentURL("/attachments/form-1/receipt.pdf")
	if url != "ftp://hr@ftp.example.com:21/attachments/form-1/receipt.pdf" {
		t.Errorf("URL 错误: %s", url)
	}

	c.Password = "s3cret"
	if strings.Contains(c.AttachmentURL("/x"), "s3cret") {
		t.Error("URL 不应包含密码")
	}
}

func validConfig() Config {
	return Config{
		Server: ServerConfig{Port: 8080},
		OIDC:   OIDCConfig{Authority: "https://sso.example.com", ClientID: "hr-portal"},
		BPM:    BPMConfig{BaseURL: "https://bpm.example.com/api"},
	}
}

func TestConfig_Validate(t *testing.T) {
	c := validConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("期望通过，实际 %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"端口越界", func(c *Config) { c.Server.Port = 70000 }},
		{"缺少身份提供者", func(c *Config) { c.OIDC.Authority = "" }},
		{"缺少 client", func(c *Config) { c.OIDC.ClientID = "" }},
		{"缺少 BPM", func(c *Config) { c.BPM.BaseURL = "" }},
		{"BPM 地址无效", func(c *Config) { c.BPM.BaseURL = "not a url" }},
	}
	for _, tc := range cases {
		c := validConfig()
		tc.mutate(&c)
		if err := c.Validate(); err == nil {
			t.Errorf("%s: 期望校验失败", tc.name)
		}
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
oidc:
  authority: https://sso.example.com
  realm: hr
  client_id: hr-portal
bpm:
  base_url: https://bpm.example.com/api
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("写入配置失败: %v", err)
	}
	t.Setenv("HR_BPM_TOKEN", "secret-token")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("加载失败: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("期望端口 9090，实际 %d", cfg.Server.Port)
	}
	if cfg.BPM.Token != "secret-token" {
		t.Errorf("环境变量应覆盖配置，实际 %q", cfg.BPM.Token)
	}
	if cfg.BPM.OvertimeFormCode != "OVERTIME" || cfg.FTP.BasePath != "/attachments" {
		t.Error("默认值未生效")
	}
	if cfg.OIDC.Timeout.Seconds() != 10 {
		t.Errorf("期望 OIDC 超时 10s，实际 %v", cfg.OIDC.Timeout)
	}
}
