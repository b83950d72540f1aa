package config

import (
	"fmt"
	"net"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
	BPM      BPMConfig      `mapstructure:"bpm"`
	FTP      FTPConfig      `mapstructure:"ftp"`
	OIDC     OIDCConfig     `mapstructure:"oidc"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port         int        `mapstructure:"port"`
	MaxBodyBytes int64      `mapstructure:"max_body_bytes"`
	CORS         CORSConfig `mapstructure:"cors"`
	LoginLimit   int        `mapstructure:"login_limit"` // 每分钟每 IP 登录次数上限
	CookieSecure bool       `mapstructure:"cookie_secure"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig 人事资料库（PostgreSQL）配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 分钟
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 配置（Token 黑名单、登录限流）
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ── 外部系统设定 ──

// BPMConfig BPM 流程引擎设定
type BPMConfig struct {
	BaseURL          string        `mapstructure:"base_url"`
	Token            string        `mapstructure:"token"`
	Timeout          time.Duration `mapstructure:"timeout"`
	OvertimeFormCode string        `mapstructure:"overtime_form_code"`
	OutingFormCode   string        `mapstructure:"outing_form_code"`
}

// FTPConfig 表单附件 FTP 存放设定。
// 仅提供路径与凭证，上传下载由外部附件服务负责。
type FTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	BasePath string `mapstructure:"base_path"`
	Passive  bool   `mapstructure:"passive"`
}

// Addr 返回 host:port
func (c *FTPConfig) Addr() string {
	port := c.Port
	if port <= 0 {
		port = 21
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(port))
}

// AttachmentPath 计算表单附件在 FTP 上的相对路径: <base>/<formID>/<fileName>
func (c *FTPConfig) AttachmentPath(formID, fileName string) string {
	return path.Join("/", c.BasePath, formID, path.Base("/"+fileName))
}

// AttachmentURL 返回附件的 ftp:// 定位地址（不含密码）
func (c *FTPConfig) AttachmentURL(relPath string) string {
	u := url.URL{
		Scheme: "ftp",
		Host:   c.Addr(),
		Path:   relPath,
	}
	if c.Username != "" {
		u.User = url.User(c.Username)
	}
	return u.String()
}

// OIDCConfig 身份提供者（OIDC）设定。
// TokenEndpoint / JWKSURL / Issuer 留空时按 Keycloak 目录结构从 Authority + Realm 推导。
type OIDCConfig struct {
	Authority     string        `mapstructure:"authority"`
	Realm         string        `mapstructure:"realm"`
	ClientID      string        `mapstructure:"client_id"`
	ClientSecret  string        `mapstructure:"client_secret"`
	Scope         string        `mapstructure:"scope"`
	TokenEndpoint string        `mapstructure:"token_endpoint"`
	JWKSURL       string        `mapstructure:"jwks_url"`
	Issuer        string        `mapstructure:"issuer"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// IssuerURL 返回 Token 签发者
func (c *OIDCConfig) IssuerURL() string {
	if c.Issuer != "" {
		return c.Issuer
	}
	base := strings.TrimRight(c.Authority, "/")
	if c.Realm == "" {
		return base
	}
	return base + "/realms/" + c.Realm
}

// TokenURL 返回 Token 端点
func (c *OIDCConfig) TokenURL() string {
	if c.TokenEndpoint != "" {
		return c.TokenEndpoint
	}
	return c.IssuerURL() + "/protocol/openid-connect/token"
}

// JWKSEndpoint 返回签名公钥集合地址
func (c *OIDCConfig) JWKSEndpoint() string {
	if c.JWKSURL != "" {
		return c.JWKSURL
	}
	return c.IssuerURL() + "/protocol/openid-connect/certs"
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_body_bytes", 10<<20)
	v.SetDefault("server.login_limit", 10)
	v.SetDefault("server.cookie_secure", false)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "hr")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Asia/Taipei")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("bpm.base_url", "")
	v.SetDefault("bpm.token", "")
	v.SetDefault("bpm.timeout", "15s")
	v.SetDefault("bpm.overtime_form_code", "OVERTIME")
	v.SetDefault("bpm.outing_form_code", "OUTING")

	v.SetDefault("ftp.host", "")
	v.SetDefault("ftp.port", 21)
	v.SetDefault("ftp.username", "")
	v.SetDefault("ftp.password", "")
	v.SetDefault("ftp.base_path", "/attachments")
	v.SetDefault("ftp.passive", true)

	// 留空的键也需登记，环境变量才能覆盖
	v.SetDefault("oidc.authority", "")
	v.SetDefault("oidc.realm", "")
	v.SetDefault("oidc.client_id", "")
	v.SetDefault("oidc.client_secret", "")
	v.SetDefault("oidc.token_endpoint", "")
	v.SetDefault("oidc.jwks_url", "")
	v.SetDefault("oidc.issuer", "")
	v.SetDefault("oidc.scope", "openid profile email")
	v.SetDefault("oidc.timeout", "10s")

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("HR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if c.OIDC.Authority == "" && c.OIDC.TokenEndpoint == "" {
		return fmt.Errorf("配置校验失败: oidc.authority 与 oidc.token_endpoint 不能同时为空")
	}
	if c.OIDC.ClientID == "" {
		return fmt.Errorf("配置校验失败: oidc.client_id 不能为空")
	}
	if c.BPM.BaseURL == "" {
		return fmt.Errorf("配置校验失败: bpm.base_url 不能为空")
	}
	if _, err := url.ParseRequestURI(c.BPM.BaseURL); err != nil {
		return fmt.Errorf("配置校验失败: bpm.base_url 格式无效: %w", err)
	}
	return nil
}
