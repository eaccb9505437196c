package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 应用程序配置
type Config struct {
	// HTTP 服务配置
	Server ServerConfig `yaml:"server"`

	// 日志配置
	Logger LoggerConfig `yaml:"logger"`

	// 文本/表格解析配置
	Parser ParserConfig `yaml:"parser"`

	// 导出文档排版配置
	Document DocumentConfig `yaml:"document"`

	// 会话存储配置
	Session SessionConfig `yaml:"session"`

	// Redis配置 (session.backend = redis 时使用)
	Redis RedisConfig `yaml:"redis"`

	// MinIO配置 (export.sink = minio 时使用)
	MinIO MinIOConfig `yaml:"minio"`

	// 导出归档配置
	Export ExportConfig `yaml:"export"`

	// 链路追踪配置
	Tracing TracingConfig `yaml:"tracing"`
}

// ServerConfig 定义服务器配置
type ServerConfig struct {
	Address     string `yaml:"address"`       // 例如 ":8080" or "0.0.0.0:8080"
	APIKey      string `yaml:"api_key"`       // 非空时所有 /api/v1/sessions 接口需要 Bearer 认证
	MaxUploadMB int    `yaml:"max_upload_mb"` // 上传文件大小上限(MB)
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level        string `yaml:"level"`         // debug, info, warn, error
	Format       string `yaml:"format"`        // json, pretty
	TimeFormat   string `yaml:"time_format"`   // 时间格式
	ReportCaller bool   `yaml:"report_caller"` // 是否报告调用位置
}

// ParserConfig 启发式解析配置
type ParserConfig struct {
	ContactScanLines int `yaml:"contact_scan_lines"` // 在前N行中查找邮箱/电话/地址
	// ExperienceDateRule 工作经历日期行判定规则: literal | strict
	ExperienceDateRule string `yaml:"experience_date_rule"`
	// PDFBackend PDF文本提取方式: eino | tika | none
	PDFBackend string `yaml:"pdf_backend"`
	TikaURL    string `yaml:"tika_url"`    // pdf_backend = tika 时使用
	PDFTimeout string `yaml:"pdf_timeout"` // 单个PDF的提取超时，如 30s
}

// DocumentConfig 导出文档的页面与字体
type DocumentConfig struct {
	MarginTwips     int    `yaml:"margin_twips"`      // 页边距，1440 = 1 英寸
	BodyFont        string `yaml:"body_font"`         // 正文字体
	BodySizeHalfPt  int    `yaml:"body_size_half_pt"` // 正文字号(半磅)，22 = 11pt
	HeaderFont      string `yaml:"header_font"`       // 标题字体
	HeaderSizeHalf  int    `yaml:"header_size_half_pt"`
	NameSizeHalfPt  int    `yaml:"name_size_half_pt"`
	LineSpacing     int    `yaml:"line_spacing"` // 240 = 单倍行距
	PageWidthTwips  int    `yaml:"page_width_twips"`
	PageHeightTwips int    `yaml:"page_height_twips"`
}

// SessionConfig 会话存储配置
type SessionConfig struct {
	Backend string `yaml:"backend"` // memory | redis
	TTL     string `yaml:"ttl"`     // 例如 "24h"
}

// RedisConfig holds configuration for Redis
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// 连接池设置
	PoolSize     int `yaml:"pool_size"`
	MinIdleConns int `yaml:"min_idle_conns"`
	// 超时设置
	DialTimeoutSeconds  int `yaml:"dial_timeout_seconds"`
	ReadTimeoutSeconds  int `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int `yaml:"write_timeout_seconds"`
	MaxRetries          int `yaml:"max_retries"`
	// 是否启用 OpenTelemetry 钩子
	EnableTracing bool `yaml:"enable_tracing"`
}

// MinIOConfig MinIO配置结构
type MinIOConfig struct {
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"accessKeyID"`
	SecretAccessKey string `yaml:"secretAccessKey"`
	UseSSL          bool   `yaml:"useSSL"`
	BucketName      string `yaml:"bucketName"`
	Location        string `yaml:"location"` // 可选，存储桶区域
	// 导出对象过期天数，0 表示不设置生命周期
	ExportExpireDays int `yaml:"export_expire_days"`
	// 预签名下载链接有效期，例如 "15m"
	PresignExpiry string `yaml:"presign_expiry"`
}

// ExportConfig 导出归档
type ExportConfig struct {
	Sink string `yaml:"sink"` // none | file | minio
	Dir  string `yaml:"dir"`  // sink = file 时的输出目录
}

// TracingConfig OpenTelemetry 导出配置，未启用时 span 由全局 noop provider 丢弃
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"` // OTLP gRPC 地址，例如 "localhost:4317"
	Insecure    bool    `yaml:"insecure"`
	ServiceName string  `yaml:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio"` // 0~1，采样比例
}

// LoadConfig 从文件加载配置
// configPath 为空时在常见位置查找 config.yaml，都找不到则使用默认配置
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		searchPaths := []string{
			"config.yaml",
			"./config/config.yaml",
			"../config.yaml",
			filepath.Join(os.Getenv("HOME"), ".resume-docx", "config.yaml"),
		}
		if execPath, err := os.Executable(); err == nil {
			searchPaths = append(searchPaths, filepath.Join(filepath.Dir(execPath), "config.yaml"))
		}
		for _, path := range searchPaths {
			if _, err := os.Stat(path); err == nil {
				configPath = path
				break
			}
		}
		if configPath == "" {
			cfg := createDefaultConfig()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
	}

	if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("配置文件不存在: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	cfg := createDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides 从环境变量覆盖配置（如果存在）
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RESUME_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("RESUME_API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}
	if v := os.Getenv("RESUME_REDIS_ADDRESS"); v != "" {
		cfg.Redis.Address = v
	}
	if v := os.Getenv("RESUME_TIKA_URL"); v != "" {
		cfg.Parser.TikaURL = v
		cfg.Parser.PDFBackend = "tika"
	}
	if v := os.Getenv("RESUME_OTLP_ENDPOINT"); v != "" {
		cfg.Tracing.Endpoint = v
		cfg.Tracing.Enabled = true
	}
	if v := os.Getenv("RESUME_LOG_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
}

// applyDefaults YAML 中显式写了零值时补回默认值
func applyDefaults(cfg *Config) {
	def := createDefaultConfig()
	if cfg.Server.Address == "" {
		cfg.Server.Address = def.Server.Address
	}
	if cfg.Server.MaxUploadMB <= 0 {
		cfg.Server.MaxUploadMB = def.Server.MaxUploadMB
	}
	if cfg.Parser.ContactScanLines <= 0 {
		cfg.Parser.ContactScanLines = def.Parser.ContactScanLines
	}
	if cfg.Parser.ExperienceDateRule == "" {
		cfg.Parser.ExperienceDateRule = def.Parser.ExperienceDateRule
	}
	if cfg.Parser.PDFBackend == "" {
		cfg.Parser.PDFBackend = def.Parser.PDFBackend
	}
	if cfg.Parser.PDFTimeout == "" {
		cfg.Parser.PDFTimeout = def.Parser.PDFTimeout
	}
	if cfg.Document.MarginTwips <= 0 {
		cfg.Document.MarginTwips = def.Document.MarginTwips
	}
	if cfg.Document.BodyFont == "" {
		cfg.Document.BodyFont = def.Document.BodyFont
	}
	if cfg.Document.BodySizeHalfPt <= 0 {
		cfg.Document.BodySizeHalfPt = def.Document.BodySizeHalfPt
	}
	if cfg.Document.HeaderFont == "" {
		cfg.Document.HeaderFont = def.Document.HeaderFont
	}
	if cfg.Document.HeaderSizeHalf <= 0 {
		cfg.Document.HeaderSizeHalf = def.Document.HeaderSizeHalf
	}
	if cfg.Document.NameSizeHalfPt <= 0 {
		cfg.Document.NameSizeHalfPt = def.Document.NameSizeHalfPt
	}
	if cfg.Document.LineSpacing <= 0 {
		cfg.Document.LineSpacing = def.Document.LineSpacing
	}
	if cfg.Document.PageWidthTwips <= 0 {
		cfg.Document.PageWidthTwips = def.Document.PageWidthTwips
	}
	if cfg.Document.PageHeightTwips <= 0 {
		cfg.Document.PageHeightTwips = def.Document.PageHeightTwips
	}
	if cfg.Session.Backend == "" {
		cfg.Session.Backend = def.Session.Backend
	}
	if cfg.Session.TTL == "" {
		cfg.Session.TTL = def.Session.TTL
	}
	if cfg.Export.Sink == "" {
		cfg.Export.Sink = def.Export.Sink
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = def.Tracing.ServiceName
	}
	if cfg.Tracing.SampleRatio <= 0 || cfg.Tracing.SampleRatio > 1 {
		cfg.Tracing.SampleRatio = def.Tracing.SampleRatio
	}
}

// Validate 检查枚举类配置项
func (c *Config) Validate() error {
	switch c.Session.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("未知的会话存储类型: %q", c.Session.Backend)
	}
	if c.Session.Backend == "redis" && c.Redis.Address == "" {
		return fmt.Errorf("session.backend=redis 时必须配置 redis.address")
	}
	switch c.Export.Sink {
	case "none", "file", "minio":
	default:
		return fmt.Errorf("未知的导出归档类型: %q", c.Export.Sink)
	}
	switch strings.ToLower(c.Parser.ExperienceDateRule) {
	case "literal", "strict":
	default:
		return fmt.Errorf("未知的日期判定规则: %q", c.Parser.ExperienceDateRule)
	}
	switch c.Parser.PDFBackend {
	case "eino", "none":
	case "tika":
		if c.Parser.TikaURL == "" {
			return fmt.Errorf("parser.pdf_backend=tika 时必须配置 parser.tika_url")
		}
	default:
		return fmt.Errorf("未知的PDF解析方式: %q", c.Parser.PDFBackend)
	}
	if _, err := time.ParseDuration(c.Parser.PDFTimeout); err != nil {
		return fmt.Errorf("parser.pdf_timeout 格式错误: %w", err)
	}
	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		return fmt.Errorf("tracing.enabled=true 时必须配置 tracing.endpoint")
	}
	return nil
}

// createDefaultConfig 默认配置
func createDefaultConfig() *Config {
	cfg := &Config{}

	cfg.Server.Address = ":8080"
	cfg.Server.MaxUploadMB = 10

	cfg.Logger.Level = "info"
	cfg.Logger.Format = "pretty"
	cfg.Logger.TimeFormat = "2006-01-02 15:04:05"
	cfg.Logger.ReportCaller = false

	cfg.Parser.ContactScanLines = 10
	cfg.Parser.ExperienceDateRule = "literal"
	cfg.Parser.PDFBackend = "eino"
	cfg.Parser.TikaURL = "http://localhost:9998"
	cfg.Parser.PDFTimeout = "30s"

	cfg.Document.MarginTwips = 1440
	cfg.Document.BodyFont = "Times New Roman"
	cfg.Document.BodySizeHalfPt = 22
	cfg.Document.HeaderFont = "Calibri"
	cfg.Document.HeaderSizeHalf = 28
	cfg.Document.NameSizeHalfPt = 32
	cfg.Document.LineSpacing = 276
	cfg.Document.PageWidthTwips = 12240
	cfg.Document.PageHeightTwips = 15840

	cfg.Session.Backend = "memory"
	cfg.Session.TTL = "24h"

	cfg.Redis.Address = ""
	cfg.Redis.PoolSize = 10
	cfg.Redis.MinIdleConns = 2
	cfg.Redis.DialTimeoutSeconds = 5
	cfg.Redis.ReadTimeoutSeconds = 3
	cfg.Redis.WriteTimeoutSeconds = 3
	cfg.Redis.MaxRetries = 3
	cfg.Redis.EnableTracing = true

	cfg.MinIO.Endpoint = "localhost:9000"
	cfg.MinIO.BucketName = "resume-exports"
	cfg.MinIO.PresignExpiry = "15m"

	cfg.Export.Sink = "none"
	cfg.Export.Dir = "exports"

	cfg.Tracing.Enabled = false
	cfg.Tracing.Endpoint = "localhost:4317"
	cfg.Tracing.Insecure = true
	cfg.Tracing.ServiceName = "resume-docx-server"
	cfg.Tracing.SampleRatio = 1.0

	return cfg
}

// DefaultConfig 返回默认配置的副本
func DefaultConfig() *Config {
	return createDefaultConfig()
}

// CreateSampleConfig 创建一个示例配置文件
func CreateSampleConfig(filePath string) error {
	if _, err := os.Stat(filePath); err == nil {
		return fmt.Errorf("文件 '%s' 已存在，不会覆盖", filePath)
	}

	data, err := yaml.Marshal(createDefaultConfig())
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("写入示例配置文件 '%s' 失败: %w", filePath, err)
	}
	return nil
}

// SessionTTL 会话过期时间
func (c *Config) SessionTTL() time.Duration {
	return GetDuration(c.Session.TTL, 24*time.Hour)
}

// GetDuration utility to parse duration strings from config
func GetDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	if durationStr == "" {
		return defaultDuration
	}
	d, err := time.ParseDuration(durationStr)
	if err != nil {
		return defaultDuration
	}
	return d
}
