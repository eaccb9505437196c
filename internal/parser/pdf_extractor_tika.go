package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"resume-docx-go/internal/logger"
	"resume-docx-go/internal/tracing"
)

// TikaPDFTextExtractor 是基于 Apache Tika 服务的 PDF 文本提取器
type TikaPDFTextExtractor struct {
	// Tika服务器地址，例如 http://localhost:9998
	ServerURL string
	// HTTP客户端，可配置超时等参数
	Client *http.Client
	// 是否提取链接注释文本
	extractAnnotations bool
	logger             zerolog.Logger
}

// TikaOption 定义配置选项函数
type TikaOption func(*TikaPDFTextExtractor)

// WithAnnotations 配置是否提取PDF链接注释文本
func WithAnnotations(extract bool) TikaOption {
	return func(e *TikaPDFTextExtractor) {
		e.extractAnnotations = extract
	}
}

// WithTikaLogger 配置自定义日志记录器
func WithTikaLogger(l zerolog.Logger) TikaOption {
	return func(e *TikaPDFTextExtractor) {
		e.logger = l
	}
}

// WithTimeout 配置HTTP客户端超时时间
func WithTimeout(timeout time.Duration) TikaOption {
	return func(e *TikaPDFTextExtractor) {
		e.Client.Timeout = timeout
	}
}

var _ TextExtractor = (*TikaPDFTextExtractor)(nil)

// NewTikaPDFTextExtractor 创建一个新的 Tika PDF 文本提取器
func NewTikaPDFTextExtractor(serverURL string, options ...TikaOption) *TikaPDFTextExtractor {
	extractor := &TikaPDFTextExtractor{
		ServerURL:          strings.TrimRight(serverURL, "/"),
		Client:             &http.Client{Timeout: 60 * time.Second},
		extractAnnotations: true,
		logger:             logger.Component("tika_extractor"),
	}
	for _, option := range options {
		option(extractor)
	}
	return extractor
}

// ExtractText 实现 TextExtractor。Tika 返回的纯文本按行规整，去掉空行
func (e *TikaPDFTextExtractor) ExtractText(ctx context.Context, data []byte, name string) (string, error) {
	startTime := time.Now()
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		return "", fmt.Errorf("%w: %s 不是PDF文件", ErrInvalidDocument, name)
	}

	body, err := e.put(ctx, "/tika", "text/plain", data, name)
	if err != nil {
		e.logger.Error().Err(err).Str("file", name).Msg("Tika提取PDF失败")
		return "", err
	}

	text := normalizeExtractedText(string(body))
	if ev := e.logger.Debug(); ev.Enabled() {
		// 元数据只用于调试日志，读取失败不影响导入
		meta, err := e.Metadata(ctx, data, name)
		if err != nil {
			e.logger.Debug().Err(err).Str("file", name).Msg("读取PDF元数据失败")
		}
		ev.Str("file", name).
			Int("chars", len(text)).
			Str("pages", metadataString(meta, "xmpTPg:NPages")).
			Str("title", tracing.MaskPII(metadataTitle(meta))).
			Dur("duration", time.Since(startTime)).
			Msg("PDF文本提取完成")
	}
	return text, nil
}

// Metadata 读取文档元数据，只保留关键字段
func (e *TikaPDFTextExtractor) Metadata(ctx context.Context, data []byte, name string) (map[string]interface{}, error) {
	body, err := e.put(ctx, "/meta", "application/json", data, name)
	if err != nil {
		return nil, err
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("解析元数据JSON失败: %w", err)
	}
	metadata := make(map[string]interface{})
	for k, v := range raw {
		if isImportantMetadata(k) {
			metadata[k] = v
		}
	}
	return metadata, nil
}

func (e *TikaPDFTextExtractor) put(ctx context.Context, path, accept string, data []byte, name string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, e.ServerURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/pdf")
	req.Header.Set("Accept", accept)
	if name != "" {
		req.Header.Set("X-Tika-Resource-Name", name)
	}
	if !e.extractAnnotations {
		req.Header.Set("X-Tika-PDFExtractAnnotationText", "false")
	}

	resp, err := e.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: 发送请求到Tika服务器失败: %v", ErrExtractorUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return nil, fmt.Errorf("%w: tika无法解析 %s", ErrInvalidDocument, name)
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%w: tika服务器返回错误状态码: %d", ErrExtractorUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("tika服务器返回错误状态码: %d", resp.StatusCode)
	}

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取Tika响应失败: %w", err)
	}
	return out, nil
}

// 判断元数据字段是否重要
func isImportantMetadata(key string) bool {
	importantKeys := map[string]bool{
		"pdf:PDFVersion":      true,
		"xmpTPg:NPages":       true,
		"dcterms:created":     true,
		"language":            true,
		"dc:title":            true,
		"Content-Type":        true,
		"pdf:docinfo:title":   true,
		"pdf:docinfo:created": true,
	}
	return importantKeys[key]
}

func metadataString(meta map[string]interface{}, key string) string {
	switch v := meta[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case []interface{}:
		// Tika 对重复字段返回数组，取第一个值
		if len(v) > 0 {
			return fmt.Sprint(v[0])
		}
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func metadataTitle(meta map[string]interface{}) string {
	if title := metadataString(meta, "dc:title"); title != "" {
		return title
	}
	return metadataString(meta, "pdf:docinfo:title")
}

// normalizeExtractedText 去掉 Tika 输出中的空行和行尾空白
func normalizeExtractedText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.TrimRight(line, " \t ")
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
