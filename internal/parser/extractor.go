package parser

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"
)

// TextExtractor 从文档字节中提取纯文本，段落之间以换行分隔
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte, name string) (string, error)
}

// PlainTextExtractor 处理 .txt/.md 等纯文本文件
type PlainTextExtractor struct{}

// ExtractText 实现 TextExtractor，要求内容为合法 UTF-8
func (PlainTextExtractor) ExtractText(_ context.Context, data []byte, name string) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s 不是有效的UTF-8文本", ErrInvalidDocument, name)
	}
	return string(data), nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ExtractorRegistry 按文件扩展名选择文本提取器
type ExtractorRegistry struct {
	mu    sync.RWMutex
	byExt map[string]TextExtractor
}

// NewExtractorRegistry 创建注册表，默认注册纯文本和 docx 提取器。
// PDF 提取器依赖外部解析组件，需要调用方显式注册。
func NewExtractorRegistry() *ExtractorRegistry {
	r := &ExtractorRegistry{byExt: make(map[string]TextExtractor)}
	r.Register(".txt", PlainTextExtractor{})
	r.Register(".md", PlainTextExtractor{})
	r.Register(".docx", DocxTextExtractor{})
	return r
}

// Register 注册或替换某扩展名的提取器
func (r *ExtractorRegistry) Register(ext string, e TextExtractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byExt[normalizeExt(ext)] = e
}

// Lookup 按文件名查找提取器
func (r *ExtractorRegistry) Lookup(name string) (TextExtractor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byExt[normalizeExt(filepath.Ext(name))]
	return e, ok
}

// ExtractText 按文件名分派到对应的提取器
func (r *ExtractorRegistry) ExtractText(ctx context.Context, data []byte, name string) (string, error) {
	e, ok := r.Lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(name))
	}
	return e.ExtractText(ctx, data, name)
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
