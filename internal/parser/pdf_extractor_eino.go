package parser

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
	"github.com/rs/zerolog"

	"resume-docx-go/internal/logger"
)

// EinoPDFTextExtractor 使用 Eino PDF Parser 提取文本
type EinoPDFTextExtractor struct {
	parser  *pdf.PDFParser
	logger  zerolog.Logger
	timeout time.Duration
}

// EinoPDFOption PDF提取器的配置选项
type EinoPDFOption func(*EinoPDFTextExtractor)

// WithEinoLogger 配置自定义日志记录器
func WithEinoLogger(l zerolog.Logger) EinoPDFOption {
	return func(e *EinoPDFTextExtractor) {
		e.logger = l
	}
}

// WithEinoTimeout 配置单次解析的超时时间，<=0 表示不设超时
func WithEinoTimeout(d time.Duration) EinoPDFOption {
	return func(e *EinoPDFTextExtractor) {
		e.timeout = d
	}
}

// NewEinoPDFTextExtractor 初始化 Eino PDF 文本提取器
// 默认配置为不按页面分割，以获取整个文档的连续文本
func NewEinoPDFTextExtractor(ctx context.Context, options ...EinoPDFOption) (*EinoPDFTextExtractor, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{
		ToPages: false,
	})
	if err != nil {
		return nil, fmt.Errorf("创建Eino PDF解析器失败: %w", err)
	}

	extractor := &EinoPDFTextExtractor{
		parser:  p,
		logger:  logger.Component("pdf_extractor"),
		timeout: 30 * time.Second,
	}
	for _, option := range options {
		option(extractor)
	}
	return extractor, nil
}

// ExtractText 实现 TextExtractor
func (e *EinoPDFTextExtractor) ExtractText(ctx context.Context, data []byte, name string) (string, error) {
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		return "", fmt.Errorf("%w: %s 不是PDF文件", ErrInvalidDocument, name)
	}

	startTime := time.Now()
	e.logger.Debug().Str("uri", name).Int("bytes", len(data)).Msg("开始提取PDF文本")

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	docs, err := e.parser.Parse(ctx, bytes.NewReader(data),
		einoParser.WithURI(name),
		einoParser.WithExtraMeta(map[string]any{
			"source_file_name": name,
			"extraction_time":  startTime.Format(time.RFC3339),
		}),
	)
	duration := time.Since(startTime)
	if err != nil {
		e.logger.Warn().Err(err).Str("uri", name).Dur("duration", duration).Msg("PDF解析失败")
		return "", fmt.Errorf("%w: eino PDF解析失败 %s: %v", ErrInvalidDocument, name, err)
	}
	if len(docs) == 0 {
		return "", fmt.Errorf("%w: eino PDF解析无结果 %s", ErrInvalidDocument, name)
	}

	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		parts = append(parts, doc.Content)
	}
	text := strings.Join(parts, "\n")

	e.logger.Info().
		Str("uri", name).
		Int("documents", len(docs)).
		Int("chars", len(text)).
		Dur("duration", duration).
		Msg("PDF提取完成")
	return text, nil
}
