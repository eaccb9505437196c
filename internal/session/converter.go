package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"resume-docx-go/internal/codec"
	"resume-docx-go/internal/constants"
	"resume-docx-go/internal/docxwriter"
	"resume-docx-go/internal/layout"
	"resume-docx-go/internal/logger"
	"resume-docx-go/internal/parser"
	"resume-docx-go/internal/preview"
	"resume-docx-go/internal/types"
)

// ImportKind 导入内容的类型
type ImportKind string

const (
	// KindAuto 按文件扩展名和内容判断
	KindAuto ImportKind = ""
	// KindDocx 之前导出的表格版 docx
	KindDocx ImportKind = "docx"
	// KindText 纯文本（包括从 PDF/docx 提取的文本）
	KindText ImportKind = "text"
	// KindRecord 序列化的记录 (JSON/YAML)
	KindRecord ImportKind = "record"
)

// ParseImportKind 解析导入类型，空串为自动
func ParseImportKind(s string) (ImportKind, error) {
	switch k := ImportKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindAuto, KindDocx, KindText, KindRecord:
		return k, nil
	case "auto":
		return KindAuto, nil
	default:
		return "", fmt.Errorf("%w: 未知的导入类型 %q", ErrMalformedInput, s)
	}
}

// PreviewMode 预览方式
type PreviewMode string

const (
	// PreviewAuto 优先原生预览，失败时回退到 HTML
	PreviewAuto     PreviewMode = "auto"
	PreviewHTML     PreviewMode = "html"
	PreviewMarkdown PreviewMode = "markdown"
)

// Preview 预览结果
type Preview struct {
	Mode        PreviewMode `json:"mode"`
	ContentType string      `json:"content_type"`
	Body        string      `json:"body"`
	// Native 是否由原生渲染器生成
	Native bool `json:"native"`
}

// Export 导出结果
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Converter 无状态的转换流水线：字节→记录、记录→文档/记录/预览。
// 可被多个会话并发使用。
type Converter struct {
	textParser *parser.TextParser
	extractors *parser.ExtractorRegistry
	docOpts    docxwriter.Options
	native     preview.NativeRenderer
	logger     zerolog.Logger
}

// ConverterOption 转换器配置选项
type ConverterOption func(*Converter)

// WithTextParser 设置文本解析器
func WithTextParser(p *parser.TextParser) ConverterOption {
	return func(c *Converter) { c.textParser = p }
}

// WithExtractors 设置文本提取器注册表
func WithExtractors(r *parser.ExtractorRegistry) ConverterOption {
	return func(c *Converter) { c.extractors = r }
}

// WithDocumentOptions 设置导出文档的页面与字体
func WithDocumentOptions(o docxwriter.Options) ConverterOption {
	return func(c *Converter) { c.docOpts = o }
}

// WithNativeRenderer 设置原生预览组件，nil 表示不可用
func WithNativeRenderer(r preview.NativeRenderer) ConverterOption {
	return func(c *Converter) { c.native = r }
}

// WithLogger 设置日志记录器
func WithLogger(l zerolog.Logger) ConverterOption {
	return func(c *Converter) { c.logger = l }
}

// NewConverter 创建转换器
func NewConverter(options ...ConverterOption) *Converter {
	c := &Converter{
		textParser: parser.NewTextParser(),
		extractors: parser.NewExtractorRegistry(),
		docOpts:    docxwriter.DefaultOptions(),
		logger:     logger.Component("converter"),
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// resolveKind 自动模式下根据文件名判断导入类型
func resolveKind(kind ImportKind, name string) ImportKind {
	if kind != KindAuto {
		return kind
	}
	switch {
	case codec.IsRecordFile(name):
		return KindRecord
	case strings.EqualFold(filepath.Ext(name), constants.DocxExt):
		return KindDocx
	default:
		return KindText
	}
}

// Parse 把上传内容解析为一份全新的记录。失败时不返回任何部分结果。
func (c *Converter) Parse(ctx context.Context, data []byte, name string, kind ImportKind) (*types.ResumeRecord, error) {
	switch resolveKind(kind, name) {
	case KindRecord:
		rec, err := codec.Unmarshal(data, codec.DetectFormat(name, data))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}
		return rec, nil

	case KindDocx:
		root, err := parser.DecodeDocx(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}
		tables := root.FindAll("tbl")
		if len(tables) == 0 {
			// 不是本工具导出的文档，按普通文本启发式解析
			c.logger.Debug().Msg("docx中没有表格，回退到文本解析")
			return c.textParser.Parse(parser.DocumentText(root)), nil
		}
		return parser.ParseTables(tables), nil

	case KindText:
		if c.extractors == nil {
			return nil, fmt.Errorf("%w: 未配置文本提取器", ErrDependencyMissing)
		}
		text, err := c.extractors.ExtractText(ctx, data, name)
		if err != nil {
			isPDF := strings.EqualFold(filepath.Ext(name), ".pdf")
			if errors.Is(err, parser.ErrUnsupportedFormat) && isPDF {
				return nil, fmt.Errorf("%w: 未配置PDF解析组件", ErrDependencyMissing)
			}
			if errors.Is(err, parser.ErrUnsupportedFormat) && kind == KindText {
				// 调用方明确要求按文本导入时，未知扩展名按纯文本处理
				text, err = parser.PlainTextExtractor{}.ExtractText(ctx, data, name)
			}
		}
		if err != nil {
			if errors.Is(err, parser.ErrExtractorUnavailable) {
				return nil, fmt.Errorf("%w: %v", ErrDependencyMissing, err)
			}
			return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}
		return c.textParser.Parse(text), nil

	default:
		return nil, fmt.Errorf("%w: 未知的导入类型 %q", ErrMalformedInput, kind)
	}
}

// RenderDocx 把记录渲染为 docx
func (c *Converter) RenderDocx(rec *types.ResumeRecord) (Export, error) {
	opts := c.docOpts
	opts.Title = rec.Contact.Name
	opts.Author = rec.Contact.Name

	data, err := docxwriter.Encode(layout.Render(rec), opts)
	if err != nil {
		return Export{}, err
	}
	return Export{
		Filename:    codec.DocumentFilename(rec),
		ContentType: constants.MIMEDocx,
		Data:        data,
	}, nil
}

// RenderRecord 序列化记录
func (c *Converter) RenderRecord(rec *types.ResumeRecord, format codec.Format) (Export, error) {
	data, err := codec.Marshal(rec, format)
	if err != nil {
		return Export{}, err
	}
	return Export{
		Filename:    codec.RecordFilename(rec, format),
		ContentType: format.ContentType(),
		Data:        data,
	}, nil
}

// RenderPreview 生成预览。auto 模式下原生渲染的任何失败都只记录日志并回退到 HTML
func (c *Converter) RenderPreview(ctx context.Context, rec *types.ResumeRecord, mode PreviewMode) (Preview, error) {
	switch mode {
	case PreviewMarkdown:
		return Preview{Mode: mode, ContentType: constants.MIMEText, Body: preview.Markdown(rec)}, nil
	case PreviewAuto, "":
		if c.native != nil {
			body, err := c.native.RenderNative(ctx, rec)
			if err == nil {
				return Preview{Mode: PreviewAuto, ContentType: constants.MIMEHTML, Body: body, Native: true}, nil
			}
			c.logger.Warn().Err(err).Msg("原生预览失败，回退到HTML预览")
		}
		fallthrough
	case PreviewHTML:
		body, err := preview.HTML(rec)
		if err != nil {
			return Preview{}, err
		}
		if mode == "" {
			mode = PreviewAuto
		}
		return Preview{Mode: mode, ContentType: constants.MIMEHTML, Body: body}, nil
	default:
		return Preview{}, fmt.Errorf("%w: 未知的预览方式 %q", ErrMalformedInput, mode)
	}
}
