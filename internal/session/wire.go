package session

import (
	"context"
	"time"

	"resume-docx-go/internal/config"
	"resume-docx-go/internal/docxwriter"
	"resume-docx-go/internal/logger"
	"resume-docx-go/internal/parser"
	"resume-docx-go/internal/preview"
)

// ConverterFromConfig 按配置组装转换器。PDF 解析组件初始化失败时只记录警告，
// 之后导入 PDF 会得到 ErrDependencyMissing。
func ConverterFromConfig(ctx context.Context, cfg *config.Config) *Converter {
	log := logger.Component("wire")

	textParser := parser.NewTextParser(
		parser.WithContactScanLines(cfg.Parser.ContactScanLines),
		parser.WithDateRule(parser.ParseDateRuleMode(cfg.Parser.ExperienceDateRule)),
	)

	extractors := parser.NewExtractorRegistry()
	pdfTimeout := config.GetDuration(cfg.Parser.PDFTimeout, 30*time.Second)
	switch cfg.Parser.PDFBackend {
	case "tika":
		extractors.Register(".pdf", parser.NewTikaPDFTextExtractor(cfg.Parser.TikaURL, parser.WithTimeout(pdfTimeout)))
		log.Info().Str("url", cfg.Parser.TikaURL).Msg("使用Tika提取PDF文本")
	case "none":
		log.Info().Msg("未启用PDF导入")
	default:
		pdf, err := parser.NewEinoPDFTextExtractor(ctx,
			parser.WithEinoLogger(logger.Component("pdf_extractor")),
			parser.WithEinoTimeout(pdfTimeout),
		)
		if err != nil {
			log.Warn().Err(err).Msg("PDF解析组件不可用")
		} else {
			extractors.Register(".pdf", pdf)
		}
	}

	docOpts := docxwriter.OptionsFromConfig(cfg.Document)
	return NewConverter(
		WithTextParser(textParser),
		WithExtractors(extractors),
		WithDocumentOptions(docOpts),
		WithNativeRenderer(preview.NewDocxNativeRenderer(docOpts)),
		WithLogger(logger.Component("converter")),
	)
}
