package docxwriter

import "resume-docx-go/internal/config"

// Options 页面与字体设置。所有长度单位为 twip（1/1440 英寸），字号单位为半磅
type Options struct {
	PageWidthTwips  int
	PageHeightTwips int
	MarginTwips     int

	BodyFont         string
	BodySizeHalfPt   int
	HeaderFont       string
	HeaderSizeHalfPt int
	NameSizeHalfPt   int
	// LineSpacing 行距，240 为单倍
	LineSpacing int

	// Title/Author 写入 docProps/core.xml
	Title  string
	Author string
}

// DefaultOptions Letter 纸、1 英寸页边距、Times New Roman 11pt 正文、Calibri 14pt 标题
func DefaultOptions() Options {
	return Options{
		PageWidthTwips:   12240,
		PageHeightTwips:  15840,
		MarginTwips:      1440,
		BodyFont:         "Times New Roman",
		BodySizeHalfPt:   22,
		HeaderFont:       "Calibri",
		HeaderSizeHalfPt: 28,
		NameSizeHalfPt:   32,
		LineSpacing:      276,
	}
}

// OptionsFromConfig 由配置生成选项，未配置的字段使用默认值
func OptionsFromConfig(cfg config.DocumentConfig) Options {
	o := DefaultOptions()
	if cfg.PageWidthTwips > 0 {
		o.PageWidthTwips = cfg.PageWidthTwips
	}
	if cfg.PageHeightTwips > 0 {
		o.PageHeightTwips = cfg.PageHeightTwips
	}
	if cfg.MarginTwips > 0 {
		o.MarginTwips = cfg.MarginTwips
	}
	if cfg.BodyFont != "" {
		o.BodyFont = cfg.BodyFont
	}
	if cfg.BodySizeHalfPt > 0 {
		o.BodySizeHalfPt = cfg.BodySizeHalfPt
	}
	if cfg.HeaderFont != "" {
		o.HeaderFont = cfg.HeaderFont
	}
	if cfg.HeaderSizeHalf > 0 {
		o.HeaderSizeHalfPt = cfg.HeaderSizeHalf
	}
	if cfg.NameSizeHalfPt > 0 {
		o.NameSizeHalfPt = cfg.NameSizeHalfPt
	}
	if cfg.LineSpacing > 0 {
		o.LineSpacing = cfg.LineSpacing
	}
	return o
}

// contentWidth 版心宽度
func (o Options) contentWidth() int {
	w := o.PageWidthTwips - 2*o.MarginTwips
	if w <= 0 {
		return DefaultOptions().PageWidthTwips - 2*DefaultOptions().MarginTwips
	}
	return w
}
