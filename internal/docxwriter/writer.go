// Package docxwriter 把 layout 块序列编码为 WordprocessingML (.docx) 文档。
package docxwriter

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"resume-docx-go/internal/layout"
)

// bulletNumID numbering.xml 中项目符号列表的编号
const bulletNumID = 1

// zipEpoch 固定的压缩包时间戳，保证相同输入得到相同字节
var zipEpoch = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

// Encode 将块序列编码为 docx 字节
func Encode(blocks []layout.Block, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeTo(&buf, blocks, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeTo 将块序列编码为 docx 并写入 w
func EncodeTo(w io.Writer, blocks []layout.Block, opts Options) error {
	doc, err := documentXML(blocks, opts)
	if err != nil {
		return err
	}

	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", rootRelsXML},
		{"docProps/core.xml", corePropsXML(opts)},
		{"docProps/app.xml", appPropsXML},
		{"word/_rels/document.xml.rels", documentRelsXML},
		{"word/document.xml", doc},
		{"word/styles.xml", stylesXML(opts)},
		{"word/numbering.xml", numberingXML},
		{"word/settings.xml", settingsXML},
	}

	zw := zip.NewWriter(w)
	for _, p := range parts {
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     p.name,
			Method:   zip.Deflate,
			Modified: zipEpoch,
		})
		if err != nil {
			return fmt.Errorf("创建docx部件 %s 失败: %w", p.name, err)
		}
		if _, err := io.WriteString(fw, p.content); err != nil {
			return fmt.Errorf("写入docx部件 %s 失败: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("关闭docx压缩包失败: %w", err)
	}
	return nil
}

type docBuilder struct {
	sb   strings.Builder
	opts Options
}

func documentXML(blocks []layout.Block, opts Options) (string, error) {
	b := &docBuilder{opts: opts}
	b.sb.WriteString(xml.Header)
	b.sb.WriteString(`<w:document xmlns:w="` + nsMain + `" xmlns:r="` + nsRel + `"><w:body>`)

	for i, blk := range blocks {
		switch blk.Kind {
		case layout.BlockHeading:
			if blk.Heading == nil {
				return "", fmt.Errorf("第 %d 个块缺少标题内容", i)
			}
			b.heading(blk.Heading.Text)
		case layout.BlockSpacer:
			if blk.Spacer == nil {
				return "", fmt.Errorf("第 %d 个块缺少间距设置", i)
			}
			b.sb.WriteString(`<w:p><w:pPr><w:spacing w:before="0" w:after="` + strconv.Itoa(blk.Spacer.AfterTwips) + `"/></w:pPr></w:p>`)
		case layout.BlockTable:
			if blk.Table == nil {
				return "", fmt.Errorf("第 %d 个块缺少表格内容", i)
			}
			b.table(blk.Table)
		default:
			return "", fmt.Errorf("未知的块类型: %v", blk.Kind)
		}
	}

	b.sectionProperties()
	b.sb.WriteString(`</w:body></w:document>`)
	return b.sb.String(), nil
}

func (b *docBuilder) heading(text string) {
	b.sb.WriteString(`<w:p><w:pPr><w:jc w:val="center"/><w:spacing w:before="120" w:after="120"/></w:pPr>`)
	b.sb.WriteString(`<w:r><w:rPr>`)
	b.fonts(b.opts.HeaderFont)
	b.sb.WriteString(`<w:b/><w:sz w:val="` + strconv.Itoa(b.opts.HeaderSizeHalfPt) + `"/></w:rPr>`)
	b.text(text)
	b.sb.WriteString(`</w:r></w:p>`)
}

func (b *docBuilder) fonts(name string) {
	f := escapeAttr(name)
	b.sb.WriteString(`<w:rFonts w:ascii="` + f + `" w:hAnsi="` + f + `" w:cs="` + f + `"/>`)
}

func (b *docBuilder) text(s string) {
	b.sb.WriteString(`<w:t xml:space="preserve">`)
	_ = xml.EscapeText(&b.sb, []byte(s))
	b.sb.WriteString(`</w:t>`)
}

func (b *docBuilder) table(t *layout.Table) {
	width := b.opts.contentWidth()
	cols := make([]int, len(t.Columns))
	for i, pct := range t.Columns {
		cols[i] = width * pct / 100
	}

	b.sb.WriteString(`<w:tbl><w:tblPr><w:tblW w:w="5000" w:type="pct"/>`)
	if t.Borderless {
		b.sb.WriteString(`<w:tblBorders>`)
		for _, side := range []string{"top", "left", "bottom", "right", "insideH", "insideV"} {
			b.sb.WriteString(`<w:` + side + ` w:val="nil"/>`)
		}
		b.sb.WriteString(`</w:tblBorders>`)
	}
	b.sb.WriteString(`<w:tblLayout w:type="fixed"/></w:tblPr><w:tblGrid>`)
	for _, c := range cols {
		b.sb.WriteString(`<w:gridCol w:w="` + strconv.Itoa(c) + `"/>`)
	}
	b.sb.WriteString(`</w:tblGrid>`)

	for _, row := range t.Rows {
		b.sb.WriteString(`<w:tr>`)
		for _, cell := range row.Cells {
			b.cell(cell, width)
		}
		b.sb.WriteString(`</w:tr>`)
	}
	b.sb.WriteString(`</w:tbl>`)
}

func (b *docBuilder) cell(c layout.Cell, tableWidth int) {
	b.sb.WriteString(`<w:tc><w:tcPr><w:tcW w:w="` + strconv.Itoa(tableWidth*c.WidthPct/100) + `" w:type="dxa"/>`)
	if c.Span > 1 {
		b.sb.WriteString(`<w:gridSpan w:val="` + strconv.Itoa(c.Span) + `"/>`)
	}
	b.sb.WriteString(`</w:tcPr>`)

	// 每个单元格至少需要一个段落
	if len(c.Paragraphs) == 0 {
		b.sb.WriteString(`<w:p/>`)
	}
	for _, p := range c.Paragraphs {
		b.paragraph(p)
	}
	b.sb.WriteString(`</w:tc>`)
}

func (b *docBuilder) paragraph(p layout.Paragraph) {
	b.sb.WriteString(`<w:p><w:pPr>`)
	if p.Bullet {
		b.sb.WriteString(`<w:numPr><w:ilvl w:val="0"/><w:numId w:val="` + strconv.Itoa(bulletNumID) + `"/></w:numPr>`)
	}
	b.sb.WriteString(`<w:spacing w:before="0" w:after="0"/>`)
	if align := jc(p.Align); align != "" {
		b.sb.WriteString(`<w:jc w:val="` + align + `"/>`)
	}
	b.sb.WriteString(`</w:pPr>`)

	if p.Text != "" {
		b.sb.WriteString(`<w:r>`)
		if p.Bold || p.Large {
			b.sb.WriteString(`<w:rPr>`)
			if p.Large {
				// 姓名和电话使用标题字体
				b.fonts(b.opts.HeaderFont)
			}
			if p.Bold {
				b.sb.WriteString(`<w:b/>`)
			}
			if p.Large {
				b.sb.WriteString(`<w:sz w:val="` + strconv.Itoa(b.opts.NameSizeHalfPt) + `"/>`)
			}
			b.sb.WriteString(`</w:rPr>`)
		}
		b.text(p.Text)
		b.sb.WriteString(`</w:r>`)
	}
	b.sb.WriteString(`</w:p>`)
}

func jc(a layout.Align) string {
	switch a {
	case layout.AlignCenter:
		return "center"
	case layout.AlignRight:
		return "right"
	case layout.AlignJustify:
		return "both"
	case layout.AlignLeft:
		return "left"
	default:
		return ""
	}
}

func (b *docBuilder) sectionProperties() {
	m := strconv.Itoa(b.opts.MarginTwips)
	b.sb.WriteString(`<w:sectPr>`)
	b.sb.WriteString(`<w:pgSz w:w="` + strconv.Itoa(b.opts.PageWidthTwips) + `" w:h="` + strconv.Itoa(b.opts.PageHeightTwips) + `"/>`)
	b.sb.WriteString(`<w:pgMar w:top="` + m + `" w:right="` + m + `" w:bottom="` + m + `" w:left="` + m + `" w:header="720" w:footer="720" w:gutter="0"/>`)
	b.sb.WriteString(`</w:sectPr>`)
}

func escapeAttr(s string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(s))
	return sb.String()
}
